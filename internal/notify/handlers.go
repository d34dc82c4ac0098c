package notify

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func RegisterRoutes(r fiber.Router, hub *Hub, authMiddleware fiber.Handler) {
	r.Get("/ws/:userID", authMiddleware, func(c *fiber.Ctx) error {
		// a bearer token only opens its own event stream
		uid, _ := c.Locals("user_id").(string)
		if uid == "" || uid != c.Params("userID") {
			return fiber.NewError(fiber.StatusForbidden, "not your stream")
		}
		return c.Next()
	}, websocket.New(func(c *websocket.Conn) {
		userID := c.Params("userID")
		client := hub.Register(userID)
		defer hub.Unregister(client)

		done := make(chan struct{})
		go func() {
			for msg := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					break
				}
			}
			close(done)
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
		<-done
	}))
}
