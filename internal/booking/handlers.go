package booking

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/quote", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			TrekID           int64   `json:"trek_id"`
			ParticipantCount int     `json:"participant_count"`
			Drafts           []Draft `json:"participants"`
		}
		if err := c.BodyParser(&body); err != nil || body.TrekID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "trek_id required")
		}

		if len(body.Drafts) == 0 {
			primary, err := svc.PrimaryDraft(c.Context(), userID(c), "")
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
			body.Drafts = []Draft{primary}
		}

		quote, err := svc.Quote(c.Context(), body.TrekID, body.ParticipantCount, body.Drafts)
		if errors.Is(err, ErrTrekNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "trek not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(quote)
	})

	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			TrekID   int64   `json:"trek_id"`
			TrekDate string  `json:"trek_date"`
			Drafts   []Draft `json:"participants"`
		}
		if err := c.BodyParser(&body); err != nil || body.TrekID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "trek_id required")
		}

		date, err := parseDate(body.TrekDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "trek_date must be a valid date")
		}

		b, err := svc.Create(c.Context(), CreateInput{
			UserID:   userID(c),
			TrekID:   body.TrekID,
			TrekDate: date,
			Drafts:   body.Drafts,
		})
		switch {
		case errors.Is(err, ErrValidation):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, ErrTrekNotFound):
			return fiber.NewError(fiber.StatusNotFound, "trek not found")
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(b)
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		bookings, err := svc.ListForUser(c.Context(), userID(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if bookings == nil {
			bookings = []Booking{}
		}
		return c.JSON(bookings)
	})

	r.Patch("/:id/status", authMiddleware, func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid booking id")
		}
		var body struct {
			Status string `json:"status"`
		}
		if err := c.BodyParser(&body); err != nil || body.Status == "" {
			return fiber.NewError(fiber.StatusBadRequest, "status required")
		}

		b, err := svc.UpdateStatus(c.Context(), int64(id), userID(c), body.Status)
		switch {
		case errors.Is(err, ErrValidation):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(fiber.StatusNotFound, "booking not found")
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(b)
	})
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if date, err := time.Parse(dateLayout, raw); err == nil {
		return date, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
