package server

import (
	"backend-trekbook/internal/auth"
	"backend-trekbook/internal/booking"
	"backend-trekbook/internal/config"
	"backend-trekbook/internal/dashboard"
	"backend-trekbook/internal/notify"
	"backend-trekbook/internal/profile"
	"backend-trekbook/internal/trek"
	"backend-trekbook/internal/voucher"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Notify *notify.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Notify: notify.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	bookingSvc := booking.NewService(s.DB, s.Notify)
	voucherSvc := voucher.NewService(s.DB)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	trek.RegisterRoutes(s.App.Group("/treks"), trek.NewService(s.DB, s.Redis))
	booking.RegisterRoutes(s.App.Group("/bookings"), bookingSvc, jwtMiddleware)
	voucher.RegisterRoutes(s.App.Group("/vouchers"), voucherSvc, jwtMiddleware)
	profile.RegisterRoutes(s.App.Group("/profile"), profile.NewService(s.DB), jwtMiddleware)
	dashboard.RegisterRoutes(s.App.Group("/dashboard"), dashboard.NewService(bookingSvc, voucherSvc), jwtMiddleware)
	notify.RegisterRoutes(s.App.Group("/stream"), s.Notify, jwtMiddleware)
}
