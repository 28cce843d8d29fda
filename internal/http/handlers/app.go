package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"bidmarket/internal/config"
	applog "bidmarket/internal/log"
)

// NewApp builds the fiber app with middleware and every route.
func NewApp(cfg config.Config, d *Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "bidmarket",
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: ErrorHandler,
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(applog.Access())
	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: strings.Join([]string{
			fiber.HeaderOrigin, fiber.HeaderContentType, fiber.HeaderAccept, fiber.HeaderAuthorization,
		}, ", "),
	}))

	loginLimiter := limiter.New(limiter.Config{
		Max:        cfg.LoginRateMax,
		Expiration: 10 * time.Minute,
		Next: func(*fiber.Ctx) bool {
			return cfg.LoginRateMax <= 0
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(errorBody{
				Error:   "TooManyRequests",
				Message: "Too many attempts. Please try again later.",
			})
		},
	})

	// ---------- Routes ----------
	token := RequireToken(d.Auth)

	app.Post("/register", d.AuthHandler.Register)
	app.Post("/login", loginLimiter, d.AuthHandler.Login)
	app.Get("/session", token, d.AuthHandler.Session)
	app.Post("/logout", token, d.AuthHandler.Logout)

	app.Get("/users", token, d.UserHandler.List)
	app.Get("/users/:id<int>", token, d.UserHandler.Get)
	app.Patch("/users/:id<int>", token, d.UserHandler.Patch)
	app.Delete("/users/:id<int>", token, d.UserHandler.Delete)

	app.Get("/products", token, d.ProductHandler.List)
	app.Get("/products/:id<int>", token, d.ProductHandler.Get)
	app.Post("/products", token, d.ProductHandler.Create)
	app.Put("/products/:id<int>", token, d.ProductHandler.Update)
	app.Delete("/products/:id<int>", token, d.ProductHandler.Delete)

	app.Get("/bids", token, d.BidHandler.List)
	app.Post("/bids", token, d.BidHandler.Place)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error {
		if d.DB != nil {
			if err := d.DB.PingContext(c.UserContext()); err != nil {
				applog.Error(c, "health.db", err, nil)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false})
			}
		}
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Use(NotFound)

	return app
}
