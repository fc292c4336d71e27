package delivery

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// AppConfig configures the HTTP gateway application.
type AppConfig struct {
	AllowOrigins string
	// RequestLogging enables fiber's access log middleware.
	RequestLogging bool
}

// NewApp builds the fiber application. tokens may be nil when the gateway
// does not keep its own sessions.
func NewApp(cfg AppConfig, otp *OTPHandler, tokens *TokenHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "phone-verify",
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(ErrorResponse{
				Error: err.Error(),
			})
		},
	})

	// Middleware
	if cfg.RequestLogging {
		app.Use(logger.New())
	}
	app.Use(recover.New())
	if cfg.AllowOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.AllowOrigins,
		}))
	}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// 1. Send a code
	app.Post("/api/otp/send", otp.SendCode)

	// 2. Verify the code and receive a credential
	app.Post("/api/otp/verify", otp.VerifyCode)

	if tokens != nil {
		app.Post("/api/auth/verify-token", tokens.VerifyToken)
	}

	return app
}
