package httpapi

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// AppConfig controls the Fiber app shared by main and the tests.
type AppConfig struct {
	Name        string
	ReadTimeout time.Duration
	// WriteTimeout is a deadline for the whole response, live streams
	// included. Leave it zero when serving /api/v1/live.
	WriteTimeout time.Duration
	AccessLog    bool
}

// NewApp returns a Fiber app with the central error handler, panic recovery
// and optional access logging.
func NewApp(cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.Name,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		ErrorHandler:          ErrorHandler,
	})

	if cfg.AccessLog {
		app.Use(logger.New())
	}
	app.Use(recover.New())
	return app
}

// ErrorHandler renders every error as {"error":true,"message":...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}
