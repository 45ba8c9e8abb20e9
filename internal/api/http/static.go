package httpapi

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const immutableCache = "public, max-age=31536000, immutable"

// RegisterStatic serves the built single-page app from dir. Hashed files
// under /assets/ are cached forever, and unknown paths outside /api get
// index.html so client-side routes resolve. Register it after the API routes.
func RegisterStatic(app *fiber.App, dir string) {
	app.Static("/", dir, fiber.Static{
		Index: "index.html",
		ModifyResponse: func(c *fiber.Ctx) error {
			if strings.HasPrefix(c.Path(), "/assets/") {
				c.Set(fiber.HeaderCacheControl, immutableCache)
			}
			return nil
		},
	})

	index := filepath.Join(dir, "index.html")
	app.Get("/*", func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") {
			return fiber.ErrNotFound
		}
		return c.SendFile(index)
	})
}
