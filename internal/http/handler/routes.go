package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"blogeditor/internal/service"
)

// PingFunc checks the document store. Nil means there is nothing to check.
type PingFunc func(ctx context.Context) error

// Deps are the collaborators the routes are built from.
type Deps struct {
	Blogs service.LifecycleService
	Ping  PingFunc
	// WriteLimiter guards the mutating routes when set.
	WriteLimiter fiber.Handler
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	app.Get("/health", HealthCheck(deps.Ping))
	app.Get("/healthz", LivenessProbe())

	writes := []fiber.Handler{}
	if deps.WriteLimiter != nil {
		writes = append(writes, deps.WriteLimiter)
	}
	with := func(h fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, writes...), h)
	}

	api := app.Group("/api")
	api.Get("/blogs", ListBlogs(deps.Blogs))
	api.Get("/blogs/:id", GetBlog(deps.Blogs))
	api.Post("/blogs/savedraft", with(SaveDraft(deps.Blogs))...)
	api.Post("/blogs/publish", with(PublishBlog(deps.Blogs))...)
	api.Post("/blogs/:id/publish", with(PromoteBlog(deps.Blogs))...)
	api.Delete("/blogs/:id", with(DeleteBlog(deps.Blogs))...)

	// Older clients promote through this path.
	api.Post("/blogsUpdate/:id", with(PromoteBlog(deps.Blogs))...)
}

// HealthCheck godoc
// @Summary Store health
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(ping PingFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ping == nil {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe godoc
// @Summary Liveness probe
// @Tags health
// @Success 200
// @Router /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
