package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/blog-service/internal/api/http/handlers"
	"github.com/spec-kit/blog-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health *handlers.HealthHandler
	Auth   *handlers.AuthHandler
	Posts  *handlers.PostsHandler
	Pages  *handlers.PagesHandler
	Guard  *auth.RouteGuard
}

// RegisterRoutes wires HTTP routes. The route guard is installed first so it
// intercepts every request ahead of its handler.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.Guard.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	api.Get("/csrf-token", cfg.Auth.CSRFToken)
	api.Post("/auth", cfg.Auth.Login)

	posts := api.Group("/posts")
	posts.Get("/:id", cfg.Posts.GetOne)
	// the full listing includes drafts and all mutations are admin-owned
	posts.Get("/", cfg.Guard.RequireAdmin, cfg.Posts.List)
	posts.Post("/", cfg.Guard.RequireAdmin, cfg.Posts.Create)
	posts.Put("/:id", cfg.Guard.RequireAdmin, cfg.Posts.Update)
	posts.Put("/:id/publish", cfg.Guard.RequireAdmin, cfg.Posts.Publish)
	posts.Delete("/:id", cfg.Guard.RequireAdmin, cfg.Posts.Delete)

	app.Get("/", cfg.Pages.Home)
	app.Get("/post/:id", cfg.Pages.Post)

	admin := app.Group("/admin")
	admin.Get("/login", cfg.Pages.AdminLogin)
	admin.Get("/", cfg.Pages.AdminDashboard)
	admin.Get("/dashboard", cfg.Pages.AdminDashboard)
}
