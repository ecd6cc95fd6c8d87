package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/blog-service/internal/api/dto"
	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/service"
)

// PagesHandler serves the data behind the public and admin pages. Rendering
// happens client-side; these endpoints return page data only.
type PagesHandler struct {
	posts *service.PostService
}

// NewPagesHandler constructs handler.
func NewPagesHandler(postService *service.PostService) *PagesHandler {
	return &PagesHandler{posts: postService}
}

// Home handles GET /: the published post feed.
func (h *PagesHandler) Home(c *fiber.Ctx) error {
	posts, err := h.posts.ListPublishedPosts(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"page":  "home",
		"posts": dto.PostsFromDomain(posts),
	})
}

// Post handles GET /post/:id: a single published post.
func (h *PagesHandler) Post(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return err
	}

	post, err := h.posts.GetPublishedPost(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"page": "post",
		"post": dto.PostFromDomain(post),
	})
}

// AdminDashboard handles the guarded admin pages: every post, drafts included.
func (h *PagesHandler) AdminDashboard(c *fiber.Ctx) error {
	claims, _ := auth.ClaimsFromContext(c)

	posts, err := h.posts.ListPosts(c.Context())
	if err != nil {
		return err
	}

	resp := fiber.Map{
		"page":  "admin",
		"posts": dto.PostsFromDomain(posts),
	}
	if claims != nil {
		resp["username"] = claims.Username
	}
	return c.JSON(resp)
}

// AdminLogin handles GET /admin/login; open by definition.
func (h *PagesHandler) AdminLogin(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"page": "admin-login"})
}
