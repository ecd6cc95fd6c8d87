package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/blog-service/internal/api/dto"
	"github.com/spec-kit/blog-service/internal/service"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// maxImageBytes caps the accepted image payload.
const maxImageBytes = 10 << 20

// PostsHandler exposes the posts API.
type PostsHandler struct {
	posts *service.PostService
}

// NewPostsHandler constructs handler.
func NewPostsHandler(postService *service.PostService) *PostsHandler {
	return &PostsHandler{posts: postService}
}

// List handles GET /api/posts. Admin-only: the listing includes drafts.
func (h *PostsHandler) List(c *fiber.Ctx) error {
	posts, err := h.posts.ListPosts(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(dto.PostsFromDomain(posts))
}

// Create handles POST /api/posts with a multipart form (title, content,
// optional image).
func (h *PostsHandler) Create(c *fiber.Ctx) error {
	input, err := parsePostForm(c)
	if err != nil {
		return err
	}

	post, err := h.posts.CreatePost(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.PostFromDomain(post))
}

// GetOne handles GET /api/posts/:id. Only published posts are visible.
func (h *PostsHandler) GetOne(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return err
	}

	post, err := h.posts.GetPublishedPost(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.PostFromDomain(post))
}

// Update handles PUT /api/posts/:id.
func (h *PostsHandler) Update(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return err
	}

	input, err := parsePostForm(c)
	if err != nil {
		return err
	}

	post, err := h.posts.UpdatePost(c.Context(), id, input)
	if err != nil {
		return err
	}
	return c.JSON(dto.PostFromDomain(post))
}

// Publish handles PUT /api/posts/:id/publish.
func (h *PostsHandler) Publish(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return err
	}

	post, err := h.posts.PublishPost(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.PostFromDomain(post))
}

// Delete handles DELETE /api/posts/:id.
func (h *PostsHandler) Delete(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return err
	}

	if err := h.posts.DeletePost(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}

func parsePostID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid post id", map[string]any{"id": c.Params("id")})
	}
	return id, nil
}

func parsePostForm(c *fiber.Ctx) (service.PostInput, error) {
	input := service.PostInput{
		Title:   c.FormValue("title"),
		Content: c.FormValue("content"),
	}

	header, err := c.FormFile("image")
	if err != nil {
		// image is optional
		return input, nil
	}
	if header.Size > maxImageBytes {
		return input, apperrors.NewValidationError("image too large", map[string]any{"max_bytes": maxImageBytes})
	}

	file, err := header.Open()
	if err != nil {
		return input, apperrors.NewInternalError(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return input, apperrors.NewInternalError(err)
	}

	input.Image = &service.ImagePayload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	return input, nil
}
