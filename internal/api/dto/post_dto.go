package dto

import (
	"time"

	"github.com/spec-kit/blog-service/internal/domain"
)

// PostResponse is the JSON shape of a post.
type PostResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ImageURL  *string   `json:"imageUrl"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PostFromDomain converts a domain post.
func PostFromDomain(post *domain.Post) PostResponse {
	return PostResponse{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		ImageURL:  post.ImageURL,
		Published: post.Published,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}

// PostsFromDomain converts a slice of domain posts.
func PostsFromDomain(posts []domain.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, PostFromDomain(&posts[i]))
	}
	return out
}
