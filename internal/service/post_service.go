package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/blog-service/internal/assets"
	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/events"
	"github.com/spec-kit/blog-service/internal/repository"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

const maxTitleLen = 100

// ImagePayload is an uploaded image carried alongside a post submission.
type ImagePayload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// PostInput carries the editable fields of a post.
type PostInput struct {
	Title   string
	Content string
	Image   *ImagePayload
}

// PostDependencies bundles collaborators for the post service.
type PostDependencies struct {
	Repo       repository.PostRepository
	Cache      *repository.PostCache
	Uploader   assets.Uploader
	Dispatcher events.Dispatcher
}

// PostService orchestrates post CRUD, publishing, image uploads and cache
// coherence.
type PostService struct {
	repo       repository.PostRepository
	cache      *repository.PostCache
	uploader   assets.Uploader
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewPostService builds the service.
func NewPostService(deps PostDependencies, logger *zap.Logger) *PostService {
	return &PostService{
		repo:       deps.Repo,
		cache:      deps.Cache,
		uploader:   deps.Uploader,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreatePost validates input, uploads the optional image and persists the
// post as an unpublished draft.
func (s *PostService) CreatePost(ctx context.Context, in PostInput) (*domain.Post, error) {
	if err := validatePostInput(in); err != nil {
		return nil, err
	}

	imageURL, err := s.uploadImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	post := &domain.Post{
		Title:    in.Title,
		Content:  in.Content,
		ImageURL: imageURL,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, 0)
	s.publishEvent(ctx, events.EventPostCreated, post.ID, events.PostCreatedPayload{
		Title:    post.Title,
		ImageURL: post.ImageURL,
	})
	return post, nil
}

// UpdatePost validates and applies edits. An existing image is kept unless a
// new one is supplied.
func (s *PostService) UpdatePost(ctx context.Context, id int64, in PostInput) (*domain.Post, error) {
	if err := validatePostInput(in); err != nil {
		return nil, err
	}

	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapPostErr(err)
	}

	imageChanged := false
	if in.Image != nil {
		imageURL, err := s.uploadImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		if imageURL != nil {
			post.ImageURL = imageURL
			imageChanged = true
		}
	}

	post.Title = in.Title
	post.Content = in.Content
	if err := s.repo.Update(ctx, post); err != nil {
		return nil, mapPostErr(err)
	}

	s.cache.Invalidate(ctx, post.ID)
	s.publishEvent(ctx, events.EventPostUpdated, post.ID, events.PostUpdatedPayload{
		Title:        post.Title,
		ImageChanged: imageChanged,
	})
	return post, nil
}

// GetPublishedPost returns a published post, read through the cache.
// Drafts are invisible here.
func (s *PostService) GetPublishedPost(ctx context.Context, id int64) (*domain.Post, error) {
	if post, ok := s.cache.GetPost(ctx, id); ok {
		return post, nil
	}

	post, err := s.repo.GetPublishedByID(ctx, id)
	if err != nil {
		return nil, mapPostErr(err)
	}
	s.cache.SetPost(ctx, post)
	return post, nil
}

// ListPosts returns all posts, drafts included, newest first.
func (s *PostService) ListPosts(ctx context.Context) ([]domain.Post, error) {
	return s.repo.List(ctx)
}

// ListPublishedPosts returns the public post list, read through the cache.
func (s *PostService) ListPublishedPosts(ctx context.Context) ([]domain.Post, error) {
	if posts, ok := s.cache.GetPublished(ctx); ok {
		return posts, nil
	}

	posts, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetPublished(ctx, posts)
	return posts, nil
}

// PublishPost flips a draft to published.
func (s *PostService) PublishPost(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := s.repo.Publish(ctx, id)
	if err != nil {
		return nil, mapPostErr(err)
	}

	s.cache.Invalidate(ctx, post.ID)
	s.publishEvent(ctx, events.EventPostPublished, post.ID, events.PostPublishedPayload{Title: post.Title})
	return post, nil
}

// DeletePost removes a post.
func (s *PostService) DeletePost(ctx context.Context, id int64) error {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapPostErr(err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return mapPostErr(err)
	}

	s.cache.Invalidate(ctx, id)
	s.publishEvent(ctx, events.EventPostDeleted, id, events.PostDeletedPayload{Title: post.Title})
	return nil
}

func (s *PostService) uploadImage(ctx context.Context, image *ImagePayload) (*string, error) {
	if image == nil || len(image.Data) == 0 {
		return nil, nil
	}
	if s.uploader == nil {
		s.logger.Warn("image submitted but no asset host configured; dropping image")
		return nil, nil
	}

	url, err := s.uploader.Upload(ctx, image.Filename, image.ContentType, image.Data)
	if err != nil {
		return nil, apperrors.NewUpstreamFailure(err)
	}
	return &url, nil
}

func (s *PostService) publishEvent(ctx context.Context, eventType events.EventType, postID int64, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		PostID:    postID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func validatePostInput(in PostInput) error {
	details := map[string]any{}
	if in.Title == "" {
		details["title"] = "Title is required"
	} else if len(in.Title) > maxTitleLen {
		details["title"] = "Title must be 100 characters or less"
	}
	if in.Content == "" {
		details["content"] = "Content is required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid post", details)
	}
	return nil
}

func mapPostErr(err error) error {
	if err == pgx.ErrNoRows {
		return apperrors.NewNotFound("post", nil)
	}
	return err
}
