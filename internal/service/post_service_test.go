package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/events"
	"github.com/spec-kit/blog-service/internal/repository"
	"github.com/spec-kit/blog-service/internal/service"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

type fakePostRepo struct {
	mu     sync.Mutex
	posts  []*domain.Post
	nextID int64
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{nextID: 1}
}

func (r *fakePostRepo) Create(_ context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post.ID = r.nextID
	r.nextID++
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	clone := *post
	r.posts = append(r.posts, &clone)
	return nil
}

func (r *fakePostRepo) Update(_ context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.posts {
		if stored.ID == post.ID {
			stored.Title = post.Title
			stored.Content = post.Content
			stored.ImageURL = post.ImageURL
			stored.UpdatedAt = time.Now()
			post.UpdatedAt = stored.UpdatedAt
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakePostRepo) GetByID(_ context.Context, id int64) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.posts {
		if stored.ID == id {
			clone := *stored
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakePostRepo) GetPublishedByID(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.Published {
		return nil, pgx.ErrNoRows
	}
	return post, nil
}

func (r *fakePostRepo) List(_ context.Context) ([]domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Post, 0, len(r.posts))
	for i := len(r.posts) - 1; i >= 0; i-- {
		out = append(out, *r.posts[i])
	}
	return out, nil
}

func (r *fakePostRepo) ListPublished(ctx context.Context) ([]domain.Post, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Post, 0, len(all))
	for _, post := range all {
		if post.Published {
			out = append(out, post)
		}
	}
	return out, nil
}

func (r *fakePostRepo) Publish(_ context.Context, id int64) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.posts {
		if stored.ID == id {
			stored.Published = true
			stored.UpdatedAt = time.Now()
			clone := *stored
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakePostRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, stored := range r.posts {
		if stored.ID == id {
			r.posts = append(r.posts[:i], r.posts[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeUploader struct {
	url      string
	err      error
	uploaded int
}

func (u *fakeUploader) Upload(_ context.Context, filename, _ string, _ []byte) (string, error) {
	u.uploaded++
	if u.err != nil {
		return "", u.err
	}
	return u.url + "/" + filename, nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

// fakeCacheClient is an in-memory stand-in for the redis client behind the
// post cache.
type fakeCacheClient struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeCacheClient() *fakeCacheClient {
	return &fakeCacheClient{data: make(map[string]string)}
}

func (f *fakeCacheClient) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if val, ok := f.data[key]; ok {
		return redis.NewStringResult(val, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeCacheClient) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeCacheClient) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			delete(f.data, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func (f *fakeCacheClient) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data)
}

func newPostService(repo repository.PostRepository, uploader *fakeUploader, dispatcher events.Dispatcher) *service.PostService {
	return newPostServiceWithCache(repo, uploader, dispatcher, nil)
}

func newPostServiceWithCache(repo repository.PostRepository, uploader *fakeUploader, dispatcher events.Dispatcher, cache repository.CacheClient) *service.PostService {
	deps := service.PostDependencies{
		Repo:       repo,
		Cache:      repository.NewPostCache(cache, 0),
		Dispatcher: dispatcher,
	}
	if uploader != nil {
		deps.Uploader = uploader
	}
	return service.NewPostService(deps, zap.NewNop())
}

func TestCreatePostValidation(t *testing.T) {
	svc := newPostService(newFakePostRepo(), nil, nil)

	tests := []struct {
		name  string
		input service.PostInput
	}{
		{"empty title", service.PostInput{Content: "body"}},
		{"title too long", service.PostInput{Title: strings.Repeat("x", 101), Content: "body"}},
		{"empty content", service.PostInput{Title: "hello"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePost(context.Background(), tt.input)
			require.Error(t, err)
			require.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
		})
	}
}

func TestCreatePostWithImage(t *testing.T) {
	uploader := &fakeUploader{url: "https://assets.example.com"}
	dispatcher := &recordingDispatcher{}
	svc := newPostService(newFakePostRepo(), uploader, dispatcher)

	post, err := svc.CreatePost(context.Background(), service.PostInput{
		Title:   "hello",
		Content: "body",
		Image:   &service.ImagePayload{Filename: "pic.png", ContentType: "image/png", Data: []byte{1, 2, 3}},
	})
	require.NoError(t, err)
	require.False(t, post.Published)
	require.NotNil(t, post.ImageURL)
	require.Equal(t, "https://assets.example.com/pic.png", *post.ImageURL)
	require.Equal(t, 1, uploader.uploaded)
	require.Equal(t, []events.EventType{events.EventPostCreated}, dispatcher.types())
}

func TestCreatePostImageWithoutUploader(t *testing.T) {
	svc := newPostService(newFakePostRepo(), nil, nil)

	post, err := svc.CreatePost(context.Background(), service.PostInput{
		Title:   "hello",
		Content: "body",
		Image:   &service.ImagePayload{Filename: "pic.png", Data: []byte{1}},
	})
	require.NoError(t, err)
	require.Nil(t, post.ImageURL)
}

func TestCreatePostUploaderFailure(t *testing.T) {
	uploader := &fakeUploader{err: errors.New("asset host down")}
	svc := newPostService(newFakePostRepo(), uploader, nil)

	_, err := svc.CreatePost(context.Background(), service.PostInput{
		Title:   "hello",
		Content: "body",
		Image:   &service.ImagePayload{Filename: "pic.png", Data: []byte{1}},
	})
	require.Error(t, err)
	require.Equal(t, "UPSTREAM_FAILURE", apperrors.ToDomainError(err).Code)
}

func TestUpdatePostKeepsImageUnlessReplaced(t *testing.T) {
	uploader := &fakeUploader{url: "https://assets.example.com"}
	repo := newFakePostRepo()
	svc := newPostService(repo, uploader, nil)

	created, err := svc.CreatePost(context.Background(), service.PostInput{
		Title:   "hello",
		Content: "body",
		Image:   &service.ImagePayload{Filename: "old.png", Data: []byte{1}},
	})
	require.NoError(t, err)

	t.Run("no new image keeps old url", func(t *testing.T) {
		updated, err := svc.UpdatePost(context.Background(), created.ID, service.PostInput{
			Title:   "edited",
			Content: "new body",
		})
		require.NoError(t, err)
		require.Equal(t, "edited", updated.Title)
		require.NotNil(t, updated.ImageURL)
		require.Equal(t, "https://assets.example.com/old.png", *updated.ImageURL)
	})

	t.Run("new image replaces url", func(t *testing.T) {
		updated, err := svc.UpdatePost(context.Background(), created.ID, service.PostInput{
			Title:   "edited again",
			Content: "newer body",
			Image:   &service.ImagePayload{Filename: "new.png", Data: []byte{2}},
		})
		require.NoError(t, err)
		require.NotNil(t, updated.ImageURL)
		require.Equal(t, "https://assets.example.com/new.png", *updated.ImageURL)
	})
}

func TestUpdateMissingPost(t *testing.T) {
	svc := newPostService(newFakePostRepo(), nil, nil)

	_, err := svc.UpdatePost(context.Background(), 42, service.PostInput{Title: "t", Content: "c"})
	require.Error(t, err)
	require.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestGetPublishedPostHidesDrafts(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	svc := newPostService(newFakePostRepo(), nil, dispatcher)

	draft, err := svc.CreatePost(context.Background(), service.PostInput{Title: "draft", Content: "body"})
	require.NoError(t, err)

	_, err = svc.GetPublishedPost(context.Background(), draft.ID)
	require.Error(t, err)
	require.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)

	published, err := svc.PublishPost(context.Background(), draft.ID)
	require.NoError(t, err)
	require.True(t, published.Published)

	got, err := svc.GetPublishedPost(context.Background(), draft.ID)
	require.NoError(t, err)
	require.Equal(t, draft.ID, got.ID)

	require.Equal(t, []events.EventType{events.EventPostCreated, events.EventPostPublished}, dispatcher.types())
}

func TestListPostsIncludesDrafts(t *testing.T) {
	svc := newPostService(newFakePostRepo(), nil, nil)

	first, err := svc.CreatePost(context.Background(), service.PostInput{Title: "first", Content: "body"})
	require.NoError(t, err)
	second, err := svc.CreatePost(context.Background(), service.PostInput{Title: "second", Content: "body"})
	require.NoError(t, err)

	_, err = svc.PublishPost(context.Background(), first.ID)
	require.NoError(t, err)

	all, err := svc.ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	// newest first
	require.Equal(t, second.ID, all[0].ID)

	public, err := svc.ListPublishedPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, public, 1)
	require.Equal(t, first.ID, public[0].ID)
}

func TestDeletePost(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	svc := newPostService(newFakePostRepo(), nil, dispatcher)

	post, err := svc.CreatePost(context.Background(), service.PostInput{Title: "bye", Content: "body"})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePost(context.Background(), post.ID))

	err = svc.DeletePost(context.Background(), post.ID)
	require.Error(t, err)
	require.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)

	require.Equal(t, []events.EventType{events.EventPostCreated, events.EventPostDeleted}, dispatcher.types())
}

func TestMutationsInvalidateCache(t *testing.T) {
	cache := newFakeCacheClient()
	svc := newPostServiceWithCache(newFakePostRepo(), nil, nil, cache)
	ctx := context.Background()

	first, err := svc.CreatePost(ctx, service.PostInput{Title: "first", Content: "body"})
	require.NoError(t, err)
	_, err = svc.PublishPost(ctx, first.ID)
	require.NoError(t, err)
	second, err := svc.CreatePost(ctx, service.PostInput{Title: "second", Content: "body"})
	require.NoError(t, err)

	// read-through populates the cache while second is still a draft
	public, err := svc.ListPublishedPosts(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	require.Positive(t, cache.size())

	t.Run("publish drops the cached list", func(t *testing.T) {
		_, err := svc.PublishPost(ctx, second.ID)
		require.NoError(t, err)

		// a stale list would still hold only the first post
		public, err := svc.ListPublishedPosts(ctx)
		require.NoError(t, err)
		require.Len(t, public, 2)
	})

	t.Run("update drops the cached post", func(t *testing.T) {
		got, err := svc.GetPublishedPost(ctx, first.ID)
		require.NoError(t, err)
		require.Equal(t, "first", got.Title)

		_, err = svc.UpdatePost(ctx, first.ID, service.PostInput{Title: "edited", Content: "body"})
		require.NoError(t, err)

		got, err = svc.GetPublishedPost(ctx, first.ID)
		require.NoError(t, err)
		require.Equal(t, "edited", got.Title)
	})

	t.Run("delete drops the cached post", func(t *testing.T) {
		_, err := svc.GetPublishedPost(ctx, first.ID)
		require.NoError(t, err)

		require.NoError(t, svc.DeletePost(ctx, first.ID))

		_, err = svc.GetPublishedPost(ctx, first.ID)
		require.Error(t, err)
		require.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
	})
}
