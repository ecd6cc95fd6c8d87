package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/blog-service/internal/domain"
)

// PostRepository encapsulates post persistence.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	Update(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id int64) (*domain.Post, error)
	GetPublishedByID(ctx context.Context, id int64) (*domain.Post, error)
	List(ctx context.Context) ([]domain.Post, error)
	ListPublished(ctx context.Context) ([]domain.Post, error)
	Publish(ctx context.Context, id int64) (*domain.Post, error)
	Delete(ctx context.Context, id int64) error
}

type postRepository struct {
	pool *pgxpool.Pool
}

// NewPostRepository instantiates repository.
func NewPostRepository(pool *pgxpool.Pool) PostRepository {
	return &postRepository{pool: pool}
}

const postColumns = `id, title, content, image_url, published, created_at, updated_at`

func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	const query = `
        INSERT INTO posts (title, content, image_url)
        VALUES ($1,$2,$3)
        RETURNING id, published, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		post.Title,
		post.Content,
		post.ImageURL,
	).Scan(&post.ID, &post.Published, &post.CreatedAt, &post.UpdatedAt)
}

func (r *postRepository) Update(ctx context.Context, post *domain.Post) error {
	const query = `
        UPDATE posts SET title=$1, content=$2, image_url=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		post.Title,
		post.Content,
		post.ImageURL,
		post.ID,
	).Scan(&post.UpdatedAt)
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	const query = `SELECT ` + postColumns + ` FROM posts WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *postRepository) GetPublishedByID(ctx context.Context, id int64) (*domain.Post, error) {
	const query = `SELECT ` + postColumns + ` FROM posts WHERE id=$1 AND published=TRUE`
	return r.fetchSingle(ctx, query, id)
}

func (r *postRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Post, error) {
	var post domain.Post
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.ImageURL,
		&post.Published,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context) ([]domain.Post, error) {
	const query = `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

func (r *postRepository) ListPublished(ctx context.Context) ([]domain.Post, error) {
	const query = `SELECT ` + postColumns + ` FROM posts WHERE published=TRUE ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

func (r *postRepository) Publish(ctx context.Context, id int64) (*domain.Post, error) {
	const query = `
        UPDATE posts SET published=TRUE, updated_at=NOW()
        WHERE id=$1
        RETURNING ` + postColumns
	var post domain.Post
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.ImageURL,
		&post.Published,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanPosts(rows pgx.Rows) ([]domain.Post, error) {
	var result []domain.Post
	for rows.Next() {
		var post domain.Post
		if err := rows.Scan(
			&post.ID,
			&post.Title,
			&post.Content,
			&post.ImageURL,
			&post.Published,
			&post.CreatedAt,
			&post.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, post)
	}
	return result, rows.Err()
}
