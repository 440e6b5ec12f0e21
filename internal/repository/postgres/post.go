package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mekongmart/search-service/internal/domain"
	"github.com/mekongmart/search-service/internal/normalize"
)

// PostRepository is the PostgreSQL-backed post search fallback.
type PostRepository struct {
	pool *pgxpool.Pool
}

// NewPostRepository creates a post repository over the given pool.
func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

const postColumns = `id, caption, content, author_id, author_name, thumbnail_url, tags, created_at`

// Search matches the keyword (raw and diacritic-folded) as a substring of
// caption, content, or author name.
func (r *PostRepository) Search(ctx context.Context, keyword string, page, limit int) ([]domain.Post, int, error) {
	if page < 1 {
		page = 1
	}

	raw := "%" + keyword + "%"
	folded := "%" + normalize.Fold(keyword) + "%"

	const where = `(caption ILIKE $1 OR content ILIKE $1 OR author_name ILIKE $1
		OR caption ILIKE $2 OR content ILIKE $2)`

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM posts WHERE "+where, raw, folded).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM posts WHERE %s ORDER BY created_at DESC LIMIT $3 OFFSET $4",
		postColumns, where,
	)
	rows, err := r.pool.Query(ctx, query, raw, folded, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("search posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate posts: %w", err)
	}

	return posts, total, nil
}

// CountAll returns the total number of posts.
func (r *PostRepository) CountAll(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM posts").Scan(&n); err != nil {
		return 0, fmt.Errorf("count all posts: %w", err)
	}
	return n, nil
}

// StreamAll walks all posts keyset-paginated by ID.
func (r *PostRepository) StreamAll(ctx context.Context, batchSize int, fn func(domain.Post) error) error {
	if batchSize < 1 {
		batchSize = 500
	}

	lastID := ""
	for {
		query := fmt.Sprintf("SELECT %s FROM posts WHERE id > $1 ORDER BY id LIMIT $2", postColumns)
		rows, err := r.pool.Query(ctx, query, lastID, batchSize)
		if err != nil {
			return fmt.Errorf("stream posts: %w", err)
		}

		var batch []domain.Post
		for rows.Next() {
			p, err := scanPost(rows)
			if err != nil {
				rows.Close()
				return err
			}
			batch = append(batch, p)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("stream posts: %w", err)
		}

		for _, p := range batch {
			if err := fn(p); err != nil {
				return err
			}
			lastID = p.ID
		}

		if len(batch) < batchSize {
			return nil
		}
	}
}

func scanPost(row rowScanner) (domain.Post, error) {
	var p domain.Post
	err := row.Scan(
		&p.ID,
		&p.Caption,
		&p.Content,
		&p.AuthorID,
		&p.AuthorName,
		&p.ThumbnailURL,
		&p.Tags,
		&p.CreatedAt,
	)
	if err != nil {
		return domain.Post{}, fmt.Errorf("scan post: %w", err)
	}
	return p, nil
}
