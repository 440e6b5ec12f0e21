package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mekongmart/search-service/internal/domain"
	"github.com/mekongmart/search-service/internal/normalize"
)

// CategoryRepository is the PostgreSQL-backed category lookup.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a category repository over the given pool.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// SearchByName matches categories whose name contains the keyword, raw or
// diacritic-folded.
func (r *CategoryRepository) SearchByName(ctx context.Context, keyword string, limit int) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT id, name FROM categories WHERE name ILIKE $1 OR name ILIKE $2 ORDER BY name LIMIT $3",
		"%"+keyword+"%", "%"+normalize.Fold(keyword)+"%", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

// CountAll returns the total number of categories.
func (r *CategoryRepository) CountAll(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM categories").Scan(&n); err != nil {
		return 0, fmt.Errorf("count all categories: %w", err)
	}
	return n, nil
}

// StreamAll walks all categories keyset-paginated by ID.
func (r *CategoryRepository) StreamAll(ctx context.Context, batchSize int, fn func(domain.Category) error) error {
	if batchSize < 1 {
		batchSize = 500
	}

	lastID := ""
	for {
		rows, err := r.pool.Query(ctx,
			"SELECT id, name FROM categories WHERE id > $1 ORDER BY id LIMIT $2",
			lastID, batchSize,
		)
		if err != nil {
			return fmt.Errorf("stream categories: %w", err)
		}

		var batch []domain.Category
		for rows.Next() {
			var c domain.Category
			if err := rows.Scan(&c.ID, &c.Name); err != nil {
				rows.Close()
				return fmt.Errorf("scan category: %w", err)
			}
			batch = append(batch, c)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("stream categories: %w", err)
		}

		for _, c := range batch {
			if err := fn(c); err != nil {
				return err
			}
			lastID = c.ID
		}

		if len(batch) < batchSize {
			return nil
		}
	}
}
