// Package postgres implements the repository contracts on PostgreSQL. These
// are the fallback query providers: substring matching over the source of
// truth, deliberately simpler and slower than the index engine.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mekongmart/search-service/internal/domain"
	"github.com/mekongmart/search-service/internal/normalize"
)

// ProductRepository is the PostgreSQL-backed product search fallback.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository creates a product repository over the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `id, name, alternate_name, slug, description, category_id, category_name,
		shop_id, shop_name, price, currency, status, thumbnail_url, tags, created_at, updated_at`

// Search matches the keyword (raw and diacritic-folded) as a substring of
// name, alternate name, or description, optionally narrowed to categories.
func (r *ProductRepository) Search(ctx context.Context, keyword string, categoryIDs []string, page, limit int) ([]domain.Product, int, error) {
	if page < 1 {
		page = 1
	}

	raw := "%" + keyword + "%"
	folded := "%" + normalize.Fold(keyword) + "%"

	where := `(name ILIKE $1 OR alternate_name ILIKE $1 OR description ILIKE $1
		OR name ILIKE $2 OR alternate_name ILIKE $2)`
	args := []any{raw, folded}

	if len(categoryIDs) > 0 {
		where += fmt.Sprintf(" AND category_id = ANY($%d)", len(args)+1)
		args = append(args, categoryIDs)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM products WHERE " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM products WHERE %s ORDER BY updated_at DESC LIMIT $%d OFFSET $%d",
		productColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate products: %w", err)
	}

	return products, total, nil
}

// CountAll returns the total number of products.
func (r *ProductRepository) CountAll(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&n); err != nil {
		return 0, fmt.Errorf("count all products: %w", err)
	}
	return n, nil
}

// StreamAll walks all products keyset-paginated by ID so the full table is
// never held in memory.
func (r *ProductRepository) StreamAll(ctx context.Context, batchSize int, fn func(domain.Product) error) error {
	if batchSize < 1 {
		batchSize = 500
	}

	lastID := ""
	for {
		query := fmt.Sprintf(
			"SELECT %s FROM products WHERE id > $1 ORDER BY id LIMIT $2",
			productColumns,
		)
		rows, err := r.pool.Query(ctx, query, lastID, batchSize)
		if err != nil {
			return fmt.Errorf("stream products: %w", err)
		}

		var batch []domain.Product
		for rows.Next() {
			p, err := scanProduct(rows)
			if err != nil {
				rows.Close()
				return err
			}
			batch = append(batch, p)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("stream products: %w", err)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.AlternateName,
		&p.Slug,
		&p.Description,
		&p.CategoryID,
		&p.CategoryName,
		&p.ShopID,
		&p.ShopName,
		&p.Price,
		&p.Currency,
		&p.Status,
		&p.ThumbnailURL,
		&p.Tags,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return domain.Product{}, fmt.Errorf("scan product: %w", err)
	}
	return p, nil
}
