// Package repository defines the datastore contracts the search layer
// consumes. The datastore is the source of truth and the always-available
// fallback when the index engine is disabled, slow, or under-returns.
package repository

import (
	"context"

	"github.com/mekongmart/search-service/internal/domain"
)

// ProductRepository is the catalog's keyword-search surface.
type ProductRepository interface {
	// Search runs a substring keyword match, optionally narrowed to the given
	// category IDs, and returns one page plus the total match count.
	Search(ctx context.Context, keyword string, categoryIDs []string, page, limit int) ([]domain.Product, int, error)

	// CountAll returns the number of products in the store.
	CountAll(ctx context.Context) (int, error)

	// StreamAll walks every product in ID order, invoking fn per row. A fn
	// error stops the stream and is returned.
	StreamAll(ctx context.Context, batchSize int, fn func(domain.Product) error) error
}

// CategoryRepository resolves keywords against category names.
type CategoryRepository interface {
	SearchByName(ctx context.Context, keyword string, limit int) ([]domain.Category, error)
	CountAll(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, batchSize int, fn func(domain.Category) error) error
}

// PostRepository is the social feed's keyword-search surface.
type PostRepository interface {
	Search(ctx context.Context, keyword string, page, limit int) ([]domain.Post, int, error)
	CountAll(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, batchSize int, fn func(domain.Post) error) error
}

// UserRepository is the profile store's search surface. Users are never
// indexed; this is the only path for the users section.
type UserRepository interface {
	Find(ctx context.Context, searchTerm string, limit, offset int) ([]domain.User, error)
	Count(ctx context.Context, searchTerm string) (int, error)
}
