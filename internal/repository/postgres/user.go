package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mekongmart/search-service/internal/domain"
	"github.com/mekongmart/search-service/internal/normalize"
)

// UserRepository is the PostgreSQL-backed user profile search.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a user repository over the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userWhere = `(display_name ILIKE $1 OR username ILIKE $1 OR display_name ILIKE $2)`

// Find returns user profiles matching the search term.
func (r *UserRepository) Find(ctx context.Context, searchTerm string, limit, offset int) ([]domain.User, error) {
	raw := "%" + searchTerm + "%"
	folded := "%" + normalize.Fold(searchTerm) + "%"

	rows, err := r.pool.Query(ctx,
		"SELECT id, display_name, username, avatar_url FROM users WHERE "+userWhere+
			" ORDER BY display_name LIMIT $3 OFFSET $4",
		raw, folded, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.DisplayName, &u.Username, &u.AvatarURL); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// Count returns the number of user profiles matching the search term.
func (r *UserRepository) Count(ctx context.Context, searchTerm string) (int, error) {
	raw := "%" + searchTerm + "%"
	folded := "%" + normalize.Fold(searchTerm) + "%"

	var n int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users WHERE "+userWhere, raw, folded).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
