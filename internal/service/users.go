package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mekongmart/search-service/internal/domain"
	"github.com/mekongmart/search-service/internal/repository"
	apperrors "github.com/mekongmart/search-service/pkg/errors"
)

const defaultUserLimit = 5

// UserSearcher answers user profile searches. Profiles are never indexed, so
// this is a pure datastore path with no reconciliation step.
type UserSearcher struct {
	users repository.UserRepository
	log   *slog.Logger
}

func NewUserSearcher(users repository.UserRepository, log *slog.Logger) *UserSearcher {
	return &UserSearcher{users: users, log: log}
}

// Search returns one page of users whose display name or username matches
// the keyword.
func (s *UserSearcher) Search(ctx context.Context, keyword string, page, limit int) (domain.Page[domain.User], error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return domain.Page[domain.User]{}, apperrors.InvalidInput("search keyword must not be empty")
	}
	if page < 1 {
		page = 1
	}
	limit = domain.ClampLimit(limit, defaultUserLimit)

	total, err := s.users.Count(ctx, keyword)
	if err != nil {
		return domain.Page[domain.User]{}, apperrors.Wrap(err, "count users")
	}

	items, err := s.users.Find(ctx, keyword, limit, (page-1)*limit)
	if err != nil {
		return domain.Page[domain.User]{}, apperrors.Wrap(err, "search users")
	}

	return domain.NewPage(items, total, page, limit), nil
}
