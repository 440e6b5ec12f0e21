package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mekongmart/search-service/internal/domain"
	"github.com/mekongmart/search-service/internal/index"
	"github.com/mekongmart/search-service/internal/normalize"
	"github.com/mekongmart/search-service/internal/repository"
	apperrors "github.com/mekongmart/search-service/pkg/errors"
	"github.com/mekongmart/search-service/pkg/logger"
)

const defaultPostLimit = 10

// PostSearcher answers post keyword searches with the same index-first,
// fallback-reconciled strategy as products, minus category narrowing and
// suggester boosting, which only exist for the catalog.
type PostSearcher struct {
	idx   index.Client
	posts repository.PostRepository
	log   *slog.Logger
}

func NewPostSearcher(idx index.Client, posts repository.PostRepository, log *slog.Logger) *PostSearcher {
	return &PostSearcher{idx: idx, posts: posts, log: log}
}

// Search returns one page of posts matching the keyword.
func (s *PostSearcher) Search(ctx context.Context, keyword string, page, limit int) (domain.Page[domain.Post], error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return domain.Page[domain.Post]{}, apperrors.InvalidInput("search keyword must not be empty")
	}
	if page < 1 {
		page = 1
	}
	limit = domain.ClampLimit(limit, defaultPostLimit)

	if !s.idx.Enabled() {
		return s.fallbackPage(ctx, keyword, page, limit)
	}

	folded := normalize.Fold(keyword)
	q := index.PostQuery{
		Raw:    keyword,
		Folded: folded,
		Tokens: normalize.Tokenize(keyword, folded),
		Page:   page,
		Limit:  limit,
	}

	primary, err := s.idx.SearchPosts(ctx, q)
	if err != nil {
		indexErrorsTotal.WithLabelValues("posts", "search").Inc()
		logger.WithContext(ctx, s.log).Warn("post index search failed, using fallback only", "error", err)
		return s.fallbackPage(ctx, keyword, page, limit)
	}

	if page > 1 || len(primary.Items) >= limit {
		return primary, nil
	}

	fbItems, fbTotal, err := s.posts.Search(ctx, keyword, 1, FallbackFetchSize(limit))
	if err != nil {
		logger.WithContext(ctx, s.log).Warn("post fallback top-up failed, serving index page as-is", "error", err)
		return primary, nil
	}

	mergedPagesTotal.WithLabelValues("posts").Inc()
	return MergePages(primary, fbItems, fbTotal, func(p domain.Post) string { return p.ID }), nil
}

func (s *PostSearcher) fallbackPage(ctx context.Context, keyword string, page, limit int) (domain.Page[domain.Post], error) {
	items, total, err := s.posts.Search(ctx, keyword, page, limit)
	if err != nil {
		return domain.Page[domain.Post]{}, apperrors.Wrap(err, "search posts")
	}
	fallbackQueriesTotal.WithLabelValues("posts").Inc()
	return domain.NewPage(items, total, page, limit), nil
}
