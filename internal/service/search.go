// Package service holds the search orchestration layer: per-entity searchers
// that reconcile index and datastore results, the global fan-out, the
// suggestion pipeline, and the reindex coordinator.
package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mekongmart/search-service/internal/domain"
	"github.com/mekongmart/search-service/internal/index"
	"github.com/mekongmart/search-service/internal/normalize"
	"github.com/mekongmart/search-service/internal/repository"
	apperrors "github.com/mekongmart/search-service/pkg/errors"
	"github.com/mekongmart/search-service/pkg/logger"
)

const (
	defaultProductLimit = 10

	// categoryMatchLimit bounds how many category IDs a keyword may resolve to
	// before the narrowing clause stops being selective.
	categoryMatchLimit = 5

	// suggestProbeSize is how many completion candidates are fetched to seed
	// the suggester-ID boost clause of a full search.
	suggestProbeSize = 5

	// suggestProbeMaxRunes caps the keyword length for the boost probe; the
	// completion suggester matches prefixes, which stop resembling typed-so-far
	// input well before this length.
	suggestProbeMaxRunes = 32
)

// ProductSearcher answers product keyword searches by querying the index
// first and reconciling with the datastore fallback when the index is
// disabled, failing, or under-returning.
type ProductSearcher struct {
	idx        index.Client
	products   repository.ProductRepository
	categories repository.CategoryRepository
	log        *slog.Logger
}

func NewProductSearcher(idx index.Client, products repository.ProductRepository, categories repository.CategoryRepository, log *slog.Logger) *ProductSearcher {
	return &ProductSearcher{idx: idx, products: products, categories: categories, log: log}
}

// Search returns one page of products matching the keyword.
//
// Index errors never surface to the caller: they downgrade the request to
// fallback-only. The fallback top-up only runs for the first page of an
// under-filled index result; deeper pages would need offset bookkeeping
// across two sources that is not worth the complexity.
func (s *ProductSearcher) Search(ctx context.Context, keyword string, page, limit int) (domain.Page[domain.Product], error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return domain.Page[domain.Product]{}, apperrors.InvalidInput("search keyword must not be empty")
	}
	if page < 1 {
		page = 1
	}
	limit = domain.ClampLimit(limit, defaultProductLimit)

	log := logger.WithContext(ctx, s.log)
	folded := normalize.Fold(keyword)

	if !s.idx.Enabled() {
		return s.fallbackPage(ctx, keyword, s.matchCategories(ctx, keyword, folded), page, limit)
	}

	q := index.ProductQuery{
		Raw:      keyword,
		Folded:   folded,
		Tokens:   normalize.Tokenize(keyword, folded),
		BoostIDs: s.suggestCandidates(ctx, keyword, folded),
		Page:     page,
		Limit:    limit,
	}

	primary, err := s.idx.SearchProducts(ctx, q)
	if err != nil {
		indexErrorsTotal.WithLabelValues("products", "search").Inc()
		log.Warn("product index search failed, using fallback only", "error", err)
		return s.fallbackPage(ctx, keyword, s.matchCategories(ctx, keyword, folded), page, limit)
	}

	if page > 1 || len(primary.Items) >= limit {
		return primary, nil
	}

	fbItems, fbTotal, err := s.products.Search(ctx, keyword, s.matchCategories(ctx, keyword, folded), 1, FallbackFetchSize(limit))
	if err != nil {
		log.Warn("product fallback top-up failed, serving index page as-is", "error", err)
		return primary, nil
	}

	mergedPagesTotal.WithLabelValues("products").Inc()
	return MergePages(primary, fbItems, fbTotal, func(p domain.Product) string { return p.ID }), nil
}

func (s *ProductSearcher) fallbackPage(ctx context.Context, keyword string, categoryIDs []string, page, limit int) (domain.Page[domain.Product], error) {
	items, total, err := s.products.Search(ctx, keyword, categoryIDs, page, limit)
	if err != nil {
		return domain.Page[domain.Product]{}, apperrors.Wrap(err, "search products")
	}
	fallbackQueriesTotal.WithLabelValues("products").Inc()
	return domain.NewPage(items, total, page, limit), nil
}

// matchCategories resolves the keyword against category names so results in
// a matching category surface even when the keyword misses the product text.
// Only the fallback query consumes the IDs, so callers resolve them lazily:
// a filled index page never pays for the lookup. Any failure degrades to no
// narrowing.
func (s *ProductSearcher) matchCategories(ctx context.Context, keyword, folded string) []string {
	if s.idx.Enabled() {
		ids, err := s.idx.MatchCategoryIDs(ctx, keyword, categoryMatchLimit)
		if err == nil {
			return ids
		}
		indexErrorsTotal.WithLabelValues("categories", "match").Inc()
		logger.WithContext(ctx, s.log).Warn("category match via index failed", "error", err)
	}

	cats, err := s.categories.SearchByName(ctx, folded, categoryMatchLimit)
	if err != nil {
		logger.WithContext(ctx, s.log).Warn("category match via datastore failed", "error", err)
		return nil
	}
	ids := make([]string, 0, len(cats))
	for _, c := range cats {
		ids = append(ids, c.ID)
	}
	return ids
}

// suggestCandidates probes the completion suggester for IDs worth boosting to
// the top of the full query. Best-effort: errors yield no boost, and long
// keywords skip the probe entirely.
func (s *ProductSearcher) suggestCandidates(ctx context.Context, keyword, folded string) []string {
	if utf8.RuneCountInString(keyword) > suggestProbeMaxRunes {
		return nil
	}
	items, err := s.idx.SuggestProducts(ctx, keyword, folded, suggestProbeSize)
	if err != nil || len(items) == 0 {
		return nil
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}
