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

const (
	defaultSuggestLimit = 8
	maxSuggestLimit     = 20
)

// Suggester serves search-as-you-type product suggestions: completion
// suggester first, datastore substring match as a top-up, both behind a
// short-lived redis cache keyed on the folded prefix.
type Suggester struct {
	idx      index.Client
	products repository.ProductRepository
	cache    *SuggestionCache
	log      *slog.Logger
}

func NewSuggester(idx index.Client, products repository.ProductRepository, cache *SuggestionCache, log *slog.Logger) *Suggester {
	return &Suggester{idx: idx, products: products, cache: cache, log: log}
}

// ClampSuggestLimit normalizes a requested suggestion count to the served
// range: 8 when unset, capped at 20.
func ClampSuggestLimit(limit int) int {
	if limit <= 0 {
		return defaultSuggestLimit
	}
	if limit > maxSuggestLimit {
		return maxSuggestLimit
	}
	return limit
}

// Suggest returns up to limit autocomplete candidates for the prefix.
func (s *Suggester) Suggest(ctx context.Context, prefix string, limit int) ([]domain.SuggestionItem, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, apperrors.InvalidInput("suggestion prefix must not be empty")
	}
	limit = ClampSuggestLimit(limit)

	folded := normalize.Fold(prefix)
	key := suggestCacheKey(prefix, folded, limit)
	if items, ok := s.cache.Get(ctx, key); ok {
		suggestCacheHitsTotal.Inc()
		return items, nil
	}

	var primary []domain.SuggestionItem
	if s.idx.Enabled() {
		var err error
		primary, err = s.idx.SuggestProducts(ctx, prefix, folded, limit)
		if err != nil {
			indexErrorsTotal.WithLabelValues("products", "suggest").Inc()
			logger.WithContext(ctx, s.log).Warn("completion suggester failed, using fallback only", "error", err)
			primary = nil
		}
	}

	items := primary
	if len(items) < limit {
		fbItems, _, err := s.products.Search(ctx, prefix, nil, 1, FallbackFetchSize(limit))
		if err != nil {
			logger.WithContext(ctx, s.log).Warn("suggestion fallback failed", "error", err)
		} else {
			items = MergeSuggestions(primary, toSuggestions(fbItems), limit)
		}
	}
	if len(items) > limit {
		items = items[:limit]
	}
	if items == nil {
		items = []domain.SuggestionItem{}
	}

	s.cache.Set(ctx, key, items)
	return items, nil
}

func toSuggestions(products []domain.Product) []domain.SuggestionItem {
	items := make([]domain.SuggestionItem, 0, len(products))
	for _, p := range products {
		items = append(items, domain.SuggestionItem{
			ID:           p.ID,
			Name:         p.Name,
			Price:        p.Price,
			ThumbnailURL: p.ThumbnailURL,
		})
	}
	return items
}
