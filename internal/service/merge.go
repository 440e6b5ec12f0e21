package service

import (
	"github.com/mekongmart/search-service/internal/domain"
)

// FallbackFetchSize returns how many fallback rows to fetch when topping up
// an under-filled primary page: max(limit*3, limit+20). The over-fetch
// tolerates overlap between the two sources.
func FallbackFetchSize(limit int) int {
	n := limit * 3
	if m := limit + 20; m > n {
		n = m
	}
	return n
}

// MergePages unions a primary (index) page with a fallback batch into one
// coherent page. Primary items keep their ranked order and are never
// reordered; fallback items whose ID is not already present are appended
// until the page reaches its limit.
//
// Total is max(primaryTotal, fallbackTotal, len(items)): a conservative
// estimate, not an exact union count. It can under-count when the sources
// match disjoint rows beyond the page, but the floor at len(items) guarantees
// a page never reports fewer matches than it carries. Exactness would require
// counting the full union on every request; callers accept the approximation
// instead.
func MergePages[T any](primary domain.Page[T], fallbackItems []T, fallbackTotal int, id func(T) string) domain.Page[T] {
	seen := make(map[string]struct{}, len(primary.Items))
	items := make([]T, 0, primary.Limit)

	for _, it := range primary.Items {
		if len(items) >= primary.Limit {
			break
		}
		seen[id(it)] = struct{}{}
		items = append(items, it)
	}

	for _, it := range fallbackItems {
		if len(items) >= primary.Limit {
			break
		}
		if _, ok := seen[id(it)]; ok {
			continue
		}
		seen[id(it)] = struct{}{}
		items = append(items, it)
	}

	total := primary.Total
	if fallbackTotal > total {
		total = fallbackTotal
	}
	if len(items) > total {
		total = len(items)
	}

	return domain.NewPage(items, total, primary.Page, primary.Limit)
}

// MergeSuggestions unions suggester output with fallback-derived suggestions,
// deduplicated by ID. There is no ranking beyond source priority: every
// primary item precedes every appended fallback item.
func MergeSuggestions(primary, fallback []domain.SuggestionItem, limit int) []domain.SuggestionItem {
	seen := make(map[string]struct{}, len(primary))
	items := make([]domain.SuggestionItem, 0, limit)

	for _, it := range primary {
		if len(items) >= limit {
			return items
		}
		if _, ok := seen[it.ID]; ok {
			continue
		}
		seen[it.ID] = struct{}{}
		items = append(items, it)
	}

	for _, it := range fallback {
		if len(items) >= limit {
			return items
		}
		if _, ok := seen[it.ID]; ok {
			continue
		}
		seen[it.ID] = struct{}{}
		items = append(items, it)
	}

	return items
}
