package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mekongmart/search-service/internal/domain"
	"github.com/mekongmart/search-service/internal/index"
)

func TestProductSearcher_EmptyKeyword(t *testing.T) {
	s := NewProductSearcher(&stubIndex{}, &stubProductRepo{}, &stubCategoryRepo{}, testLogger())

	_, err := s.Search(context.Background(), "   ", 1, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be empty")
}

func TestProductSearcher_IndexDisabledUsesFallback(t *testing.T) {
	repo := &stubProductRepo{
		searchFn: func(_ string, _ []string, page, limit int) ([]domain.Product, int, error) {
			return products("a", "b"), 12, nil
		},
	}
	idx := &stubIndex{enabled: false}
	s := NewProductSearcher(idx, repo, &stubCategoryRepo{}, testLogger())

	page, err := s.Search(context.Background(), "ca chua", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, idx.searchProductCalls)
	assert.Equal(t, 1, repo.searchCalls)
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, 2, page.TotalPages)
}

func TestProductSearcher_IndexErrorFallsBack(t *testing.T) {
	repo := &stubProductRepo{
		searchFn: func(string, []string, int, int) ([]domain.Product, int, error) {
			return products("a"), 1, nil
		},
	}
	idx := &stubIndex{
		enabled: true,
		searchProductsFn: func(index.ProductQuery) (domain.Page[domain.Product], error) {
			return domain.Page[domain.Product]{}, errBoom
		},
	}
	s := NewProductSearcher(idx, repo, &stubCategoryRepo{}, testLogger())

	page, err := s.Search(context.Background(), "ca chua", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, idx.searchProductCalls)
	assert.Equal(t, []string{"a"}, []string{page.Items[0].ID})
}

func TestProductSearcher_FullIndexPageSkipsFallback(t *testing.T) {
	repo := &stubProductRepo{}
	cats := &stubCategoryRepo{}
	idx := &stubIndex{
		enabled: true,
		searchProductsFn: func(q index.ProductQuery) (domain.Page[domain.Product], error) {
			return domain.NewPage(products("a", "b", "c"), 30, q.Page, q.Limit), nil
		},
	}
	s := NewProductSearcher(idx, repo, cats, testLogger())

	page, err := s.Search(context.Background(), "rau", 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, repo.searchCalls)
	assert.Equal(t, 0, idx.matchCatCalls)
	assert.Equal(t, 0, cats.searchByNameCalls)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, 30, page.Total)
}

func TestProductSearcher_UnderfilledFirstPageMerges(t *testing.T) {
	repo := &stubProductRepo{
		searchFn: func(string, []string, int, int) ([]domain.Product, int, error) {
			return products("b", "c", "d"), 3, nil
		},
	}
	idx := &stubIndex{
		enabled: true,
		searchProductsFn: func(q index.ProductQuery) (domain.Page[domain.Product], error) {
			return domain.NewPage(products("a", "b"), 2, q.Page, q.Limit), nil
		},
	}
	s := NewProductSearcher(idx, repo, &stubCategoryRepo{}, testLogger())

	page, err := s.Search(context.Background(), "rau", 1, 10)
	require.NoError(t, err)

	ids := make([]string, 0, len(page.Items))
	for _, p := range page.Items {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids)
	assert.Equal(t, 4, page.Total)
	assert.GreaterOrEqual(t, page.Total, len(page.Items))
	assert.Equal(t, FallbackFetchSize(10), repo.lastLimit)
}

func TestProductSearcher_DeepPageSkipsFallback(t *testing.T) {
	repo := &stubProductRepo{}
	idx := &stubIndex{
		enabled: true,
		searchProductsFn: func(q index.ProductQuery) (domain.Page[domain.Product], error) {
			return domain.NewPage(products("z"), 11, q.Page, q.Limit), nil
		},
	}
	s := NewProductSearcher(idx, repo, &stubCategoryRepo{}, testLogger())

	_, err := s.Search(context.Background(), "rau", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, repo.searchCalls)
}

func TestProductSearcher_FallbackTopUpErrorKeepsPrimary(t *testing.T) {
	repo := &stubProductRepo{
		searchFn: func(string, []string, int, int) ([]domain.Product, int, error) {
			return nil, 0, errBoom
		},
	}
	idx := &stubIndex{
		enabled: true,
		searchProductsFn: func(q index.ProductQuery) (domain.Page[domain.Product], error) {
			return domain.NewPage(products("a"), 1, q.Page, q.Limit), nil
		},
	}
	s := NewProductSearcher(idx, repo, &stubCategoryRepo{}, testLogger())

	page, err := s.Search(context.Background(), "rau", 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestProductSearcher_CategoryMatchFailureIsSwallowed(t *testing.T) {
	repo := &stubProductRepo{
		searchFn: func(_ string, categoryIDs []string, _, _ int) ([]domain.Product, int, error) {
			assert.Empty(t, categoryIDs)
			return products("a"), 1, nil
		},
	}
	cats := &stubCategoryRepo{
		searchByNameFn: func(string, int) ([]domain.Category, error) {
			return nil, errBoom
		},
	}
	s := NewProductSearcher(&stubIndex{}, repo, cats, testLogger())

	_, err := s.Search(context.Background(), "rau cu", 1, 10)
	require.NoError(t, err)
}

func TestProductSearcher_CategoryNarrowingOnFallback(t *testing.T) {
	var gotCategories []string
	repo := &stubProductRepo{
		searchFn: func(_ string, categoryIDs []string, _, _ int) ([]domain.Product, int, error) {
			gotCategories = categoryIDs
			return nil, 0, nil
		},
	}
	cats := &stubCategoryRepo{
		searchByNameFn: func(string, int) ([]domain.Category, error) {
			return []domain.Category{{ID: "cat-1", Name: "rau cu"}}, nil
		},
	}
	s := NewProductSearcher(&stubIndex{}, repo, cats, testLogger())

	_, err := s.Search(context.Background(), "rau cu", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat-1"}, gotCategories)
}

func TestProductSearcher_SuggestCandidatesBoostQuery(t *testing.T) {
	var gotBoost []string
	idx := &stubIndex{
		enabled: true,
		suggestFn: func(string, string, int) ([]domain.SuggestionItem, error) {
			return []domain.SuggestionItem{{ID: "hot-1"}}, nil
		},
		searchProductsFn: func(q index.ProductQuery) (domain.Page[domain.Product], error) {
			gotBoost = q.BoostIDs
			return domain.NewPage(products("hot-1", "b", "c", "d", "e"), 5, q.Page, q.Limit), nil
		},
	}
	s := NewProductSearcher(idx, &stubProductRepo{}, &stubCategoryRepo{}, testLogger())

	_, err := s.Search(context.Background(), "tao", 1, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"hot-1"}, gotBoost)
}

func TestProductSearcher_LongKeywordSkipsSuggestProbe(t *testing.T) {
	idx := &stubIndex{
		enabled: true,
		searchProductsFn: func(q index.ProductQuery) (domain.Page[domain.Product], error) {
			assert.Empty(t, q.BoostIDs)
			return domain.NewPage(products("a", "b", "c"), 3, q.Page, q.Limit), nil
		},
	}
	s := NewProductSearcher(idx, &stubProductRepo{}, &stubCategoryRepo{}, testLogger())

	keyword := strings.Repeat("rau cu qua ", 4) // 44 runes
	_, err := s.Search(context.Background(), keyword, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, idx.suggestCalls)
}

func TestProductSearcher_LimitClamped(t *testing.T) {
	idx := &stubIndex{
		enabled: true,
		searchProductsFn: func(q index.ProductQuery) (domain.Page[domain.Product], error) {
			assert.Equal(t, domain.MaxLimit, q.Limit)
			return domain.NewPage(products(), 0, q.Page, q.Limit), nil
		},
	}
	s := NewProductSearcher(idx, &stubProductRepo{}, &stubCategoryRepo{}, testLogger())

	_, err := s.Search(context.Background(), "rau", 1, 500)
	require.NoError(t, err)
}
