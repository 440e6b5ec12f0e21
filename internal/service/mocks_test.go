package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/mekongmart/search-service/internal/domain"
	"github.com/mekongmart/search-service/internal/index"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var errBoom = errors.New("boom")

// stubIndex is a scriptable index.Client that counts calls.
type stubIndex struct {
	enabled bool

	searchProductsFn func(q index.ProductQuery) (domain.Page[domain.Product], error)
	searchPostsFn    func(q index.PostQuery) (domain.Page[domain.Post], error)
	suggestFn        func(raw, folded string, limit int) ([]domain.SuggestionItem, error)
	matchCatsFn      func(keyword string, limit int) ([]string, error)
	countFn          func(kind index.Kind) (int, error)
	indexProductFn   func(p domain.Product) error
	indexPostFn      func(p domain.Post) error
	indexCategoryFn  func(c domain.Category) error

	searchProductCalls int
	searchPostCalls    int
	suggestCalls       int
	matchCatCalls      int
	indexedProducts    []string
	indexedPosts       []string
	indexedCategories  []string
	removed            []string
	initialized        bool
}

func (s *stubIndex) Enabled() bool { return s.enabled }

func (s *stubIndex) Initialize(context.Context) error {
	s.initialized = true
	return nil
}

func (s *stubIndex) IndexProduct(_ context.Context, p domain.Product) error {
	if s.indexProductFn != nil {
		if err := s.indexProductFn(p); err != nil {
			return err
		}
	}
	s.indexedProducts = append(s.indexedProducts, p.ID)
	return nil
}

func (s *stubIndex) IndexPost(_ context.Context, p domain.Post) error {
	if s.indexPostFn != nil {
		if err := s.indexPostFn(p); err != nil {
			return err
		}
	}
	s.indexedPosts = append(s.indexedPosts, p.ID)
	return nil
}

func (s *stubIndex) IndexCategory(_ context.Context, c domain.Category) error {
	if s.indexCategoryFn != nil {
		if err := s.indexCategoryFn(c); err != nil {
			return err
		}
	}
	s.indexedCategories = append(s.indexedCategories, c.ID)
	return nil
}

func (s *stubIndex) Remove(_ context.Context, _ index.Kind, id string) error {
	s.removed = append(s.removed, id)
	return nil
}

func (s *stubIndex) SearchProducts(_ context.Context, q index.ProductQuery) (domain.Page[domain.Product], error) {
	s.searchProductCalls++
	if s.searchProductsFn != nil {
		return s.searchProductsFn(q)
	}
	return domain.NewPage([]domain.Product{}, 0, q.Page, q.Limit), nil
}

func (s *stubIndex) SearchPosts(_ context.Context, q index.PostQuery) (domain.Page[domain.Post], error) {
	s.searchPostCalls++
	if s.searchPostsFn != nil {
		return s.searchPostsFn(q)
	}
	return domain.NewPage([]domain.Post{}, 0, q.Page, q.Limit), nil
}

func (s *stubIndex) SuggestProducts(_ context.Context, raw, folded string, limit int) ([]domain.SuggestionItem, error) {
	s.suggestCalls++
	if s.suggestFn != nil {
		return s.suggestFn(raw, folded, limit)
	}
	return nil, nil
}

func (s *stubIndex) MatchCategoryIDs(_ context.Context, keyword string, limit int) ([]string, error) {
	s.matchCatCalls++
	if s.matchCatsFn != nil {
		return s.matchCatsFn(keyword, limit)
	}
	return nil, nil
}

func (s *stubIndex) Count(_ context.Context, kind index.Kind) (int, error) {
	if s.countFn != nil {
		return s.countFn(kind)
	}
	return 0, nil
}

// stubProductRepo is a scriptable ProductRepository.
type stubProductRepo struct {
	searchFn    func(keyword string, categoryIDs []string, page, limit int) ([]domain.Product, int, error)
	countAllFn  func() (int, error)
	streamAllFn func(fn func(domain.Product) error) error

	searchCalls int
	lastLimit   int
}

func (s *stubProductRepo) Search(_ context.Context, keyword string, categoryIDs []string, page, limit int) ([]domain.Product, int, error) {
	s.searchCalls++
	s.lastLimit = limit
	if s.searchFn != nil {
		return s.searchFn(keyword, categoryIDs, page, limit)
	}
	return nil, 0, nil
}

func (s *stubProductRepo) CountAll(context.Context) (int, error) {
	if s.countAllFn != nil {
		return s.countAllFn()
	}
	return 0, nil
}

func (s *stubProductRepo) StreamAll(_ context.Context, _ int, fn func(domain.Product) error) error {
	if s.streamAllFn != nil {
		return s.streamAllFn(fn)
	}
	return nil
}

type stubPostRepo struct {
	searchFn    func(keyword string, page, limit int) ([]domain.Post, int, error)
	countAllFn  func() (int, error)
	streamAllFn func(fn func(domain.Post) error) error

	searchCalls int
}

func (s *stubPostRepo) Search(_ context.Context, keyword string, page, limit int) ([]domain.Post, int, error) {
	s.searchCalls++
	if s.searchFn != nil {
		return s.searchFn(keyword, page, limit)
	}
	return nil, 0, nil
}

func (s *stubPostRepo) CountAll(context.Context) (int, error) {
	if s.countAllFn != nil {
		return s.countAllFn()
	}
	return 0, nil
}

func (s *stubPostRepo) StreamAll(_ context.Context, _ int, fn func(domain.Post) error) error {
	if s.streamAllFn != nil {
		return s.streamAllFn(fn)
	}
	return nil
}

type stubCategoryRepo struct {
	searchByNameFn func(keyword string, limit int) ([]domain.Category, error)
	countAllFn     func() (int, error)
	streamAllFn    func(fn func(domain.Category) error) error

	searchByNameCalls int
}

func (s *stubCategoryRepo) SearchByName(_ context.Context, keyword string, limit int) ([]domain.Category, error) {
	s.searchByNameCalls++
	if s.searchByNameFn != nil {
		return s.searchByNameFn(keyword, limit)
	}
	return nil, nil
}

func (s *stubCategoryRepo) CountAll(context.Context) (int, error) {
	if s.countAllFn != nil {
		return s.countAllFn()
	}
	return 0, nil
}

func (s *stubCategoryRepo) StreamAll(_ context.Context, _ int, fn func(domain.Category) error) error {
	if s.streamAllFn != nil {
		return s.streamAllFn(fn)
	}
	return nil
}

type stubUserRepo struct {
	findFn  func(searchTerm string, limit, offset int) ([]domain.User, error)
	countFn func(searchTerm string) (int, error)
}

func (s *stubUserRepo) Find(_ context.Context, searchTerm string, limit, offset int) ([]domain.User, error) {
	if s.findFn != nil {
		return s.findFn(searchTerm, limit, offset)
	}
	return nil, nil
}

func (s *stubUserRepo) Count(_ context.Context, searchTerm string) (int, error) {
	if s.countFn != nil {
		return s.countFn(searchTerm)
	}
	return 0, nil
}

func products(ids ...string) []domain.Product {
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Product{ID: id, Name: "product " + id})
	}
	return out
}

func posts(ids ...string) []domain.Post {
	out := make([]domain.Post, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Post{ID: id, Caption: "post " + id})
	}
	return out
}
