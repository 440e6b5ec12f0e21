package httphandler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mekongmart/search-service/internal/domain"
	"github.com/mekongmart/search-service/internal/index/memory"
	"github.com/mekongmart/search-service/internal/service"
	"github.com/mekongmart/search-service/pkg/health"
)

type fixedProductRepo struct {
	items []domain.Product
}

func (r *fixedProductRepo) Search(_ context.Context, keyword string, _ []string, page, limit int) ([]domain.Product, int, error) {
	matched := make([]domain.Product, 0)
	for _, p := range r.items {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(keyword)) {
			matched = append(matched, p)
		}
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, len(matched), nil
}

func (r *fixedProductRepo) CountAll(context.Context) (int, error) { return len(r.items), nil }

func (r *fixedProductRepo) StreamAll(_ context.Context, _ int, fn func(domain.Product) error) error {
	for _, p := range r.items {
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

type emptyPostRepo struct{}

func (emptyPostRepo) Search(context.Context, string, int, int) ([]domain.Post, int, error) {
	return nil, 0, nil
}
func (emptyPostRepo) CountAll(context.Context) (int, error) { return 0, nil }
func (emptyPostRepo) StreamAll(context.Context, int, func(domain.Post) error) error {
	return nil
}

type emptyCategoryRepo struct{}

func (emptyCategoryRepo) SearchByName(context.Context, string, int) ([]domain.Category, error) {
	return nil, nil
}
func (emptyCategoryRepo) CountAll(context.Context) (int, error) { return 0, nil }
func (emptyCategoryRepo) StreamAll(context.Context, int, func(domain.Category) error) error {
	return nil
}

type emptyUserRepo struct{}

func (emptyUserRepo) Find(context.Context, string, int, int) ([]domain.User, error) {
	return nil, nil
}
func (emptyUserRepo) Count(context.Context, string) (int, error) { return 0, nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	idx := memory.New()

	require.NoError(t, idx.IndexProduct(context.Background(), domain.Product{
		ID: "p-1", Name: "Cà chua bi", Price: 15000,
	}))
	require.NoError(t, idx.IndexProduct(context.Background(), domain.Product{
		ID: "p-2", Name: "Cà rốt", Price: 12000,
	}))

	productRepo := &fixedProductRepo{items: []domain.Product{
		{ID: "p-1", Name: "Cà chua bi", Price: 15000},
		{ID: "p-2", Name: "Cà rốt", Price: 12000},
		{ID: "p-3", Name: "ca chua to", Price: 20000},
	}}

	products := service.NewProductSearcher(idx, productRepo, emptyCategoryRepo{}, log)
	posts := service.NewPostSearcher(idx, emptyPostRepo{}, log)
	users := service.NewUserSearcher(emptyUserRepo{}, log)
	global := service.NewGlobalSearcher(products, posts, users, log)
	suggester := service.NewSuggester(idx, productRepo, nil, log)
	indexer := service.NewIndexer(idx, log)
	reindex := service.NewReindexCoordinator(idx, productRepo, emptyPostRepo{}, emptyCategoryRepo{}, nil, 100, log)

	searchHandler := NewSearchHandler(global, products, posts, users, suggester, idx, log)
	adminHandler := NewAdminHandler(indexer, reindex, log)

	return NewRouter(searchHandler, adminHandler, health.NewHandler(), "search-service", log)
}

func doRequest(t *testing.T, router http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, target))
}

func TestGlobalSearch(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/search?q=ca+chua", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result domain.GlobalResult
	decodeData(t, rec, &result)

	assert.Equal(t, "ca chua", result.Query)
	assert.NotEmpty(t, result.Products.Items)
	assert.Empty(t, result.Posts.Items)
	assert.Empty(t, result.Users.Items)
}

func TestGlobalSearch_MissingQuery(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductSearch(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/search/products?q=c%C3%A0+chua&limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page domain.Page[domain.Product]
	decodeData(t, rec, &page)
	require.NotEmpty(t, page.Items)
	assert.Equal(t, 10, page.Limit)
}

func TestSuggest(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/search/suggest?text=ca", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var items []domain.SuggestionItem
	decodeData(t, rec, &items)
	assert.NotEmpty(t, items)
}

func TestSuggest_EmptyPrefix(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/search/suggest", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInspect(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/search/inspect?text=C%C3%A0+chua", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp inspectResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, "Cà chua", resp.Query)
	assert.Equal(t, "ca chua", resp.Folded)
	assert.Contains(t, resp.Tokens, "chua")
	assert.True(t, resp.IndexEnabled)
	assert.NotEmpty(t, resp.IndexHits)
	assert.NotEmpty(t, resp.Merged)
	require.NotNil(t, resp.Global)
	assert.NotEmpty(t, resp.Global.Products.Items)
}

func TestInspect_EmptyText(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/search/inspect", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp inspectResponse
	decodeData(t, rec, &resp)
	assert.Empty(t, resp.Query)
	assert.Nil(t, resp.Global)
}

func TestAdminIndexProduct(t *testing.T) {
	router := newTestRouter(t)

	body := strings.NewReader(`{"id": "p-9", "name": "Dưa hấu", "price": 30000}`)
	rec := doRequest(t, router, http.MethodPost, "/api/v1/search/admin/products", body)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestAdminIndexProduct_MissingName(t *testing.T) {
	router := newTestRouter(t)

	body := strings.NewReader(`{"id": "p-9"}`)
	rec := doRequest(t, router, http.MethodPost, "/api/v1/search/admin/products", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRemoveDocument_UnknownKind(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodDelete, "/api/v1/search/admin/widgets/p-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRemoveDocument(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodDelete, "/api/v1/search/admin/products/p-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminReindex(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/search/admin/reindex", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var reports []service.ReconciliationReport
	decodeData(t, rec, &reports)
	assert.Len(t, reports, 3)
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
