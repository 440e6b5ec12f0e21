// Package httphandler exposes the search API over HTTP.
package httphandler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mekongmart/search-service/internal/domain"
	"github.com/mekongmart/search-service/internal/index"
	"github.com/mekongmart/search-service/internal/normalize"
	"github.com/mekongmart/search-service/internal/service"
	"github.com/mekongmart/search-service/pkg/httputil"
)

// SearchHandler serves the public search endpoints.
type SearchHandler struct {
	global    *service.GlobalSearcher
	products  *service.ProductSearcher
	posts     *service.PostSearcher
	users     *service.UserSearcher
	suggester *service.Suggester
	idx       index.Client
	log       *slog.Logger
}

func NewSearchHandler(
	global *service.GlobalSearcher,
	products *service.ProductSearcher,
	posts *service.PostSearcher,
	users *service.UserSearcher,
	suggester *service.Suggester,
	idx index.Client,
	log *slog.Logger,
) *SearchHandler {
	return &SearchHandler{
		global:    global,
		products:  products,
		posts:     posts,
		users:     users,
		suggester: suggester,
		idx:       idx,
		log:       log,
	}
}

// Global handles GET /api/v1/search.
func (h *SearchHandler) Global(w http.ResponseWriter, r *http.Request) {
	opts := service.GlobalOptions{
		ProductsLimit: queryInt(r, "productsLimit"),
		PostsLimit:    queryInt(r, "postsLimit"),
		PostsPage:     queryInt(r, "page"),
		UsersLimit:    queryInt(r, "usersLimit"),
	}

	result, err := h.global.Search(r.Context(), r.URL.Query().Get("q"), opts)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// Products handles GET /api/v1/search/products.
func (h *SearchHandler) Products(w http.ResponseWriter, r *http.Request) {
	page, err := h.products.Search(r.Context(), r.URL.Query().Get("q"), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: page})
}

// Posts handles GET /api/v1/search/posts.
func (h *SearchHandler) Posts(w http.ResponseWriter, r *http.Request) {
	page, err := h.posts.Search(r.Context(), r.URL.Query().Get("q"), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: page})
}

// Users handles GET /api/v1/search/users.
func (h *SearchHandler) Users(w http.ResponseWriter, r *http.Request) {
	page, err := h.users.Search(r.Context(), r.URL.Query().Get("q"), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: page})
}

// Suggest handles GET /api/v1/search/suggest.
func (h *SearchHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	items, err := h.suggester.Suggest(r.Context(), r.URL.Query().Get("text"), queryInt(r, "limit"))
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: items})
}

type inspectResponse struct {
	Query          string                  `json:"query"`
	Folded         string                  `json:"folded"`
	Tokens         []string                `json:"tokens"`
	IndexEnabled   bool                    `json:"index_enabled"`
	Suggester      []domain.SuggestionItem `json:"suggester,omitempty"`
	SuggesterError string                  `json:"suggester_error,omitempty"`
	IndexHits      []domain.Product        `json:"index_hits,omitempty"`
	IndexError     string                  `json:"index_error,omitempty"`
	Merged         []domain.SuggestionItem `json:"merged"`
	Global         *domain.GlobalResult    `json:"global,omitempty"`
}

// Inspect handles GET /api/v1/search/inspect: a side-by-side diagnostic of
// the raw suggester output, the raw index hits, the merged suggestion list
// and the global result for one query. Not a stable contract.
func (h *SearchHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	text := r.URL.Query().Get("text")
	limit := service.ClampSuggestLimit(queryInt(r, "limit"))
	folded := normalize.Fold(text)

	resp := inspectResponse{
		Query:        text,
		Folded:       folded,
		Tokens:       normalize.Tokenize(text, folded),
		IndexEnabled: h.idx.Enabled(),
		Merged:       []domain.SuggestionItem{},
	}
	if text == "" {
		httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: resp})
		return
	}

	if h.idx.Enabled() {
		if items, err := h.idx.SuggestProducts(ctx, text, folded, limit); err != nil {
			resp.SuggesterError = err.Error()
		} else {
			resp.Suggester = items
		}
		hits, err := h.idx.SearchProducts(ctx, index.ProductQuery{
			Raw:    text,
			Folded: folded,
			Tokens: resp.Tokens,
			Page:   1,
			Limit:  limit,
		})
		if err != nil {
			resp.IndexError = err.Error()
		} else {
			resp.IndexHits = hits.Items
		}
	}

	if merged, err := h.suggester.Suggest(ctx, text, limit); err == nil {
		resp.Merged = merged
	}
	if global, err := h.global.Search(ctx, text, service.GlobalOptions{}); err == nil {
		resp.Global = global
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: resp})
}

// queryInt parses an integer query parameter, returning 0 (use the default)
// when absent or malformed.
func queryInt(r *http.Request, name string) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
