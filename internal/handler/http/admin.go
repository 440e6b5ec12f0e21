package httphandler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mekongmart/search-service/internal/domain"
	"github.com/mekongmart/search-service/internal/index"
	"github.com/mekongmart/search-service/internal/service"
	apperrors "github.com/mekongmart/search-service/pkg/errors"
	"github.com/mekongmart/search-service/pkg/httputil"
	"github.com/mekongmart/search-service/pkg/validator"
)

// AdminHandler serves index maintenance endpoints: manual document writes,
// document removal, and on-demand reindex reconciliation. These sit behind
// the gateway's admin auth, not exposed to end users.
type AdminHandler struct {
	indexer *service.Indexer
	reindex *service.ReindexCoordinator
	log     *slog.Logger
}

func NewAdminHandler(indexer *service.Indexer, reindex *service.ReindexCoordinator, log *slog.Logger) *AdminHandler {
	return &AdminHandler{indexer: indexer, reindex: reindex, log: log}
}

type indexProductRequest struct {
	ID           string   `json:"id" validate:"required"`
	Name         string   `json:"name" validate:"required"`
	CategoryID   string   `json:"category_id"`
	CategoryName string   `json:"category_name"`
	ShopID       string   `json:"shop_id"`
	ShopName     string   `json:"shop_name"`
	Price        int64    `json:"price" validate:"gte=0"`
	ThumbnailURL string   `json:"thumbnail_url"`
	Tags         []string `json:"tags"`
}

// IndexProduct handles POST /api/v1/search/admin/products.
func (h *AdminHandler) IndexProduct(w http.ResponseWriter, r *http.Request) {
	var req indexProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body"), h.log)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	p := domain.Product{
		ID:           req.ID,
		Name:         req.Name,
		CategoryID:   req.CategoryID,
		CategoryName: req.CategoryName,
		ShopID:       req.ShopID,
		ShopName:     req.ShopName,
		Price:        req.Price,
		ThumbnailURL: req.ThumbnailURL,
		Tags:         req.Tags,
	}
	if err := h.indexer.IndexProduct(r.Context(), p); err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: map[string]string{"id": req.ID}})
}

// RemoveDocument handles DELETE /api/v1/search/admin/{kind}/{id}.
func (h *AdminHandler) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	kind := index.Kind(chi.URLParam(r, "kind"))
	id := chi.URLParam(r, "id")

	valid := false
	for _, k := range index.Kinds() {
		if k == kind {
			valid = true
			break
		}
	}
	if !valid {
		httputil.WriteError(w, r, apperrors.InvalidInput("unknown index kind"), h.log)
		return
	}

	var err error
	switch kind {
	case index.KindProduct:
		err = h.indexer.RemoveProduct(r.Context(), id)
	case index.KindPost:
		err = h.indexer.RemovePost(r.Context(), id)
	case index.KindCategory:
		err = h.indexer.RemoveCategory(r.Context(), id)
	}
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id}})
}

// Reindex handles POST /api/v1/search/admin/reindex: a synchronous
// reconciliation run returning one report per index namespace.
func (h *AdminHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reindex.Run(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}
	if reports == nil {
		reports = []service.ReconciliationReport{}
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: reports})
}
