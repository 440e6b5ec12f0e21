package service

import (
	"context"
	"log/slog"

	"github.com/mekongmart/search-service/internal/domain"
	"github.com/mekongmart/search-service/internal/index"
	apperrors "github.com/mekongmart/search-service/pkg/errors"
	"github.com/mekongmart/search-service/pkg/logger"
)

// Indexer applies catalog and feed changes to the search index. With the
// index disabled every method is a no-op, so event consumers and admin
// handlers can call it unconditionally.
type Indexer struct {
	idx index.Client
	log *slog.Logger
}

func NewIndexer(idx index.Client, log *slog.Logger) *Indexer {
	return &Indexer{idx: idx, log: log}
}

func (i *Indexer) IndexProduct(ctx context.Context, p domain.Product) error {
	if !i.idx.Enabled() {
		return nil
	}
	if p.ID == "" || p.Name == "" {
		return apperrors.InvalidInput("product id and name are required")
	}
	if err := i.idx.IndexProduct(ctx, p); err != nil {
		indexErrorsTotal.WithLabelValues("products", "index").Inc()
		return apperrors.Wrap(err, "index product")
	}
	logger.WithContext(ctx, i.log).Debug("product indexed", "product_id", p.ID)
	return nil
}

func (i *Indexer) RemoveProduct(ctx context.Context, id string) error {
	return i.remove(ctx, index.KindProduct, id)
}

func (i *Indexer) IndexPost(ctx context.Context, p domain.Post) error {
	if !i.idx.Enabled() {
		return nil
	}
	if p.ID == "" {
		return apperrors.InvalidInput("post id is required")
	}
	if err := i.idx.IndexPost(ctx, p); err != nil {
		indexErrorsTotal.WithLabelValues("posts", "index").Inc()
		return apperrors.Wrap(err, "index post")
	}
	logger.WithContext(ctx, i.log).Debug("post indexed", "post_id", p.ID)
	return nil
}

func (i *Indexer) RemovePost(ctx context.Context, id string) error {
	return i.remove(ctx, index.KindPost, id)
}

func (i *Indexer) IndexCategory(ctx context.Context, c domain.Category) error {
	if !i.idx.Enabled() {
		return nil
	}
	if c.ID == "" || c.Name == "" {
		return apperrors.InvalidInput("category id and name are required")
	}
	if err := i.idx.IndexCategory(ctx, c); err != nil {
		indexErrorsTotal.WithLabelValues("categories", "index").Inc()
		return apperrors.Wrap(err, "index category")
	}
	return nil
}

func (i *Indexer) RemoveCategory(ctx context.Context, id string) error {
	return i.remove(ctx, index.KindCategory, id)
}

func (i *Indexer) remove(ctx context.Context, kind index.Kind, id string) error {
	if !i.idx.Enabled() {
		return nil
	}
	if id == "" {
		return apperrors.InvalidInput("document id is required")
	}
	if err := i.idx.Remove(ctx, kind, id); err != nil {
		indexErrorsTotal.WithLabelValues(string(kind), "remove").Inc()
		return apperrors.Wrap(err, "remove document")
	}
	return nil
}
