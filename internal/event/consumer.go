// Package event keeps the search index in sync with the rest of the
// marketplace by consuming catalog, feed, and category change events.
package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mekongmart/search-service/internal/domain"
	"github.com/mekongmart/search-service/internal/service"
	"github.com/mekongmart/search-service/pkg/kafka"
)

// Topics lists every topic the search service subscribes to. One consumer
// per topic, all sharing the same handler.
func Topics() []string {
	domains := []string{"product", "post", "category"}
	actions := []string{"created", "updated", "deleted"}

	topics := make([]string, 0, len(domains)*len(actions))
	for _, d := range domains {
		for _, a := range actions {
			topics = append(topics, kafka.Topic(d, a))
		}
	}
	return topics
}

// SyncHandler applies one marketplace event to the search index. Errors
// propagate to the consumer's retry loop; after the retry budget the message
// is skipped, and the next reindex reconciliation repairs the gap.
type SyncHandler struct {
	indexer *service.Indexer
	log     *slog.Logger
}

func NewSyncHandler(indexer *service.Indexer, log *slog.Logger) *SyncHandler {
	return &SyncHandler{indexer: indexer, log: log}
}

// Handle dispatches on the event type. Unknown types are committed without
// action so a producer-side schema addition cannot wedge the consumer group.
func (h *SyncHandler) Handle(ctx context.Context, event *kafka.Event) error {
	switch event.EventType {
	case "product.created", "product.updated":
		var p domain.Product
		if err := event.UnmarshalData(&p); err != nil {
			return fmt.Errorf("decode product payload: %w", err)
		}
		return h.indexer.IndexProduct(ctx, p)

	case "product.deleted":
		return h.indexer.RemoveProduct(ctx, event.AggregateID)

	case "post.created", "post.updated":
		var p domain.Post
		if err := event.UnmarshalData(&p); err != nil {
			return fmt.Errorf("decode post payload: %w", err)
		}
		return h.indexer.IndexPost(ctx, p)

	case "post.deleted":
		return h.indexer.RemovePost(ctx, event.AggregateID)

	case "category.created", "category.updated":
		var c domain.Category
		if err := event.UnmarshalData(&c); err != nil {
			return fmt.Errorf("decode category payload: %w", err)
		}
		return h.indexer.IndexCategory(ctx, c)

	case "category.deleted":
		return h.indexer.RemoveCategory(ctx, event.AggregateID)

	default:
		h.log.Debug("ignoring event type", "event_type", event.EventType)
		return nil
	}
}
