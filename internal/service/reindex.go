package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mekongmart/search-service/internal/domain"
	"github.com/mekongmart/search-service/internal/index"
	"github.com/mekongmart/search-service/internal/repository"
	apperrors "github.com/mekongmart/search-service/pkg/errors"
	"github.com/mekongmart/search-service/pkg/kafka"
)

// Reconciliation actions.
const (
	ActionNone        = "none"
	ActionFullReindex = "full-reindex"
)

const defaultReindexBatchSize = 500

// ReconciliationReport records what the coordinator found and did for one
// index namespace.
type ReconciliationReport struct {
	Kind       index.Kind `json:"kind"`
	IndexCount int        `json:"index_count"`
	StoreCount int        `json:"store_count"`
	Action     string     `json:"action"`
	Indexed    int        `json:"indexed"`
	Failures   int        `json:"failures"`
	Err        string     `json:"error,omitempty"`
}

// EventPublisher is the slice of the kafka producer the coordinator needs.
// A nil publisher disables the completion event.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *kafka.Event) error
}

// ReindexCoordinator reconciles each index namespace against the datastore.
// A namespace whose document count has fallen below the store count (deleted
// index, mapping change, missed events) is rebuilt by streaming every row
// back in. Individual document failures are counted and skipped so one bad
// row cannot abort a rebuild.
type ReindexCoordinator struct {
	idx        index.Client
	products   repository.ProductRepository
	posts      repository.PostRepository
	categories repository.CategoryRepository
	publisher  EventPublisher
	batchSize  int
	log        *slog.Logger

	mu sync.Mutex // serializes runs; cron and the admin endpoint share one coordinator
}

func NewReindexCoordinator(
	idx index.Client,
	products repository.ProductRepository,
	posts repository.PostRepository,
	categories repository.CategoryRepository,
	publisher EventPublisher,
	batchSize int,
	log *slog.Logger,
) *ReindexCoordinator {
	if batchSize <= 0 {
		batchSize = defaultReindexBatchSize
	}
	return &ReindexCoordinator{
		idx:        idx,
		products:   products,
		posts:      posts,
		categories: categories,
		publisher:  publisher,
		batchSize:  batchSize,
		log:        log,
	}
}

// Run reconciles all namespaces and returns one report per namespace. With
// the index disabled it returns no reports and no error.
func (c *ReindexCoordinator) Run(ctx context.Context) ([]ReconciliationReport, error) {
	if !c.idx.Enabled() {
		c.log.Info("reindex skipped, index engine disabled")
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.idx.Initialize(ctx); err != nil {
		return nil, apperrors.Wrap(err, "initialize index")
	}

	started := time.Now()

	// The namespaces are disjoint, so the three reconciliations run in
	// parallel, each writing its own report slot.
	reports := make([]ReconciliationReport, 3)
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		reports[0] = c.reconcile(ctx, index.KindProduct, c.products.CountAll, c.streamProducts)
	}()
	go func() {
		defer wg.Done()
		reports[1] = c.reconcile(ctx, index.KindPost, c.posts.CountAll, c.streamPosts)
	}()
	go func() {
		defer wg.Done()
		reports[2] = c.reconcile(ctx, index.KindCategory, c.categories.CountAll, c.streamCategories)
	}()
	wg.Wait()

	for _, r := range reports {
		c.log.Info("reindex reconciliation finished",
			"kind", r.Kind,
			"action", r.Action,
			"index_count", r.IndexCount,
			"store_count", r.StoreCount,
			"indexed", r.Indexed,
			"failures", r.Failures,
		)
	}

	c.publishCompleted(ctx, reports, time.Since(started))
	return reports, nil
}

// reconcile compares counts for one namespace and rebuilds it when the index
// is behind the store. Count or stream errors end up in the report, not in
// Run's error: one broken namespace must not stop the others.
func (c *ReindexCoordinator) reconcile(ctx context.Context, kind index.Kind, countStore func(context.Context) (int, error), stream func(context.Context, *ReconciliationReport) error) ReconciliationReport {
	report := ReconciliationReport{Kind: kind, Action: ActionNone}

	indexCount, err := c.idx.Count(ctx, kind)
	if err != nil {
		indexErrorsTotal.WithLabelValues(string(kind), "count").Inc()
		report.Err = err.Error()
		return report
	}
	report.IndexCount = indexCount

	storeCount, err := countStore(ctx)
	if err != nil {
		report.Err = err.Error()
		return report
	}
	report.StoreCount = storeCount

	if indexCount >= storeCount {
		return report
	}

	report.Action = ActionFullReindex
	if err := stream(ctx, &report); err != nil {
		report.Err = err.Error()
	}
	return report
}

func (c *ReindexCoordinator) streamProducts(ctx context.Context, report *ReconciliationReport) error {
	return c.products.StreamAll(ctx, c.batchSize, func(p domain.Product) error {
		if err := c.idx.IndexProduct(ctx, p); err != nil {
			c.recordFailure(report, p.ID, err)
		} else {
			report.Indexed++
			reindexedDocumentsTotal.WithLabelValues(string(index.KindProduct)).Inc()
		}
		return ctx.Err()
	})
}

func (c *ReindexCoordinator) streamPosts(ctx context.Context, report *ReconciliationReport) error {
	return c.posts.StreamAll(ctx, c.batchSize, func(p domain.Post) error {
		if err := c.idx.IndexPost(ctx, p); err != nil {
			c.recordFailure(report, p.ID, err)
		} else {
			report.Indexed++
			reindexedDocumentsTotal.WithLabelValues(string(index.KindPost)).Inc()
		}
		return ctx.Err()
	})
}

func (c *ReindexCoordinator) streamCategories(ctx context.Context, report *ReconciliationReport) error {
	return c.categories.StreamAll(ctx, c.batchSize, func(cat domain.Category) error {
		if err := c.idx.IndexCategory(ctx, cat); err != nil {
			c.recordFailure(report, cat.ID, err)
		} else {
			report.Indexed++
			reindexedDocumentsTotal.WithLabelValues(string(index.KindCategory)).Inc()
		}
		return ctx.Err()
	})
}

func (c *ReindexCoordinator) recordFailure(report *ReconciliationReport, id string, err error) {
	report.Failures++
	indexErrorsTotal.WithLabelValues(string(report.Kind), "reindex").Inc()
	c.log.Warn("document reindex failed", "kind", report.Kind, "id", id, "error", err)
}

func (c *ReindexCoordinator) publishCompleted(ctx context.Context, reports []ReconciliationReport, took time.Duration) {
	if c.publisher == nil {
		return
	}

	event, err := kafka.NewEvent("search.reindex.completed", "search-index", "search", "search-service", map[string]any{
		"reports":     reports,
		"duration_ms": took.Milliseconds(),
	})
	if err != nil {
		c.log.Warn("reindex completion event build failed", "error", err)
		return
	}
	if err := c.publisher.Publish(ctx, kafka.Topic("search", "reindexed"), event); err != nil {
		c.log.Warn("reindex completion event publish failed", "error", err)
	}
}
