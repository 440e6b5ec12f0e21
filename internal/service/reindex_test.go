package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mekongmart/search-service/internal/domain"
	"github.com/mekongmart/search-service/internal/index"
	"github.com/mekongmart/search-service/pkg/kafka"
)

type capturedEvent struct {
	topic string
	event *kafka.Event
}

type stubPublisher struct {
	published []capturedEvent
}

func (s *stubPublisher) Publish(_ context.Context, topic string, event *kafka.Event) error {
	s.published = append(s.published, capturedEvent{topic: topic, event: event})
	return nil
}

func newCoordinator(idx *stubIndex, productRepo *stubProductRepo, publisher EventPublisher) *ReindexCoordinator {
	return NewReindexCoordinator(idx, productRepo, &stubPostRepo{}, &stubCategoryRepo{}, publisher, 100, testLogger())
}

func reportFor(t *testing.T, reports []ReconciliationReport, kind index.Kind) ReconciliationReport {
	t.Helper()
	for _, r := range reports {
		if r.Kind == kind {
			return r
		}
	}
	t.Fatalf("no report for kind %s", kind)
	return ReconciliationReport{}
}

func TestReindexCoordinator_DisabledIndexSkips(t *testing.T) {
	c := newCoordinator(&stubIndex{enabled: false}, &stubProductRepo{}, nil)

	reports, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, reports)
}

func TestReindexCoordinator_CountsMatchNoAction(t *testing.T) {
	idx := &stubIndex{
		enabled: true,
		countFn: func(index.Kind) (int, error) { return 7, nil },
	}
	productRepo := &stubProductRepo{
		countAllFn: func() (int, error) { return 7, nil },
	}
	c := newCoordinator(idx, productRepo, nil)

	reports, err := c.Run(context.Background())
	require.NoError(t, err)

	r := reportFor(t, reports, index.KindProduct)
	assert.Equal(t, ActionNone, r.Action)
	assert.Equal(t, 0, r.Indexed)
	assert.Empty(t, idx.indexedProducts)
}

func TestReindexCoordinator_UnderCountTriggersFullReindex(t *testing.T) {
	idx := &stubIndex{
		enabled: true,
		countFn: func(kind index.Kind) (int, error) {
			if kind == index.KindProduct {
				return 1, nil
			}
			return 0, nil
		},
	}
	productRepo := &stubProductRepo{
		countAllFn: func() (int, error) { return 3, nil },
		streamAllFn: func(fn func(domain.Product) error) error {
			for _, p := range products("a", "b", "c") {
				if err := fn(p); err != nil {
					return err
				}
			}
			return nil
		},
	}
	c := newCoordinator(idx, productRepo, nil)

	reports, err := c.Run(context.Background())
	require.NoError(t, err)

	r := reportFor(t, reports, index.KindProduct)
	assert.Equal(t, ActionFullReindex, r.Action)
	assert.Equal(t, 3, r.Indexed)
	assert.Equal(t, 0, r.Failures)
	assert.Equal(t, []string{"a", "b", "c"}, idx.indexedProducts)
}

func TestReindexCoordinator_RowFailureContinues(t *testing.T) {
	idx := &stubIndex{
		enabled: true,
		countFn: func(index.Kind) (int, error) { return 0, nil },
		indexProductFn: func(p domain.Product) error {
			if p.ID == "b" {
				return errBoom
			}
			return nil
		},
	}
	productRepo := &stubProductRepo{
		countAllFn: func() (int, error) { return 3, nil },
		streamAllFn: func(fn func(domain.Product) error) error {
			for _, p := range products("a", "b", "c") {
				if err := fn(p); err != nil {
					return err
				}
			}
			return nil
		},
	}
	c := newCoordinator(idx, productRepo, nil)

	reports, err := c.Run(context.Background())
	require.NoError(t, err)

	r := reportFor(t, reports, index.KindProduct)
	assert.Equal(t, 2, r.Indexed)
	assert.Equal(t, 1, r.Failures)
	assert.Equal(t, []string{"a", "c"}, idx.indexedProducts)
}

func TestReindexCoordinator_CountErrorReportedNotFatal(t *testing.T) {
	idx := &stubIndex{
		enabled: true,
		countFn: func(kind index.Kind) (int, error) {
			if kind == index.KindProduct {
				return 0, errBoom
			}
			return 0, nil
		},
	}
	c := newCoordinator(idx, &stubProductRepo{}, nil)

	reports, err := c.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 3)

	r := reportFor(t, reports, index.KindProduct)
	assert.Equal(t, ActionNone, r.Action)
	assert.NotEmpty(t, r.Err)
}

func TestReindexCoordinator_PublishesCompletionEvent(t *testing.T) {
	idx := &stubIndex{
		enabled: true,
		countFn: func(index.Kind) (int, error) { return 0, nil },
	}
	publisher := &stubPublisher{}
	c := newCoordinator(idx, &stubProductRepo{}, publisher)

	_, err := c.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, "market.search.reindexed", publisher.published[0].topic)
	assert.Equal(t, "search.reindex.completed", publisher.published[0].event.EventType)
}

func TestReindexCoordinator_InitializesIndex(t *testing.T) {
	idx := &stubIndex{enabled: true}
	c := newCoordinator(idx, &stubProductRepo{}, nil)

	_, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, idx.initialized)
}
