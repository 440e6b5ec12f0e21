// Package elastic implements the index.Client contract on Elasticsearch 8.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/mekongmart/search-service/internal/domain"
	"github.com/mekongmart/search-service/internal/index"
)

// Client owns the Elasticsearch connection and one-time bootstrap state.
//
// The ready flag is a plain checked-then-set guard with no lock: a bootstrap
// race re-runs index creation, which is idempotent, so no correctness window
// exists and request paths stay lock-free.
type Client struct {
	url    string
	prefix string
	logger *slog.Logger

	es    *elasticsearch.Client
	ready bool
}

// esErrorResponse decodes Elasticsearch error bodies.
type esErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

// searchResponse decodes search bodies with a typed hit source.
type searchResponse[T any] struct {
	Took int `json:"took"`
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source T `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// New creates a client for the given endpoint. An empty URL disables the
// index entirely: Enabled() reports false and all operations error, which
// callers treat as "fall back to the datastore". No connection is opened
// until first use.
func New(url, prefix string, logger *slog.Logger) *Client {
	return &Client{
		url:    url,
		prefix: prefix,
		logger: logger,
	}
}

// Enabled reports whether an index endpoint is configured.
func (c *Client) Enabled() bool {
	return c.url != ""
}

func (c *Client) connect() error {
	if c.es != nil {
		return nil
	}
	if !c.Enabled() {
		return fmt.Errorf("search index not configured")
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{c.url},
	})
	if err != nil {
		return fmt.Errorf("create elasticsearch client: %w", err)
	}
	c.es = es
	return nil
}

// Ping checks that the cluster is reachable. Used by the readiness endpoint.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.connect(); err != nil {
		return err
	}

	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: unexpected status %s", res.Status())
	}
	return nil
}

// Initialize pings the cluster and ensures every namespace exists with its
// mapping, creating missing ones. Idempotent and safe to re-run.
func (c *Client) Initialize(ctx context.Context) error {
	if err := c.connect(); err != nil {
		return err
	}
	if err := c.Ping(ctx); err != nil {
		return err
	}

	for _, kind := range index.Kinds() {
		if err := c.ensureIndex(ctx, kind); err != nil {
			return err
		}
	}

	c.ready = true
	return nil
}

// ensureReady lazily bootstraps on first use when Initialize was not called
// at startup (or failed there).
func (c *Client) ensureReady(ctx context.Context) error {
	if c.ready {
		return nil
	}
	return c.Initialize(ctx)
}

func (c *Client) ensureIndex(ctx context.Context, kind index.Kind) error {
	name := indexName(c.prefix, kind)

	res, err := c.es.Indices.Exists([]string{name}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", name, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == 200 {
		return nil
	}

	res, err = c.es.Indices.Create(
		name,
		c.es.Indices.Create.WithBody(strings.NewReader(mappingFor(kind))),
		c.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("create index %s: %s", name, decodeError(res.Body, res.Status()))
	}

	c.logger.Info("search index created", slog.String("index", name))
	return nil
}

// IndexProduct upserts one product document.
func (c *Client) IndexProduct(ctx context.Context, p domain.Product) error {
	return c.indexDocument(ctx, index.KindProduct, p.ID, index.NewProductDocument(p))
}

// IndexPost upserts one post document.
func (c *Client) IndexPost(ctx context.Context, p domain.Post) error {
	return c.indexDocument(ctx, index.KindPost, p.ID, index.NewPostDocument(p))
}

// IndexCategory upserts one category document.
func (c *Client) IndexCategory(ctx context.Context, cat domain.Category) error {
	return c.indexDocument(ctx, index.KindCategory, cat.ID, index.NewCategoryDocument(cat))
}

func (c *Client) indexDocument(ctx context.Context, kind index.Kind, id string, doc any) error {
	if err := c.ensureReady(ctx); err != nil {
		return err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s document: %w", kind, err)
	}

	name := indexName(c.prefix, kind)
	res, err := c.es.Index(
		name,
		bytes.NewReader(data),
		c.es.Index.WithDocumentID(id),
		c.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index %s document: %w", kind, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("index %s document: %s", kind, decodeError(res.Body, res.Status()))
	}

	c.logger.Debug("document indexed", slog.String("index", name), slog.String("id", id))
	return nil
}

// Remove deletes one document. A 404 is ignored: the document may simply
// never have been indexed.
func (c *Client) Remove(ctx context.Context, kind index.Kind, id string) error {
	if err := c.ensureReady(ctx); err != nil {
		return err
	}

	name := indexName(c.prefix, kind)
	res, err := c.es.Delete(name, id, c.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete %s document: %w", kind, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete %s document: %s", kind, decodeError(res.Body, res.Status()))
	}

	c.logger.Debug("document removed", slog.String("index", name), slog.String("id", id))
	return nil
}

// SearchProducts executes the multi-strategy product query and returns one
// ranked page. Total is the engine's own estimate, not merged.
func (c *Client) SearchProducts(ctx context.Context, q index.ProductQuery) (domain.Page[domain.Product], error) {
	hits, total, err := runSearch[domain.Product](ctx, c, index.KindProduct, buildProductQuery(q))
	if err != nil {
		return domain.Page[domain.Product]{}, err
	}
	return domain.NewPage(hits, total, q.Page, q.Limit), nil
}

// SearchPosts executes the post query and returns one ranked page.
func (c *Client) SearchPosts(ctx context.Context, q index.PostQuery) (domain.Page[domain.Post], error) {
	hits, total, err := runSearch[domain.Post](ctx, c, index.KindPost, buildPostQuery(q))
	if err != nil {
		return domain.Page[domain.Post]{}, err
	}
	return domain.NewPage(hits, total, q.Page, q.Limit), nil
}

// MatchCategoryIDs resolves a keyword to matching category IDs.
func (c *Client) MatchCategoryIDs(ctx context.Context, keyword string, limit int) ([]string, error) {
	hits, _, err := runSearch[domain.Category](ctx, c, index.KindCategory, buildCategoryMatchQuery(keyword, limit))
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

// Count returns the number of documents in a namespace. A missing index
// returns 0 with no error; that state just means "needs reindex".
func (c *Client) Count(ctx context.Context, kind index.Kind) (int, error) {
	if err := c.connect(); err != nil {
		return 0, err
	}

	name := indexName(c.prefix, kind)
	res, err := c.es.Count(
		c.es.Count.WithIndex(name),
		c.es.Count.WithContext(ctx),
	)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", kind, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == 404 {
		return 0, nil
	}
	if res.IsError() {
		return 0, fmt.Errorf("count %s: %s", kind, decodeError(res.Body, res.Status()))
	}

	var out struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("count %s: decode response: %w", kind, err)
	}
	return out.Count, nil
}

// runSearch marshals the body, executes the search, and decodes typed hits.
func runSearch[T any](ctx context.Context, c *Client, kind index.Kind, body map[string]any) ([]T, int, error) {
	if err := c.ensureReady(ctx); err != nil {
		return nil, 0, err
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal %s query: %w", kind, err)
	}

	res, err := c.es.Search(
		c.es.Search.WithIndex(indexName(c.prefix, kind)),
		c.es.Search.WithBody(bytes.NewReader(data)),
		c.es.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("search %s: %w", kind, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, 0, fmt.Errorf("search %s: %s", kind, decodeError(res.Body, res.Status()))
	}

	var esResp searchResponse[T]
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, 0, fmt.Errorf("search %s: decode response: %w", kind, err)
	}

	hits := make([]T, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		hits = append(hits, hit.Source)
	}
	return hits, esResp.Hits.Total.Value, nil
}

// decodeError extracts a readable message from an Elasticsearch error body,
// falling back to the HTTP status line.
func decodeError(body io.Reader, status string) string {
	var errResp esErrorResponse
	if err := json.NewDecoder(body).Decode(&errResp); err == nil && errResp.Error.Type != "" {
		return fmt.Sprintf("%s: %s", errResp.Error.Type, errResp.Error.Reason)
	}
	return "unexpected status " + status
}
