// Package memory is an in-memory index.Client for tests and local
// development. Matching is substring-based over the same fields the real
// engine indexes; scoring and fuzziness are not simulated.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/mekongmart/search-service/internal/domain"
	"github.com/mekongmart/search-service/internal/index"
	"github.com/mekongmart/search-service/internal/normalize"
)

// Client implements index.Client over in-process maps. Thread-safe.
type Client struct {
	mu         sync.RWMutex
	products   map[string]index.ProductDocument
	posts      map[string]index.PostDocument
	categories map[string]index.CategoryDocument
}

func New() *Client {
	return &Client{
		products:   make(map[string]index.ProductDocument),
		posts:      make(map[string]index.PostDocument),
		categories: make(map[string]index.CategoryDocument),
	}
}

func (c *Client) Enabled() bool { return true }

func (c *Client) Initialize(context.Context) error { return nil }

func (c *Client) IndexProduct(_ context.Context, p domain.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = index.NewProductDocument(p)
	return nil
}

func (c *Client) IndexPost(_ context.Context, p domain.Post) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posts[p.ID] = index.NewPostDocument(p)
	return nil
}

func (c *Client) IndexCategory(_ context.Context, cat domain.Category) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories[cat.ID] = index.NewCategoryDocument(cat)
	return nil
}

func (c *Client) Remove(_ context.Context, kind index.Kind, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch kind {
	case index.KindProduct:
		delete(c.products, id)
	case index.KindPost:
		delete(c.posts, id)
	case index.KindCategory:
		delete(c.categories, id)
	}
	return nil
}

func (c *Client) SearchProducts(_ context.Context, q index.ProductQuery) (domain.Page[domain.Product], error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	matched := make([]domain.Product, 0)
	for _, doc := range c.products {
		if matchesTerms(q.Raw, q.Folded, doc.Name, doc.AlternateName, doc.Description, doc.CategoryName, strings.Join(doc.Tags, " ")) {
			matched = append(matched, doc.Product)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	return paginate(matched, q.Page, q.Limit), nil
}

func (c *Client) SearchPosts(_ context.Context, q index.PostQuery) (domain.Page[domain.Post], error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	matched := make([]domain.Post, 0)
	for _, doc := range c.posts {
		if matchesTerms(q.Raw, q.Folded, doc.Caption, doc.Content, doc.AuthorName, strings.Join(doc.Tags, " ")) {
			matched = append(matched, doc.Post)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	return paginate(matched, q.Page, q.Limit), nil
}

func (c *Client) SuggestProducts(_ context.Context, raw, folded string, limit int) ([]domain.SuggestionItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rawPrefix := strings.ToLower(raw)
	items := make([]domain.SuggestionItem, 0, limit)
	seen := make(map[string]struct{})

	ids := make([]string, 0, len(c.products))
	for id := range c.products {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		doc := c.products[id]
		for _, input := range doc.Suggest.Input {
			if strings.HasPrefix(input, rawPrefix) || strings.HasPrefix(input, folded) {
				if _, ok := seen[doc.ID]; !ok {
					seen[doc.ID] = struct{}{}
					items = append(items, domain.SuggestionItem{
						ID:           doc.ID,
						Name:         doc.Name,
						Price:        doc.Price,
						ThumbnailURL: doc.ThumbnailURL,
					})
				}
				break
			}
		}
		if len(items) >= limit {
			break
		}
	}
	return items, nil
}

func (c *Client) MatchCategoryIDs(_ context.Context, keyword string, limit int) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	folded := normalize.Fold(keyword)
	ids := make([]string, 0)
	for _, doc := range c.categories {
		if matchesTerms(keyword, folded, doc.Name) {
			ids = append(ids, doc.ID)
		}
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (c *Client) Count(_ context.Context, kind index.Kind) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch kind {
	case index.KindProduct:
		return len(c.products), nil
	case index.KindPost:
		return len(c.posts), nil
	case index.KindCategory:
		return len(c.categories), nil
	}
	return 0, nil
}

func matchesTerms(raw, folded string, fields ...string) bool {
	rawLower := strings.ToLower(raw)
	for _, f := range fields {
		if f == "" {
			continue
		}
		fLower := strings.ToLower(f)
		if strings.Contains(fLower, rawLower) {
			return true
		}
		if folded != "" && strings.Contains(normalize.Fold(f), folded) {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, page, limit int) domain.Page[T] {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	total := len(items)

	offset := (page - 1) * limit
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return domain.NewPage(items[offset:end], total, page, limit)
}
