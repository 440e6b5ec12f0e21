package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/mekongmart/search-service/internal/domain"
	"github.com/mekongmart/search-service/internal/index"
)

// suggestSectionRaw and suggestSectionFolded name the two completion lookups
// within a single suggest request.
const (
	suggestSectionRaw    = "raw"
	suggestSectionFolded = "folded"
)

// suggestResponse decodes completion-suggester bodies.
type suggestResponse struct {
	Suggest map[string][]struct {
		Options []struct {
			Source domain.SuggestionItem `json:"_source"`
		} `json:"options"`
	} `json:"suggest"`
}

// SuggestProducts runs the completion suggester against both the raw and the
// folded prefix in one request, deduplicating by ID with raw-prefix matches
// ranked first. The folded lookup is skipped when it equals the raw prefix.
func (c *Client) SuggestProducts(ctx context.Context, raw, folded string, limit int) ([]domain.SuggestionItem, error) {
	if err := c.ensureReady(ctx); err != nil {
		return nil, err
	}

	body := buildSuggestBody(raw, folded, limit)
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal suggest query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithIndex(indexName(c.prefix, index.KindProduct)),
		c.es.Search.WithBody(bytes.NewReader(data)),
		c.es.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("suggest products: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, fmt.Errorf("suggest products: %s", decodeError(res.Body, res.Status()))
	}

	var esResp suggestResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("suggest products: decode response: %w", err)
	}

	return collectSuggestions(esResp, limit), nil
}

func buildSuggestBody(raw, folded string, limit int) map[string]any {
	completion := func(prefix string) map[string]any {
		return map[string]any{
			"prefix": prefix,
			"completion": map[string]any{
				"field":           "suggest",
				"size":            limit,
				"skip_duplicates": true,
				"fuzzy": map[string]any{
					"fuzziness": "AUTO",
				},
			},
		}
	}

	suggest := map[string]any{
		suggestSectionRaw: completion(raw),
	}
	if folded != "" && folded != raw {
		suggest[suggestSectionFolded] = completion(folded)
	}

	return map[string]any{
		"suggest": suggest,
		"_source": []string{"id", "name", "price", "thumbnail_url"},
	}
}

// collectSuggestions flattens the raw section first, then the folded one,
// keeping the first occurrence of each ID.
func collectSuggestions(resp suggestResponse, limit int) []domain.SuggestionItem {
	seen := make(map[string]struct{})
	items := make([]domain.SuggestionItem, 0, limit)

	for _, section := range []string{suggestSectionRaw, suggestSectionFolded} {
		for _, entry := range resp.Suggest[section] {
			for _, opt := range entry.Options {
				if opt.Source.ID == "" {
					continue
				}
				if _, ok := seen[opt.Source.ID]; ok {
					continue
				}
				seen[opt.Source.ID] = struct{}{}
				items = append(items, opt.Source)
				if len(items) >= limit {
					return items
				}
			}
		}
	}

	return items
}
