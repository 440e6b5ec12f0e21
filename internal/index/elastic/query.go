package elastic

import (
	"github.com/mekongmart/search-service/internal/index"
)

// Relative clause weights. Every clause is additive ("should" with minimum
// match 1): any single signal is enough to surface a result, and multiple
// signals compound the score.
const (
	boostPhrasePrefix = 6.0
	boostExactTerms   = 8.0
	boostSuggestedIDs = 12.0
)

// buildProductQuery constructs the product search DSL:
//  1. fuzzy multi_match across name/alternate_name/category_name/description/
//     tags, name weighted highest;
//  2. the same multi_match for the folded text when it differs from the raw;
//  3. a boosted phrase-prefix on name, favoring queries that are prefixes of
//     real names;
//  4. a higher-boosted exact terms match against the precomputed search_terms
//     set, letting short exact substrings outrank fuzzy noise;
//  5. when the completion suggester already produced candidates, an ids
//     clause with the highest weight so autocomplete-quality matches surface
//     first in full search too.
func buildProductQuery(q index.ProductQuery) map[string]any {
	fields := []string{"name^4", "alternate_name^3", "category_name^2", "description", "tags"}

	should := []any{
		multiMatch(q.Raw, fields),
	}
	if q.Folded != "" && q.Folded != q.Raw {
		should = append(should, multiMatch(q.Folded, fields))
	}

	should = append(should, map[string]any{
		"match_phrase_prefix": map[string]any{
			"name": map[string]any{
				"query": q.Raw,
				"boost": boostPhrasePrefix,
			},
		},
	})

	if len(q.Tokens) > 0 {
		should = append(should, map[string]any{
			"terms": map[string]any{
				"search_terms": q.Tokens,
				"boost":        boostExactTerms,
			},
		})
	}

	if len(q.BoostIDs) > 0 {
		should = append(should, map[string]any{
			"ids": map[string]any{
				"values": q.BoostIDs,
				"boost":  boostSuggestedIDs,
			},
		})
	}

	return searchBody(should, q.Page, q.Limit)
}

// buildPostQuery constructs the post search DSL with the same shape as the
// product query, minus the ids clause (posts have no suggester).
func buildPostQuery(q index.PostQuery) map[string]any {
	fields := []string{"caption^3", "author_name^2", "content", "tags"}

	should := []any{
		multiMatch(q.Raw, fields),
	}
	if q.Folded != "" && q.Folded != q.Raw {
		should = append(should, multiMatch(q.Folded, fields))
	}

	should = append(should, map[string]any{
		"match_phrase_prefix": map[string]any{
			"caption": map[string]any{
				"query": q.Raw,
				"boost": boostPhrasePrefix,
			},
		},
	})

	if len(q.Tokens) > 0 {
		should = append(should, map[string]any{
			"terms": map[string]any{
				"search_terms": q.Tokens,
				"boost":        boostExactTerms,
			},
		})
	}

	return searchBody(should, q.Page, q.Limit)
}

// buildCategoryMatchQuery resolves a keyword against category names; only the
// matched IDs are consumed, so the body requests a minimal source.
func buildCategoryMatchQuery(keyword string, limit int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"match": map[string]any{
				"name": map[string]any{
					"query":     keyword,
					"fuzziness": "AUTO",
				},
			},
		},
		"size":    limit,
		"_source": []string{"id"},
	}
}

func multiMatch(query string, fields []string) map[string]any {
	return map[string]any{
		"multi_match": map[string]any{
			"query":         query,
			"fields":        fields,
			"type":          "best_fields",
			"fuzziness":     "AUTO",
			"prefix_length": 1,
		},
	}
}

func searchBody(should []any, page, limit int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"should":               should,
				"minimum_should_match": 1,
			},
		},
		"from":             (page - 1) * limit,
		"size":             limit,
		"track_total_hits": true,
	}
}
