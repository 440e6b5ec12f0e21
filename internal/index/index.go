// Package index defines the contract between the search orchestration layer
// and the full-text index engine, plus the document shapes stored in it.
package index

import (
	"context"

	"github.com/mekongmart/search-service/internal/domain"
	"github.com/mekongmart/search-service/internal/normalize"
)

// Kind names an index namespace. Users are deliberately absent: user search
// always goes through the datastore.
type Kind string

const (
	KindProduct  Kind = "products"
	KindPost     Kind = "posts"
	KindCategory Kind = "categories"
)

// Kinds lists every index namespace the engine maintains.
func Kinds() []Kind {
	return []Kind{KindProduct, KindPost, KindCategory}
}

// maxSuggestInputs bounds the completion-suggester input list per document.
const maxSuggestInputs = 32

// ProductQuery carries everything the query builder needs for one product
// search: the raw text, its folded variant, the token set derived from both,
// and optional suggester-sourced IDs to boost above all other signals.
type ProductQuery struct {
	Raw      string
	Folded   string
	Tokens   []string
	BoostIDs []string
	Page     int
	Limit    int
}

// PostQuery carries the inputs for one post search.
type PostQuery struct {
	Raw    string
	Folded string
	Tokens []string
	Page   int
	Limit  int
}

// Client is the index engine contract consumed by the orchestrators.
//
// Callers must check Enabled before relying on index-backed results and must
// treat any error identically to "disabled": log a warning and fall back.
type Client interface {
	// Enabled reports whether an index endpoint is configured at all.
	Enabled() bool

	// Initialize pings the engine and ensures every namespace exists with its
	// mapping. Idempotent; also invoked lazily on first use.
	Initialize(ctx context.Context) error

	IndexProduct(ctx context.Context, p domain.Product) error
	IndexPost(ctx context.Context, p domain.Post) error
	IndexCategory(ctx context.Context, c domain.Category) error

	// Remove deletes one document. Removing an absent document is not an error.
	Remove(ctx context.Context, kind Kind, id string) error

	SearchProducts(ctx context.Context, q ProductQuery) (domain.Page[domain.Product], error)
	SearchPosts(ctx context.Context, q PostQuery) (domain.Page[domain.Post], error)

	// SuggestProducts runs the completion suggester for both the raw and the
	// folded prefix, deduplicating by ID with raw-prefix matches first.
	SuggestProducts(ctx context.Context, raw, folded string, limit int) ([]domain.SuggestionItem, error)

	// MatchCategoryIDs resolves a keyword against indexed category names.
	MatchCategoryIDs(ctx context.Context, keyword string, limit int) ([]string, error)

	// Count returns the number of documents in a namespace. A missing index
	// counts as zero, never as an error: "missing" means "needs reindex".
	Count(ctx context.Context, kind Kind) (int, error)
}

// SuggestField is the completion-suggester payload stored on a document.
type SuggestField struct {
	Input []string `json:"input"`
}

// ProductDocument is a product as stored in the index: the raw entity plus
// the derived token set (exact-term boosting) and suggester inputs.
type ProductDocument struct {
	domain.Product
	SearchTerms []string     `json:"search_terms"`
	Suggest     SuggestField `json:"suggest"`
}

// PostDocument is a post as stored in the index.
type PostDocument struct {
	domain.Post
	SearchTerms []string     `json:"search_terms"`
	Suggest     SuggestField `json:"suggest"`
}

// CategoryDocument is a category as stored in the index.
type CategoryDocument struct {
	domain.Category
	SearchTerms []string     `json:"search_terms"`
	Suggest     SuggestField `json:"suggest"`
}

// NewProductDocument derives the index document for a product. Suggest inputs
// come from all tokenized name/shop/category/tag text, raw and folded, so a
// prefix of any synonym token can trigger a suggestion.
func NewProductDocument(p domain.Product) ProductDocument {
	texts := []string{p.Name, p.AlternateName, p.CategoryName, p.ShopName}
	texts = append(texts, p.Tags...)

	terms := searchTerms(texts)
	return ProductDocument{
		Product:     p,
		SearchTerms: terms,
		Suggest:     SuggestField{Input: capInputs(terms)},
	}
}

// NewPostDocument derives the index document for a post.
func NewPostDocument(p domain.Post) PostDocument {
	texts := []string{p.Caption, p.AuthorName}
	texts = append(texts, p.Tags...)

	terms := searchTerms(texts)
	return PostDocument{
		Post:        p,
		SearchTerms: terms,
		Suggest:     SuggestField{Input: capInputs(terms)},
	}
}

// NewCategoryDocument derives the index document for a category.
func NewCategoryDocument(c domain.Category) CategoryDocument {
	terms := searchTerms([]string{c.Name})
	return CategoryDocument{
		Category:    c,
		SearchTerms: terms,
		Suggest:     SuggestField{Input: capInputs(terms)},
	}
}

// searchTerms tokenizes each text in both its raw and folded form and merges
// the results, deduplicated in first-seen order.
func searchTerms(texts []string) []string {
	all := make([]string, 0, len(texts)*2)
	for _, t := range texts {
		if t == "" {
			continue
		}
		all = append(all, t, normalize.Fold(t))
	}
	return normalize.Tokenize(all...)
}

func capInputs(terms []string) []string {
	if len(terms) > maxSuggestInputs {
		return terms[:maxSuggestInputs]
	}
	return terms
}
