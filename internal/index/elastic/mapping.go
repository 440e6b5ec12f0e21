package elastic

import (
	"fmt"

	"github.com/mekongmart/search-service/internal/index"
)

// Index namespaces are versioned with a suffix so a future mapping change can
// build a new namespace and cut over without deleting data in place.
const indexVersion = "v1"

// indexName returns the fully-qualified namespace for an entity kind, e.g.
// "market_products_v1".
func indexName(prefix string, kind index.Kind) string {
	return fmt.Sprintf("%s_%s_%s", prefix, kind, indexVersion)
}

// analysisSettings defines the folded analyzer shared by all mappings:
// standard tokenization, lowercase, and asciifolding so queries match with or
// without Vietnamese diacritics.
const analysisSettings = `{
    "number_of_shards": 1,
    "number_of_replicas": 0,
    "analysis": {
      "analyzer": {
        "folded": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase", "asciifolding"]
        }
      }
    }
  }`

// mappingFor returns the full index-creation body for an entity kind.
func mappingFor(kind index.Kind) string {
	switch kind {
	case index.KindProduct:
		return productMapping
	case index.KindPost:
		return postMapping
	case index.KindCategory:
		return categoryMapping
	default:
		return ""
	}
}

var productMapping = `{
  "settings": ` + analysisSettings + `,
  "mappings": {
    "properties": {
      "id":             { "type": "keyword" },
      "name":           { "type": "text", "analyzer": "folded", "fields": { "keyword": { "type": "keyword", "ignore_above": 256 } } },
      "alternate_name": { "type": "text", "analyzer": "folded" },
      "slug":           { "type": "keyword" },
      "description":    { "type": "text", "analyzer": "folded" },
      "category_id":    { "type": "keyword" },
      "category_name":  { "type": "text", "analyzer": "folded", "fields": { "keyword": { "type": "keyword" } } },
      "shop_id":        { "type": "keyword" },
      "shop_name":      { "type": "text", "analyzer": "folded" },
      "price":          { "type": "long" },
      "currency":       { "type": "keyword" },
      "status":         { "type": "keyword" },
      "thumbnail_url":  { "type": "keyword", "index": false },
      "tags":           { "type": "keyword" },
      "search_terms":   { "type": "keyword" },
      "suggest":        { "type": "completion" },
      "created_at":     { "type": "date" },
      "updated_at":     { "type": "date" }
    }
  }
}`

var postMapping = `{
  "settings": ` + analysisSettings + `,
  "mappings": {
    "properties": {
      "id":            { "type": "keyword" },
      "caption":       { "type": "text", "analyzer": "folded" },
      "content":       { "type": "text", "analyzer": "folded" },
      "author_id":     { "type": "keyword" },
      "author_name":   { "type": "text", "analyzer": "folded" },
      "thumbnail_url": { "type": "keyword", "index": false },
      "tags":          { "type": "keyword" },
      "search_terms":  { "type": "keyword" },
      "suggest":       { "type": "completion" },
      "created_at":    { "type": "date" }
    }
  }
}`

var categoryMapping = `{
  "settings": ` + analysisSettings + `,
  "mappings": {
    "properties": {
      "id":           { "type": "keyword" },
      "name":         { "type": "text", "analyzer": "folded", "fields": { "keyword": { "type": "keyword" } } },
      "search_terms": { "type": "keyword" },
      "suggest":      { "type": "completion" }
    }
  }
}`
