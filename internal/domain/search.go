package domain

import "time"

// Limit bounds for a single search section. Requested limits outside this
// range are clamped, never rejected.
const (
	MinLimit = 1
	MaxLimit = 50
)

// ClampLimit forces a requested page size into [MinLimit, MaxLimit], applying
// the given default when the request carries no usable value.
func ClampLimit(limit, def int) int {
	if limit <= 0 {
		limit = def
	}
	if limit < MinLimit {
		return MinLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Product is the searchable view of a catalog product. The same struct is the
// source `_source` shape of an index document and the row shape returned by
// the datastore fallback, so merged pages stay uniformly typed.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	AlternateName string    `json:"alternate_name,omitempty"`
	Slug          string    `json:"slug,omitempty"`
	Description   string    `json:"description,omitempty"`
	CategoryID    string    `json:"category_id,omitempty"`
	CategoryName  string    `json:"category_name,omitempty"`
	ShopID        string    `json:"shop_id,omitempty"`
	ShopName      string    `json:"shop_name,omitempty"`
	Price         int64     `json:"price"`
	Currency      string    `json:"currency,omitempty"`
	Status        string    `json:"status,omitempty"`
	ThumbnailURL  string    `json:"thumbnail_url,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitzero"`
	UpdatedAt     time.Time `json:"updated_at,omitzero"`
}

// Post is the searchable view of a social post.
type Post struct {
	ID           string    `json:"id"`
	Caption      string    `json:"caption"`
	Content      string    `json:"content,omitempty"`
	AuthorID     string    `json:"author_id,omitempty"`
	AuthorName   string    `json:"author_name,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitzero"`
}

// User is the searchable view of a marketplace user profile.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Category is a catalog category, consulted to narrow product searches.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SuggestionItem is one autocomplete candidate. Identity is the product ID;
// a suggestion response never contains the same ID twice.
type SuggestionItem struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Price        int64  `json:"price"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// Page is one page of search results.
//
// Total may come from a single source's own estimate or, for merged pages,
// the conservative max of two disagreeing sources. See service.MergePages.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// NewPage builds a page, computing TotalPages as ceil(total/limit).
func NewPage[T any](items []T, total, page, limit int) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if limit > 0 {
		totalPages = total / limit
		if total%limit > 0 {
			totalPages++
		}
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

// HasMore reports whether pages beyond the current one exist.
func (p Page[T]) HasMore() bool {
	return p.Page < p.TotalPages
}

// ProductSection is the products part of a global search response.
type ProductSection struct {
	Items   []Product `json:"items"`
	Total   int       `json:"total"`
	Limit   int       `json:"limit"`
	HasMore bool      `json:"has_more"`
}

// PostSection is the posts part of a global search response. Posts keep their
// pagination detail because the mobile feed pages through them.
type PostSection struct {
	Items      []Post `json:"items"`
	Total      int    `json:"total"`
	Limit      int    `json:"limit"`
	HasMore    bool   `json:"has_more"`
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
}

// UserSection is the users part of a global search response.
type UserSection struct {
	Items   []User `json:"items"`
	Total   int    `json:"total"`
	Limit   int    `json:"limit"`
	HasMore bool   `json:"has_more"`
}

// GlobalResult is the composite response of a cross-entity search. Sections
// are independent: a failed branch yields an empty section, never an error.
type GlobalResult struct {
	Query    string         `json:"query"`
	Products ProductSection `json:"products"`
	Posts    PostSection    `json:"posts"`
	Users    UserSection    `json:"users"`
}

// EmptyProductSection returns a zeroed products section with the given limit.
func EmptyProductSection(limit int) ProductSection {
	return ProductSection{Items: []Product{}, Limit: limit}
}

// EmptyPostSection returns a zeroed posts section with the given limit.
func EmptyPostSection(limit int) PostSection {
	return PostSection{Items: []Post{}, Limit: limit, Page: 1}
}

// EmptyUserSection returns a zeroed users section with the given limit.
func EmptyUserSection(limit int) UserSection {
	return UserSection{Items: []User{}, Limit: limit}
}
