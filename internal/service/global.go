package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/mekongmart/search-service/internal/domain"
	apperrors "github.com/mekongmart/search-service/pkg/errors"
	"github.com/mekongmart/search-service/pkg/logger"
)

// GlobalOptions tunes the per-section sizes of a cross-entity search. Zero
// values take the section defaults. Only the posts section pages: the mobile
// feed scrolls through posts while products and users stay a fixed teaser.
type GlobalOptions struct {
	ProductsLimit int
	PostsLimit    int
	PostsPage     int
	UsersLimit    int
}

// GlobalSearcher fans one keyword out to the product, post, and user
// searchers concurrently and assembles a composite result. Branches are
// isolated: an error or panic in one section empties that section and leaves
// the others intact.
type GlobalSearcher struct {
	products *ProductSearcher
	posts    *PostSearcher
	users    *UserSearcher
	log      *slog.Logger
}

func NewGlobalSearcher(products *ProductSearcher, posts *PostSearcher, users *UserSearcher, log *slog.Logger) *GlobalSearcher {
	return &GlobalSearcher{products: products, posts: posts, users: users, log: log}
}

// Search runs the cross-entity search. The keyword is validated once here;
// the branch searchers re-validate but can no longer reject it.
func (g *GlobalSearcher) Search(ctx context.Context, keyword string, opts GlobalOptions) (*domain.GlobalResult, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, apperrors.InvalidInput("search keyword must not be empty")
	}

	productsLimit := domain.ClampLimit(opts.ProductsLimit, defaultProductLimit)
	postsLimit := domain.ClampLimit(opts.PostsLimit, defaultPostLimit)
	usersLimit := domain.ClampLimit(opts.UsersLimit, defaultUserLimit)
	postsPage := opts.PostsPage
	if postsPage < 1 {
		postsPage = 1
	}

	result := &domain.GlobalResult{
		Query:    keyword,
		Products: domain.EmptyProductSection(productsLimit),
		Posts:    domain.EmptyPostSection(postsLimit),
		Users:    domain.EmptyUserSection(usersLimit),
	}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		defer g.recoverBranch(ctx, "products")
		page, err := g.products.Search(ctx, keyword, 1, productsLimit)
		if err != nil {
			logger.WithContext(ctx, g.log).Warn("products branch failed in global search", "error", err)
			return
		}
		result.Products = domain.ProductSection{
			Items:   page.Items,
			Total:   page.Total,
			Limit:   page.Limit,
			HasMore: page.HasMore(),
		}
	}()

	go func() {
		defer wg.Done()
		defer g.recoverBranch(ctx, "posts")
		page, err := g.posts.Search(ctx, keyword, postsPage, postsLimit)
		if err != nil {
			logger.WithContext(ctx, g.log).Warn("posts branch failed in global search", "error", err)
			return
		}
		result.Posts = domain.PostSection{
			Items:      page.Items,
			Total:      page.Total,
			Limit:      page.Limit,
			HasMore:    page.HasMore(),
			Page:       page.Page,
			TotalPages: page.TotalPages,
		}
	}()

	go func() {
		defer wg.Done()
		defer g.recoverBranch(ctx, "users")
		page, err := g.users.Search(ctx, keyword, 1, usersLimit)
		if err != nil {
			logger.WithContext(ctx, g.log).Warn("users branch failed in global search", "error", err)
			return
		}
		result.Users = domain.UserSection{
			Items:   page.Items,
			Total:   page.Total,
			Limit:   page.Limit,
			HasMore: page.HasMore(),
		}
	}()

	wg.Wait()
	return result, nil
}

func (g *GlobalSearcher) recoverBranch(ctx context.Context, section string) {
	if r := recover(); r != nil {
		logger.WithContext(ctx, g.log).Error("global search branch panicked", "section", section, "panic", r)
	}
}
