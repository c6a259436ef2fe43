package catalog

import (
	"context"
	"encoding/json"
	"time"

	"storefront/internal/backend"
	"storefront/internal/cache"
)

// Cache lifetimes per list; rarely-changing lists keep longer.
const (
	featuredTTL = 15 * time.Minute
	trendingTTL = 10 * time.Minute
	topRatedTTL = 30 * time.Minute
)

// Service is the read side of the product catalog: it builds backend queries
// from the UI filters, serves the curated home-page lists through a
// fail-safe cache, and applies the filters the backend does not understand.
type Service struct {
	api   *backend.Client
	cache *cache.Client
}

func New(api *backend.Client, c *cache.Client) *Service {
	return &Service{api: api, cache: c}
}

// Filters collects everything the product list page can narrow by. Query,
// category, price bounds and sort are delegated to the backend; brand
// substring, rating floor and in-stock-only are applied locally on the
// returned page.
type Filters struct {
	Query       string
	Category    string
	Brand       string
	MinPrice    float64
	MaxPrice    float64
	MinRating   int
	InStockOnly bool
	Sort        string
	Page        int
	Limit       int
}

func (f Filters) listParams() backend.ListParams {
	limit := f.Limit
	if limit <= 0 {
		limit = 12
	}
	return backend.ListParams{
		Query:    f.Query,
		Category: f.Category,
		MinPrice: f.MinPrice,
		MaxPrice: f.MaxPrice,
		Sort:     f.Sort,
		Page:     f.Page,
		Limit:    limit,
	}
}

func (s *Service) List(ctx context.Context, f Filters) (backend.ProductPage, error) {
	page, err := s.api.Products(ctx, f.listParams())
	if err != nil {
		return backend.ProductPage{}, err
	}
	// Total stays the backend's figure: the local narrowing only sees this
	// page, so adjusting the overall count from it would just be a guess.
	page.Products = FilterLocal(page.Products, f)
	return page, nil
}

func (s *Service) Product(ctx context.Context, id string) (backend.Product, error) {
	return s.api.Product(ctx, id)
}

func (s *Service) Categories(ctx context.Context) ([]backend.Category, error) {
	return s.api.Categories(ctx)
}

func (s *Service) CategoryProducts(ctx context.Context, slug string, f Filters) (backend.ProductPage, error) {
	page, err := s.api.CategoryProducts(ctx, slug, f.listParams())
	if err != nil {
		return backend.ProductPage{}, err
	}
	page.Products = FilterLocal(page.Products, f)
	return page, nil
}

func (s *Service) Featured(ctx context.Context) ([]backend.Product, error) {
	return s.cachedList(ctx, "catalog:featured", featuredTTL, s.api.FeaturedProducts)
}

func (s *Service) Trending(ctx context.Context) ([]backend.Product, error) {
	return s.cachedList(ctx, "catalog:trending", trendingTTL, s.api.TrendingProducts)
}

func (s *Service) TopRated(ctx context.Context) ([]backend.Product, error) {
	return s.cachedList(ctx, "catalog:top-rated", topRatedTTL, s.api.TopRatedProducts)
}

func (s *Service) cachedList(ctx context.Context, key string, ttl time.Duration, fetch func(context.Context) ([]backend.Product, error)) ([]backend.Product, error) {
	if data, _ := s.cache.Get(ctx, key); data != nil {
		var products []backend.Product
		if json.Unmarshal(data, &products) == nil {
			return products, nil
		}
	}
	products, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if data, merr := json.Marshal(products); merr == nil {
		_ = s.cache.Set(ctx, key, data, ttl)
	}
	return products, nil
}
