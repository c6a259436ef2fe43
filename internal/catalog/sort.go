package catalog

import (
	"sort"
	"strings"

	"storefront/internal/backend"
)

// FilterLocal applies the narrowing the backend does not take as query
// parameters: brand substring, minimum rating and in-stock-only, plus the
// free-text match when running against a local product set.
func FilterLocal(products []backend.Product, f Filters) []backend.Product {
	out := products[:0:0]
	for _, p := range products {
		if f.Brand != "" && !strings.Contains(strings.ToLower(p.Brand), strings.ToLower(f.Brand)) {
			continue
		}
		if f.MinRating > 0 && p.AverageRating < float64(f.MinRating) {
			continue
		}
		if f.InStockOnly && !p.InStock() {
			continue
		}
		out = append(out, p)
	}
	return out
}

// matches implements the free-text search over name/description/brand/tags.
func matches(p backend.Product, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Description), term) ||
		strings.Contains(strings.ToLower(p.Brand), term) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// SortProducts orders a product slice by a UI sort key. Used only in
// local-data mode; when the backend serves the listing the sort key travels
// upstream in the query string instead.
func SortProducts(products []backend.Product, key string) {
	var less func(a, b backend.Product) bool
	switch key {
	case "price-low":
		less = func(a, b backend.Product) bool { return a.Price < b.Price }
	case "price-high":
		less = func(a, b backend.Product) bool { return a.Price > b.Price }
	case "rating":
		less = func(a, b backend.Product) bool { return a.AverageRating > b.AverageRating }
	case "newest":
		less = func(a, b backend.Product) bool { return a.CreatedAt > b.CreatedAt }
	case "popular":
		less = func(a, b backend.Product) bool { return a.Purchases > b.Purchases }
	default: // relevance
		less = func(a, b backend.Product) bool { return a.Views > b.Views }
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}

// SearchLocal runs the whole pipeline over an in-memory product set:
// free-text match, filters, then client-side sort. This is the dummy-data
// path used when no backend listing is involved.
func SearchLocal(products []backend.Product, f Filters) []backend.Product {
	results := make([]backend.Product, 0, len(products))
	for _, p := range products {
		if f.Query != "" && !matches(p, f.Query) {
			continue
		}
		if f.Category != "" && p.Category.Slug != f.Category {
			continue
		}
		if f.MinPrice > 0 && p.Price < f.MinPrice {
			continue
		}
		if f.MaxPrice > 0 && p.Price > f.MaxPrice {
			continue
		}
		results = append(results, p)
	}
	results = FilterLocal(results, f)
	SortProducts(results, f.Sort)
	if f.Limit > 0 && len(results) > f.Limit {
		results = results[:f.Limit]
	}
	return results
}
