package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListParams are forwarded to the backend as query parameters; sorting and
// filtering are the backend's job on this path.
type ListParams struct {
	Query    string
	Category string
	MinPrice float64
	MaxPrice float64
	Sort     string
	Page     int
	Limit    int
}

func (p ListParams) values() url.Values {
	q := url.Values{}
	if p.Query != "" {
		q.Set("q", p.Query)
	}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	if p.MinPrice > 0 {
		q.Set("minPrice", fmt.Sprintf("%g", p.MinPrice))
	}
	if p.MaxPrice > 0 {
		q.Set("maxPrice", fmt.Sprintf("%g", p.MaxPrice))
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	if p.Page > 1 {
		q.Set("page", fmt.Sprint(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", fmt.Sprint(p.Limit))
	}
	return q
}

type ProductPage struct {
	Products []Product
	Total    int
}

func (c *Client) Products(ctx context.Context, params ListParams) (ProductPage, error) {
	raw, err := c.doRaw(ctx, "", http.MethodGet, "/products", params.values())
	if err != nil {
		return ProductPage{}, err
	}
	products, total, err := decodeProducts(raw)
	if err != nil {
		return ProductPage{}, err
	}
	return ProductPage{Products: products, Total: total}, nil
}

func (c *Client) Product(ctx context.Context, id string) (Product, error) {
	var p Product
	err := c.do(ctx, "", http.MethodGet, "/products/"+id, nil, nil, &p)
	return p, err
}

func (c *Client) FeaturedProducts(ctx context.Context) ([]Product, error) {
	return c.productList(ctx, "/products/featured")
}

func (c *Client) TrendingProducts(ctx context.Context) ([]Product, error) {
	return c.productList(ctx, "/products/trending")
}

func (c *Client) TopRatedProducts(ctx context.Context) ([]Product, error) {
	return c.productList(ctx, "/products/top-rated")
}

func (c *Client) productList(ctx context.Context, path string) ([]Product, error) {
	raw, err := c.doRaw(ctx, "", http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	products, _, err := decodeProducts(raw)
	return products, err
}

// VendorProducts lists the products owned by a vendor (vendor dashboard).
func (c *Client) VendorProducts(ctx context.Context, token, vendorID string, params ListParams) (ProductPage, error) {
	raw, err := c.doRaw(ctx, token, http.MethodGet, "/products/vendor/"+vendorID, params.values())
	if err != nil {
		return ProductPage{}, err
	}
	products, total, err := decodeProducts(raw)
	if err != nil {
		return ProductPage{}, err
	}
	return ProductPage{Products: products, Total: total}, nil
}

// ProductInput is the vendor-editable subset of product fields.
type ProductInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Stock       int      `json:"stock"`
	Brand       string   `json:"brand,omitempty"`
	Category    string   `json:"category,omitempty"`
	Status      string   `json:"status,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

func (c *Client) CreateProduct(ctx context.Context, token string, in ProductInput) (Product, error) {
	var p Product
	err := c.do(ctx, token, http.MethodPost, "/products", nil, in, &p)
	return p, err
}

func (c *Client) UpdateProduct(ctx context.Context, token, id string, in ProductInput) (Product, error) {
	var p Product
	err := c.do(ctx, token, http.MethodPut, "/products/"+id, nil, in, &p)
	return p, err
}

func (c *Client) DeleteProduct(ctx context.Context, token, id string) error {
	return c.do(ctx, token, http.MethodDelete, "/products/"+id, nil, nil, nil)
}

type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (c *Client) AddReview(ctx context.Context, token, productID string, in ReviewInput) error {
	return c.do(ctx, token, http.MethodPost, "/products/"+productID+"/reviews", nil, in, nil)
}
