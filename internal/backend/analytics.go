package backend

import (
	"context"
	"net/http"
)

func (c *Client) DashboardStats(ctx context.Context, token string) (DashboardStats, error) {
	var s DashboardStats
	err := c.do(ctx, token, http.MethodGet, "/analytics/dashboard", nil, nil, &s)
	return s, err
}

func (c *Client) TopProducts(ctx context.Context, token string) ([]Product, error) {
	raw, err := c.doRaw(ctx, token, http.MethodGet, "/analytics/products/top", nil)
	if err != nil {
		return nil, err
	}
	products, _, err := decodeProducts(raw)
	return products, err
}
