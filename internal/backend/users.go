package backend

import (
	"context"
	"net/http"
)

func (c *Client) Wishlist(ctx context.Context, token string) ([]Product, error) {
	raw, err := c.doRaw(ctx, token, http.MethodGet, "/users/wishlist", nil)
	if err != nil {
		return nil, err
	}
	products, _, err := decodeProducts(raw)
	return products, err
}

func (c *Client) AddToWishlist(ctx context.Context, token, productID string) error {
	return c.do(ctx, token, http.MethodPost, "/users/wishlist/"+productID, nil, nil, nil)
}

func (c *Client) RemoveFromWishlist(ctx context.Context, token, productID string) error {
	return c.do(ctx, token, http.MethodDelete, "/users/wishlist/"+productID, nil, nil, nil)
}

type PasswordUpdate struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (c *Client) UpdatePassword(ctx context.Context, token string, upd PasswordUpdate) error {
	return c.do(ctx, token, http.MethodPut, "/users/password", nil, upd, nil)
}
