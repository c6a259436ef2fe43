package backend

import (
	"context"
	"net/http"
)

func (c *Client) GetCart(ctx context.Context, token string) (Cart, error) {
	var cart Cart
	err := c.do(ctx, token, http.MethodGet, "/cart", nil, nil, &cart)
	return cart, err
}

type cartAdd struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (c *Client) AddToCart(ctx context.Context, token, productID string, qty int) error {
	return c.do(ctx, token, http.MethodPost, "/cart/add", nil, cartAdd{ProductID: productID, Quantity: qty}, nil)
}

func (c *Client) UpdateCartItem(ctx context.Context, token, productID string, qty int) error {
	return c.do(ctx, token, http.MethodPut, "/cart/update", nil, cartAdd{ProductID: productID, Quantity: qty}, nil)
}

func (c *Client) RemoveFromCart(ctx context.Context, token, productID string) error {
	return c.do(ctx, token, http.MethodDelete, "/cart/remove/"+productID, nil, nil, nil)
}

func (c *Client) ClearCart(ctx context.Context, token string) error {
	return c.do(ctx, token, http.MethodDelete, "/cart/clear", nil, nil, nil)
}
