package backend

import (
	"context"
	"net/http"
)

func (c *Client) Orders(ctx context.Context, token string) ([]Order, error) {
	raw, err := c.doRaw(ctx, token, http.MethodGet, "/orders", nil)
	if err != nil {
		return nil, err
	}
	return decodeOrders(raw)
}

func (c *Client) Order(ctx context.Context, token, id string) (Order, error) {
	var o Order
	err := c.do(ctx, token, http.MethodGet, "/orders/"+id, nil, nil, &o)
	return o, err
}

// CheckoutInput creates an order from the server-side cart.
type CheckoutInput struct {
	ShippingAddress Address `json:"shippingAddress"`
	PaymentIntentID string  `json:"paymentIntentId,omitempty"`
}

type Address struct {
	Name    string `json:"name"`
	Street  string `json:"street"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

func (c *Client) CreateOrder(ctx context.Context, token string, in CheckoutInput) (Order, error) {
	var o Order
	err := c.do(ctx, token, http.MethodPost, "/orders", nil, in, &o)
	return o, err
}

// VendorOrders lists orders containing the vendor's products.
func (c *Client) VendorOrders(ctx context.Context, token string) ([]Order, error) {
	raw, err := c.doRaw(ctx, token, http.MethodGet, "/orders/vendor", nil)
	if err != nil {
		return nil, err
	}
	return decodeOrders(raw)
}
