package backend

import (
	"context"
	"net/http"
)

// Payment processing itself lives with the external provider; the storefront
// only initiates an intent and reports the confirmation outcome.

type paymentIntentInput struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

func (c *Client) CreatePaymentIntent(ctx context.Context, token string, amount float64, currency string) (PaymentIntent, error) {
	if currency == "" {
		currency = "usd"
	}
	var pi PaymentIntent
	err := c.do(ctx, token, http.MethodPost, "/payments/create-intent", nil, paymentIntentInput{Amount: amount, Currency: currency}, &pi)
	return pi, err
}

type PaymentConfirmation struct {
	PaymentIntentID string `json:"paymentIntentId"`
	OrderID         string `json:"orderId,omitempty"`
}

func (c *Client) ConfirmPayment(ctx context.Context, token string, in PaymentConfirmation) error {
	return c.do(ctx, token, http.MethodPost, "/payments/confirm", nil, in, nil)
}
