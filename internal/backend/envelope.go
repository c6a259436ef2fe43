package backend

import (
	"bytes"
	"encoding/json"
)

// The backend wraps most payloads as {data: ...} but is not consistent about
// it. All shape tolerance lives here; nothing outside this file guesses at
// response structure.

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

// unwrapData returns the data member when present, otherwise the raw body.
func unwrapData(raw []byte) json.RawMessage {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		return env.Data
	}
	return raw
}

// errorDetail extracts the human message and machine code from an error body,
// tolerating {message}, {error} and nested {data:{message}} shapes.
func errorDetail(raw []byte) (code, message string) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", ""
	}
	message = env.Message
	if message == "" {
		message = env.Error
	}
	if message == "" && len(env.Data) > 0 {
		var inner envelope
		if json.Unmarshal(env.Data, &inner) == nil {
			message = inner.Message
		}
	}
	return env.Code, message
}

// decodeOrders normalizes the order-list shapes seen in the wild:
// {data:[...]}, {data:{orders:[...]}}, {orders:[...]} and a bare array.
func decodeOrders(raw []byte) ([]Order, error) {
	payload := unwrapData(raw)

	var orders []Order
	if err := json.Unmarshal(payload, &orders); err == nil {
		return orders, nil
	}

	var nested struct {
		Orders []Order `json:"orders"`
	}
	if err := json.Unmarshal(payload, &nested); err != nil {
		return nil, err
	}
	return nested.Orders, nil
}

// decodeProducts tolerates {data:[...]}, {data:{products:[...]}} and a bare
// array, and carries the total count through when the backend paginates.
func decodeProducts(raw []byte) ([]Product, int, error) {
	payload := unwrapData(raw)

	var products []Product
	if err := json.Unmarshal(payload, &products); err == nil {
		return products, len(products), nil
	}

	var nested struct {
		Products []Product `json:"products"`
		Total    int       `json:"total"`
		Count    int       `json:"count"`
	}
	if err := json.Unmarshal(payload, &nested); err != nil {
		return nil, 0, err
	}
	total := nested.Total
	if total == 0 {
		total = nested.Count
	}
	if total == 0 {
		total = len(nested.Products)
	}
	return nested.Products, total, nil
}
