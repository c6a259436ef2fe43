package backend

import (
	"context"
	"net/http"
)

func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var cats []Category
	err := c.do(ctx, "", http.MethodGet, "/categories", nil, nil, &cats)
	return cats, err
}

func (c *Client) CategoryProducts(ctx context.Context, slug string, params ListParams) (ProductPage, error) {
	raw, err := c.doRaw(ctx, "", http.MethodGet, "/categories/"+slug+"/products", params.values())
	if err != nil {
		return ProductPage{}, err
	}
	products, total, err := decodeProducts(raw)
	if err != nil {
		return ProductPage{}, err
	}
	return ProductPage{Products: products, Total: total}, nil
}
