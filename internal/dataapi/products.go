package dataapi

import (
	"context"
	"net/http"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/cache"
)

// Release is one release window of a product. Dates are YYYY-MM-DD strings
// as delivered by the data service.
type Release struct {
	Product        string  `json:"product"`
	Version        string  `json:"version"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	Featured       bool    `json:"featured"`
	UpdateChannel  string  `json:"update_channel,omitempty"`
	ReleaseChannel string  `json:"release_channel,omitempty"`
	BuildID        string  `json:"build_id,omitempty"`
	Platform       string  `json:"platform,omitempty"`
	Throttle       float64 `json:"throttle,omitempty"`
}

// ProductsResult is the answer of the current-products endpoint: the plain
// product name list plus all release windows keyed by product.
type ProductsResult struct {
	Products []string             `json:"products"`
	Hits     map[string][]Release `json:"hits"`
	Total    int                  `json:"total"`
}

// ProductsService wraps the current-products resource.
type ProductsService struct {
	client *Client
}

// Get fetches the product list with all release windows.
func (s *ProductsService) Get(ctx context.Context) (*ProductsResult, error) {
	s.client.recordClassFetch("CurrentProducts", cache.OutcomeMiss)

	result := new(ProductsResult)
	if err := s.client.get(ctx, "/products/", nil, result); err != nil {
		return nil, err
	}

	return result, nil
}

// Post creates a new product with its initial version.
func (s *ProductsService) Post(ctx context.Context, product, initialVersion string) error {
	payload := struct {
		Product string `json:"product"`
		Version string `json:"version"`
	}{Product: product, Version: initialVersion}

	return s.client.send(ctx, http.MethodPost, "/products/", nil, payload, nil)
}
