package dataapi

import (
	"context"
	"net/http"
)

// FeaturedService wraps the featured-versions resource.
type FeaturedService struct {
	client *Client
}

// Put replaces the featured version lists of the given products. Products
// not present in the map are left untouched by the data service.
func (s *FeaturedService) Put(ctx context.Context, versionsByProduct map[string][]string) (bool, error) {
	if err := s.client.send(
		ctx, http.MethodPut, "/releases/featured/", nil, versionsByProduct, nil,
	); err != nil {
		return false, err
	}

	return true, nil
}
