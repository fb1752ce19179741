package dataapi

import (
	"context"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/cache"
)

// Platform is one operating system the processor knows about.
type Platform struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// PlatformsService wraps the platforms reference resource.
type PlatformsService struct {
	client *Client
}

// Get fetches the list of known platforms.
func (s *PlatformsService) Get(ctx context.Context) ([]Platform, error) {
	s.client.recordClassFetch("Platforms", cache.OutcomeMiss)

	var platforms []Platform
	if err := s.client.get(ctx, "/platforms/", nil, &platforms); err != nil {
		return nil, err
	}

	return platforms, nil
}
