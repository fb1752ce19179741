package dataapi

import (
	"context"
	"net/http"
)

// ReleasePayload is the body of a release creation.
type ReleasePayload struct {
	Product        string  `json:"product"`
	Version        string  `json:"version"`
	UpdateChannel  string  `json:"update_channel"`
	BuildID        string  `json:"build_id"`
	Platform       string  `json:"platform"`
	BetaNumber     *int    `json:"beta_number"`
	ReleaseChannel string  `json:"release_channel"`
	Throttle       float64 `json:"throttle"`
}

// ReleasesService wraps the releases resource.
type ReleasesService struct {
	client *Client
}

// Post creates a new release.
func (s *ReleasesService) Post(ctx context.Context, payload ReleasePayload) error {
	return s.client.send(ctx, http.MethodPost, "/releases/release/", nil, payload, nil)
}
