package dataapi

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/cache"
)

// FieldInfo describes one raw crash field known to the processor.
type FieldInfo struct {
	Name       string          `json:"name"`
	Product    string          `json:"product,omitempty"`
	Transforms json.RawMessage `json:"transforms,omitempty"`
}

// FieldsService wraps the field lookup resource.
type FieldsService struct {
	client *Client
}

// Get fetches the descriptor of a single field by name.
func (s *FieldsService) Get(ctx context.Context, name string) (*FieldInfo, error) {
	s.client.recordClassFetch("Field", cache.OutcomeMiss)

	query := url.Values{}
	query.Set("name", name)

	info := new(FieldInfo)
	if err := s.client.get(ctx, "/field/", query, info); err != nil {
		return nil, err
	}

	return info, nil
}
