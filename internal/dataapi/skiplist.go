package dataapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/cache"
)

// SkipListRule is one suppression rule of the signature generation.
type SkipListRule struct {
	Category string `json:"category"`
	Rule     string `json:"rule"`
}

// SkipListResult is the answer of a skip list query.
type SkipListResult struct {
	Hits  []SkipListRule `json:"hits"`
	Total int            `json:"total"`
}

// SkipListService wraps the skip list resource. Uniqueness of rules is
// entirely the data service's business; this client performs no dedup.
type SkipListService struct {
	client *Client
}

// Get fetches skip list rules, optionally narrowed by category and/or rule.
func (s *SkipListService) Get(ctx context.Context, category, rule string) (*SkipListResult, error) {
	s.client.recordClassFetch("SkipList", cache.OutcomeMiss)

	query := url.Values{}

	if category != "" {
		query.Set("category", category)
	}

	if rule != "" {
		query.Set("rule", rule)
	}

	result := new(SkipListResult)
	if err := s.client.get(ctx, "/skiplist/", query, result); err != nil {
		return nil, err
	}

	return result, nil
}

// Post adds a skip list rule.
func (s *SkipListService) Post(ctx context.Context, category, rule string) (bool, error) {
	payload := SkipListRule{Category: category, Rule: rule}

	if err := s.client.send(ctx, http.MethodPost, "/skiplist/", nil, payload, nil); err != nil {
		return false, err
	}

	return true, nil
}

// Delete removes a skip list rule.
func (s *SkipListService) Delete(ctx context.Context, category, rule string) (bool, error) {
	query := url.Values{}
	query.Set("category", category)
	query.Set("rule", rule)

	if err := s.client.send(ctx, http.MethodDelete, "/skiplist/", query, nil, nil); err != nil {
		return false, err
	}

	return true, nil
}
