package dataapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/cache"
)

// SuperSearchField is one searchable field of the crash search engine,
// keyed by Name inside the catalog map.
type SuperSearchField struct {
	Name               string   `json:"name"`
	InDatabaseName     string   `json:"in_database_name"`
	Namespace          string   `json:"namespace"`
	Description        string   `json:"description"`
	QueryType          string   `json:"query_type"`
	DataValidationType string   `json:"data_validation_type"`
	PermissionsNeeded  []string `json:"permissions_needed"`
	FormFieldChoices   []string `json:"form_field_choices"`
	IsExposedInWebUI   bool     `json:"is_exposed_in_webui"`
	IsReturned         bool     `json:"is_returned"`
	HasFullVersion     bool     `json:"has_full_version"`
	StorageMapping     any      `json:"storage_mapping"`
}

// FullName is the namespaced identifier of the field.
func (f SuperSearchField) FullName() string {
	if f.Namespace == "" {
		return f.InDatabaseName
	}

	return f.Namespace + "." + f.InDatabaseName
}

// FieldsCache holds the most recently fetched field catalog. Implementations
// must be safe for concurrent use.
type FieldsCache interface {
	Get() (map[string]SuperSearchField, bool)
	Set(fields map[string]SuperSearchField)
	Invalidate()
}

// memoryFieldsCache is the default in-process FieldsCache.
type memoryFieldsCache struct {
	mu     sync.RWMutex
	fields map[string]SuperSearchField
}

func newMemoryFieldsCache() *memoryFieldsCache {
	return &memoryFieldsCache{}
}

func (c *memoryFieldsCache) Get() (map[string]SuperSearchField, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.fields == nil {
		return nil, false
	}

	return c.fields, true
}

func (c *memoryFieldsCache) Set(fields map[string]SuperSearchField) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fields = fields
}

func (c *memoryFieldsCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fields = nil
}

// SuperSearchService wraps the search field catalog. Reads are served from
// the cache when possible; every write refreshes the cache before returning
// so a follow-up read observes the change.
type SuperSearchService struct {
	client *Client
	cache  FieldsCache
}

// SetCache swaps the catalog cache. Intended for tests and alternative
// backends; New installs an in-process cache.
func (s *SuperSearchService) SetCache(c FieldsCache) {
	s.cache = c
}

// Fields returns the field catalog keyed by field name. With refresh set the
// cache is bypassed and replaced by a fresh remote copy.
func (s *SuperSearchService) Fields(ctx context.Context, refresh bool) (map[string]SuperSearchField, error) {
	if !refresh {
		if fields, ok := s.cache.Get(); ok {
			s.client.recordClassFetch("SuperSearchFields", cache.OutcomeHit)
			return fields, nil
		}
	}

	s.client.recordClassFetch("SuperSearchFields", cache.OutcomeMiss)

	fields := make(map[string]SuperSearchField)
	if err := s.client.get(ctx, "/supersearch/fields/", nil, &fields); err != nil {
		return nil, err
	}

	s.cache.Set(fields)

	return fields, nil
}

// CreateField creates a new search field and refreshes the catalog cache.
func (s *SuperSearchService) CreateField(ctx context.Context, field SuperSearchField) error {
	if err := s.client.send(ctx, http.MethodPost, "/supersearch/field/", nil, field, nil); err != nil {
		return err
	}

	_, err := s.Fields(ctx, true)

	return err
}

// UpdateField replaces a search field and refreshes the catalog cache.
func (s *SuperSearchService) UpdateField(ctx context.Context, field SuperSearchField) error {
	if err := s.client.send(ctx, http.MethodPut, "/supersearch/field/", nil, field, nil); err != nil {
		return err
	}

	_, err := s.Fields(ctx, true)

	return err
}

// DeleteField removes a search field by name and refreshes the catalog cache.
func (s *SuperSearchService) DeleteField(ctx context.Context, name string) error {
	query := url.Values{}
	query.Set("name", name)

	if err := s.client.send(ctx, http.MethodDelete, "/supersearch/field/", query, nil, nil); err != nil {
		return err
	}

	_, err := s.Fields(ctx, true)

	return err
}

// MissingFields fetches the fields present in the crash storage but absent
// from the catalog.
func (s *SuperSearchService) MissingFields(ctx context.Context) ([]string, error) {
	s.client.recordClassFetch("SuperSearchMissingFields", cache.OutcomeMiss)

	var result struct {
		Hits  []string `json:"hits"`
		Total int      `json:"total"`
	}

	if err := s.client.get(ctx, "/supersearch/missing_fields/", nil, &result); err != nil {
		return nil, err
	}

	return result.Hits, nil
}

// SplitFullName splits a namespaced field identifier on its last dot into
// namespace and in-database name. An identifier without a dot has an empty
// namespace.
func SplitFullName(fullName string) (namespace, inDatabaseName string) {
	idx := strings.LastIndex(fullName, ".")
	if idx < 0 {
		return "", fullName
	}

	return fullName[:idx], fullName[idx+1:]
}
