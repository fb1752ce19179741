// Package dataapi implements the typed client for the remote crash-stats
// data service. Every management screen reads and writes through this
// client; the panel holds no authoritative copy of any resource.
//
// Calls carry a bounded timeout from the configuration and failures are
// returned to the caller unwrapped into APIError; there are no retries at
// this layer.
package dataapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/cache"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/config"
)

const (
	// authTokenHeader carries the data service auth token.
	authTokenHeader = "Auth-Token"

	defaultTimeout = 30 * time.Second
)

// Client talks to the remote data service. Create it with New; the zero
// value is not usable.
type Client struct {
	baseURL  string
	token    string
	http     *http.Client
	counters cache.Store

	// Resource services.
	Products        *ProductsService
	Releases        *ReleasesService
	Featured        *FeaturedService
	Fields          *FieldsService
	SkipList        *SkipListService
	GraphicsDevices *GraphicsDevicesService
	Platforms       *PlatformsService
	Symbols         *SymbolsService
	SuperSearch     *SuperSearchService
}

// New creates a data API client from the configuration. The counter store
// instruments every remote fetch for the diagnostics screen.
func New(cfg *config.Config, counters cache.Store) *Client {
	timeout := defaultTimeout
	if cfg.DataAPI.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.DataAPI.TimeoutSeconds) * time.Second
	}

	c := &Client{
		baseURL:  strings.TrimRight(cfg.DataAPI.BaseURL, "/"),
		token:    cfg.DataAPI.Token,
		http:     &http.Client{Timeout: timeout},
		counters: counters,
	}

	c.Products = &ProductsService{client: c}
	c.Releases = &ReleasesService{client: c}
	c.Featured = &FeaturedService{client: c}
	c.Fields = &FieldsService{client: c}
	c.SkipList = &SkipListService{client: c}
	c.GraphicsDevices = &GraphicsDevicesService{client: c}
	c.Platforms = &PlatformsService{client: c}
	c.Symbols = &SymbolsService{client: c}
	c.SuperSearch = &SuperSearchService{client: c, cache: newMemoryFieldsCache()}

	return c
}

// Test checks the data service connection by listing the current products.
func (c *Client) Test(ctx context.Context) error {
	_, err := c.Products.Get(ctx)

	return err
}

// get performs a GET request against path and decodes the JSON answer into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.send(ctx, http.MethodGet, path, query, nil, out)
}

// send performs a request with an optional JSON body. The tracked URL
// counter is bumped for every remote round trip.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to encode request body")
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != "" {
		req.Header.Set(authTokenHeader, c.token)
	}

	// every send is a remote round trip, count it as a miss on the URL list
	if c.counters != nil {
		cache.RecordFetch(c.counters, cache.ListURLs, endpoint, cache.OutcomeMiss)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "data service request failed")
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read data service response")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return errors.Wrap(err, "failed to decode data service response")
		}
	}

	return nil
}

// recordClassFetch bumps the per-model-class fetch counters.
func (c *Client) recordClassFetch(class, outcome string) {
	if c.counters != nil {
		cache.RecordFetch(c.counters, cache.ListClasses, class, outcome)
	}
}
