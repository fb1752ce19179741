package dataapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/storage/memory/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/cache"
	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, cache.Store) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	counters := cache.New(memory.New(), time.Hour)

	cfg := &config.Config{
		DataAPI: config.DataAPI{
			BaseURL:        srv.URL,
			Token:          "test-token",
			TimeoutSeconds: 5,
		},
	}

	return New(cfg, counters), counters
}

func TestClientSendsAuthToken(t *testing.T) {
	var gotToken string

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("Auth-Token")
		_, _ = w.Write([]byte(`{"products":[],"hits":{},"total":0}`))
	}))

	_, err := client.Products.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "test-token", gotToken)
}

func TestClientNotConfigured(t *testing.T) {
	client := New(&config.Config{}, nil)

	_, err := client.Products.Get(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClientTest(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"products":[],"hits":{},"total":0}`))
	}))

	require.NoError(t, client.Test(context.Background()))

	broken, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))

	assert.Error(t, broken.Test(context.Background()))
}

func TestClientAPIError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such product", http.StatusBadRequest)
	}))

	err := client.Products.Post(context.Background(), "WaterWolf", "1.0")
	require.Error(t, err)

	var apiErr *APIError

	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "no such product")
}

func TestProductsGet(t *testing.T) {
	client, counters := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"products": ["Firefox", "Thunderbird"],
			"hits": {
				"Firefox": [{"product": "Firefox", "version": "124.0"}],
				"Thunderbird": []
			},
			"total": 1
		}`))
	}))

	result, err := client.Products.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Firefox", "Thunderbird"}, result.Products)
	assert.Len(t, result.Hits["Firefox"], 1)
	assert.Equal(t, "124.0", result.Hits["Firefox"][0].Version)

	// the class fetch was counted as a miss
	n, err := counters.Get(cache.CounterKey(cache.MetricTimes, cache.OutcomeMiss, "CurrentProducts"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFeaturedPut(t *testing.T) {
	var (
		gotMethod string
		gotBody   map[string][]string
	)

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`true`))
	}))

	ok, err := client.Featured.Put(context.Background(), map[string][]string{
		"Firefox": {"124.0", "125.0b1"},
	})
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, []string{"124.0", "125.0b1"}, gotBody["Firefox"])
}

func TestSkipListRoundTrip(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "prefix", r.URL.Query().Get("category"))
			_, _ = w.Write([]byte(`{"hits": [{"category": "prefix", "rule": "arena_.*"}], "total": 1}`))
		case http.MethodDelete:
			assert.Equal(t, "prefix", r.URL.Query().Get("category"))
			assert.Equal(t, "arena_.*", r.URL.Query().Get("rule"))
			_, _ = w.Write([]byte(`true`))
		default:
			t.Fatalf("unexpected method %s", r.Method)
		}
	}))

	result, err := client.SkipList.Get(context.Background(), "prefix", "")
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "arena_.*", result.Hits[0].Rule)

	ok, err := client.SkipList.Delete(context.Background(), "prefix", "arena_.*")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGraphicsDevicesPost(t *testing.T) {
	var gotDevices []GraphicsDevice

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotDevices))
		_, _ = w.Write([]byte(`true`))
	}))

	ok, err := client.GraphicsDevices.Post(context.Background(), []GraphicsDevice{
		{VendorHex: "0x8086", AdapterHex: "0x0046", VendorName: "Intel", AdapterName: "HD Graphics"},
	})
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, gotDevices, 1)
	assert.Equal(t, "0x8086", gotDevices[0].VendorHex)
}

func TestSymbolsUploadsNewestFirst(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"hits": [
				{"id": 1, "filename": "old.zip", "created": "2024-01-01T00:00:00Z"},
				{"id": 2, "filename": "new.zip", "created": "2024-03-01T00:00:00Z"}
			],
			"total": 2
		}`))
	}))

	uploads, err := client.Symbols.Uploads(context.Background())
	require.NoError(t, err)
	require.Len(t, uploads, 2)

	assert.Equal(t, "new.zip", uploads[0].Filename)
	assert.Equal(t, "old.zip", uploads[1].Filename)
}

func TestURLFetchCounted(t *testing.T) {
	client, counters := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))

	_, err := client.Platforms.Get(context.Background())
	require.NoError(t, err)

	urls, err := counters.Keys(cache.ListURLs)
	require.NoError(t, err)
	require.Len(t, urls, 1)
	assert.Contains(t, urls[0], "/platforms/")
}
