package dataapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/cache"
)

// spyFieldsCache wraps the in-process cache and counts invocations.
type spyFieldsCache struct {
	inner FieldsCache

	gets        int
	sets        int
	invalidates int
}

func newSpyFieldsCache() *spyFieldsCache {
	return &spyFieldsCache{inner: newMemoryFieldsCache()}
}

func (c *spyFieldsCache) Get() (map[string]SuperSearchField, bool) {
	c.gets++
	return c.inner.Get()
}

func (c *spyFieldsCache) Set(fields map[string]SuperSearchField) {
	c.sets++
	c.inner.Set(fields)
}

func (c *spyFieldsCache) Invalidate() {
	c.invalidates++
	c.inner.Invalidate()
}

const fieldsCatalogJSON = `{
	"signature": {
		"name": "signature",
		"in_database_name": "signature",
		"namespace": "processed_crash",
		"query_type": "string",
		"is_returned": true
	},
	"platform": {
		"name": "platform",
		"in_database_name": "platform",
		"namespace": "processed_crash",
		"query_type": "enum",
		"is_returned": true
	}
}`

func TestFieldsServedFromCache(t *testing.T) {
	remoteCalls := 0

	client, counters := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		remoteCalls++
		_, _ = w.Write([]byte(fieldsCatalogJSON))
	}))

	first, err := client.SuperSearch.Fields(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := client.SuperSearch.Fields(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// only the first read went to the remote service
	assert.Equal(t, 1, remoteCalls)

	hits, err := counters.Get(cache.CounterKey(cache.MetricTimes, cache.OutcomeHit, "SuperSearchFields"))
	require.NoError(t, err)
	assert.Equal(t, 1, hits)

	misses, err := counters.Get(cache.CounterKey(cache.MetricTimes, cache.OutcomeMiss, "SuperSearchFields"))
	require.NoError(t, err)
	assert.Equal(t, 1, misses)
}

func TestFieldsRefreshBypassesCache(t *testing.T) {
	remoteCalls := 0

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		remoteCalls++
		_, _ = w.Write([]byte(fieldsCatalogJSON))
	}))

	_, err := client.SuperSearch.Fields(context.Background(), false)
	require.NoError(t, err)

	_, err = client.SuperSearch.Fields(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, 2, remoteCalls)
}

func TestWritesRefreshCatalogOnce(t *testing.T) {
	fetches := 0

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fetches++
			_, _ = w.Write([]byte(fieldsCatalogJSON))

			return
		}

		_, _ = w.Write([]byte(`true`))
	}))

	spy := newSpyFieldsCache()
	client.SuperSearch.SetCache(spy)

	field := SuperSearchField{
		Name:           "cpu_arch",
		InDatabaseName: "cpu_arch",
		Namespace:      "processed_crash",
		QueryType:      "enum",
	}

	require.NoError(t, client.SuperSearch.CreateField(context.Background(), field))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, 1, spy.sets)

	field.Description = "CPU architecture of the crashing device"
	require.NoError(t, client.SuperSearch.UpdateField(context.Background(), field))
	assert.Equal(t, 2, fetches)
	assert.Equal(t, 2, spy.sets)

	require.NoError(t, client.SuperSearch.DeleteField(context.Background(), "cpu_arch"))
	assert.Equal(t, 3, fetches)
	assert.Equal(t, 3, spy.sets)

	// a follow-up read observes the refreshed catalog without a remote call
	_, err := client.SuperSearch.Fields(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 3, fetches)
}

func TestWriteFailureSkipsRefresh(t *testing.T) {
	fetches := 0

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fetches++
			_, _ = w.Write([]byte(fieldsCatalogJSON))

			return
		}

		http.Error(w, "field exists", http.StatusBadRequest)
	}))

	err := client.SuperSearch.CreateField(context.Background(), SuperSearchField{Name: "signature"})
	require.Error(t, err)

	var apiErr *APIError

	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, fetches)
}

func TestMissingFields(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/supersearch/missing_fields/", r.URL.Path)
		_, _ = w.Write([]byte(`{"hits": ["async_shutdown_timeout", "ipc_channel_error"], "total": 2}`))
	}))

	missing, err := client.SuperSearch.MissingFields(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"async_shutdown_timeout", "ipc_channel_error"}, missing)
}

func TestSplitFullName(t *testing.T) {
	tests := []struct {
		fullName       string
		namespace      string
		inDatabaseName string
	}{
		{"processed_crash.signature", "processed_crash", "signature"},
		{"raw_crash.json_dump.system_info.cpu_arch", "raw_crash.json_dump.system_info", "cpu_arch"},
		{"signature", "", "signature"},
	}

	for _, tc := range tests {
		namespace, name := SplitFullName(tc.fullName)
		assert.Equal(t, tc.namespace, namespace, tc.fullName)
		assert.Equal(t, tc.inDatabaseName, name, tc.fullName)
	}
}

func TestFullName(t *testing.T) {
	field := SuperSearchField{InDatabaseName: "signature", Namespace: "processed_crash"}
	assert.Equal(t, "processed_crash.signature", field.FullName())

	field.Namespace = ""
	assert.Equal(t, "signature", field.FullName())
}
