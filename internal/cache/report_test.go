package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/gofiber/storage/memory/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) Store {
	t.Helper()

	return New(memory.New(), time.Hour)
}

func TestCounterStore_MissingCounterIsZero(t *testing.T) {
	st := newTestStore(t)

	n, err := st.Get("times_HIT_unknown")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCounterStore_Increment(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.Increment("uses_MISS_classes.Products", 1))
	require.NoError(t, st.Increment("uses_MISS_classes.Products", 2))

	n, err := st.Get("uses_MISS_classes.Products")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestCounterStore_Track(t *testing.T) {
	st := newTestStore(t)

	keys, err := st.Keys(ListClasses)
	require.NoError(t, err)
	assert.Empty(t, keys, "absent list reads as empty")

	require.NoError(t, st.Track(ListClasses, "Products"))
	require.NoError(t, st.Track(ListClasses, "Releases"))
	require.NoError(t, st.Track(ListClasses, "Products"), "tracking twice is a no-op")

	keys, err = st.Keys(ListClasses)
	require.NoError(t, err)
	assert.Equal(t, []string{"Products", "Releases"}, keys)
}

func TestReport_EmptyStore(t *testing.T) {
	st := newTestStore(t)

	measurements, err := Report(st)
	require.NoError(t, err)

	require.Len(t, measurements, 2)
	assert.Equal(t, "API", measurements[0].Label)
	assert.Equal(t, "classes", measurements[0].ValueType)
	assert.Empty(t, measurements[0].Records)
	assert.Equal(t, "URLS", measurements[1].Label)
	assert.Equal(t, "urls", measurements[1].ValueType)
	assert.Empty(t, measurements[1].Records)
}

func TestReport_CountersAndDerivedTotals(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.Track(ListClasses, "Products"))
	require.NoError(t, st.Increment(CounterKey(MetricTimes, OutcomeHit, "Products"), 3))
	require.NoError(t, st.Increment(CounterKey(MetricTimes, OutcomeMiss, "Products"), 1))
	require.NoError(t, st.Increment(CounterKey(MetricUses, OutcomeHit, "Products"), 5))
	// uses_MISS left absent on purpose

	measurements, err := Report(st)
	require.NoError(t, err)

	require.Len(t, measurements[0].Records, 1)
	rec := measurements[0].Records[0]

	assert.Equal(t, "Products", rec.Key)
	assert.Equal(t, Counter{Hits: 3, Misses: 1, Both: 4}, rec.Times)
	assert.Equal(t, Counter{Hits: 5, Misses: 0, Both: 5}, rec.Uses)
}

func TestReport_TruncatesLongKeys(t *testing.T) {
	st := newTestStore(t)

	long := "/api/" + strings.Repeat("x", 400)
	require.NoError(t, st.Track(ListURLs, long))

	measurements, err := Report(st)
	require.NoError(t, err)

	require.Len(t, measurements[1].Records, 1)
	assert.Len(t, measurements[1].Records[0].Key, 220)
}

func TestRecordFetch(t *testing.T) {
	st := newTestStore(t)

	RecordFetch(st, ListClasses, "Products", OutcomeMiss)
	RecordFetch(st, ListClasses, "Products", OutcomeHit)
	RecordFetch(st, ListClasses, "Products", OutcomeHit)

	measurements, err := Report(st)
	require.NoError(t, err)

	require.Len(t, measurements[0].Records, 1)
	rec := measurements[0].Records[0]

	assert.Equal(t, Counter{Hits: 2, Misses: 1, Both: 3}, rec.Times)
	assert.Equal(t, Counter{Hits: 2, Misses: 1, Both: 3}, rec.Uses)
}
