package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// fetchCounter is a singleton for the fetch counter vec.
	fetchCounter *prometheus.CounterVec //nolint:gochecknoglobals
)

// RecordFetch bumps both the cache-backed counters read by the fetch report
// and the prometheus counters, for one fetch of the given resource key.
// Counter errors are swallowed: instrumentation must never fail a request.
func RecordFetch(st Store, listKey, item, outcome string) {
	if fetchCounter == nil {
		fetchCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dataapi_fetches_total",
				Help: "Number of data API fetches, differentiated by tracked list and cache outcome.",
			},
			[]string{"list", "outcome"},
		)
	}

	fetchCounter.WithLabelValues(listKey, outcome).Inc()

	_ = st.Track(listKey, item)
	_ = st.Increment(CounterKey(MetricTimes, outcome, item), 1)
	_ = st.Increment(CounterKey(MetricUses, outcome, item), 1)
}
