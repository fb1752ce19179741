package cache

// Tracked key lists and their display labels for the fetch report.
const (
	// ListClasses tracks fetches per model class of the data API.
	ListClasses = "all_classes"
	// ListURLs tracks fetches per remote URL.
	ListURLs = "all_urls"

	// maxKeyDisplayLen truncates over-long resource keys in the report.
	maxKeyDisplayLen = 220
)

// Counter is the hit/miss/total triple of one metric.
type Counter struct {
	Hits   int
	Misses int
	Both   int
}

// Record holds both counted metrics of one tracked resource key.
type Record struct {
	Key   string
	Times Counter
	Uses  Counter
}

// Measurement is one section of the fetch report.
type Measurement struct {
	Label     string
	ValueType string
	Records   []Record
}

// Report assembles the diagnostic fetch table from the counter store.
// It is a pure read; missing counters report as zero and an absent tracked
// key list yields an empty section.
func Report(st Store) ([]Measurement, error) {
	sections := []struct {
		label     string
		valueType string
		listKey   string
	}{
		{"API", "classes", ListClasses},
		{"URLS", "urls", ListURLs},
	}

	measurements := make([]Measurement, 0, len(sections))

	for _, section := range sections {
		keys, err := st.Keys(section.listKey)
		if err != nil {
			return nil, err
		}

		records := make([]Record, 0, len(keys))

		for _, item := range keys {
			display := item
			if len(display) > maxKeyDisplayLen {
				display = display[:maxKeyDisplayLen]
			}

			times, err := readCounter(st, MetricTimes, item)
			if err != nil {
				return nil, err
			}

			uses, err := readCounter(st, MetricUses, item)
			if err != nil {
				return nil, err
			}

			records = append(records, Record{
				Key:   display,
				Times: times,
				Uses:  uses,
			})
		}

		measurements = append(measurements, Measurement{
			Label:     section.label,
			ValueType: section.valueType,
			Records:   records,
		})
	}

	return measurements, nil
}

func readCounter(st Store, metric, item string) (Counter, error) {
	hits, err := st.Get(CounterKey(metric, OutcomeHit, item))
	if err != nil {
		return Counter{}, err
	}

	misses, err := st.Get(CounterKey(metric, OutcomeMiss, item))
	if err != nil {
		return Counter{}, err
	}

	return Counter{
		Hits:   hits,
		Misses: misses,
		Both:   hits + misses,
	}, nil
}
