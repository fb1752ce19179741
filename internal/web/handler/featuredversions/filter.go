package featuredversions

import (
	"time"

	"github.com/pkg/errors"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/dataapi"
)

// dateLayout is the wire format of release window dates.
const dateLayout = "2006-01-02"

// ActiveReleases keeps, per product, the releases whose date window contains
// today. Both window bounds are inclusive and the release order within each
// product is preserved. Every product keeps its map key even when no release
// is active. A malformed date is an error, not a silent skip.
func ActiveReleases(
	products []string,
	hits map[string][]dataapi.Release,
	today time.Time,
) (map[string][]dataapi.Release, error) {
	y, m, d := today.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	active := make(map[string][]dataapi.Release, len(products))

	for _, product := range products {
		releases := hits[product]
		kept := make([]dataapi.Release, 0, len(releases))

		for _, release := range releases {
			start, err := time.Parse(dateLayout, release.StartDate)
			if err != nil {
				return nil, errors.Wrapf(err,
					"bad start date of %s %s", release.Product, release.Version)
			}

			end, err := time.Parse(dateLayout, release.EndDate)
			if err != nil {
				return nil, errors.Wrapf(err,
					"bad end date of %s %s", release.Product, release.Version)
			}

			if day.Before(start) || day.After(end) {
				continue
			}

			kept = append(kept, release)
		}

		active[product] = kept
	}

	return active, nil
}
