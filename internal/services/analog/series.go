package analog

import (
	"errors"
	"fmt"

	"Hindsight/internal/domain/models"
)

// ErrMalformedSeries marks a series violating the sorted-ascending /
// unique-timestamp precondition. This is the one genuine precondition
// violation in the engine and fails loudly at the boundary; everything else
// degrades to a neutral result.
var ErrMalformedSeries = errors.New("malformed series")

// ValidateSeries verifies ordering and uniqueness of the bar index.
func ValidateSeries(series []models.Bar) error {
	for i := 1; i < len(series); i++ {
		prev, cur := series[i-1].Timestamp, series[i].Timestamp
		if !cur.After(prev) {
			return fmt.Errorf("%w: timestamp %s at row %d not after %s",
				ErrMalformedSeries, cur.Format("2006-01-02"), i, prev.Format("2006-01-02"))
		}
	}
	return nil
}
