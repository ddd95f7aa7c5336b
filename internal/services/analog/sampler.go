package analog

import (
	"math"

	"Hindsight/internal/domain/models"
)

// SampleForwardReturns looks up, for every matched bar and every horizon h,
// the realized simple return h trading periods later. Cells whose future bar
// does not exist yet are NaN — never zero and never a dropped row; rows with
// all-missing horizons are retained so downstream statistics can exclude
// missing values per column. No compounding or annualization happens here.
func SampleForwardReturns(series []models.Bar, matches models.MatchSet, horizons []int) models.ForwardReturns {
	out := models.ForwardReturns{
		Horizons: horizons,
		Rows:     make([]models.ForwardReturnRow, 0, len(matches)),
	}
	for _, a := range matches {
		row := models.ForwardReturnRow{
			Timestamp: a.Bar.Timestamp,
			Returns:   make(map[int]float64, len(horizons)),
		}
		for _, h := range horizons {
			future := a.Index + h
			if future >= len(series) || a.Bar.Close <= 0 {
				row.Returns[h] = math.NaN()
				continue
			}
			row.Returns[h] = (series[future].Close - a.Bar.Close) / a.Bar.Close
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}
