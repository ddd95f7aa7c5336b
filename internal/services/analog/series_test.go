package analog

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateSeries(t *testing.T) {
	ok := testSeries(50, func(i int) float64 { return 100 })
	assert.NoError(t, ValidateSeries(ok))
	assert.NoError(t, ValidateSeries(nil))

	dup := testSeries(10, func(i int) float64 { return 100 })
	dup[5].Timestamp = dup[4].Timestamp
	err := ValidateSeries(dup)
	assert.True(t, errors.Is(err, ErrMalformedSeries))

	desc := testSeries(10, func(i int) float64 { return 100 })
	desc[3].Timestamp = desc[3].Timestamp.Add(-10 * 24 * time.Hour)
	assert.ErrorIs(t, ValidateSeries(desc), ErrMalformedSeries)
}
