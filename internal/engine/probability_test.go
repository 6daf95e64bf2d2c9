package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalCDF(t *testing.T) {
	assert.InDelta(t, 0.5, NormalCDF(0), 1e-7)
	assert.InDelta(t, 0.8413, NormalCDF(1), 1e-4)
	assert.InDelta(t, 0.1587, NormalCDF(-1), 1e-4)
	assert.InDelta(t, 0.9772, NormalCDF(2), 1e-4)

	t.Run("symmetry", func(t *testing.T) {
		for _, x := range []float64{0.3, 1.2, 2.5} {
			assert.InDelta(t, 1, NormalCDF(x)+NormalCDF(-x), 1e-7)
		}
	})
}

func TestProbAboveStrike(t *testing.T) {
	t.Run("at the money is near one half", func(t *testing.T) {
		p := ProbAboveStrike(100000, 100000, 0.60, 30.0/365)
		assert.InDelta(t, 0.47, p, 0.02)
	})

	t.Run("deep in the money approaches one", func(t *testing.T) {
		p := ProbAboveStrike(150000, 100000, 0.60, 7.0/365)
		assert.Greater(t, p, 0.99)
	})

	t.Run("deep out of the money approaches zero", func(t *testing.T) {
		p := ProbAboveStrike(70000, 100000, 0.60, 7.0/365)
		assert.Less(t, p, 0.01)
	})

	t.Run("expired collapses to the indicator", func(t *testing.T) {
		assert.Equal(t, 1.0, ProbAboveStrike(110000, 100000, 0.60, 0))
		assert.Equal(t, 0.0, ProbAboveStrike(90000, 100000, 0.60, 0))
	})

	t.Run("zero vol collapses to the indicator", func(t *testing.T) {
		assert.Equal(t, 1.0, ProbAboveStrike(110000, 100000, 0, 0.1))
	})
}

func TestYearsToExpiry(t *testing.T) {
	now := time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC)
	expiry := now.Add(365*24*time.Hour + 6*time.Hour)
	assert.InDelta(t, 1.0, YearsToExpiry(expiry, now), 1e-3)
	assert.Less(t, YearsToExpiry(now.Add(-time.Hour), now), 0.0)
}
