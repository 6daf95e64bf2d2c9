package deribit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpiry(t *testing.T) {
	t.Run("standard instrument name", func(t *testing.T) {
		got, err := ParseExpiry("BTC-28MAR25-100000-C")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.March, 28, 8, 0, 0, 0, time.UTC), got)
	})

	t.Run("single digit day", func(t *testing.T) {
		got, err := ParseExpiry("BTC-3JAN26-95000-P")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, time.January, 3, 8, 0, 0, 0, time.UTC), got)
	})

	t.Run("every month code resolves", func(t *testing.T) {
		codes := []string{"JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}
		for i, code := range codes {
			got, err := ParseExpiry("BTC-15" + code + "25-100000-C")
			require.NoError(t, err, code)
			assert.Equal(t, time.Month(i+1), got.Month())
		}
	})

	t.Run("malformed names error", func(t *testing.T) {
		for _, name := range []string{"", "BTC", "BTC-PERPETUAL", "BTC-28XXX25-100000-C", "BTC-MAR25-100000-C"} {
			_, err := ParseExpiry(name)
			assert.Error(t, err, name)
		}
	})
}
