package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortIDPadsToThreeDigits(t *testing.T) {
	assert.Equal(t, "#007", ShortID(7))
	assert.Equal(t, "#042", ShortID(42))
	assert.Equal(t, "#1000", ShortID(1000))
}

func TestInvoiceIDUsesBusinessDay(t *testing.T) {
	loc := time.FixedZone("WITA", 8*3600)
	// 20:30 UTC on Jan 4th is already Jan 5th in UTC+8.
	at := time.Date(2024, 1, 4, 20, 30, 0, 0, time.UTC)

	assert.Equal(t, "INV-20240105-007", InvoiceID(at, loc, 7))
	assert.Equal(t, "2024-01-05", BusinessDay(at, loc))
	assert.Equal(t, "2024-01-04", BusinessDay(at, time.UTC))
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("WITA", 8*3600)
	start, end, err := dayBounds("2024-01-05", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 4, 16, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 1, 5, 16, 0, 0, 0, time.UTC), end)

	_, _, err = dayBounds("05/01/2024", loc)
	require.Error(t, err)
}
