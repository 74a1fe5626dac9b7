package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCalendarDate_UsesLocation(t *testing.T) {
	instant := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	tokyo := time.FixedZone("JST", 9*3600)

	require.Equal(t, "2024-03-01", CalendarDate(instant, nil))
	require.Equal(t, "2024-03-02", CalendarDate(instant, tokyo))
}
