package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfDayUTC(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)
	// 01:30 MSK ещё относится к предыдущему дню UTC.
	in := time.Date(2026, 3, 15, 1, 30, 0, 0, moscow)

	got := StartOfDayUTC(in)

	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestFormatRussianDay(t *testing.T) {
	assert.Equal(t, "05.03", FormatRussianDay(time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)))
}
