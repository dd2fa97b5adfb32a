package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveTimestampDirectLayouts(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"RFC3339", "2024-03-15T10:30:00Z", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)},
		{"ISO no zone", "2024-03-15T10:30:00", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)},
		{"date only", "2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveTimestamp(tt.input))
		})
	}
}

func TestResolveTimestampPatternReordering(t *testing.T) {
	want := time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC)

	// YYYY-MM-DD HH:MM:SS also matches the first direct layout
	assert.Equal(t, want, ResolveTimestamp("2024-03-15 10:30:45"))
	// MM/DD/YYYY HH:MM:SS reorders month/day/year
	assert.Equal(t, want, ResolveTimestamp("03/15/2024 10:30:45"))
	// DD-MM-YYYY HH:MM:SS reorders day/month/year
	assert.Equal(t, want, ResolveTimestamp("15-03-2024 10:30:45"))
}

func TestResolveTimestampEmbeddedPattern(t *testing.T) {
	// Pattern matching is a search, not a full-string match
	got := ResolveTimestamp("call at 2024-01-02 03:04:05 UTC")
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), got)
}

func TestResolveTimestampFallsBackToNow(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, now, resolveTimestamp("not a date", now))
	assert.Equal(t, now, resolveTimestamp("", now))
	// Month 13 fails every parse and lands on the fallback
	assert.Equal(t, now, resolveTimestamp("2024-13-45 99:99:99", now))
}
