package staging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSentinel(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"No data", true},
		{"no data", true},
		{"  NO DATA  ", true},
		{"Not applicable", true},
		{"N/A", true},
		{"", true},
		{"   ", true},
		{"0", false},
		{"No", false},
		{"data", false},
		{"1.5", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSentinel(tt.value))
		})
	}
}

func TestCleanTrimsAndNullsSentinels(t *testing.T) {
	v, ok := Clean("  42.5  ")
	assert.True(t, ok)
	assert.Equal(t, "42.5", v)

	_, ok = Clean("No data")
	assert.False(t, ok)
}

func TestCleanSentinelsRewritesRows(t *testing.T) {
	tbl := NewTable("benchmark_values", "benchmark_id", "year", "value")
	tbl.MustAppend(Row{"benchmark_id": "1", "year": "2025", "value": "No data"})
	tbl.MustAppend(Row{"benchmark_id": "1", "year": "2026", "value": " 12.5 "})

	CleanSentinels(tbl)

	assert.True(t, tbl.Rows[0].IsNull("value"), "sentinel should become null")
	assert.Equal(t, "12.5", tbl.Rows[1]["value"], "real values survive with whitespace trimmed")
	assert.Equal(t, "2025", tbl.Rows[0]["year"], "other columns untouched")
}
