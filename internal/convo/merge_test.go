// internal/convo/merge_test.go
package convo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSmartMerge(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		input    string
		expected string
	}{
		{
			name:     "year appended when base has none",
			base:     "Total sales in November Branch 1",
			input:    "how about 2024?",
			expected: "Total sales in November Branch 1 2024",
		},
		{
			name:     "branch replaced",
			base:     "Total sales in November 2025 Branch 1",
			input:    "what about branch 2?",
			expected: "Total sales in November 2025 Branch 2",
		},
		{
			name:     "month replaced",
			base:     "Sales in Jan 2025",
			input:    "how about feb?",
			expected: "Sales in feb 2025",
		},
		{
			name:     "year and branch in one follow-up",
			base:     "Total sales in November",
			input:    "how about 2024? in branch 1?",
			expected: "Total sales in November 2024 Branch 1",
		},
		{
			name:     "bare integer switches branch when base mentions one",
			base:     "Compare 2024 and 2025 Branch 1",
			input:    "2",
			expected: "Compare 2024 and 2025 Branch 2",
		},
		{
			name:     "bare integer ignored without branch context",
			base:     "Sales in June 2025",
			input:    "7",
			expected: "7",
		},
		{
			name:     "rolling window replaced",
			base:     "Average sales past 3 months Branch 1",
			input:    "past 6 months",
			expected: "Average sales past 6 months Branch 1",
		},
		{
			name:     "rolling window appended",
			base:     "Sales Branch 1",
			input:    "past 2 months",
			expected: "Sales Branch 1 past 2 months",
		},
		{
			name:     "no pattern falls back to the input",
			base:     "Sales in June 2025 Branch 1",
			input:    "thanks",
			expected: "thanks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SmartMerge(tt.base, tt.input))
		})
	}
}

func TestForcesNewQuery(t *testing.T) {
	assert.True(t, ForcesNewQuery("Compare Branch 1 and Branch 2"))
	assert.True(t, ForcesNewQuery("total sales this month"))
	assert.True(t, ForcesNewQuery("highest performing branch"))
	assert.False(t, ForcesNewQuery("how about branch 2?"))
	assert.False(t, ForcesNewQuery("2"))
	assert.False(t, ForcesNewQuery("how about feb?"))
}

func TestMatchPendingBranch(t *testing.T) {
	tests := []struct {
		input string
		num   string
		ok    bool
	}{
		{"2", "2", true},
		{"branch 2", "2", true},
		{"Branch 3", "3", true},
		{"branch2", "2", true},
		{"sales branch 2", "", false},
		{"twenty", "", false},
	}

	for _, tt := range tests {
		num, ok := MatchPendingBranch(tt.input)
		assert.Equal(t, tt.ok, ok, tt.input)
		if tt.ok {
			assert.Equal(t, tt.num, num, tt.input)
		}
	}
}
