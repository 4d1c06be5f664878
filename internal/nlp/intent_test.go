// internal/nlp/intent_test.go
package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sales-assistant/internal/models"
)

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		query    string
		expected models.Intent
	}{
		{"Sales on 2025-08-29", models.IntentSinglePoint},
		{"Sales in June 2025", models.IntentSinglePoint},
		{"Past 3 months", models.IntentAggregate},
		{"Year total 2025", models.IntentAggregate},
		{"Total sales past 1 months", models.IntentAggregate},
		{"Compare Branch 1 and Branch 2", models.IntentComparison},
		{"Branch 1 vs Branch 2", models.IntentComparison},
		{"Highest performing branch", models.IntentRanking},
		{"Which branch has lowest sales", models.IntentRanking},
		{"Sales growth this year", models.IntentTrend},
		{"Trend for past 6 months", models.IntentTrend},
		{"Hello", models.IntentSinglePoint},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyIntent(tt.query))
		})
	}
}

func TestClassifyIntentComparisonBeatsRanking(t *testing.T) {
	// "best" alone would be RANKING, but the comparison wins
	assert.Equal(t, models.IntentComparison,
		ClassifyIntent("Compare best months of Branch 1 and Branch 2"))
}
