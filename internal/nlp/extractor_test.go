// internal/nlp/extractor_test.go
package nlp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/models"
)

func createTestExtractor(t *testing.T) *Extractor {
	return NewExtractor(fixedClock, logger.NewTestLogger(t))
}

func TestExtractMetric(t *testing.T) {
	tests := []struct {
		query    string
		expected models.Metric
	}{
		{"average sales past 3 months", models.MetricAverage},
		{"mean sales this month", models.MetricAverage},
		{"highest performing branch", models.MetricHighest},
		{"best month of 2025", models.MetricHighest},
		{"worst branch this year", models.MetricLowest},
		{"sales growth this year", models.MetricGrowth},
		{"total sales in 2025", models.MetricTotal},
		{"sales on 2025-08-29", models.MetricTotal},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractMetric(tt.query))
		})
	}
}

func TestExtractPeriod(t *testing.T) {
	e := createTestExtractor(t)

	t.Run("specific date", func(t *testing.T) {
		p := e.Extract("Sales on 2025-01-07").Period
		require.NotNil(t, p)
		assert.Equal(t, models.PeriodDate, p.Kind)
		assert.Equal(t, "2025-01-07", p.Date.Format("2006-01-02"))
	})

	t.Run("quarter", func(t *testing.T) {
		p := e.Extract("Quarter 1 2025").Period
		require.NotNil(t, p)
		assert.Equal(t, models.PeriodQuarter, p.Kind)
		assert.Equal(t, 1, p.Quarter)
		assert.Equal(t, 2025, p.Year)
	})

	t.Run("week", func(t *testing.T) {
		p := e.Extract("Week 2025-08-25 to 2025-08-31").Period
		require.NotNil(t, p)
		assert.Equal(t, models.PeriodWeek, p.Kind)
		assert.Equal(t, "2025-08-25", p.Start.Format("2006-01-02"))
		assert.Equal(t, "2025-08-31", p.End.Format("2006-01-02"))
	})

	t.Run("date range", func(t *testing.T) {
		p := e.Extract("Date range 2025-01-01 to 2025-03-31").Period
		require.NotNil(t, p)
		assert.Equal(t, models.PeriodRange, p.Kind)
	})

	t.Run("past n months", func(t *testing.T) {
		p := e.Extract("Total sales past 3 months").Period
		require.NotNil(t, p)
		assert.Equal(t, models.PeriodPastMonths, p.Kind)
		assert.Equal(t, 3, p.Months)
	})

	t.Run("month name with day", func(t *testing.T) {
		p := e.Extract("sales on january 5th 2025").Period
		require.NotNil(t, p)
		assert.Equal(t, models.PeriodDate, p.Kind)
		assert.Equal(t, "2025-01-05", p.Date.Format("2006-01-02"))
	})

	t.Run("day of month without year uses current year", func(t *testing.T) {
		p := e.Extract("sales on 5th of january").Period
		require.NotNil(t, p)
		assert.Equal(t, models.PeriodDate, p.Kind)
		assert.Equal(t, "2025-01-05", p.Date.Format("2006-01-02"))
	})

	t.Run("branch number before month is not a day", func(t *testing.T) {
		p := e.Extract("growth branch 1 vs branch 2 august 2025").Period
		require.NotNil(t, p)
		assert.Equal(t, models.PeriodMonth, p.Kind)
		assert.Equal(t, time.August, p.Month)
		assert.Equal(t, 2025, p.Year)
	})

	t.Run("impossible day falls back to the month", func(t *testing.T) {
		p := e.Extract("sales on february 30 2025").Period
		require.NotNil(t, p)
		assert.Equal(t, models.PeriodMonth, p.Kind)
		assert.Equal(t, time.February, p.Month)
	})

	t.Run("month with year", func(t *testing.T) {
		p := e.Extract("Sales in June 2024").Period
		require.NotNil(t, p)
		assert.Equal(t, models.PeriodMonth, p.Kind)
		assert.Equal(t, time.June, p.Month)
		assert.Equal(t, 2024, p.Year)
	})

	t.Run("abbreviated month without year uses current year", func(t *testing.T) {
		p := e.Extract("Jan sales branch 1").Period
		require.NotNil(t, p)
		assert.Equal(t, models.PeriodMonth, p.Kind)
		assert.Equal(t, time.January, p.Month)
		assert.Equal(t, 2025, p.Year)
	})

	t.Run("bare year with total", func(t *testing.T) {
		p := e.Extract("Total sales in 2025").Period
		require.NotNil(t, p)
		assert.Equal(t, models.PeriodYear, p.Kind)
		assert.Equal(t, 2025, p.Year)
	})

	t.Run("no period", func(t *testing.T) {
		assert.Nil(t, e.Extract("Average sales for Branch 1").Period)
	})
}

func TestExtractBranch(t *testing.T) {
	e := createTestExtractor(t)

	t.Run("numbered branch", func(t *testing.T) {
		b := e.Extract("Sales in June 2025 branch 2").Branch
		require.NotNil(t, b)
		assert.Equal(t, 2, b.ID)
		assert.False(t, b.All)
	})

	t.Run("all branches", func(t *testing.T) {
		b := e.Extract("Total sales in 2025 all branches").Branch
		require.NotNil(t, b)
		assert.True(t, b.All)
	})

	t.Run("no branch", func(t *testing.T) {
		assert.Nil(t, e.Extract("Total sales in 2025").Branch)
	})
}

func TestExtractComparison(t *testing.T) {
	e := createTestExtractor(t)

	t.Run("branch vs branch", func(t *testing.T) {
		c := e.Extract("Compare Branch 1 and Branch 2").Comparison
		require.NotNil(t, c)
		assert.Equal(t, models.CompareBranches, c.Kind)
		assert.Equal(t, 1, c.BranchA)
		assert.Equal(t, 2, c.BranchB)
	})

	t.Run("this month vs last month", func(t *testing.T) {
		c := e.Extract("Compare this month vs last month").Comparison
		require.NotNil(t, c)
		assert.Equal(t, models.ComparePeriods, c.Kind)
		require.NotNil(t, c.PeriodA)
		require.NotNil(t, c.PeriodB)
		assert.Equal(t, time.August, c.PeriodA.Month)
		assert.Equal(t, time.July, c.PeriodB.Month)
		assert.Equal(t, 2025, c.PeriodB.Year)
	})

	t.Run("no comparison", func(t *testing.T) {
		assert.Nil(t, e.Extract("Total sales in 2025").Comparison)
	})
}
