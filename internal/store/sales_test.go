// internal/store/sales_test.go
package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/models"
)

func createTestSalesStore(t *testing.T) (*SalesStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSalesStore(db, logger.NewTestLogger(t)), mock
}

func TestDailyTotal(t *testing.T) {
	t.Run("single branch", func(t *testing.T) {
		s, mock := createTestSalesStore(t)

		mock.ExpectQuery(`SELECT SUM\(amount\) FROM sales WHERE sale_date = \$1 AND br_id = \$2`).
			WithArgs("2025-08-29", 1).
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("1520000.50"))

		total, err := s.DailyTotal(context.Background(), time.Date(2025, 8, 29, 0, 0, 0, 0, time.UTC), models.Branch(1))
		require.NoError(t, err)
		assert.Equal(t, "1520000.5", total.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("all branches", func(t *testing.T) {
		s, mock := createTestSalesStore(t)

		mock.ExpectQuery(`SELECT SUM\(amount\) FROM sales WHERE sale_date = \$1`).
			WithArgs("2025-08-29").
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("4500000.00"))

		total, err := s.DailyTotal(context.Background(), time.Date(2025, 8, 29, 0, 0, 0, 0, time.UTC), models.EveryBranch())
		require.NoError(t, err)
		assert.True(t, total.Equal(decimalFromString(t, "4500000")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("null sum maps to zero", func(t *testing.T) {
		s, mock := createTestSalesStore(t)

		mock.ExpectQuery(`SELECT SUM\(amount\) FROM sales WHERE sale_date = \$1 AND br_id = \$2`).
			WithArgs("2025-08-29", 1).
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(nil))

		total, err := s.DailyTotal(context.Background(), time.Date(2025, 8, 29, 0, 0, 0, 0, time.UTC), models.Branch(1))
		require.NoError(t, err)
		assert.True(t, total.IsZero())
	})
}

func TestRangeTotal(t *testing.T) {
	s, mock := createTestSalesStore(t)

	mock.ExpectQuery(`SELECT SUM\(amount\) FROM sales WHERE sale_date >= \$1 AND sale_date <= \$2 AND br_id = \$3`).
		WithArgs("2025-01-01", "2025-03-31", 2).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("99000000.00"))

	total, err := s.RangeTotal(context.Background(),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		models.Branch(2))
	require.NoError(t, err)
	assert.True(t, total.Equal(decimalFromString(t, "99000000")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMonthlyDailyAverage(t *testing.T) {
	t.Run("branch scoped", func(t *testing.T) {
		s, mock := createTestSalesStore(t)

		mock.ExpectQuery(`SELECT AVG\(amount\) FROM sales`).
			WithArgs(2025, 6, 1).
			WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow("1408099.55"))

		avg, err := s.MonthlyDailyAverage(context.Background(), 2025, time.June, models.Branch(1))
		require.NoError(t, err)
		assert.Equal(t, "1408099.55", avg.String())
	})

	t.Run("all branches averages daily totals", func(t *testing.T) {
		s, mock := createTestSalesStore(t)

		mock.ExpectQuery(`SELECT AVG\(daily_total\) FROM`).
			WithArgs(2025, 6).
			WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow("4100000.00"))

		avg, err := s.MonthlyDailyAverage(context.Background(), 2025, time.June, models.EveryBranch())
		require.NoError(t, err)
		assert.False(t, avg.IsZero())
	})
}

func TestExtremeMonth(t *testing.T) {
	t.Run("highest month found", func(t *testing.T) {
		s, mock := createTestSalesStore(t)

		mock.ExpectQuery(`SELECT EXTRACT\(MONTH FROM sale_date\)::int AS m, SUM\(amount\) AS total FROM sales`).
			WithArgs(2025, 1).
			WillReturnRows(sqlmock.NewRows([]string{"m", "total"}).AddRow(12, "88000000.00"))

		month, total, found, err := s.ExtremeMonth(context.Background(), 2025, models.Branch(1), true)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, time.December, month)
		assert.True(t, total.Equal(decimalFromString(t, "88000000")))
	})

	t.Run("no data", func(t *testing.T) {
		s, mock := createTestSalesStore(t)

		mock.ExpectQuery(`SELECT EXTRACT\(MONTH FROM sale_date\)::int AS m`).
			WithArgs(2030).
			WillReturnRows(sqlmock.NewRows([]string{"m", "total"}))

		_, _, found, err := s.ExtremeMonth(context.Background(), 2030, nil, true)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestExtremeBranch(t *testing.T) {
	s, mock := createTestSalesStore(t)

	mock.ExpectQuery(`SELECT br_id, SUM\(amount\) AS total FROM sales`).
		WithArgs(2025, 6).
		WillReturnRows(sqlmock.NewRows([]string{"br_id", "total"}).AddRow(2, "55000000.00"))

	brID, total, found, err := s.ExtremeBranch(context.Background(), 2025, time.June, true)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, brID)
	assert.False(t, total.IsZero())
}

func TestDistinctYears(t *testing.T) {
	s, mock := createTestSalesStore(t)

	mock.ExpectQuery(`SELECT DISTINCT EXTRACT\(YEAR FROM sale_date\)::int AS y FROM sales`).
		WillReturnRows(sqlmock.NewRows([]string{"y"}).AddRow(2025).AddRow(2024))

	years, err := s.DistinctYears(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2025, 2024}, years)
}

func TestDistinctBranches(t *testing.T) {
	s, mock := createTestSalesStore(t)

	mock.ExpectQuery(`SELECT DISTINCT br_id FROM sales`).
		WillReturnRows(sqlmock.NewRows([]string{"br_id"}).AddRow(1).AddRow(2).AddRow(3))

	branches, err := s.DistinctBranches(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, branches)
}
