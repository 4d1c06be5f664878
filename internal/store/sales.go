// internal/store/sales.go
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	stderrors "sales-assistant/internal/common/errors"
	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/models"
)

// SalesStore reads the daily sales figures table. Aggregations over
// empty ranges come back as zero, not as errors, so handlers can phrase
// a "no data" answer instead of failing.
type SalesStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewSalesStore(db *sql.DB, log logger.Logger) *SalesStore {
	return &SalesStore{db: db, logger: log}
}

// DailyTotal returns the sales figure for one calendar day, across all
// branches or scoped to one.
func (s *SalesStore) DailyTotal(ctx context.Context, date time.Time, branch *models.BranchRef) (decimal.Decimal, error) {
	query := "SELECT SUM(amount) FROM sales WHERE sale_date = $1"
	args := []interface{}{date.Format("2006-01-02")}
	if branch != nil && !branch.All {
		query += " AND br_id = $2"
		args = append(args, branch.ID)
	}
	return s.sumQuery(ctx, query, args...)
}

// RangeTotal returns summed sales over an inclusive date range.
func (s *SalesStore) RangeTotal(ctx context.Context, start, end time.Time, branch *models.BranchRef) (decimal.Decimal, error) {
	query := "SELECT SUM(amount) FROM sales WHERE sale_date >= $1 AND sale_date <= $2"
	args := []interface{}{start.Format("2006-01-02"), end.Format("2006-01-02")}
	if branch != nil && !branch.All {
		query += " AND br_id = $3"
		args = append(args, branch.ID)
	}
	return s.sumQuery(ctx, query, args...)
}

// MonthlyDailyAverage returns the mean daily sales within one calendar
// month. The all-branches form averages per-day company totals.
func (s *SalesStore) MonthlyDailyAverage(ctx context.Context, year int, month time.Month, branch *models.BranchRef) (decimal.Decimal, error) {
	if branch == nil || branch.All {
		query := `SELECT AVG(daily_total) FROM (
			SELECT sale_date, SUM(amount) AS daily_total FROM sales
			WHERE EXTRACT(YEAR FROM sale_date) = $1 AND EXTRACT(MONTH FROM sale_date) = $2
			GROUP BY sale_date) AS daily`
		return s.sumQuery(ctx, query, year, int(month))
	}
	query := `SELECT AVG(amount) FROM sales
		WHERE EXTRACT(YEAR FROM sale_date) = $1 AND EXTRACT(MONTH FROM sale_date) = $2 AND br_id = $3`
	return s.sumQuery(ctx, query, year, int(month), branch.ID)
}

// ExtremeMonth finds the strongest or weakest month of a year. The
// boolean result reports whether any data existed.
func (s *SalesStore) ExtremeMonth(ctx context.Context, year int, branch *models.BranchRef, highest bool) (time.Month, decimal.Decimal, bool, error) {
	order := "ASC"
	if highest {
		order = "DESC"
	}
	query := `SELECT EXTRACT(MONTH FROM sale_date)::int AS m, SUM(amount) AS total FROM sales
		WHERE EXTRACT(YEAR FROM sale_date) = $1`
	args := []interface{}{year}
	if branch != nil && !branch.All {
		query += " AND br_id = $2"
		args = append(args, branch.ID)
	}
	query += " GROUP BY m ORDER BY total " + order + " LIMIT 1"

	var month int
	var total decimal.Decimal
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&month, &total)
	if err == sql.ErrNoRows {
		return 0, decimal.Zero, false, nil
	}
	if err != nil {
		return 0, decimal.Zero, false, stderrors.NewDatabaseError("extreme month query failed", err)
	}
	return time.Month(month), total, true, nil
}

// ExtremeBranch finds the best or worst selling branch, scoped to one
// month when month is nonzero, otherwise to the whole year.
func (s *SalesStore) ExtremeBranch(ctx context.Context, year int, month time.Month, highest bool) (int, decimal.Decimal, bool, error) {
	order := "ASC"
	if highest {
		order = "DESC"
	}
	query := `SELECT br_id, SUM(amount) AS total FROM sales WHERE EXTRACT(YEAR FROM sale_date) = $1`
	args := []interface{}{year}
	if month != 0 {
		query += " AND EXTRACT(MONTH FROM sale_date) = $2"
		args = append(args, int(month))
	}
	query += " GROUP BY br_id ORDER BY total " + order + " LIMIT 1"

	var brID int
	var total decimal.Decimal
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&brID, &total)
	if err == sql.ErrNoRows {
		return 0, decimal.Zero, false, nil
	}
	if err != nil {
		return 0, decimal.Zero, false, stderrors.NewDatabaseError("extreme branch query failed", err)
	}
	return brID, total, true, nil
}

// DistinctYears lists the years present in the data, newest first.
func (s *SalesStore) DistinctYears(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT EXTRACT(YEAR FROM sale_date)::int AS y FROM sales ORDER BY y DESC")
	if err != nil {
		return nil, stderrors.NewDatabaseError("distinct years query failed", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, stderrors.NewDatabaseError("distinct years scan failed", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// DistinctBranches lists the branch ids present in the data.
func (s *SalesStore) DistinctBranches(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT br_id FROM sales ORDER BY br_id")
	if err != nil {
		return nil, stderrors.NewDatabaseError("distinct branches query failed", err)
	}
	defer rows.Close()

	var branches []int
	for rows.Next() {
		var b int
		if err := rows.Scan(&b); err != nil {
			return nil, stderrors.NewDatabaseError("distinct branches scan failed", err)
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

// BusiestBranch returns the branch with the most recorded sales rows.
func (s *SalesStore) BusiestBranch(ctx context.Context) (int, error) {
	var brID int
	err := s.db.QueryRowContext(ctx,
		"SELECT br_id FROM sales GROUP BY br_id ORDER BY COUNT(*) DESC LIMIT 1").Scan(&brID)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, stderrors.NewDatabaseError("busiest branch query failed", err)
	}
	return brID, nil
}

// sumQuery runs a single-value aggregate and maps NULL to zero.
func (s *SalesStore) sumQuery(ctx context.Context, query string, args ...interface{}) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&total)
	if err == sql.ErrNoRows {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, stderrors.NewDatabaseError("aggregate query failed", err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
