// internal/store/accounting.go
package store

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	stderrors "sales-assistant/internal/common/errors"
	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/models"
)

// Account is one node of the chart-of-accounts hierarchy. Depth is the
// distance from the root, used for indented rendering.
type Account struct {
	ID          int
	ParentID    sql.NullInt64
	Name        string
	Level       int
	Type        string
	AllowLedger string
	Depth       int
}

// AccountingStore reads the chart-of-accounts hierarchy and aggregates
// balances across it.
type AccountingStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewAccountingStore(db *sql.DB, log logger.Logger) *AccountingStore {
	return &AccountingStore{db: db, logger: log}
}

// HierarchyTree returns all accounts in depth-first order. The path
// ordering keeps each subtree contiguous.
func (s *AccountingStore) HierarchyTree(ctx context.Context) ([]Account, error) {
	query := `
	WITH RECURSIVE coa_tree AS (
		SELECT id, parent_id, name, level, type, allow_ledger, 0 AS depth, id::text AS path
		FROM accounts
		WHERE parent_id IS NULL
		UNION ALL
		SELECT a.id, a.parent_id, a.name, a.level, a.type, a.allow_ledger, ct.depth + 1, ct.path || '/' || a.id::text
		FROM accounts a
		JOIN coa_tree ct ON a.parent_id = ct.id
	)
	SELECT id, parent_id, name, level, type, allow_ledger, depth FROM coa_tree ORDER BY path`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, stderrors.NewDatabaseError("hierarchy query failed", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.ParentID, &a.Name, &a.Level, &a.Type, &a.AllowLedger, &a.Depth); err != nil {
			return nil, stderrors.NewDatabaseError("hierarchy scan failed", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// AccountBalance aggregates a named account for one year. Ledger
// accounts sum their own postings; group accounts sum every ledger
// account below them. The boolean result reports whether the account
// name matched anything.
func (s *AccountingStore) AccountBalance(ctx context.Context, name string, year int, branch *models.BranchRef) (decimal.Decimal, bool, error) {
	var accID int
	var allowLedger string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, allow_ledger FROM accounts WHERE name ILIKE $1 LIMIT 1", name).
		Scan(&accID, &allowLedger)
	if err == sql.ErrNoRows {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, stderrors.NewDatabaseError("account lookup failed", err)
	}

	branchFilter := ""
	args := []interface{}{accID, year}
	if branch != nil && !branch.All {
		branchFilter = " AND br_id = $3"
		args = append(args, branch.ID)
	}

	var query string
	if allowLedger == "yes" {
		query = "SELECT SUM(amount) FROM sales WHERE account_id = $1 AND EXTRACT(YEAR FROM sale_date) = $2" + branchFilter
	} else {
		if branchFilter != "" {
			branchFilter = " AND s.br_id = $3"
		}
		query = `
		WITH RECURSIVE descendants AS (
			SELECT id, allow_ledger FROM accounts WHERE id = $1
			UNION ALL
			SELECT a.id, a.allow_ledger FROM accounts a JOIN descendants d ON a.parent_id = d.id
		)
		SELECT SUM(s.amount)
		FROM sales s
		JOIN descendants d ON s.account_id = d.id
		WHERE d.allow_ledger = 'yes'
		AND EXTRACT(YEAR FROM s.sale_date) = $2` + branchFilter
	}

	var total decimal.NullDecimal
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, false, stderrors.NewDatabaseError("balance query failed", err)
	}
	if !total.Valid {
		return decimal.Zero, true, nil
	}
	return total.Decimal, true, nil
}
