// internal/store/accounting_test.go
package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/models"
)

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func createTestAccountingStore(t *testing.T) (*AccountingStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAccountingStore(db, logger.NewTestLogger(t)), mock
}

func TestHierarchyTree(t *testing.T) {
	s, mock := createTestAccountingStore(t)

	rows := sqlmock.NewRows([]string{"id", "parent_id", "name", "level", "type", "allow_ledger", "depth"}).
		AddRow(1, nil, "Revenue", 1, "group", "no", 0).
		AddRow(2, 1, "Sales", 2, "ledger", "yes", 1)

	mock.ExpectQuery(`WITH RECURSIVE coa_tree AS`).WillReturnRows(rows)

	accounts, err := s.HierarchyTree(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "Revenue", accounts[0].Name)
	assert.Equal(t, 0, accounts[0].Depth)
	assert.False(t, accounts[0].ParentID.Valid)
	assert.Equal(t, "yes", accounts[1].AllowLedger)
	assert.Equal(t, 1, accounts[1].Depth)
}

func TestAccountBalance(t *testing.T) {
	t.Run("ledger account sums directly", func(t *testing.T) {
		s, mock := createTestAccountingStore(t)

		mock.ExpectQuery(`SELECT id, allow_ledger FROM accounts WHERE name ILIKE \$1`).
			WithArgs("sales").
			WillReturnRows(sqlmock.NewRows([]string{"id", "allow_ledger"}).AddRow(2, "yes"))
		mock.ExpectQuery(`SELECT SUM\(amount\) FROM sales WHERE account_id = \$1`).
			WithArgs(2, 2025).
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("120000.00"))

		total, found, err := s.AccountBalance(context.Background(), "sales", 2025, nil)
		require.NoError(t, err)
		assert.True(t, found)
		assert.True(t, total.Equal(decimalFromString(t, "120000")))
	})

	t.Run("group account sums descendants", func(t *testing.T) {
		s, mock := createTestAccountingStore(t)

		mock.ExpectQuery(`SELECT id, allow_ledger FROM accounts WHERE name ILIKE \$1`).
			WithArgs("revenue").
			WillReturnRows(sqlmock.NewRows([]string{"id", "allow_ledger"}).AddRow(1, "no"))
		mock.ExpectQuery(`WITH RECURSIVE descendants AS`).
			WithArgs(1, 2025, 2).
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("340000.00"))

		total, found, err := s.AccountBalance(context.Background(), "revenue", 2025, models.Branch(2))
		require.NoError(t, err)
		assert.True(t, found)
		assert.True(t, total.Equal(decimalFromString(t, "340000")))
	})

	t.Run("unknown account", func(t *testing.T) {
		s, mock := createTestAccountingStore(t)

		mock.ExpectQuery(`SELECT id, allow_ledger FROM accounts WHERE name ILIKE \$1`).
			WithArgs("unicorns").
			WillReturnRows(sqlmock.NewRows([]string{"id", "allow_ledger"}))

		_, found, err := s.AccountBalance(context.Background(), "unicorns", 2025, nil)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("no postings maps to zero", func(t *testing.T) {
		s, mock := createTestAccountingStore(t)

		mock.ExpectQuery(`SELECT id, allow_ledger FROM accounts WHERE name ILIKE \$1`).
			WithArgs("sales").
			WillReturnRows(sqlmock.NewRows([]string{"id", "allow_ledger"}).AddRow(2, "yes"))
		mock.ExpectQuery(`SELECT SUM\(amount\) FROM sales WHERE account_id = \$1`).
			WithArgs(2, 2025).
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(nil))

		total, found, err := s.AccountBalance(context.Background(), "sales", 2025, nil)
		require.NoError(t, err)
		assert.True(t, found)
		assert.True(t, total.IsZero())
	})
}
