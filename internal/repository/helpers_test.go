package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var productCols = []string{"id", "name", "description", "price", "category", "stock", "image", "is_active", "created_at", "updated_at"}

func productRows() *sqlmock.Rows {
	return sqlmock.NewRows(productCols)
}

func addProduct(rows *sqlmock.Rows, id, name, price string, stock int, active bool) *sqlmock.Rows {
	return rows.AddRow(id, name, name+" description", price, "Electrónicos", stock, "img.png", active, fixedTime, fixedTime)
}
