package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/isdelr/tienda-api/internal/database"
	"github.com/isdelr/tienda-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect database.Dialect
		in      string
		want    string
	}{
		{"sqlite untouched", database.SQLite, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = ? AND b = ?"},
		{"postgres numbered", database.Postgres, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = $1 AND b = $2"},
		{"postgres no args", database.Postgres, "SELECT 1", "SELECT 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dialect.Rebind(tt.in))
		})
	}
}

func TestUnicodeLowerFoldsAccents(t *testing.T) {
	db := testutil.OpenInMemoryDB(t)
	assert.Equal(t, "unicode_lower", db.Dialect().Lower())
	assert.Equal(t, "LOWER", database.Postgres.Lower())

	var got string
	require.NoError(t, db.QueryRowContext(context.Background(),
		"SELECT unicode_lower(?)", "CAMIÓN Ñandú").Scan(&got))
	assert.Equal(t, "camión ñandú", got)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := testutil.OpenInMemoryDB(t)
	assert.Equal(t, database.SQLite, db.Dialect())
	require.NoError(t, database.Migrate(context.Background(), db))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := testutil.OpenInMemoryDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.WithTx(ctx, func(tx *database.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO categories(name) VALUES(?)", "Temporal")
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&count))
	assert.Zero(t, count)
}

func TestWithTxCommits(t *testing.T) {
	db := testutil.OpenInMemoryDB(t)
	ctx := context.Background()

	err := db.WithTx(ctx, func(tx *database.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO categories(name) VALUES(?)", "Hogar")
		return err
	})
	require.NoError(t, err)

	var name string
	require.NoError(t, db.QueryRowContext(ctx, "SELECT name FROM categories").Scan(&name))
	assert.Equal(t, "Hogar", name)
}

func TestForeignKeysAreEnforced(t *testing.T) {
	db := testutil.OpenInMemoryDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		"INSERT INTO products(name, price, quantity, category_id) VALUES(?, ?, ?, ?)", "Huérfano", 1.0, 1, 42)
	assert.Error(t, err)
}
