package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/core/internal/infrastructure/config"
)

func newSQLite(t *testing.T) *DB {
	t.Helper()
	db, err := New(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "taskflow.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrations(t *testing.T) {
	db := newSQLite(t)

	version, dirty, err := MigrationVersion(db)
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)

	require.NoError(t, MigrateUp(db))
	require.NoError(t, MigrateUp(db), "up is idempotent")

	version, dirty, err = MigrationVersion(db)
	require.NoError(t, err)
	assert.Equal(t, uint(3), version)
	assert.False(t, dirty)

	for _, table := range []string{"tasks", "contacts", "discounts"} {
		var n int
		require.NoError(t, db.DB.Get(&n, "SELECT COUNT(*) FROM "+table))
		assert.Zero(t, n)
	}

	require.NoError(t, MigrateDown(db))
	version, _, err = MigrationVersion(db)
	require.NoError(t, err)
	assert.Zero(t, version)
}

func TestWithTransactionRollsBack(t *testing.T) {
	db := newSQLite(t)
	require.NoError(t, MigrateUp(db))
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO discounts (title, expiry_date) VALUES ('x', '2030-01-01')`)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, db.DB.Get(&n, "SELECT COUNT(*) FROM discounts"))
	assert.Zero(t, n)
}

func TestHealth(t *testing.T) {
	db := newSQLite(t)
	assert.NoError(t, db.Ping(context.Background()))
	assert.Equal(t, config.DriverSQLite, db.GetConnectionInfo()["driver"])
	assert.False(t, db.IsPostgres())
}
