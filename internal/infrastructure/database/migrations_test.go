package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hugohenrick/talonai-chat/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteMigrationsUpAndDown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "chat.db")

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, RunMigrations(DriverSQLite, path, logger.Discard()))
	// segunda execução não tem nada pendente
	require.NoError(t, RunMigrations(DriverSQLite, path, logger.Discard()))

	db, err := OpenSQLite(path)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('chat_sessions', 'chat_messages')`).Scan(&n))
	assert.Equal(t, 2, n)
	require.NoError(t, db.Close())

	require.NoError(t, RollbackMigrations(DriverSQLite, path, logger.Discard()))

	db, err = OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'chat_sessions'`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestRunMigrationsValidatesArguments(t *testing.T) {
	assert.Error(t, RunMigrations("mysql", "x", logger.Discard()))
	assert.ErrorIs(t, RunMigrations(DriverPostgres, "", logger.Discard()), ErrMissingDatabaseURL)
}

func TestNewPostgresDBValidatesURL(t *testing.T) {
	_, err := NewPostgresDB(&PostgresConfig{}, logger.Discard())
	assert.ErrorIs(t, err, ErrMissingDatabaseURL)

	_, err = NewPostgresDB(&PostgresConfig{URL: "postgres://localhost:notaport/talonai"}, logger.Discard())
	assert.Error(t, err)
}

func TestPostgresDBLazyPool(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL não configurada")
	}

	db, err := NewPostgresDB(&PostgresConfig{URL: url}, logger.Discard())
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	first, err := db.Pool(ctx)
	require.NoError(t, err)
	second, err := db.Pool(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.NoError(t, db.Ping(ctx))
}
