// Package dbtest cria bancos SQLite em memória, já migrados, para testes de repositório.
package dbtest

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"laticinios/internal/pkg/database"
)

// NewSQLite abre um banco ":memory:" isolado e aplica as migrações.
func NewSQLite(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := database.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = database.Migrate(context.Background(), db)
	require.NoError(t, err)
	return db
}

// Exec executa SQL de preparação (já com placeholders "?").
func Exec(t testing.TB, db *sqlx.DB, query string, args ...any) {
	t.Helper()
	_, err := db.Exec(query, args...)
	require.NoError(t, err)
}
