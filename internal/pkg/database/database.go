package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"laticinios/migrations"
)

// Dialect identifica o banco relacional em uso.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// DialectOf deduz o dialeto a partir do nome do driver do sqlx.
func DialectOf(db *sqlx.DB) Dialect {
	if db.DriverName() == "postgres" {
		return DialectPostgres
	}
	return DialectSQLite
}

// LockClause devolve o sufixo de bloqueio de linha para leituras dentro de transação.
// No SQLite a transação já é aberta com BEGIN IMMEDIATE (_txlock=immediate).
func LockClause(db *sqlx.DB) string {
	if DialectOf(db) == DialectPostgres {
		return " FOR UPDATE"
	}
	return ""
}

// IsUniqueViolation reconhece violação de chave única/primária nos dois drivers.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// IsForeignKeyViolation reconhece violação de chave estrangeira nos dois drivers.
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

// NewProvider monta o provider goose com as migrações embutidas do dialeto.
func NewProvider(db *sqlx.DB) (*goose.Provider, error) {
	dialect := DialectOf(db)
	gooseDialect := goose.DialectSQLite3
	if dialect == DialectPostgres {
		gooseDialect = goose.DialectPostgres
	}

	fsys, err := fs.Sub(migrations.FS, string(dialect))
	if err != nil {
		return nil, fmt.Errorf("migrações do dialeto %s não encontradas: %w", dialect, err)
	}
	return goose.NewProvider(gooseDialect, db.DB, fsys)
}

// Migrate aplica todas as migrações pendentes.
func Migrate(ctx context.Context, db *sqlx.DB) ([]string, error) {
	provider, err := NewProvider(db)
	if err != nil {
		return nil, err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao aplicar migrações: %w", err)
	}

	applied := make([]string, 0, len(results))
	for _, r := range results {
		applied = append(applied, r.String())
	}
	return applied, nil
}

func configurePool(db *sqlx.DB, maxOpen, maxIdle int) {
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	// Conexões morrem após 5 minutos (evita problemas de rede/firewall).
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)
}

func withParams(dsn string, params string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + params
	}
	return dsn + "?" + params
}
