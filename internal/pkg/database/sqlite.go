package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteParams = "_txlock=immediate&_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL"

// NewSQLiteDB abre o arquivo SQLite (ou ":memory:") com transações IMMEDIATE,
// de modo que cada retirada serializa com as demais escritas.
func NewSQLiteDB(path string) (*sqlx.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("falha ao criar diretório do SQLite: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite3", withParams("file:"+path, sqliteParams))
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir o SQLite em %s: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("falha ao realizar o ping inicial no SQLite: %w", err)
	}

	if path == ":memory:" {
		// Cada conexão teria seu próprio banco em memória.
		configurePool(db, 1, 1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	} else {
		configurePool(db, 4, 4)
	}

	return db, nil
}
