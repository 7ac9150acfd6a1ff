package db

import (
	"database/sql"

	_ "github.com/lib/pq"

	"github.com/marklangat/waleads-backend/internal/config"
)

// Connect opens and pings a Postgres connection. The caller owns the handle
// and its lifecycle; nothing in this package holds global state.
func Connect(cfg config.DatabaseConfig) (*sql.DB, error) {
	conn, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}
