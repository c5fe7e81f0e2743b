package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"fundfinder-engine/internal/config"
)

type DB struct {
	Pool    *sql.DB
	dialect dialect
}

// Open connects to sqlite (path is a file path) or postgres (path is a DSN)
// and pings before returning.
func Open(driver, path string) (*DB, error) {
	var (
		pool *sql.DB
		err  error
		d    dialect
	)
	switch driver {
	case config.DriverSQLite, "":
		// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
		pool, err = sql.Open("sqlite", dsn)
		if err != nil {
			return nil, err
		}
		pool.SetMaxOpenConns(1) // sqlite typically wants 1 writer
		d = sqliteDialect{}
	case config.DriverPostgres:
		pool, err = sql.Open("pgx", path)
		if err != nil {
			return nil, err
		}
		pool.SetMaxOpenConns(16)
		d = postgresDialect{}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	pool.SetConnMaxLifetime(5 * time.Minute)

	// quick ping
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}

	return &DB{Pool: pool, dialect: d}, nil
}

func (d *DB) Close() error {
	if d == nil || d.Pool == nil {
		return nil
	}
	return d.Pool.Close()
}

func (d *DB) q(query string) string { return d.dialect.rebind(query) }
