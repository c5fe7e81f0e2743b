package store

import (
	"database/sql"
	"strconv"
	"strings"
)

// dialect hides the few places where sqlite and postgres SQL differ.
// Queries are written with ? placeholders and rebound per driver.
type dialect interface {
	rebind(query string) string
	idColumn() string
	refType() string
	schemaVersion(tx *sql.Tx) (int, error)
	setSchemaVersion(tx *sql.Tx, v int) error
}

type sqliteDialect struct{}

func (sqliteDialect) rebind(q string) string { return q }
func (sqliteDialect) idColumn() string      { return "INTEGER PRIMARY KEY AUTOINCREMENT" }
func (sqliteDialect) refType() string       { return "INTEGER" }

func (sqliteDialect) schemaVersion(tx *sql.Tx) (int, error) {
	var v int
	err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v)
	return v, err
}

func (sqliteDialect) setSchemaVersion(tx *sql.Tx, v int) error {
	// PRAGMA does not take bind parameters.
	_, err := tx.Exec(`PRAGMA user_version = ` + strconv.Itoa(v) + `;`)
	return err
}

type postgresDialect struct{}

func (postgresDialect) rebind(q string) string {
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (postgresDialect) idColumn() string { return "BIGSERIAL PRIMARY KEY" }
func (postgresDialect) refType() string  { return "BIGINT" }

func (postgresDialect) schemaVersion(tx *sql.Tx) (int, error) {
	if _, err := tx.Exec(`CREATE TABLE IF NOT EXISTS schema_meta (version INTEGER NOT NULL);`); err != nil {
		return 0, err
	}
	var v int
	err := tx.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_meta;`).Scan(&v)
	return v, err
}

func (postgresDialect) setSchemaVersion(tx *sql.Tx, v int) error {
	if _, err := tx.Exec(`DELETE FROM schema_meta;`); err != nil {
		return err
	}
	_, err := tx.Exec(`INSERT INTO schema_meta(version) VALUES ($1);`, v)
	return err
}
