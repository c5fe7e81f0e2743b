package store

import (
	"context"
	"database/sql"
	"fmt"

	"fundfinder-engine/internal/domain"
)

func (d *DB) FetchAllTags(ctx context.Context) ([]domain.Tag, error) {
	rows, err := d.Pool.QueryContext(ctx, `
SELECT id, name, category
FROM tags
ORDER BY category, name;`)
	if err != nil {
		return nil, fmt.Errorf("fetch tags: %w", err)
	}
	defer rows.Close()
	return scanTags(rows)
}

func (d *DB) FetchTagsByCategory(ctx context.Context, cat domain.Category) ([]domain.Tag, error) {
	rows, err := d.Pool.QueryContext(ctx, d.q(`
SELECT id, name, category
FROM tags
WHERE category = ?
ORDER BY name;`), string(cat))
	if err != nil {
		return nil, fmt.Errorf("fetch tags %s: %w", cat, err)
	}
	defer rows.Close()
	return scanTags(rows)
}

// EnsureTag inserts the tag if (name, category) is new and returns its id.
func (d *DB) EnsureTag(ctx context.Context, name string, cat domain.Category) (int64, error) {
	return ensureTag(ctx, d.Pool, d.dialect, name, cat)
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func ensureTag(ctx context.Context, q queryer, dl dialect, name string, cat domain.Category) (int64, error) {
	if _, err := q.ExecContext(ctx, dl.rebind(`
INSERT INTO tags (name, category) VALUES (?, ?)
ON CONFLICT (name, category) DO NOTHING;`), name, string(cat)); err != nil {
		return 0, fmt.Errorf("insert tag %s/%s: %w", cat, name, err)
	}
	var id int64
	err := q.QueryRowContext(ctx, dl.rebind(`
SELECT id FROM tags WHERE name = ? AND category = ?;`), name, string(cat)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("lookup tag %s/%s: %w", cat, name, err)
	}
	return id, nil
}

func scanTags(rows *sql.Rows) ([]domain.Tag, error) {
	var out []domain.Tag
	for rows.Next() {
		var t domain.Tag
		var cat string
		if err := rows.Scan(&t.ID, &t.Name, &cat); err != nil {
			return nil, err
		}
		t.Category = domain.Category(cat)
		out = append(out, t)
	}
	return out, rows.Err()
}
