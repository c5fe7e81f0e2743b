package store

import (
	"context"
	"fmt"

	"fundfinder-engine/internal/domain"
)

const schemaVersion = 1

// candidateTables names the base and join tables for each candidate kind.
type candidateTables struct {
	base string
	join string
	fk   string
}

var kindTables = map[domain.Kind]candidateTables{
	domain.KindGrant:  {base: "grants", join: "grant_tags", fk: "grant_id"},
	domain.KindVC:     {base: "vcs", join: "vc_tags", fk: "vc_id"},
	domain.KindMentor: {base: "mentors", join: "mentor_tags", fk: "mentor_id"},
}

func tablesFor(kind domain.Kind) (candidateTables, error) {
	t, ok := kindTables[kind]
	if !ok {
		return candidateTables{}, fmt.Errorf("unknown candidate kind %q", kind)
	}
	return t, nil
}

func (d *DB) Migrate(ctx context.Context) error {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	v, err := d.dialect.schemaVersion(tx)
	if err != nil {
		return err
	}
	if v >= schemaVersion {
		return tx.Commit()
	}

	id := d.dialect.idColumn()
	ref := d.dialect.refType()

	// ---- Schema v1: tables ----

	stmts := []string{
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS tags (
  id %s,
  name TEXT NOT NULL,
  category TEXT NOT NULL,
  UNIQUE (name, category)
);`, id),
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS grants (
  id %s,
  name TEXT NOT NULL UNIQUE,
  provider TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  website TEXT NOT NULL DEFAULT '',
  dpiit_required BOOLEAN NOT NULL DEFAULT FALSE,
  patent_required BOOLEAN NOT NULL DEFAULT FALSE,
  prototype_required BOOLEAN NOT NULL DEFAULT FALSE,
  tech_cofounder_required BOOLEAN NOT NULL DEFAULT FALSE,
  full_time_required BOOLEAN NOT NULL DEFAULT FALSE,
  amount_max TEXT,
  application_deadline TEXT
);`, id),
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS vcs (
  id %s,
  name TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT '',
  website TEXT NOT NULL DEFAULT '',
  country_based_of TEXT
);`, id),
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS mentors (
  id %s,
  name TEXT NOT NULL UNIQUE,
  bio TEXT NOT NULL DEFAULT '',
  linkedin TEXT NOT NULL DEFAULT '',
  rate_tier TEXT,
  languages TEXT NOT NULL DEFAULT '[]'
);`, id),
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS submissions (
  id %s,
  kind TEXT NOT NULL,
  name TEXT NOT NULL,
  payload TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  submitted_at TEXT NOT NULL
);`, id),
	}

	for _, kind := range []domain.Kind{domain.KindGrant, domain.KindVC, domain.KindMentor} {
		t := kindTables[kind]
		stmts = append(stmts, fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
  %[2]s %[4]s NOT NULL REFERENCES %[3]s(id) ON DELETE CASCADE,
  tag_id %[4]s NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
  PRIMARY KEY (%[2]s, tag_id)
);`, t.join, t.fk, t.base, ref))
	}

	// ---- Schema v1: indexes ----

	stmts = append(stmts,
		`CREATE INDEX IF NOT EXISTS idx_tags_category ON tags(category);`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_status_date ON submissions(status, submitted_at);`,
	)

	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	if err := d.dialect.setSchemaVersion(tx, schemaVersion); err != nil {
		return err
	}

	return tx.Commit()
}
