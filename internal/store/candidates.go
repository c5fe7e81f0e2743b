package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fundfinder-engine/internal/domain"
)

// FetchGrants returns every grant in id order, without tags.
func (d *DB) FetchGrants(ctx context.Context) ([]domain.Grant, error) {
	rows, err := d.Pool.QueryContext(ctx, `
SELECT id, name, provider, description, website,
       dpiit_required, patent_required, prototype_required,
       tech_cofounder_required, full_time_required,
       amount_max, application_deadline
FROM grants
ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("fetch grants: %w", err)
	}
	defer rows.Close()

	var out []domain.Grant
	for rows.Next() {
		var g domain.Grant
		var amount, deadline sql.NullString
		if err := rows.Scan(
			&g.ID,
			&g.Name,
			&g.Provider,
			&g.Description,
			&g.Website,
			&g.DPIITRequired,
			&g.PatentRequired,
			&g.PrototypeRequired,
			&g.TechCofounderRequired,
			&g.FullTimeRequired,
			&amount,
			&deadline,
		); err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		g.AmountMax = nullString(amount)
		if deadline.Valid && strings.TrimSpace(deadline.String) != "" {
			// Unparseable legacy dates are reported as unknown.
			if t, err := time.Parse(domain.DateLayout, strings.TrimSpace(deadline.String)); err == nil {
				g.ApplicationDeadline = &t
			}
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (d *DB) FetchVCs(ctx context.Context) ([]domain.VC, error) {
	rows, err := d.Pool.QueryContext(ctx, `
SELECT id, name, description, website, country_based_of
FROM vcs
ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("fetch vcs: %w", err)
	}
	defer rows.Close()

	var out []domain.VC
	for rows.Next() {
		var v domain.VC
		var country sql.NullString
		if err := rows.Scan(&v.ID, &v.Name, &v.Description, &v.Website, &country); err != nil {
			return nil, fmt.Errorf("scan vc: %w", err)
		}
		v.CountryBasedOf = nullString(country)
		out = append(out, v)
	}
	return out, rows.Err()
}

func (d *DB) FetchMentors(ctx context.Context) ([]domain.Mentor, error) {
	rows, err := d.Pool.QueryContext(ctx, `
SELECT id, name, bio, linkedin, rate_tier, languages
FROM mentors
ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("fetch mentors: %w", err)
	}
	defer rows.Close()

	var out []domain.Mentor
	for rows.Next() {
		var m domain.Mentor
		var tier sql.NullString
		var langsJSON string
		if err := rows.Scan(&m.ID, &m.Name, &m.Bio, &m.LinkedIn, &tier, &langsJSON); err != nil {
			return nil, fmt.Errorf("scan mentor: %w", err)
		}
		m.RateTier = nullString(tier)
		if err := json.Unmarshal([]byte(langsJSON), &m.Languages); err != nil {
			return nil, fmt.Errorf("scan mentor %d languages: %w", m.ID, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// FetchTagsForCandidate loads one candidate's tags.
func (d *DB) FetchTagsForCandidate(ctx context.Context, kind domain.Kind, id int64) ([]domain.Tag, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := d.Pool.QueryContext(ctx, d.q(fmt.Sprintf(`
SELECT t.id, t.name, t.category
FROM %s j
JOIN tags t ON t.id = j.tag_id
WHERE j.%s = ?
ORDER BY t.id;`, t.join, t.fk)), id)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %d tags: %w", kind, id, err)
	}
	defer rows.Close()
	return scanTags(rows)
}

// FetchCandidateTags loads the tags of every candidate of kind in one join,
// keyed by candidate id.
func (d *DB) FetchCandidateTags(ctx context.Context, kind domain.Kind) (map[int64][]domain.Tag, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := d.Pool.QueryContext(ctx, fmt.Sprintf(`
SELECT j.%s, t.id, t.name, t.category
FROM %s j
JOIN tags t ON t.id = j.tag_id
ORDER BY j.%s, t.id;`, t.fk, t.join, t.fk))
	if err != nil {
		return nil, fmt.Errorf("fetch %s tags: %w", kind, err)
	}
	defer rows.Close()

	out := map[int64][]domain.Tag{}
	for rows.Next() {
		var owner int64
		var tag domain.Tag
		var cat string
		if err := rows.Scan(&owner, &tag.ID, &tag.Name, &cat); err != nil {
			return nil, err
		}
		tag.Category = domain.Category(cat)
		out[owner] = append(out[owner], tag)
	}
	return out, rows.Err()
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
