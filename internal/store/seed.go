package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"fundfinder-engine/internal/domain"
)

type TagRef struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
}

type SeedGrant struct {
	Name                  string   `yaml:"name"`
	Provider              string   `yaml:"provider"`
	Description           string   `yaml:"description"`
	Website               string   `yaml:"website"`
	DPIITRequired         bool     `yaml:"dpiit_required"`
	PatentRequired        bool     `yaml:"patent_required"`
	PrototypeRequired     bool     `yaml:"prototype_required"`
	TechCofounderRequired bool     `yaml:"tech_cofounder_required"`
	FullTimeRequired      bool     `yaml:"full_time_required"`
	AmountMax             *string  `yaml:"amount_max"`
	ApplicationDeadline   *string  `yaml:"application_deadline"`
	Tags                  []TagRef `yaml:"tags"`
}

type SeedVC struct {
	Name           string   `yaml:"name"`
	Description    string   `yaml:"description"`
	Website        string   `yaml:"website"`
	CountryBasedOf *string  `yaml:"country_based_of"`
	Tags           []TagRef `yaml:"tags"`
}

type SeedMentor struct {
	Name      string   `yaml:"name"`
	Bio       string   `yaml:"bio"`
	LinkedIn  string   `yaml:"linkedin"`
	RateTier  *string  `yaml:"rate_tier"`
	Languages []string `yaml:"languages"`
	Tags      []TagRef `yaml:"tags"`
}

// SeedFile is the on-disk reference data: tags plus the three directories.
type SeedFile struct {
	Tags    []TagRef     `yaml:"tags"`
	Grants  []SeedGrant  `yaml:"grants"`
	VCs     []SeedVC     `yaml:"vcs"`
	Mentors []SeedMentor `yaml:"mentors"`
}

type SeedStats struct {
	Tags    int `json:"tags"`
	Grants  int `json:"grants"`
	VCs     int `json:"vcs"`
	Mentors int `json:"mentors"`
}

func LoadSeedFile(path string) (SeedFile, error) {
	var sf SeedFile
	b, err := os.ReadFile(path)
	if err != nil {
		return sf, err
	}
	err = yaml.Unmarshal(b, &sf)
	return sf, err
}

// ImportSeed upserts the seed in one transaction. Candidates are keyed by
// name; re-importing replaces their attributes and tag sets.
func (d *DB) ImportSeed(ctx context.Context, sf SeedFile) (SeedStats, error) {
	var st SeedStats

	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return st, err
	}
	defer func() { _ = tx.Rollback() }()

	tagIDs := map[TagRef]int64{}
	resolve := func(refs []TagRef) ([]int64, error) {
		ids := make([]int64, 0, len(refs))
		for _, r := range refs {
			cat, ok := domain.ParseCategory(r.Category)
			if !ok {
				return nil, fmt.Errorf("tag %q: unknown category %q", r.Name, r.Category)
			}
			key := TagRef{Name: strings.TrimSpace(r.Name), Category: string(cat)}
			if id, ok := tagIDs[key]; ok {
				ids = append(ids, id)
				continue
			}
			id, err := ensureTag(ctx, tx, d.dialect, key.Name, cat)
			if err != nil {
				return nil, err
			}
			tagIDs[key] = id
			ids = append(ids, id)
		}
		return ids, nil
	}

	if _, err := resolve(sf.Tags); err != nil {
		return st, err
	}

	for _, g := range sf.Grants {
		if g.ApplicationDeadline != nil {
			if _, err := time.Parse(domain.DateLayout, *g.ApplicationDeadline); err != nil {
				return st, fmt.Errorf("grant %q: application_deadline: %w", g.Name, err)
			}
		}
		var id int64
		err := tx.QueryRowContext(ctx, d.q(`
INSERT INTO grants (name, provider, description, website,
  dpiit_required, patent_required, prototype_required,
  tech_cofounder_required, full_time_required, amount_max, application_deadline)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (name) DO UPDATE SET
  provider = excluded.provider,
  description = excluded.description,
  website = excluded.website,
  dpiit_required = excluded.dpiit_required,
  patent_required = excluded.patent_required,
  prototype_required = excluded.prototype_required,
  tech_cofounder_required = excluded.tech_cofounder_required,
  full_time_required = excluded.full_time_required,
  amount_max = excluded.amount_max,
  application_deadline = excluded.application_deadline
RETURNING id;`),
			g.Name, g.Provider, g.Description, g.Website,
			g.DPIITRequired, g.PatentRequired, g.PrototypeRequired,
			g.TechCofounderRequired, g.FullTimeRequired, g.AmountMax, g.ApplicationDeadline,
		).Scan(&id)
		if err != nil {
			return st, fmt.Errorf("upsert grant %q: %w", g.Name, err)
		}
		if err := d.replaceTags(ctx, tx, domain.KindGrant, id, g.Tags, resolve); err != nil {
			return st, err
		}
		st.Grants++
	}

	for _, v := range sf.VCs {
		var id int64
		err := tx.QueryRowContext(ctx, d.q(`
INSERT INTO vcs (name, description, website, country_based_of)
VALUES (?, ?, ?, ?)
ON CONFLICT (name) DO UPDATE SET
  description = excluded.description,
  website = excluded.website,
  country_based_of = excluded.country_based_of
RETURNING id;`),
			v.Name, v.Description, v.Website, v.CountryBasedOf,
		).Scan(&id)
		if err != nil {
			return st, fmt.Errorf("upsert vc %q: %w", v.Name, err)
		}
		if err := d.replaceTags(ctx, tx, domain.KindVC, id, v.Tags, resolve); err != nil {
			return st, err
		}
		st.VCs++
	}

	for _, m := range sf.Mentors {
		if m.RateTier != nil && !domain.IsRateTier(*m.RateTier) {
			return st, fmt.Errorf("mentor %q: unknown rate_tier %q", m.Name, *m.RateTier)
		}
		langs := m.Languages
		if langs == nil {
			langs = []string{}
		}
		langsB, _ := json.Marshal(langs)
		var id int64
		err := tx.QueryRowContext(ctx, d.q(`
INSERT INTO mentors (name, bio, linkedin, rate_tier, languages)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (name) DO UPDATE SET
  bio = excluded.bio,
  linkedin = excluded.linkedin,
  rate_tier = excluded.rate_tier,
  languages = excluded.languages
RETURNING id;`),
			m.Name, m.Bio, m.LinkedIn, m.RateTier, string(langsB),
		).Scan(&id)
		if err != nil {
			return st, fmt.Errorf("upsert mentor %q: %w", m.Name, err)
		}
		if err := d.replaceTags(ctx, tx, domain.KindMentor, id, m.Tags, resolve); err != nil {
			return st, err
		}
		st.Mentors++
	}

	st.Tags = len(tagIDs)
	return st, tx.Commit()
}

func (d *DB) replaceTags(ctx context.Context, tx *sql.Tx, kind domain.Kind, id int64, refs []TagRef, resolve func([]TagRef) ([]int64, error)) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	ids, err := resolve(refs)
	if err != nil {
		return fmt.Errorf("%s %d: %w", kind, id, err)
	}
	if _, err := tx.ExecContext(ctx, d.q(fmt.Sprintf(`DELETE FROM %s WHERE %s = ?;`, t.join, t.fk)), id); err != nil {
		return fmt.Errorf("clear %s %d tags: %w", kind, id, err)
	}
	for _, tagID := range ids {
		if _, err := tx.ExecContext(ctx, d.q(fmt.Sprintf(`
INSERT INTO %s (%s, tag_id) VALUES (?, ?)
ON CONFLICT DO NOTHING;`, t.join, t.fk)), id, tagID); err != nil {
			return fmt.Errorf("link %s %d tag %d: %w", kind, id, tagID, err)
		}
	}
	return nil
}
