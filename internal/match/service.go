// Package match runs one results request end to end: read candidates,
// apply the grant hard filter, load tags, score, tier and rank.
package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fundfinder-engine/internal/config"
	"fundfinder-engine/internal/domain"
	"fundfinder-engine/internal/rank"
	"fundfinder-engine/internal/selection"
)

// ErrRepositoryFetch wraps every store failure. Callers treat it as
// terminal for the request; there are no partial results.
var ErrRepositoryFetch = errors.New("repository fetch failed")

// Repository is the read side of the directory store.
type Repository interface {
	FetchAllTags(ctx context.Context) ([]domain.Tag, error)
	FetchGrants(ctx context.Context) ([]domain.Grant, error)
	FetchVCs(ctx context.Context) ([]domain.VC, error)
	FetchMentors(ctx context.Context) ([]domain.Mentor, error)
	FetchTagsForCandidate(ctx context.Context, kind domain.Kind, id int64) ([]domain.Tag, error)
	FetchCandidateTags(ctx context.Context, kind domain.Kind) (map[int64][]domain.Tag, error)
}

// Outcome is the ranked list plus what the hard filter did.
type Outcome[C any] struct {
	Results  []rank.Scored[C] `json:"results"`
	Excluded int              `json:"excluded"`
	// MissingRequirementTags names requirement tags absent from the store;
	// grants needing them were excluded.
	MissingRequirementTags []string `json:"missing_requirement_tags,omitempty"`
}

type Service struct {
	Repo Repository
	// Matching returns the live matching config, so reloads apply to the
	// next request.
	Matching func() config.Matching
	Log      *slog.Logger
}

func NewService(repo Repository, matching func() config.Matching, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{Repo: repo, Matching: matching, Log: log}
}

func fetchErr(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrRepositoryFetch, what, err)
}

func (s *Service) Grants(ctx context.Context, sel selection.GrantSelection) (Outcome[domain.Grant], error) {
	start := time.Now()
	cfg := s.Matching()
	var out Outcome[domain.Grant]

	grants, err := s.Repo.FetchGrants(ctx)
	if err != nil {
		return out, fetchErr("grants", err)
	}
	allTags, err := s.Repo.FetchAllTags(ctx)
	if err != nil {
		return out, fetchErr("tags", err)
	}

	kept, missing := rank.FilterGrants(grants, sel.Requirement, allTags, rank.GrantRequirements(cfg.RequirementTags))
	out.Excluded = len(grants) - len(kept)
	out.MissingRequirementTags = missing

	err = loadTags(ctx, s.Repo, cfg, domain.KindGrant, kept,
		func(g *domain.Grant) int64 { return g.ID },
		func(g *domain.Grant, t []domain.Tag) { g.Tags = t },
	)
	if err != nil {
		return out, err
	}

	scored := rank.Evaluate(kept, sel, rank.GrantScorer{Weights: cfg.Weights.Grant}, cfg.Labels.Grant)
	rank.Sort(scored, nil)
	out.Results = scored

	s.Log.Debug("grants ranked", "candidates", len(grants), "excluded", out.Excluded, "dur_ms", time.Since(start).Milliseconds())
	return out, nil
}

func (s *Service) VCs(ctx context.Context, sel selection.VCSelection) (Outcome[domain.VC], error) {
	start := time.Now()
	cfg := s.Matching()
	var out Outcome[domain.VC]

	vcs, err := s.Repo.FetchVCs(ctx)
	if err != nil {
		return out, fetchErr("vcs", err)
	}
	err = loadTags(ctx, s.Repo, cfg, domain.KindVC, vcs,
		func(v *domain.VC) int64 { return v.ID },
		func(v *domain.VC, t []domain.Tag) { v.Tags = t },
	)
	if err != nil {
		return out, err
	}

	scorer := rank.VCScorer{Weights: cfg.Weights.VC, SectorAgnosticMarker: cfg.SectorAgnosticMarker}
	scored := rank.Evaluate(vcs, sel, scorer, cfg.Labels.VC)
	rank.Sort(scored, nil)
	out.Results = scored

	s.Log.Debug("vcs ranked", "candidates", len(vcs), "dur_ms", time.Since(start).Milliseconds())
	return out, nil
}

func (s *Service) Mentors(ctx context.Context, sel selection.MentorSelection) (Outcome[domain.Mentor], error) {
	start := time.Now()
	cfg := s.Matching()
	var out Outcome[domain.Mentor]

	mentors, err := s.Repo.FetchMentors(ctx)
	if err != nil {
		return out, fetchErr("mentors", err)
	}
	err = loadTags(ctx, s.Repo, cfg, domain.KindMentor, mentors,
		func(m *domain.Mentor) int64 { return m.ID },
		func(m *domain.Mentor, t []domain.Tag) { m.Tags = t },
	)
	if err != nil {
		return out, err
	}

	scored := rank.Evaluate(mentors, sel, rank.MentorScorer{Weights: cfg.Weights.Mentor}, cfg.Labels.Mentor)
	rank.Sort(scored, rank.CheaperFirst)
	out.Results = scored

	s.Log.Debug("mentors ranked", "candidates", len(mentors), "dur_ms", time.Since(start).Milliseconds())
	return out, nil
}
