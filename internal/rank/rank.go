package rank

import (
	"cmp"
	"slices"

	"fundfinder-engine/internal/config"
	"fundfinder-engine/internal/domain"
)

type Scored[C any] struct {
	Candidate    C            `json:"candidate"`
	MatchScore   int          `json:"match_score"`
	MatchingTags []domain.Tag `json:"matching_tags"`
	Tier         int          `json:"tier"`
	TierLabel    string       `json:"tier_label"`
	MatchReasons []string     `json:"match_reasons"`
}

// Tier maps the matched flags to 1..4. Score plays no part.
func Tier(primary, secondary bool) int {
	switch {
	case primary && secondary:
		return 1
	case primary:
		return 2
	case secondary:
		return 3
	default:
		return 4
	}
}

func Label(tier int, l config.TierLabels) string {
	switch tier {
	case 1:
		return l.Tier1
	case 2:
		return l.Tier2
	case 3:
		return l.Tier3
	default:
		return l.Tier4
	}
}

// Evaluate scores and tiers every candidate; nothing is dropped. The result
// is in input order until Sort is applied.
func Evaluate[C, S any](cands []C, sel S, s Scorer[C, S], labels config.TierLabels) []Scored[C] {
	out := make([]Scored[C], 0, len(cands))
	for _, c := range cands {
		m := s.Score(c, sel)
		tier := Tier(m.Primary, m.Secondary)
		sc := Scored[C]{
			Candidate:    c,
			MatchScore:   m.Score,
			MatchingTags: m.Tags,
			Tier:         tier,
			TierLabel:    Label(tier, labels),
			MatchReasons: m.Reasons,
		}
		if sc.MatchingTags == nil {
			sc.MatchingTags = []domain.Tag{}
		}
		if sc.MatchReasons == nil {
			sc.MatchReasons = []string{}
		}
		out = append(out, sc)
	}
	return out
}

// Sort orders by tier ascending, then score descending, then tie (if any).
// The sort is stable: remaining ties keep input order.
func Sort[C any](items []Scored[C], tie func(a, b C) int) {
	slices.SortStableFunc(items, func(a, b Scored[C]) int {
		if c := cmp.Compare(a.Tier, b.Tier); c != 0 {
			return c
		}
		if c := cmp.Compare(b.MatchScore, a.MatchScore); c != 0 {
			return c
		}
		if tie != nil {
			return tie(a.Candidate, b.Candidate)
		}
		return 0
	})
}
