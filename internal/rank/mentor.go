package rank

import (
	"cmp"
	"strings"

	"fundfinder-engine/internal/config"
	"fundfinder-engine/internal/domain"
	"fundfinder-engine/internal/selection"
)

var mentorIndustryCategories = []domain.Category{domain.CategoryIndustry, domain.CategoryExpertise}

// MentorScorer treats budget as a preference: a matching rate tier earns
// points, a different one is still listed.
type MentorScorer struct {
	Weights config.MentorWeights
}

func (s MentorScorer) Score(mt domain.Mentor, sel selection.MentorSelection) Match {
	var m Match

	if tags := pickByName(mt.Tags, sel.Industries, mentorIndustryCategories...); len(tags) > 0 {
		m.Primary = true
		m.award(s.Weights.Industry, tags, "Expert in %s", domain.TagNames(tags))
	}

	if len(sel.Languages) > 0 {
		want := foldSet(sel.Languages)
		var spoken []string
		for _, l := range mt.Languages {
			if want[fold(l)] {
				spoken = append(spoken, strings.TrimSpace(l))
			}
		}
		if len(spoken) > 0 {
			m.Secondary = true
			m.award(s.Weights.Language, nil, "Speaks %s", spoken)
		}
	}

	if sel.HasBudget() && mt.RateTier != nil && strings.TrimSpace(*mt.RateTier) == sel.Budget {
		m.award(s.Weights.Budget, nil, "Matches your budget (%s)", []string{sel.Budget})
	}
	return m
}

// CheaperFirst orders mentors by rate tier, unset tiers last.
func CheaperFirst(a, b domain.Mentor) int {
	return cmp.Compare(domain.RateTierOrdinal(a.RateTier), domain.RateTierOrdinal(b.RateTier))
}
