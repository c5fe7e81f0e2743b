package rank

import (
	"strings"

	"fundfinder-engine/internal/config"
	"fundfinder-engine/internal/domain"
	"fundfinder-engine/internal/selection"
)

type VCScorer struct {
	Weights config.VCWeights
	// SectorAgnosticMarker is matched as a case-insensitive substring of
	// tag names.
	SectorAgnosticMarker string
}

func (s VCScorer) Score(v domain.VC, sel selection.VCSelection) Match {
	var m Match

	if tags := pick(v.Tags, sel.Stage, domain.CategoryStage); len(tags) > 0 {
		m.Primary = true
		m.award(s.Weights.Stage, tags, "Invests in %s stage", domain.TagNames(tags))
	}

	// A sector-agnostic VC matches any industry selection and replaces the
	// specific-industry branch; it never scores both.
	if len(sel.Industry) > 0 {
		if agnostic := s.sectorAgnosticTags(v.Tags); len(agnostic) > 0 {
			m.Secondary = true
			m.award(s.Weights.Industry, agnostic, "Invests across all industries (%s)", domain.TagNames(agnostic))
		} else if tags := pick(v.Tags, sel.Industry, domain.CategoryIndustry); len(tags) > 0 {
			m.Secondary = true
			m.award(s.Weights.Industry, tags, "Focuses on %s industry", domain.TagNames(tags))
		}
	}

	if tags := pick(v.Tags, sel.InvestmentType, domain.CategoryInvestmentType); len(tags) > 0 {
		m.award(s.Weights.InvestmentType, tags, "Offers %s", domain.TagNames(tags))
	}

	if v.CountryBasedOf != nil && len(sel.Location) > 0 {
		if foldSet(sel.Location)[fold(*v.CountryBasedOf)] {
			m.award(s.Weights.Location, nil, "Based in %s", []string{*v.CountryBasedOf})
		}
	}
	return m
}

func (s VCScorer) sectorAgnosticTags(tags []domain.Tag) []domain.Tag {
	marker := fold(s.SectorAgnosticMarker)
	var out []domain.Tag
	for _, t := range tags {
		if strings.Contains(fold(t.Name), marker) {
			out = append(out, t)
		}
	}
	return out
}
