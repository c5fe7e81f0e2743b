package rank

import (
	"fundfinder-engine/internal/config"
	"fundfinder-engine/internal/domain"
	"fundfinder-engine/internal/selection"
)

var locationCategories = []domain.Category{domain.CategoryRegion, domain.CategoryLocation}

type GrantScorer struct {
	Weights config.GrantWeights
}

// Score evaluates stage, industry, location and social impact in that order.
// Stage sets Primary and industry sets Secondary.
func (s GrantScorer) Score(g domain.Grant, sel selection.GrantSelection) Match {
	var m Match

	if tags := pick(g.Tags, sel.Stage, domain.CategoryStage); len(tags) > 0 {
		m.Primary = true
		m.award(s.Weights.Stage, tags, "Suitable for %s stage", domain.TagNames(tags))
	}
	if tags := pick(g.Tags, sel.Industry, domain.CategoryIndustry); len(tags) > 0 {
		m.Secondary = true
		m.award(s.Weights.Industry, tags, "Targets %s industry", domain.TagNames(tags))
	}
	if tags := pick(g.Tags, sel.Location, locationCategories...); len(tags) > 0 {
		m.award(s.Weights.Location, tags, "Available in %s", domain.TagNames(tags))
	}
	if tags := pick(g.Tags, sel.SocialImpact, domain.CategorySocialImpact); len(tags) > 0 {
		m.award(s.Weights.SocialImpact, tags, "Supports %s", domain.TagNames(tags))
	}
	return m
}
