package rank

import (
	"slices"

	"fundfinder-engine/internal/config"
	"fundfinder-engine/internal/domain"
)

// Requirement ties a mandatory grant flag to the tag that satisfies it.
type Requirement struct {
	TagName  string
	Required func(domain.Grant) bool
}

func GrantRequirements(rt config.RequirementTags) []Requirement {
	return []Requirement{
		{rt.DPIIT, func(g domain.Grant) bool { return g.DPIITRequired }},
		{rt.Patent, func(g domain.Grant) bool { return g.PatentRequired }},
		{rt.Prototype, func(g domain.Grant) bool { return g.PrototypeRequired }},
		{rt.TechCofounder, func(g domain.Grant) bool { return g.TechCofounderRequired }},
		{rt.FullTime, func(g domain.Grant) bool { return g.FullTimeRequired }},
	}
}

// FilterGrants drops every grant with a mandatory requirement the user did
// not select. A requirement whose tag is missing from reqTags can never be
// satisfied; its name is returned in missing so the caller can report the
// data problem. Input order is preserved.
func FilterGrants(grants []domain.Grant, selected []int64, reqTags []domain.Tag, reqs []Requirement) (kept []domain.Grant, missing []string) {
	byName := make(map[string]int64, len(reqTags))
	for _, t := range reqTags {
		if t.Category == domain.CategoryRequirement {
			byName[t.Name] = t.ID
		}
	}

	kept = make([]domain.Grant, 0, len(grants))
	for _, g := range grants {
		ok := true
		for _, r := range reqs {
			if !r.Required(g) {
				continue
			}
			id, found := byName[r.TagName]
			if !found {
				if !slices.Contains(missing, r.TagName) {
					missing = append(missing, r.TagName)
				}
				ok = false
				continue
			}
			if !slices.Contains(selected, id) {
				ok = false
			}
		}
		if ok {
			kept = append(kept, g)
		}
	}
	return kept, missing
}
