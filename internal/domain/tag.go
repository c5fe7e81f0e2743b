package domain

import "strings"

type Category string

const (
	CategoryStage           Category = "STAGE"
	CategoryIndustry        Category = "INDUSTRY"
	CategoryRegion          Category = "REGION"
	CategoryLocation        Category = "LOCATION"
	CategoryRequirement     Category = "REQUIREMENT"
	CategorySocialImpact    Category = "SOCIAL_IMPACT"
	CategorySpecialCategory Category = "SPECIAL_CATEGORY"
	CategoryExpertise       Category = "EXPERTISE"
	CategoryCurrency        Category = "CURRENCY"
	CategoryInvestmentType  Category = "INVESTMENT_TYPE"
)

var knownCategories = map[Category]bool{
	CategoryStage:           true,
	CategoryIndustry:        true,
	CategoryRegion:          true,
	CategoryLocation:        true,
	CategoryRequirement:     true,
	CategorySocialImpact:    true,
	CategorySpecialCategory: true,
	CategoryExpertise:       true,
	CategoryCurrency:        true,
	CategoryInvestmentType:  true,
}

// ParseCategory accepts any casing and returns false for unknown values.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	return c, knownCategories[c]
}

// Tag is immutable reference data; (Name, Category) is unique.
type Tag struct {
	ID       int64    `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Category Category `json:"category" yaml:"category"`
}

// TagNames returns the names in order, duplicates included.
func TagNames(tags []Tag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.Name)
	}
	return out
}
