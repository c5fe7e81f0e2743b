package domain

import (
	"fmt"
	"strings"
	"time"
)

type Kind string

const (
	KindGrant  Kind = "grant"
	KindVC     Kind = "vc"
	KindMentor Kind = "mentor"
)

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "grant", "grants":
		return KindGrant, nil
	case "vc", "vcs":
		return KindVC, nil
	case "mentor", "mentors":
		return KindMentor, nil
	}
	return "", fmt.Errorf("unknown candidate kind %q", s)
}

type Grant struct {
	ID                    int64      `json:"id"`
	Name                  string     `json:"name"`
	Provider              string     `json:"provider"`
	Description           string     `json:"description"`
	Website               string     `json:"website"`
	DPIITRequired         bool       `json:"dpiit_required"`
	PatentRequired        bool       `json:"patent_required"`
	PrototypeRequired     bool       `json:"prototype_required"`
	TechCofounderRequired bool       `json:"tech_cofounder_required"`
	FullTimeRequired      bool       `json:"full_time_required"`
	AmountMax             *string    `json:"amount_max"`
	ApplicationDeadline   *time.Time `json:"application_deadline"`
	Tags                  []Tag      `json:"tags"`
}

type VC struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Website        string  `json:"website"`
	CountryBasedOf *string `json:"country_based_of"`
	Tags           []Tag   `json:"tags"`
}

type Mentor struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Bio       string   `json:"bio"`
	LinkedIn  string   `json:"linkedin"`
	RateTier  *string  `json:"rate_tier"`
	Languages []string `json:"languages"`
	Tags      []Tag    `json:"tags"`
}

// Rate tiers in ascending price order.
const (
	RateFree    = "Free"
	RateUnder1K = "<₹1K"
	Rate1KTo3K  = "₹1K-3K"
	Rate3KTo5K  = "₹3K-5K"
	Rate5KPlus  = "₹5K+"

	rateTierUnset = 5
)

// DateLayout is the storage and wire format of grant deadlines.
const DateLayout = "2006-01-02"

var rateTierOrder = map[string]int{
	RateFree:    0,
	RateUnder1K: 1,
	Rate1KTo3K:  2,
	Rate3KTo5K:  3,
	Rate5KPlus:  4,
}

// RateTierOrdinal ranks cheaper tiers first; nil or unknown tiers sort last.
func RateTierOrdinal(tier *string) int {
	if tier == nil {
		return rateTierUnset
	}
	if o, ok := rateTierOrder[strings.TrimSpace(*tier)]; ok {
		return o
	}
	return rateTierUnset
}

func IsRateTier(s string) bool {
	_, ok := rateTierOrder[s]
	return ok
}
