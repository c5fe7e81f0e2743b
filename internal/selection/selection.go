// Package selection decodes questionnaire query strings into typed
// per-kind selections. Parsing is lenient: bad tokens are dropped and
// missing keys become empty lists, so it never fails.
package selection

import (
	"net/url"
	"strconv"
	"strings"
)

// BudgetAny is the questionnaire value meaning "no budget preference".
const BudgetAny = "Any"

type GrantSelection struct {
	Stage        []int64 `json:"stage"`
	Industry     []int64 `json:"industry"`
	Location     []int64 `json:"location"`
	SocialImpact []int64 `json:"social_impact"`
	Requirement  []int64 `json:"requirement"`

	Extra map[string][]string `json:"extra,omitempty"`
}

type VCSelection struct {
	Stage          []int64 `json:"stage"`
	Industry       []int64 `json:"industry"`
	InvestmentType []int64 `json:"investment_type"`
	// Location holds opaque region identifiers, not tag ids.
	Location []string `json:"location"`

	Extra map[string][]string `json:"extra,omitempty"`
}

type MentorSelection struct {
	Industries []string `json:"industries"`
	Languages  []string `json:"languages"`
	// Budget is a rate tier; empty means no preference.
	Budget string `json:"budget"`

	Extra map[string][]string `json:"extra,omitempty"`
}

func (s MentorSelection) HasBudget() bool { return s.Budget != "" }

// ParseIDs splits on commas and keeps the tokens that parse as integers.
func ParseIDs(raw string) []int64 {
	out := []int64{}
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		n, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// ParseStrings splits on commas, trimming and dropping empty tokens.
func ParseStrings(raw string) []string {
	out := []string{}
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// value joins repeated keys (?stage=1&stage=2) into one comma list.
func value(q url.Values, key string) string {
	return strings.Join(q[key], ",")
}

func extra(q url.Values, known ...string) map[string][]string {
	skip := make(map[string]bool, len(known))
	for _, k := range known {
		skip[k] = true
	}
	var out map[string][]string
	for k := range q {
		if skip[k] {
			continue
		}
		if out == nil {
			out = map[string][]string{}
		}
		out[k] = ParseStrings(value(q, k))
	}
	return out
}

func ParseGrant(q url.Values) GrantSelection {
	return GrantSelection{
		Stage:        ParseIDs(value(q, "stage")),
		Industry:     ParseIDs(value(q, "industry")),
		Location:     ParseIDs(value(q, "location")),
		SocialImpact: ParseIDs(value(q, "social_impact")),
		Requirement:  ParseIDs(value(q, "requirement")),
		Extra:        extra(q, "stage", "industry", "location", "social_impact", "requirement"),
	}
}

func ParseVC(q url.Values) VCSelection {
	return VCSelection{
		Stage:          ParseIDs(value(q, "stage")),
		Industry:       ParseIDs(value(q, "industry")),
		InvestmentType: ParseIDs(value(q, "investment_type")),
		Location:       ParseStrings(value(q, "location")),
		Extra:          extra(q, "stage", "industry", "investment_type", "location"),
	}
}

func ParseMentor(q url.Values) MentorSelection {
	budget := strings.TrimSpace(q.Get("budget"))
	if strings.EqualFold(budget, BudgetAny) {
		budget = ""
	}
	return MentorSelection{
		Industries: ParseStrings(value(q, "industries")),
		Languages:  ParseStrings(value(q, "languages")),
		Budget:     budget,
		Extra:      extra(q, "industries", "languages", "budget"),
	}
}

// ParseQuery accepts a raw query string, with or without the leading "?".
// Undecodable input yields whatever url.ParseQuery salvaged.
func ParseQuery(raw string) url.Values {
	q, _ := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if q == nil {
		q = url.Values{}
	}
	return q
}
