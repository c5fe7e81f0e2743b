package rank

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"fundfinder-engine/internal/domain"
)

// Scorer scores one candidate against one kind-specific selection.
type Scorer[C, S any] interface {
	Score(c C, sel S) Match
}

// Match is the raw scorer output before tiering. Primary and Secondary
// record which category groups matched; they alone decide the tier.
type Match struct {
	Score     int
	Tags      []domain.Tag
	Reasons   []string
	Primary   bool
	Secondary bool
}

// award adds a category's weight once, however many of its tags matched.
// Zero-weight categories still count as matched for tiering but add
// neither points nor a reason.
func (m *Match) award(weight int, tags []domain.Tag, reasonFmt string, names []string) {
	if weight <= 0 {
		return
	}
	m.Score += weight
	m.Tags = append(m.Tags, tags...)
	m.Reasons = append(m.Reasons, fmt.Sprintf(reasonFmt, strings.Join(names, ", ")))
}

// pick returns the candidate tags that were selected by id and belong to
// one of cats.
func pick(tags []domain.Tag, ids []int64, cats ...domain.Category) []domain.Tag {
	if len(ids) == 0 {
		return nil
	}
	var out []domain.Tag
	for _, t := range tags {
		if slices.Contains(cats, t.Category) && slices.Contains(ids, t.ID) {
			out = append(out, t)
		}
	}
	return out
}

// pickByName is pick for selections that carry tag names instead of ids.
func pickByName(tags []domain.Tag, names []string, cats ...domain.Category) []domain.Tag {
	if len(names) == 0 {
		return nil
	}
	want := foldSet(names)
	var out []domain.Tag
	for _, t := range tags {
		if slices.Contains(cats, t.Category) && want[fold(t.Name)] {
			out = append(out, t)
		}
	}
	return out
}

func fold(s string) string {
	// Casers keep state, so one per call.
	return cases.Fold().String(strings.TrimSpace(s))
}

func foldSet(xs []string) map[string]bool {
	out := make(map[string]bool, len(xs))
	for _, x := range xs {
		out[fold(x)] = true
	}
	return out
}
