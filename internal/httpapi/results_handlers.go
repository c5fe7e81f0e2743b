package httpapi

import (
	"log/slog"
	"net/http"

	"fundfinder-engine/internal/domain"
	"fundfinder-engine/internal/match"
	"fundfinder-engine/internal/rank"
	"fundfinder-engine/internal/selection"
)

type ResultsHandler struct {
	Matcher *match.Service
}

type resultsResponse[C any, S any] struct {
	Kind                   domain.Kind      `json:"kind"`
	Selection              S                `json:"selection"`
	Count                  int              `json:"count"`
	Excluded               int              `json:"excluded"`
	MissingRequirementTags []string         `json:"missing_requirement_tags,omitempty"`
	Results                []rank.Scored[C] `json:"results"`
}

func respond[C, S any](w http.ResponseWriter, kind domain.Kind, sel S, out match.Outcome[C]) {
	writeJSON(w, resultsResponse[C, S]{
		Kind:                   kind,
		Selection:              sel,
		Count:                  len(out.Results),
		Excluded:               out.Excluded,
		MissingRequirementTags: out.MissingRequirementTags,
		Results:                out.Results,
	})
}

func (h ResultsHandler) Grants(w http.ResponseWriter, r *http.Request) {
	sel := selection.ParseGrant(r.URL.Query())
	out, err := h.Matcher.Grants(r.Context(), sel)
	if err != nil {
		writeFetchError(w, r, err)
		return
	}
	if len(out.MissingRequirementTags) > 0 {
		// Grants needing these were excluded; the tag table needs fixing.
		slog.Warn("requirement tags missing from store",
			"request_id", RequestIDFrom(r.Context()),
			"tags", out.MissingRequirementTags,
		)
	}
	respond(w, domain.KindGrant, sel, out)
}

func (h ResultsHandler) VCs(w http.ResponseWriter, r *http.Request) {
	sel := selection.ParseVC(r.URL.Query())
	out, err := h.Matcher.VCs(r.Context(), sel)
	if err != nil {
		writeFetchError(w, r, err)
		return
	}
	respond(w, domain.KindVC, sel, out)
}

func (h ResultsHandler) Mentors(w http.ResponseWriter, r *http.Request) {
	sel := selection.ParseMentor(r.URL.Query())
	out, err := h.Matcher.Mentors(r.Context(), sel)
	if err != nil {
		writeFetchError(w, r, err)
		return
	}
	respond(w, domain.KindMentor, sel, out)
}
