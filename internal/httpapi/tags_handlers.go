package httpapi

import (
	"fmt"
	"net/http"

	"fundfinder-engine/internal/domain"
	"fundfinder-engine/internal/match"
)

type TagsHandler struct {
	Tags TagReader
}

// List serves the questionnaire options, optionally for one ?category=.
func (h TagsHandler) List(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("category")

	var (
		tags []domain.Tag
		err  error
	)
	if raw == "" {
		tags, err = h.Tags.FetchAllTags(r.Context())
	} else {
		cat, ok := domain.ParseCategory(raw)
		if !ok {
			WriteError(w, r, http.StatusBadRequest, "bad_category", fmt.Sprintf("unknown category %q", raw))
			return
		}
		tags, err = h.Tags.FetchTagsByCategory(r.Context(), cat)
	}
	if err != nil {
		writeFetchError(w, r, fmt.Errorf("%w: tags: %w", match.ErrRepositoryFetch, err))
		return
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	writeJSON(w, map[string]any{"tags": tags})
}
