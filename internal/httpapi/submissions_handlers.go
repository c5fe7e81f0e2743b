package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fundfinder-engine/internal/domain"
	"fundfinder-engine/internal/events"
	"fundfinder-engine/internal/store"
	"fundfinder-engine/internal/textutil"
)

const (
	maxSubmissionBytes = 64 << 10
	maxFieldRunes      = 4000
)

type SubmissionsHandler struct {
	Store SubmissionStore
	Hub   *events.Hub
}

// CreateByPath records a community contribution for /submissions/{kind}.
// String fields are stripped of markup; the entry waits for moderation.
func (h SubmissionsHandler) CreateByPath(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseKind(strings.TrimPrefix(r.URL.Path, "/submissions/"))
	if err != nil {
		WriteError(w, r, http.StatusNotFound, "unknown_kind", err.Error())
		return
	}

	var payload map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSubmissionBytes))
	if err := dec.Decode(&payload); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	if dec.More() {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: trailing data")
		return
	}

	payload = sanitizePayload(payload)
	name, _ := payload["name"].(string)
	if name == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_name", "name is required")
		return
	}
	if msg := validateSubmission(kind, payload); msg != "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_submission", msg)
		return
	}

	sub, err := h.Store.InsertSubmission(r.Context(), store.Submission{Kind: kind, Name: name, Payload: payload})
	if err != nil {
		writeFetchError(w, r, err)
		return
	}

	h.Hub.Emit(RequestIDFrom(r.Context()), events.TypeSubmissionCreated, map[string]any{
		"id": sub.ID, "kind": sub.Kind,
	})
	WriteJSON(w, http.StatusCreated, sub)
}

func (h SubmissionsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	subs, err := h.Store.ListSubmissions(r.Context(), q.Get("status"), limit)
	if err != nil {
		writeFetchError(w, r, err)
		return
	}
	if subs == nil {
		subs = []store.Submission{}
	}
	writeJSON(w, map[string]any{"submissions": subs})
}

func sanitizePayload(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		switch x := v.(type) {
		case string:
			out[k] = textutil.Truncate(textutil.PlainText(x), maxFieldRunes)
		case []any:
			var xs []any
			for _, e := range x {
				if s, ok := e.(string); ok {
					s = textutil.CleanText(textutil.PlainText(s))
					if s == "" {
						continue
					}
					xs = append(xs, s)
					continue
				}
				xs = append(xs, e)
			}
			out[k] = xs
		default:
			out[k] = v
		}
	}
	return out
}

func validateSubmission(kind domain.Kind, p map[string]any) string {
	switch kind {
	case domain.KindGrant:
		if s, ok := p["application_deadline"].(string); ok && s != "" {
			if _, err := time.Parse(domain.DateLayout, s); err != nil {
				return "application_deadline must be YYYY-MM-DD"
			}
		}
	case domain.KindMentor:
		if s, ok := p["rate_tier"].(string); ok && s != "" && !domain.IsRateTier(s) {
			return "rate_tier must be one of Free, <₹1K, ₹1K-3K, ₹3K-5K, ₹5K+"
		}
	}
	return ""
}
