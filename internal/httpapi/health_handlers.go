package httpapi

import (
	"context"
	"net/http"
	"time"

	"fundfinder-engine/internal/events"
)

type HealthHandler struct {
	DB  Pinger
	Hub *events.Hub
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbOK := h.DB.PingContext(ctx) == nil
	subs, dropped := h.Hub.Stats()

	status := http.StatusOK
	if !dbOK {
		status = http.StatusServiceUnavailable
	}
	WriteJSON(w, status, map[string]any{
		"ok":   dbOK,
		"db":   dbOK,
		"time": time.Now().UTC().Format(time.RFC3339),
		"events": map[string]int{
			"subscribers": subs,
			"dropped":     dropped,
		},
	})
}
