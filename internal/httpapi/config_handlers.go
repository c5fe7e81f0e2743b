package httpapi

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"path/filepath"
	"sync/atomic"

	"fundfinder-engine/internal/config"
	"fundfinder-engine/internal/events"
)

const redactedDSN = "********"

type ConfigHandler struct {
	CfgVal      *atomic.Value // stores config.Config
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
	// Apply makes a reloaded config live.
	Apply func(config.Config)
	Hub   *events.Hub
}

// redacted hides the database DSN, which may carry credentials.
func redacted(c config.Config) config.Config {
	if c.Database.DSN != "" {
		c.Database.DSN = redactedDSN
	}
	return c
}

func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	cur := h.CfgVal.Load().(config.Config)
	writeJSON(w, redacted(cur))
}

func (h ConfigHandler) Put(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var incoming config.Config
	if err := dec.Decode(&incoming); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	if dec.More() {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: trailing data")
		return
	}

	cur := h.CfgVal.Load().(config.Config)
	if incoming.Database.DSN == redactedDSN {
		incoming.Database.DSN = cur.Database.DSN
	}

	normalized, vr := config.NormalizeAndValidate(incoming)
	if !vr.OK() {
		// Return structured errors so the UI can show them nicely
		WriteJSON(w, http.StatusBadRequest, vr)
		return
	}

	// Env-owned values stay out of the file.
	onDisk, err := config.LoadFile(h.UserCfgPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		WriteError(w, r, http.StatusInternalServerError, "read_failed", "read config file: "+err.Error())
		return
	}
	if err := config.SaveAtomic(h.UserCfgPath, config.FileLayer(normalized, onDisk)); err != nil {
		WriteError(w, r, http.StatusBadRequest, "save_failed", err.Error())
		return
	}

	saved, err := h.LoadCfg()
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "reload_failed", "saved but reload failed: "+err.Error())
		return
	}
	saved, vr = config.NormalizeAndValidate(saved)
	if !vr.OK() {
		WriteJSON(w, http.StatusInternalServerError, vr)
		return
	}
	h.Apply(saved)
	h.Hub.Emit(RequestIDFrom(r.Context()), events.TypeConfigReloaded, map[string]any{"source": "api"})
	writeJSON(w, redacted(saved))
}

func (h ConfigHandler) Path(w http.ResponseWriter, r *http.Request) {
	abs, _ := filepath.Abs(h.UserCfgPath)
	writeJSON(w, map[string]any{"path": abs})
}

func (h ConfigHandler) Validate(w http.ResponseWriter, r *http.Request) {
	cur := h.CfgVal.Load().(config.Config)
	_, vr := config.NormalizeAndValidate(cur)
	writeJSON(w, vr)
}
