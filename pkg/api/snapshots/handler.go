// Package snapshots exposes the snapshot vault over HTTP: upload, fetch by
// code and listing of stored documents.
package snapshots

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"equity_insight/pkg/core/snapshot"
	"equity_insight/pkg/core/store"
)

var (
	vault *store.Vault
	log   zerolog.Logger
)

// InitHandler wires the handler's collaborators.
func InitHandler(v *store.Vault, logger zerolog.Logger) {
	vault = v
	log = logger
}

// HandleUpload serves POST /api/snapshots. The body is a raw snapshot
// document; it is validated before it is stored.
func HandleUpload(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	reqID := uuid.NewString()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap, err := snapshot.Load(body)
	if err != nil {
		log.Warn().Str("request_id", reqID).Err(err).Msg("snapshot upload rejected")
		var verr *snapshot.ValidationError
		if errors.As(err, &verr) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := vault.Put(r.Context(), snap, body)
	if err != nil {
		log.Error().Str("request_id", reqID).Str("code", snap.Code).Err(err).Msg("snapshot store failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	log.Info().Str("request_id", reqID).Str("code", entry.Code).
		Str("name", entry.Name).Msg("snapshot stored")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(entry); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

// HandleGet serves GET /api/snapshots/get?code=XXXXXX.
func HandleGet(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "code query parameter is required", http.StatusBadRequest)
		return
	}

	snap, err := vault.GetByCode(r.Context(), code)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, snap)
}

// HandleList serves GET /api/snapshots/list.
func HandleList(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	entries, err := vault.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{
		"count":     len(entries),
		"snapshots": entries,
	})
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", method+", OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return false
	}
	if r.Method != method {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if vault == nil {
		http.Error(w, "snapshot vault not configured", http.StatusServiceUnavailable)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}
