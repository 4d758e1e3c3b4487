// Package analysis exposes the analysis engine over HTTP: single-company
// reports at three detail levels and multi-company comparison.
package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	coreanalysis "equity_insight/pkg/core/analysis"
	"equity_insight/pkg/core/snapshot"
	"equity_insight/pkg/core/store"
)

var (
	engine *coreanalysis.Engine
	vault  *store.Vault
	log    zerolog.Logger
)

// InitHandler wires the handler's collaborators.
func InitHandler(v *store.Vault, logger zerolog.Logger) {
	engine = coreanalysis.NewEngine()
	vault = v
	log = logger
}

// ReportRequest carries either an inline snapshot document or a code of a
// previously uploaded one.
type ReportRequest struct {
	Code             string          `json:"code,omitempty"`
	Snapshot         json.RawMessage `json:"snapshot,omitempty"`
	Level            string          `json:"level,omitempty"`
	RequiredSections []string        `json:"required_sections,omitempty"`
}

// CompareRequest carries an ordered mix of inline snapshots and codes;
// ranking ties break on this order.
type CompareRequest struct {
	Snapshots        []json.RawMessage `json:"snapshots,omitempty"`
	Codes            []string          `json:"codes,omitempty"`
	RequiredSections []string          `json:"required_sections,omitempty"`
}

// HandleReport serves POST /api/analysis/report.
func HandleReport(w http.ResponseWriter, r *http.Request) {
	if !allowPost(w, r) {
		return
	}
	reqID := uuid.NewString()

	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap, status, err := resolveSnapshot(r, req.Snapshot, req.Code, req.RequiredSections)
	if err != nil {
		log.Warn().Str("request_id", reqID).Str("code", req.Code).Err(err).Msg("report request rejected")
		http.Error(w, err.Error(), status)
		return
	}

	level := coreanalysis.ParseLevel(req.Level)
	report := engine.Analyze(snap, level)
	log.Info().Str("request_id", reqID).Str("code", report.Code).
		Int("score", report.Score).Str("level", string(level)).Msg("analysis report generated")

	writeJSON(w, report)
}

// HandleCompare serves POST /api/analysis/compare.
func HandleCompare(w http.ResponseWriter, r *http.Request) {
	if !allowPost(w, r) {
		return
	}
	reqID := uuid.NewString()

	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var snaps []*snapshot.Snapshot
	for i, raw := range req.Snapshots {
		snap, status, err := resolveSnapshot(r, raw, "", req.RequiredSections)
		if err != nil {
			http.Error(w, fmt.Sprintf("snapshot %d: %v", i, err), status)
			return
		}
		snaps = append(snaps, snap)
	}
	for _, code := range req.Codes {
		snap, status, err := resolveSnapshot(r, nil, code, req.RequiredSections)
		if err != nil {
			http.Error(w, fmt.Sprintf("code %s: %v", code, err), status)
			return
		}
		snaps = append(snaps, snap)
	}
	if len(snaps) == 0 {
		http.Error(w, "no snapshots or codes supplied", http.StatusBadRequest)
		return
	}

	comparison := engine.Compare(snaps)
	log.Info().Str("request_id", reqID).Int("stocks", len(comparison.Stocks)).Msg("comparison generated")

	writeJSON(w, comparison)
}

// resolveSnapshot prefers the inline document and falls back to the vault.
func resolveSnapshot(r *http.Request, raw json.RawMessage, code string, sections []string) (*snapshot.Snapshot, int, error) {
	if len(raw) > 0 {
		snap, err := snapshot.Load(raw, sections...)
		if err != nil {
			var verr *snapshot.ValidationError
			if errors.As(err, &verr) {
				return nil, http.StatusUnprocessableEntity, err
			}
			return nil, http.StatusBadRequest, err
		}
		return snap, http.StatusOK, nil
	}
	if code == "" {
		return nil, http.StatusBadRequest, fmt.Errorf("either snapshot or code is required")
	}
	if vault == nil {
		return nil, http.StatusServiceUnavailable, fmt.Errorf("snapshot vault not configured")
	}
	snap, err := vault.GetByCode(r.Context(), code)
	if err != nil {
		return nil, http.StatusNotFound, err
	}
	return snap, http.StatusOK, nil
}

func allowPost(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return false
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
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
