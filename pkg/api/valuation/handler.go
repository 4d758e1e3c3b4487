// Package valuation exposes the valuation engine over HTTP: single methods
// or the comprehensive multi-method summary, with per-request parameter
// overrides on top of the configured defaults.
package valuation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"equity_insight/pkg/core/snapshot"
	"equity_insight/pkg/core/store"
	corevaluation "equity_insight/pkg/core/valuation"
)

var (
	vault    *store.Vault
	defaults corevaluation.Params
	log      zerolog.Logger
)

// InitHandler wires the handler's collaborators and the configured default
// parameters.
func InitHandler(v *store.Vault, params corevaluation.Params, logger zerolog.Logger) {
	vault = v
	defaults = params
	log = logger
}

// Request selects a snapshot, a method and optional parameter overrides.
// Method "all" (or empty) runs the comprehensive valuation.
type Request struct {
	Code             string          `json:"code,omitempty"`
	Snapshot         json.RawMessage `json:"snapshot,omitempty"`
	Method           string          `json:"method,omitempty"`
	RequiredSections []string        `json:"required_sections,omitempty"`

	DiscountRate   *float64 `json:"discount_rate,omitempty"`
	ForecastYears  *int     `json:"forecast_years,omitempty"`
	TerminalGrowth *float64 `json:"terminal_growth,omitempty"`
	RequiredReturn *float64 `json:"required_return,omitempty"`
	MarginOfSafety *float64 `json:"margin_of_safety,omitempty"`
	DividendGrowth *float64 `json:"dividend_growth,omitempty"`
}

// params layers the request's overrides over the configured defaults.
func (req Request) params() corevaluation.Params {
	p := defaults
	if req.DiscountRate != nil {
		p.DiscountRate = *req.DiscountRate
	}
	if req.ForecastYears != nil {
		p.ForecastYears = *req.ForecastYears
	}
	if req.TerminalGrowth != nil {
		p.TerminalGrowth = *req.TerminalGrowth
	}
	if req.RequiredReturn != nil {
		p.RequiredReturn = *req.RequiredReturn
	}
	if req.MarginOfSafety != nil {
		p.MarginOfSafety = *req.MarginOfSafety
	}
	p.DividendGrowth = req.DividendGrowth
	return p
}

// HandleReport serves POST /api/valuation/report.
func HandleReport(w http.ResponseWriter, r *http.Request) {
	if !allowPost(w, r) {
		return
	}
	reqID := uuid.NewString()

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap, status, err := resolveSnapshot(r, req)
	if err != nil {
		log.Warn().Str("request_id", reqID).Str("code", req.Code).Err(err).Msg("valuation request rejected")
		http.Error(w, err.Error(), status)
		return
	}

	p := req.params()
	if err := p.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var result interface{}
	switch req.Method {
	case corevaluation.MethodDCF:
		result = corevaluation.DCF(snap, p)
	case corevaluation.MethodDDM:
		result = corevaluation.DDM(snap, p)
	case corevaluation.MethodRelative:
		result = corevaluation.Relative(snap)
	case "", "all":
		summary, err := corevaluation.Comprehensive(snap, p)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		result = summary
	default:
		http.Error(w, fmt.Sprintf("unknown valuation method: %s", req.Method), http.StatusBadRequest)
		return
	}

	log.Info().Str("request_id", reqID).Str("code", snap.Code).
		Str("method", req.Method).Msg("valuation generated")

	writeJSON(w, result)
}

// resolveSnapshot prefers the inline document and falls back to the vault.
func resolveSnapshot(r *http.Request, req Request) (*snapshot.Snapshot, int, error) {
	if len(req.Snapshot) > 0 {
		snap, err := snapshot.Load(req.Snapshot, req.RequiredSections...)
		if err != nil {
			var verr *snapshot.ValidationError
			if errors.As(err, &verr) {
				return nil, http.StatusUnprocessableEntity, err
			}
			return nil, http.StatusBadRequest, err
		}
		return snap, http.StatusOK, nil
	}
	if req.Code == "" {
		return nil, http.StatusBadRequest, fmt.Errorf("either snapshot or code is required")
	}
	if vault == nil {
		return nil, http.StatusServiceUnavailable, fmt.Errorf("snapshot vault not configured")
	}
	snap, err := vault.GetByCode(r.Context(), req.Code)
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
