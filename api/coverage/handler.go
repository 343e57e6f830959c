// Package coverage exposes zone coverage and demand forecasts over HTTP.
package coverage

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	corecoverage "github.com/medispatch/engine/core/coverage"
	"github.com/medispatch/engine/core/forecast"
	"github.com/medispatch/engine/core/model"
)

func authorized(r *http.Request, token string) bool {
	if token == "" {
		return true
	}
	return r.Header.Get("Authorization") == "Bearer "+token
}

// NewAssessHandler returns an HTTP handler serving GET /api/coverage.
// Requests must include an Authorization header with "Bearer <token>" when token is non-empty.
func NewAssessHandler(assessor *corecoverage.Assessor, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		org := r.URL.Query().Get("organization_id")
		if org == "" {
			http.Error(w, "organization_id is required", http.StatusBadRequest)
			return
		}
		zone := r.URL.Query().Get("zone_id")
		snap, err := assessor.AssessZone(r.Context(), org, zone)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snap); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// NewForecastHandler returns an HTTP handler serving GET /api/coverage/forecast.
func NewForecastHandler(fc *forecast.Forecaster, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		org := r.URL.Query().Get("organization_id")
		if org == "" {
			http.Error(w, "organization_id is required", http.StatusBadRequest)
			return
		}
		req := forecast.Request{
			OrganizationID: org,
			ZoneID:         r.URL.Query().Get("zone_id"),
			Horizon:        time.Hour,
		}
		if s := r.URL.Query().Get("horizon_hours"); s != "" {
			h, err := strconv.ParseFloat(s, 64)
			if err != nil || h <= 0 {
				http.Error(w, "invalid horizon_hours", http.StatusBadRequest)
				return
			}
			req.Horizon = time.Duration(h * float64(time.Hour))
		}
		if s := r.URL.Query().Get("call_type"); s != "" {
			ct, ok := model.ParseCallType(s)
			if !ok {
				http.Error(w, "unknown call_type", http.StatusBadRequest)
				return
			}
			req.CallType = ct
			req.HasCallType = true
		}
		result, err := fc.ForecastCallVolume(r.Context(), req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
