// Package recommend exposes the recommendation engine over HTTP.
package recommend

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/medispatch/engine/core/fatigue"
	"github.com/medispatch/engine/core/model"
	"github.com/medispatch/engine/core/recommend"
	"github.com/medispatch/engine/core/recommend/runstore"
	"github.com/medispatch/engine/core/roster"
)

func authorized(r *http.Request, token string) bool {
	if token == "" {
		return true
	}
	return r.Header.Get("Authorization") == "Bearer "+token
}

// NewRecommendHandler returns an HTTP handler serving POST /api/recommendations.
// Requests must include an Authorization header with "Bearer <token>" when token is non-empty.
func NewRecommendHandler(rec *recommend.Recommender, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req recommend.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		result, err := rec.RecommendUnits(r.Context(), req)
		if err != nil {
			// Only input validation and cancellation surface as errors.
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// NewRunsHandler returns an HTTP handler exposing past runs via GET /api/recommendations/runs.
func NewRunsHandler(store runstore.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		q := runstore.Query{
			IncidentID:     r.URL.Query().Get("incident_id"),
			OrganizationID: r.URL.Query().Get("organization_id"),
		}
		if s := r.URL.Query().Get("start"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.Start = t
			}
		}
		if s := r.URL.Query().Get("end"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.End = t
			}
		}
		runs, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(runs); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// NewFatigueHandler returns an HTTP handler exposing crew fatigue via
// GET /api/units/fatigue. A unit_id query parameter narrows the response
// to one unit.
func NewFatigueHandler(rs roster.Store, scorer fatigue.Scorer, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var units []model.Unit
		if unitID := r.URL.Query().Get("unit_id"); unitID != "" {
			u, err := rs.Unit(r.Context(), unitID)
			if err != nil {
				if errors.Is(err, roster.ErrUnitNotFound) {
					http.Error(w, "unknown unit", http.StatusNotFound)
					return
				}
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			units = []model.Unit{u}
		} else {
			org := r.URL.Query().Get("organization_id")
			var err error
			units, err = rs.Units(r.Context(), org)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		now := time.Now()
		assessments := make([]fatigue.Assessment, 0, len(units))
		for _, u := range units {
			assessments = append(assessments, scorer.Assess(u, now))
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(assessments); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
