// Package feedback exposes outcome recording and override analytics over HTTP.
package feedback

import (
	"encoding/json"
	"net/http"
	"strconv"

	corefeedback "github.com/medispatch/engine/core/feedback"
)

func authorized(r *http.Request, token string) bool {
	if token == "" {
		return true
	}
	return r.Header.Get("Authorization") == "Bearer "+token
}

type outcomeBody struct {
	RunID          string `json:"run_id"`
	Action         string `json:"action"`
	SelectedUnitID string `json:"selected_unit_id,omitempty"`
	OverrideReason string `json:"override_reason,omitempty"`
	ActorID        string `json:"actor_id,omitempty"`
}

// NewOutcomeHandler returns an HTTP handler serving POST /api/feedback/outcomes.
// Requests must include an Authorization header with "Bearer <token>" when token is non-empty.
func NewOutcomeHandler(learner *corefeedback.Learner, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var body outcomeBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		action, ok := corefeedback.ParseAction(body.Action)
		if !ok {
			http.Error(w, "unknown action", http.StatusBadRequest)
			return
		}
		err := learner.RecordOutcome(r.Context(), corefeedback.OutcomeRequest{
			RunID:          body.RunID,
			Action:         action,
			SelectedUnitID: body.SelectedUnitID,
			OverrideReason: body.OverrideReason,
			ActorID:        body.ActorID,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// NewUserFeedbackHandler returns an HTTP handler serving POST /api/feedback.
func NewUserFeedbackHandler(learner *corefeedback.Learner, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var fb corefeedback.UserFeedback
		if err := json.NewDecoder(r.Body).Decode(&fb); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if err := learner.RecordUserFeedback(r.Context(), fb); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// NewPatternsHandler returns an HTTP handler serving GET /api/feedback/patterns.
func NewPatternsHandler(learner *corefeedback.Learner, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		recType := r.URL.Query().Get("recommendation_type")
		if recType == "" {
			recType = "unit_recommendation"
		}
		lookback := 30
		if s := r.URL.Query().Get("lookback_days"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				http.Error(w, "invalid lookback_days", http.StatusBadRequest)
				return
			}
			lookback = n
		}
		report, err := learner.AnalyzeOverridePatterns(r.Context(), recType, lookback)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
