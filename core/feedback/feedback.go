// Package feedback closes the loop between the engine's suggestions and what
// dispatchers actually do. It is advisory analytics only: weight changes are
// an explicit configuration action, never automatic.
package feedback

import (
	"fmt"
	"time"
)

// Action is what the dispatcher did with a recommendation.
type Action int

const (
	ActionAccepted Action = iota
	ActionOverridden
	ActionIgnored
)

// String returns a human-readable representation of the action.
func (a Action) String() string {
	switch a {
	case ActionAccepted:
		return "accepted"
	case ActionOverridden:
		return "overridden"
	case ActionIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

// ParseAction converts a string to an Action.
func ParseAction(s string) (Action, bool) {
	switch s {
	case "accepted":
		return ActionAccepted, true
	case "overridden":
		return ActionOverridden, true
	case "ignored":
		return ActionIgnored, true
	default:
		return 0, false
	}
}

// Outcome records what the dispatcher actually did versus what was
// suggested. Rows are append-only, one per run.
type Outcome struct {
	ID                 string    `json:"id"`
	RunID              string    `json:"run_id"`
	RecommendationType string    `json:"recommendation_type"`
	SuggestedUnitID    string    `json:"suggested_unit_id,omitempty"`
	SelectedUnitID     string    `json:"selected_unit_id,omitempty"`
	Action             Action    `json:"action"`
	Accepted           bool      `json:"accepted"`
	Overridden         bool      `json:"overridden"`
	OverrideReason     string    `json:"override_reason,omitempty"`
	LearningWeight     float64   `json:"learning_weight"`
	ActorID            string    `json:"actor_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// UserFeedback is explicit qualitative feedback on a recommendation or
// alert. Append-only.
type UserFeedback struct {
	ID           string    `json:"id"`
	FeedbackType string    `json:"feedback_type"`
	EntityID     string    `json:"entity_id"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	ActorID      string    `json:"actor_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate checks the feedback row before it is stored.
func (f UserFeedback) Validate() error {
	if f.FeedbackType == "" {
		return fmt.Errorf("feedback type is required")
	}
	if f.EntityID == "" {
		return fmt.Errorf("entity reference is required")
	}
	if f.Rating < 1 || f.Rating > 5 {
		return fmt.Errorf("rating %d outside 1-5", f.Rating)
	}
	return nil
}

// ReasonCount is one override reason with its occurrence count.
type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// PatternReport aggregates dispatcher behaviour over a lookback window.
type PatternReport struct {
	RecommendationType string        `json:"recommendation_type"`
	LookbackDays       int           `json:"lookback_days"`
	TotalOutcomes      int           `json:"total_outcomes"`
	AcceptedRate       float64       `json:"accepted_rate"`
	OverrideRate       float64       `json:"override_rate"`
	TopOverrideReasons []ReasonCount `json:"top_override_reasons"`
	SystematicIssues   []string      `json:"systematic_issues"`
}
