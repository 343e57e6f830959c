// Package store persists recommendation outcomes and user feedback.
package store

import (
	"github.com/medispatch/engine/core/feedback"
)

// ErrNotFound is returned when no outcome exists for a run.
var ErrNotFound = feedback.ErrNotFound

// Query selects outcomes.
type Query = feedback.Query

// Store persists outcome and feedback rows. Both are append-only.
type Store = feedback.Store
