package config

import (
	"fmt"

	"github.com/medispatch/engine/infra/history"
)

// HistoryConfig selects the incident-history backend feeding forecasts and
// coverage. "memory" keeps an empty in-process store for environments
// without a platform database.
type HistoryConfig struct {
	Backend  string         `json:"backend"`
	Postgres history.Config `json:"postgres"`
}

// Validate checks mandatory fields.
func (c HistoryConfig) Validate() error {
	switch c.Backend {
	case "", "memory":
	case "postgres":
		if c.Postgres.DSN == "" {
			return fmt.Errorf("history: postgres dsn is required")
		}
	default:
		return fmt.Errorf("history: unknown backend %s", c.Backend)
	}
	return nil
}
