package config

import (
	"github.com/medispatch/engine/infra/routing"
)

// RoutingConfig selects the travel-time source. When disabled the engine
// relies on the geometric fallback alone.
type RoutingConfig struct {
	Enabled bool           `json:"enabled"`
	HTTP    routing.Config `json:"http"`
}
