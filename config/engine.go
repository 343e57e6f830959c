package config

import (
	"fmt"

	"github.com/medispatch/engine/core/coverage"
	"github.com/medispatch/engine/core/eta"
	"github.com/medispatch/engine/core/fatigue"
	"github.com/medispatch/engine/core/forecast"
	"github.com/medispatch/engine/core/model"
	"github.com/medispatch/engine/core/recommend"
	"github.com/medispatch/engine/core/turnaround"
)

// EngineConfig tunes the scoring pipeline. Weights are keyed by call type
// name ("emergency", "routine", "interfacility", "air_medical");
// organization overrides nest the same map under the organization id.
type EngineConfig struct {
	ETA        eta.Config        `json:"eta"`
	Fatigue    fatigue.Config    `json:"fatigue"`
	Turnaround turnaround.Config `json:"turnaround"`
	Forecast   forecast.Config   `json:"forecast"`
	Coverage   coverage.Config   `json:"coverage"`

	Weights             map[string]recommend.Weights            `json:"weights,omitempty"`
	OrganizationWeights map[string]map[string]recommend.Weights `json:"organization_weights,omitempty"`
}

// SetDefaults applies sane defaults to the nested sections.
func (c *EngineConfig) SetDefaults() {
	c.ETA.SetDefaults()
	c.Fatigue.SetDefaults()
	c.Turnaround.SetDefaults()
	c.Forecast.SetDefaults()
	c.Coverage.SetDefaults()
}

// Validate rejects weight entries keyed by an unknown call type.
func (c EngineConfig) Validate() error {
	for name := range c.Weights {
		if _, ok := model.ParseCallType(name); !ok {
			return fmt.Errorf("engine weights: unknown call type %q", name)
		}
	}
	for org, m := range c.OrganizationWeights {
		for name := range m {
			if _, ok := model.ParseCallType(name); !ok {
				return fmt.Errorf("engine weights for %s: unknown call type %q", org, name)
			}
		}
	}
	return nil
}

// ApplyWeights loads the configured defaults and organization overrides into
// the resolver. Call types are validated beforehand by Validate.
func (c EngineConfig) ApplyWeights(r *recommend.WeightResolver) {
	for name, w := range c.Weights {
		if ct, ok := model.ParseCallType(name); ok {
			r.SetDefault(ct, w)
		}
	}
	for org, m := range c.OrganizationWeights {
		for name, w := range m {
			if ct, ok := model.ParseCallType(name); ok {
				r.SetOverride(org, ct, w)
			}
		}
	}
}
