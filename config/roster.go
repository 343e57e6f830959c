package config

import (
	"fmt"

	"github.com/medispatch/engine/infra/roster"
)

// RosterConfig selects where unit status comes from.
type RosterConfig struct {
	// Mode selects the roster source: "static" or "mqtt".
	Mode string `json:"mode"`
	// File is the unit roster file used in static mode.
	File string `json:"file"`
	// MQTT configures the CAD status subscription used in mqtt mode.
	MQTT roster.MQTTConfig `json:"mqtt"`
}

// SetDefaults applies sane defaults.
func (c *RosterConfig) SetDefaults() {
	if c.Mode == "" {
		c.Mode = "static"
	}
	if c.Mode == "static" && c.File == "" {
		c.File = "units.yaml"
	}
}

// Validate checks mandatory fields.
func (c RosterConfig) Validate() error {
	switch c.Mode {
	case "static":
		if c.File == "" {
			return fmt.Errorf("roster: file is required in static mode")
		}
	case "mqtt":
		if c.MQTT.Broker == "" {
			return fmt.Errorf("roster: mqtt broker is required in mqtt mode")
		}
	default:
		return fmt.Errorf("roster: unknown mode %s", c.Mode)
	}
	return nil
}
