package config

import (
	"github.com/medispatch/engine/infra/audit"
)

// AuditConfig wires the immutable decision trail. A sink is enabled by
// giving it a target: a file path for the JSONL trail, a broker for the
// MQTT publisher. Both may be active at once.
type AuditConfig struct {
	File audit.FileConfig `json:"file"`
	MQTT audit.MQTTConfig `json:"mqtt"`
}
