// Package roster feeds the engine's unit roster from external sources: a
// static file for fixed deployments and an MQTT stream for live CAD feeds.
package roster

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/medispatch/engine/core/model"
	coreroster "github.com/medispatch/engine/core/roster"
)

// LoadFile reads a unit roster from a YAML or JSON file, keyed by extension.
// YAML documents are converted to JSON first so both formats share the same
// field names.
func LoadFile(path string) ([]model.Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("roster: read %s: %w", path, err)
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("roster: parse %s: %w", path, err)
		}
		data, err = json.Marshal(normalizeYAML(raw))
		if err != nil {
			return nil, fmt.Errorf("roster: convert %s: %w", path, err)
		}
	case ".json":
	default:
		return nil, fmt.Errorf("roster: unsupported roster format %s", ext)
	}
	var units []model.Unit
	if err := json.Unmarshal(data, &units); err != nil {
		return nil, fmt.Errorf("roster: parse %s: %w", path, err)
	}
	for _, u := range units {
		if err := u.Validate(); err != nil {
			return nil, fmt.Errorf("roster: %w", err)
		}
	}
	return units, nil
}

// NewStaticStore loads the file into a MemoryStore.
func NewStaticStore(path string) (*coreroster.MemoryStore, error) {
	units, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	store := coreroster.NewMemoryStore()
	store.SetUnits(units)
	return store, nil
}

// normalizeYAML rewrites map[any]any nodes into map[string]any so the value
// can be marshalled as JSON.
func normalizeYAML(v any) any {
	switch vv := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(vv))
		for k, val := range vv {
			m[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return m
	case map[string]any:
		for k, val := range vv {
			vv[k] = normalizeYAML(val)
		}
		return vv
	case []any:
		for i, val := range vv {
			vv[i] = normalizeYAML(val)
		}
		return vv
	default:
		return v
	}
}
