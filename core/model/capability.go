package model

import "fmt"

// Capability identifies a clinical or operational capability a unit carries.
type Capability int

const (
	CapBLS Capability = iota
	CapALS
	CapCriticalCare
	CapBariatric
	CapNeonatal
	CapRotorWing
)

// String returns the short capability code.
func (c Capability) String() string {
	switch c {
	case CapBLS:
		return "BLS"
	case CapALS:
		return "ALS"
	case CapCriticalCare:
		return "CCT"
	case CapBariatric:
		return "BARIATRIC"
	case CapNeonatal:
		return "NEONATAL"
	case CapRotorWing:
		return "ROTOR_WING"
	default:
		return "unknown"
	}
}

// ParseCapability converts a capability code to a Capability.
func ParseCapability(s string) (Capability, bool) {
	switch s {
	case "BLS":
		return CapBLS, true
	case "ALS":
		return CapALS, true
	case "CCT":
		return CapCriticalCare, true
	case "BARIATRIC":
		return CapBariatric, true
	case "NEONATAL":
		return CapNeonatal, true
	case "ROTOR_WING":
		return CapRotorWing, true
	default:
		return 0, false
	}
}

// IsAdvanced reports whether the capability is rewarded above the capability
// score baseline.
func (c Capability) IsAdvanced() bool {
	switch c {
	case CapALS, CapCriticalCare, CapBariatric, CapNeonatal:
		return true
	default:
		return false
	}
}

// MarshalJSON encodes the capability as its code.
func (c Capability) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// UnmarshalJSON decodes a capability from its code.
func (c *Capability) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("invalid capability %s", string(b))
	}
	v, ok := ParseCapability(string(b[1 : len(b)-1]))
	if !ok {
		return fmt.Errorf("unknown capability %q", string(b[1:len(b)-1]))
	}
	*c = v
	return nil
}

// CapabilitySet is the set of capabilities carried by a unit or required by an
// incident.
type CapabilitySet []Capability

// Has reports whether the set contains c.
func (s CapabilitySet) Has(c Capability) bool {
	for _, v := range s {
		if v == c {
			return true
		}
	}
	return false
}

// HasAll reports whether the set is a superset of required.
func (s CapabilitySet) HasAll(required CapabilitySet) bool {
	for _, c := range required {
		if !s.Has(c) {
			return false
		}
	}
	return true
}
