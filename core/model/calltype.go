package model

import "fmt"

// CallType categorises a service request. The type drives scoring weight
// priorities and ETA expectations.
type CallType int

const (
	CallEmergency CallType = iota
	CallRoutine
	CallInterfacility
	CallAirMedical
)

// String returns a human-readable representation of the call type.
func (t CallType) String() string {
	switch t {
	case CallEmergency:
		return "emergency"
	case CallRoutine:
		return "routine"
	case CallInterfacility:
		return "interfacility"
	case CallAirMedical:
		return "air_medical"
	default:
		return "unknown"
	}
}

// ParseCallType converts a string to a CallType.
func ParseCallType(s string) (CallType, bool) {
	switch s {
	case "emergency":
		return CallEmergency, true
	case "routine":
		return CallRoutine, true
	case "interfacility":
		return CallInterfacility, true
	case "air_medical":
		return CallAirMedical, true
	default:
		return 0, false
	}
}

// IsEmergent reports whether the call type runs with lights and sirens.
func (t CallType) IsEmergent() bool {
	return t == CallEmergency || t == CallAirMedical
}

// MarshalJSON encodes the call type as its string form.
func (t CallType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON decodes a call type from its string form.
func (t *CallType) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("invalid call type %s", string(b))
	}
	v, ok := ParseCallType(string(b[1 : len(b)-1]))
	if !ok {
		return fmt.Errorf("unknown call type %q", string(b[1:len(b)-1]))
	}
	*t = v
	return nil
}
