package model

// ConfidenceLevel expresses how much the engine trusts one of its own
// results. Levels are ordered from least to most trustworthy.
type ConfidenceLevel int

const (
	ConfidenceVeryLow ConfidenceLevel = iota
	ConfidenceLow
	ConfidenceMedium
	ConfidenceHigh
)

// String returns the canonical upper-snake form used on the wire.
func (c ConfidenceLevel) String() string {
	switch c {
	case ConfidenceVeryLow:
		return "VERY_LOW"
	case ConfidenceLow:
		return "LOW"
	case ConfidenceMedium:
		return "MEDIUM"
	case ConfidenceHigh:
		return "HIGH"
	default:
		return "unknown"
	}
}

// ParseConfidenceLevel converts the wire form back to a level.
func ParseConfidenceLevel(s string) (ConfidenceLevel, bool) {
	switch s {
	case "VERY_LOW":
		return ConfidenceVeryLow, true
	case "LOW":
		return ConfidenceLow, true
	case "MEDIUM":
		return ConfidenceMedium, true
	case "HIGH":
		return ConfidenceHigh, true
	default:
		return 0, false
	}
}

// MarshalJSON encodes the level as its string form.
func (c ConfidenceLevel) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// UnmarshalJSON decodes a level from its string form.
func (c *ConfidenceLevel) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return errInvalidConfidence(string(b))
	}
	v, ok := ParseConfidenceLevel(string(b[1 : len(b)-1]))
	if !ok {
		return errInvalidConfidence(string(b))
	}
	*c = v
	return nil
}

type errInvalidConfidence string

func (e errInvalidConfidence) Error() string {
	return "invalid confidence level " + string(e)
}
