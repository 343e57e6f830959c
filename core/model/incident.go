package model

import (
	"fmt"
	"time"
)

// Incident is the request the engine scores candidates for.
type Incident struct {
	ID                   string        `json:"id"`
	OrganizationID       string        `json:"organization_id"`
	ZoneID               string        `json:"zone_id,omitempty"`
	CallType             CallType      `json:"call_type"`
	Location             Location      `json:"location"`
	RequiredCapabilities CapabilitySet `json:"required_capabilities,omitempty"`
	ReportedAt           time.Time     `json:"reported_at"`
}

// Validate rejects malformed incidents before any scoring happens.
func (i Incident) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("incident id is required")
	}
	if i.OrganizationID == "" {
		return fmt.Errorf("incident %s: organization id is required", i.ID)
	}
	if err := i.Location.Validate(); err != nil {
		return fmt.Errorf("incident %s: %w", i.ID, err)
	}
	if i.Location.IsZero() {
		return fmt.Errorf("incident %s: scene location is required", i.ID)
	}
	return nil
}
