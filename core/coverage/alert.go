package coverage

// Alert is published on the event bus when a watched zone's risk level
// changes between two snapshots.
type Alert struct {
	Snapshot Snapshot
	Previous RiskLevel
}

// Escalated reports whether the alert represents a worsening of risk.
func (a Alert) Escalated() bool {
	return a.Snapshot.Risk > a.Previous
}
