// Package export serializes recommendation runs for offline analysis.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/medispatch/engine/core/recommend/runstore"
)

// WriteJSON writes the runs to w as a JSON array.
func WriteJSON(w io.Writer, runs []runstore.Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(runs)
}

// WriteCSV writes one row per run with the top-level decision fields.
// Candidate breakdowns are omitted; use WriteJSON for the full record.
func WriteCSV(w io.Writer, runs []runstore.Run) error {
	cw := csv.NewWriter(w)
	header := []string{
		"run_id", "incident_id", "organization_id", "call_type",
		"confidence", "recommended_units", "candidates", "degraded", "created_at",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range runs {
		rec := []string{
			r.ID,
			r.IncidentID,
			r.OrganizationID,
			r.CallType.String(),
			r.Confidence.String(),
			strings.Join(r.RecommendedUnitIDs, ";"),
			strconv.Itoa(len(r.Candidates)),
			strconv.FormatBool(r.Degraded),
			r.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
