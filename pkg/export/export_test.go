package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/medispatch/engine/core/model"
	"github.com/medispatch/engine/core/recommend/runstore"
)

func sampleRuns() []runstore.Run {
	return []runstore.Run{
		{
			ID:                 "r1",
			IncidentID:         "i1",
			OrganizationID:     "org1",
			CallType:           model.CallEmergency,
			Confidence:         model.ConfidenceHigh,
			RecommendedUnitIDs: []string{"m1", "m2"},
			Candidates:         []runstore.Candidate{{UnitID: "m1", Rank: 1}, {UnitID: "m2", Rank: 2}},
			CreatedAt:          time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:             "r2",
			IncidentID:     "i2",
			OrganizationID: "org1",
			CallType:       model.CallRoutine,
			Confidence:     model.ConfidenceLow,
			Degraded:       true,
			CreatedAt:      time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC),
		},
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleRuns()))

	var decoded []runstore.Run
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	require.Equal(t, "r1", decoded[0].ID)
	require.Equal(t, []string{"m1", "m2"}, decoded[0].RecommendedUnitIDs)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRuns()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "run_id", rows[0][0])
	require.Equal(t, []string{
		"r1", "i1", "org1", "emergency", "HIGH", "m1;m2", "2", "false", "2026-08-01T10:00:00Z",
	}, rows[1])
	require.Equal(t, "true", rows[2][7])
}
