package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/medispatch/engine/core/recommend/runstore"
	"github.com/medispatch/engine/pkg/export"
)

var (
	runsIncidentID string
	runsOrgID      string
	runsSinceHours float64
	runsFormat     string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Export past recommendation runs",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().StringVar(&runsIncidentID, "incident", "", "filter by incident id")
	runsCmd.Flags().StringVar(&runsOrgID, "org", "", "filter by organization id")
	runsCmd.Flags().Float64Var(&runsSinceHours, "since", 24, "lookback window in hours")
	runsCmd.Flags().StringVar(&runsFormat, "format", "json", "output format (json or csv)")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeService(svc)

	q := runstore.Query{
		IncidentID:     runsIncidentID,
		OrganizationID: runsOrgID,
	}
	if runsSinceHours > 0 {
		q.Start = time.Now().Add(-time.Duration(runsSinceHours * float64(time.Hour)))
	}
	runs, err := svc.Recommender.Runs().Query(ctx, q)
	if err != nil {
		return err
	}

	switch runsFormat {
	case "json":
		return export.WriteJSON(cmd.OutOrStdout(), runs)
	case "csv":
		return export.WriteCSV(cmd.OutOrStdout(), runs)
	default:
		return fmt.Errorf("unknown format %q", runsFormat)
	}
}
