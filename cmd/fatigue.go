package cmd

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/medispatch/engine/core/fatigue"
)

var fatigueOrgID string

var fatigueCmd = &cobra.Command{
	Use:   "fatigue",
	Short: "List crew fatigue assessments",
	RunE:  runFatigue,
}

func init() {
	fatigueCmd.Flags().StringVar(&fatigueOrgID, "org", "", "organization id")
	rootCmd.AddCommand(fatigueCmd)
}

func runFatigue(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeService(svc)

	units, err := svc.Roster.Units(ctx, fatigueOrgID)
	if err != nil {
		return err
	}
	now := time.Now()
	assessments := make([]fatigue.Assessment, 0, len(units))
	for _, u := range units {
		assessments = append(assessments, svc.Scorer.Assess(u, now))
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(assessments)
}
