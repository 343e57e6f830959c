package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/medispatch/engine/core/model"
	"github.com/medispatch/engine/core/recommend"
	"github.com/medispatch/engine/infra/logger"
)

var (
	recIncidentID string
	recOrgID      string
	recZoneID     string
	recCallType   string
	recLat        float64
	recLon        float64
	recCaps       []string
	recTopN       int
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Score units for an incident and print the ranked result",
	RunE:  runRecommend,
}

func init() {
	recommendCmd.Flags().StringVar(&recIncidentID, "incident", "", "incident id")
	recommendCmd.Flags().StringVar(&recOrgID, "org", "", "organization id")
	recommendCmd.Flags().StringVar(&recZoneID, "zone", "", "zone id")
	recommendCmd.Flags().StringVar(&recCallType, "call-type", "emergency", "call type")
	recommendCmd.Flags().Float64Var(&recLat, "lat", 0, "scene latitude")
	recommendCmd.Flags().Float64Var(&recLon, "lon", 0, "scene longitude")
	recommendCmd.Flags().StringSliceVar(&recCaps, "capability", nil, "required capability, repeatable")
	recommendCmd.Flags().IntVar(&recTopN, "top", 0, "number of recommendations")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ct, ok := model.ParseCallType(recCallType)
	if !ok {
		return fmt.Errorf("unknown call type %q", recCallType)
	}
	caps := make(model.CapabilitySet, 0, len(recCaps))
	for _, c := range recCaps {
		parsed, ok := model.ParseCapability(c)
		if !ok {
			return fmt.Errorf("unknown capability %q", c)
		}
		caps = append(caps, parsed)
	}

	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	rec, err := svc.Recommender.RecommendUnits(ctx, recommend.Request{
		IncidentID:           recIncidentID,
		OrganizationID:       recOrgID,
		ZoneID:               recZoneID,
		CallType:             ct,
		SceneLocation:        model.Location{Lat: recLat, Lon: recLon},
		RequiredCapabilities: caps,
		TopN:                 recTopN,
	})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}
