package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/medispatch/engine/core/forecast"
	"github.com/medispatch/engine/core/model"
	"github.com/medispatch/engine/infra/logger"
)

var (
	covOrgID        string
	covZoneID       string
	covHorizonHours float64
	covCallType     string
)

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Assess zone coverage risk",
	RunE:  runCoverage,
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast call volume for a zone",
	RunE:  runForecast,
}

func init() {
	coverageCmd.PersistentFlags().StringVar(&covOrgID, "org", "", "organization id")
	coverageCmd.PersistentFlags().StringVar(&covZoneID, "zone", "", "zone id")
	forecastCmd.Flags().Float64Var(&covHorizonHours, "horizon", 1, "forecast horizon in hours")
	forecastCmd.Flags().StringVar(&covCallType, "call-type", "", "restrict to one call type")
	coverageCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(coverageCmd)
}

func runCoverage(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeService(svc)

	snap, err := svc.Assessor.AssessZone(ctx, covOrgID, covZoneID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

func runForecast(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	req := forecast.Request{
		OrganizationID: covOrgID,
		ZoneID:         covZoneID,
		Horizon:        time.Duration(covHorizonHours * float64(time.Hour)),
	}
	if covCallType != "" {
		ct, ok := model.ParseCallType(covCallType)
		if !ok {
			return fmt.Errorf("unknown call type %q", covCallType)
		}
		req.CallType = ct
		req.HasCallType = true
	}

	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeService(svc)

	fc, err := svc.Forecaster.ForecastCallVolume(ctx, req)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(fc)
}

func closeService(svc interface{ Close() error }) {
	if err := svc.Close(); err != nil {
		logger.New("main").Errorf("service close: %v", err)
	}
}
