package config

import (
	"github.com/medispatch/engine/jobs/coveragewatch"
)

// JobsConfig configures background jobs.
type JobsConfig struct {
	CoverageWatch CoverageWatchJob `json:"coverage_watch"`
}

// CoverageWatchJob schedules the periodic coverage assessment.
type CoverageWatchJob struct {
	Enabled              bool     `json:"enabled"`
	OrganizationID       string   `json:"organization_id"`
	Zones                []string `json:"zones"`
	Schedule             string   `json:"schedule"`
	ForecastHorizonHours int      `json:"forecast_horizon_hours"`
}

// SetDefaults applies sane defaults.
func (c *JobsConfig) SetDefaults() {
	if c.CoverageWatch.Schedule == "" {
		c.CoverageWatch.Schedule = "@every 5m"
	}
}

// JobConfig converts the section into the watcher's own config.
func (j CoverageWatchJob) JobConfig() coveragewatch.Config {
	return coveragewatch.Config{
		OrganizationID:       j.OrganizationID,
		Zones:                j.Zones,
		Schedule:             j.Schedule,
		ForecastHorizonHours: j.ForecastHorizonHours,
	}
}
