package forecast

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/medispatch/engine/core/history"
	"github.com/medispatch/engine/core/model"
)

// Request describes one forecast invocation.
type Request struct {
	OrganizationID string         `json:"organization_id"`
	ZoneID         string         `json:"zone_id,omitempty"`
	CallType       model.CallType `json:"call_type"`
	HasCallType    bool           `json:"has_call_type"`
	// Horizon is how far ahead the forecast targets.
	Horizon time.Duration `json:"horizon"`
}

// Forecast is a point demand prediction with its uncertainty band.
type Forecast struct {
	ID               string                `json:"id"`
	OrganizationID   string                `json:"organization_id"`
	ZoneID           string                `json:"zone_id,omitempty"`
	CallType         model.CallType        `json:"call_type"`
	TargetTime       time.Time             `json:"target_time"`
	HorizonHours     float64               `json:"horizon_hours"`
	PredictedVolume  float64               `json:"predicted_volume"`
	BaselineVolume   float64               `json:"baseline_volume"`
	SurgeProbability float64               `json:"surge_probability"`
	BandLow          float64               `json:"band_low"`
	BandHigh         float64               `json:"band_high"`
	Confidence       model.ConfidenceLevel `json:"confidence"`
	SampleSize       int                   `json:"sample_size"`
	CreatedAt        time.Time             `json:"created_at"`

	// ActualVolume is annotated later for accuracy tracking; nil until the
	// observation lands.
	ActualVolume *float64 `json:"actual_volume,omitempty"`
}

// Config tunes the forecaster.
type Config struct {
	// LookbackDays is the historical window feeding the buckets.
	LookbackDays int `json:"lookback_days"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.LookbackDays <= 0 {
		c.LookbackDays = 90
	}
}

// Forecaster produces short-horizon call-volume forecasts from historical
// hourly counts. Data sparsity is not an error: it degrades confidence.
type Forecaster struct {
	history  history.Store
	lookback time.Duration
	now      func() time.Time

	mu     sync.Mutex
	issued map[string]*Forecast
}

// New creates a Forecaster reading from hs.
func New(hs history.Store, cfg Config) *Forecaster {
	cfg.SetDefaults()
	return &Forecaster{
		history:  hs,
		lookback: time.Duration(cfg.LookbackDays) * 24 * time.Hour,
		now:      time.Now,
		issued:   make(map[string]*Forecast),
	}
}

// ForecastCallVolume predicts hourly call volume at now+horizon. The point
// estimate averages the hour-of-day and day-of-week bucket means over the
// lookback window, falling back to the overall mean when a bucket is empty.
func (f *Forecaster) ForecastCallVolume(ctx context.Context, req Request) (*Forecast, error) {
	if req.OrganizationID == "" {
		return nil, fmt.Errorf("forecast: organization id is required")
	}
	horizon := req.Horizon
	if horizon <= 0 {
		horizon = time.Hour
	}
	now := f.now()
	target := now.Add(horizon)

	buckets, err := f.history.HourlyCounts(ctx, history.Query{
		OrganizationID: req.OrganizationID,
		ZoneID:         req.ZoneID,
		CallType:       req.CallType,
		HasCallType:    req.HasCallType,
		Start:          now.Add(-f.lookback),
		End:            now,
	})
	if err != nil {
		return nil, fmt.Errorf("forecast: history query: %w", err)
	}

	all := make([]float64, 0, len(buckets))
	var hourMatch, dowMatch []float64
	for _, b := range buckets {
		all = append(all, b.Count)
		if b.Start.Hour() == target.Hour() {
			hourMatch = append(hourMatch, b.Count)
		}
		if b.Start.Weekday() == target.Weekday() {
			dowMatch = append(dowMatch, b.Count)
		}
	}

	fc := &Forecast{
		ID:             uuid.NewString(),
		OrganizationID: req.OrganizationID,
		ZoneID:         req.ZoneID,
		CallType:       req.CallType,
		TargetTime:     target,
		HorizonHours:   horizon.Hours(),
		SampleSize:     len(all),
		CreatedAt:      now,
		Confidence:     model.ConfidenceVeryLow,
	}
	if len(all) == 0 {
		f.remember(fc)
		return fc, nil
	}

	overall := stat.Mean(all, nil)
	point := overall
	if len(hourMatch) > 0 && len(dowMatch) > 0 {
		point = (stat.Mean(hourMatch, nil) + stat.Mean(dowMatch, nil)) / 2
	}

	sorted := append([]float64(nil), all...)
	sort.Float64s(sorted)
	median := stat.Quantile(0.5, stat.Empirical, sorted, nil)

	fc.PredictedVolume = point
	fc.BaselineVolume = overall
	fc.SurgeProbability = surgeProbability(point, median)
	fc.Confidence = confidence(all, overall)

	sigma := 0.0
	if len(hourMatch) > 1 {
		sigma = stat.StdDev(hourMatch, nil)
	} else if len(all) > 1 {
		sigma = stat.StdDev(all, nil)
	}
	fc.BandLow = math.Max(0, point-1.96*sigma)
	fc.BandHigh = point + 1.96*sigma

	f.remember(fc)
	return fc, nil
}

// RecordActual annotates an issued forecast with the observed volume.
func (f *Forecaster) RecordActual(forecastID string, observed float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fc, ok := f.issued[forecastID]
	if !ok {
		return fmt.Errorf("forecast: unknown forecast id %s", forecastID)
	}
	v := observed
	fc.ActualVolume = &v
	return nil
}

func (f *Forecaster) remember(fc *Forecast) {
	f.mu.Lock()
	f.issued[fc.ID] = fc
	f.mu.Unlock()
}

// surgeProbability maps the forecast-to-median ratio onto fixed bands.
func surgeProbability(point, median float64) float64 {
	if median <= 0 {
		if point > 0 {
			return 0.9
		}
		return 0.1
	}
	ratio := point / median
	switch {
	case ratio >= 1.5:
		return 0.9
	case ratio >= 1.3:
		return 0.7
	case ratio >= 1.2:
		return 0.5
	case ratio >= 1.1:
		return 0.3
	default:
		return 0.1
	}
}

// confidence depends jointly on sample size and coefficient of variation.
func confidence(sample []float64, mean float64) model.ConfidenceLevel {
	n := len(sample)
	if n < 7 {
		return model.ConfidenceVeryLow
	}
	cv := math.Inf(1)
	if mean > 0 {
		cv = stat.StdDev(sample, nil) / mean
	}
	switch {
	case n >= 60 && cv < 0.3:
		return model.ConfidenceHigh
	case n >= 30 && cv < 0.5:
		return model.ConfidenceMedium
	case n >= 14:
		return model.ConfidenceLow
	default:
		return model.ConfidenceVeryLow
	}
}
