package forecast

import (
	"context"
	"testing"
	"time"

	"github.com/medispatch/engine/core/history"
	"github.com/medispatch/engine/core/model"
)

var base = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) // a Saturday

func newForecaster(hs history.Store) *Forecaster {
	f := New(hs, Config{})
	f.now = func() time.Time { return base }
	return f
}

func TestSparseDataIsVeryLowConfidence(t *testing.T) {
	hs := history.NewMemoryStore()
	for i := 0; i < 6; i++ {
		hs.AddCount("org1", "", model.CallEmergency, base.Add(-time.Duration(i+1)*24*time.Hour), 3)
	}
	f := newForecaster(hs)
	fc, err := f.ForecastCallVolume(context.Background(), Request{OrganizationID: "org1", Horizon: time.Hour})
	if err != nil {
		t.Fatalf("ForecastCallVolume: %v", err)
	}
	if fc.Confidence != model.ConfidenceVeryLow {
		t.Errorf("confidence = %s, want VERY_LOW", fc.Confidence)
	}
	if fc.SampleSize != 6 {
		t.Errorf("sample size = %d, want 6", fc.SampleSize)
	}
}

func TestEmptyHistoryIsValid(t *testing.T) {
	f := newForecaster(history.NewMemoryStore())
	fc, err := f.ForecastCallVolume(context.Background(), Request{OrganizationID: "org1"})
	if err != nil {
		t.Fatalf("ForecastCallVolume: %v", err)
	}
	if fc.PredictedVolume != 0 || fc.Confidence != model.ConfidenceVeryLow {
		t.Errorf("empty history should degrade, got %+v", fc)
	}
}

func TestSteadyDemandHighConfidence(t *testing.T) {
	hs := history.NewMemoryStore()
	// 90 days of identical hourly counts at the matching hour.
	for i := 0; i < 90; i++ {
		hs.AddCount("org1", "", model.CallEmergency, base.Add(-time.Duration(i+1)*24*time.Hour).Add(time.Hour), 4)
	}
	f := newForecaster(hs)
	fc, err := f.ForecastCallVolume(context.Background(), Request{OrganizationID: "org1", Horizon: time.Hour})
	if err != nil {
		t.Fatalf("ForecastCallVolume: %v", err)
	}
	if fc.Confidence != model.ConfidenceHigh {
		t.Errorf("confidence = %s, want HIGH", fc.Confidence)
	}
	if fc.PredictedVolume != 4 {
		t.Errorf("predicted = %v, want 4", fc.PredictedVolume)
	}
	// Zero variance means a degenerate band around the point estimate.
	if fc.BandLow != 4 || fc.BandHigh != 4 {
		t.Errorf("band = [%v, %v], want [4, 4]", fc.BandLow, fc.BandHigh)
	}
	if fc.SurgeProbability != 0.1 {
		t.Errorf("surge probability = %v, want 0.1", fc.SurgeProbability)
	}
}

func TestSurgeBands(t *testing.T) {
	cases := []struct {
		point, median float64
		want          float64
	}{
		{9, 6, 0.9},
		{8, 6, 0.7},
		{7.5, 6, 0.5},
		{6.7, 6, 0.3},
		{6, 6, 0.1},
	}
	for _, c := range cases {
		if got := surgeProbability(c.point, c.median); got != c.want {
			t.Errorf("surgeProbability(%v, %v) = %v, want %v", c.point, c.median, got, c.want)
		}
	}
}

func TestRecordActual(t *testing.T) {
	hs := history.NewMemoryStore()
	hs.AddCount("org1", "", model.CallEmergency, base.Add(-24*time.Hour), 2)
	f := newForecaster(hs)
	fc, err := f.ForecastCallVolume(context.Background(), Request{OrganizationID: "org1"})
	if err != nil {
		t.Fatalf("ForecastCallVolume: %v", err)
	}
	if err := f.RecordActual(fc.ID, 3); err != nil {
		t.Fatalf("RecordActual: %v", err)
	}
	if fc.ActualVolume == nil || *fc.ActualVolume != 3 {
		t.Errorf("actual volume not annotated: %+v", fc.ActualVolume)
	}
	if err := f.RecordActual("nope", 1); err == nil {
		t.Errorf("unknown forecast id should error")
	}
}
