package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medispatch/engine/core/audit"
	"github.com/medispatch/engine/core/coverage"
	"github.com/medispatch/engine/core/eta"
	"github.com/medispatch/engine/core/fatigue"
	"github.com/medispatch/engine/core/logger"
	"github.com/medispatch/engine/core/metrics"
	"github.com/medispatch/engine/core/model"
	"github.com/medispatch/engine/core/monitoring"
	"github.com/medispatch/engine/core/recommend/runstore"
	"github.com/medispatch/engine/core/roster"
	"github.com/medispatch/engine/internal/cache"
	"github.com/medispatch/engine/internal/eventbus"
)

// DefaultTopN is the number of recommended candidates returned when the
// request does not specify one.
const DefaultTopN = 3

// Recommender sequences eligibility, ETA, fatigue and coverage evaluation
// into a ranked, explained recommendation. Invocations are stateless and may
// run concurrently; the only shared state is read access to the roster and
// the rarely-written weight configuration.
type Recommender struct {
	roster   roster.Store
	filter   EligibilityFilter
	eta      *eta.Estimator
	fatigue  fatigue.Scorer
	coverage *coverage.Assessor
	weights  *WeightResolver
	runs     runstore.Store
	log      logger.Logger

	audit   audit.Sink
	sink    metrics.MetricsSink
	bus     eventbus.EventBus
	monitor monitoring.Monitor
	explain *explainer

	now func() time.Time
}

// NewRecommender creates a Recommender. All parameters are required; optional
// collaborators are attached with the Set methods.
func NewRecommender(rs roster.Store, est *eta.Estimator, fs fatigue.Scorer, cov *coverage.Assessor, wr *WeightResolver, store runstore.Store, log logger.Logger) (*Recommender, error) {
	if rs == nil || est == nil || cov == nil || wr == nil || store == nil {
		return nil, fmt.Errorf("recommend: nil parameter provided to NewRecommender")
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Recommender{
		roster:   rs,
		filter:   NewEligibilityFilter(fs),
		eta:      est,
		fatigue:  fs,
		coverage: cov,
		weights:  wr,
		runs:     store,
		log:      log,
		audit:    audit.NopSink{},
		sink:     metrics.NopSink{},
		monitor:  monitoring.NopMonitor{},
		explain:  newExplainer(nil, 0),
		now:      time.Now,
	}, nil
}

// SetAuditSink configures the immutable audit log.
func (r *Recommender) SetAuditSink(s audit.Sink) {
	if s != nil {
		r.audit = s
	}
}

// SetMetricsSink configures the observability sink.
func (r *Recommender) SetMetricsSink(s metrics.MetricsSink) {
	if s != nil {
		r.sink = s
	}
}

// SetEventBus configures the in-process event bus.
func (r *Recommender) SetEventBus(b eventbus.EventBus) { r.bus = b }

// Runs exposes the persisted run store for querying past runs.
func (r *Recommender) Runs() runstore.Store { return r.runs }

// SetMonitor configures the error monitor for degraded paths.
func (r *Recommender) SetMonitor(m monitoring.Monitor) {
	if m != nil {
		r.monitor = m
	}
}

// SetExplanationCache configures the TTL cache backing explanations.
func (r *Recommender) SetExplanationCache(c cache.Cache, ttl time.Duration) {
	r.explain = newExplainer(c, ttl)
}

// RecommendUnits scores and ranks candidate units for the incident. Only
// input validation errors and caller cancellation surface as errors; every
// collaborator failure degrades into a lower-confidence result because the
// advisory path must never block dispatch.
func (r *Recommender) RecommendUnits(ctx context.Context, req Request) (*Recommendation, error) {
	started := r.now()
	incident := model.Incident{
		ID:                   req.IncidentID,
		OrganizationID:       req.OrganizationID,
		ZoneID:               req.ZoneID,
		CallType:             req.CallType,
		Location:             req.SceneLocation,
		RequiredCapabilities: req.RequiredCapabilities,
		ReportedAt:           started,
	}
	if err := incident.Validate(); err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	topN := req.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	// Weights are read once at run start so concurrent configuration updates
	// cannot skew a pass midway.
	weights := r.weights.Resolve(req.OrganizationID, req.CallType)

	rec := &Recommendation{
		RunID:          uuid.NewString(),
		IncidentID:     req.IncidentID,
		OrganizationID: req.OrganizationID,
		CallType:       req.CallType,
		WeightsUsed:    weights,
		CreatedAt:      started,
	}

	units, err := r.roster.Units(ctx, req.OrganizationID)
	if err != nil {
		r.log.Errorf("roster query failed, returning empty recommendation: %v", err)
		r.monitor.CaptureException(err, map[string]string{"component": "recommender", "incident": req.IncidentID})
		rec.Confidence = model.ConfidenceLow
		rec.Reason = "unit roster unavailable"
		rec.Degraded = true
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		r.finish(ctx, rec, started)
		return rec, nil
	}

	eligible, excluded := r.filter.Filter(units, req.RequiredCapabilities, req.CallType)
	for _, ex := range excluded {
		unitsExcluded.WithLabelValues(ex.Reason.String()).Inc()
		if ex.Reason == ExclFlightCeiling {
			// Regulatory hard gates are logged and audited, never scored.
			r.log.Warnf("unit %s excluded: daily flight-hour ceiling reached", ex.UnitID)
		} else {
			r.log.Debugf("unit %s excluded: %s", ex.UnitID, ex.Reason)
		}
	}

	if len(eligible) == 0 {
		emptyRunsTotal.Inc()
		rec.Confidence, rec.Reason = classifyConfidence(nil)
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		r.finish(ctx, rec, started)
		return rec, nil
	}

	scored := r.scoreCandidates(ctx, eligible, incident, weights, rec)

	// Deterministic ranking: total score descending, ties broken by unit id.
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].TotalScore != scored[j].TotalScore {
			return scored[i].TotalScore > scored[j].TotalScore
		}
		return scored[i].UnitID < scored[j].UnitID
	})
	for i := range scored {
		scored[i].Rank = i + 1
		scored[i].Explanation = r.explain.Explain(ctx, scored[i])
	}

	rec.AllCandidates = scored
	if len(scored) > topN {
		rec.Recommendations = scored[:topN]
	} else {
		rec.Recommendations = scored
	}
	rec.Confidence, rec.Reason = classifyConfidence(scored)
	if rec.Degraded && rec.Confidence == model.ConfidenceHigh {
		rec.Confidence = model.ConfidenceMedium
	}

	// Respect cancellation before persistence: a cancelled run leaves no
	// partial rows behind.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.finish(ctx, rec, started)
	return rec, nil
}

// scoreCandidates fans out the three independent evaluations per candidate
// and joins before combining. Zone coverage is memoized per zone since
// candidates share zones.
func (r *Recommender) scoreCandidates(ctx context.Context, eligible []model.Unit, incident model.Incident, weights Weights, rec *Recommendation) []CandidateScore {
	type zoneEntry struct {
		risk coverage.RiskLevel
		ok   bool
	}
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		zoneRisks = make(map[string]zoneEntry)
	)
	scored := make([]CandidateScore, len(eligible))

	zoneRisk := func(zoneID string) (coverage.RiskLevel, bool) {
		mu.Lock()
		e, seen := zoneRisks[zoneID]
		mu.Unlock()
		if seen {
			return e.risk, e.ok
		}
		snap, err := r.coverage.AssessDispatch(ctx, incident.OrganizationID, zoneID)
		entry := zoneEntry{}
		if err != nil {
			r.log.Warnf("coverage assessment for zone %s failed: %v", zoneID, err)
		} else {
			entry = zoneEntry{risk: snap.Risk, ok: true}
		}
		mu.Lock()
		zoneRisks[zoneID] = entry
		mu.Unlock()
		return entry.risk, entry.ok
	}

	for i, u := range eligible {
		wg.Add(1)
		go func(i int, u model.Unit) {
			defer wg.Done()
			defer r.monitor.Recover()

			est := r.eta.Estimate(ctx, u.Location, incident.Location, incident.CallType)
			fat := r.fatigue.Assess(u, rec.CreatedAt)
			risk, covOK := zoneRisk(u.ZoneID)

			cs := CandidateScore{
				UnitID:            u.ID,
				UnitName:          u.Name,
				ETAMinutes:        est.Minutes,
				ETAFallback:       est.Fallback,
				ETAScore:          est.Score,
				AvailabilityScore: availabilityScore(u.Status),
				CapabilityScore:   capabilityScore(u.Capabilities),
				FatigueScore:      fat.Score,
			}
			if covOK {
				cs.CoverageScore = coverageScore(risk)
			} else {
				cs.CoverageScore = 0.65
			}

			mu.Lock()
			if est.Fallback {
				etaFallbacks.Inc()
				rec.Degraded = true
			}
			if !covOK {
				rec.Degraded = true
			}
			scored[i] = cs
			mu.Unlock()
		}(i, u)
	}
	wg.Wait()

	// Cost is relative to the cheapest candidate, so it is computed after the
	// join.
	minCost := 0.0
	for _, u := range eligible {
		if u.CostPerHour > 0 && (minCost == 0 || u.CostPerHour < minCost) {
			minCost = u.CostPerHour
		}
	}
	for i, u := range eligible {
		scored[i].CostScore = costScore(u.CostPerHour, minCost)
		scored[i].TotalScore = SubScores{
			ETA:          scored[i].ETAScore,
			Availability: scored[i].AvailabilityScore,
			Capability:   scored[i].CapabilityScore,
			Fatigue:      scored[i].FatigueScore,
			Coverage:     scored[i].CoverageScore,
			Cost:         scored[i].CostScore,
		}.Combine(weights)
	}
	return scored
}

// finish persists the run and notifies the side collaborators. Failures here
// degrade the payload, never the response.
func (r *Recommender) finish(ctx context.Context, rec *Recommendation, started time.Time) {
	run := runstore.Run{
		ID:             rec.RunID,
		IncidentID:     rec.IncidentID,
		OrganizationID: rec.OrganizationID,
		CallType:       rec.CallType,
		Confidence:     rec.Confidence,
		Reason:         rec.Reason,
		WeightsUsed:    rec.WeightsUsed.Map(),
		Degraded:       rec.Degraded,
		CreatedAt:      rec.CreatedAt,
	}
	for _, cs := range rec.AllCandidates {
		run.Candidates = append(run.Candidates, runstore.Candidate(cs))
	}
	for _, cs := range rec.Recommendations {
		run.RecommendedUnitIDs = append(run.RecommendedUnitIDs, cs.UnitID)
	}
	if err := r.runs.Append(ctx, run); err != nil {
		r.log.Errorf("run persistence failed: %v", err)
		r.monitor.CaptureException(err, map[string]string{"component": "recommender", "run": rec.RunID})
		rec.Degraded = true
	}

	if err := r.audit.Record(ctx, audit.Event{
		ID:        uuid.NewString(),
		Time:      r.now(),
		Domain:    "dispatch",
		Operation: "recommend_units",
		Inputs: map[string]any{
			"incident_id": rec.IncidentID,
			"call_type":   rec.CallType.String(),
		},
		Outputs: map[string]any{
			"run_id":            rec.RunID,
			"recommended_units": run.RecommendedUnitIDs,
			"candidates_scored": len(rec.AllCandidates),
			"reason":            rec.Reason,
		},
		Confidence: rec.Confidence.String(),
		Actor:      "engine",
	}); err != nil {
		r.log.Errorf("audit record failed: %v", err)
	}

	if r.bus != nil {
		r.bus.Publish(RunEvent{
			RunID:      rec.RunID,
			IncidentID: rec.IncidentID,
			CallType:   rec.CallType,
			Confidence: rec.Confidence,
			Candidates: len(rec.AllCandidates),
			Degraded:   rec.Degraded,
		})
	}

	results := make([]metrics.CandidateResult, 0, len(rec.AllCandidates))
	for _, cs := range rec.AllCandidates {
		results = append(results, metrics.CandidateResult{
			RunID:          rec.RunID,
			IncidentID:     rec.IncidentID,
			OrganizationID: rec.OrganizationID,
			CallType:       rec.CallType,
			UnitID:         cs.UnitID,
			Rank:           cs.Rank,
			TotalScore:     cs.TotalScore,
			ETAMinutes:     cs.ETAMinutes,
			ETAFallback:    cs.ETAFallback,
			Confidence:     rec.Confidence,
			ScoredAt:       rec.CreatedAt,
		})
	}
	if len(results) > 0 {
		if err := r.sink.RecordCandidateResult(results); err != nil {
			r.log.Errorf("metrics sink error: %v", err)
		}
	}

	runsScored.WithLabelValues(rec.CallType.String(), rec.Confidence.String()).Inc()
	runDuration.WithLabelValues(rec.CallType.String()).Observe(r.now().Sub(started).Seconds())
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
