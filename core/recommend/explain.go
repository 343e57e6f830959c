package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/medispatch/engine/internal/cache"
)

// Thresholds that decide which phrases appear in an explanation.
const (
	etaQuickThreshold        = 0.85
	fatigueRestedThreshold   = 0.9
	fatigueConcernThreshold  = 0.5
	capabilityThreshold      = 0.8
	coverageMinimalThreshold = 0.9
	coverageStrainThreshold  = 0.3
	costEffectiveThreshold   = 0.95
)

// explainShape captures the outcome of every threshold comparison the
// explanation text depends on. Candidates with equal shapes produce the
// same text, so the shape is the cache key.
type explainShape struct {
	quickETA bool
	fatigue  int8 // 1 rested, -1 concern, 0 neutral
	advanced bool
	coverage int8 // 1 minimal impact, -1 strain, 0 neutral
	cheap    bool
}

func shapeOf(cs CandidateScore) explainShape {
	s := explainShape{
		quickETA: cs.ETAScore >= etaQuickThreshold,
		advanced: cs.CapabilityScore >= capabilityThreshold,
		cheap:    cs.CostScore >= costEffectiveThreshold,
	}
	switch {
	case cs.FatigueScore >= fatigueRestedThreshold:
		s.fatigue = 1
	case cs.FatigueScore <= fatigueConcernThreshold:
		s.fatigue = -1
	}
	switch {
	case cs.CoverageScore >= coverageMinimalThreshold:
		s.coverage = 1
	case cs.CoverageScore <= coverageStrainThreshold:
		s.coverage = -1
	}
	return s
}

// explainer assembles human-readable ranking explanations. Explanations for
// identical sub-score shapes repeat often across runs, so results are
// memoized in a TTL cache owned by the orchestrator.
type explainer struct {
	cache cache.Cache
	ttl   time.Duration
}

func newExplainer(c cache.Cache, ttl time.Duration) *explainer {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &explainer{cache: c, ttl: ttl}
}

// Explain names the sub-scores that drove the candidate's ranking.
func (e *explainer) Explain(ctx context.Context, cs CandidateScore) string {
	key := e.key(cs)
	if e.cache != nil {
		if v, ok := e.cache.Get(ctx, key); ok {
			return v
		}
	}
	text := buildExplanation(cs)
	if e.cache != nil {
		e.cache.Set(ctx, key, text, e.ttl)
	}
	return text
}

func (e *explainer) key(cs CandidateScore) string {
	s := shapeOf(cs)
	return fmt.Sprintf("expl:%t:%d:%t:%d:%t", s.quickETA, s.fatigue, s.advanced, s.coverage, s.cheap)
}

func buildExplanation(cs CandidateScore) string {
	s := shapeOf(cs)
	var parts []string
	if s.quickETA {
		parts = append(parts, "quick response time")
	}
	switch s.fatigue {
	case 1:
		parts = append(parts, "well-rested crew")
	case -1:
		parts = append(parts, "crew fatigue is a concern")
	}
	if s.advanced {
		parts = append(parts, "advanced capabilities on board")
	}
	switch s.coverage {
	case 1:
		parts = append(parts, "minimal coverage impact")
	case -1:
		parts = append(parts, "dispatch would strain zone coverage")
	}
	if s.cheap {
		parts = append(parts, "cost-effective")
	}
	if len(parts) == 0 {
		parts = append(parts, "balanced across all factors")
	}
	return strings.Join(parts, ", ")
}
