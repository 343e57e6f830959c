package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apicoverage "github.com/medispatch/engine/api/coverage"
	apifeedback "github.com/medispatch/engine/api/feedback"
	apirecommend "github.com/medispatch/engine/api/recommend"
	"github.com/medispatch/engine/config"
	coreaudit "github.com/medispatch/engine/core/audit"
	"github.com/medispatch/engine/core/coverage"
	"github.com/medispatch/engine/core/eta"
	"github.com/medispatch/engine/core/fatigue"
	"github.com/medispatch/engine/core/feedback"
	feedbackstore "github.com/medispatch/engine/core/feedback/store"
	"github.com/medispatch/engine/core/forecast"
	corehistory "github.com/medispatch/engine/core/history"
	coremetrics "github.com/medispatch/engine/core/metrics"
	coremon "github.com/medispatch/engine/core/monitoring"
	"github.com/medispatch/engine/core/recommend"
	"github.com/medispatch/engine/core/recommend/runstore"
	coreroster "github.com/medispatch/engine/core/roster"
	"github.com/medispatch/engine/core/turnaround"
	"github.com/medispatch/engine/infra/audit"
	infrahistory "github.com/medispatch/engine/infra/history"
	"github.com/medispatch/engine/infra/logger"
	inframetrics "github.com/medispatch/engine/infra/metrics"
	"github.com/medispatch/engine/infra/monitoring"
	infraroster "github.com/medispatch/engine/infra/roster"
	"github.com/medispatch/engine/infra/routing"
	"github.com/medispatch/engine/internal/cache"
	"github.com/medispatch/engine/internal/eventbus"
	"github.com/medispatch/engine/jobs/coveragewatch"
)

// Service wires the engine's collaborators from configuration and runs the
// HTTP surface plus background jobs.
type Service struct {
	Recommender *recommend.Recommender
	Learner     *feedback.Learner
	Assessor    *coverage.Assessor
	Forecaster  *forecast.Forecaster
	Scorer      fatigue.Scorer
	Roster      coreroster.Store

	cfg     *config.Config
	bus     eventbus.EventBus
	sink    coremetrics.MetricsSink
	watcher *coveragewatch.Watcher
	log     logger.Logger
	monitor coremon.Monitor
	closers []func() error
}

// New creates a Service from the configuration.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	svc := &Service{cfg: cfg, log: logg, monitor: coremon.NopMonitor{}}

	if cfg.Sentry.DSN != "" {
		mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
		if err != nil {
			return nil, fmt.Errorf("sentry: %w", err)
		}
		svc.monitor = mon
	}

	rosterStore, err := svc.buildRoster(cfg.Roster)
	if err != nil {
		return nil, err
	}
	svc.Roster = rosterStore

	hist, err := svc.buildHistory(ctx, cfg.History)
	if err != nil {
		return nil, err
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	svc.sink = sink

	var route eta.RouteEstimator
	if cfg.Routing.Enabled {
		client, err := routing.NewClient(cfg.Routing.HTTP)
		if err != nil {
			return nil, fmt.Errorf("routing client: %w", err)
		}
		client.SetMetricsSink(sink)
		route = client
	}
	est := eta.New(route, cfg.Engine.ETA, logg)
	svc.Scorer = fatigue.NewScorer(cfg.Engine.Fatigue)
	svc.Forecaster = forecast.New(hist, cfg.Engine.Forecast)
	ta := turnaround.New(cfg.Engine.Turnaround, est)
	svc.Assessor = coverage.New(rosterStore, hist, ta, svc.Forecaster, cfg.Engine.Coverage, logg)

	weights := recommend.NewWeightResolver()
	cfg.Engine.ApplyWeights(weights)

	runs, err := svc.buildRunStore(cfg.Storage)
	if err != nil {
		return nil, err
	}
	rec, err := recommend.NewRecommender(rosterStore, est, svc.Scorer, svc.Assessor, weights, runs, logg)
	if err != nil {
		return nil, err
	}
	svc.Recommender = rec

	auditSink, err := svc.buildAudit(cfg.Audit)
	if err != nil {
		return nil, err
	}
	rec.SetAuditSink(auditSink)
	rec.SetMetricsSink(sink)
	rec.SetMonitor(svc.monitor)

	expl, ttl, err := svc.buildCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	rec.SetExplanationCache(expl, ttl)

	svc.bus = eventbus.New()
	rec.SetEventBus(svc.bus)

	fbStore, err := svc.buildFeedbackStore(cfg.Storage)
	if err != nil {
		return nil, err
	}
	learner, err := feedback.NewLearner(fbStore, runs, logg)
	if err != nil {
		return nil, err
	}
	learner.SetAuditSink(auditSink)
	learner.SetMetricsSink(sink)
	svc.Learner = learner

	if cfg.Jobs.CoverageWatch.Enabled {
		svc.watcher = coveragewatch.New(svc.Assessor, svc.Forecaster, cfg.Jobs.CoverageWatch.JobConfig(), svc.bus, sink, logg)
	}
	return svc, nil
}

func (s *Service) buildRoster(cfg config.RosterConfig) (coreroster.Store, error) {
	switch cfg.Mode {
	case "mqtt":
		store := coreroster.NewMemoryStore()
		sub, err := infraroster.NewMQTTSubscriber(cfg.MQTT, store)
		if err != nil {
			return nil, fmt.Errorf("roster subscriber: %w", err)
		}
		s.closers = append(s.closers, func() error {
			sub.Close()
			return nil
		})
		return store, nil
	default:
		store, err := infraroster.NewStaticStore(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("roster file: %w", err)
		}
		return store, nil
	}
}

func (s *Service) buildHistory(ctx context.Context, cfg config.HistoryConfig) (corehistory.Store, error) {
	if cfg.Backend != "postgres" {
		return corehistory.NewMemoryStore(), nil
	}
	store, err := infrahistory.NewPostgresStore(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}
	s.closers = append(s.closers, func() error { store.Close(); return nil })
	return store, nil
}

func (s *Service) buildRunStore(cfg config.StorageConfig) (runstore.Store, error) {
	if cfg.RunStorePath == "" {
		return runstore.NewMemoryStore(), nil
	}
	store, err := runstore.NewSQLiteStore(cfg.RunStorePath)
	if err != nil {
		return nil, fmt.Errorf("run store: %w", err)
	}
	s.closers = append(s.closers, store.Close)
	return store, nil
}

func (s *Service) buildFeedbackStore(cfg config.StorageConfig) (feedbackstore.Store, error) {
	if cfg.FeedbackStorePath == "" {
		return feedbackstore.NewMemoryStore(), nil
	}
	store, err := feedbackstore.NewSQLiteStore(cfg.FeedbackStorePath)
	if err != nil {
		return nil, fmt.Errorf("feedback store: %w", err)
	}
	s.closers = append(s.closers, store.Close)
	return store, nil
}

func (s *Service) buildAudit(cfg config.AuditConfig) (coreaudit.Sink, error) {
	var sinks []coreaudit.Sink
	if cfg.File.Path != "" {
		sink, err := audit.NewRotatingJSONLSink(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("audit file: %w", err)
		}
		s.closers = append(s.closers, sink.Close)
		sinks = append(sinks, sink)
	}
	if cfg.MQTT.Broker != "" {
		sink, err := audit.NewMQTTSink(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("audit mqtt: %w", err)
		}
		s.closers = append(s.closers, sink.Close)
		sinks = append(sinks, sink)
	}
	switch len(sinks) {
	case 0:
		return coreaudit.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return audit.NewMultiSink(sinks...), nil
	}
}

func (s *Service) buildCache(cfg config.CacheConfig) (cache.Cache, time.Duration, error) {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if cfg.Backend != "redis" {
		return cache.NewMemory(0), ttl, nil
	}
	c, err := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
	if err != nil {
		return nil, 0, fmt.Errorf("redis cache: %w", err)
	}
	s.closers = append(s.closers, c.Close)
	return c, ttl, nil
}

// Handler returns the JSON API routed on a fresh mux.
func (s *Service) Handler() http.Handler {
	token := s.cfg.API.Token
	mux := http.NewServeMux()
	mux.Handle("/api/recommendations", apirecommend.NewRecommendHandler(s.Recommender, token))
	mux.Handle("/api/recommendations/runs", apirecommend.NewRunsHandler(s.Recommender.Runs(), token))
	mux.Handle("/api/units/fatigue", apirecommend.NewFatigueHandler(s.Roster, s.Scorer, token))
	mux.Handle("/api/coverage", apicoverage.NewAssessHandler(s.Assessor, token))
	mux.Handle("/api/coverage/forecast", apicoverage.NewForecastHandler(s.Forecaster, token))
	mux.Handle("/api/feedback", apifeedback.NewUserFeedbackHandler(s.Learner, token))
	mux.Handle("/api/feedback/outcomes", apifeedback.NewOutcomeHandler(s.Learner, token))
	mux.Handle("/api/feedback/patterns", apifeedback.NewPatternsHandler(s.Learner, token))
	return mux
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	inframetrics.StartEventCollector(ctx, s.bus, s.sink)
	if s.watcher != nil {
		if err := s.watcher.Start(ctx); err != nil {
			return fmt.Errorf("coverage watch: %w", err)
		}
		defer s.watcher.Stop()
	}
	if s.cfg.API.PrometheusEnabled {
		go func() {
			if err := inframetrics.StartPromServer(ctx, s.cfg.API.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{Addr: s.cfg.API.Addr, Handler: s.Handler()}
	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()
	s.log.Infof("api listening on %s", s.cfg.API.Addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	s.monitor.Flush(2 * time.Second)
	return first
}
