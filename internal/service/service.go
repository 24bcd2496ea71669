// Package service provides the main application service that integrates all components.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/mandrykarina/GC/internal/bench"
	"github.com/mandrykarina/GC/internal/metrics"
	"github.com/mandrykarina/GC/internal/repository"
	"github.com/mandrykarina/GC/internal/scenario"
	"github.com/mandrykarina/GC/internal/simulation"
	"github.com/mandrykarina/GC/internal/storage"
	"github.com/mandrykarina/GC/pkg/config"
	apperrors "github.com/mandrykarina/GC/pkg/errors"
	"github.com/mandrykarina/GC/pkg/model"
	"github.com/mandrykarina/GC/pkg/utils"
)

// Service is the main application service.
type Service struct {
	config  *config.Config
	logger  utils.Logger
	clock   utils.Clock
	db      *repository.Repositories
	runs    repository.RunRepository
	storage storage.Storage
	export  *storage.Exporter
	metrics *metrics.Metrics

	mu    sync.Mutex
	stats ServiceStats
}

// Option configures a Service.
type Option func(*Service)

// WithRunRepository sets the run history store. The database is not
// opened when a repository is supplied.
func WithRunRepository(runs repository.RunRepository) Option {
	return func(s *Service) {
		s.runs = runs
	}
}

// WithStorage sets the report store. Storage is not built from config when
// one is supplied.
func WithStorage(st storage.Storage) Option {
	return func(s *Service) {
		s.storage = st
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock sets the clock passed to runners.
func WithClock(clock utils.Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New creates a new Service instance.
func New(cfg *config.Config, logger utils.Logger, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if logger == nil {
		logger = utils.NewDefaultLogger(utils.LevelInfo, nil)
	}

	s := &Service{
		config: cfg,
		logger: logger,
		clock:  utils.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	return s, nil
}

// Initialize initializes all service components.
func (s *Service) Initialize(ctx context.Context) error {
	s.logger.Info("Initializing service components...")

	if err := s.initDatabase(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := s.initStorage(ctx); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	s.logger.Info("Service components initialized successfully")
	return nil
}

// initDatabase opens the run history database and migrates its schema.
func (s *Service) initDatabase(ctx context.Context) error {
	if s.runs != nil {
		return nil
	}
	s.logger.Info("Connecting to database (%s)...", s.config.Database.Type)

	dbConfig := repository.FromConfig(&s.config.Database)
	gormDB, err := repository.NewGormDB(dbConfig)
	if err != nil {
		return err
	}

	repos, err := repository.NewRepositories(gormDB, dbConfig)
	if err != nil {
		return err
	}
	if err := repos.Migrate(ctx); err != nil {
		_ = repos.Close()
		return err
	}

	s.db = repos
	s.runs = repos.Runs
	s.logger.Info("Database connection established")
	return nil
}

// initStorage initializes the report store and exporter.
func (s *Service) initStorage(ctx context.Context) error {
	if s.storage == nil {
		s.logger.Info("Initializing storage (%s)...", s.config.Storage.Type)

		store, err := storage.NewStorage(ctx, &s.config.Storage)
		if err != nil {
			return err
		}
		s.storage = store
	}

	s.export = storage.NewExporter(s.storage, s.config.Simulation.ExportPrefix, s.logger)
	s.logger.Info("Storage initialized")
	return nil
}

// Start marks the service as running. Components must be initialized.
func (s *Service) Start(_ context.Context) error {
	if s.runs == nil || s.export == nil {
		return fmt.Errorf("service is not initialized")
	}

	s.mu.Lock()
	s.stats.Running = true
	s.mu.Unlock()

	s.logger.Info("Service started successfully")
	return nil
}

// Stop stops the service gracefully.
func (s *Service) Stop() error {
	s.logger.Info("Stopping service...")

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection: %v", err)
		}
	}

	s.mu.Lock()
	s.stats.Running = false
	s.mu.Unlock()

	s.logger.Info("Service stopped")
	return nil
}

// IsRunning returns whether the service is running.
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats.Running
}

// Config returns the service configuration.
func (s *Service) Config() *config.Config { return s.config }

// Metrics returns the metrics fed by every run.
func (s *Service) Metrics() *metrics.Metrics { return s.metrics }

// SimulateRequest describes a generated scenario run. Zero fields fall
// back to the simulation defaults of the configuration.
type SimulateRequest struct {
	HeapSize     uint64   `json:"heap_size"`
	NumObjects   int      `json:"num_objects"`
	ObjectSize   uint64   `json:"object_size"`
	ScenarioType string   `json:"scenario_type"`
	Collectors   []string `json:"collectors,omitempty"`
}

func (s *Service) withDefaults(req SimulateRequest) SimulateRequest {
	def := s.config.Simulation
	if req.HeapSize == 0 {
		req.HeapSize = def.HeapSize
	}
	if req.NumObjects == 0 {
		req.NumObjects = def.NumObjects
	}
	if req.ObjectSize == 0 {
		req.ObjectSize = def.ObjectSize
	}
	if req.ScenarioType == "" {
		req.ScenarioType = def.Scenario
	}
	return req
}

// Simulate generates the requested preset scenario and compares the
// collectors on it.
func (s *Service) Simulate(ctx context.Context, req SimulateRequest) (*model.Comparison, error) {
	req = s.withDefaults(req)

	kind, err := scenario.ParseGraphKind(req.ScenarioType)
	if err != nil {
		return nil, err
	}
	gen := scenario.GenerateConfig{
		Kind:       kind,
		NumObjects: req.NumObjects,
		ObjectSize: req.ObjectSize,
		HeapSize:   req.HeapSize,
	}
	if err := gen.Validate(&s.config.Limits); err != nil {
		return nil, err
	}

	sc, err := scenario.Preset(req.ScenarioType, req.NumObjects, req.ObjectSize, req.HeapSize)
	if err != nil {
		return nil, err
	}
	return s.RunScenario(ctx, sc, req.Collectors...)
}

// RunScenario compares collectors on sc, then records the run in history
// and exports its report. History and export failures are logged; the
// comparison is still returned.
func (s *Service) RunScenario(ctx context.Context, sc *model.Scenario, collectors ...string) (*model.Comparison, error) {
	var events *storage.EventLog
	opts := []simulation.Option{
		simulation.WithLogger(s.logger),
		simulation.WithClock(s.clock),
		simulation.WithMetrics(s.metrics),
	}
	if s.config.Simulation.ExportEvents && s.export != nil {
		events = storage.NewEventLog()
		opts = append(opts, simulation.WithEventRecorder(events))
	}

	runner := simulation.NewRunner(simulation.Config{
		LogSteps: s.config.Simulation.LogSteps,
		Snapshot: s.config.Simulation.Snapshot,
	}, opts...)

	cmp, err := runner.Compare(ctx, sc, collectors...)
	if err != nil {
		s.recordRun("", err)
		return nil, err
	}

	s.persist(ctx, cmp, events)
	s.recordRun(cmp.RunID, nil)
	return cmp, nil
}

func (s *Service) persist(ctx context.Context, cmp *model.Comparison, events *storage.EventLog) {
	log := s.logger.WithField("run_id", cmp.RunID)

	if s.runs != nil {
		if err := s.runs.SaveRun(ctx, cmp); err != nil {
			log.Warn("Failed to save run history: %v", err)
		}
	}
	if s.export == nil {
		return
	}
	if _, err := s.export.ExportReport(ctx, cmp); err != nil {
		log.Warn("Failed to export report: %v", err)
	}
	if events != nil {
		if _, err := s.export.ExportEvents(ctx, cmp.RunID, events); err != nil {
			log.Warn("Failed to export events: %v", err)
		}
	}
}

func (s *Service) recordRun(runID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.stats.RunsFailed++
		return
	}
	s.stats.RunsCompleted++
	s.stats.LastRunID = runID
}

// History returns the most recent runs, newest first. A non-positive limit
// uses the configured history size.
func (s *Service) History(ctx context.Context, limit int) ([]*model.Comparison, error) {
	if s.runs == nil {
		return nil, apperrors.ErrUnavailable
	}
	if limit <= 0 {
		limit = s.config.Simulation.HistorySize
	}
	return s.runs.ListRuns(ctx, limit)
}

// GetRun returns a run from history, falling back to its exported report.
func (s *Service) GetRun(ctx context.Context, runID string) (*model.Comparison, error) {
	if s.runs != nil {
		cmp, err := s.runs.GetRun(ctx, runID)
		if err == nil || !apperrors.IsNotFound(err) || s.export == nil {
			return cmp, err
		}
	}
	if s.export == nil {
		return nil, apperrors.ErrUnavailable
	}
	return s.export.LoadReport(ctx, runID)
}

// DeleteRun removes a run from history and its exported artifacts.
func (s *Service) DeleteRun(ctx context.Context, runID string) error {
	if s.runs != nil {
		if err := s.runs.DeleteRun(ctx, runID); err != nil {
			return err
		}
	}
	if s.export != nil {
		for _, key := range []string{s.export.ReportKey(runID), s.export.EventsKey(runID)} {
			if err := s.storage.Delete(ctx, key); err != nil {
				return err
			}
		}
	}
	return nil
}

// Bench runs a sweep and, when name is set, exports the results under it.
func (s *Service) Bench(ctx context.Context, cfg bench.Config, name string) ([]model.BenchCase, error) {
	runner := bench.NewRunner(bench.WithLogger(s.logger), bench.WithClock(s.clock))
	cases, err := runner.Run(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if name != "" && s.export != nil {
		key, err := s.export.ExportBench(ctx, name, cases)
		if err != nil {
			return cases, err
		}
		s.logger.Info("Bench results stored at %s", s.storage.GetURL(key))
	}
	return cases, nil
}

// Stats returns service statistics.
func (s *Service) Stats() ServiceStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// HealthCheck performs a health check on the service.
func (s *Service) HealthCheck(ctx context.Context) error {
	// Check database connection
	if s.db != nil {
		if err := s.db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database health check failed: %w", err)
		}
	}

	return nil
}

// ServiceStats holds service statistics.
type ServiceStats struct {
	Running       bool   `json:"running"`
	RunsCompleted int64  `json:"runs_completed"`
	RunsFailed    int64  `json:"runs_failed"`
	LastRunID     string `json:"last_run_id,omitempty"`
}
