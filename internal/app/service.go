// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	obsqueue "github.com/okian/taper/internal/adapters/mq/queue"
	workerpool "github.com/okian/taper/internal/adapters/mq/worker"
	"github.com/okian/taper/internal/adapters/repository"
	"github.com/okian/taper/internal/domain/dedupe"
	"github.com/okian/taper/internal/domain/engine"
	"github.com/okian/taper/internal/domain/model"
	"github.com/okian/taper/internal/domain/timeline"
	"github.com/okian/taper/pkg/logger"
	"github.com/okian/taper/pkg/metrics"
)

// Service wires the ingestion pipeline and the recovery engine behind the
// interfaces the HTTP API consumes.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	deduper dedupe.Deduper
	queue   obsqueue.Queue
	pool    *workerpool.Pool
	engine  *engine.Engine

	// Configuration
	workerCount    int
	queueSize      int
	dedupeSize     int
	shardCount     int
	defaultWindow  int
	baseThresholds *model.RiskThresholds

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the observation queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets how many shards the history store uses.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithDefaultWindow sets the display window used when a request omits it.
func WithDefaultWindow(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.defaultWindow = days
		}
	}
}

// WithBaseThresholds overrides the built-in base risk thresholds.
func WithBaseThresholds(t model.RiskThresholds) Option {
	return func(s *Service) {
		s.baseThresholds = &t
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(lg logger.Logger) Option {
	return func(s *Service) {
		if lg != nil {
			s.logger = lg
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU() * 2,
		queueSize:     100000,
		dedupeSize:    50000,
		shardCount:    32,
		defaultWindow: 7,
		stopCh:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting recovery analytics service...")

	store := repository.NewMemStore(
		repository.WithShardCount(s.shardCount),
	)
	store.StartMetricsUpdater(ctx)
	s.store = store

	s.deduper = dedupe.NewMemoryDeduper(
		dedupe.WithCapacity(s.dedupeSize),
	)
	s.queue = obsqueue.NewMemoryQueue(
		obsqueue.WithCapacity(s.queueSize),
		obsqueue.WithBufferSize(s.queueSize),
	)

	engineOpts := []engine.Option{
		engine.WithDefaultWindow(s.defaultWindow),
	}
	if s.baseThresholds != nil {
		engineOpts = append(engineOpts, engine.WithBaseThresholds(*s.baseThresholds))
	}
	s.engine = engine.New(engineOpts...)

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.store)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "recovery analytics service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("shards", s.shardCount),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping recovery analytics service...")

	if s.pool != nil {
		// Pool shutdown closes the queue first, so workers drain what is
		// already enqueued before exiting.
		_ = s.pool.Shutdown(ctx)
	}

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(ctx, "recovery analytics service stopped")
}

// SeenAndRecord atomically checks if an observation id was seen and records
// it if not. Returns true if the observation was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	return s.deduper.SeenAndRecord(ctx, id)
}

// Unrecord removes an observation ID from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue submits an observation for asynchronous ingestion.
func (s *Service) Enqueue(ctx context.Context, o model.Observation) bool {
	ok := s.queue.Enqueue(ctx, o)
	if !ok {
		s.logger.Warn(ctx, "observation queue rejected submission",
			logger.String("observationID", o.ObservationID),
			logger.String("athleteID", o.AthleteID),
		)
	}
	return ok
}

// SetGenetics replaces an athlete's genetic profile.
func (s *Service) SetGenetics(ctx context.Context, athleteID string, entries []model.GeneticProfileEntry) error {
	return s.store.SetGenetics(ctx, athleteID, entries)
}

// RecoveryModel computes the recovery model for an athlete over the given
// display window. An empty asOf anchors the plan on the athlete's latest
// ingested day; the engine itself never consults the wall clock.
func (s *Service) RecoveryModel(ctx context.Context, athleteID string, windowDays int, asOf string) (model.RecoveryModel, error) {
	start := time.Now()
	defer func() {
		metrics.RecordModelComputeLatency(float64(time.Since(start).Milliseconds()))
	}()

	hist, err := s.store.History(ctx, athleteID)
	if err != nil {
		metrics.RecordModelComputeError()
		return model.RecoveryModel{}, err
	}

	anchor, err := s.resolveAsOf(asOf, hist)
	if err != nil {
		metrics.RecordModelComputeError()
		return model.RecoveryModel{}, err
	}

	rm, err := s.engine.Compute(ctx, engine.Input{
		Loads:      hist.Loads,
		Biometrics: hist.Biometrics,
		Genetics:   hist.Genetics,
		AsOf:       anchor,
		WindowDays: windowDays,
	})
	if err != nil {
		metrics.RecordModelComputeError()
		return model.RecoveryModel{}, err
	}

	metrics.RecordModelComputation()
	metrics.RecordFlagsEmitted(len(rm.Flags))
	return rm, nil
}

// resolveAsOf picks the plan anchor: the explicit as_of when given, otherwise
// the latest ingested day across both sample series.
func (s *Service) resolveAsOf(asOf string, hist repository.History) (time.Time, error) {
	if asOf != "" {
		return timeline.ParseDay(asOf)
	}

	latest := ""
	if n := len(hist.Loads); n > 0 {
		latest = hist.Loads[n-1].Date
	}
	if n := len(hist.Biometrics); n > 0 && hist.Biometrics[n-1].Date > latest {
		latest = hist.Biometrics[n-1].Date
	}
	if latest == "" {
		return time.Time{}, engine.ErrMissingAsOf
	}
	return timeline.ParseDay(latest)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"shardCount":  s.shardCount,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["athletes"] = s.store.Count(ctx)
		stats["records"] = s.store.RecordCount(ctx)
		stats["dedupeEntries"] = s.Size()

		metrics.UpdateQueueSize(queueLen)
	}

	return stats
}
