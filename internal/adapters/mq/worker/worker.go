// Package worker defines the background consumers that drain the observation
// queue and apply samples to the athlete history store.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/taper/internal/domain/model"
	"github.com/okian/taper/pkg/logger"
	"github.com/okian/taper/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 4 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Observation is what workers read off the queue.
type Observation = model.Observation

// Recorder applies ingested samples to an athlete's history.
type Recorder interface {
	UpsertLoad(ctx context.Context, athleteID string, load model.DailyLoad) error
	UpsertBiometric(ctx context.Context, athleteID string, rec model.BiometricRecord) error
}

// Queue defines how workers receive observations.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Observation
}

// Worker consumes observations until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker, letting in-flight work finish.
	Shutdown(ctx context.Context) error
}

// MemoryWorker implements Worker against the in-memory queue and store.
type MemoryWorker struct {
	queue    Queue
	recorder Recorder
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewMemoryWorker creates a worker.
func NewMemoryWorker(queue Queue, recorder Recorder, opts ...Option) *MemoryWorker {
	w := &MemoryWorker{
		queue:    queue,
		recorder: recorder,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *MemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	in := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case o, ok := <-in:
			if !ok {
				return
			}
			if err := w.processObservation(ctx, o); err != nil {
				w.logger.Error(ctx, "error processing observation", logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker.
func (w *MemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processObservation applies a single observation to the history store.
func (w *MemoryWorker) processObservation(ctx context.Context, o Observation) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	var err error
	switch o.Kind {
	case model.KindLoad:
		if o.Load == nil {
			err = fmt.Errorf("observation %s: kind %q without payload", o.ObservationID, o.Kind)
		} else {
			err = w.recorder.UpsertLoad(ctx, o.AthleteID, *o.Load)
		}
	case model.KindBiometric:
		if o.Biometric == nil {
			err = fmt.Errorf("observation %s: kind %q without payload", o.ObservationID, o.Kind)
		} else {
			err = w.recorder.UpsertBiometric(ctx, o.AthleteID, *o.Biometric)
		}
	default:
		err = fmt.Errorf("observation %s: unknown kind %q", o.ObservationID, o.Kind)
	}

	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "record_error")
		metrics.RecordErrorByType("record_error", "high")
		w.logger.Error(ctx, "recording observation failed",
			logger.String("observationID", o.ObservationID),
			logger.String("athleteID", o.AthleteID),
			logger.Error(err),
		)
		return err
	}

	metrics.RecordObservationIngested()
	return nil
}

// Pool manages a fixed set of workers.
type Pool struct {
	workers  []*MemoryWorker
	queue    Queue
	recorder Recorder

	logger logger.Logger
}

// NewPool creates a worker pool. A non-positive workerCount falls back to a
// CPU-proportional default.
func NewPool(workerCount int, queue Queue, recorder Recorder) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers:  make([]*MemoryWorker, workerCount),
		queue:    queue,
		recorder: recorder,
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		p.workers[i] = NewMemoryWorker(queue, recorder, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerActiveCount(workerCount)

	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for all workers to drain.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	metrics.UpdateWorkerActiveCount(0)
	return nil
}
