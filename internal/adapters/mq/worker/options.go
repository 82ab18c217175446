package worker

import (
	"github.com/okian/taper/pkg/logger"
)

// Option applies a configuration option to the MemoryWorker.
type Option func(*MemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *MemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(lg logger.Logger) Option {
	return func(w *MemoryWorker) {
		if lg != nil {
			w.logger = lg
		}
	}
}
