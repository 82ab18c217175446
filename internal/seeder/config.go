// Package seeder generates synthetic athlete seasons and drives them through
// a running service instance, then reads back the computed recovery models.
package seeder

import (
	"sync/atomic"
	"time"
)

// Config controls a seeding run.
type Config struct {
	// BaseURL of the running service, e.g. http://localhost:9080.
	BaseURL string

	// Athletes is how many synthetic athletes to create.
	Athletes int

	// Days of history per athlete.
	Days int

	// Workers is the number of concurrent submitters.
	Workers int

	// Timeout for individual HTTP requests.
	Timeout time.Duration

	// WithGenetics uploads a genetic profile for every other athlete.
	WithGenetics bool

	// Verbose enables per-request logging.
	Verbose bool
}

// Stats tracks the outcome of a run.
type Stats struct {
	Submitted  atomic.Int64
	Duplicates atomic.Int64
	Failed     atomic.Int64
	Models     atomic.Int64
}
