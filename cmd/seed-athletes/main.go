package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/taper/internal/seeder"
	"github.com/okian/taper/pkg/logger"
)

// Default configuration constants.
const (
	defaultAthletes   = 50
	defaultDays       = 56
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:9080", "Base URL of the service")
		athletes     = flag.Int("athletes", defaultAthletes, "Number of athletes to seed")
		days         = flag.Int("days", defaultDays, "Days of history per athlete")
		workers      = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		withGenetics = flag.Bool("genetics", true, "Upload genetic profiles for every other athlete")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &seeder.Config{
		BaseURL:      *baseURL,
		Athletes:     *athletes,
		Days:         *days,
		Workers:      *workers,
		Timeout:      *timeout,
		WithGenetics: *withGenetics,
		Verbose:      *verbose,
	}

	if err := seeder.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("seeding failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
