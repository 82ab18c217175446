package seeder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/taper/internal/domain/model"
	"github.com/okian/taper/pkg/logger"
)

// settleDelay gives the service's workers time to drain the queue before we
// read models back.
const settleDelay = 2 * time.Second

// Run generates seasons, submits them, and reads back one recovery model per
// athlete.
func Run(ctx context.Context, cfg *Config) error {
	lg := logger.Get().Named("seeder")
	stats := &Stats{}

	lg.Info(ctx, "generating seasons",
		logger.Int("athletes", cfg.Athletes),
		logger.Int("days", cfg.Days),
	)

	endDay := time.Now().UTC().Truncate(24 * time.Hour)
	seasons := make([]Season, cfg.Athletes)
	for i := range seasons {
		withGenetics := cfg.WithGenetics && i%2 == 0
		seasons[i] = generateSeason(endDay, cfg.Days, withGenetics)
	}

	c := newClient(cfg.BaseURL, cfg.Timeout)

	if err := submitSeasons(ctx, c, cfg, seasons, stats); err != nil {
		return err
	}

	lg.Info(ctx, "waiting for ingestion to settle")
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(settleDelay):
	}

	if err := verifyModels(ctx, c, cfg, seasons, stats, lg); err != nil {
		return err
	}

	lg.Info(ctx, "seeding complete",
		logger.Int("submitted", int(stats.Submitted.Load())),
		logger.Int("duplicates", int(stats.Duplicates.Load())),
		logger.Int("failed", int(stats.Failed.Load())),
		logger.Int("models", int(stats.Models.Load())),
	)

	if failed := stats.Failed.Load(); failed > 0 {
		return fmt.Errorf("%d observations failed to submit", failed)
	}
	return nil
}

// submitSeasons pushes all observations through a bounded worker pool.
func submitSeasons(ctx context.Context, c *client, cfg *Config, seasons []Season, stats *Stats) error {
	lg := logger.Get().Named("seeder")

	work := make(chan model.Observation)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for o := range work {
				if err := c.submitObservation(ctx, o, stats); err != nil && cfg.Verbose {
					lg.Warn(ctx, "submission failed", logger.Error(err))
				}
			}
		}()
	}

	for _, season := range seasons {
		for _, o := range season.Observations {
			select {
			case <-ctx.Done():
				close(work)
				wg.Wait()
				return ctx.Err()
			case work <- o:
			}
		}
	}
	close(work)
	wg.Wait()

	// Genetics go in after the samples; order does not matter to the engine.
	for _, season := range seasons {
		if len(season.Genetics) == 0 {
			continue
		}
		if err := c.putGenetics(ctx, season.AthleteID, season.Genetics); err != nil {
			return err
		}
	}
	return nil
}

// verifyModels fetches one recovery model per athlete and sanity-checks it.
func verifyModels(ctx context.Context, c *client, cfg *Config, seasons []Season, stats *Stats, lg logger.Logger) error {
	window := 7
	for _, season := range seasons {
		rm, err := c.getRecovery(ctx, season.AthleteID, window)
		if err != nil {
			return err
		}
		if len(rm.Plan) != 3 {
			return fmt.Errorf("athlete %s: expected a 3-day plan, got %d", season.AthleteID, len(rm.Plan))
		}
		if len(rm.Points) > window {
			return fmt.Errorf("athlete %s: %d points exceed window %d", season.AthleteID, len(rm.Points), window)
		}
		stats.Models.Add(1)
		if cfg.Verbose {
			lg.Info(ctx, "model verified",
				logger.String("athleteID", season.AthleteID),
				logger.Float64("acwr", rm.ACWR),
				logger.Float64("strain", rm.Strain),
				logger.Int("flags", len(rm.Flags)),
			)
		}
	}
	return nil
}
