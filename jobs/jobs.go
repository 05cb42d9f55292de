package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const completionTimeout = time.Minute

// Completer marks elapsed appointments as Completed.
type Completer interface {
	CompleteElapsed(ctx context.Context) (int, error)
}

/*
* Register the completion job on schedule
* Start the cron runner and hand it back so the caller can stop it
 */
func StartScheduler(schedule string, completer Completer) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		RunCompletion(context.Background(), completer)
	})
	if err != nil {
		log.Error().Err(err).Str("schedule", schedule).Msg("Invalid completion schedule")
		return nil, err
	}

	c.Start()
	log.Info().Str("schedule", schedule).Msg("Completion scheduler started")
	return c, nil
}

// RunCompletion runs one completion pass and returns how many appointments it completed.
func RunCompletion(ctx context.Context, completer Completer) int {
	ctx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	log.Debug().Msg("Running appointment completion job")
	n, err := completer.CompleteElapsed(ctx)
	if err != nil {
		log.Error().Err(err).Int("completed", n).Msg("Completion job failed")
		return n
	}
	if n > 0 {
		log.Info().Int("completed", n).Msg("Completed elapsed appointments")
	}
	return n
}

// Stop waits for a running job to finish, bounded by ctx.
func Stop(ctx context.Context, c *cron.Cron) {
	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
		log.Warn().Msg("Completion job still running at shutdown")
	}
}
