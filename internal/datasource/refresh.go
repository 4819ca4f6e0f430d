package datasource

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/seenimoa/researchdesk/pkg/models"
)

// Refresher re-warms the universe cache on a cron schedule.
type Refresher struct {
	service   *QuoteService
	cron      *cron.Cron
	logger    arbor.ILogger
	onRefresh func(*models.UniverseResult)
}

// NewRefresher creates a refresher. onRefresh, if non-nil, receives every
// refreshed batch.
func NewRefresher(service *QuoteService, logger arbor.ILogger, onRefresh func(*models.UniverseResult)) *Refresher {
	return &Refresher{
		service:   service,
		cron:      cron.New(),
		logger:    logger,
		onRefresh: onRefresh,
	}
}

// Start registers the schedule and starts the cron loop.
func (r *Refresher) Start(schedule string) error {
	if schedule == "" {
		schedule = "@every 5m"
	}
	if _, err := r.cron.AddFunc(schedule, r.RunNow); err != nil {
		return err
	}
	r.cron.Start()
	r.logger.Info().
		Str("schedule", schedule).
		Msg("Universe refresh scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
	r.logger.Info().Msg("Universe refresh scheduler stopped")
}

// RunNow performs one refresh synchronously.
func (r *Refresher) RunNow() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	r.service.Cleanup()
	res := r.service.RefreshUniverse(ctx)
	r.logger.Debug().
		Bool("live", res.Live).
		Int("total", res.Total).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("Universe refresh completed")

	if r.onRefresh != nil {
		r.onRefresh(res)
	}
}
