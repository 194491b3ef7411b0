package uploads

import (
	"context"
	"time"

	"github.com/dmitrijs2005/oasis/internal/logging"
)

// Reaper periodically aborts uploads nobody has touched for ttl.
type Reaper struct {
	coordinator *Coordinator
	ttl         time.Duration
	interval    time.Duration
	logger      logging.Logger
}

func NewReaper(c *Coordinator, ttl, interval time.Duration, l logging.Logger) *Reaper {
	if interval <= 0 {
		interval = ttl
	}
	return &Reaper{
		coordinator: c,
		ttl:         ttl,
		interval:    interval,
		logger:      l.With("module", "reaper"),
	}
}

// Run sweeps every interval until ctx is done. A non-positive ttl disables
// the reaper and Run returns immediately.
func (r *Reaper) Run(ctx context.Context) error {
	if r.ttl <= 0 {
		r.logger.Info(ctx, "stale upload reaper disabled")
		return nil
	}

	t := time.NewTicker(r.interval)
	defer t.Stop()

	r.logger.Info(ctx, "starting stale upload reaper", "ttl", r.ttl.String(), "interval", r.interval.String())
	for {
		select {
		case <-ctx.Done():
			r.logger.Info(ctx, "stopping stale upload reaper")
			return nil
		case <-t.C:
			if n := len(r.coordinator.Reap(ctx, r.ttl)); n > 0 {
				r.logger.Info(ctx, "reaped stale uploads", "count", n)
			}
		}
	}
}
