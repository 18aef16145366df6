package scheduler

import (
	"context"
	"time"

	"github.com/manav03panchal/aircare/internal/config"
	"github.com/manav03panchal/aircare/internal/logging"
)

// WatchOptions configures StartWatch.
type WatchOptions struct {
	Notifier *EventNotifier
	// Refresh reloads the event source. Optional.
	Refresh         func(ctx context.Context) error
	CheckInterval   time.Duration
	RefreshInterval time.Duration
}

// StartWatch schedules the notification check and, when set, the periodic
// refresh, and starts the scheduler. Stop it with Scheduler.Stop.
func StartWatch(ctx context.Context, opts WatchOptions) (*Scheduler, error) {
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = config.Global.Scheduler.CheckInterval
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = config.Global.Scheduler.RefreshInterval
	}

	s := NewScheduler()

	if _, err := s.Every(opts.CheckInterval, func() {
		opts.Notifier.Check(ctx)
	}); err != nil {
		return nil, err
	}

	if opts.Refresh != nil {
		if _, err := s.Every(opts.RefreshInterval, func() {
			if err := opts.Refresh(ctx); err != nil {
				logging.WarnContext(ctx, "background refresh failed", logging.KeyError, err)
			}
		}); err != nil {
			return nil, err
		}
	}

	s.Start()
	return s, nil
}
