// Package scheduler runs the periodic jobs of the watch view: the
// notification check and the background reload of events.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/manav03panchal/aircare/internal/logging"
)

// Scheduler manages periodic jobs using cron.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates a new scheduler. Panicking jobs are recovered and
// logged.
func NewScheduler() *Scheduler {
	log := cronLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(log),
			cron.WithChain(cron.Recover(log)),
		),
	}
}

// Every adds a job that runs at a fixed interval. Intervals below one
// second are rounded up to one second.
func (s *Scheduler) Every(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval < time.Second {
		interval = time.Second
	}
	id, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), job)
	if err != nil {
		return 0, fmt.Errorf("failed to add job every %s: %w", interval, err)
	}
	return id, nil
}

// Start starts the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	logging.DebugLog("scheduler started", logging.KeyCount, len(s.cron.Entries()))
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logging.DebugLog("scheduler stopped")
}

// RemoveJob removes a job from the scheduler.
func (s *Scheduler) RemoveJob(id cron.EntryID) {
	s.cron.Remove(id)
}

// Entries returns all scheduled entries.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// NextRun returns the next scheduled run time for any job.
func (s *Scheduler) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}

	next := entries[0].Next
	for _, e := range entries[1:] {
		if e.Next.Before(next) {
			next = e.Next
		}
	}
	return next
}

// cronLogger routes cron's own messages to the package logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	logging.DebugLog("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logging.Error("cron: "+msg, append([]any{logging.KeyError, err}, keysAndValues...)...)
}
