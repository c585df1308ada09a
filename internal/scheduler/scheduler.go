// Package scheduler runs the periodic parlay suggestion refresh.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/tipster-edge/internal/service"
)

// Refresher recomputes and caches parlay suggestions.
type Refresher interface {
	RefreshSuggestions(ctx context.Context) (*service.Suggestions, error)
}

// Scheduler manages scheduled refresh jobs
type Scheduler struct {
	cron            *cron.Cron
	refresher       Refresher
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	jobTimeout      time.Duration
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler. Overlapping runs of the same job are skipped.
func NewScheduler(refresher Refresher, log *logrus.Logger) *Scheduler {
	cronLog := cron.PrintfLogger(log.WithField("component", "scheduler"))
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		refresher:       refresher,
		logger:          log,
		jobIDs:          make([]cron.EntryID, 0),
		jobTimeout:      time.Minute,
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleSuggestionRefresh registers the suggestion refresh on a standard five-field cron expression.
func (s *Scheduler) ScheduleSuggestionRefresh(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()
		_ = s.RunNow(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("schedule", cronExpression).Info("Scheduled parlay suggestion refresh")

	return nil
}

// RunNow refreshes the suggestions immediately, outside the cron schedule.
func (s *Scheduler) RunNow(ctx context.Context) error {
	start := time.Now()
	suggestions, err := s.refresher.RefreshSuggestions(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Parlay suggestion refresh failed")
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"pool_size":    suggestions.PoolSize,
		"conservative": suggestions.Conservative != nil,
		"aggressive":   suggestions.Aggressive != nil,
		"duration_ms":  time.Since(start).Milliseconds(),
	}).Debug("Parlay suggestion refresh completed")
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop stops the scheduler and waits for running jobs, up to the graceful timeout.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	timer := time.NewTimer(s.gracefulTimeout)
	defer timer.Stop()

	s.isRunning = false
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-timer.C:
		return errors.New("timed out waiting for scheduled jobs to finish")
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the time of the next scheduled job run
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}
