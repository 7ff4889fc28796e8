package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"FinDataCollector/internal/model"
)

// Cleaner removes exported files older than a given age.
type Cleaner interface {
	CleanupOlderThan(age time.Duration) (*model.DeleteReport, error)
}

// Scheduler manages the cron tasks of the server.
type Scheduler struct {
	Cron      *cron.Cron
	Cleaner   Cleaner
	Retention time.Duration
	Logger    *logrus.Logger
}

// NewScheduler creates a new Scheduler. Specs use the six-field format with seconds.
func NewScheduler(cleaner Cleaner, retentionDays int, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Cleaner:   cleaner,
		Retention: time.Duration(retentionDays) * 24 * time.Hour,
		Logger:    logger,
	}
}

// RegisterAll registers the retention cleanup. It is a no-op when retention is disabled.
func (s *Scheduler) RegisterAll(cleanupCron string) error {
	if s.Retention <= 0 {
		s.Logger.Info("retention cleanup disabled")
		return nil
	}
	if _, err := s.Cron.AddFunc(cleanupCron, s.cleanupTask); err != nil {
		return fmt.Errorf("register cleanup task: %w", err)
	}
	s.Logger.WithFields(logrus.Fields{
		"cron":      cleanupCron,
		"retention": s.Retention.String(),
	}).Info("retention cleanup registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

// RunCleanupNow executes the retention cleanup immediately.
func (s *Scheduler) RunCleanupNow() {
	s.cleanupTask()
}

func (s *Scheduler) cleanupTask() {
	s.Logger.Info("running retention cleanup")
	rep, err := s.Cleaner.CleanupOlderThan(s.Retention)
	if err != nil {
		s.Logger.WithError(err).Error("retention cleanup")
		return
	}
	s.Logger.WithFields(logrus.Fields{
		"deleted": rep.Deleted,
		"failed":  len(rep.Errors),
	}).Info("retention cleanup finished")
}
