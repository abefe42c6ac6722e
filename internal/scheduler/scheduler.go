package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/biomethane/internal/config"
	"github.com/mamadbah2/biomethane/internal/domain/models"
	"github.com/mamadbah2/biomethane/internal/service/reporting"
)

// SnapshotGenerator builds the periodic report.
type SnapshotGenerator interface {
	GenerateSnapshot(ctx context.Context, now time.Time) (*models.SnapshotReport, error)
}

// Notifier delivers a rendered report.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	spec     string
	location *time.Location
	reports  SnapshotGenerator
	notifier Notifier
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance running in the configured
// timezone with the standard five-field cron parser.
func NewScheduler(cfg config.ReportingConfig, reports SnapshotGenerator, notifier Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		spec:     cfg.CronSchedule,
		location: loc,
		reports:  reports,
		notifier: notifier,
		logger:   logger,
	}, nil
}

// Start registers the snapshot job and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.spec), zap.String("timezone", s.location.String()))

	if _, err := s.cron.AddFunc(s.spec, s.sendSnapshot); err != nil {
		return fmt.Errorf("schedule snapshot report: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("snapshot report failed", zap.Error(err))
	}
}

// RunOnce generates and delivers one snapshot.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.logger.Info("generating snapshot report")

	report, err := s.reports.GenerateSnapshot(ctx, time.Now().In(s.location))
	if err != nil {
		return fmt.Errorf("generate snapshot: %w", err)
	}

	if err := s.notifier.Notify(ctx, reporting.SnapshotNotification(report)); err != nil {
		return fmt.Errorf("send snapshot: %w", err)
	}

	s.logger.Info("snapshot report sent", zap.String("evaluation_id", report.EvaluationID))
	return nil
}
