// Package scheduler runs the periodic lot jobs: the overstay sweep and the
// daily report export.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/parkos/parklot/internal/config"
	"github.com/parkos/parklot/internal/metrics"
	"github.com/parkos/parklot/internal/service/entries"
	"github.com/parkos/parklot/internal/service/reports"
)

// Notifier delivers out-of-band alerts. Nil disables alerting.
type Notifier interface {
	SendAlert(ctx context.Context, message string) error
}

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron       *cron.Cron
	entriesSvc *entries.Service
	reportsSvc *reports.Service
	notifier   Notifier
	metrics    *metrics.Metrics
	cfg        config.ReportingConfig
	logger     *zap.Logger
}

// New creates a scheduler running in the configured timezone.
func New(cfg config.ReportingConfig, entriesSvc *entries.Service, reportsSvc *reports.Service, notifier Notifier, m *metrics.Metrics, location *time.Location, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(location)),
		entriesSvc: entriesSvc,
		reportsSvc: reportsSvc,
		notifier:   notifier,
		metrics:    m,
		cfg:        cfg,
		logger:     logger,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.OverstayCronSchedule, s.sweepOverstays); err != nil {
		return fmt.Errorf("schedule overstay sweep: %w", err)
	}
	if _, err := s.cron.AddFunc(s.cfg.DailyCronSchedule, s.exportDailyReport); err != nil {
		return fmt.Errorf("schedule daily report: %w", err)
	}

	s.logger.Info("scheduler started",
		zap.String("overstay_schedule", s.cfg.OverstayCronSchedule),
		zap.String("report_schedule", s.cfg.DailyCronSchedule))
	s.cron.Start()
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sweepOverstays() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	flagged, err := s.entriesSvc.SweepOverstays(ctx)
	if err != nil {
		s.logger.Error("overstay sweep failed", zap.Error(err))
		return
	}
	if len(flagged) == 0 {
		return
	}

	s.metrics.OverstaysDetected.Add(float64(len(flagged)))

	if s.notifier != nil {
		plates := make([]string, len(flagged))
		for i, e := range flagged {
			plates[i] = e.VehicleNumber
		}
		message := fmt.Sprintf("%d vehicle(s) overstayed: %s", len(flagged), strings.Join(plates, ", "))
		if err := s.notifier.SendAlert(ctx, message); err != nil {
			s.logger.Error("failed to send overstay alert", zap.Error(err))
		}
	}
}

func (s *Scheduler) exportDailyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.reportsSvc.ExportDaily(ctx, time.Now()); err != nil {
		s.logger.Error("daily report export failed", zap.Error(err))
		return
	}
	s.logger.Info("daily report export completed")
}
