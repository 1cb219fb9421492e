package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dan9191/loan-analytics/internal/models"
	"github.com/Dan9191/loan-analytics/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Runner produces a report
type Runner interface {
	Run(ctx context.Context) (*models.Report, error)
}

// Scheduler triggers report runs on a cron expression
type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	log     logrus.FieldLogger
	baseCtx context.Context
}

// New parses schedule (standard five-field cron syntax or descriptors such as
// "@hourly") and registers the run job. It does not start the scheduler.
func New(ctx context.Context, runner Runner, schedule string, log logrus.FieldLogger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(),
		runner:  runner,
		log:     log,
		baseCtx: ctx,
	}
	if _, err := s.cron.AddFunc(schedule, s.Tick); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Tick performs one scheduled run
func (s *Scheduler) Tick() {
	report, err := s.runner.Run(s.baseCtx)
	switch {
	case errors.Is(err, service.ErrRunInProgress):
		s.log.Warn("Skipping scheduled run: previous run still active")
	case err != nil:
		s.log.Errorf("Scheduled run failed: %v", err)
	default:
		s.log.WithField("report_id", report.ID).Info("Scheduled run finished")
	}
}

func (s *Scheduler) Start() {
	s.log.Info("Scheduler started")
	s.cron.Start()
}

// Stop waits for a running job to complete
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("Scheduler stopped")
}
