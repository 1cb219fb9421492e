package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Dan9191/loan-analytics/internal/aggregator"
	"github.com/Dan9191/loan-analytics/internal/cleaner"
	"github.com/Dan9191/loan-analytics/internal/config"
	"github.com/Dan9191/loan-analytics/internal/metrics"
	"github.com/Dan9191/loan-analytics/internal/models"
	"github.com/Dan9191/loan-analytics/internal/repository"
	"github.com/Dan9191/loan-analytics/internal/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrRunInProgress = errors.New("report run already in progress")
	ErrNoReport      = errors.New("no report available")
	ErrUnknownTable  = errors.New("unknown table")
)

// Source provides the raw loan dataset
type Source interface {
	Name() string
	Load(ctx context.Context) ([]models.RawLoan, error)
}

// Store persists the cleaned snapshot and generated reports
type Store interface {
	ReplaceCleaned(ctx context.Context, records []models.LoanRecord) error
	SaveReport(ctx context.Context, report *models.Report, payload []byte, signature string) error
	LatestReport(ctx context.Context) ([]byte, error)
}

// KeyRateProvider returns the current reference rate in percent
type KeyRateProvider interface {
	GetKeyRate(ctx context.Context) (float64, error)
}

// Notifier announces finished runs
type Notifier interface {
	SendRunSummary(report *models.Report) error
}

// Deps are the collaborators of the service. Source is required; Store,
// KeyRate, Notifier and Metrics are optional. A nil Cache means an in-process cache.
type Deps struct {
	Source   Source
	Store    Store
	Cache    repository.ReportCache
	KeyRate  KeyRateProvider
	Notifier Notifier
	Metrics  *metrics.Metrics
}

// Service handles business logic
type Service struct {
	deps    Deps
	cleaner *cleaner.Cleaner
	agg     *aggregator.Aggregator
	log     *logrus.Logger
	config  *config.Config
	running sync.Mutex
	now     func() time.Time
}

// NewService initializes a new service
func NewService(deps Deps, log *logrus.Logger, cfg *config.Config) *Service {
	if deps.Cache == nil {
		deps.Cache = repository.NewMemoryCache()
	}
	return &Service{
		deps:    deps,
		cleaner: cleaner.NewCleaner(log),
		agg:     aggregator.NewAggregator(log, cfg.Workers),
		log:     log,
		config:  cfg,
		now:     time.Now,
	}
}

// Run loads the dataset, cleans it, publishes the cleaned snapshot and
// computes a new report. Only one run is active at a time.
func (s *Service) Run(ctx context.Context) (*models.Report, error) {
	if !s.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.running.Unlock()

	start := time.Now()
	report, err := s.run(ctx)
	if m := s.deps.Metrics; m != nil {
		if err != nil {
			m.ObserveFailure(time.Since(start))
		} else {
			m.ObserveReport(report, time.Since(start))
		}
	}
	return report, err
}

func (s *Service) run(ctx context.Context) (*models.Report, error) {
	runID := uuid.NewString()
	log := s.log.WithFields(logrus.Fields{"run_id": runID, "source": s.deps.Source.Name()})

	raw, err := s.deps.Source.Load(ctx)
	if err != nil {
		log.Errorf("Failed to load loans: %v", err)
		return nil, fmt.Errorf("failed to load loans: %w", err)
	}

	res := s.cleaner.Clean(raw)
	log.WithFields(logrus.Fields{
		"input":            res.Stats.Input,
		"missing_required": res.Stats.MissingRequired,
		"malformed_term":   res.Stats.MalformedTerm,
		"output":           res.Stats.Output,
	}).Info("Cleaning finished")

	// the snapshot is published before any aggregation reads it
	if s.deps.Store != nil {
		if err := s.deps.Store.ReplaceCleaned(ctx, res.Records); err != nil {
			log.Errorf("Failed to publish cleaned loans: %v", err)
			return nil, err
		}
	}

	report := &models.Report{
		ID:          runID,
		GeneratedAt: s.now().UTC(),
		Source:      s.deps.Source.Name(),
		Cleaning:    res.Stats,
		Issues:      res.Issues,
		Tables:      s.agg.Run(ctx, res.Records),
	}

	// a cancelled run must not replace the last complete report
	if err := ctx.Err(); err != nil {
		log.Warnf("Run cancelled before publishing: %v", err)
		return nil, fmt.Errorf("report run cancelled: %w", err)
	}

	if s.deps.KeyRate != nil {
		rate, err := s.deps.KeyRate.GetKeyRate(ctx)
		if err != nil {
			log.Warnf("Key rate unavailable, skipping spreads: %v", err)
		} else {
			AnnotateKeyRate(report, rate)
		}
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	signature := utils.SignReport(payload, s.config.HMACSecret)

	if s.deps.Store != nil {
		if err := s.deps.Store.SaveReport(ctx, report, payload, signature); err != nil {
			log.Errorf("Failed to save report: %v", err)
			return nil, err
		}
	}
	if err := s.deps.Cache.Set(ctx, repository.LatestReportKey, payload, s.config.ReportTTL); err != nil {
		log.Warnf("Failed to cache report: %v", err)
	}

	if s.deps.Notifier != nil {
		if err := s.deps.Notifier.SendRunSummary(report); err != nil {
			log.Warnf("Failed to send run summary: %v", err)
		}
	}

	log.WithFields(logrus.Fields{
		"tables":   len(report.Tables),
		"excluded": report.Excluded(),
	}).Info("Report generated")
	return report, nil
}

// AnnotateKeyRate stores the reference rate on the report and adds the
// spread over it to every row of the interest-rate-by-grade table
func AnnotateKeyRate(report *models.Report, rate float64) {
	report.KeyRate = &rate
	t, ok := report.Table(aggregator.TableRateByGrade)
	if !ok {
		return
	}
	for i := range t.Groups {
		g := &t.Groups[i]
		if g.AvgInterestRate == nil {
			continue
		}
		spread := aggregator.Round2(*g.AvgInterestRate - rate)
		g.SpreadOverKeyRate = &spread
	}
}

// LatestPayload returns the serialized latest report and its signature
func (s *Service) LatestPayload(ctx context.Context) ([]byte, string, error) {
	if payload, ok := s.deps.Cache.Get(ctx, repository.LatestReportKey); ok {
		return payload, utils.SignReport(payload, s.config.HMACSecret), nil
	}
	if s.deps.Store == nil {
		return nil, "", ErrNoReport
	}

	payload, err := s.deps.Store.LatestReport(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", ErrNoReport
	}
	if err != nil {
		return nil, "", err
	}
	if err := s.deps.Cache.Set(ctx, repository.LatestReportKey, payload, s.config.ReportTTL); err != nil {
		s.log.Warnf("Failed to cache report: %v", err)
	}
	return payload, utils.SignReport(payload, s.config.HMACSecret), nil
}

// Latest returns the latest report
func (s *Service) Latest(ctx context.Context) (*models.Report, error) {
	payload, _, err := s.LatestPayload(ctx)
	if err != nil {
		return nil, err
	}
	report := &models.Report{}
	if err := json.Unmarshal(payload, report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return report, nil
}

// LatestTable returns one table of the latest report
func (s *Service) LatestTable(ctx context.Context, name string) (*models.Table, error) {
	report, err := s.Latest(ctx)
	if err != nil {
		return nil, err
	}
	t, ok := report.Table(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	return t, nil
}
