package aggregator

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"

	"github.com/Dan9191/loan-analytics/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Aggregator runs the battery of summary computations over a cleaned snapshot
type Aggregator struct {
	log     logrus.FieldLogger
	workers int
}

// NewAggregator initializes a new aggregator. workers bounds the number of
// tables computed at once; zero or less means one per CPU.
func NewAggregator(log logrus.FieldLogger, workers int) *Aggregator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Aggregator{log: log, workers: workers}
}

// definition is one independent aggregation
type definition struct {
	name  string
	title string
	run   func(records []models.LoanRecord) models.Table
}

// Run computes every summary table. Tables come back in a fixed order; a
// failing aggregation yields a table with Error set and never affects the others.
func (a *Aggregator) Run(ctx context.Context, records []models.LoanRecord) []models.Table {
	return a.runAll(ctx, records, a.definitions())
}

func (a *Aggregator) runAll(ctx context.Context, records []models.LoanRecord, defs []definition) []models.Table {
	tables := make([]models.Table, len(defs))

	var g errgroup.Group
	g.SetLimit(a.workers)
	for i, def := range defs {
		i, def := i, def
		g.Go(func() error {
			tables[i] = a.safeRun(ctx, def, records)
			return nil
		})
	}
	_ = g.Wait()
	return tables
}

func (a *Aggregator) safeRun(ctx context.Context, def definition, records []models.LoanRecord) (t models.Table) {
	log := a.log.WithField("table", def.name)
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Aggregation failed: %v", r)
			t = models.Table{Name: def.name, Title: def.title, Error: fmt.Sprintf("aggregation failed: %v", r)}
		}
	}()

	if err := ctx.Err(); err != nil {
		return models.Table{Name: def.name, Title: def.title, Error: err.Error()}
	}

	t = def.run(records)
	t.Name, t.Title = def.name, def.title
	if t.Excluded > 0 {
		log.WithField("excluded", t.Excluded).Warn("Records excluded from aggregation")
	}
	return t
}

// groupSpec describes a GROUP BY style aggregation
type groupSpec struct {
	// key derives the grouping key; an error excludes the record from this table
	key func(r models.LoanRecord) (string, error)
	// less orders the finished rows
	less func(a, b models.GroupRow) bool
	// meanRate adds the average interest rate per group
	meanRate bool
}

type bucket struct {
	count    int
	defaults int
	rateSum  decimal.Decimal
}

func (a *Aggregator) group(name string, spec groupSpec) func([]models.LoanRecord) models.Table {
	return func(records []models.LoanRecord) models.Table {
		var t models.Table
		buckets := make(map[string]*bucket)
		for _, r := range records {
			key, err := spec.key(r)
			if err != nil {
				t.Excluded++
				issue := recordIssue(name, r.ID, err)
				t.Issues = append(t.Issues, issue)
				a.log.WithFields(logrus.Fields{
					"table":     name,
					"record_id": r.ID,
					"kind":      issue.Kind,
				}).Debugf("Excluding record: %v", err)
				continue
			}
			b, ok := buckets[key]
			if !ok {
				b = &bucket{}
				buckets[key] = b
			}
			b.count++
			if r.IsDefault() {
				b.defaults++
			}
			if spec.meanRate {
				b.rateSum = b.rateSum.Add(decimal.NewFromFloat(r.InterestRate))
			}
		}

		t.Groups = make([]models.GroupRow, 0, len(buckets))
		for key, b := range buckets {
			row := models.GroupRow{
				Key:         key,
				Count:       b.count,
				Defaults:    b.defaults,
				DefaultRate: DefaultRate(b.defaults, b.count),
			}
			if spec.meanRate {
				avg := Mean(b.rateSum, b.count)
				row.AvgInterestRate = &avg
			}
			t.Groups = append(t.Groups, row)
		}
		sort.Slice(t.Groups, func(i, j int) bool {
			return spec.less(t.Groups[i], t.Groups[j])
		})
		return t
	}
}

// fieldError ties a parse failure to the column and value that caused it
type fieldError struct {
	field string
	value string
	err   error
}

func (e *fieldError) Error() string { return e.field + ": " + e.err.Error() }

func (e *fieldError) Unwrap() error { return e.err }

func invalid(field, value string, err error) error {
	return &fieldError{field: field, value: value, err: err}
}

func recordIssue(table, recordID string, err error) models.Issue {
	issue := models.Issue{Kind: issueKind(err), RecordID: recordID, Table: table}
	var fe *fieldError
	if errors.As(err, &fe) {
		issue.Field, issue.Value = fe.field, fe.value
	}
	return issue
}

func issueKind(err error) models.IssueKind {
	switch {
	case errors.Is(err, ErrMalformedDate):
		return models.IssueMalformedDateValue
	case errors.Is(err, ErrUnparseableOrdinal):
		return models.IssueUnparseableOrdinal
	default:
		return ""
	}
}

// TopExposureLimit is the length of the top exposure ranking
const TopExposureLimit = 10

func topExposures(records []models.LoanRecord) models.Table {
	sorted := make([]models.LoanRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].LoanAmount != sorted[j].LoanAmount {
			return sorted[i].LoanAmount > sorted[j].LoanAmount
		}
		return sorted[i].ID < sorted[j].ID
	})

	var t models.Table
	rank := 0
	for i, r := range sorted {
		if i == TopExposureLimit {
			break
		}
		// dense rank: equal amounts share a rank, no gaps
		if i == 0 || r.LoanAmount != sorted[i-1].LoanAmount {
			rank++
		}
		t.Exposures = append(t.Exposures, models.ExposureRow{
			Rank:         rank,
			ID:           r.ID,
			LoanAmount:   r.LoanAmount,
			Grade:        r.Grade,
			Purpose:      r.Purpose,
			InterestRate: r.InterestRate,
			LoanStatus:   r.LoanStatus,
		})
	}
	return t
}
