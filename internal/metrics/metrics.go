package metrics

import (
	"time"

	"github.com/Dan9191/loan-analytics/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for report runs
type Metrics struct {
	Runs            *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	RecordsCleaned  prometheus.Gauge
	RecordsDropped  *prometheus.GaugeVec
	TableExclusions *prometheus.GaugeVec
	TableFailures   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loan_analytics",
			Name:      "runs_total",
			Help:      "Report runs by outcome.",
		}, []string{"status"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "loan_analytics",
			Name:      "run_duration_seconds",
			Help:      "Duration of report runs.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		RecordsCleaned: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "loan_analytics",
			Name:      "records_cleaned",
			Help:      "Records in the latest cleaned snapshot.",
		}),
		RecordsDropped: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "loan_analytics",
			Name:      "records_dropped",
			Help:      "Rows dropped by the latest cleaning pass.",
		}, []string{"reason"}),
		TableExclusions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "loan_analytics",
			Name:      "table_excluded_records",
			Help:      "Records excluded from each table in the latest run.",
		}, []string{"table"}),
		TableFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loan_analytics",
			Name:      "table_failures_total",
			Help:      "Aggregations that failed.",
		}, []string{"table"}),
	}
	reg.MustRegister(m.Runs, m.RunDuration, m.RecordsCleaned, m.RecordsDropped, m.TableExclusions, m.TableFailures)
	return m
}

// ObserveReport records the outcome of a successful run
func (m *Metrics) ObserveReport(report *models.Report, elapsed time.Duration) {
	m.Runs.WithLabelValues("success").Inc()
	m.RunDuration.Observe(elapsed.Seconds())
	m.RecordsCleaned.Set(float64(report.Cleaning.Output))
	m.RecordsDropped.WithLabelValues(string(models.IssueMissingRequiredField)).Set(float64(report.Cleaning.MissingRequired))
	m.RecordsDropped.WithLabelValues(string(models.IssueMalformedTermValue)).Set(float64(report.Cleaning.MalformedTerm))
	for _, t := range report.Tables {
		m.TableExclusions.WithLabelValues(t.Name).Set(float64(t.Excluded))
		if t.Error != "" {
			m.TableFailures.WithLabelValues(t.Name).Inc()
		}
	}
}

// ObserveFailure records a run that did not produce a report
func (m *Metrics) ObserveFailure(elapsed time.Duration) {
	m.Runs.WithLabelValues("failure").Inc()
	m.RunDuration.Observe(elapsed.Seconds())
}
