package metrics

import (
	"testing"
	"time"

	"github.com/Dan9191/loan-analytics/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveReport(t *testing.T) {
	m := New(prometheus.NewRegistry())
	report := &models.Report{
		Cleaning: models.CleaningStats{Input: 10, MissingRequired: 3, MalformedTerm: 1, Output: 6},
		Tables: []models.Table{
			{Name: "emp_length", Excluded: 2},
			{Name: "grade", Error: "aggregation failed: boom"},
		},
	}

	m.ObserveReport(report, 2*time.Second)
	m.ObserveFailure(time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("failure")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.RecordsCleaned))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RecordsDropped.WithLabelValues("missing_required_field")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TableExclusions.WithLabelValues("emp_length")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TableFailures.WithLabelValues("grade")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.TableFailures.WithLabelValues("emp_length")))
}

func TestNewRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
