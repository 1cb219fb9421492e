package cleaner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dan9191/loan-analytics/internal/models"
	"github.com/sirupsen/logrus"
)

// termUnit is stripped from raw term values such as "36 months"
const termUnit = " months"

// ErrMalformedTerm is returned when a term value does not look like "<n> months"
var ErrMalformedTerm = errors.New("malformed term value")

// RequiredFields lists the source columns every cleaned record must carry
var RequiredFields = []string{
	"id", "loan_amnt", "int_rate", "term", "annual_inc", "grade", "purpose", "emp_length",
	"home_ownership", "issue_d", "addr_state", "revol_util", "earliest_cr_line", "dti",
	"application_type", "loan_status",
}

// Result holds the cleaned snapshot and what was dropped on the way
type Result struct {
	Records []models.LoanRecord
	Stats   models.CleaningStats
	Issues  []models.Issue
}

// Cleaner filters incomplete rows and derives term_clean and income_flag
type Cleaner struct {
	log logrus.FieldLogger
}

// NewCleaner initializes a new cleaner
func NewCleaner(log logrus.FieldLogger) *Cleaner {
	return &Cleaner{log: log}
}

// Clean produces a new cleaned snapshot of raw. The input is never modified,
// so calling Clean twice on the same rows yields identical results.
func (c *Cleaner) Clean(raw []models.RawLoan) Result {
	res := Result{
		Records: make([]models.LoanRecord, 0, len(raw)),
		Stats:   models.CleaningStats{Input: len(raw)},
	}

	for i := range raw {
		r := &raw[i]
		if missing := MissingFields(r); len(missing) > 0 {
			res.Stats.MissingRequired++
			c.log.WithFields(logrus.Fields{
				"row":    i,
				"fields": missing,
			}).Debug("Dropping row with missing required fields")
			continue
		}

		term, err := ParseTerm(*r.Term)
		if err != nil {
			res.Stats.MalformedTerm++
			res.Issues = append(res.Issues, models.Issue{
				Kind:     models.IssueMalformedTermValue,
				RecordID: *r.ID,
				Field:    "term",
				Value:    *r.Term,
			})
			c.log.WithFields(logrus.Fields{
				"record_id": *r.ID,
				"term":      *r.Term,
			}).Warn("Dropping record with malformed term")
			continue
		}

		res.Records = append(res.Records, models.LoanRecord{
			ID:                 *r.ID,
			LoanAmount:         *r.LoanAmount,
			InterestRate:       *r.InterestRate,
			Term:               *r.Term,
			TermClean:          term,
			AnnualIncome:       *r.AnnualIncome,
			IncomeFlag:         IncomeFlag(*r.AnnualIncome),
			Grade:              *r.Grade,
			Purpose:            *r.Purpose,
			EmpLength:          *r.EmpLength,
			HomeOwnership:      *r.HomeOwnership,
			IssueDate:          *r.IssueDate,
			State:              *r.State,
			RevolUtil:          *r.RevolUtil,
			EarliestCreditLine: *r.EarliestCreditLine,
			DTI:                *r.DTI,
			ApplicationType:    *r.ApplicationType,
			LoanStatus:         *r.LoanStatus,
		})
	}
	res.Stats.Output = len(res.Records)

	if res.Stats.MissingRequired > 0 {
		c.log.WithField("rows", res.Stats.MissingRequired).Info("Rows dropped for missing required fields")
	}
	return res
}

// MissingFields returns the names of required fields that are absent in r
func MissingFields(r *models.RawLoan) []string {
	var missing []string
	check := func(name string, present bool) {
		if !present {
			missing = append(missing, name)
		}
	}
	check("id", r.ID != nil)
	check("loan_amnt", r.LoanAmount != nil)
	check("int_rate", r.InterestRate != nil)
	check("term", r.Term != nil)
	check("annual_inc", r.AnnualIncome != nil)
	check("grade", r.Grade != nil)
	check("purpose", r.Purpose != nil)
	check("emp_length", r.EmpLength != nil)
	check("home_ownership", r.HomeOwnership != nil)
	check("issue_d", r.IssueDate != nil)
	check("addr_state", r.State != nil)
	check("revol_util", r.RevolUtil != nil)
	check("earliest_cr_line", r.EarliestCreditLine != nil)
	check("dti", r.DTI != nil)
	check("application_type", r.ApplicationType != nil)
	check("loan_status", r.LoanStatus != nil)
	return missing
}

// ParseTerm converts a raw term such as " 36 months" into a count of months
func ParseTerm(raw string) (int, error) {
	if !strings.Contains(raw, termUnit) {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTerm, raw)
	}
	s := strings.TrimSpace(strings.Replace(raw, termUnit, "", 1))
	months, err := strconv.Atoi(s)
	if err != nil || months <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTerm, raw)
	}
	return months, nil
}

// IncomeFlag reports whether annual income was reported
func IncomeFlag(annualIncome float64) string {
	if annualIncome == 0 {
		return models.IncomeFlagZero
	}
	return models.IncomeFlagReported
}
