package aggregator

import (
	"fmt"
	"strconv"

	"github.com/Dan9191/loan-analytics/internal/models"
)

// Table names, in report order
const (
	TableGrade           = "grade"
	TableRateByGrade     = "interest_rate_by_grade"
	TablePurpose         = "purpose"
	TableIncomeBand      = "income_band"
	TableTerm            = "term"
	TableInterestBand    = "interest_band"
	TableEmpLength       = "emp_length"
	TableHomeOwnership   = "home_ownership"
	TableLoanSize        = "loan_size"
	TableIssueMonth      = "issue_month"
	TableState           = "state"
	TableUtilization     = "utilization_band"
	TableCreditAge       = "credit_age"
	TableCreditAgeBand   = "credit_age_band"
	TableTopExposures    = "top_exposures"
	TableDTIBand         = "dti_band"
	TableApplicationType = "application_type"
)

// TableNames lists every table a report carries
func TableNames() []string {
	defs := (&Aggregator{}).definitions()
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.name
	}
	return names
}

func (a *Aggregator) definitions() []definition {
	def := func(name, title string, spec groupSpec) definition {
		return definition{name: name, title: title, run: a.group(name, spec)}
	}

	return []definition{
		def(TableGrade, "Default rate by grade", groupSpec{
			key:  func(r models.LoanRecord) (string, error) { return r.Grade, nil },
			less: byKey,
		}),
		def(TableRateByGrade, "Average interest rate by grade", groupSpec{
			key:      func(r models.LoanRecord) (string, error) { return r.Grade, nil },
			less:     byMeanRateDesc,
			meanRate: true,
		}),
		def(TablePurpose, "Default rate by purpose", groupSpec{
			key:  func(r models.LoanRecord) (string, error) { return r.Purpose, nil },
			less: byDefaultRateDesc,
		}),
		def(TableIncomeBand, "Default rate by income band", groupSpec{
			key:  func(r models.LoanRecord) (string, error) { return IncomeBand(r.AnnualIncome), nil },
			less: byDefaultRateDesc,
		}),
		def(TableTerm, "Default rate by term", groupSpec{
			key:  func(r models.LoanRecord) (string, error) { return strconv.Itoa(r.TermClean), nil },
			less: byIntKey(true),
		}),
		def(TableInterestBand, "Default rate by interest band", groupSpec{
			key:  func(r models.LoanRecord) (string, error) { return InterestBand(r.InterestRate), nil },
			less: byKey,
		}),
		def(TableEmpLength, "Default rate by employment length", groupSpec{
			key: func(r models.LoanRecord) (string, error) {
				if _, err := EmpLengthYears(r.EmpLength); err != nil {
					return "", invalid("emp_length", r.EmpLength, err)
				}
				return r.EmpLength, nil
			},
			less: byEmpLength,
		}),
		def(TableHomeOwnership, "Default rate by home ownership", groupSpec{
			key:  func(r models.LoanRecord) (string, error) { return r.HomeOwnership, nil },
			less: byDefaultRateDesc,
		}),
		def(TableLoanSize, "Default rate by loan size", groupSpec{
			key:  func(r models.LoanRecord) (string, error) { return LoanSize(r.LoanAmount), nil },
			less: byLabelOrder(SizeSmall, SizeMedium, SizeLarge),
		}),
		def(TableIssueMonth, "Default rate by issue month", groupSpec{
			key: func(r models.LoanRecord) (string, error) {
				month, err := IssueMonth(r.IssueDate)
				if err != nil {
					return "", invalid("issue_d", r.IssueDate, err)
				}
				return month, nil
			},
			less: byMonth,
		}),
		def(TableState, "Default rate by state", groupSpec{
			key:  func(r models.LoanRecord) (string, error) { return r.State, nil },
			less: byDefaultRateDesc,
		}),
		def(TableUtilization, "Default rate by revolving utilization", groupSpec{
			key:  func(r models.LoanRecord) (string, error) { return UtilizationBand(r.RevolUtil), nil },
			less: byDefaultRateDesc,
		}),
		def(TableCreditAge, "Default rate by credit age (years)", groupSpec{
			key: func(r models.LoanRecord) (string, error) {
				age, err := CreditAge(r.IssueDate, r.EarliestCreditLine)
				if err != nil {
					return "", err
				}
				return strconv.Itoa(age), nil
			},
			less: byIntKey(false),
		}),
		def(TableCreditAgeBand, "Default rate by credit age band", groupSpec{
			key: func(r models.LoanRecord) (string, error) {
				age, err := CreditAge(r.IssueDate, r.EarliestCreditLine)
				if err != nil {
					return "", err
				}
				return CreditAgeBand(age), nil
			},
			less: byKey,
		}),
		{name: TableTopExposures, title: fmt.Sprintf("Top %d exposures by loan amount", TopExposureLimit), run: topExposures},
		def(TableDTIBand, "Default rate by debt-to-income band", groupSpec{
			key:  func(r models.LoanRecord) (string, error) { return DTIBand(r.DTI), nil },
			less: byKey,
		}),
		def(TableApplicationType, "Default rate by application type", groupSpec{
			key:  func(r models.LoanRecord) (string, error) { return r.ApplicationType, nil },
			less: byKey,
		}),
	}
}

func byKey(a, b models.GroupRow) bool {
	return a.Key < b.Key
}

func byDefaultRateDesc(a, b models.GroupRow) bool {
	if a.DefaultRate != b.DefaultRate {
		return a.DefaultRate > b.DefaultRate
	}
	return a.Key < b.Key
}

func byMeanRateDesc(a, b models.GroupRow) bool {
	if *a.AvgInterestRate != *b.AvgInterestRate {
		return *a.AvgInterestRate > *b.AvgInterestRate
	}
	return a.Key < b.Key
}

func byIntKey(asc bool) func(a, b models.GroupRow) bool {
	return func(a, b models.GroupRow) bool {
		x, _ := strconv.Atoi(a.Key)
		y, _ := strconv.Atoi(b.Key)
		if asc {
			return x < y
		}
		return x > y
	}
}

func byEmpLength(a, b models.GroupRow) bool {
	x, _ := EmpLengthYears(a.Key)
	y, _ := EmpLengthYears(b.Key)
	if x != y {
		return x < y
	}
	return a.Key < b.Key
}

func byMonth(a, b models.GroupRow) bool {
	return monthOrdinal(a.Key) < monthOrdinal(b.Key)
}

func byLabelOrder(labels ...string) func(a, b models.GroupRow) bool {
	pos := make(map[string]int, len(labels))
	for i, l := range labels {
		pos[l] = i
	}
	return func(a, b models.GroupRow) bool {
		return pos[a.Key] < pos[b.Key]
	}
}
