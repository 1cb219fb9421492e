package models

const (
	// StatusChargedOff is the only loan status counted as a default
	StatusChargedOff = "Charged Off"

	IncomeFlagZero     = "Zero Income"
	IncomeFlagReported = "Reported Income"
)

// RawLoan represents one row of the source dataset before cleaning.
// A nil field means the value was missing in the source.
type RawLoan struct {
	ID                 *string
	LoanAmount         *float64
	InterestRate       *float64
	Term               *string
	AnnualIncome       *float64
	Grade              *string
	Purpose            *string
	EmpLength          *string
	HomeOwnership      *string
	IssueDate          *string
	State              *string
	RevolUtil          *float64
	EarliestCreditLine *string
	DTI                *float64
	ApplicationType    *string
	LoanStatus         *string
}

// LoanRecord represents a cleaned loan with its derived columns
type LoanRecord struct {
	ID                 string  `json:"id"`
	LoanAmount         float64 `json:"loan_amnt"`
	InterestRate       float64 `json:"int_rate"`
	Term               string  `json:"term"`
	TermClean          int     `json:"term_clean"`
	AnnualIncome       float64 `json:"annual_inc"`
	IncomeFlag         string  `json:"income_flag"`
	Grade              string  `json:"grade"`
	Purpose            string  `json:"purpose"`
	EmpLength          string  `json:"emp_length"`
	HomeOwnership      string  `json:"home_ownership"`
	IssueDate          string  `json:"issue_d"`
	State              string  `json:"addr_state"`
	RevolUtil          float64 `json:"revol_util"`
	EarliestCreditLine string  `json:"earliest_cr_line"`
	DTI                float64 `json:"dti"`
	ApplicationType    string  `json:"application_type"`
	LoanStatus         string  `json:"loan_status"`
}

// IsDefault reports whether the loan counts as defaulted
func (l LoanRecord) IsDefault() bool {
	return l.LoanStatus == StatusChargedOff
}
