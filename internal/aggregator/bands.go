package aggregator

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Band thresholds. Boundaries are fixed business definitions.
const (
	IncomeZero     = 0.0
	IncomeMid      = 50000.0
	IncomeHigh     = 100000.0
	IncomeVeryHigh = 150000.0

	InterestLow  = 10.0
	InterestHigh = 15.0

	LoanSmall  = 5000.0
	LoanMedium = 15000.0

	UtilLow  = 30.0
	UtilHigh = 60.0

	DTILow  = 10.0
	DTIHigh = 20.0

	// CenturyPivot maps two-digit years above it to the 1900s
	CenturyPivot = 30
)

const (
	BandZeroIncome     = "Zero Income"
	BandVeryHighIncome = "Very High Income"
	BandHighIncome     = "High Income"
	BandMidIncome      = "Mid Income"
	BandLowIncome      = "Low Income"

	BandLowInterest    = "Low Interest"
	BandMediumInterest = "Medium Interest"
	BandHighInterest   = "High Interest"

	SizeSmall  = "Small"
	SizeMedium = "Medium"
	SizeLarge  = "Large"

	BandLowUtil      = "Low Utilization"
	BandModerateUtil = "Moderate Utilization"
	BandHighUtil     = "High Utilization"

	BandLowDTI      = "Low DTI"
	BandModerateDTI = "Moderate DTI"
	BandHighDTI     = "High DTI"
)

// ErrUnparseableOrdinal is returned for employment lengths outside the "<n> years" convention
var ErrUnparseableOrdinal = errors.New("unparseable ordinal field")

var empLengthPattern = regexp.MustCompile(`^(<\s*)?(\d+)(\+)?\s*years?$`)

// IncomeBand classifies annual income; the first matching band wins
func IncomeBand(income float64) string {
	switch {
	case income == IncomeZero:
		return BandZeroIncome
	case income >= IncomeVeryHigh:
		return BandVeryHighIncome
	case income >= IncomeHigh:
		return BandHighIncome
	case income >= IncomeMid:
		return BandMidIncome
	default:
		return BandLowIncome
	}
}

// InterestBand classifies an interest rate in percent
func InterestBand(rate float64) string {
	switch {
	case rate < InterestLow:
		return BandLowInterest
	case rate <= InterestHigh:
		return BandMediumInterest
	default:
		return BandHighInterest
	}
}

// LoanSize classifies a loan amount
func LoanSize(amount float64) string {
	switch {
	case amount <= LoanSmall:
		return SizeSmall
	case amount <= LoanMedium:
		return SizeMedium
	default:
		return SizeLarge
	}
}

// UtilizationBand classifies revolving utilization in percent
func UtilizationBand(util float64) string {
	switch {
	case util < UtilLow:
		return BandLowUtil
	case util <= UtilHigh:
		return BandModerateUtil
	default:
		return BandHighUtil
	}
}

// DTIBand classifies a debt-to-income ratio
func DTIBand(dti float64) string {
	switch {
	case dti < DTILow:
		return BandLowDTI
	case dti <= DTIHigh:
		return BandModerateDTI
	default:
		return BandHighDTI
	}
}

// CreditAgeBand buckets a credit age in years into decade ranges
func CreditAgeBand(years int) string {
	switch {
	case years < 10:
		return "<10 years"
	case years <= 20:
		return "10-20 years"
	case years <= 30:
		return "20-30 years"
	case years <= 40:
		return "30-40 years"
	case years <= 50:
		return "40-50 years"
	default:
		return ">50 years"
	}
}

// EmpLengthYears interprets an employment length such as "< 1 year",
// "4 years" or "10+ years" as a number of years.
func EmpLengthYears(raw string) (int, error) {
	m := empLengthPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnparseableOrdinal, raw)
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnparseableOrdinal, raw)
	}
	if m[1] != "" {
		// "< 1 year" sorts before "1 year"
		n--
		if n < 0 {
			n = 0
		}
	}
	return n, nil
}
