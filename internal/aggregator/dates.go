package aggregator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedDate is returned for dates not shaped like "Mon-YY" / "Mon-YYYY"
var ErrMalformedDate = errors.New("malformed date value")

var months = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March, "Apr": time.April,
	"May": time.May, "Jun": time.June, "Jul": time.July, "Aug": time.August,
	"Sep": time.September, "Oct": time.October, "Nov": time.November, "Dec": time.December,
}

// twoDigitYear returns the numeric two-digit suffix of s
func twoDigitYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	suffix := s[len(s)-2:]
	if suffix[0] < '0' || suffix[0] > '9' || suffix[1] < '0' || suffix[1] > '9' {
		return 0, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	yy, _ := strconv.Atoi(suffix)
	return yy, nil
}

func monthPrefix(s string) (string, time.Month, error) {
	s = strings.TrimSpace(s)
	if len(s) < 3 {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	abbr := strings.ToUpper(s[:1]) + strings.ToLower(s[1:3])
	m, ok := months[abbr]
	if !ok {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	return abbr, m, nil
}

// monthYear validates the "Mon-YY" shape shared by every date column and
// returns the month abbreviation with the two-digit year
func monthYear(s string) (string, int, error) {
	abbr, _, err := monthPrefix(s)
	if err != nil {
		return "", 0, err
	}
	yy, err := twoDigitYear(s)
	if err != nil {
		return "", 0, err
	}
	return abbr, yy, nil
}

// IssueMonth normalizes an issue date such as "Dec-15" to the label "Dec-2015"
func IssueMonth(issueDate string) (string, error) {
	abbr, yy, err := monthYear(issueDate)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-20%02d", abbr, yy), nil
}

// monthOrdinal turns a "Mon-YYYY" label into a sortable year*12+month key
func monthOrdinal(label string) int {
	_, m, err := monthPrefix(label)
	if err != nil {
		return 0
	}
	year, err := strconv.Atoi(label[strings.LastIndex(label, "-")+1:])
	if err != nil {
		return 0
	}
	return year*12 + int(m) - 1
}

// IssueYear recovers the issue year; issue dates are always in the 2000s
func IssueYear(issueDate string) (int, error) {
	_, yy, err := monthYear(issueDate)
	if err != nil {
		return 0, err
	}
	return 2000 + yy, nil
}

// CreditLineYear recovers the year of the earliest credit line. Two-digit
// years above CenturyPivot belong to the 1900s, the rest to the 2000s.
func CreditLineYear(line string) (int, error) {
	_, yy, err := monthYear(line)
	if err != nil {
		return 0, err
	}
	if yy > CenturyPivot {
		return 1900 + yy, nil
	}
	return 2000 + yy, nil
}

// CreditAge is the number of years between the earliest credit line and issuance
func CreditAge(issueDate, earliestLine string) (int, error) {
	issued, err := IssueYear(issueDate)
	if err != nil {
		return 0, invalid("issue_d", issueDate, err)
	}
	opened, err := CreditLineYear(earliestLine)
	if err != nil {
		return 0, invalid("earliest_cr_line", earliestLine, err)
	}
	return issued - opened, nil
}
