package models

import "time"

// CleaningStats summarizes one Cleaner pass
type CleaningStats struct {
	Input           int `json:"input"`
	MissingRequired int `json:"missing_required"`
	MalformedTerm   int `json:"malformed_term"`
	Output          int `json:"output"`
}

// GroupRow is one group of a grouped summary table
type GroupRow struct {
	Key               string   `json:"key"`
	Count             int      `json:"count"`
	Defaults          int      `json:"defaults"`
	DefaultRate       float64  `json:"default_rate"` // Percent, two decimals
	AvgInterestRate   *float64 `json:"avg_interest_rate,omitempty"`
	SpreadOverKeyRate *float64 `json:"spread_over_key_rate,omitempty"`
}

// ExposureRow is one loan of the top exposure ranking
type ExposureRow struct {
	Rank         int     `json:"rank"`
	ID           string  `json:"id"`
	LoanAmount   float64 `json:"loan_amnt"`
	Grade        string  `json:"grade"`
	Purpose      string  `json:"purpose"`
	InterestRate float64 `json:"int_rate"`
	LoanStatus   string  `json:"loan_status"`
}

// Table is the result of one aggregation
type Table struct {
	Name      string        `json:"name"`
	Title     string        `json:"title"`
	Groups    []GroupRow    `json:"groups,omitempty"`
	Exposures []ExposureRow `json:"exposures,omitempty"`
	Excluded  int           `json:"excluded"`
	Issues    []Issue       `json:"issues,omitempty"` // One per excluded record
	Error     string        `json:"error,omitempty"`
}

// Report is the output of one pipeline run
type Report struct {
	ID          string        `json:"id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Source      string        `json:"source"`
	Cleaning    CleaningStats `json:"cleaning"`
	KeyRate     *float64      `json:"key_rate,omitempty"`
	Issues      []Issue       `json:"issues,omitempty"` // Records dropped by cleaning for a malformed value
	Tables      []Table       `json:"tables"`
}

// Table returns the table with the given name
func (r *Report) Table(name string) (*Table, bool) {
	for i := range r.Tables {
		if r.Tables[i].Name == name {
			return &r.Tables[i], true
		}
	}
	return nil, false
}

// Excluded returns the total number of per-aggregation exclusions
func (r *Report) Excluded() int {
	total := 0
	for _, t := range r.Tables {
		total += t.Excluded
	}
	return total
}
