package models

// IssueKind classifies a data-quality problem found in a record
type IssueKind string

const (
	IssueMissingRequiredField IssueKind = "missing_required_field"
	IssueMalformedTermValue   IssueKind = "malformed_term_value"
	IssueMalformedDateValue   IssueKind = "malformed_date_value"
	IssueUnparseableOrdinal   IssueKind = "unparseable_ordinal_field"
)

// Issue describes one record that was excluded from cleaning or from an aggregation
type Issue struct {
	Kind     IssueKind `json:"kind"`
	RecordID string    `json:"record_id"`
	Field    string    `json:"field"`
	Value    string    `json:"value,omitempty"`
	Table    string    `json:"table,omitempty"` // Empty for cleaning issues
}
