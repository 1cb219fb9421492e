package loader

import (
	"strings"

	"github.com/lib/pq"
)

// columns are the source columns read by every loader, in scan order
var columns = []string{
	"id", "loan_amnt", "int_rate", "term", "annual_inc", "grade", "purpose", "emp_length",
	"home_ownership", "issue_d", "addr_state", "revol_util", "earliest_cr_line", "dti",
	"application_type", "loan_status",
}

// QuoteTable quotes a possibly schema-qualified table name
func QuoteTable(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}
