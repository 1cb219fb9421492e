package loader

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Dan9191/loan-analytics/internal/models"
	"github.com/sirupsen/logrus"
)

// PostgresSource reads the loan dataset from a raw Postgres table
type PostgresSource struct {
	db    *sql.DB
	table string
	log   logrus.FieldLogger
}

// NewPostgresSource initializes a new Postgres source
func NewPostgresSource(db *sql.DB, table string, log logrus.FieldLogger) *PostgresSource {
	return &PostgresSource{db: db, table: table, log: log}
}

// Name identifies the source in reports
func (s *PostgresSource) Name() string {
	return "postgres:" + s.table
}

// Load reads every row of the raw table
func (s *PostgresSource) Load(ctx context.Context) ([]models.RawLoan, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(columns, ", "), QuoteTable(s.table))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query raw loans: %w", err)
	}
	defer rows.Close()

	var loans []models.RawLoan
	for rows.Next() {
		var (
			id, term, grade, purpose, empLength, home, issued, state, line, appType, status sql.NullString
			amount, rate, income, util, dti                                                 sql.NullFloat64
		)
		if err := rows.Scan(&id, &amount, &rate, &term, &income, &grade, &purpose, &empLength,
			&home, &issued, &state, &util, &line, &dti, &appType, &status); err != nil {
			return nil, fmt.Errorf("failed to scan raw loan: %w", err)
		}
		loans = append(loans, models.RawLoan{
			ID:                 nullString(id),
			LoanAmount:         nullFloat(amount),
			InterestRate:       nullFloat(rate),
			Term:               nullString(term),
			AnnualIncome:       nullFloat(income),
			Grade:              nullString(grade),
			Purpose:            nullString(purpose),
			EmpLength:          nullString(empLength),
			HomeOwnership:      nullString(home),
			IssueDate:          nullString(issued),
			State:              nullString(state),
			RevolUtil:          nullFloat(util),
			EarliestCreditLine: nullString(line),
			DTI:                nullFloat(dti),
			ApplicationType:    nullString(appType),
			LoanStatus:         nullString(status),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read raw loans: %w", err)
	}
	s.log.Infof("Loaded %d rows from %s", len(loans), s.table)
	return loans, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
