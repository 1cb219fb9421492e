package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dan9191/loan-analytics/internal/models"
	"github.com/lib/pq"
)

// ErrNotFound is returned when no stored report exists
var ErrNotFound = errors.New("not found")

const schema = `
	CREATE SCHEMA IF NOT EXISTS analytics;
	CREATE TABLE IF NOT EXISTS analytics.loans_clean (
		id               TEXT NOT NULL,
		loan_amnt        DOUBLE PRECISION NOT NULL,
		int_rate         DOUBLE PRECISION NOT NULL,
		term             TEXT NOT NULL,
		term_clean       INTEGER NOT NULL CHECK (term_clean > 0),
		annual_inc       DOUBLE PRECISION NOT NULL,
		income_flag      TEXT NOT NULL,
		grade            TEXT NOT NULL,
		purpose          TEXT NOT NULL,
		emp_length       TEXT NOT NULL,
		home_ownership   TEXT NOT NULL,
		issue_d          TEXT NOT NULL,
		addr_state       TEXT NOT NULL,
		revol_util       DOUBLE PRECISION NOT NULL,
		earliest_cr_line TEXT NOT NULL,
		dti              DOUBLE PRECISION NOT NULL,
		application_type TEXT NOT NULL,
		loan_status      TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS analytics.loan_reports (
		id           UUID PRIMARY KEY,
		generated_at TIMESTAMPTZ NOT NULL,
		source       TEXT NOT NULL,
		signature    TEXT NOT NULL,
		payload      JSONB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS loan_reports_generated_at_idx ON analytics.loan_reports (generated_at DESC);`

var cleanedColumns = []string{
	"id", "loan_amnt", "int_rate", "term", "term_clean", "annual_inc", "income_flag", "grade",
	"purpose", "emp_length", "home_ownership", "issue_d", "addr_state", "revol_util",
	"earliest_cr_line", "dti", "application_type", "loan_status",
}

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the analytics tables if they do not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// ReplaceCleaned swaps the derived table for a new snapshot in one transaction
func (r *Repository) ReplaceCleaned(ctx context.Context, records []models.LoanRecord) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM analytics.loans_clean`); err != nil {
		return fmt.Errorf("failed to clear cleaned loans: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyInSchema("analytics", "loans_clean", cleanedColumns...))
	if err != nil {
		return fmt.Errorf("failed to prepare copy: %w", err)
	}
	for _, l := range records {
		if _, err = stmt.ExecContext(ctx, l.ID, l.LoanAmount, l.InterestRate, l.Term, l.TermClean,
			l.AnnualIncome, l.IncomeFlag, l.Grade, l.Purpose, l.EmpLength, l.HomeOwnership, l.IssueDate,
			l.State, l.RevolUtil, l.EarliestCreditLine, l.DTI, l.ApplicationType, l.LoanStatus); err != nil {
			_ = stmt.Close()
			return fmt.Errorf("failed to copy loan %s: %w", l.ID, err)
		}
	}
	// flush buffered rows
	if _, err = stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return fmt.Errorf("failed to flush copy: %w", err)
	}
	if err = stmt.Close(); err != nil {
		return fmt.Errorf("failed to close copy: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cleaned loans: %w", err)
	}
	return nil
}

// SaveReport stores a generated report with its signature
func (r *Repository) SaveReport(ctx context.Context, report *models.Report, payload []byte, signature string) error {
	query := `
		INSERT INTO analytics.loan_reports (id, generated_at, source, signature, payload)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, report.ID, report.GeneratedAt, report.Source, signature, string(payload))
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// LatestReport returns the payload of the most recent report
func (r *Repository) LatestReport(ctx context.Context) ([]byte, error) {
	var payload []byte
	query := `
		SELECT payload
		FROM analytics.loan_reports
		ORDER BY generated_at DESC
		LIMIT 1`
	err := r.db.QueryRowContext(ctx, query).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest report: %w", err)
	}
	return payload, nil
}
