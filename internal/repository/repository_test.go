package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Dan9191/loan-analytics/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func record(id string) models.LoanRecord {
	return models.LoanRecord{
		ID: id, LoanAmount: 5000, InterestRate: 9.5, Term: " 36 months", TermClean: 36,
		AnnualIncome: 40000, IncomeFlag: models.IncomeFlagReported, Grade: "A", Purpose: "car",
		EmpLength: "1 year", HomeOwnership: "RENT", IssueDate: "Dec-15", State: "CA",
		RevolUtil: 12, EarliestCreditLine: "Aug-05", DTI: 8, ApplicationType: "Individual",
		LoanStatus: "Fully Paid",
	}
}

func TestEnsureSchema(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS analytics.loans_clean").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceCleaned(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM analytics.loans_clean")).
		WillReturnResult(sqlmock.NewResult(0, 5))
	copyStmt := mock.ExpectPrepare(regexp.QuoteMeta(`COPY "analytics"."loans_clean"`))
	copyStmt.ExpectExec().
		WithArgs("1", 5000.0, 9.5, " 36 months", int64(36), 40000.0, models.IncomeFlagReported, "A", "car",
			"1 year", "RENT", "Dec-15", "CA", 12.0, "Aug-05", 8.0, "Individual", "Fully Paid").
		WillReturnResult(sqlmock.NewResult(0, 1))
	copyStmt.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	copyStmt.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.ReplaceCleaned(context.Background(), []models.LoanRecord{record("1"), record("2")})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceCleanedRollsBackOnFailure(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM analytics.loans_clean")).
		WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err := repo.ReplaceCleaned(context.Background(), []models.LoanRecord{record("1")})
	assert.ErrorContains(t, err, "permission denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveReport(t *testing.T) {
	repo, mock := newMock(t)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	report := &models.Report{ID: "0b6f3c0e-8f0e-4b8e-9f43-0c6d1c1f0a11", GeneratedAt: at, Source: "csv:loans.csv"}

	mock.ExpectExec("INSERT INTO analytics.loan_reports").
		WithArgs(report.ID, at, "csv:loans.csv", "sig", `{"id":"x"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SaveReport(context.Background(), report, []byte(`{"id":"x"}`), "sig"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestReport(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("SELECT payload").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow([]byte(`{"id":"latest"}`)))

	payload, err := repo.LatestReport(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"latest"}`, string(payload))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestReportNotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("SELECT payload").WillReturnError(sql.ErrNoRows)

	_, err := repo.LatestReport(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}
