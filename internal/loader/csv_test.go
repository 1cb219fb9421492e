package loader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "id,loan_amnt,int_rate,term,annual_inc,grade,purpose,emp_length,home_ownership,issue_d,addr_state,revol_util,earliest_cr_line,dti,application_type,loan_status,extra\n"

const sample = header +
	`1001,10000,13.56%, 36 months,55000,C,debt_consolidation,10+ years,RENT,Dec-15,CA,42.5%,Aug-03,18.2,Individual,Charged Off,x
1002,25000,7.5, 60 months,0,A,credit_card,n/a,MORTGAGE,Jan-16,NY,12,Mar-95,5.1,Joint App,Fully Paid,y
1003,,11.0, 36 months,NA,B,car,2 years,OWN,Feb-16,TX,,Jan-01,abc,Individual,Current,z
`

func TestReadCSV(t *testing.T) {
	logger, hook := test.NewNullLogger()

	loans, err := ReadCSV(strings.NewReader(sample), logger)
	require.NoError(t, err)
	require.Len(t, loans, 3)

	first := loans[0]
	require.NotNil(t, first.ID)
	assert.Equal(t, "1001", *first.ID)
	assert.Equal(t, 10000.0, *first.LoanAmount)
	assert.Equal(t, 13.56, *first.InterestRate)
	assert.Equal(t, " 36 months", *first.Term)
	assert.Equal(t, 42.5, *first.RevolUtil)
	assert.Equal(t, "Charged Off", *first.LoanStatus)
	assert.Equal(t, "10+ years", *first.EmpLength)

	second := loans[1]
	assert.Equal(t, 0.0, *second.AnnualIncome)
	assert.Equal(t, "n/a", *second.EmpLength, "n/a is a value, not a missing cell")
	assert.Equal(t, "Joint App", *second.ApplicationType)

	third := loans[2]
	assert.Nil(t, third.LoanAmount)
	assert.Nil(t, third.AnnualIncome)
	assert.Nil(t, third.RevolUtil)
	assert.Nil(t, third.DTI, "non-numeric dti is treated as missing")
	assert.Equal(t, "B", *third.Grade)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["column"] == "dti" {
			warned = true
			assert.Equal(t, 1, e.Data["rows"])
		}
	}
	assert.True(t, warned)
}

func TestReadCSVMissingColumn(t *testing.T) {
	logger, _ := test.NewNullLogger()
	_, err := ReadCSV(strings.NewReader("id,loan_amnt\n1,100\n"), logger)
	assert.ErrorContains(t, err, "missing column")
}

func TestCSVSourceLoad(t *testing.T) {
	logger, _ := test.NewNullLogger()
	path := filepath.Join(t.TempDir(), "loans.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	src := NewCSVSource(path, logger)
	loans, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, loans, 3)
	assert.Equal(t, "csv:"+path, src.Name())
}

func TestCSVSourceMissingFile(t *testing.T) {
	logger, _ := test.NewNullLogger()
	_, err := NewCSVSource(filepath.Join(t.TempDir(), "nope.csv"), logger).Load(context.Background())
	assert.Error(t, err)
}

func TestQuoteTable(t *testing.T) {
	assert.Equal(t, `"analytics"."loans_raw"`, QuoteTable("analytics.loans_raw"))
	assert.Equal(t, `"loans"`, QuoteTable("loans"))
	assert.Equal(t, `"we""ird"`, QuoteTable(`we"ird`))
}
