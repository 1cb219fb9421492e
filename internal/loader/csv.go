package loader

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Dan9191/loan-analytics/internal/models"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/sirupsen/logrus"
)

// MissingValues are the cell contents treated as absent
var MissingValues = []string{"", "NA", "NaN", "null", "NULL"}

// CSVSource reads the loan dataset from a CSV file with a header row
type CSVSource struct {
	path string
	log  logrus.FieldLogger
}

// NewCSVSource initializes a new CSV source
func NewCSVSource(path string, log logrus.FieldLogger) *CSVSource {
	return &CSVSource{path: path, log: log}
}

// Name identifies the source in reports
func (s *CSVSource) Name() string {
	return "csv:" + s.path
}

// Load reads every row of the file
func (s *CSVSource) Load(ctx context.Context) ([]models.RawLoan, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	loans, err := ReadCSV(f, s.log)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	s.log.Infof("Loaded %d rows from %s", len(loans), s.path)
	return loans, ctx.Err()
}

// ReadCSV parses a loan CSV. All columns are read as strings; cells listed in
// MissingValues become nil, and numeric cells that do not parse are treated
// as missing.
func ReadCSV(r io.Reader, log logrus.FieldLogger) ([]models.RawLoan, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(MissingValues),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", df.Err)
	}

	cols := make(map[string]column, len(columns))
	for _, name := range columns {
		col := df.Col(name)
		if col.Err != nil {
			return nil, fmt.Errorf("missing column %q", name)
		}
		cols[name] = column{values: col.Records(), nan: col.IsNaN()}
	}

	p := &rowParser{cols: cols, badNumbers: map[string]int{}}
	loans := make([]models.RawLoan, df.Nrow())
	for i := range loans {
		loans[i] = models.RawLoan{
			ID:                 p.text("id", i),
			LoanAmount:         p.number("loan_amnt", i),
			InterestRate:       p.number("int_rate", i),
			Term:               p.text("term", i),
			AnnualIncome:       p.number("annual_inc", i),
			Grade:              p.text("grade", i),
			Purpose:            p.text("purpose", i),
			EmpLength:          p.text("emp_length", i),
			HomeOwnership:      p.text("home_ownership", i),
			IssueDate:          p.text("issue_d", i),
			State:              p.text("addr_state", i),
			RevolUtil:          p.number("revol_util", i),
			EarliestCreditLine: p.text("earliest_cr_line", i),
			DTI:                p.number("dti", i),
			ApplicationType:    p.text("application_type", i),
			LoanStatus:         p.text("loan_status", i),
		}
	}

	for name, n := range p.badNumbers {
		log.WithFields(logrus.Fields{"column": name, "rows": n}).Warn("Non-numeric values treated as missing")
	}
	return loans, nil
}

type column struct {
	values []string
	nan    []bool
}

type rowParser struct {
	cols       map[string]column
	badNumbers map[string]int
}

func (p *rowParser) text(name string, i int) *string {
	c := p.cols[name]
	if c.nan[i] {
		return nil
	}
	v := c.values[i]
	return &v
}

func (p *rowParser) number(name string, i int) *float64 {
	s := p.text(name, i)
	if s == nil {
		return nil
	}
	// int_rate and revol_util are often exported as "13.56%"
	v := strings.TrimSuffix(strings.TrimSpace(*s), "%")
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		p.badNumbers[name]++
		return nil
	}
	return &f
}
