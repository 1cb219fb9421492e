package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncomeBand(t *testing.T) {
	tests := []struct {
		income float64
		want   string
	}{
		{0, BandZeroIncome},
		{1, BandLowIncome},
		{49999.99, BandLowIncome},
		{50000, BandMidIncome},
		{80000, BandMidIncome},
		{99999.99, BandMidIncome},
		{100000, BandHighIncome},
		{149999.99, BandHighIncome},
		{150000, BandVeryHighIncome},
		{2000000, BandVeryHighIncome},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IncomeBand(tt.income), "income %v", tt.income)
	}
}

func TestIncomeBandIsExhaustiveAndExclusive(t *testing.T) {
	bands := map[string]bool{
		BandZeroIncome: true, BandLowIncome: true, BandMidIncome: true,
		BandHighIncome: true, BandVeryHighIncome: true,
	}
	for income := -1000.0; income <= 300000; income += 2500 {
		assert.True(t, bands[IncomeBand(income)], "income %v mapped to unknown band", income)
	}
}

func TestInterestBand(t *testing.T) {
	assert.Equal(t, BandLowInterest, InterestBand(9.99))
	assert.Equal(t, BandMediumInterest, InterestBand(10))
	assert.Equal(t, BandMediumInterest, InterestBand(15))
	assert.Equal(t, BandHighInterest, InterestBand(15.01))
}

func TestLoanSize(t *testing.T) {
	assert.Equal(t, SizeSmall, LoanSize(5000))
	assert.Equal(t, SizeMedium, LoanSize(5000.01))
	assert.Equal(t, SizeMedium, LoanSize(15000))
	assert.Equal(t, SizeLarge, LoanSize(15000.01))
}

func TestUtilizationBand(t *testing.T) {
	assert.Equal(t, BandLowUtil, UtilizationBand(29.9))
	assert.Equal(t, BandModerateUtil, UtilizationBand(30))
	assert.Equal(t, BandModerateUtil, UtilizationBand(60))
	assert.Equal(t, BandHighUtil, UtilizationBand(60.1))
}

func TestDTIBand(t *testing.T) {
	assert.Equal(t, BandLowDTI, DTIBand(9.99))
	assert.Equal(t, BandModerateDTI, DTIBand(10))
	assert.Equal(t, BandModerateDTI, DTIBand(20))
	assert.Equal(t, BandHighDTI, DTIBand(20.01))
}

func TestCreditAgeBand(t *testing.T) {
	tests := map[int]string{
		0:  "<10 years",
		9:  "<10 years",
		10: "10-20 years",
		20: "10-20 years",
		21: "20-30 years",
		30: "20-30 years",
		40: "30-40 years",
		50: "40-50 years",
		51: ">50 years",
	}
	for years, want := range tests {
		assert.Equal(t, want, CreditAgeBand(years), "years %d", years)
	}
}

func TestEmpLengthYears(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "< 1 year", want: 0},
		{raw: "1 year", want: 1},
		{raw: "4 years", want: 4},
		{raw: "10+ years", want: 10},
		{raw: " 7 years ", want: 7},
		{raw: "n/a", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "ten years", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := EmpLengthYears(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnparseableOrdinal)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
