package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rateTolerance = 0.005

func TestGenerate_DefaultRange(t *testing.T) {
	series, err := Generate(5000, 150000, 5000)
	require.NoError(t, err)

	require.Equal(t, 31, series.Len())
	assert.Len(t, series.OverallRates, 31)
	assert.Len(t, series.MarginalRates, 31)

	// synthetic zero-income entry
	assert.Equal(t, 0.0, series.Incomes[0])
	assert.Equal(t, 0.0, series.OverallRates[0])
	assert.Equal(t, 0.0, series.MarginalRates[0])

	assert.Equal(t, 5000.0, series.Incomes[1])
	assert.Equal(t, 150000.0, series.Incomes[30])
	assert.Equal(t, 0.0, series.MarginalRates[1], "first generated point has no previous step")
}

func TestGenerate_KnownRates(t *testing.T) {
	series, err := Generate(5000, 150000, 5000)
	require.NoError(t, err)

	at := func(income float64) int {
		for i, v := range series.Incomes {
			if v == income {
				return i
			}
		}
		t.Fatalf("income %.0f not in series", income)
		return -1
	}

	tests := []struct {
		description string
		income      float64
		overall     float64
		marginal    float64
	}{
		{"below allowance", 10000, 0, 0},
		{"first taxed step", 15000, 5.18, 15.55},
		{"basic rate", 50000, 23.96, 32},
		{"inside taper", 110000, 35.59, 62},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			i := at(tc.income)
			assert.InDelta(t, tc.overall, series.OverallRates[i], rateTolerance, "overall")
			assert.InDelta(t, tc.marginal, series.MarginalRates[i], rateTolerance, "marginal")
		})
	}
}

func TestGenerateRows_AmountsUnrounded(t *testing.T) {
	rows, err := GenerateRows(DefaultTaxYear(), IncomeRange{Start: 50000, End: 50000, Step: 1000})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assertTaxEquals(t, 7486, row.IncomeTax, "income tax")
	assertTaxEquals(t, 4491.6, row.NationalInsurance, "NI")
	assertTaxEquals(t, 11977.6, row.TotalTax, "total")
	assert.Equal(t, 0.0, row.MarginalRate)
	assert.InDelta(t, 23.96, row.OverallRate, rateTolerance)
}

func TestGenerateRows_RatesStayWithinBands(t *testing.T) {
	rows, err := GenerateRows(DefaultTaxYear(), IncomeRange{Start: 100, End: 300000, Step: 100})
	require.NoError(t, err)
	require.Len(t, rows, 3000)

	for _, row := range rows {
		assert.GreaterOrEqual(t, row.OverallRate, 0.0)
		assert.LessOrEqual(t, row.OverallRate, 47.0)
		assert.GreaterOrEqual(t, row.MarginalRate, 0.0)
		// 40% higher rate plus the allowance taper plus 2% NI
		assert.LessOrEqual(t, row.MarginalRate, 62.0)
	}
}

func TestGenerate_InvalidRanges(t *testing.T) {
	tests := []struct {
		description string
		r           IncomeRange
	}{
		{"zero step", IncomeRange{Start: 5000, End: 150000, Step: 0}},
		{"negative step", IncomeRange{Start: 5000, End: 150000, Step: -5000}},
		{"zero start", IncomeRange{Start: 0, End: 150000, Step: 5000}},
		{"negative start", IncomeRange{Start: -5000, End: 150000, Step: 5000}},
		{"end below start", IncomeRange{Start: 150000, End: 5000, Step: 5000}},
		{"NaN end", IncomeRange{Start: 5000, End: math.NaN(), Step: 5000}},
		{"infinite end", IncomeRange{Start: 5000, End: math.Inf(1), Step: 5000}},
		{"too many points", IncomeRange{Start: 1, End: 1e9, Step: 1}},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			_, err := GenerateWithTaxYear(DefaultTaxYear(), tc.r)
			assert.ErrorIs(t, err, ErrInvalidRange)
		})
	}
}

func TestIncomeRange_Points(t *testing.T) {
	assert.Equal(t, 30, DefaultIncomeRange().Points())
	assert.Equal(t, 1, IncomeRange{Start: 100, End: 100, Step: 10}.Points())
	assert.Equal(t, 2, IncomeRange{Start: 100, End: 119, Step: 10}.Points(), "end not on a step is excluded")
	assert.Equal(t, 10, IncomeRange{Start: 0.1, End: 1.0, Step: 0.1}.Points(), "fractional steps reach the end")
	assert.Equal(t, 0, IncomeRange{Start: 100, End: 50, Step: 10}.Points())
	assert.Equal(t, 0, IncomeRange{Start: 100, End: 500, Step: 0}.Points())
}

func TestIncomeRange_IncomesDoNotDrift(t *testing.T) {
	incomes := IncomeRange{Start: 0.1, End: 1.0, Step: 0.1}.Incomes()
	require.Len(t, incomes, 10)
	assert.InDelta(t, 1.0, incomes[9], 1e-12)
}

func TestRoundRate(t *testing.T) {
	assert.Equal(t, 23.96, RoundRate(23.9552))
	assert.Equal(t, 0.13, RoundRate(0.125), "exact half rounds away from zero")
	assert.Equal(t, -0.13, RoundRate(-0.125))
	// just below a tie in binary, as toFixed(2) rounds it
	assert.Equal(t, 0.57, RoundRate(0.57499999999999996))
	assert.Equal(t, 21.52, RoundRate(21.524999999999999))
	assert.Equal(t, 62.0, RoundRate(62.00000000001))
}

func TestSeriesFromRows_Empty(t *testing.T) {
	series := SeriesFromRows(nil)
	assert.Equal(t, []float64{0}, series.Incomes)
	assert.Equal(t, []float64{0}, series.OverallRates)
	assert.Equal(t, []float64{0}, series.MarginalRates)
}

func TestGenerateRows_RatesJustBelowTie(t *testing.T) {
	rows, err := GenerateRows(DefaultTaxYear(), IncomeRange{Start: 100, End: 300000, Step: 100})
	require.NoError(t, err)

	byIncome := map[float64]TaxRow{}
	for _, row := range rows {
		byIncome[row.Income] = row
	}
	assert.Equal(t, 0.57, byIncome[12800].OverallRate)
	assert.Equal(t, 21.52, byIncome[38400].OverallRate)
}

func TestIncomeRange_ValidateAtPointLimit(t *testing.T) {
	atLimit := IncomeRange{Start: 1, End: 10000.5, Step: 1}
	assert.Equal(t, MaxSeriesPoints, atLimit.Points())
	assert.NoError(t, atLimit.Validate())

	overLimit := IncomeRange{Start: 1, End: 10001, Step: 1}
	assert.Equal(t, MaxSeriesPoints+1, overLimit.Points())
	assert.ErrorIs(t, overLimit.Validate(), ErrInvalidRange)

	huge := IncomeRange{Start: 1, End: 1e300, Step: 1e-300}
	assert.ErrorIs(t, huge.Validate(), ErrInvalidRange)
}
