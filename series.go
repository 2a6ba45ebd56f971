package main

import (
	"fmt"
	"math"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// MaxSeriesPoints caps the number of incomes walked in one generation
const MaxSeriesPoints = 10000

// DefaultIncomeRange returns the £5k to £150k range in £5k steps
func DefaultIncomeRange() IncomeRange {
	return IncomeRange{Start: 5000, End: 150000, Step: 5000}
}

// Validate checks that the range can be walked in ascending order
func (r IncomeRange) Validate() error {
	for _, v := range []float64{r.Start, r.End, r.Step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: bounds must be finite", ErrInvalidRange)
		}
	}
	if r.Step <= 0 {
		return fmt.Errorf("%w: step must be positive (got %.2f)", ErrInvalidRange, r.Step)
	}
	// Overall rate is undefined at zero income, which is covered by the synthetic entry
	if r.Start <= 0 {
		return fmt.Errorf("%w: start must be above zero (got %.2f)", ErrInvalidRange, r.Start)
	}
	if r.End < r.Start {
		return fmt.Errorf("%w: end %.2f is below start %.2f", ErrInvalidRange, r.End, r.Start)
	}
	// checking steps first keeps Points from converting a huge float to int
	if steps := (r.End - r.Start) / r.Step; steps > MaxSeriesPoints || r.Points() > MaxSeriesPoints {
		return fmt.Errorf("%w: more than %d points", ErrInvalidRange, MaxSeriesPoints)
	}
	return nil
}

// Points returns the number of incomes the range yields (end inclusive).
// Incomes are derived from the index so repeated stepping never drifts.
func (r IncomeRange) Points() int {
	if r.Step <= 0 || r.End < r.Start {
		return 0
	}
	// small epsilon so that e.g. 0.1 steps still reach the end
	return int(math.Floor((r.End-r.Start)/r.Step+1e-9)) + 1
}

// Incomes returns every income in the range in ascending order
func (r IncomeRange) Incomes() []float64 {
	return lo.Times(r.Points(), func(i int) float64 {
		return r.Start + float64(i)*r.Step
	})
}

// RoundRate rounds a percentage to 2 decimal places, half away from zero.
// It rounds the exact binary value, so 0.57499999999999996 becomes 0.57.
func RoundRate(rate float64) float64 {
	return decimal.NewFromFloatWithExponent(rate, -30).Round(2).InexactFloat64()
}

// GenerateRows walks the range and returns one table row per income.
// The first row has a marginal rate of 0; later rows measure the tax on each step.
func GenerateRows(ty TaxYear, r IncomeRange) ([]TaxRow, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	incomes := r.Incomes()
	rows := make([]TaxRow, 0, len(incomes))
	previousTotal := 0.0

	for i, income := range incomes {
		result, err := ty.Compute(income)
		if err != nil {
			return nil, err
		}
		total := result.Total()

		marginal := 0.0
		if i > 0 {
			marginal = 100 * (total - previousTotal) / r.Step
		}

		rows = append(rows, TaxRow{
			Income:            income,
			IncomeTax:         result.IncomeTax,
			NationalInsurance: result.NationalInsurance,
			TotalTax:          total,
			OverallRate:       RoundRate(100 * total / income),
			MarginalRate:      RoundRate(marginal),
		})
		previousTotal = total
	}

	return rows, nil
}

// SeriesFromRows builds the chart series from table rows, prepending the
// zero-income entry to all three sequences
func SeriesFromRows(rows []TaxRow) RateSeries {
	n := len(rows) + 1
	series := RateSeries{
		Incomes:       make([]float64, 1, n),
		OverallRates:  make([]float64, 1, n),
		MarginalRates: make([]float64, 1, n),
	}
	for _, row := range rows {
		series.Incomes = append(series.Incomes, row.Income)
		series.OverallRates = append(series.OverallRates, row.OverallRate)
		series.MarginalRates = append(series.MarginalRates, row.MarginalRate)
	}
	return series
}

// GenerateWithTaxYear returns the rate series for the given tax year and range
func GenerateWithTaxYear(ty TaxYear, r IncomeRange) (RateSeries, error) {
	rows, err := GenerateRows(ty, r)
	if err != nil {
		return RateSeries{}, err
	}
	return SeriesFromRows(rows), nil
}

// Generate is a convenience wrapper using the default tax year
func Generate(start, end, step float64) (RateSeries, error) {
	return GenerateWithTaxYear(defaultTaxYear, IncomeRange{Start: start, End: end, Step: step})
}
