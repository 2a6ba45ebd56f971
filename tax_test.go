package main

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tax Calculation Validation Tests
//
// Figures are checked by hand against the 2024/25 UK rates:
// - Personal Allowance: £12,570, reduced by £1 for every £2 over £100,000
// - Income tax on taxable income: 20% to £37,700, 40% to £150,000, 45% above
// - Employee NI on gross income: 0% to £12,570, 12% to £50,270, 2% above
// Reference: https://www.gov.uk/income-tax-rates

// tolerance for floating point comparisons (£0.01)
const taxTolerance = 0.01

func assertTaxEquals(t *testing.T, expected, actual float64, description string) {
	t.Helper()
	if math.Abs(expected-actual) > taxTolerance {
		t.Errorf("%s: expected £%.2f, got £%.2f (diff: £%.2f)",
			description, expected, actual, actual-expected)
	}
}

// =============================================================================
// Income Tax
// =============================================================================

func TestIncomeTax_KnownIncomes(t *testing.T) {
	tests := []struct {
		description string
		income      float64
		expectedTax float64
	}{
		{"zero income", 0, 0},
		{"below allowance", 10000, 0},
		{"exactly at allowance", 12570, 0},
		{"basic rate", 20000, 1486},
		{"basic rate 50k", 50000, 7486},
		{"top of basic band", 50270, 7540},
		{"tapering threshold", 100000, 27432},
		{"within taper", 120000, 39432},
		{"allowance fully removed", 125140, 42516},
		{"additional rate", 200000, 74960},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			assertTaxEquals(t, tc.expectedTax, CalculateIncomeTax(tc.income), tc.description)
		})
	}
}

func TestIncomeTax_NegativeIncomeIsZero(t *testing.T) {
	assert.Equal(t, 0.0, CalculateIncomeTax(-5000))
	assert.Equal(t, 0.0, CalculateNationalInsurance(-5000))
}

func TestAllowanceFor_Tapering(t *testing.T) {
	ty := DefaultTaxYear()

	tests := []struct {
		income    float64
		allowance float64
	}{
		{0, 12570},
		{50000, 12570},
		{100000, 12570}, // threshold itself keeps the full allowance
		{100002, 12569},
		{110000, 7570},
		{120000, 2570},
		{125140, 0},
		{300000, 0}, // never negative
	}

	for _, tc := range tests {
		assertTaxEquals(t, tc.allowance, ty.AllowanceFor(tc.income), "allowance")
	}

	assertTaxEquals(t, 125140, ty.AllowanceFullyRemovedAt(), "fully removed at")
	assertTaxEquals(t, AllowanceFullyRemovedAt, ty.AllowanceFullyRemovedAt(), "constant matches")
}

func TestTaxableIncome(t *testing.T) {
	ty := DefaultTaxYear()

	assertTaxEquals(t, 0, ty.TaxableIncome(5000), "below allowance floors at zero")
	assertTaxEquals(t, 37430, ty.TaxableIncome(50000), "50k")
	assertTaxEquals(t, 117430, ty.TaxableIncome(120000), "120k")
	assertTaxEquals(t, 200000, ty.TaxableIncome(200000), "200k")
}

// =============================================================================
// National Insurance
// =============================================================================

func TestNationalInsurance_KnownIncomes(t *testing.T) {
	tests := []struct {
		description string
		income      float64
		expectedNI  float64
	}{
		{"zero income", 0, 0},
		{"below primary threshold", 10000, 0},
		{"at primary threshold", 12570, 0},
		{"main rate", 20000, 891.6},
		{"main rate 50k", 50000, 4491.6},
		{"upper earnings limit", 50270, 4524},
		{"upper rate 120k", 120000, 5918.6},
		{"upper rate 200k", 200000, 7518.6},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			assertTaxEquals(t, tc.expectedNI, CalculateNationalInsurance(tc.income), tc.description)
		})
	}
}

func TestNationalInsurance_IgnoresAllowanceTaper(t *testing.T) {
	ty := DefaultTaxYear()

	// NI is measured on gross income, so crossing the taper only adds 2% per £1
	diff := ty.NationalInsurance(110000) - ty.NationalInsurance(100000)
	assertTaxEquals(t, 200, diff, "NI across taper")
}

// =============================================================================
// Bands
// =============================================================================

func TestCalculateTaxOnBands(t *testing.T) {
	bands := []TaxBand{
		{Name: "Low", Lower: 0, Upper: 100, Rate: 0.1},
		{Name: "High", Lower: 100, Rate: 0.5},
	}

	assertTaxEquals(t, 0, CalculateTaxOnBands(0, bands), "zero")
	assertTaxEquals(t, 0, CalculateTaxOnBands(-10, bands), "negative")
	assertTaxEquals(t, 5, CalculateTaxOnBands(50, bands), "inside first band")
	assertTaxEquals(t, 10, CalculateTaxOnBands(100, bands), "at boundary")
	assertTaxEquals(t, 60, CalculateTaxOnBands(200, bands), "open band")
}

func TestTaxBand_IsOpen(t *testing.T) {
	assert.True(t, TaxBand{Lower: 150000}.IsOpen())
	assert.False(t, TaxBand{Lower: 0, Upper: 37700}.IsOpen())
}

// =============================================================================
// Validation and Compute
// =============================================================================

func TestValidateIncome(t *testing.T) {
	assert.NoError(t, ValidateIncome(0))
	assert.NoError(t, ValidateIncome(50000))

	assert.ErrorIs(t, ValidateIncome(-1), ErrNegativeIncome)
	assert.ErrorIs(t, ValidateIncome(math.NaN()), ErrNonFiniteIncome)
	assert.ErrorIs(t, ValidateIncome(math.Inf(1)), ErrNonFiniteIncome)
	assert.ErrorIs(t, ValidateIncome(math.Inf(-1)), ErrNonFiniteIncome)
}

func TestCompute_Breakdown(t *testing.T) {
	ty := DefaultTaxYear()

	result, err := ty.Compute(120000)
	require.NoError(t, err)

	assert.Equal(t, 120000.0, result.Income)
	assertTaxEquals(t, 2570, result.PersonalAllowance, "allowance")
	assertTaxEquals(t, 117430, result.TaxableIncome, "taxable")
	assertTaxEquals(t, 39432, result.IncomeTax, "income tax")
	assertTaxEquals(t, 5918.6, result.NationalInsurance, "NI")
	assertTaxEquals(t, 45350.6, result.Total(), "total")
	assertTaxEquals(t, ty.TotalTax(120000), result.Total(), "matches TotalTax")
}

func TestCompute_RejectsBadIncome(t *testing.T) {
	ty := DefaultTaxYear()

	_, err := ty.Compute(-100)
	assert.True(t, errors.Is(err, ErrNegativeIncome))

	_, err = ty.Compute(math.NaN())
	assert.True(t, errors.Is(err, ErrNonFiniteIncome))
}

// =============================================================================
// Properties
// =============================================================================

func TestTotalTax_MonotonicInIncome(t *testing.T) {
	ty := DefaultTaxYear()

	prevTax, prevNI := 0.0, 0.0
	for income := 0.0; income <= 300000; income += 100 {
		tax := ty.IncomeTax(income)
		ni := ty.NationalInsurance(income)

		if tax < prevTax-1e-9 {
			t.Fatalf("income tax decreased at £%.0f: %.2f -> %.2f", income, prevTax, tax)
		}
		if ni < prevNI-1e-9 {
			t.Fatalf("NI decreased at £%.0f: %.2f -> %.2f", income, prevNI, ni)
		}
		if income <= NIPrimaryThreshold && ni != 0 {
			t.Fatalf("NI should be zero at £%.0f, got %.2f", income, ni)
		}
		if income <= TaperingThreshold && ty.AllowanceFor(income) != PersonalAllowanceBase {
			t.Fatalf("allowance should be unreduced at £%.0f", income)
		}
		prevTax, prevNI = tax, ni
	}
}

func TestDefaultTaxYear_NotShared(t *testing.T) {
	ty := DefaultTaxYear()
	ty.IncomeTaxBands[0].Rate = 0.99

	assertTaxEquals(t, 7486, CalculateIncomeTax(50000), "package default unaffected")
	assert.Equal(t, BasicRate, DefaultTaxYear().IncomeTaxBands[0].Rate)
}

func TestTaxYearLabel(t *testing.T) {
	tests := []struct {
		year     int
		expected string
	}{
		{2024, "2024/25"},
		{2025, "2025/26"},
		{2099, "2099/00"},
		{2000, "2000/01"},
	}

	for _, tt := range tests {
		result := TaxYearLabel(tt.year)
		if result != tt.expected {
			t.Errorf("TaxYearLabel(%d) = %s; want %s", tt.year, result, tt.expected)
		}
	}

	assert.Equal(t, "2024/25", DefaultTaxYear().Label)
}
