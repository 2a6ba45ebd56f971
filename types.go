package main

import "errors"

// Domain errors
var (
	// ErrNegativeIncome is returned when a gross income below zero is supplied
	ErrNegativeIncome = errors.New("income cannot be negative")
	// ErrNonFiniteIncome is returned for NaN or infinite incomes
	ErrNonFiniteIncome = errors.New("income must be a finite number")
	// ErrInvalidRange is returned when an income range cannot be walked
	ErrInvalidRange = errors.New("invalid income range")
)

// TaxBand is one slice of a piecewise-linear rate table.
// Upper <= 0 means the band is open-ended.
type TaxBand struct {
	Name  string  `yaml:"name" json:"name"`
	Lower float64 `yaml:"lower" json:"lower"`
	Upper float64 `yaml:"upper" json:"upper"`
	Rate  float64 `yaml:"rate" json:"rate"`
}

// IsOpen returns true if the band has no upper limit
func (b TaxBand) IsOpen() bool {
	return b.Upper <= 0
}

// TaxYear holds the fixed allowance and band tables used by the calculators.
// Values are copied on construction and never mutated afterwards.
type TaxYear struct {
	Label string `json:"label"`

	// Personal Allowance before tapering (2024/25: £12,570)
	PersonalAllowance float64 `json:"personal_allowance"`
	// Income above which the allowance starts to reduce (2024/25: £100,000)
	TaperingThreshold float64 `json:"tapering_threshold"`
	// Allowance lost per £1 over the threshold (2024/25: £0.50)
	TaperingRate float64 `json:"tapering_rate"`

	// Applied to taxable income (income after allowance)
	IncomeTaxBands []TaxBand `json:"income_tax_bands"`
	// Applied to gross income
	NationalInsuranceBands []TaxBand `json:"national_insurance_bands"`
}

// TaxResult is the liability computed for a single gross income
type TaxResult struct {
	Income            float64 `json:"income"`
	PersonalAllowance float64 `json:"personal_allowance"`
	TaxableIncome     float64 `json:"taxable_income"`
	IncomeTax         float64 `json:"income_tax"`
	NationalInsurance float64 `json:"national_insurance"`
}

// Total returns income tax plus national insurance
func (r TaxResult) Total() float64 {
	return r.IncomeTax + r.NationalInsurance
}

// TaxRow is one line of the rates table. Amounts are unrounded, rates are
// percentages rounded to 2 decimal places.
type TaxRow struct {
	Income            float64 `json:"income"`
	IncomeTax         float64 `json:"income_tax"`
	NationalInsurance float64 `json:"national_insurance"`
	TotalTax          float64 `json:"total_tax"`
	OverallRate       float64 `json:"overall_rate"`
	MarginalRate      float64 `json:"marginal_rate"`
}

// RateSeries holds three lock-step sequences for charting.
// Index 0 is always the synthetic zero-income entry.
type RateSeries struct {
	Incomes       []float64 `json:"incomes"`
	OverallRates  []float64 `json:"overall_rates"`
	MarginalRates []float64 `json:"marginal_rates"`
}

// Len returns the number of points in the series
func (s RateSeries) Len() int {
	return len(s.Incomes)
}

// IncomeRange describes the incomes walked by the series generator (inclusive end)
type IncomeRange struct {
	Start float64 `yaml:"start" json:"start"`
	End   float64 `yaml:"end" json:"end"`
	Step  float64 `yaml:"step" json:"step"`
}
