package main

import (
	"fmt"
	"math"
)

// UK 2024/25 figures. Brackets are fixed; see DefaultTaxYear.
const (
	PersonalAllowanceBase = 12570.0
	TaperingThreshold     = 100000.0
	TaperingRate          = 0.5 // £1 of allowance lost per £2 over the threshold

	// Income tax bands, measured on taxable income
	BasicRateLimit  = 37700.0
	HigherRateLimit = 150000.0
	BasicRate       = 0.20
	HigherRate      = 0.40
	AdditionalRate  = 0.45

	// Class 1 employee national insurance, measured on gross income
	NIPrimaryThreshold   = 12570.0
	NIUpperEarningsLimit = 50270.0
	NIMainRate           = 0.12
	NIUpperRate          = 0.02
)

// AllowanceFullyRemovedAt is the income at which the personal allowance reaches zero
const AllowanceFullyRemovedAt = TaperingThreshold + PersonalAllowanceBase/TaperingRate

// DefaultTaxYearStart is the calendar year in which the built-in tax year begins
const DefaultTaxYearStart = 2024

// TaxYearLabel returns the UK tax year label for the year it starts in (e.g. 2024 -> "2024/25")
func TaxYearLabel(year int) string {
	return fmt.Sprintf("%d/%02d", year, (year+1)%100)
}

// DefaultTaxYear returns the 2024/25 allowance and band tables
func DefaultTaxYear() TaxYear {
	return TaxYear{
		Label:             TaxYearLabel(DefaultTaxYearStart),
		PersonalAllowance: PersonalAllowanceBase,
		TaperingThreshold: TaperingThreshold,
		TaperingRate:      TaperingRate,
		IncomeTaxBands: []TaxBand{
			{Name: "Basic Rate", Lower: 0, Upper: BasicRateLimit, Rate: BasicRate},
			{Name: "Higher Rate", Lower: BasicRateLimit, Upper: HigherRateLimit, Rate: HigherRate},
			{Name: "Additional Rate", Lower: HigherRateLimit, Rate: AdditionalRate},
		},
		NationalInsuranceBands: []TaxBand{
			{Name: "Below Primary Threshold", Lower: 0, Upper: NIPrimaryThreshold, Rate: 0},
			{Name: "Main Rate", Lower: NIPrimaryThreshold, Upper: NIUpperEarningsLimit, Rate: NIMainRate},
			{Name: "Upper Rate", Lower: NIUpperEarningsLimit, Rate: NIUpperRate},
		},
	}
}

// defaultTaxYear backs the package-level convenience wrappers
var defaultTaxYear = DefaultTaxYear()

// CalculateTaxOnBands taxes each portion of amount that falls inside a band
// at that band's rate. Bands must be sorted by Lower.
func CalculateTaxOnBands(amount float64, bands []TaxBand) float64 {
	if amount <= 0 {
		return 0
	}

	var total float64
	for _, band := range bands {
		if amount <= band.Lower {
			break
		}
		total += amountInBand(amount, band) * band.Rate
	}

	return total
}

// amountInBand returns the part of amount that falls inside band
func amountInBand(amount float64, band TaxBand) float64 {
	if amount <= band.Lower {
		return 0
	}
	top := amount
	if !band.IsOpen() && band.Upper < amount {
		top = band.Upper
	}
	return top - band.Lower
}

// AllowanceFor returns the personal allowance after tapering for the given income
func (ty TaxYear) AllowanceFor(income float64) float64 {
	if income <= ty.TaperingThreshold {
		return ty.PersonalAllowance
	}
	reduction := (income - ty.TaperingThreshold) * ty.TaperingRate
	return math.Max(0, ty.PersonalAllowance-reduction)
}

// TaxableIncome returns income minus the (tapered) allowance, floored at zero
func (ty TaxYear) TaxableIncome(income float64) float64 {
	return math.Max(0, income-ty.AllowanceFor(income))
}

// AllowanceFullyRemovedAt returns the income where the allowance tapers to zero
func (ty TaxYear) AllowanceFullyRemovedAt() float64 {
	return ty.TaperingThreshold + ty.PersonalAllowance/ty.TaperingRate
}

// IncomeTax returns the unrounded income tax owed on a gross income
func (ty TaxYear) IncomeTax(income float64) float64 {
	taxable := income - ty.AllowanceFor(income)
	if taxable <= 0 {
		return 0
	}
	return CalculateTaxOnBands(taxable, ty.IncomeTaxBands)
}

// NationalInsurance returns the unrounded national insurance owed on a gross income
func (ty TaxYear) NationalInsurance(income float64) float64 {
	return CalculateTaxOnBands(income, ty.NationalInsuranceBands)
}

// TotalTax returns income tax plus national insurance
func (ty TaxYear) TotalTax(income float64) float64 {
	return ty.IncomeTax(income) + ty.NationalInsurance(income)
}

// Compute validates income and returns the full breakdown
func (ty TaxYear) Compute(income float64) (TaxResult, error) {
	if err := ValidateIncome(income); err != nil {
		return TaxResult{}, err
	}
	return TaxResult{
		Income:            income,
		PersonalAllowance: ty.AllowanceFor(income),
		TaxableIncome:     ty.TaxableIncome(income),
		IncomeTax:         ty.IncomeTax(income),
		NationalInsurance: ty.NationalInsurance(income),
	}, nil
}

// ValidateIncome rejects incomes outside the domain of the formulas
func ValidateIncome(income float64) error {
	if math.IsNaN(income) || math.IsInf(income, 0) {
		return fmt.Errorf("%w (got %v)", ErrNonFiniteIncome, income)
	}
	if income < 0 {
		return fmt.Errorf("%w (got %.2f)", ErrNegativeIncome, income)
	}
	return nil
}

// CalculateIncomeTax is a convenience wrapper using the default tax year
func CalculateIncomeTax(income float64) float64 {
	return defaultTaxYear.IncomeTax(income)
}

// CalculateNationalInsurance is a convenience wrapper using the default tax year
func CalculateNationalInsurance(income float64) float64 {
	return defaultTaxYear.NationalInsurance(income)
}
