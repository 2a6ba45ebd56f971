package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// groupThousands inserts commas into the integer part of a plain decimal string
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return sign + b.String()
}

// FormatMoney formats an amount with thousands separators and at most 2 decimals (e.g. £150,000)
func FormatMoney(amount float64) string {
	s := decimal.NewFromFloat(amount).Round(2).String()
	return "£" + groupThousands(s)
}

// FormatMoneyPence formats an amount with exactly 2 decimals and no separators (e.g. £7486.00)
func FormatMoneyPence(amount float64) string {
	return "£" + decimal.NewFromFloat(amount).StringFixed(2)
}

// FormatMoneyShort abbreviates large amounts (e.g. £150k)
func FormatMoneyShort(amount float64) string {
	if amount >= 1000000 {
		return "£" + strings.TrimRight(strings.TrimRight(strconv.FormatFloat(amount/1000000, 'f', 1, 64), "0"), ".") + "m"
	} else if amount >= 1000 {
		return "£" + strings.TrimRight(strings.TrimRight(strconv.FormatFloat(amount/1000, 'f', 1, 64), "0"), ".") + "k"
	}
	return "£" + strconv.FormatFloat(amount, 'f', 0, 64)
}

// FormatRate formats a percentage that is already scaled by 100 (e.g. 24.96%)
func FormatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', 2, 64) + "%"
}

// FormatFraction formats a fractional rate as a percentage (e.g. 0.4 -> 40%)
func FormatFraction(rate float64) string {
	return strconv.FormatFloat(rate*100, 'f', -1, 64) + "%"
}

// tableHeaders are shared by the console, HTML, PDF and CSV renderers
var tableHeaders = []string{"Gross Income", "Income Tax", "National Insurance", "Overall Tax Rate", "Marginal Tax Rate"}

// formatRowCells renders one row the way the rates table displays it
func formatRowCells(row TaxRow) []string {
	return []string{
		FormatMoney(row.Income),
		FormatMoneyPence(row.IncomeTax),
		FormatMoneyPence(row.NationalInsurance),
		FormatRate(row.OverallRate),
		FormatRate(row.MarginalRate),
	}
}

// PrintHeader prints the banner and the fixed tax year figures
func PrintHeader(w io.Writer, ty TaxYear, r IncomeRange) {
	fmt.Fprintln(w, "╔══════════════════════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(w, "║                 UK INCOME TAX & NATIONAL INSURANCE RATES                     ║")
	fmt.Fprintln(w, "╚══════════════════════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Tax year %s:\n", ty.Label)
	fmt.Fprintln(w, "──────────────")
	fmt.Fprintf(w, "  Personal Allowance: %s, reduced by £1 per £2 over %s (nil from %s)\n",
		FormatMoney(ty.PersonalAllowance), FormatMoney(ty.TaperingThreshold), FormatMoney(ty.AllowanceFullyRemovedAt()))
	fmt.Fprintf(w, "  Income tax (taxable income): %s\n", describeBands(ty.IncomeTaxBands))
	fmt.Fprintf(w, "  National insurance (gross):  %s\n", describeBands(ty.NationalInsuranceBands))
	fmt.Fprintf(w, "  Range: %s to %s in %s steps\n", FormatMoney(r.Start), FormatMoney(r.End), FormatMoney(r.Step))
	fmt.Fprintln(w)
}

// describeBands returns a one-line summary such as "£0-£37,700 @ 20%, ..."
func describeBands(bands []TaxBand) string {
	parts := make([]string, 0, len(bands))
	for _, band := range bands {
		if band.IsOpen() {
			parts = append(parts, fmt.Sprintf("%s+ @ %s", FormatMoney(band.Lower), FormatFraction(band.Rate)))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s-%s @ %s", FormatMoney(band.Lower), FormatMoney(band.Upper), FormatFraction(band.Rate)))
	}
	return strings.Join(parts, ", ")
}

// PrintRatesTable prints one line per generated income
func PrintRatesTable(w io.Writer, rows []TaxRow) {
	fmt.Fprintf(w, "%14s │ %12s │ %18s │ %16s │ %17s\n",
		tableHeaders[0], tableHeaders[1], tableHeaders[2], tableHeaders[3], tableHeaders[4])
	fmt.Fprintln(w, strings.Repeat("─", 90))

	for _, row := range rows {
		cells := formatRowCells(row)
		fmt.Fprintf(w, "%14s │ %12s │ %18s │ %16s │ %17s\n",
			cells[0], cells[1], cells[2], cells[3], cells[4])
	}
	fmt.Fprintln(w)
}

// PrintTaxBreakdown prints the working for a single income
func PrintTaxBreakdown(w io.Writer, ty TaxYear, result TaxResult) {
	fmt.Fprintf(w, "Gross income:        %s\n", FormatMoney(result.Income))
	fmt.Fprintf(w, "Personal allowance:  %s\n", FormatMoney(result.PersonalAllowance))
	fmt.Fprintf(w, "Taxable income:      %s\n", FormatMoney(result.TaxableIncome))
	fmt.Fprintln(w, strings.Repeat("─", 40))

	for _, band := range ty.IncomeTaxBands {
		if inBand := amountInBand(result.TaxableIncome, band); inBand > 0 {
			fmt.Fprintf(w, "  %-22s %12s @ %-4s = %s\n", band.Name, FormatMoney(inBand),
				FormatFraction(band.Rate), FormatMoneyPence(inBand*band.Rate))
		}
	}
	fmt.Fprintf(w, "Income tax:          %s\n", FormatMoneyPence(result.IncomeTax))

	for _, band := range ty.NationalInsuranceBands {
		if inBand := amountInBand(result.Income, band); inBand > 0 && band.Rate > 0 {
			fmt.Fprintf(w, "  %-22s %12s @ %-4s = %s\n", band.Name, FormatMoney(inBand),
				FormatFraction(band.Rate), FormatMoneyPence(inBand*band.Rate))
		}
	}
	fmt.Fprintf(w, "National insurance:  %s\n", FormatMoneyPence(result.NationalInsurance))
	fmt.Fprintln(w, strings.Repeat("─", 40))

	fmt.Fprintf(w, "Total deductions:    %s\n", FormatMoneyPence(result.Total()))
	fmt.Fprintf(w, "Net income:          %s\n", FormatMoneyPence(result.Income-result.Total()))
	if result.Income > 0 {
		fmt.Fprintf(w, "Overall rate:        %s\n", FormatRate(RoundRate(100*result.Total()/result.Income)))
	}
}
