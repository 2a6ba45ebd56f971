package main

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/samber/lo"
)

// pdfText converts UTF-8 text to PDF-safe encoding
// The £ sign in UTF-8 is 0xC2 0xA3, but PDF standard fonts expect Latin-1 (just 0xA3)
func pdfText(s string) string {
	return strings.ReplaceAll(s, "£", "\xa3")
}

const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight

	chartHeight = 90.0
)

// rgb is a draw/text colour for fpdf
type rgb struct{ r, g, b int }

var (
	colorHeading  = rgb{0, 51, 102}
	colorOverall  = rgb{255, 165, 0} // orange
	colorMarginal = rgb{0, 0, 255}   // blue
	colorGrid     = rgb{220, 220, 220}
	colorText     = rgb{50, 50, 50}
)

// PDFRatesReport renders the rates table and chart as a PDF document
type PDFRatesReport struct {
	pdf     *fpdf.Fpdf
	taxYear TaxYear
	rows    []TaxRow
	series  RateSeries
}

// GenerateRatesPDFReport creates the PDF report and returns its bytes
func GenerateRatesPDFReport(ty TaxYear, rows []TaxRow) ([]byte, error) {
	report := &PDFRatesReport{
		pdf:     fpdf.New("P", "mm", "A4", ""),
		taxYear: ty,
		rows:    rows,
		series:  SeriesFromRows(rows),
	}

	report.pdf.SetMargins(marginLeft, marginTop, marginRight)
	report.pdf.SetAutoPageBreak(true, marginBottom)
	report.pdf.SetTitle(fmt.Sprintf("UK Tax Rates %s", ty.Label), false)

	report.addSummaryPage()
	report.addTablePages()

	var buf bytes.Buffer
	if err := report.pdf.Output(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (r *PDFRatesReport) addSummaryPage() {
	r.pdf.AddPage()

	r.pdf.SetFont("Arial", "B", 22)
	r.setTextColor(colorHeading)
	r.pdf.CellFormat(contentWidth, 12, pdfText("Income Tax & National Insurance "+r.taxYear.Label), "", 1, "C", false, 0, "")

	r.pdf.SetFont("Arial", "I", 10)
	r.setTextColor(colorText)
	r.pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Generated: %s", time.Now().Format("2 January 2006")), "", 1, "C", false, 0, "")
	r.pdf.Ln(6)

	r.drawSectionHeader("Allowances & Bands")
	r.pdf.SetFont("Arial", "", 10)
	r.setTextColor(colorText)
	lines := []string{
		fmt.Sprintf("Personal Allowance %s, reduced by £1 for every £2 over %s (nil from %s)",
			FormatMoney(r.taxYear.PersonalAllowance), FormatMoney(r.taxYear.TaperingThreshold),
			FormatMoney(r.taxYear.AllowanceFullyRemovedAt())),
		"Income tax on taxable income: " + describeBands(r.taxYear.IncomeTaxBands),
		"National insurance on gross income: " + describeBands(r.taxYear.NationalInsuranceBands),
	}
	for _, line := range lines {
		r.pdf.MultiCell(contentWidth, 5, pdfText(line), "", "L", false)
	}
	r.pdf.Ln(6)

	r.drawSectionHeader("Effective Tax Rates")
	r.drawRateChart(marginLeft+12, r.pdf.GetY()+4, contentWidth-14, chartHeight)
}

// drawRateChart draws both rate series as lines over a category axis of incomes
func (r *PDFRatesReport) drawRateChart(x, y, w, h float64) {
	n := r.series.Len()
	if n < 2 {
		return
	}

	maxRate := lo.Max(append(append([]float64{}, r.series.OverallRates...), r.series.MarginalRates...))
	yMax := math.Max(10, math.Ceil(maxRate/10)*10)
	xStep := w / float64(n-1)
	toY := func(rate float64) float64 { return y + h - rate/yMax*h }

	// grid and y labels
	r.pdf.SetFont("Arial", "", 7)
	r.pdf.SetLineWidth(0.1)
	for v := 0.0; v <= yMax; v += 10 {
		r.setDrawColor(colorGrid)
		r.pdf.Line(x, toY(v), x+w, toY(v))
		r.setTextColor(colorText)
		r.pdf.Text(x-8, toY(v)+1, fmt.Sprintf("%.0f%%", v))
	}

	// x labels, thinned so they do not overlap
	every := int(math.Max(1, math.Ceil(float64(n)/8)))
	for i, income := range r.series.Incomes {
		if i%every != 0 && i != n-1 {
			continue
		}
		r.pdf.Text(x+float64(i)*xStep-3, y+h+4, pdfText(FormatMoneyShort(income)))
	}

	// axes
	r.setDrawColor(colorText)
	r.pdf.SetLineWidth(0.3)
	r.pdf.Line(x, y, x, y+h)
	r.pdf.Line(x, y+h, x+w, y+h)

	r.drawPolyline(r.series.OverallRates, colorOverall, x, xStep, toY)
	r.drawPolyline(r.series.MarginalRates, colorMarginal, x, xStep, toY)

	// axis titles and legend
	r.pdf.SetFont("Arial", "", 8)
	r.setTextColor(colorText)
	r.pdf.Text(x+w/2-12, y+h+9, pdfText("Gross Income (£)"))
	r.pdf.TransformBegin()
	r.pdf.TransformRotate(90, x-10, y+h/2+10)
	r.pdf.Text(x-10, y+h/2+10, "Percentage (%)")
	r.pdf.TransformEnd()

	legendY := y + h + 14
	r.drawLegendEntry(x, legendY, colorOverall, "Overall Tax Rate (%)")
	r.drawLegendEntry(x+50, legendY, colorMarginal, "Marginal Tax Rate (%)")

	r.pdf.SetY(legendY + 6)
}

func (r *PDFRatesReport) drawPolyline(values []float64, c rgb, x, xStep float64, toY func(float64) float64) {
	r.setDrawColor(c)
	r.pdf.SetLineWidth(0.6)
	for i := 1; i < len(values); i++ {
		r.pdf.Line(x+float64(i-1)*xStep, toY(values[i-1]), x+float64(i)*xStep, toY(values[i]))
	}
}

func (r *PDFRatesReport) drawLegendEntry(x, y float64, c rgb, label string) {
	r.setDrawColor(c)
	r.pdf.SetLineWidth(0.8)
	r.pdf.Line(x, y-1, x+8, y-1)
	r.setTextColor(colorText)
	r.pdf.Text(x+10, y, label)
}

func (r *PDFRatesReport) addTablePages() {
	r.pdf.AddPage()
	r.drawSectionHeader("Tax by Income")

	widths := []float64{34, 34, 42, 35, 35}
	r.drawTableHeader(tableHeaders, widths)
	for i, row := range r.rows {
		// repeat the header when a row would spill onto a new page
		if r.pdf.GetY()+5 > pageHeight-marginBottom {
			r.pdf.AddPage()
			r.drawTableHeader(tableHeaders, widths)
		}
		r.drawTableRow(formatRowCells(row), widths, i%2 == 1)
	}
}

// Helper functions

func (r *PDFRatesReport) setTextColor(c rgb) { r.pdf.SetTextColor(c.r, c.g, c.b) }
func (r *PDFRatesReport) setDrawColor(c rgb) { r.pdf.SetDrawColor(c.r, c.g, c.b) }

func (r *PDFRatesReport) drawSectionHeader(title string) {
	r.pdf.SetFont("Arial", "B", 14)
	r.setTextColor(colorHeading)
	r.pdf.CellFormat(contentWidth, 9, pdfText(title), "", 1, "L", false, 0, "")
	r.setDrawColor(colorHeading)
	r.pdf.SetLineWidth(0.3)
	r.pdf.Line(marginLeft, r.pdf.GetY(), marginLeft+contentWidth, r.pdf.GetY())
	r.pdf.Ln(4)
}

func (r *PDFRatesReport) drawTableHeader(headers []string, widths []float64) {
	r.pdf.SetFillColor(0, 51, 102)
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.SetFont("Arial", "B", 9)

	for i, header := range headers {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 6, header, "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}

func (r *PDFRatesReport) drawTableRow(cells []string, widths []float64, shaded bool) {
	r.pdf.SetFillColor(255, 255, 255)
	if shaded {
		r.pdf.SetFillColor(245, 247, 250)
	}
	r.setTextColor(colorText)
	r.pdf.SetFont("Arial", "", 9)

	for i, cell := range cells {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 5, pdfText(cell), "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}
