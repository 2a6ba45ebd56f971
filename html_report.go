package main

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/samber/lo"
)

// chartDataset is one line series in the Chart.js config
type chartDataset struct {
	Label       string    `json:"label"`
	Data        []float64 `json:"data"`
	BorderColor string    `json:"borderColor"`
	Fill        bool      `json:"fill"`
}

// chartData is the data block of a Chart.js line chart
type chartData struct {
	Labels   []string       `json:"labels"`
	Datasets []chartDataset `json:"datasets"`
}

// buildChartData maps the rate series onto the chart contract: incomes on the
// category axis, overall and marginal rates as two line series
func buildChartData(series RateSeries) chartData {
	return chartData{
		Labels: lo.Map(series.Incomes, func(income float64, _ int) string {
			return FormatMoney(income)
		}),
		Datasets: []chartDataset{
			{Label: "Overall Tax Rate (%)", Data: series.OverallRates, BorderColor: "orange"},
			{Label: "Marginal Tax Rate (%)", Data: series.MarginalRates, BorderColor: "blue"},
		},
	}
}

// WriteHTMLReport writes a standalone page with the rates table and chart
func WriteHTMLReport(w io.Writer, ty TaxYear, rows []TaxRow) error {
	data, err := json.Marshal(buildChartData(SeriesFromRows(rows)))
	if err != nil {
		return fmt.Errorf("encode chart data: %w", err)
	}

	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>UK Tax Rates %s</title>
    <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
`, html.EscapeString(ty.Label))
	fmt.Fprint(bw, reportStyles)
	fmt.Fprintf(bw, `</head>
<body>
<div class="container">
    <h1>Income Tax &amp; National Insurance %s</h1>
    <p class="subtitle">Generated %s</p>
`, html.EscapeString(ty.Label), time.Now().Format("2 January 2006 15:04"))

	writeAllowanceSummaryHTML(bw, ty)

	fmt.Fprint(bw, `    <div class="card">
        <h2>Effective Tax Rates</h2>
        <canvas id="taxChart"></canvas>
    </div>
    <div class="card">
        <h2>Tax by Income</h2>
        <table id="taxTable">
            <thead><tr>`)
	for _, h := range tableHeaders {
		fmt.Fprintf(bw, "<th>%s</th>", html.EscapeString(h))
	}
	fmt.Fprint(bw, "</tr></thead>\n            <tbody>\n")
	for _, row := range rows {
		fmt.Fprint(bw, "                <tr>")
		for _, cell := range formatRowCells(row) {
			fmt.Fprintf(bw, "<td>%s</td>", html.EscapeString(cell))
		}
		fmt.Fprint(bw, "</tr>\n")
	}
	fmt.Fprint(bw, `            </tbody>
        </table>
    </div>
</div>
<script>
`)
	fmt.Fprintf(bw, "const chartData = %s;\n", data)
	fmt.Fprint(bw, chartScript)
	fmt.Fprint(bw, "</script>\n</body>\n</html>\n")

	return bw.Flush()
}

// writeAllowanceSummaryHTML writes the fixed allowance and band tables
func writeAllowanceSummaryHTML(w io.Writer, ty TaxYear) {
	fmt.Fprint(w, `    <div class="card">
        <h2>Allowances &amp; Bands</h2>
        <ul class="bands">
`)
	fmt.Fprintf(w, "            <li>Personal Allowance %s, reduced by £1 for every £2 over %s (nil from %s)</li>\n",
		FormatMoney(ty.PersonalAllowance), FormatMoney(ty.TaperingThreshold), FormatMoney(ty.AllowanceFullyRemovedAt()))
	fmt.Fprintf(w, "            <li>Income tax on taxable income: %s</li>\n", html.EscapeString(describeBands(ty.IncomeTaxBands)))
	fmt.Fprintf(w, "            <li>National insurance on gross income: %s</li>\n", html.EscapeString(describeBands(ty.NationalInsuranceBands)))
	fmt.Fprint(w, "        </ul>\n    </div>\n")
}

// GenerateHTMLReport writes the HTML report to filename
func GenerateHTMLReport(ty TaxYear, rows []TaxRow, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteHTMLReport(f, ty, rows); err != nil {
		return err
	}
	return f.Close()
}

// GenerateHTMLReportInDir writes tax-rates.html into a timestamped folder under outputDir
// and returns the report path
func GenerateHTMLReportInDir(ty TaxYear, rows []TaxRow, outputDir, timestamp string) (string, error) {
	dir := filepath.Join(outputDir, timestamp)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(dir, "tax-rates.html")
	if err := GenerateHTMLReport(ty, rows, filename); err != nil {
		return "", err
	}
	reportLog.WithField("file", filename).Info("HTML report generated")
	return filename, nil
}

const reportStyles = `    <style>
        :root {
            --primary: #2563eb;
            --bg: #f8fafc;
            --card-bg: #ffffff;
            --text: #1e293b;
            --text-muted: #64748b;
            --border: #e2e8f0;
        }
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: var(--bg);
            color: var(--text);
            line-height: 1.6;
            padding: 2rem;
        }
        .container { max-width: 1100px; margin: 0 auto; }
        h1 { font-size: 1.75rem; margin-bottom: 0.25rem; color: var(--primary); }
        h2 { font-size: 1.25rem; margin-bottom: 1rem; }
        .subtitle { color: var(--text-muted); margin-bottom: 1.5rem; }
        .card {
            background: var(--card-bg);
            border: 1px solid var(--border);
            border-radius: 8px;
            padding: 1.5rem;
            margin-bottom: 1.5rem;
        }
        .bands { padding-left: 1.25rem; }
        table { width: 100%; border-collapse: collapse; font-size: 0.9rem; }
        th, td { padding: 0.5rem 0.75rem; border-bottom: 1px solid var(--border); text-align: right; }
        th:first-child, td:first-child { text-align: left; }
        th { background: var(--bg); font-weight: 600; }
        tbody tr:hover { background: #f1f5f9; }
    </style>
`

// chartScript renders chartData; shared with the embedded web UI
const chartScript = `function renderChart(ctx, data) {
    return new Chart(ctx, {
        type: 'line',
        data: data,
        options: {
            responsive: true,
            scales: {
                x: { title: { display: true, text: 'Gross Income (£)' }, min: 0 },
                y: { title: { display: true, text: 'Percentage (%)' } }
            }
        }
    });
}
if (typeof chartData !== 'undefined') {
    renderChart(document.getElementById('taxChart').getContext('2d'), chartData);
}
`
