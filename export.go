package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

var csvHeaders = []string{"income", "income_tax", "national_insurance", "total_tax", "overall_rate", "marginal_rate"}

// WriteCSV writes one record per row. Amounts are written unrounded so the
// export can be re-used for further calculation.
func WriteCSV(w io.Writer, rows []TaxRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeaders); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			formatCSVFloat(row.Income),
			formatCSVFloat(row.IncomeTax),
			formatCSVFloat(row.NationalInsurance),
			formatCSVFloat(row.TotalTax),
			strconv.FormatFloat(row.OverallRate, 'f', 2, 64),
			strconv.FormatFloat(row.MarginalRate, 'f', 2, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCSVFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// GenerateCSVInDir writes tax-rates.csv into a timestamped folder under outputDir
func GenerateCSVInDir(rows []TaxRow, outputDir, timestamp string) (string, error) {
	dir := filepath.Join(outputDir, timestamp)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(dir, "tax-rates.csv")
	f, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := WriteCSV(f, rows); err != nil {
		return "", err
	}
	reportLog.WithField("file", filename).Info("CSV export written")
	return filename, f.Close()
}

// GeneratePDFInDir writes tax-rates.pdf into a timestamped folder under outputDir
func GeneratePDFInDir(ty TaxYear, rows []TaxRow, outputDir, timestamp string) (string, error) {
	data, err := GenerateRatesPDFReport(ty, rows)
	if err != nil {
		return "", fmt.Errorf("failed to generate PDF: %w", err)
	}

	dir := filepath.Join(outputDir, timestamp)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(dir, "tax-rates.pdf")
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", err
	}
	reportLog.WithField("file", filename).Info("PDF report generated")
	return filename, nil
}
