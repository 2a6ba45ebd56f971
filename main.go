package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `UK Income Tax & National Insurance Rate Explorer

Computes income tax and national insurance (2024/25 bands) across a range of
gross incomes and shows the overall and marginal effective rates as a table
and a line chart.

Usage:
  %s [options]

Options:
`, os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  %s                               Interactive mode selector
  %s -console                      Print the rates table
  %s -html                         HTML report with table and chart
  %s -pdf -start 10000 -end 200000 PDF report for a custom range
  %s -income 120000                Breakdown for a single income
  %s -web -addr :8080              Web UI on port 8080
  %s -start 20000 -save-config     Save the range as the new default
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
	}

	configFile := flag.String("config", "config.yaml", "Path to YAML configuration file (embedded defaults if missing)")
	consoleMode := flag.Bool("console", false, "Print the rates table to the console")
	generateHTML := flag.Bool("html", false, "Generate an HTML report with table and chart")
	generatePDF := flag.Bool("pdf", false, "Generate a PDF report with table and chart")
	generateCSV := flag.Bool("csv", false, "Export the table as CSV")
	income := flag.Float64("income", 0, "Show the tax breakdown for a single gross income")
	start := flag.Float64("start", 0, "First income in the range (default from config)")
	end := flag.Float64("end", 0, "Last income in the range, inclusive (default from config)")
	step := flag.Float64("step", 0, "Income step (default from config)")
	webMode := flag.Bool("web", false, "Start web server mode (opens external browser)")
	uiMode := flag.Bool("ui", false, "Start embedded browser mode (webview window)")
	webAddr := flag.String("addr", "", "Web server address (default from config, use :0 for auto port)")
	logLevel := flag.String("log.level", "", "Log level: trace debug info warn error critical off (default from config)")
	saveConfig := flag.Bool("save-config", false, "Write the effective configuration (after the flags above) to -config")
	flag.Parse()

	config, err := LoadConfigOrDefault(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	overrides := runOverrides{Start: *start, End: *end, Step: *step, Addr: *webAddr, LogLevel: *logLevel}
	overrides.apply(config)

	if err := configureLogging(config.GetLogLevel()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	app := &App{config: config, taxYear: DefaultTaxYear(), prompter: NewPrompter(os.Stdin, os.Stdout)}

	var modes []string
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "income" {
			app.income = income
			modes = append(modes, modeIncome)
		}
	})
	if *consoleMode {
		modes = append(modes, modeConsole)
	}
	if *generateHTML {
		modes = append(modes, modeHTML)
	}
	if *generatePDF {
		modes = append(modes, modePDF)
	}
	if *generateCSV {
		modes = append(modes, modeCSV)
	}
	if *webMode {
		modes = append(modes, modeWeb)
	}
	if *uiMode {
		modes = append(modes, modeUI)
	}

	if *saveConfig {
		if err := SaveConfig(config, *configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration saved to %s\n", *configFile)
		if len(modes) == 0 {
			return
		}
	}

	// Default: interactive mode selector
	if len(modes) == 0 {
		modes = append(modes, app.prompter.PromptForMode(config.GetRange()))
	}

	for _, mode := range modes {
		if err := app.Run(mode); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

// runOverrides holds command-line values that replace config file settings.
// Zero values leave the config untouched.
type runOverrides struct {
	Start, End, Step float64
	Addr             string
	LogLevel         string
}

func (o runOverrides) apply(config *Config) {
	if o.LogLevel != "" {
		config.LogLevel = o.LogLevel
	}
	if o.Start > 0 {
		config.Range.Start = o.Start
	}
	if o.End > 0 {
		config.Range.End = o.End
	}
	if o.Step > 0 {
		config.Range.Step = o.Step
	}
	if o.Addr != "" {
		config.Server.Addr = o.Addr
	}
}

// App dispatches run modes against one loaded configuration
type App struct {
	config   *Config
	taxYear  TaxYear
	prompter *Prompter
	income   *float64 // set by -income; nil means prompt
}

// Run executes a single mode
func (a *App) Run(mode string) error {
	log.WithField("mode", mode).Debug("running")

	switch mode {
	case modeQuit:
		return nil
	case modeIncome:
		return a.runIncome()
	case modeWeb:
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return NewWebServer(a.config, "").Start(ctx)
	case modeUI:
		if err := runEmbeddedUI(a.config); err != nil {
			return fmt.Errorf("embedded UI error: %w", err)
		}
		return nil
	}

	rng := a.config.GetRange()
	rows, err := GenerateRows(a.taxYear, rng)
	if err != nil {
		return err
	}
	log.WithField("points", len(rows)).Debug("table generated")

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	outputDir := a.config.GetOutputDir()

	switch mode {
	case modeConsole:
		PrintHeader(os.Stdout, a.taxYear, rng)
		PrintRatesTable(os.Stdout, rows)
	case modeHTML:
		path, err := GenerateHTMLReportInDir(a.taxYear, rows, outputDir, timestamp)
		if err != nil {
			return fmt.Errorf("failed to generate HTML report: %w", err)
		}
		fmt.Printf("HTML report: %s\n", path)
		if a.config.ShouldOpenBrowser() {
			openBrowser(path)
		}
	case modePDF:
		path, err := GeneratePDFInDir(a.taxYear, rows, outputDir, timestamp)
		if err != nil {
			return err
		}
		fmt.Printf("PDF report: %s\n", path)
	case modeCSV:
		path, err := GenerateCSVInDir(rows, outputDir, timestamp)
		if err != nil {
			return fmt.Errorf("failed to export CSV: %w", err)
		}
		fmt.Printf("CSV export: %s\n", path)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
	return nil
}

func (a *App) runIncome() error {
	var income float64
	if a.income != nil {
		income = *a.income
	} else {
		income = a.prompter.PromptMoney("Gross annual income", 50000)
	}
	result, err := a.taxYear.Compute(income)
	if err != nil {
		return err
	}
	fmt.Println()
	PrintTaxBreakdown(os.Stdout, a.taxYear, result)
	return nil
}

// openBrowser opens a file or URL in the default browser
func openBrowser(target string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", target)
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", target)
	default:
		log.Warnf("Cannot open browser on %s", runtime.GOOS)
		return
	}

	if err := cmd.Start(); err != nil {
		log.Warnf("Error opening browser: %v", err)
	}
}
