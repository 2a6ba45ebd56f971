package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Run modes selectable from the menu and the command line
const (
	modeConsole = "console"
	modeHTML    = "html"
	modePDF     = "pdf"
	modeCSV     = "csv"
	modeIncome  = "income"
	modeWeb     = "web"
	modeUI      = "ui"
	modeQuit    = "quit"
)

// ValidationError reports a rejected interactive input
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// validateMoney checks the amount is a usable gross income
func validateMoney(amount float64, fieldName string) error {
	if err := ValidateIncome(amount); err != nil {
		return ValidationError{Field: fieldName, Message: err.Error()}
	}
	if amount > 100000000 { // 100 million
		return ValidationError{Field: fieldName, Message: "Amount seems too large. Please check the value"}
	}
	return nil
}

// Prompter reads menu choices and values from a terminal
type Prompter struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewPrompter creates a prompter over in/out
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{reader: bufio.NewReader(in), out: out}
}

// PromptForMode shows the mode menu and returns the selected mode
func (p *Prompter) PromptForMode(r IncomeRange) string {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, "╔══════════════════════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(p.out, "║                       UK TAX & NATIONAL INSURANCE RATES                      ║")
	fmt.Fprintln(p.out, "╚══════════════════════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(p.out)
	fmt.Fprintf(p.out, "Income range: %s to %s in %s steps\n", FormatMoney(r.Start), FormatMoney(r.End), FormatMoney(r.Step))
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, "    1) Console table       - Print tax, NI and rates for each income")
	fmt.Fprintln(p.out, "    2) HTML report         - Table and chart in the browser")
	fmt.Fprintln(p.out, "    3) PDF report          - Printable table and chart")
	fmt.Fprintln(p.out, "    4) CSV export          - Raw figures for spreadsheets")
	fmt.Fprintln(p.out, "    5) Single income       - Band-by-band breakdown for one income")
	fmt.Fprintln(p.out, "    6) Web server          - Interactive UI in your browser")
	fmt.Fprintln(p.out, "    7) Desktop window      - Interactive UI in an app window")
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, "    q) Quit")
	fmt.Fprintln(p.out)
	fmt.Fprint(p.out, "Enter choice (1-7 or q): ")

	input, err := p.reader.ReadString('\n')
	if err != nil && input == "" {
		return modeQuit
	}

	switch strings.TrimSpace(strings.ToLower(input)) {
	case "1":
		return modeConsole
	case "2":
		return modeHTML
	case "3":
		return modePDF
	case "4":
		return modeCSV
	case "5":
		return modeIncome
	case "6":
		return modeWeb
	case "7":
		return modeUI
	case "q", "quit", "exit":
		return modeQuit
	default:
		fmt.Fprintln(p.out, "Invalid choice, printing the console table.")
		return modeConsole
	}
}

// PromptMoney asks for an amount, accepting k/m suffixes and a leading £.
// Invalid input re-prompts; an empty line keeps the default.
func (p *Prompter) PromptMoney(prompt string, defaultVal float64) float64 {
	for {
		fmt.Fprintf(p.out, "%s [%s]: ", prompt, FormatMoney(defaultVal))
		input, err := p.reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			return defaultVal
		}

		val, perr := parseMoney(input)
		if perr == nil {
			perr = validateMoney(val, prompt)
		}
		if perr == nil {
			return val
		}
		fmt.Fprintf(p.out, "  %v\n", perr)
		if err != nil {
			// no more input to re-prompt with
			return defaultVal
		}
	}
}

// parseMoney parses inputs such as "60000", "£60,000", "60k" or "1.2m"
func parseMoney(input string) (float64, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.TrimPrefix(s, "£")
	s = strings.ReplaceAll(s, ",", "")

	multiplier := 1.0
	if strings.HasSuffix(s, "k") {
		multiplier = 1000
		s = strings.TrimSuffix(s, "k")
	} else if strings.HasSuffix(s, "m") {
		multiplier = 1000000
		s = strings.TrimSuffix(s, "m")
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ValidationError{Field: "amount", Message: fmt.Sprintf("%q is not an amount", input)}
	}
	return val * multiplier, nil
}
