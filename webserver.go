package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

// WebServer holds the HTTP server configuration
type WebServer struct {
	config  *Config
	taxYear TaxYear
	addr    string
}

// NewWebServer creates a new web server instance
func NewWebServer(config *Config, addr string) *WebServer {
	if addr == "" {
		addr = config.GetServerAddr()
	}
	return &WebServer{
		config:  config,
		taxYear: DefaultTaxYear(),
		addr:    addr,
	}
}

// APIErrorResponse is the body of every failed API call
type APIErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// APIConfigResponse describes the fixed tax year and the configured range
type APIConfigResponse struct {
	TaxYear TaxYear     `json:"tax_year"`
	Range   IncomeRange `json:"range"`
}

// Router builds the chi router with middleware and all routes
func (ws *WebServer) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: ws.config.GetAllowedOrigins(),
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/", ws.handleIndex)

	r.Route("/api", func(r chi.Router) {
		r.Get("/config", ws.handleGetConfig)
		r.Get("/tax", ws.handleTax)
		r.Get("/series", ws.handleSeries)
		r.Get("/table", ws.handleTable)

		r.Route("/export", func(r chi.Router) {
			r.Get("/csv", ws.handleExportCSV)
			r.Get("/pdf", ws.handleExportPDF)
		})
	})

	return r
}

// requestLogger logs each request through logrus once the response is written
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		serverLog.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("request")
	})
}

// listen opens the listener and returns the browser URL for it
func (ws *WebServer) listen() (net.Listener, string, error) {
	// Listen on the address (use :0 for auto-assign)
	listener, err := net.Listen("tcp", ws.addr)
	if err != nil {
		return nil, "", err
	}

	actualAddr := listener.Addr().String()
	url := fmt.Sprintf("http://%s", actualAddr)

	// If listening on all interfaces, use localhost for the URL
	if strings.HasPrefix(actualAddr, ":") || strings.HasPrefix(actualAddr, "0.0.0.0:") || strings.HasPrefix(actualAddr, "[::]:") {
		port := actualAddr[strings.LastIndex(actualAddr, ":")+1:]
		url = fmt.Sprintf("http://localhost:%s", port)
	}
	return listener, url, nil
}

// Start starts the web server, opens the browser and blocks until ctx is cancelled
func (ws *WebServer) Start(ctx context.Context) error {
	listener, url, err := ws.listen()
	if err != nil {
		return err
	}

	server := &http.Server{
		Handler:      ws.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverLog.Infof("Starting web server on %s", listener.Addr())
	serverLog.Infof("Opening %s in your browser...", url)
	go openBrowser(url)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		serverLog.Info("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// StartForEmbedded starts the server and returns the URL and a cleanup function.
// Unlike Start(), this does NOT open the browser and does NOT block.
// The caller is responsible for stopping the server via the cleanup function.
func (ws *WebServer) StartForEmbedded() (url string, cleanup func(), err error) {
	listener, url, err := ws.listen()
	if err != nil {
		return "", nil, err
	}

	serverLog.Infof("Starting embedded web server on %s", listener.Addr())

	server := &http.Server{Handler: ws.Router()}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLog.Errorf("Server error: %v", err)
		}
	}()

	cleanup = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			serverLog.Warnf("Server shutdown: %v", err)
		}
	}

	return url, cleanup, nil
}

// handleIndex serves the main web UI
func (ws *WebServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, webUIHTML)
}

func (ws *WebServer) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIConfigResponse{
		TaxYear: ws.taxYear,
		Range:   ws.config.GetRange(),
	})
}

func (ws *WebServer) handleTax(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("income")
	if raw == "" {
		sendJSONError(w, "income query parameter is required")
		return
	}
	income, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		sendJSONError(w, fmt.Sprintf("invalid income %q", raw))
		return
	}

	result, err := ws.taxYear.Compute(income)
	if err != nil {
		sendJSONError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (ws *WebServer) handleSeries(w http.ResponseWriter, r *http.Request) {
	rows, ok := ws.rowsForRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, SeriesFromRows(rows))
}

func (ws *WebServer) handleTable(w http.ResponseWriter, r *http.Request) {
	rows, ok := ws.rowsForRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (ws *WebServer) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	rows, ok := ws.rowsForRequest(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		serverLog.Errorf("CSV export failed: %v", err)
		http.Error(w, "failed to write CSV", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="tax-rates-%s.csv"`, time.Now().Format("2006-01-02-150405")))
	w.Write(buf.Bytes())
}

func (ws *WebServer) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	rows, ok := ws.rowsForRequest(w, r)
	if !ok {
		return
	}

	data, err := GenerateRatesPDFReport(ws.taxYear, rows)
	if err != nil {
		serverLog.Errorf("PDF export failed: %v", err)
		http.Error(w, "failed to generate PDF", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="tax-rates-%s.pdf"`, time.Now().Format("2006-01-02-150405")))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// rowsForRequest generates the table for the range in the query string,
// falling back to the configured range. Writes a 400 and returns false on bad input.
func (ws *WebServer) rowsForRequest(w http.ResponseWriter, r *http.Request) ([]TaxRow, bool) {
	rng, err := parseRangeQuery(r, ws.config.GetRange())
	if err != nil {
		sendJSONError(w, err.Error())
		return nil, false
	}
	rows, err := GenerateRows(ws.taxYear, rng)
	if err != nil {
		sendJSONError(w, err.Error())
		return nil, false
	}
	return rows, true
}

// parseRangeQuery overrides fields of def with start/end/step query parameters
func parseRangeQuery(r *http.Request, def IncomeRange) (IncomeRange, error) {
	q := r.URL.Query()
	fields := []struct {
		name string
		dst  *float64
	}{
		{"start", &def.Start},
		{"end", &def.End},
		{"step", &def.Step},
	}
	for _, f := range fields {
		raw := q.Get(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return IncomeRange{}, fmt.Errorf("%w: %s %q is not a number", ErrInvalidRange, f.name, raw)
		}
		*f.dst = v
	}
	return def, nil
}

// writeJSON encodes v as the response body
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		serverLog.Warnf("encode response: %v", err)
	}
}

// sendJSONError sends a JSON error response
func sendJSONError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, APIErrorResponse{
		Success: false,
		Error:   message,
	})
}

// webUIHTML is the embedded web interface HTML
const webUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>UK Tax Rate Explorer</title>
    <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
` + reportStyles + `
    <style>
        form { display: flex; gap: 1rem; align-items: flex-end; flex-wrap: wrap; }
        label { display: flex; flex-direction: column; font-size: 0.85rem; color: var(--text-muted); }
        input { padding: 0.4rem 0.6rem; border: 1px solid var(--border); border-radius: 4px; width: 9rem; }
        button, .button {
            padding: 0.45rem 1rem; border: none; border-radius: 4px;
            background: var(--primary); color: #fff; cursor: pointer; text-decoration: none; font-size: 0.9rem;
        }
        .error { color: #dc2626; margin-top: 0.75rem; }
        .breakdown { margin-top: 0.75rem; }
    </style>
</head>
<body>
<div class="container">
    <h1>UK Income Tax &amp; National Insurance</h1>
    <p class="subtitle" id="taxYear"></p>

    <div class="card">
        <h2>Income Range</h2>
        <form id="rangeForm">
            <label>Start (£)<input type="number" id="start" min="1" step="any"></label>
            <label>End (£)<input type="number" id="end" min="1" step="any"></label>
            <label>Step (£)<input type="number" id="step" min="1" step="any"></label>
            <button type="submit">Update</button>
            <a class="button" id="csvLink" href="/api/export/csv">CSV</a>
            <a class="button" id="pdfLink" href="/api/export/pdf">PDF</a>
        </form>
        <div class="error" id="rangeError"></div>
    </div>

    <div class="card">
        <h2>Single Income</h2>
        <form id="incomeForm">
            <label>Gross income (£)<input type="number" id="income" min="0" step="any" value="50000"></label>
            <button type="submit">Calculate</button>
        </form>
        <div class="breakdown" id="breakdown"></div>
    </div>

    <div class="card">
        <h2>Effective Tax Rates</h2>
        <canvas id="taxChart"></canvas>
    </div>

    <div class="card">
        <h2>Tax by Income</h2>
        <table id="taxTable">
            <thead><tr><th>Gross Income</th><th>Income Tax</th><th>National Insurance</th><th>Overall Tax Rate</th><th>Marginal Tax Rate</th></tr></thead>
            <tbody></tbody>
        </table>
    </div>
</div>
<script>
` + chartScript + `
let chart = null;
const gbp = v => '£' + Number(v).toLocaleString('en-GB');
const pence = v => '£' + Number(v).toFixed(2);
const pct = v => Number(v).toFixed(2) + '%';

function rangeQuery() {
    const params = new URLSearchParams();
    for (const id of ['start', 'end', 'step']) {
        const v = document.getElementById(id).value;
        if (v !== '') params.set(id, v);
    }
    return params.toString();
}

async function getJSON(url) {
    const res = await fetch(url);
    const body = await res.json();
    if (!res.ok) throw new Error(body.error || res.statusText);
    return body;
}

async function refresh() {
    const q = rangeQuery();
    document.getElementById('rangeError').textContent = '';
    document.getElementById('csvLink').href = '/api/export/csv?' + q;
    document.getElementById('pdfLink').href = '/api/export/pdf?' + q;
    try {
        const [rows, series] = await Promise.all([getJSON('/api/table?' + q), getJSON('/api/series?' + q)]);
        const tbody = document.querySelector('#taxTable tbody');
        tbody.innerHTML = '';
        for (const row of rows) {
            const tr = document.createElement('tr');
            for (const cell of [gbp(row.income), pence(row.income_tax), pence(row.national_insurance), pct(row.overall_rate), pct(row.marginal_rate)]) {
                const td = document.createElement('td');
                td.textContent = cell;
                tr.appendChild(td);
            }
            tbody.appendChild(tr);
        }
        const data = {
            labels: series.incomes.map(gbp),
            datasets: [
                { label: 'Overall Tax Rate (%)', data: series.overall_rates, borderColor: 'orange', fill: false },
                { label: 'Marginal Tax Rate (%)', data: series.marginal_rates, borderColor: 'blue', fill: false }
            ]
        };
        if (chart) chart.destroy();
        chart = renderChart(document.getElementById('taxChart').getContext('2d'), data);
    } catch (err) {
        document.getElementById('rangeError').textContent = err.message;
    }
}

async function calculate() {
    const out = document.getElementById('breakdown');
    try {
        const r = await getJSON('/api/tax?income=' + encodeURIComponent(document.getElementById('income').value));
        const total = r.income_tax + r.national_insurance;
        out.textContent = 'Allowance ' + gbp(r.personal_allowance) + ', taxable ' + gbp(r.taxable_income) +
            ', income tax ' + pence(r.income_tax) + ', NI ' + pence(r.national_insurance) +
            ', total ' + pence(total) + (r.income > 0 ? ' (' + pct(100 * total / r.income) + ')' : '');
    } catch (err) {
        out.textContent = err.message;
    }
}

async function init() {
    const cfg = await getJSON('/api/config');
    document.getElementById('taxYear').textContent = 'Tax year ' + cfg.tax_year.label;
    document.getElementById('start').value = cfg.range.start;
    document.getElementById('end').value = cfg.range.end;
    document.getElementById('step').value = cfg.range.step;
    await refresh();
    await calculate();
}

document.getElementById('rangeForm').addEventListener('submit', e => { e.preventDefault(); refresh(); });
document.getElementById('incomeForm').addEventListener('submit', e => { e.preventDefault(); calculate(); });
window.onload = init;
</script>
</body>
</html>
`
