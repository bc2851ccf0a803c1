// =============================================================================
// Loyverse Export - Exporter Module
// =============================================================================
//
// This module contains the core export logic. It orchestrates the entire
// pipeline for a single export run, from API pagination to workbook output.
//
// EXPORT PIPELINE:
//   1. Fetch all configured endpoints (cursor pagination)
//   2. Flatten receipts into the payments view and the line-items view
//   3. Compute per-payment-type totals and stamp them onto payment rows
//   4. Derive the date and sign-adjusted amount columns
//   5. Aggregate: payment summary, daily sales, daily paid-out, top items,
//      sales metrics
//   6. Assemble the sheets (including the composite Summary)
//   7. Write the workbook
//
// ERROR RECOVERY:
//   Endpoint failures truncate that endpoint's data and the run continues;
//   only a run with no data at all, or a workbook write failure, is
//   reported as failed.
//
// =============================================================================

package exporter

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/loyverse-export/internal/aggregate"
	"github.com/ginjaninja78/loyverse-export/internal/config"
	"github.com/ginjaninja78/loyverse-export/internal/flatten"
	"github.com/ginjaninja78/loyverse-export/internal/record"
	"github.com/ginjaninja78/loyverse-export/internal/report"
	"github.com/ginjaninja78/loyverse-export/internal/xlsxwriter"
	"github.com/ginjaninja78/loyverse-export/pkg/utils"
)

// Endpoint names with dedicated processing.
const (
	endpointReceipts = "receipts"
	endpointShifts   = "shifts"
)

// Sheet names of the processed receipt views.
const (
	sheetReceiptPayments = "receipt_payments"
	sheetReceiptItems    = "receipt_items"
	sheetSummary         = "Summary"
)

// =============================================================================
// COLLABORATOR INTERFACES
// =============================================================================

// Fetcher retrieves all records of an endpoint, handling pagination
// internally. Satisfied by loyverse.Client.
type Fetcher interface {
	FetchAll(ctx context.Context, endpoint string, params url.Values) []record.Record
}

// SheetWriter persists named tables as one workbook. Satisfied by
// xlsxwriter.Writer.
type SheetWriter interface {
	Write(path string, sheets []xlsxwriter.Sheet) error
}

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of one export run.
type Result struct {
	// OutputFile is the path to the generated workbook.
	// This is empty if the run failed or was a dry run.
	OutputFile string

	// Success indicates whether the run produced (or, on a dry run, could
	// have produced) a report.
	Success bool

	// Error contains the failure if the run failed.
	Error error

	// Stats contains run statistics.
	Stats Stats
}

// Stats contains statistics about one export run.
type Stats struct {
	// Receipts is the number of raw receipt records fetched.
	Receipts int

	// Shifts is the number of raw shift records fetched.
	Shifts int

	// PaymentRows is the number of rows in the flattened payments view.
	PaymentRows int

	// LineItemRows is the number of rows in the flattened line-items view.
	LineItemRows int

	// Sheets is the number of sheets in the generated workbook.
	Sheets int

	// ProcessingTime is the elapsed wall time of the run.
	ProcessingTime time.Duration
}

// =============================================================================
// LOGGER
// =============================================================================

// Logger is an interface for logging.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// defaultLogger is a simple logger that prints to stdout. Debug lines are
// suppressed unless verbose is set.
type defaultLogger struct {
	verbose bool
}

// NewDefaultLogger creates the stdout logger.
func NewDefaultLogger(verbose bool) Logger {
	return &defaultLogger{verbose: verbose}
}

func (l *defaultLogger) Debug(msg string, args ...interface{}) {
	if l.verbose {
		fmt.Printf("[DEBUG] "+msg+"\n", args...)
	}
}

func (l *defaultLogger) Info(msg string, args ...interface{}) {
	fmt.Printf("[INFO] "+msg+"\n", args...)
}

func (l *defaultLogger) Warn(msg string, args ...interface{}) {
	fmt.Printf("[WARN] "+msg+"\n", args...)
}

func (l *defaultLogger) Error(msg string, args ...interface{}) {
	fmt.Printf("[ERROR] "+msg+"\n", args...)
}

// =============================================================================
// EXPORTER STRUCTURE
// =============================================================================

// Exporter runs the export pipeline.
type Exporter struct {
	// cfg is the application configuration.
	cfg *config.Config

	// fetcher retrieves endpoint data.
	fetcher Fetcher

	// writer persists the workbook.
	writer SheetWriter

	// logger receives progress and error lines.
	logger Logger

	// dryRun skips the workbook write when set.
	dryRun bool
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithWriter replaces the sheet writer.
func WithWriter(w SheetWriter) ExporterOption {
	return func(e *Exporter) { e.writer = w }
}

// WithLogger sets the logger.
func WithLogger(l Logger) ExporterOption {
	return func(e *Exporter) { e.logger = l }
}

// WithDryRun skips the workbook write; everything else runs.
func WithDryRun(dryRun bool) ExporterOption {
	return func(e *Exporter) { e.dryRun = dryRun }
}

// New creates a new Exporter.
//
// PARAMETERS:
//   - cfg: The application configuration.
//   - fetcher: The endpoint data source.
//   - opts: Optional configuration (writer, logger, dry run).
func New(cfg *config.Config, fetcher Fetcher, opts ...ExporterOption) *Exporter {
	e := &Exporter{
		cfg:     cfg,
		fetcher: fetcher,
		writer:  xlsxwriter.New(),
		logger:  NewDefaultLogger(false),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// =============================================================================
// MAIN PIPELINE
// =============================================================================

// Run executes one export run end to end.
func (e *Exporter) Run(ctx context.Context) Result {
	startTime := time.Now()
	result := Result{Success: false}

	e.logger.Info("Starting Loyverse data extraction...")

	// =========================================================================
	// STEP 1: FETCH ENDPOINT DATA
	// =========================================================================
	// Walk each configured endpoint's pagination. Endpoint failures have
	// already been truncated to partial data inside the fetcher.

	var receipts, shifts []record.Record
	var extraSheets []xlsxwriter.Sheet

	for _, endpoint := range e.cfg.Endpoints {
		e.logger.Info("Fetching %s data...", endpoint)
		data := e.fetcher.FetchAll(ctx, endpoint, nil)

		switch endpoint {
		case endpointReceipts:
			receipts = data
		case endpointShifts:
			shifts = data
			e.logger.Info("Retrieved %d %s records", len(data), endpoint)
		default:
			// Unrecognized endpoints become raw passthrough sheets.
			e.logger.Info("Retrieved %d %s records", len(data), endpoint)
			if len(data) > 0 {
				extraSheets = append(extraSheets, xlsxwriter.Sheet{
					Name:  endpoint,
					Table: record.BuildTable(data, nil),
				})
			}
		}
	}

	result.Stats.Receipts = len(receipts)
	result.Stats.Shifts = len(shifts)

	// =========================================================================
	// STEP 2: FLATTEN RECEIPTS
	// =========================================================================
	// Two independent views of the same receipts: one row per payment and
	// one row per line item.

	paymentRows := flatten.ReceiptPayments.Apply(receipts)
	lineItemRows := flatten.ReceiptLineItems.Apply(receipts)

	result.Stats.PaymentRows = len(paymentRows)
	result.Stats.LineItemRows = len(lineItemRows)
	e.logger.Debug("Flattened %d receipts into %d payment rows and %d line-item rows",
		len(receipts), len(paymentRows), len(lineItemRows))

	// =========================================================================
	// STEP 3: NO-DATA CHECK
	// =========================================================================
	// Nothing from any endpoint means there is nothing to report; the
	// writer is not invoked.

	if len(receipts) == 0 && len(shifts) == 0 && len(extraSheets) == 0 {
		result.Error = fmt.Errorf("no data to export - all API calls failed")
		e.logger.Error("%v", result.Error)
		return result
	}

	// =========================================================================
	// STEP 4: PAYMENT-TYPE TOTALS
	// =========================================================================
	// Closed-key totals over the configured payment type enumeration,
	// stamped back onto every contributing payment row.

	paymentTypeTotals := aggregate.PaymentTotals(paymentRows, e.cfg.PaymentTypes)
	aggregate.WriteBackTotals(paymentRows, paymentTypeTotals)

	// =========================================================================
	// STEP 5: DERIVED COLUMNS
	// =========================================================================
	// The payments sheet carries the calendar date and the sign-adjusted
	// amounts as explicit columns; the summary aggregates group over them.

	for _, row := range paymentRows {
		row["date_only"] = row.DateOnly("receipt_date")
		row["adjusted_money_amount"] = aggregate.AdjustedAmount(row, "money_amount")
		row["adjusted_total_money"] = aggregate.AdjustedAmount(row, "total_money")
	}

	// =========================================================================
	// STEP 6: AGGREGATES AND METRICS
	// =========================================================================

	paymentSummary := aggregate.SumByDiscoveredKey(paymentRows, "payment_name", "money_amount")
	dailySales := aggregate.SumByDiscoveredKey(paymentRows, "date_only", "total_money")
	dailyPaidOut := aggregate.DailyPaidOut(shifts)
	topItems := aggregate.TopItems(lineItemRows, e.cfg.TopItems)
	metrics := aggregate.ComputeMetrics(paymentRows)

	e.logger.Debug("Aggregated %d payment methods, %d sales days, %d paid-out days, %d top items",
		paymentSummary.Len(), dailySales.Len(), dailyPaidOut.Len(), len(topItems))

	// =========================================================================
	// STEP 7: ASSEMBLE SHEETS
	// =========================================================================
	// Sheet order: shifts, receipt_payments, Summary, receipt_items, then
	// any raw passthrough endpoints. Empty tables are skipped so a partial
	// run still produces a report of whatever was fetched.

	var sheets []xlsxwriter.Sheet

	if len(shifts) > 0 {
		sheets = append(sheets, xlsxwriter.Sheet{
			Name:  endpointShifts,
			Table: record.BuildTable(shifts, nil),
		})
	}

	if len(paymentRows) > 0 {
		paymentColumns := append(flatten.ReceiptPayments.OutputColumns(),
			"payment_total_by_type", "date_only", "adjusted_money_amount", "adjusted_total_money")
		sheets = append(sheets, xlsxwriter.Sheet{
			Name:  sheetReceiptPayments,
			Table: record.BuildTable(paymentRows, paymentColumns),
		})

		// The composite summary accompanies the payments sheet.
		sheets = append(sheets, xlsxwriter.Sheet{
			Name:  sheetSummary,
			Table: report.BuildSummary(paymentSummary, dailySales, dailyPaidOut, topItems, metrics),
		})
	}

	if len(lineItemRows) > 0 {
		sheets = append(sheets, xlsxwriter.Sheet{
			Name:  sheetReceiptItems,
			Table: record.BuildTable(lineItemRows, flatten.ReceiptLineItems.OutputColumns()),
		})
	}

	sheets = append(sheets, extraSheets...)
	result.Stats.Sheets = len(sheets)

	// =========================================================================
	// STEP 8: WRITE OUTPUT FILE
	// =========================================================================

	fileName := utils.GenerateOutputFileName(e.cfg.FilenameFormat)
	outputPath := filepath.Join(e.cfg.OutputDir, fileName)

	if e.dryRun {
		e.logger.Info("Dry run: skipping write of %s (%d sheets)", outputPath, len(sheets))
		result.Success = true
		result.Stats.ProcessingTime = time.Since(startTime)
		return result
	}

	if err := utils.EnsureDir(e.cfg.OutputDir); err != nil {
		result.Error = err
		e.logger.Error("%v", err)
		return result
	}

	if err := e.writer.Write(outputPath, sheets); err != nil {
		result.Error = fmt.Errorf("failed to export data: %w", err)
		e.logger.Error("%v", result.Error)
		return result
	}

	// =========================================================================
	// COMPLETE
	// =========================================================================

	result.OutputFile = outputPath
	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)
	e.logger.Info("Data successfully exported to %s", outputPath)

	return result
}
