package exporter

import (
	"context"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/loyverse-export/internal/config"
	"github.com/ginjaninja78/loyverse-export/internal/record"
	"github.com/ginjaninja78/loyverse-export/internal/xlsxwriter"
)

// fakeFetcher serves canned records per endpoint.
type fakeFetcher struct {
	data map[string][]record.Record
}

func (f *fakeFetcher) FetchAll(_ context.Context, endpoint string, _ url.Values) []record.Record {
	return f.data[endpoint]
}

// captureWriter records what would have been written.
type captureWriter struct {
	path   string
	sheets []xlsxwriter.Sheet
	err    error
}

func (w *captureWriter) Write(path string, sheets []xlsxwriter.Sheet) error {
	w.path = path
	w.sheets = sheets
	return w.err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		APIToken:  "tok",
		OutputDir: t.TempDir(),
	}
	require.NoError(t, cfg.Validate())
	// Defaults are applied through Load in production; tests set the few
	// fields the pipeline reads directly.
	cfg.Endpoints = []string{"receipts", "shifts"}
	cfg.PaymentTypes = []string{"Cash", "Grabfood"}
	cfg.FilenameFormat = "loyverse_export_{timestamp}.xlsx"
	cfg.TopItems = 5
	return cfg
}

func sampleReceipts() []record.Record {
	return []record.Record{
		{
			"receipt_number": "1-1001",
			"receipt_type":   "SALE",
			"receipt_date":   "2024-03-15T10:00:00Z",
			"total_money":    100.0,
			"payments": []any{
				map[string]any{"name": "Cash", "type": "CASH", "money_amount": 100.0},
			},
			"line_items": []any{
				map[string]any{"item_name": "Latte", "quantity": 2.0, "total_money": 20.0},
				map[string]any{"item_name": "Scone", "quantity": 1.0, "total_money": 80.0},
			},
		},
		{
			"receipt_number": "1-1002",
			"receipt_type":   "REFUND",
			"receipt_date":   "2024-03-15T14:00:00Z",
			"total_money":    30.0,
			"payments": []any{
				map[string]any{"name": "Cash", "type": "CASH", "money_amount": 30.0},
			},
			"line_items": []any{
				map[string]any{"item_name": "Latte", "quantity": 1.0, "total_money": 10.0},
			},
		},
	}
}

func sampleShifts() []record.Record {
	return []record.Record{
		{"opened_at": "2024-03-15T08:00:00Z", "paid_out": 12.5},
	}
}

func sheetNames(sheets []xlsxwriter.Sheet) []string {
	names := make([]string, len(sheets))
	for i, s := range sheets {
		names[i] = s.Name
	}
	return names
}

func findSheet(t *testing.T, sheets []xlsxwriter.Sheet, name string) xlsxwriter.Sheet {
	t.Helper()
	for _, s := range sheets {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("sheet %s not found in %v", name, sheetNames(sheets))
	return xlsxwriter.Sheet{}
}

func cellAt(t *testing.T, table record.Table, header string, row int) any {
	t.Helper()
	for col, h := range table.Headers {
		if h == header {
			return table.Rows[row][col]
		}
	}
	t.Fatalf("header %s not found in %v", header, table.Headers)
	return nil
}

func TestRunEndToEnd(t *testing.T) {
	fetcher := &fakeFetcher{data: map[string][]record.Record{
		"receipts": sampleReceipts(),
		"shifts":   sampleShifts(),
	}}
	writer := &captureWriter{}

	exp := New(testConfig(t), fetcher, WithWriter(writer))
	result := exp.Run(context.Background())

	require.True(t, result.Success, "run failed: %v", result.Error)
	assert.Equal(t, 2, result.Stats.Receipts)
	assert.Equal(t, 1, result.Stats.Shifts)
	assert.Equal(t, 2, result.Stats.PaymentRows)
	assert.Equal(t, 3, result.Stats.LineItemRows)

	assert.Equal(t, []string{"shifts", "receipt_payments", "Summary", "receipt_items"},
		sheetNames(writer.sheets))
	assert.Equal(t, result.OutputFile, writer.path)

	// Payment rows carry the written-back per-type total (100 - 30) and
	// the derived date column.
	payments := findSheet(t, writer.sheets, "receipt_payments").Table
	require.Len(t, payments.Rows, 2)
	assert.True(t, cellAt(t, payments, "payment_total_by_type", 0).(decimal.Decimal).Equal(decimal.NewFromInt(70)))
	assert.Equal(t, "2024-03-15", cellAt(t, payments, "date_only", 0))
	assert.True(t, cellAt(t, payments, "adjusted_money_amount", 1).(decimal.Decimal).Equal(decimal.NewFromInt(-30)))

	// Summary: metrics derive from receipt totals (gross 100, net 70).
	summary := findSheet(t, writer.sheets, "Summary").Table
	assert.Equal(t, "Total Gross Sales", cellAt(t, summary, "Sales Metrics", 0))
	assert.True(t, cellAt(t, summary, "Amount", 0).(decimal.Decimal).Equal(decimal.NewFromInt(100)))
	assert.True(t, cellAt(t, summary, "Amount", 1).(decimal.Decimal).Equal(decimal.NewFromInt(70)))

	// Top items: Latte nets 20 - 10 = 10, Scone stays 80 and ranks first.
	assert.Equal(t, "Scone", cellAt(t, summary, "Top Item", 0))
	assert.Equal(t, "Latte", cellAt(t, summary, "Top Item", 1))
}

func TestRunNoDataFails(t *testing.T) {
	fetcher := &fakeFetcher{data: map[string][]record.Record{}}
	writer := &captureWriter{}

	exp := New(testConfig(t), fetcher, WithWriter(writer))
	result := exp.Run(context.Background())

	assert.False(t, result.Success)
	assert.Error(t, result.Error)
	// The writer is never invoked.
	assert.Empty(t, writer.path)
	assert.Nil(t, writer.sheets)
}

func TestRunPartialDataStillProducesReport(t *testing.T) {
	// Receipts endpoint failed entirely; shifts came back.
	fetcher := &fakeFetcher{data: map[string][]record.Record{
		"shifts": sampleShifts(),
	}}
	writer := &captureWriter{}

	exp := New(testConfig(t), fetcher, WithWriter(writer))
	result := exp.Run(context.Background())

	require.True(t, result.Success, "run failed: %v", result.Error)
	assert.Equal(t, []string{"shifts"}, sheetNames(writer.sheets))
}

func TestRunWriteFailureFailsRun(t *testing.T) {
	fetcher := &fakeFetcher{data: map[string][]record.Record{
		"receipts": sampleReceipts(),
	}}
	writer := &captureWriter{err: assert.AnError}

	exp := New(testConfig(t), fetcher, WithWriter(writer))
	result := exp.Run(context.Background())

	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Error, assert.AnError)
}

func TestRunDryRunSkipsWriter(t *testing.T) {
	fetcher := &fakeFetcher{data: map[string][]record.Record{
		"receipts": sampleReceipts(),
	}}
	writer := &captureWriter{}

	exp := New(testConfig(t), fetcher, WithWriter(writer), WithDryRun(true))
	result := exp.Run(context.Background())

	assert.True(t, result.Success)
	assert.Empty(t, writer.path)
	assert.Empty(t, result.OutputFile)
}

func TestRunIsDeterministic(t *testing.T) {
	run := func() []xlsxwriter.Sheet {
		fetcher := &fakeFetcher{data: map[string][]record.Record{
			"receipts": sampleReceipts(),
			"shifts":   sampleShifts(),
		}}
		writer := &captureWriter{}
		exp := New(testConfig(t), fetcher, WithWriter(writer))
		require.True(t, exp.Run(context.Background()).Success)
		return writer.sheets
	}

	first := run()
	second := run()

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Name, second[i].Name)
		assert.Equal(t, first[i].Table.Headers, second[i].Table.Headers)
		assert.Equal(t, first[i].Table.Rows, second[i].Table.Rows)
	}
}
