// =============================================================================
// Loyverse Export - Summary Report Assembler
// =============================================================================
//
// This module assembles the composite Summary sheet: several independently
// sized aggregate tables laid side by side in fixed column sections with
// blank spacer columns between them.
//
// LAYOUT (left to right):
//
//   | Payment Method | Net Total Amount | | Date | Sales | | Date_PaidOut |
//   | Paid Out | | Top Item | Total Sales | Total Quantity | | Sales
//   | Metrics | Amount |
//
// Alignment is purely positional: row i of one section has no relationship
// to row i of another. The grouped sections are padded with blank rows to
// the longest section's length; the top-item and metrics sections occupy
// only their own first rows. Nothing is ever truncated.
//
// =============================================================================

package report

import (
	"github.com/ginjaninja78/loyverse-export/internal/aggregate"
	"github.com/ginjaninja78/loyverse-export/internal/record"
)

// summaryHeaders is the fixed column layout of the Summary sheet. Empty
// strings are the spacer columns.
var summaryHeaders = []string{
	"Payment Method",
	"Net Total Amount",
	"",
	"Date",
	"Sales",
	"",
	"Date_PaidOut",
	"Paid Out",
	"",
	"Top Item",
	"Total Sales",
	"Total Quantity",
	"",
	"Sales Metrics",
	"Amount",
}

// metricsLabels are the row labels of the metrics section, in row order.
var metricsLabels = []string{
	"Total Gross Sales",
	"Total Net Sales",
	"Gross-Net Difference",
}

// BuildSummary assembles the composite summary table.
//
// PARAMETERS:
//   - paymentTotals: Net totals per payment method.
//   - dailySales: Sign-adjusted sales per calendar date.
//   - dailyPaidOut: Paid-out cash per calendar date.
//   - topItems: Ranked item summaries; only the given slice is shown, the
//     caller caps its length.
//   - metrics: The headline sales metrics, occupying the first three rows
//     of the final section.
//
// RETURNS:
//   - The summary as a sheet-shaped table. Row count is the maximum of the
//     three grouped sections, the top-item count, and the three metrics
//     rows.
func BuildSummary(
	paymentTotals aggregate.GroupedTotals,
	dailySales aggregate.GroupedTotals,
	dailyPaidOut aggregate.GroupedTotals,
	topItems []aggregate.ItemSummary,
	metrics aggregate.Metrics,
) record.Table {
	rowCount := max(
		paymentTotals.Len(),
		dailySales.Len(),
		dailyPaidOut.Len(),
		len(topItems),
		len(metricsLabels),
	)

	metricsValues := []any{
		metrics.GrossSales,
		metrics.NetSales,
		metrics.Difference,
	}

	rows := make([][]any, rowCount)
	for i := range rows {
		row := make([]any, len(summaryHeaders))

		// Section 1: payment totals.
		if i < paymentTotals.Len() {
			key := paymentTotals.Keys[i]
			row[0] = key
			row[1] = paymentTotals.Totals[key]
		}

		// Section 2: daily sales.
		if i < dailySales.Len() {
			key := dailySales.Keys[i]
			row[3] = key
			row[4] = dailySales.Totals[key]
		}

		// Section 3: daily paid-out.
		if i < dailyPaidOut.Len() {
			key := dailyPaidOut.Keys[i]
			row[6] = key
			row[7] = dailyPaidOut.Totals[key]
		}

		// Section 4: top items.
		if i < len(topItems) {
			row[9] = topItems[i].Name
			row[10] = topItems[i].TotalSales
			row[11] = topItems[i].TotalQuantity
		}

		// Section 5: sales metrics.
		if i < len(metricsLabels) {
			row[13] = metricsLabels[i]
			row[14] = metricsValues[i]
		}

		rows[i] = row
	}

	return record.Table{
		Headers: append([]string(nil), summaryHeaders...),
		Rows:    rows,
	}
}
