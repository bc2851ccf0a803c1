// =============================================================================
// Loyverse Export - Sign-Adjusted Aggregation
// =============================================================================
//
// This module computes grouped sums over flattened rows with refund
// semantics: amounts on REFUND rows are negated before summing so totals
// reflect net effect. Two grouping strategies share the one sign routine:
//
//   - Closed-key (SumByKey): the caller enumerates the expected group keys
//     up front. Every enumerated key appears in the result, zero when no
//     row contributed, so the report shape is stable across runs. Rows
//     whose key is outside the enumeration are intentionally excluded
//     from the totals.
//   - Open-key (SumByDiscoveredKey): group keys are discovered from the
//     data itself (calendar dates, item names) and returned sorted.
//
// All arithmetic is decimal; missing or malformed amounts coerce to zero
// and never abort a pass.
//
// =============================================================================

package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/loyverse-export/internal/record"
)

// =============================================================================
// SIGN ADJUSTMENT
// =============================================================================

// AdjustedAmount reads the amount field from a row and negates it when the
// row is a refund. Missing and non-numeric amounts coerce to zero.
func AdjustedAmount(row record.Record, amountField string) decimal.Decimal {
	amount := row.Decimal(amountField)
	if row.ReceiptType() == record.TypeRefund {
		return amount.Neg()
	}
	return amount
}

// AmountForPayment returns the unsigned amount of a payment row: a positive
// money_amount wins, otherwise total_money. The precedence matches the
// established report output and must not change without a business-rule
// decision.
func AmountForPayment(row record.Record) decimal.Decimal {
	if money := row.Decimal("money_amount"); money.IsPositive() {
		return money
	}
	return row.Decimal("total_money")
}

// signed negates an amount when the row is a refund.
func signed(row record.Record, amount decimal.Decimal) decimal.Decimal {
	if row.ReceiptType() == record.TypeRefund {
		return amount.Neg()
	}
	return amount
}

// =============================================================================
// GROUPED TOTALS
// =============================================================================

// GroupedTotals is one grouped-sum result: totals keyed by group, plus the
// key order for tabular output.
type GroupedTotals struct {
	// Keys lists the group keys in output order.
	Keys []string

	// Totals maps each key to its sign-adjusted sum.
	Totals map[string]decimal.Decimal
}

// Len returns the number of groups.
func (g GroupedTotals) Len() int {
	return len(g.Keys)
}

// SumByKey computes closed-key grouped sums.
//
// PARAMETERS:
//   - rows: The flattened rows to aggregate.
//   - groupField: The row field holding the group key.
//   - amountField: The row field holding the amount.
//   - keys: The full enumeration of expected group keys. Every key is
//     initialized to zero; rows with a key outside this set do not
//     contribute to any total.
//
// RETURNS:
//   - Totals in enumeration order.
func SumByKey(rows []record.Record, groupField, amountField string, keys []string) GroupedTotals {
	totals := make(map[string]decimal.Decimal, len(keys))
	for _, k := range keys {
		totals[k] = decimal.Zero
	}

	for _, row := range rows {
		key := row.StringOr(groupField, "")
		if _, known := totals[key]; !known {
			continue
		}
		totals[key] = totals[key].Add(AdjustedAmount(row, amountField))
	}

	return GroupedTotals{Keys: append([]string(nil), keys...), Totals: totals}
}

// SumByDiscoveredKey computes open-key grouped sums. Group keys are taken
// from the data; rows with an empty group key are skipped. Keys are
// returned sorted ascending, which orders date groups chronologically and
// keeps repeat runs identical.
func SumByDiscoveredKey(rows []record.Record, groupField, amountField string) GroupedTotals {
	totals := make(map[string]decimal.Decimal)

	for _, row := range rows {
		key := row.StringOr(groupField, "")
		if key == "" {
			continue
		}
		totals[key] = totals[key].Add(AdjustedAmount(row, amountField))
	}

	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return GroupedTotals{Keys: keys, Totals: totals}
}

// =============================================================================
// PAYMENT TOTALS
// =============================================================================

// PaymentTotals computes the per-payment-type net totals over payment rows
// using the closed enumeration from configuration and the payment amount
// precedence (AmountForPayment).
func PaymentTotals(rows []record.Record, paymentTypes []string) GroupedTotals {
	totals := make(map[string]decimal.Decimal, len(paymentTypes))
	for _, pt := range paymentTypes {
		totals[pt] = decimal.Zero
	}

	for _, row := range rows {
		name := row.StringOr("payment_name", "")
		if _, known := totals[name]; !known {
			continue
		}
		totals[name] = totals[name].Add(signed(row, AmountForPayment(row)))
	}

	return GroupedTotals{Keys: append([]string(nil), paymentTypes...), Totals: totals}
}

// WriteBackTotals stamps each contributing row with its group's total under
// the payment_total_by_type column, so every payment row carries the net
// total of its own payment method. Rows whose payment name is outside the
// totals are left untouched.
func WriteBackTotals(rows []record.Record, totals GroupedTotals) {
	for _, row := range rows {
		name := row.StringOr("payment_name", "")
		if total, known := totals.Totals[name]; known {
			row["payment_total_by_type"] = total
		}
	}
}

// =============================================================================
// SALES METRICS
// =============================================================================

// Metrics holds the headline totals for one export run.
type Metrics struct {
	// GrossSales is the sum of total_money over SALE rows.
	GrossSales decimal.Decimal

	// NetSales is gross sales minus the refund total.
	NetSales decimal.Decimal

	// Difference is gross minus net, i.e. the refund total. Never negative
	// given non-negative refund magnitudes.
	Difference decimal.Decimal
}

// ComputeMetrics derives the headline totals from a row set. Refund amounts
// are stored as positive magnitudes, so the refund total is subtracted, not
// summed signed. An empty row set yields all zeros; this never errors.
func ComputeMetrics(rows []record.Record) Metrics {
	gross := decimal.Zero
	refunds := decimal.Zero

	for _, row := range rows {
		amount := row.Decimal("total_money")
		switch row.ReceiptType() {
		case record.TypeSale:
			gross = gross.Add(amount)
		case record.TypeRefund:
			refunds = refunds.Add(amount)
		}
	}

	net := gross.Sub(refunds)

	return Metrics{
		GrossSales: gross,
		NetSales:   net,
		Difference: gross.Sub(net),
	}
}

// =============================================================================
// TOP ITEMS
// =============================================================================

// ItemSummary is one item's sign-adjusted sales totals.
type ItemSummary struct {
	// Name is the item name the line items were grouped under.
	Name string

	// TotalSales is the sign-adjusted total_money sum.
	TotalSales decimal.Decimal

	// TotalQuantity is the sign-adjusted quantity sum.
	TotalQuantity decimal.Decimal
}

// TopItems ranks items by sign-adjusted sales over line-item rows.
//
// Line items are grouped by item_name; refund rows contribute negative
// quantity and negative money. Groups are ordered by adjusted total sales
// descending and the first n returned. The sort is stable over the
// alphabetical group order, so ties keep that order.
func TopItems(rows []record.Record, n int) []ItemSummary {
	totals := make(map[string]*ItemSummary)

	for _, row := range rows {
		name := row.StringOr("item_name", "")
		if name == "" {
			continue
		}
		s, ok := totals[name]
		if !ok {
			s = &ItemSummary{Name: name, TotalSales: decimal.Zero, TotalQuantity: decimal.Zero}
			totals[name] = s
		}
		s.TotalSales = s.TotalSales.Add(AdjustedAmount(row, "total_money"))
		s.TotalQuantity = s.TotalQuantity.Add(AdjustedAmount(row, "quantity"))
	}

	summaries := make([]ItemSummary, 0, len(totals))
	for _, s := range totals {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].TotalSales.GreaterThan(summaries[j].TotalSales)
	})

	if n >= 0 && len(summaries) > n {
		summaries = summaries[:n]
	}
	return summaries
}

// =============================================================================
// SHIFT PAID-OUT
// =============================================================================

// shiftDateFields are the timestamp fields tried, in order, when deriving a
// shift's calendar date. opened_at is the documented field; the rest cover
// older payloads.
var shiftDateFields = []string{"opened_at", "created_at", "ended_at", "updated_at"}

// DailyPaidOut sums the paid_out amount of shifts per calendar date.
// Shifts without any parseable date are skipped; malformed paid_out values
// count as zero.
func DailyPaidOut(shifts []record.Record) GroupedTotals {
	totals := make(map[string]decimal.Decimal)

	for _, shift := range shifts {
		date := ""
		for _, field := range shiftDateFields {
			if d := shift.DateOnly(field); d != "" {
				date = d
				break
			}
		}
		if date == "" {
			continue
		}
		totals[date] = totals[date].Add(shift.Decimal("paid_out"))
	}

	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return GroupedTotals{Keys: keys, Totals: totals}
}
