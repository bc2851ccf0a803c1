// =============================================================================
// Loyverse Export - Shared Record Types
// =============================================================================
//
// This package contains the dynamic record representation used across the
// pipeline. The Loyverse API returns loosely-typed JSON objects whose exact
// field set varies by account and endpoint, so records are kept as generic
// key-value mappings and accessed through typed helpers with defined
// fallbacks. Types defined here are used by:
//   - loyverse (raw API records)
//   - flatten
//   - aggregate
//   - exporter
//
// =============================================================================

package record

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RECEIPT TYPE CONSTANTS
// =============================================================================

// Receipt type values as returned by the API under the receipt_type field.
const (
	// TypeSale marks a completed sale. Records without a receipt_type field
	// are treated as sales.
	TypeSale = "SALE"

	// TypeRefund marks a refund. Monetary amounts on refunds are stored as
	// positive magnitudes and sign-adjusted during aggregation.
	TypeRefund = "REFUND"
)

// =============================================================================
// RECORD TYPE
// =============================================================================

// Record is one raw API object (a receipt, a shift, a payment...).
// Values hold what encoding/json produces for interface{} targets:
// string, float64, bool, nil, map[string]interface{}, []interface{}.
type Record map[string]any

// StringOr returns the value under key as a string.
// Missing or non-string values return the fallback.
func (r Record) StringOr(key, fallback string) string {
	if s, ok := r[key].(string); ok {
		return s
	}
	return fallback
}

// ReceiptType returns the receipt_type field, defaulting to SALE when the
// field is absent. This default is part of the API contract: older receipts
// predate the refund feature and carry no type at all.
func (r Record) ReceiptType() string {
	return r.StringOr("receipt_type", TypeSale)
}

// Decimal returns the value under key as a decimal.
//
// COERCION RULES:
//   - JSON numbers (float64) are converted exactly as parsed.
//   - Numeric strings are parsed.
//   - Missing, null, or non-numeric values coerce to zero.
//
// The zero fallback is intentional: a malformed amount must never abort an
// aggregation pass.
func (r Record) Decimal(key string) decimal.Decimal {
	switch v := r[key].(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}
		return d
	case decimal.Decimal:
		return v
	default:
		return decimal.Zero
	}
}

// Records returns the embedded collection under key.
// Returns nil when the field is absent or not a JSON array; array elements
// that are not objects are skipped.
func (r Record) Records(key string) []Record {
	list, ok := r[key].([]any)
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(list))
	for _, el := range list {
		if m, ok := el.(map[string]any); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

// Time parses the value under key as an RFC 3339 timestamp.
func (r Record) Time(key string) (time.Time, bool) {
	s, ok := r[key].(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DateOnly returns the calendar date (YYYY-MM-DD) of the timestamp under
// key, or "" when the field is absent or unparseable. Truncation keeps the
// timestamp's own offset; no timezone normalization is applied.
func (r Record) DateOnly(key string) string {
	t, ok := r.Time(key)
	if !ok {
		return ""
	}
	return t.Format("2006-01-02")
}

// Clone returns a deep copy of the record. Nested objects and arrays are
// copied recursively so mutating one flattened row never affects a sibling
// row derived from the same parent.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue deep-copies a single JSON value.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, el := range t {
			m[k] = cloneValue(el)
		}
		return m
	case []any:
		l := make([]any, len(t))
		for i, el := range t {
			l[i] = cloneValue(el)
		}
		return l
	default:
		// Scalars (string, float64, bool, nil) are immutable.
		return t
	}
}

// =============================================================================
// TABLE TYPE
// =============================================================================

// Table is an ordered, sheet-shaped view of a row set: a header row plus one
// value row per record. Cells hold nil for absent fields.
type Table struct {
	// Headers are the column names, in output order.
	Headers []string

	// Rows contains one value slice per record, aligned with Headers.
	Rows [][]any
}

// Empty reports whether the table has no data rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// BuildTable materializes records into a Table with a deterministic column
// order: every key not listed in trailing appears first, sorted
// alphabetically, followed by the trailing columns in the given order
// (those present in at least one record). Maps iterate in random order in
// Go, so the sort is what makes repeat runs produce identical output.
//
// PARAMETERS:
//   - records: The row set to materialize.
//   - trailing: Columns forced to the end of the sheet, in order. Used for
//     flattened sub-fields and derived columns so they read left-to-right
//     after the parent fields.
func BuildTable(records []Record, trailing []string) Table {
	trailingSet := make(map[string]bool, len(trailing))
	for _, k := range trailing {
		trailingSet[k] = true
	}

	// Union of keys across all records.
	seen := make(map[string]bool)
	var leading []string
	for _, r := range records {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				if !trailingSet[k] {
					leading = append(leading, k)
				}
			}
		}
	}
	sort.Strings(leading)

	headers := leading
	for _, k := range trailing {
		if seen[k] {
			headers = append(headers, k)
		}
	}

	rows := make([][]any, len(records))
	for i, r := range records {
		row := make([]any, len(headers))
		for j, h := range headers {
			if v, ok := r[h]; ok {
				row[j] = v
			}
		}
		rows[i] = row
	}

	return Table{Headers: headers, Rows: rows}
}
