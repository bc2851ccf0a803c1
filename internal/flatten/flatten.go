// =============================================================================
// Loyverse Export - Record Flattener
// =============================================================================
//
// This module expands parent records containing embedded one-to-many
// collections (payments, line items) into flat rows, one row per sub-record.
// Each output row is a full, independent copy of the parent's fields overlaid
// with a mapped selection of the sub-record's fields.
//
// The two concrete views (payments and line items) are independent
// flattenings of the same receipt set, not a join: a receipt with 2 payments
// and 3 line items yields 2 rows in one view and 3 in the other.
//
// =============================================================================

package flatten

import (
	"github.com/ginjaninja78/loyverse-export/internal/record"
)

// =============================================================================
// FIELD MAPPING
// =============================================================================

// FieldMapping copies one sub-record field onto the output row.
type FieldMapping struct {
	// Output is the column name on the flattened row.
	Output string

	// Source is the field name on the sub-record. The value is copied even
	// when absent (as nil), so every row in a view has the same column set.
	Source string
}

// =============================================================================
// VIEW
// =============================================================================

// View is a configured flattening: which embedded collection to expand and
// which of its fields to copy onto each row.
type View struct {
	// SubKey is the parent field holding the embedded collection.
	SubKey string

	// Mappings are the sub-fields copied onto each output row, in sheet
	// column order. Mapped fields take precedence over parent fields on
	// name collision.
	Mappings []FieldMapping
}

// OutputColumns returns the mapped column names in declaration order.
// Used for sheet column ordering.
func (v View) OutputColumns() []string {
	cols := make([]string, len(v.Mappings))
	for i, m := range v.Mappings {
		cols[i] = m.Output
	}
	return cols
}

// Apply flattens records through the view.
//
// For each input record:
//   - If the embedded collection is present and non-empty, one row is
//     emitted per sub-record: a deep copy of the parent overlaid with the
//     mapped sub-fields.
//   - Otherwise exactly one row is emitted, equal to the parent's fields.
//
// Rows never share mutable structure with each other or with the input, so
// downstream mutation of one row cannot corrupt a sibling.
func (v View) Apply(records []record.Record) []record.Record {
	var out []record.Record

	for _, parent := range records {
		subs := parent.Records(v.SubKey)
		if len(subs) == 0 {
			out = append(out, parent.Clone())
			continue
		}

		for _, sub := range subs {
			row := parent.Clone()
			for _, m := range v.Mappings {
				row[m.Output] = cloneSubValue(sub[m.Source])
			}
			out = append(out, row)
		}
	}

	return out
}

// cloneSubValue deep-copies a sub-record value before placing it on a row.
func cloneSubValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(record.Record(t).Clone())
	case []any:
		l := make([]any, len(t))
		for i, el := range t {
			l[i] = cloneSubValue(el)
		}
		return l
	default:
		return t
	}
}

// =============================================================================
// CONFIGURED VIEWS
// =============================================================================

// ReceiptPayments expands a receipt's payments collection. One row per
// payment, carrying the payment method identity and amount next to every
// receipt field.
var ReceiptPayments = View{
	SubKey: "payments",
	Mappings: []FieldMapping{
		{Output: "payment_type_id", Source: "payment_type_id"},
		{Output: "payment_name", Source: "name"},
		{Output: "payment_type", Source: "type"},
		{Output: "money_amount", Source: "money_amount"},
		{Output: "paid_at", Source: "paid_at"},
		{Output: "payment_details", Source: "payment_details"},
	},
}

// ReceiptLineItems expands a receipt's line_items collection. One row per
// line item. Tax, discount, and modifier sub-structures are passed through
// unmodified.
var ReceiptLineItems = View{
	SubKey: "line_items",
	Mappings: []FieldMapping{
		{Output: "line_item_id", Source: "id"},
		{Output: "item_id", Source: "item_id"},
		{Output: "variant_id", Source: "variant_id"},
		{Output: "item_name", Source: "item_name"},
		{Output: "variant_name", Source: "variant_name"},
		{Output: "sku", Source: "sku"},
		{Output: "quantity", Source: "quantity"},
		{Output: "price", Source: "price"},
		{Output: "gross_total_money", Source: "gross_total_money"},
		{Output: "total_money", Source: "total_money"},
		{Output: "cost_total", Source: "cost_total"},
		{Output: "line_note", Source: "line_note"},
		{Output: "line_taxes", Source: "line_taxes"},
		{Output: "total_discount", Source: "total_discount"},
		{Output: "line_discounts", Source: "line_discounts"},
		{Output: "line_modifiers", Source: "line_modifiers"},
	},
}
