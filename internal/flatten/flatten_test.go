package flatten

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/loyverse-export/internal/record"
)

func receiptWithPayments(number string, payments ...map[string]any) record.Record {
	list := make([]any, len(payments))
	for i, p := range payments {
		list[i] = p
	}
	return record.Record{
		"receipt_number": number,
		"receipt_type":   "SALE",
		"total_money":    100.0,
		"payments":       list,
	}
}

func TestApplyWithoutSubCollection(t *testing.T) {
	input := record.Record{"receipt_number": "1-1001", "total_money": 50.0}

	rows := ReceiptPayments.Apply([]record.Record{input})

	require.Len(t, rows, 1)
	assert.Equal(t, "1-1001", rows[0].StringOr("receipt_number", ""))
	assert.Equal(t, 50.0, rows[0]["total_money"])
}

func TestApplyEmptySubCollectionEmitsParentRow(t *testing.T) {
	input := receiptWithPayments("1-1002")

	rows := ReceiptPayments.Apply([]record.Record{input})

	require.Len(t, rows, 1)
	assert.Equal(t, "1-1002", rows[0].StringOr("receipt_number", ""))
}

func TestApplyExpandsOneRowPerSubRecord(t *testing.T) {
	input := receiptWithPayments("1-1003",
		map[string]any{"name": "Cash", "money_amount": 60.0, "type": "CASH"},
		map[string]any{"name": "Grabfood", "money_amount": 40.0, "type": "OTHER"},
	)

	rows := ReceiptPayments.Apply([]record.Record{input})

	require.Len(t, rows, 2)
	for _, row := range rows {
		// Parent scalars are copied onto every row.
		assert.Equal(t, "1-1003", row.StringOr("receipt_number", ""))
		assert.Equal(t, 100.0, row["total_money"])
	}
	assert.Equal(t, "Cash", rows[0].StringOr("payment_name", ""))
	assert.Equal(t, 60.0, rows[0]["money_amount"])
	assert.Equal(t, "Grabfood", rows[1].StringOr("payment_name", ""))
	assert.Equal(t, 40.0, rows[1]["money_amount"])
}

func TestApplyRowsAreIndependentCopies(t *testing.T) {
	input := receiptWithPayments("1-1004",
		map[string]any{"name": "Cash", "payment_details": map[string]any{"note": "x"}},
		map[string]any{"name": "Cash", "payment_details": map[string]any{"note": "x"}},
	)

	rows := ReceiptPayments.Apply([]record.Record{input})
	require.Len(t, rows, 2)

	// Mutating one row must not leak into its sibling or the source.
	rows[0]["total_money"] = 0.0
	rows[0]["payment_details"].(map[string]any)["note"] = "changed"

	assert.Equal(t, 100.0, rows[1]["total_money"])
	assert.Equal(t, "x", rows[1]["payment_details"].(map[string]any)["note"])
	assert.Equal(t, 100.0, input["total_money"])
}

func TestApplySubFieldsWinOnCollision(t *testing.T) {
	receipt := record.Record{
		"receipt_type": "SALE",
		"total_money":  100.0,
		"line_items": []any{
			map[string]any{"item_name": "Latte", "total_money": 35.0},
		},
	}

	rows := ReceiptLineItems.Apply([]record.Record{receipt})

	require.Len(t, rows, 1)
	// The line item's total_money overlays the receipt's.
	assert.Equal(t, 35.0, rows[0]["total_money"])
}

func TestApplyAbsentSubFieldsBecomeNilColumns(t *testing.T) {
	receipt := receiptWithPayments("1-1005", map[string]any{"name": "Cash"})

	rows := ReceiptPayments.Apply([]record.Record{receipt})

	require.Len(t, rows, 1)
	// Unset mapped fields exist as nil so every row shares one column set.
	v, ok := rows[0]["money_amount"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestViewsAreIndependent(t *testing.T) {
	receipt := record.Record{
		"receipt_type": "SALE",
		"payments": []any{
			map[string]any{"name": "Cash"},
			map[string]any{"name": "Card"},
		},
		"line_items": []any{
			map[string]any{"item_name": "Latte"},
			map[string]any{"item_name": "Mocha"},
			map[string]any{"item_name": "Scone"},
		},
	}

	assert.Len(t, ReceiptPayments.Apply([]record.Record{receipt}), 2)
	assert.Len(t, ReceiptLineItems.Apply([]record.Record{receipt}), 3)
}

func TestOutputColumns(t *testing.T) {
	cols := ReceiptPayments.OutputColumns()
	assert.Equal(t, []string{
		"payment_type_id", "payment_name", "payment_type",
		"money_amount", "paid_at", "payment_details",
	}, cols)
}
