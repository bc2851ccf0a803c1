package report

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/loyverse-export/internal/aggregate"
)

// grouped builds a GroupedTotals of n generated entries.
func grouped(prefix string, n int) aggregate.GroupedTotals {
	g := aggregate.GroupedTotals{Totals: make(map[string]decimal.Decimal)}
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("%s-%02d", prefix, i)
		g.Keys = append(g.Keys, key)
		g.Totals[key] = decimal.NewFromInt(int64(i + 1))
	}
	return g
}

func TestBuildSummaryHeaders(t *testing.T) {
	table := BuildSummary(grouped("p", 1), grouped("d", 1), grouped("o", 1), nil, aggregate.Metrics{})

	assert.Equal(t, []string{
		"Payment Method", "Net Total Amount", "",
		"Date", "Sales", "",
		"Date_PaidOut", "Paid Out", "",
		"Top Item", "Total Sales", "Total Quantity", "",
		"Sales Metrics", "Amount",
	}, table.Headers)
}

func TestBuildSummaryPadsToLongestSection(t *testing.T) {
	table := BuildSummary(grouped("p", 3), grouped("d", 7), grouped("o", 2), nil, aggregate.Metrics{})

	require.Len(t, table.Rows, 7)

	// Shorter sections blank past their own length; the longest keeps all
	// of its rows.
	assert.Equal(t, "p-02", table.Rows[2][0])
	assert.Nil(t, table.Rows[3][0])
	assert.Equal(t, "d-06", table.Rows[6][3])
	assert.Equal(t, "o-01", table.Rows[1][6])
	assert.Nil(t, table.Rows[2][6])
}

func TestBuildSummaryMetricsOccupyFirstThreeRows(t *testing.T) {
	m := aggregate.Metrics{
		GrossSales: decimal.NewFromInt(150),
		NetSales:   decimal.NewFromInt(130),
		Difference: decimal.NewFromInt(20),
	}

	table := BuildSummary(grouped("p", 5), grouped("d", 5), grouped("o", 5), nil, m)

	assert.Equal(t, "Total Gross Sales", table.Rows[0][13])
	assert.Equal(t, "Total Net Sales", table.Rows[1][13])
	assert.Equal(t, "Gross-Net Difference", table.Rows[2][13])
	assert.True(t, table.Rows[0][14].(decimal.Decimal).Equal(decimal.NewFromInt(150)))
	assert.True(t, table.Rows[2][14].(decimal.Decimal).Equal(decimal.NewFromInt(20)))
	assert.Nil(t, table.Rows[3][13])
}

func TestBuildSummaryMetricsRowsExistEvenWhenGroupsAreShorter(t *testing.T) {
	// One group row, but the metrics section still needs three rows.
	table := BuildSummary(grouped("p", 1), grouped("d", 0), grouped("o", 0), nil, aggregate.Metrics{})

	require.Len(t, table.Rows, 3)
	assert.Equal(t, "Gross-Net Difference", table.Rows[2][13])
}

func TestBuildSummaryTopItemsSection(t *testing.T) {
	items := []aggregate.ItemSummary{
		{Name: "Mocha", TotalSales: decimal.NewFromInt(30), TotalQuantity: decimal.NewFromInt(3)},
		{Name: "Latte", TotalSales: decimal.NewFromInt(10), TotalQuantity: decimal.NewFromInt(1)},
	}

	table := BuildSummary(grouped("p", 4), grouped("d", 4), grouped("o", 4), items, aggregate.Metrics{})

	assert.Equal(t, "Mocha", table.Rows[0][9])
	assert.True(t, table.Rows[0][10].(decimal.Decimal).Equal(decimal.NewFromInt(30)))
	assert.True(t, table.Rows[0][11].(decimal.Decimal).Equal(decimal.NewFromInt(3)))
	assert.Equal(t, "Latte", table.Rows[1][9])
	assert.Nil(t, table.Rows[2][9])
}

func TestBuildSummarySpacerColumnsStayBlank(t *testing.T) {
	table := BuildSummary(grouped("p", 2), grouped("d", 2), grouped("o", 2), nil, aggregate.Metrics{})

	for _, row := range table.Rows {
		for _, col := range []int{2, 5, 8, 12} {
			assert.Nil(t, row[col])
		}
	}
}
