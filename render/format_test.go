package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DachengChen/querymaster/envelope"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name   string
		v      any
		format envelope.DisplayFormat
		want   string
	}{
		{name: "percentage", v: 1234.5, format: envelope.FormatPercentage, want: "1,234.50%"},
		{name: "small percentage", v: 12.3456, format: envelope.FormatPercentage, want: "12.35%"},
		{name: "currency usd", v: 1234.5, format: "currency_usd", want: "$1,234.50"},
		{name: "currency eur", v: int64(1000000), format: "currency_eur", want: "€1,000,000.00"},
		{name: "currency brl", v: 99.999, format: "currency_brl", want: "R$100.00"},
		{name: "plain currency uses default", v: 5.0, format: envelope.FormatCurrency, want: "¤5.00"},
		{name: "unknown iso uses default", v: 5.0, format: "currency_xyz", want: "¤5.00"},
		{name: "negative currency", v: -1234.5, format: "currency_usd", want: "-$1,234.50"},
		{name: "number int", v: int64(1234567), format: envelope.FormatNumber, want: "1,234,567"},
		{name: "number float", v: 1234.5, format: envelope.FormatNumber, want: "1,234.5"},
		{name: "number negative float", v: -9876543.25, format: envelope.FormatNumber, want: "-9,876,543.25"},
		{name: "number whole float", v: 2000.0, format: envelope.FormatNumber, want: "2,000"},
		{name: "numeric string", v: "4321", format: envelope.FormatNumber, want: "4,321"},
		{name: "text format", v: int64(1234), format: envelope.FormatText, want: "1234"},
		{name: "non numeric", v: "Jeans", format: "currency_usd", want: "Jeans"},
		{name: "null", v: nil, format: envelope.FormatNumber, want: "NULL"},
		{name: "bool", v: true, format: envelope.FormatNumber, want: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.v, tt.format, "¤"))
		})
	}
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "2023", FormatCell(int64(2023), "currency_usd", "$"))
	assert.Equal(t, "$12.50", FormatCell(12.5, "currency_usd", "$"))
	assert.Equal(t, "12.5", FormatCell(12.5, envelope.FormatNumber, "$"))
	assert.Equal(t, "Levi's", FormatCell("Levi's", envelope.FormatPercentage, "$"))
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Total Revenue", Humanize("total_revenue"))
	assert.Equal(t, "Revenue Growth Percentage", Humanize("revenue_growth_percentage"))
	assert.Equal(t, "Month", Humanize("month"))
	assert.Equal(t, "Revenue 2023", Humanize("revenue_2023"))
}
