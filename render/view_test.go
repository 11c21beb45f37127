package render

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DachengChen/querymaster/envelope"
)

func dataEnvelope(format envelope.DisplayFormat, chart envelope.ChartType, columns []string, rows ...[]any) envelope.Envelope {
	return envelope.Envelope{
		Action:        envelope.ActionData,
		DisplayFormat: format,
		ChartType:     chart,
		QueryUsed:     "SELECT ...",
		Columns:       columns,
		Rows:          rows,
	}
}

func TestDecide(t *testing.T) {
	assert.Equal(t, KindEmpty, Decide(0, 3, "", "").Kind)
	assert.Equal(t, KindKPI, Decide(1, 1, "", "").Kind)
	assert.Equal(t, KindKPI, Decide(1, 2, "", "").Kind)
	assert.Equal(t, KindTable, Decide(1, 3, "", "").Kind)
	assert.Equal(t, KindTable, Decide(2, 1, "", "").Kind)

	d := Decide(5, 2, "", "")
	assert.Equal(t, envelope.FormatNumber, d.Format)
	assert.Equal(t, envelope.ChartBar, d.Chart)
}

func TestBuild_RevenueGrowthIsPercentageKPI(t *testing.T) {
	v := Build(dataEnvelope(envelope.FormatPercentage, "", []string{"revenue_growth_percentage"}, []any{1234.5}), Options{})

	require.Equal(t, KindKPI, v.Kind)
	require.NotNil(t, v.KPI)
	assert.Equal(t, "Revenue Growth Percentage", v.KPI.Label)
	assert.Equal(t, "1,234.50%", v.KPI.Value)
	assert.Nil(t, v.Chart)
	assert.Equal(t, "SELECT ...", v.QueryUsed)
}

func TestBuild_CurrencyKPI(t *testing.T) {
	v := Build(dataEnvelope("currency_usd", "", []string{"total_revenue"}, []any{1234.5}), Options{CurrencySymbol: "€"})
	require.NotNil(t, v.KPI)
	assert.Equal(t, "$1,234.50", v.KPI.Value)
}

func TestBuild_TwoColumnKPI(t *testing.T) {
	v := Build(dataEnvelope("currency_usd", "", []string{"brand", "revenue"}, []any{"Levi's", 99.5}), Options{})
	require.Equal(t, KindKPI, v.Kind)
	assert.Equal(t, KPI{Label: "Levi's", Value: "$99.50"}, *v.KPI)
}

func TestBuild_TopBrandsIsTableWithBarChart(t *testing.T) {
	env := dataEnvelope("currency_usd", "", []string{"brand", "total_revenue"},
		[]any{"Calvin Klein", 80000.5},
		[]any{"Levi's", 75000.0},
		[]any{"Diesel", 60000.25},
		[]any{"Carhartt", 50000.0},
		[]any{"Nike", 40000.75},
	)
	v := Build(env, Options{})

	require.Equal(t, KindTable, v.Kind)
	assert.Nil(t, v.KPI)
	assert.Equal(t, []string{"brand", "total_revenue"}, v.Columns)
	require.Len(t, v.Rows, 5)
	assert.Equal(t, []string{"Calvin Klein", "$80,000.50"}, v.Rows[0])

	require.NotNil(t, v.Chart)
	assert.Equal(t, envelope.ChartBar, v.Chart.Type)
	assert.Equal(t, "Total Revenue by Brand", v.Chart.Title)
	require.Len(t, v.Chart.Points, 5)
	assert.Equal(t, Point{Label: "Nike", Y: 40000.75}, v.Chart.Points[4])
	assert.Empty(t, v.Warnings)
}

func TestBuild_ChartDegradesButTableRemains(t *testing.T) {
	env := dataEnvelope("", envelope.ChartLine, []string{"month", "status"},
		[]any{"2023-01", "shipped"},
		[]any{"2023-02", "returned"},
	)
	v := Build(env, Options{})

	require.Equal(t, KindTable, v.Kind)
	assert.Len(t, v.Rows, 2)
	assert.Nil(t, v.Chart)
	assert.Equal(t, []string{ChartWarning}, v.Warnings)
}

func TestBuild_SingleColumnTableHasNoChart(t *testing.T) {
	v := Build(dataEnvelope("", "", []string{"category"}, []any{"Jeans"}, []any{"Tops"}), Options{})
	require.Equal(t, KindTable, v.Kind)
	assert.Nil(t, v.Chart)
	assert.Equal(t, []string{ChartWarning}, v.Warnings)
}

func TestBuild_TableChartTypeSuppressesChart(t *testing.T) {
	v := Build(dataEnvelope("", envelope.ChartTable, []string{"category", "qty"}, []any{"Jeans", int64(3)}, []any{"Tops", int64(5)}), Options{})
	assert.Nil(t, v.Chart)
	assert.Empty(t, v.Warnings)
	assert.Equal(t, [][]string{{"Jeans", "3"}, {"Tops", "5"}}, v.Rows)
}

func TestBuild_Empty(t *testing.T) {
	v := Build(dataEnvelope("", "", []string{"brand"}), Options{})
	assert.Equal(t, KindEmpty, v.Kind)
	assert.Equal(t, EmptyNotice, v.Text)
}

func TestBuild_ClarifyAndError(t *testing.T) {
	v := Build(envelope.Envelope{Action: envelope.ActionClarify, Content: "Which year?"}, Options{})
	assert.Equal(t, View{Kind: KindClarify, Text: "Which year?"}, v)

	v = Build(envelope.Error("boom"), Options{})
	assert.Equal(t, View{Kind: KindError, Text: "boom"}, v)
}

func TestBuild_RaggedRowsFallBack(t *testing.T) {
	env := dataEnvelope("", "", []string{"a"}, []any{})
	v := Build(env, Options{})

	assert.Equal(t, KindTable, v.Kind)
	require.Len(t, v.Warnings, 1)
	assert.Contains(t, v.Warnings[0], "raw table")
}

func TestView_JSON(t *testing.T) {
	v := Build(dataEnvelope(envelope.FormatPercentage, "", []string{"growth"}, []any{12.5}), Options{})
	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"kind": "kpi",
		"display_format": "percentage",
		"kpi": {"label": "Growth", "value": "12.50%"},
		"query_used": "SELECT ..."
	}`, string(data))
}
