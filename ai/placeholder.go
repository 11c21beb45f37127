package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/DachengChen/querymaster/envelope"
)

// Placeholder is an offline provider that answers the preset questions
// with canned SQL for the configured dialect. Anything else gets a CLARIFY
// reply. It lets the UI and a local DuckDB warehouse be exercised without
// an API key.
type Placeholder struct {
	dialect string
	dataset string
}

var _ Provider = (*Placeholder)(nil)

func NewPlaceholder(dialect, dataset string) *Placeholder {
	return &Placeholder{dialect: dialect, dataset: dataset}
}

func (p *Placeholder) Name() string {
	return "placeholder"
}

func (p *Placeholder) Complete(ctx context.Context, _ string, _ []Message, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	q := strings.ToLower(prompt)
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(q, w) {
				return true
			}
		}
		return false
	}

	var env envelope.Envelope
	switch {
	case has("jeans"):
		env = p.execute(envelope.FormatCurrency+"_usd", envelope.ChartTable, p.topSpenders())
	case has("growth", "crescimento"):
		env = p.execute(envelope.FormatPercentage, "", p.revenueGrowth())
	case has("brand", "marca"):
		env = p.execute(envelope.FormatCurrency+"_usd", envelope.ChartBar, p.topBrands())
	case has("profit", "lucro") && has("month", "mensal"):
		env = p.execute(envelope.FormatCurrency+"_usd", envelope.ChartLine, p.monthlyProfit())
	case has("gender", "gênero", "genero"):
		env = p.execute(envelope.FormatNumber, envelope.ChartPie, p.usersByGender())
	case has("cost", "custo"):
		env = p.execute(envelope.FormatCurrency+"_usd", envelope.ChartScatter, p.costVsPrice())
	case has("categor"):
		env = p.execute(envelope.FormatNumber, envelope.ChartTable, p.categories())
	default:
		env = envelope.Envelope{
			Action: envelope.ActionClarify,
			Content: fmt.Sprintf("The placeholder provider only answers the preset questions. "+
				"Configure a real AI provider to ask %q.", prompt),
		}
	}
	return env.Marshal(), nil
}

func (p *Placeholder) execute(format envelope.DisplayFormat, chart envelope.ChartType, sql string) envelope.Envelope {
	return envelope.Envelope{Action: envelope.ActionExecute, Content: sql, DisplayFormat: format, ChartType: chart}
}

func (p *Placeholder) t(name string) string { return Table(p.dialect, p.dataset, name) }

func (p *Placeholder) monthlyProfit() string {
	return fmt.Sprintf(`SELECT %s AS month, SUM(oi.sale_price - p.cost) AS profit
FROM %s AS oi JOIN %s AS p ON oi.product_id = p.id
WHERE %s = 2023
GROUP BY 1 ORDER BY 1`,
		MonthExpr(p.dialect, "oi.created_at"), p.t("order_items"), p.t("products"), YearExpr(p.dialect, "oi.created_at"))
}

func (p *Placeholder) topBrands() string {
	return fmt.Sprintf(`SELECT p.brand, SUM(oi.sale_price - p.cost) AS total_profit
FROM %s AS oi JOIN %s AS p ON oi.product_id = p.id
GROUP BY 1 ORDER BY 2 DESC LIMIT 5`, p.t("order_items"), p.t("products"))
}

func (p *Placeholder) usersByGender() string {
	return fmt.Sprintf(`SELECT gender, COUNT(*) AS users FROM %s GROUP BY 1 ORDER BY 2 DESC`, p.t("users"))
}

func (p *Placeholder) costVsPrice() string {
	return fmt.Sprintf(`SELECT p.cost, AVG(oi.sale_price) AS sale_price
FROM %s AS p JOIN %s AS oi ON oi.product_id = p.id
GROUP BY p.id, p.cost ORDER BY p.id LIMIT 200`, p.t("products"), p.t("order_items"))
}

func (p *Placeholder) categories() string {
	return fmt.Sprintf(`SELECT category, COUNT(*) AS products FROM %s GROUP BY 1 ORDER BY 2 DESC`, p.t("products"))
}

func (p *Placeholder) revenueGrowth() string {
	year := YearExpr(p.dialect, "created_at")
	return fmt.Sprintf(`SELECT (SUM(CASE WHEN %[1]s = 2023 THEN sale_price ELSE 0 END)
  - SUM(CASE WHEN %[1]s = 2022 THEN sale_price ELSE 0 END))
  / SUM(CASE WHEN %[1]s = 2022 THEN sale_price ELSE 0 END) * 100 AS revenue_growth_percentage
FROM %[2]s`, year, p.t("order_items"))
}

func (p *Placeholder) topSpenders() string {
	return fmt.Sprintf(`SELECT u.email, SUM(oi.sale_price) AS total_spent
FROM %s AS oi
JOIN %s AS p ON oi.product_id = p.id
JOIN %s AS u ON oi.user_id = u.id
WHERE p.category = 'Jeans'
GROUP BY 1 ORDER BY 2 DESC LIMIT 3`, p.t("order_items"), p.t("products"), p.t("users"))
}
