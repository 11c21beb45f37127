package ai

import (
	"fmt"
	"strings"
)

// dialectRules captures what the model needs to know about a SQL flavour
// to write valid queries against the e-commerce schema.
type dialectRules struct {
	title string

	// column types used when printing the schema
	idType, textType, moneyType, timeType string

	// month and year formats a created_at timestamp as YYYY-MM / YYYY.
	month, year string

	// qualify turns a bare table name into the name the engine expects.
	qualify func(dataset, table string) string

	// extra guidance appended to the date rule.
	note string
}

var dialects = map[string]dialectRules{
	"bigquery": {
		title:     "Google BigQuery Standard SQL",
		idType:    "STRING",
		textType:  "STRING",
		moneyType: "NUMERIC",
		timeType:  "TIMESTAMP",
		month:     "FORMAT_TIMESTAMP('%%Y-%%m', %s)",
		year:      "EXTRACT(YEAR FROM %s)",
		qualify: func(dataset, table string) string {
			return fmt.Sprintf("`%s.%s`", dataset, table)
		},
		note: "NEVER use the strftime function.",
	},
	"postgres": {
		title:     "PostgreSQL",
		idType:    "TEXT",
		textType:  "TEXT",
		moneyType: "NUMERIC",
		timeType:  "TIMESTAMP",
		month:     "to_char(%s, 'YYYY-MM')",
		year:      "EXTRACT(YEAR FROM %s)::int",
		qualify:   bareTable,
		note:      "Use ILIKE for case-insensitive matching.",
	},
	"clickhouse": {
		title:     "ClickHouse SQL",
		idType:    "String",
		textType:  "String",
		moneyType: "Decimal(18, 2)",
		timeType:  "DateTime",
		month:     "formatDateTime(%s, '%%Y-%%m')",
		year:      "toYear(%s)",
		qualify:   bareTable,
		note:      "Use ilike for case-insensitive matching and cast Decimal aggregates with toFloat64.",
	},
	"duckdb": {
		title:     "DuckDB SQL",
		idType:    "VARCHAR",
		textType:  "VARCHAR",
		moneyType: "DECIMAL(18, 2)",
		timeType:  "TIMESTAMP",
		month:     "strftime(%s, '%%Y-%%m')",
		year:      "year(%s)",
		qualify:   bareTable,
		note:      "Use ILIKE for case-insensitive matching.",
	},
}

func bareTable(_, table string) string { return table }

func rulesFor(dialect string) dialectRules {
	if r, ok := dialects[strings.ToLower(dialect)]; ok {
		return r
	}
	return dialects["bigquery"]
}

// MonthExpr returns the expression grouping column by calendar month in
// dialect, e.g. FORMAT_TIMESTAMP('%Y-%m', created_at) for BigQuery.
func MonthExpr(dialect, column string) string {
	return fmt.Sprintf(rulesFor(dialect).month, column)
}

// YearExpr returns the expression extracting the year of column.
func YearExpr(dialect, column string) string {
	return fmt.Sprintf(rulesFor(dialect).year, column)
}

// Table returns the engine-qualified name of table.
func Table(dialect, dataset, table string) string {
	return rulesFor(dialect).qualify(dataset, table)
}

// Schema returns the CREATE TABLE statements describing the dataset the
// model may query.
func Schema(dialect, dataset string) string {
	r := rulesFor(dialect)
	q := func(t string) string { return r.qualify(dataset, t) }

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n  order_id %s, user_id %s, product_id %s, sale_price %s, created_at %s\n);\n",
		q("order_items"), r.idType, r.idType, r.idType, r.moneyType, r.timeType)
	fmt.Fprintf(&b, "CREATE TABLE %s (\n  id %s, cost %s, category %s, name %s, brand %s, department %s\n);\n",
		q("products"), r.idType, r.moneyType, r.textType, r.textType, r.textType, r.textType)
	fmt.Fprintf(&b, "CREATE TABLE %s (\n  id %s, email %s, first_name %s, last_name %s, gender %s\n);",
		q("users"), r.idType, r.textType, r.textType, r.textType, r.textType)
	return b.String()
}

// SystemInstruction builds the instruction sent with every request. It
// defines the assistant's role, the schema and the JSON reply contract.
func SystemInstruction(dialect, dataset string) string {
	r := rulesFor(dialect)

	return fmt.Sprintf(`You are 'QueryMaster', an AI Data Analyst specializing in the 'TheLook' e-commerce dataset.
Your mission is to transform business questions about sales, products, and customers into valid %s queries.

You will use the following main schema:
%s

Your response MUST be a valid JSON object.
The JSON must have the keys "action" and "content".
- For vague questions, use: {"action": "CLARIFY", "content": "Your clarification question here."}
- To generate SQL, use: {"action": "EXECUTE", "content": "Your SQL query here.", "display_format": "...", "chart_type": "..."}
- If the question cannot be answered from this schema, use: {"action": "ERROR", "content": "Why it cannot be answered."}

Possible values for "display_format": "currency_usd", "percentage", "number", "text".
Possible values for "chart_type": "bar", "line", "pie", "scatter", "table".
Put the category or time column first and the measure second; a single scalar answer should return exactly one row.

IMPORTANT: To group data by month and year from a timestamp column like 'created_at', use %s. %s
Return only the JSON object, without Markdown fences or commentary.`,
		r.title, Schema(dialect, dataset), MonthExpr(dialect, "created_at"), r.note)
}
