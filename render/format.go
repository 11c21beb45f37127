package render

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/DachengChen/querymaster/envelope"
)

// Numbers are always grouped the English way, whatever the UI language.
var (
	printer = message.NewPrinter(language.English)
	titler  = cases.Title(language.English)
)

var currencySymbols = map[string]string{
	"usd": "$",
	"eur": "€",
	"gbp": "£",
	"brl": "R$",
	"jpy": "¥",
}

// Humanize turns a column name into a label: "total_revenue" becomes
// "Total Revenue".
func Humanize(column string) string {
	return titler.String(strings.ReplaceAll(column, "_", " "))
}

// FormatValue renders one scalar for display under format.
//
//	percentage  1234.5 -> "1,234.50%"
//	currency    1234.5 -> "$1,234.50" (symbol from the ISO suffix, else defaultSymbol)
//	number      1234.5 -> "1,234.5", 1234 -> "1,234"
//
// Non-numeric values, and everything under "text", are printed as is.
func FormatValue(v any, format envelope.DisplayFormat, defaultSymbol string) string {
	if format == envelope.FormatText {
		return plain(v)
	}
	f, ok := toFloat(v)
	if !ok {
		return plain(v)
	}

	switch {
	case format == envelope.FormatPercentage:
		return printer.Sprintf("%.2f", f) + "%"
	case format.IsCurrency():
		symbol := defaultSymbol
		if s, ok := currencySymbols[format.CurrencyCode()]; ok {
			symbol = s
		}
		if f < 0 {
			return "-" + symbol + printer.Sprintf("%.2f", -f)
		}
		return symbol + printer.Sprintf("%.2f", f)
	default:
		if i, ok := v.(int64); ok {
			return printer.Sprintf("%d", i)
		}
		return groupShortest(f)
	}
}

// FormatCell renders a table cell. Integer and text cells are shown as
// returned by the warehouse; fractional measures follow format.
func FormatCell(v any, format envelope.DisplayFormat, defaultSymbol string) string {
	f, ok := v.(float64)
	if !ok || format == envelope.FormatText {
		return plain(v)
	}
	if format == envelope.FormatNumber || format == "" {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return FormatValue(f, format, defaultSymbol)
}

// groupShortest prints f with thousands separators and the shortest
// decimal fraction that round-trips.
func groupShortest(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	grouped := printer.Sprintf("%.0f", math.Trunc(f))
	if len(intPart) < 16 {
		if n, err := strconv.ParseInt(intPart, 10, 64); err == nil {
			grouped = printer.Sprintf("%d", n)
		}
	}
	if frac == "" {
		return sign + grouped
	}
	return sign + grouped + "." + frac
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case int:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func plain(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return printer.Sprint(x)
	}
}
