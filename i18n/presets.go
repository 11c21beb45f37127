package i18n

import "fmt"

// Preset is a ready-made question shown as a shortcut.
type Preset struct {
	ID     string `json:"id"`
	Key    string `json:"key"`
	Label  string `json:"label"`
	Prompt string `json:"prompt"`
}

type presetText struct{ label, prompt string }

var presetIDs = []string{
	"monthly-profit",
	"top-brands",
	"users-by-gender",
	"cost-vs-price",
	"categories",
	"revenue-growth",
	"top-spenders",
}

var presetCatalog = map[Lang]map[string]presetText{
	English: {
		"monthly-profit":  {"Monthly Profit (Time-Series Chart)", "Show me the monthly profit evolution for the year 2023."},
		"top-brands":      {"Top 5 Profitable Brands (Ranking)", "What are the 5 most profitable brands?"},
		"users-by-gender": {"Users by Gender (Pie Chart)", "How many users are there by gender?"},
		"cost-vs-price":   {"Cost vs Sale Price (Scatter)", "Compare product cost against sale price for 200 products."},
		"categories":      {"Product Categories (Table)", "List the product categories with their number of products."},
		"revenue-growth":  {"Annual Growth (KPI %)", "What was the percentage revenue growth between 2022 and 2023?"},
		"top-spenders":    {"Top Spenders Analysis (Complex JOIN)", "List the top 3 users (with their emails) who spent the most on 'Jeans' products."},
	},
	Portuguese: {
		"monthly-profit":  {"Lucro Mensal (Série Temporal)", "Mostre a evolução do lucro mensal no ano de 2023."},
		"top-brands":      {"5 Marcas Mais Lucrativas (Ranking)", "Quais são as 5 marcas mais lucrativas?"},
		"users-by-gender": {"Usuários por Gênero (Pizza)", "Quantos usuários existem por gênero?"},
		"cost-vs-price":   {"Custo vs Preço de Venda (Dispersão)", "Compare o custo dos produtos com o preço de venda para 200 produtos."},
		"categories":      {"Categorias de Produtos (Tabela)", "Liste as categorias de produtos com a quantidade de produtos."},
		"revenue-growth":  {"Crescimento Anual (KPI %)", "Qual foi o crescimento percentual da receita entre 2022 e 2023?"},
		"top-spenders":    {"Maiores Compradores (JOIN Complexo)", "Liste os 3 usuários (com seus e-mails) que mais gastaram em produtos 'Jeans'."},
	},
}

// Presets returns the preset questions for lang in shortcut order.
func Presets(lang Lang) []Preset {
	texts, ok := presetCatalog[lang]
	if !ok {
		texts = presetCatalog[English]
	}
	out := make([]Preset, len(presetIDs))
	for i, id := range presetIDs {
		out[i] = Preset{
			ID:     id,
			Key:    fmt.Sprintf("F%d", i+1),
			Label:  texts[id].label,
			Prompt: texts[id].prompt,
		}
	}
	return out
}

// FindPreset looks a preset up by ID or shortcut key ("F3", "3").
func FindPreset(lang Lang, ref string) (Preset, bool) {
	for _, p := range Presets(lang) {
		if p.ID == ref || p.Key == ref || p.Key == "F"+ref {
			return p, true
		}
	}
	return Preset{}, false
}
