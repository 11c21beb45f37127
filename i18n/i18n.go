// Package i18n holds the user-facing strings and preset questions in every
// supported language.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Lang is a supported UI language.
type Lang string

const (
	English    Lang = "en"
	Portuguese Lang = "pt"
)

var (
	supported = []Lang{English, Portuguese}
	matcher   = language.NewMatcher([]language.Tag{language.English, language.Portuguese})
)

// Supported lists the available languages.
func Supported() []Lang { return supported }

// Parse maps a language tag such as "pt-BR" or "en_US" to a supported
// language. Unknown or empty tags fall back to English.
func Parse(s string) Lang {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "-")
	if s == "" {
		return English
	}
	tag, err := language.Parse(s)
	if err != nil {
		return English
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return English
	}
	return supported[idx]
}

// Strings is the set of UI texts for one language.
type Strings struct {
	Title            string
	Caption          string
	InputPlaceholder string
	Thinking         string
	PresetsTitle     string
	Help             string
	Cleared          string
	// Suffix is appended to every question so the model answers in the
	// UI language.
	Suffix string
}

var catalog = map[Lang]Strings{
	English: {
		Title:            "QueryMaster | Your Data Analysis Assistant",
		Caption:          "Ask business questions about the TheLook e-commerce dataset.",
		InputPlaceholder: "Ask your own question about the data...",
		Thinking:         "Analyzing data... Please wait.",
		PresetsTitle:     "Analysis Suggestions",
		Help:             "enter: ask • F1-F7: presets • ctrl+s: toggle SQL • ctrl+l: clear • esc: quit",
		Cleared:          "Conversation cleared.",
		Suffix:           "Answer in English.",
	},
	Portuguese: {
		Title:            "QueryMaster | Seu Assistente de Análise de Dados",
		Caption:          "Faça perguntas de negócio sobre o conjunto de dados de e-commerce TheLook.",
		InputPlaceholder: "Faça sua própria pergunta sobre os dados...",
		Thinking:         "Analisando os dados... Aguarde.",
		PresetsTitle:     "Sugestões de Análise",
		Help:             "enter: perguntar • F1-F7: sugestões • ctrl+s: mostrar SQL • ctrl+l: limpar • esc: sair",
		Cleared:          "Conversa apagada.",
		Suffix:           "Responda em Português.",
	},
}

// For returns the strings for lang, falling back to English.
func For(lang Lang) Strings {
	if s, ok := catalog[lang]; ok {
		return s
	}
	return catalog[English]
}

// Localize appends the language instruction to question.
func Localize(lang Lang, question string) string {
	question = strings.TrimSpace(question)
	if question == "" {
		return ""
	}
	return question + " " + For(lang).Suffix
}
