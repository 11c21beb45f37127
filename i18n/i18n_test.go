package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	assert.Equal(t, English, Parse(""))
	assert.Equal(t, English, Parse("en_US"))
	assert.Equal(t, Portuguese, Parse("pt"))
	assert.Equal(t, Portuguese, Parse("pt-BR"))
	assert.Equal(t, Portuguese, Parse("pt_BR"))
	assert.Equal(t, English, Parse("not a tag!"))
}

func TestPresets(t *testing.T) {
	for _, lang := range Supported() {
		ps := Presets(lang)
		require.Len(t, ps, 7)
		for i, p := range ps {
			assert.NotEmpty(t, p.Label)
			assert.NotEmpty(t, p.Prompt)
			assert.Equal(t, presetIDs[i], p.ID)
		}
		assert.Equal(t, "F1", ps[0].Key)
		assert.Equal(t, "F7", ps[6].Key)
	}

	p, ok := FindPreset(English, "revenue-growth")
	require.True(t, ok)
	assert.Equal(t, "What was the percentage revenue growth between 2022 and 2023?", p.Prompt)

	p, ok = FindPreset(Portuguese, "2")
	require.True(t, ok)
	assert.Equal(t, "top-brands", p.ID)

	_, ok = FindPreset(English, "F9")
	assert.False(t, ok)
}

func TestLocalize(t *testing.T) {
	assert.Equal(t, "Top brands? Answer in English.", Localize(English, " Top brands? "))
	assert.Equal(t, "Marcas? Responda em Português.", Localize(Portuguese, "Marcas?"))
	assert.Equal(t, "", Localize(English, "  "))
	assert.Equal(t, For(English), For("de"))
}
