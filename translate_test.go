package pokedex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTranslator(t *testing.T) *Translator {
	t.Helper()
	openBoxes()
	translator := NewTranslatorVar(StringMap{"product": "Pokédex"})
	require.NotNil(t, translator)
	require.NoError(t, translator.SetLanguage("en"))
	return translator
}

func TestTranslatorGetExpandsVariables(t *testing.T) {
	translator := newTestTranslator(t)
	assert.Equal(t, "Pokédex - Modern Collector", translator.Get("title"))
}

func TestTranslatorUnknownKeyIsEmpty(t *testing.T) {
	translator := newTestTranslator(t)
	assert.Equal(t, "", translator.Get("no_such_key"))
}

func TestTranslatorSetLanguage(t *testing.T) {
	translator := newTestTranslator(t)
	require.NoError(t, translator.SetLanguage("de"))
	assert.Equal(t, "de", translator.GetLanguage())
	assert.Equal(t, "Typ", translator.Get("card_type"))

	assert.Error(t, translator.SetLanguage("xx"))
	assert.Equal(t, "de", translator.GetLanguage())
}

func TestTranslatorLanguagesDefaultFirst(t *testing.T) {
	translator := newTestTranslator(t)
	languages := translator.GetLanguages()
	require.NotEmpty(t, languages)
	assert.Equal(t, DefaultLanguage, languages[0])
	assert.Contains(t, languages, "de")
}

func TestExpandVariables(t *testing.T) {
	vars := StringMap{"name": "pikachu"}
	assert.Equal(t, "hello pikachu", ExpandVariables("hello {{.name}}", vars))
	assert.Equal(t, "PIKACHU", ExpandVariables("{{upper .name}}", vars))
	// invalid templates are passed through unchanged
	assert.Equal(t, "{{.broken", ExpandVariables("{{.broken", vars))
}

func TestMergeVariables(t *testing.T) {
	merged := MergeVariables(
		StringMap{"a": "1", "b": "2"},
		StringMap{"b": "3", "c": "4"},
	)
	assert.Equal(t, StringMap{"a": "1", "b": "3", "c": "4"}, merged)
}
