package pokedex

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"text/template"

	"github.com/cloudfoundry/jibber_jabber"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"
)

// DefaultLanguage is the fallback for missing translations and unknown
// locales.
const DefaultLanguage = "en"

// StringMap is a simple string-to-string lookup, used for translations and
// template variables.
type StringMap map[string]string

// Translator localizes the UI strings. Strings come from yaml files inside
// the languages folder in the resources box, one file per language.
type Translator struct {
	language    string
	langStrings map[string]StringMap
	variables   StringMap
}

// NewTranslator returns a Translator without any variable lookup.
func NewTranslator() *Translator {
	return NewTranslatorVar(StringMap{})
}

// NewTranslatorVar returns a Translator with a variable lookup. The initial
// language is matched against the system locale.
func NewTranslatorVar(variables StringMap) *Translator {
	languageFiles := MustGetResourceFiltered("languages", regexp.MustCompile(`\.ya?ml$`))
	languages := make(map[string]StringMap)
	for filename, content := range languageFiles {
		languageTag := regexp.MustCompile(`.*/([^/]+)\.ya?ml`).ReplaceAllString(filename, "$1")
		langStrings := make(StringMap)
		err := yaml.Unmarshal([]byte(content), langStrings)
		if err != nil {
			logger.Warn().Str("file", filename).Msg("unable to parse language file")
			continue
		}
		languages[languageTag] = langStrings
	}
	t := Translator{
		langStrings: languages,
		variables:   variables,
	}
	if err := t.SetLanguage(t.getLocale()); err != nil {
		if err = t.SetLanguage(DefaultLanguage); err != nil {
			return nil
		}
	}
	return &t
}

// Get returns the localized string for a given string key, with template
// variables expanded. Unknown keys fall back to the default language, and
// failing that return an empty string.
func (t *Translator) Get(key string) string {
	str := t.getRaw(key)
	return ExpandVariables(str, t.variables)
}

// GetLanguage returns the identifier (e.g. "en") for the current language.
func (t *Translator) GetLanguage() string { return t.language }

// GetLanguages returns a list of identifiers for all available languages.
// The default language (if it has strings available) will be the first in
// the list, the rest is sorted alphabetically.
func (t *Translator) GetLanguages() (languages []string) {
	hasDefault := false
	for lang := range t.langStrings {
		if lang != DefaultLanguage {
			languages = append(languages, lang)
		} else {
			hasDefault = true
		}
	}
	sort.Strings(languages)
	if hasDefault {
		languages = append([]string{DefaultLanguage}, languages...)
	}
	return languages
}

// SetLanguage given a language code string (e.g.: "en"), sets the
// translator's language.
func (t *Translator) SetLanguage(language string) error {
	if _, ok := t.langStrings[language]; !ok {
		return fmt.Errorf("no language '%s'", language)
	}
	t.language = language
	return nil
}

// getLocale returns the current system locale, matched against the available
// languages, as a language code string (e.g.: "en").
func (t *Translator) getLocale() string {
	languageTags := []language.Tag{language.Raw.Make(DefaultLanguage)}
	for languageTag := range t.langStrings {
		if languageTag != DefaultLanguage && languageTag != "" {
			languageTags = append(languageTags, language.Raw.Make(languageTag))
		}
	}
	locale, _ := jibber_jabber.DetectIETF()
	match, _, _ := language.NewMatcher(languageTags).Match(language.Make(locale))
	return match.String()
}

// getRaw returns a localized string for a given string key, without template
// expansion.
func (t *Translator) getRaw(key string) string {
	if langStrings, ok := t.langStrings[t.language]; ok {
		if value, ok := langStrings[key]; ok {
			return value
		}
	}
	if langStrings, ok := t.langStrings[DefaultLanguage]; ok {
		if value, ok := langStrings[key]; ok {
			return value
		}
	}
	return ""
}

// ExpandVariables takes a string with template variables like {{.var}} and
// expands them with the given map.
func ExpandVariables(str string, variables StringMap) string {
	functions := template.FuncMap{
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"trim":  strings.TrimSpace,
	}
	templ, err := template.New("").Funcs(functions).Parse(str)
	if err != nil {
		logger.Warn().Err(err).Msg("invalid string template")
		return str
	}
	var buf bytes.Buffer
	if err = templ.Execute(&buf, variables); err != nil {
		logger.Warn().Err(err).Msg("error executing template")
		return str
	}
	return buf.String()
}

// MergeVariables combines several variable maps into a single one. Duplicate
// keys will be overridden by the value in the last map which has the key.
func MergeVariables(varMaps ...StringMap) StringMap {
	merged := make(StringMap)
	for _, vars := range varMaps {
		for k, v := range vars {
			merged[k] = v
		}
	}
	return merged
}
