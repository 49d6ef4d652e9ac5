package pokedex

import (
	"encoding/json"
	"sort"
	"strings"
)

// StatMax is the ceiling base stats are rendered against. Base stats top out
// around 255.
const StatMax = 255

type (
	// NamedRef is PokeAPI's ubiquitous name/url resource reference.
	NamedRef struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	// Ability is one of a Pokémon's up to three abilities.
	Ability struct {
		Ability NamedRef `json:"ability"`
		Hidden  bool     `json:"is_hidden"`
		Slot    int      `json:"slot"`
	}
	// TypeSlot is one of a Pokémon's one or two types.
	TypeSlot struct {
		Slot int      `json:"slot"`
		Type NamedRef `json:"type"`
	}
	// StatValue is a single named base stat.
	StatValue struct {
		Base int      `json:"base_stat"`
		Stat NamedRef `json:"stat"`
	}
	// Sprites holds the Pokémon's image URLs. Only the two actually
	// displayed ones are decoded.
	Sprites struct {
		FrontDefault string `json:"front_default"`
		Other        struct {
			OfficialArtwork struct {
				FrontDefault string `json:"front_default"`
			} `json:"official-artwork"`
		} `json:"other"`
	}
	// Pokemon is the decoded response of PokeAPI's /pokemon/{name} endpoint.
	// Height is in decimeters, weight in hectograms.
	Pokemon struct {
		ID        int         `json:"id"`
		Name      string      `json:"name"`
		Height    int         `json:"height"`
		Weight    int         `json:"weight"`
		Abilities []Ability   `json:"abilities"`
		Types     []TypeSlot  `json:"types"`
		Stats     []StatValue `json:"stats"`
		Sprites   Sprites     `json:"sprites"`
	}
	// Page is the decoded response of the paginated /pokemon index endpoint.
	Page struct {
		Count   int        `json:"count"`
		Results []NamedRef `json:"results"`
	}
)

// decodePokemon parses a raw /pokemon/{name} response body.
func decodePokemon(data []byte) (*Pokemon, error) {
	p := &Pokemon{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ArtworkURL returns the URL of the best available image: the official
// artwork if present, the plain front sprite otherwise. May be empty.
func (p *Pokemon) ArtworkURL() string {
	if url := p.Sprites.Other.OfficialArtwork.FrontDefault; url != "" {
		return url
	}
	return p.Sprites.FrontDefault
}

// Stat returns the base value of the named stat ("hp", "attack", ...), or 0
// if the stat isn't present.
func (p *Pokemon) Stat(name string) int {
	for _, s := range p.Stats {
		if s.Stat.Name == name {
			return s.Base
		}
	}
	return 0
}

// TypeNames returns the Pokémon's type names in slot order, capitalized.
func (p *Pokemon) TypeNames() (names []string) {
	types := make([]TypeSlot, len(p.Types))
	copy(types, p.Types)
	sort.Slice(types, func(i, j int) bool { return types[i].Slot < types[j].Slot })
	for _, t := range types {
		names = append(names, DisplayName(t.Type.Name))
	}
	return names
}

// AbilityNames returns the Pokémon's ability names in slot order, with
// hyphens turned into spaces and each word capitalized ("lightning-rod" ->
// "Lightning Rod").
func (p *Pokemon) AbilityNames() (names []string) {
	abilities := make([]Ability, len(p.Abilities))
	copy(abilities, p.Abilities)
	sort.Slice(abilities, func(i, j int) bool { return abilities[i].Slot < abilities[j].Slot })
	for _, a := range abilities {
		names = append(names, DisplayName(a.Ability.Name))
	}
	return names
}

// DisplayName turns an API resource name into a human-readable one:
// "mr-mime" -> "Mr Mime".
func DisplayName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == ' ' })
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
