package pokedex

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pokemonFixture returns a trimmed-down /pokemon/pikachu response with the
// given official-artwork URL.
func pokemonFixture(artworkURL string) string {
	return fmt.Sprintf(`{
		"id": 25,
		"name": "pikachu",
		"height": 4,
		"weight": 60,
		"abilities": [
			{"ability": {"name": "static", "url": ""}, "is_hidden": false, "slot": 1},
			{"ability": {"name": "lightning-rod", "url": ""}, "is_hidden": true, "slot": 3}
		],
		"types": [{"slot": 1, "type": {"name": "electric", "url": ""}}],
		"stats": [
			{"base_stat": 35, "stat": {"name": "hp", "url": ""}},
			{"base_stat": 55, "stat": {"name": "attack", "url": ""}},
			{"base_stat": 40, "stat": {"name": "defense", "url": ""}},
			{"base_stat": 90, "stat": {"name": "speed", "url": ""}}
		],
		"sprites": {
			"front_default": "https://example.com/front.png",
			"other": {"official-artwork": {"front_default": %q}}
		}
	}`, artworkURL)
}

func TestDecodePokemon(t *testing.T) {
	p, err := decodePokemon([]byte(pokemonFixture("https://example.com/art.png")))
	require.NoError(t, err)
	assert.Equal(t, 25, p.ID)
	assert.Equal(t, "pikachu", p.Name)
	assert.Equal(t, 4, p.Height)
	assert.Equal(t, 60, p.Weight)
	assert.Equal(t, 35, p.Stat("hp"))
	assert.Equal(t, 90, p.Stat("speed"))
	assert.Equal(t, 0, p.Stat("special-attack"))
}

func TestDecodePokemonRejectsGarbage(t *testing.T) {
	_, err := decodePokemon([]byte("not json"))
	require.Error(t, err)
}

func TestArtworkURLPrefersOfficialArtwork(t *testing.T) {
	p, err := decodePokemon([]byte(pokemonFixture("https://example.com/art.png")))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/art.png", p.ArtworkURL())
}

func TestArtworkURLFallsBackToFrontSprite(t *testing.T) {
	p, err := decodePokemon([]byte(pokemonFixture("")))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/front.png", p.ArtworkURL())
}

func TestAbilityNamesAreTitleCasedAndOrdered(t *testing.T) {
	p, err := decodePokemon([]byte(pokemonFixture("")))
	require.NoError(t, err)
	assert.Equal(t, []string{"Static", "Lightning Rod"}, p.AbilityNames())
}

func TestTypeNames(t *testing.T) {
	p, err := decodePokemon([]byte(pokemonFixture("")))
	require.NoError(t, err)
	assert.Equal(t, []string{"Electric"}, p.TypeNames())
}

func TestDisplayName(t *testing.T) {
	for input, want := range map[string]string{
		"pikachu":       "Pikachu",
		"mr-mime":       "Mr Mime",
		"lightning-rod": "Lightning Rod",
		"":              "",
	} {
		assert.Equal(t, want, DisplayName(input), "input %q", input)
	}
}
