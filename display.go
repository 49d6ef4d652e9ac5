package pokedex

import (
	"fmt"
	"io"
	"strings"
)

const (
	// Linux terminal command string to clear the current line and reset the cursor
	clearLineVT100        = "\033[2K\r"
	cliProgressMaxLineLen = 80
	cardRule              = "-----------------------------"
	statBarWidth          = 20
)

// cardStats is the stat display order, matching the GUI.
var cardStats = []string{"hp", "attack", "defense", "speed"}

// RenderCard writes a Pokémon "card" to the given writer, in the style of:
//
//	-----------------------------
//	Name: Pikachu
//	No. 025
//	Height: 4
//	Weight: 60
//	Type: Electric
//	Abilities:
//	- Static
//	- Lightning Rod
//	...
//	-----------------------------
func RenderCard(w io.Writer, p *Pokemon, t *Translator) {
	fmt.Fprintln(w, cardRule)
	fmt.Fprintf(w, "%s: %s\n", t.Get("card_name"), DisplayName(p.Name))
	fmt.Fprintf(w, "No. %03d\n", p.ID)
	fmt.Fprintf(w, "%s: %d\n", t.Get("card_height"), p.Height)
	fmt.Fprintf(w, "%s: %d\n", t.Get("card_weight"), p.Weight)
	fmt.Fprintf(w, "%s: %s\n", t.Get("card_type"), strings.Join(p.TypeNames(), " / "))
	fmt.Fprintf(w, "%s:\n", t.Get("card_abilities"))
	for _, ability := range p.AbilityNames() {
		fmt.Fprintf(w, "- %s\n", ability)
	}
	fmt.Fprintf(w, "%s:\n", t.Get("card_stats"))
	for _, stat := range cardStats {
		val := p.Stat(stat)
		fmt.Fprintf(w, "%-8s %3d %s\n", stat, val, statBar(val, statBarWidth))
	}
	fmt.Fprintln(w, cardRule)
}

// statBar renders a value between 0 and StatMax as a fixed-width bar.
func statBar(val, width int) string {
	if val < 0 {
		val = 0
	}
	if val > StatMax {
		val = StatMax
	}
	filled := val * width / StatMax
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

// progressLine shortens a name for the single-line CLI progress display.
func progressLine(name string) string {
	if len(name) > cliProgressMaxLineLen {
		name = "..." + name[len(name)-(cliProgressMaxLineLen-3):]
	}
	return clearLineVT100 + name
}
