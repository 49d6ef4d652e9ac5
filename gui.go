package pokedex

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
)

const (
	guiDefinitionFile = "pokedex.glade"
	spriteSize        = 300
)

type (
	// EventHandler defines a function to be called when a certain event,
	// identified by a string key, is emitted from the GTK GUI.
	EventHandler map[string]interface{}
	// statWidgets is the progress bar and value label for one base stat.
	statWidgets struct {
		bar   *gtk.ProgressBar
		value *gtk.Label
	}
	// Gui defines a GTK3-based graphical interface around a single search
	// box: enter a name, get the Pokémon's card and artwork.
	Gui struct {
		client       *Client
		builder      *gtk.Builder
		win          *gtk.Window
		searchEntry  *gtk.Entry
		searchButton *gtk.Button
		statusLabel  *gtk.Label
		nameLabel    *gtk.Label
		idLabel      *gtk.Label
		typeLabel    *gtk.Label
		abilityLabel *gtk.Label
		spriteImage  *gtk.Image
		stats        map[string]statWidgets
		translator   *Translator
		config       *Config
	}
)

// guiEventHandler returns an EventHandler that handles events from the GTK3
// elements in the .glade GUI-definition file.
func guiEventHandler(g *Gui) EventHandler {
	return EventHandler{
		"on_search_clicked":  func() { g.search() },
		"on_search_activate": func() { g.search() },
		"on_main_destroy":    func() { gtk.MainQuit() },
	}
}

// NewGui loads the GUI definition from the unpacked resources path and wires
// up the widgets. Most common reasons for error include (on Linux):
//
//   - no desktop running (headless servers, remote logins)
//   - GTK3 missing
func NewGui(resourcesPath string, client *Client, translator *Translator, config *Config) (*Gui, error) {
	if err := gtk.InitCheck(nil); err != nil {
		return nil, err
	}
	builder, err := gtk.BuilderNewFromFile(filepath.Join(resourcesPath, "gui", guiDefinitionFile))
	if err != nil {
		return nil, err
	}
	gui := Gui{
		client:       client,
		builder:      builder,
		win:          getWindow(builder, "main_window"),
		searchEntry:  getEntry(builder, "search_entry"),
		searchButton: getButton(builder, "search_button"),
		statusLabel:  getLabel(builder, "status_label"),
		nameLabel:    getLabel(builder, "name_label"),
		idLabel:      getLabel(builder, "id_label"),
		typeLabel:    getLabel(builder, "type_label"),
		abilityLabel: getLabel(builder, "ability_label"),
		spriteImage:  getImage(builder, "sprite_image"),
		stats:        make(map[string]statWidgets),
		translator:   translator,
		config:       config,
	}
	if gui.win == nil {
		return nil, errors.New("GUI definition is missing the main window")
	}
	for _, stat := range cardStats {
		gui.stats[stat] = statWidgets{
			bar:   getProgressBar(builder, "stat_"+stat+"_bar"),
			value: getLabel(builder, "stat_"+stat+"_value"),
		}
	}
	gui.builder.ConnectSignals(guiEventHandler(&gui))
	gui.win.SetTitle(gui.t("title"))
	gui.setLabel("header_label", gui.t("header"))
	gui.setLabel("placeholder_label", gui.t("gui_no_selection"))
	return &gui, nil
}

func (g *Gui) run() {
	g.win.ShowAll()
	gtk.Main()
}

// search validates the entered name and starts a fetch goroutine. The search
// button stays disabled until the result (or error) comes back.
func (g *Gui) search() {
	raw, err := g.searchEntry.GetText()
	if err != nil {
		return
	}
	name, err := SanitizeName(raw)
	if err != nil {
		g.statusLabel.SetText(g.t("err_invalid_name"))
		return
	}
	g.statusLabel.SetText(g.t("gui_searching"))
	g.searchButton.SetSensitive(false)
	go g.fetch(name)
}

// fetch runs off the GTK main loop. All widget updates go back through
// glib.IdleAdd.
func (g *Gui) fetch(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*g.config.Timeout())
	defer cancel()
	p, _, err := g.client.Lookup(ctx, name)
	if err != nil {
		g.idleShowError(name, err)
		return
	}
	sprite, err := g.client.Sprite(ctx, p)
	if err != nil {
		logger.Warn().Err(err).Str("name", name).Msg("sprite fetch failed")
		sprite = nil
	}
	glib.IdleAdd(func() { g.showResult(p, sprite) })
}

func (g *Gui) idleShowError(name string, err error) {
	msg := g.t("err_network")
	if errors.Is(err, ErrNotFound) {
		msg = fmt.Sprintf("%s: %s", g.t("err_not_found"), name)
	}
	glib.IdleAdd(func() {
		g.statusLabel.SetText(msg)
		g.nameLabel.SetText("---")
		g.idLabel.SetText("#000")
		for _, widgets := range g.stats {
			widgets.bar.SetFraction(0)
			widgets.value.SetText("0")
		}
		g.spriteImage.Clear()
		g.searchButton.SetSensitive(true)
	})
}

func (g *Gui) showResult(p *Pokemon, sprite []byte) {
	g.statusLabel.SetText(g.t("gui_loaded"))
	g.nameLabel.SetText(DisplayName(p.Name))
	g.idLabel.SetText(fmt.Sprintf("No. %03d", p.ID))
	for stat, widgets := range g.stats {
		val := p.Stat(stat)
		widgets.bar.SetFraction(float64(val) / float64(StatMax))
		widgets.value.SetText(fmt.Sprintf("%d", val))
	}
	g.typeLabel.SetText(fmt.Sprintf("%s: %s", g.t("card_type"), strings.Join(p.TypeNames(), " / ")))
	g.abilityLabel.SetText(fmt.Sprintf("%s: %s", g.t("card_abilities"), strings.Join(p.AbilityNames(), ", ")))
	// never leave the previous Pokémon's artwork next to the new data
	if sprite == nil {
		g.spriteImage.Clear()
	} else if err := g.setSprite(sprite); err != nil {
		logger.Warn().Err(err).Msg("unable to display sprite")
		g.spriteImage.Clear()
	}
	g.searchButton.SetSensitive(true)
}

// setSprite decodes the image bytes and scales them into the image widget.
func (g *Gui) setSprite(data []byte) error {
	loader, err := gdk.PixbufLoaderNew()
	if err != nil {
		return err
	}
	pixbuf, err := loader.WriteAndReturnPixbuf(data)
	if err != nil {
		return err
	}
	scaled, err := pixbuf.ScaleSimple(spriteSize, spriteSize, gdk.INTERP_BILINEAR)
	if err != nil {
		return err
	}
	g.spriteImage.SetFromPixbuf(scaled)
	return nil
}

// t returns a localized string for the key.
func (g *Gui) t(key string) string {
	return g.translator.Get(key)
}

func (g *Gui) setLabel(labelID string, content string) {
	if label := getLabel(g.builder, labelID); label != nil {
		label.SetLabel(content)
	}
}
