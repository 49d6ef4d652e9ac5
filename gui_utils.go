package pokedex

import (
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
)

func getObject(builder *gtk.Builder, name string) glib.IObject {
	obj, err := builder.GetObject(name)
	if err != nil {
		return nil
	}
	return obj
}

func getWindow(builder *gtk.Builder, name string) *gtk.Window {
	if w, ok := getObject(builder, name).(*gtk.Window); ok {
		return w
	}
	return nil
}

func getLabel(builder *gtk.Builder, name string) *gtk.Label {
	if w, ok := getObject(builder, name).(*gtk.Label); ok {
		return w
	}
	return nil
}

func getButton(builder *gtk.Builder, name string) *gtk.Button {
	if w, ok := getObject(builder, name).(*gtk.Button); ok {
		return w
	}
	return nil
}

func getEntry(builder *gtk.Builder, name string) *gtk.Entry {
	if w, ok := getObject(builder, name).(*gtk.Entry); ok {
		return w
	}
	return nil
}

func getImage(builder *gtk.Builder, name string) *gtk.Image {
	if w, ok := getObject(builder, name).(*gtk.Image); ok {
		return w
	}
	return nil
}

func getProgressBar(builder *gtk.Builder, name string) *gtk.ProgressBar {
	if w, ok := getObject(builder, name).(*gtk.ProgressBar); ok {
		return w
	}
	return nil
}
