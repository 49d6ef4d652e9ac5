//go:build linux
// +build linux

package pokedex

import (
	"os"
	"os/user"
	"path/filepath"
)

const (
	desktopFileUserDir   = ".local/share/applications"
	desktopFileSystemDir = "/usr/share/applications"
	desktopFilename      = "pokedex.desktop"
	desktopFileTemplate  = `[Desktop Entry]
Name={{.product}}
Version={{.version}}
Type=Application
Exec={{.binary}}
Comment={{.tagline}}
Categories=Utility;Game;
Terminal=false
`
)

// osCreateLauncherEntry writes a .desktop file for the pokedex binary, into
// the system-wide applications dir when running as root, the user's
// otherwise. Returns the path of the created file.
func osCreateLauncherEntry(variables ...StringMap) (string, error) {
	content := ExpandVariables(desktopFileTemplate, MergeVariables(variables...))
	usr, err := user.Current()
	if err != nil {
		return "", err
	}
	var desktopFilepath string
	if usr.Uid == "0" {
		desktopFilepath = filepath.Join(desktopFileSystemDir, desktopFilename)
	} else {
		desktopFilepath = filepath.Join(usr.HomeDir, desktopFileUserDir, desktopFilename)
	}
	if err = os.MkdirAll(filepath.Dir(desktopFilepath), 0755); err != nil {
		return "", err
	}
	return desktopFilepath, os.WriteFile(desktopFilepath, []byte(content), 0755)
}
