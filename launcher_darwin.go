//go:build darwin
// +build darwin

package pokedex

import "errors"

func osCreateLauncherEntry(variables ...StringMap) (string, error) {
	return "", errors.New("launcher entries are not supported on macOS")
}
