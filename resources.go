package pokedex

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	rice "github.com/GeertJohan/go.rice"
)

var (
	resourceBox  *rice.Box
	openBoxesOne sync.Once
)

// openBoxes opens the resource payload box. For go.rice's 'append' mode to
// work, the call to FindBox() has to be with a literal string parameter.
func openBoxes() {
	openBoxesOne.Do(func() {
		var err error
		resourceBox, err = rice.FindBox("resources")
		if err != nil {
			panic(err)
		}
	})
}

// GetResource returns the content of a single named file from the resource
// box.
func GetResource(name string) (string, error) {
	if resourceBox == nil {
		return "", fmt.Errorf("resource box not opened")
	}
	return resourceBox.String(name)
}

// MustGetResource is GetResource for resources that have to exist for the
// program to function at all.
func MustGetResource(name string) string {
	str, err := GetResource(name)
	if err != nil {
		panic(err)
	}
	return str
}

// GetResourceFiltered returns a map of filename to content for all files
// under the given resource directory whose path matches the filter.
func GetResourceFiltered(dir string, filter *regexp.Regexp) (map[string]string, error) {
	if resourceBox == nil {
		return nil, fmt.Errorf("resource box not opened")
	}
	files := make(map[string]string)
	err := resourceBox.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !filter.MatchString(path) {
			return nil
		}
		content, err := resourceBox.String(path)
		if err != nil {
			return err
		}
		files[path] = content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing resource dir '%s': %w", dir, err)
	}
	return files, nil
}

// MustGetResourceFiltered is GetResourceFiltered for resource directories
// that have to exist.
func MustGetResourceFiltered(dir string, filter *regexp.Regexp) map[string]string {
	files, err := GetResourceFiltered(dir, filter)
	if err != nil {
		panic(err)
	}
	return files
}

// UnpackResourceDir writes all files under the given resource directory out
// to a directory on disk. Used for resources which libraries can only
// consume as real files, like the GUI definition.
func UnpackResourceDir(dir, targetDir string) error {
	files, err := GetResourceFiltered(dir, regexp.MustCompile(`.*`))
	if err != nil {
		return err
	}
	for path, content := range files {
		target := filepath.Join(targetDir, path)
		if err = os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		if err = os.WriteFile(target, []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}
