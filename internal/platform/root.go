package platform

import (
	"errors"
	"os"
	"path/filepath"
)

const (
	// DefaultDataDir is the directory holding the fs backend's files,
	// relative to the project root.
	DefaultDataDir = ".forge"

	// ConfigFile is the name of the project configuration file.
	ConfigFile = "forge.yaml"
)

// ErrRootNotFound is returned by FindRoot when no marker exists up to the
// filesystem root.
var ErrRootNotFound = errors.New("forge root not found")

// FindRoot looks upwards from startDir for a project root.
// Indicators are a .forge directory or a forge.yaml file.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if isDir(filepath.Join(dir, DefaultDataDir)) || hasFile(dir, ConfigFile) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrRootNotFound
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
