// Package workspace locates the project root that index builds scan.
package workspace

import (
	"os"
	"path/filepath"
)

// Markers are files that indicate the root of a project, in preference
// order.
var Markers = []string{
	"robot.toml",
	"pyproject.toml",
	".git",
}

// FindRoot locates the project root by searching upward from start for a
// marker file. If no marker is found it returns start; an empty start
// yields "" so callers degrade to an empty index rather than scanning an
// arbitrary directory.
func FindRoot(start string) string {
	if start == "" {
		return ""
	}
	dir := start
	for {
		for _, marker := range Markers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

// FindRootFromCwd locates the project root starting from the current
// working directory.
func FindRootFromCwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return FindRoot(cwd)
}
