// Package config loads per-workspace settings from robot.toml.
//
// Settings live under a [tools.gherkin] table so the file can be shared
// with other Robot Framework tooling:
//
//	[tools.gherkin]
//	cache-ttl = "45s"
//	ignore = ["**/node_modules/**"]
//
// A missing file or missing table yields the zero Config; callers apply
// their own defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the workspace configuration file, also used as a root
// marker.
const FileName = "robot.toml"

// Config holds the gherkin tool settings of a workspace.
type Config struct {
	// CacheTTL is the staleness window for cached indexes. Zero means
	// the built-in default.
	CacheTTL Duration `toml:"cache-ttl"`

	// Ignore lists glob patterns excluded from file discovery, in
	// addition to hidden directories.
	Ignore []string `toml:"ignore"`
}

// Duration is a time.Duration that unmarshals from TOML strings like
// "30s" or "2m".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

type file struct {
	Tools struct {
		Gherkin Config `toml:"gherkin"`
	} `toml:"tools"`
}

// Load reads the workspace configuration from root. A missing file is
// not an error and returns the zero Config.
func Load(root string) (*Config, error) {
	if root == "" {
		return &Config{}, nil
	}

	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing TOML config %s: %w", path, err)
	}
	return &f.Tools.Gherkin, nil
}
