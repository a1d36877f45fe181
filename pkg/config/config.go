// Package config loads the fresh configuration surface: directory
// locations and behavior flags. Values are layered defaults < config
// file < FRESH_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/tonyvu2014/fresh/pkg/errors"
	"github.com/tonyvu2014/fresh/pkg/paths"
)

// Config is the value surface consumed by the install pipeline.
type Config struct {
	// Root is the fresh root directory (build rotation lives here)
	Root string `koanf:"root" toml:"root"`

	// Source is the local dotfiles directory
	Source string `koanf:"source" toml:"source"`

	// Home overrides the detected home directory (tests mostly)
	Home string `koanf:"home" toml:"home"`

	// NoPathExport disables the PATH export lines at the top of shell.sh
	NoPathExport bool `koanf:"no_path_export" toml:"no_path_export"`

	// NoBinCheck disables the fresh-in-its-own-build guard check
	NoBinCheck bool `koanf:"no_bin_check" toml:"no_bin_check"`

	// NoLocalAdvisory disables the local-vs-remote duplicate-source note
	NoLocalAdvisory bool `koanf:"no_local_advisory" toml:"no_local_advisory"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"root":              "",
		"source":            "",
		"home":              "",
		"no_path_export":    false,
		"no_bin_check":      false,
		"no_local_advisory": false,
	}
}

// Load reads configuration from the default file location, if present.
func Load() (*Config, error) {
	return LoadFrom(paths.ConfigFilePath())
}

// LoadFrom reads configuration layering defaults, the given TOML file
// (skipped when absent), and FRESH_-prefixed environment variables.
func LoadFrom(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfig, "failed to load default config")
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfig, "failed to load config from %s", configPath)
			}
		}
	}

	err := k.Load(env.Provider("FRESH_CFG_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "FRESH_CFG_"))
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfig, "failed to load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfig, "failed to unmarshal configuration")
	}

	return &cfg, nil
}

// WriteDefault writes a default config file at path, creating parent
// directories. Fails if the file already exists.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.Newf(errors.ErrConfig, "config file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, errors.ErrPermission, "failed to create config directory")
	}

	var cfg Config
	body, err := gotoml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to marshal default config")
	}

	header := fmt.Sprintf("# fresh configuration\n# Empty values use the built-in defaults:\n#   root   = ~/.fresh\n#   source = ~/.dotfiles\n\n%s", body)
	if err := os.WriteFile(path, []byte(header), 0644); err != nil {
		return errors.Wrap(err, errors.ErrPermission, "failed to write config file")
	}
	return nil
}
