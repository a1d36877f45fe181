// Package paths provides centralized path handling for fresh.
// It resolves the fresh root, the three-directory build rotation
// (build, build.old, build.new), cloned repository locations, and
// home-relative path expansion used throughout the codebase.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/tonyvu2014/fresh/pkg/errors"
)

// Environment variable names
const (
	// EnvFreshRoot overrides the fresh root directory
	EnvFreshRoot = "FRESH_ROOT"

	// EnvFreshLocalSource overrides the local dotfiles directory
	EnvFreshLocalSource = "FRESH_LOCAL_SOURCE"

	// EnvFreshRcFile overrides the declaration script location
	EnvFreshRcFile = "FRESH_RCFILE"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Directory and file names inside the fresh root. These define the
// build rotation layout and are not user-configurable.
const (
	// BuildDirName is the published tree directory name
	BuildDirName = "build"

	// BuildOldDirName is the transient backup slot
	BuildOldDirName = "build.old"

	// StagingDirName is the in-progress tree for the current run
	StagingDirName = "build.new"

	// SourceDirName holds cloned remote repositories
	SourceDirName = "source"

	// OrderFileName overrides resolution order within a directory
	OrderFileName = ".fresh-order"

	// ShellFileName is the implicit concatenation target
	ShellFileName = "shell.sh"

	// FreshBinPath is where the tool expects its own executable in the build
	FreshBinPath = "bin/fresh"

	// RcFileName is the default declaration script name
	RcFileName = ".freshrc"
)

// Paths provides centralized path management for fresh
type Paths struct {
	home        string
	root        string
	localSource string
	rcFile      string
}

// New resolves a Paths instance from the given home directory and
// optional overrides. Empty overrides fall back to environment
// variables and then to the conventional defaults (~/.fresh and
// ~/.dotfiles).
func New(home, root, localSource string) (*Paths, error) {
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil || home == "" {
			home = os.Getenv(EnvHome)
		}
		if home == "" {
			return nil, errors.New(errors.ErrConfig, "unable to determine home directory")
		}
	}

	if root == "" {
		root = os.Getenv(EnvFreshRoot)
	}
	if root == "" {
		root = filepath.Join(home, ".fresh")
	}

	if localSource == "" {
		localSource = os.Getenv(EnvFreshLocalSource)
	}
	if localSource == "" {
		localSource = filepath.Join(home, ".dotfiles")
	}

	rcFile := os.Getenv(EnvFreshRcFile)
	if rcFile == "" {
		rcFile = filepath.Join(home, RcFileName)
	}

	p := &Paths{home: home, root: root, localSource: localSource, rcFile: rcFile}
	p.root = p.expand(p.root)
	p.localSource = p.expand(p.localSource)
	p.rcFile = p.expand(p.rcFile)
	return p, nil
}

// Home returns the home directory
func (p *Paths) Home() string { return p.home }

// Root returns the fresh root directory
func (p *Paths) Root() string { return p.root }

// BuildDir returns the published tree location
func (p *Paths) BuildDir() string { return filepath.Join(p.root, BuildDirName) }

// BuildOldDir returns the backup slot location
func (p *Paths) BuildOldDir() string { return filepath.Join(p.root, BuildOldDirName) }

// StagingDir returns the in-progress tree location
func (p *Paths) StagingDir() string { return filepath.Join(p.root, StagingDirName) }

// SourceRoot returns the directory holding cloned repositories
func (p *Paths) SourceRoot() string { return filepath.Join(p.root, SourceDirName) }

// RepoDir returns the clone location for a normalized owner/repo pair
func (p *Paths) RepoDir(owner, repo string) string {
	return filepath.Join(p.SourceRoot(), owner, repo)
}

// LocalSource returns the local dotfiles directory
func (p *Paths) LocalSource() string { return p.localSource }

// RcFile returns the declaration script path
func (p *Paths) RcFile() string { return p.rcFile }

// ConfigFilePath returns the user config file location under XDG config
func ConfigFilePath() string {
	return filepath.Join(xdg.ConfigHome, "fresh", "config.toml")
}

// ExpandHome expands a leading ~ to the home directory
func (p *Paths) ExpandHome(path string) string { return p.expand(path) }

func (p *Paths) expand(path string) string {
	if path == "~" {
		return p.home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(p.home, path[2:])
	}
	return path
}

// ContractHome replaces a home directory prefix with ~ for display
func (p *Paths) ContractHome(path string) string {
	if path == p.home {
		return "~"
	}
	if strings.HasPrefix(path, p.home+string(filepath.Separator)) {
		return "~" + path[len(p.home):]
	}
	return path
}

// IsHomeRooted reports whether path is absolute or explicitly rooted
// in the home directory (~ or ~/...). Paths that are neither are
// "relative" in declaration terms and are never linked.
func IsHomeRooted(path string) bool {
	return filepath.IsAbs(path) || path == "~" || strings.HasPrefix(path, "~/")
}

// StripHomePrefix removes a leading home-directory or ~ prefix,
// returning the remainder and whether a prefix was present.
func (p *Paths) StripHomePrefix(path string) (string, bool) {
	if strings.HasPrefix(path, "~/") {
		return path[2:], true
	}
	if strings.HasPrefix(path, p.home+string(filepath.Separator)) {
		return path[len(p.home)+1:], true
	}
	return path, false
}

// InTree reports whether path lies under the directory prefix dir.
func InTree(path, dir string) bool {
	dir = filepath.Clean(dir)
	path = filepath.Clean(path)
	return path == dir || strings.HasPrefix(path, dir+string(filepath.Separator))
}
