// Package links creates and repairs the home-directory symlinks that
// expose the published tree. The tool owns exactly those links whose
// current target lies inside the published (or backup) tree prefix;
// anything else belongs to the user and is never overwritten.
package links

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tonyvu2014/fresh/pkg/errors"
	"github.com/tonyvu2014/fresh/pkg/logging"
	"github.com/tonyvu2014/fresh/pkg/paths"
)

// Manager reconciles declared link paths against the published tree.
type Manager struct {
	p *paths.Paths
}

// NewManager creates a link manager for the given paths.
func NewManager(p *paths.Paths) *Manager {
	return &Manager{p: p}
}

// Check verifies that linkPath could be created or repaired without
// touching anything the tool does not own. It performs no writes, so
// the transaction can detect conflicts before publishing.
func (m *Manager) Check(linkPath string) error {
	abs, actionable, err := m.resolve(linkPath)
	if err != nil || !actionable {
		return err
	}

	fi, lerr := os.Lstat(abs)
	if lerr != nil {
		if os.IsNotExist(lerr) {
			return nil
		}
		return errors.Wrapf(lerr, errors.ErrPermission, "cannot inspect %s", linkPath)
	}

	if fi.Mode()&os.ModeSymlink == 0 {
		return errors.Newf(errors.ErrLinkConflict, "%s already exists and is not a symlink", linkPath)
	}

	current, rerr := os.Readlink(abs)
	if rerr != nil {
		return errors.Wrapf(rerr, errors.ErrPermission, "cannot read symlink %s", linkPath)
	}
	if !m.owned(current) {
		return errors.Newf(errors.ErrLinkConflict, "%s already points to %s", linkPath, current)
	}
	return nil
}

// Ensure makes linkPath a symlink to buildRelPath inside the published
// tree, creating parent directories and repairing links left by
// earlier installs.
func (m *Manager) Ensure(linkPath, buildRelPath string) error {
	logger := logging.GetLogger("links")

	abs, actionable, err := m.resolve(linkPath)
	if err != nil || !actionable {
		return err
	}
	desired := filepath.Join(m.p.BuildDir(), buildRelPath)

	fi, lerr := os.Lstat(abs)
	switch {
	case lerr == nil && fi.Mode()&os.ModeSymlink != 0:
		current, rerr := os.Readlink(abs)
		if rerr != nil {
			return errors.Wrapf(rerr, errors.ErrPermission, "cannot read symlink %s", linkPath)
		}
		if current == desired {
			return nil
		}
		if !m.owned(current) {
			return errors.Newf(errors.ErrLinkConflict, "%s already points to %s", linkPath, current)
		}
		logger.Debug().Str("link", abs).Str("from", current).Str("to", desired).Msg("repointing stale link")
		return m.replace(abs, desired, linkPath)

	case lerr == nil:
		return errors.Newf(errors.ErrLinkConflict, "%s already exists and is not a symlink", linkPath)

	case !os.IsNotExist(lerr):
		return errors.Wrapf(lerr, errors.ErrPermission, "cannot inspect %s", linkPath)
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrPermission, "failed to create parent directory for %s", linkPath)
	}
	if err := os.Symlink(desired, abs); err != nil {
		return errors.Wrapf(err, errors.ErrPermission, "failed to create symlink %s", linkPath)
	}
	logger.Debug().Str("link", abs).Str("target", desired).Msg("created link")
	return nil
}

// resolve expands the declared link path and classifies it. Relative
// paths are an intentional no-op unless they try to escape upward.
func (m *Manager) resolve(linkPath string) (abs string, actionable bool, err error) {
	if !paths.IsHomeRooted(linkPath) {
		if strings.HasPrefix(linkPath, "..") {
			return "", false, errors.Newf(errors.ErrConfig, "relative link path %q must stay inside the managed tree", linkPath)
		}
		return "", false, nil
	}
	return m.p.ExpandHome(linkPath), true, nil
}

// owned reports whether an existing link target lies inside a tree the
// tool controls: the published slot or the backup slot.
func (m *Manager) owned(target string) bool {
	return paths.InTree(target, m.p.BuildDir()) || paths.InTree(target, m.p.BuildOldDir())
}

// replace swaps a symlink atomically via a temporary sibling.
func (m *Manager) replace(abs, desired, linkPath string) error {
	tmp := fmt.Sprintf("%s.fresh-tmp-%d", abs, os.Getpid())
	if err := os.Symlink(desired, tmp); err != nil {
		return errors.Wrapf(err, errors.ErrPermission, "failed to stage replacement link for %s", linkPath)
	}
	if err := os.Rename(tmp, abs); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, errors.ErrPermission, "failed to replace symlink %s", linkPath)
	}
	return nil
}
