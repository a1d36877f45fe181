// pkg/links/links_test.go
// TEST TYPE: Unit Tests
// DEPENDENCIES: Filesystem with symlink support (t.TempDir)
// PURPOSE: Test link creation, repair, conflict safety, and the relative no-op

package links_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonyvu2014/fresh/pkg/errors"
	"github.com/tonyvu2014/fresh/pkg/links"
	"github.com/tonyvu2014/fresh/pkg/paths"
)

func newManager(t *testing.T) (*links.Manager, *paths.Paths, string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv(paths.EnvFreshRoot, "")
	t.Setenv(paths.EnvFreshLocalSource, "")
	t.Setenv(paths.EnvFreshRcFile, "")
	p, err := paths.New(home, "", "")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(p.BuildDir(), 0755))
	return links.NewManager(p), p, home
}

func TestEnsure_CreatesLinkAndParents(t *testing.T) {
	m, p, home := newManager(t)

	require.NoError(t, m.Ensure("~/.config/git/config", "config/git/config"))

	target, err := os.Readlink(filepath.Join(home, ".config/git/config"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(p.BuildDir(), "config/git/config"), target)
}

func TestEnsure_ExistingCorrectLinkIsNoop(t *testing.T) {
	m, _, _ := newManager(t)

	require.NoError(t, m.Ensure("~/.vimrc", "vimrc"))
	require.NoError(t, m.Ensure("~/.vimrc", "vimrc"))
}

func TestEnsure_RepointsStaleLink(t *testing.T) {
	m, p, home := newManager(t)

	// Simulate a link left behind pointing into the backup slot
	stale := filepath.Join(p.BuildOldDir(), "vimrc")
	linkPath := filepath.Join(home, ".vimrc")
	require.NoError(t, os.Symlink(stale, linkPath))

	require.NoError(t, m.Ensure("~/.vimrc", "vimrc"))

	target, err := os.Readlink(linkPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(p.BuildDir(), "vimrc"), target)
}

func TestEnsure_ForeignSymlinkConflicts(t *testing.T) {
	m, _, home := newManager(t)

	elsewhere := filepath.Join(t.TempDir(), "user-managed")
	require.NoError(t, os.WriteFile(elsewhere, []byte("mine"), 0644))
	linkPath := filepath.Join(home, ".vimrc")
	require.NoError(t, os.Symlink(elsewhere, linkPath))

	err := m.Ensure("~/.vimrc", "vimrc")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrLinkConflict))

	// Untouched
	target, rerr := os.Readlink(linkPath)
	require.NoError(t, rerr)
	assert.Equal(t, elsewhere, target)
}

func TestEnsure_RegularFileConflicts(t *testing.T) {
	m, _, home := newManager(t)

	linkPath := filepath.Join(home, ".vimrc")
	require.NoError(t, os.WriteFile(linkPath, []byte("precious"), 0644))

	err := m.Ensure("~/.vimrc", "vimrc")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrLinkConflict))

	// User data intact
	body, rerr := os.ReadFile(linkPath)
	require.NoError(t, rerr)
	assert.Equal(t, "precious", string(body))
}

func TestEnsure_RelativePathIsNoop(t *testing.T) {
	m, _, home := newManager(t)

	require.NoError(t, m.Ensure("inside/tree", "inside-tree"))

	entries, err := os.ReadDir(home)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, "inside", e.Name())
	}
}

func TestEnsure_ParentEscapeFails(t *testing.T) {
	m, _, _ := newManager(t)

	err := m.Ensure("../escape", "escape")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfig))
}

func TestCheck(t *testing.T) {
	m, p, home := newManager(t)

	t.Run("missing_path_ok", func(t *testing.T) {
		assert.NoError(t, m.Check("~/.vimrc"))
	})

	t.Run("owned_link_ok", func(t *testing.T) {
		require.NoError(t, os.Symlink(filepath.Join(p.BuildDir(), "zshrc"), filepath.Join(home, ".zshrc")))
		assert.NoError(t, m.Check("~/.zshrc"))
	})

	t.Run("regular_file_conflicts", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(home, ".bashrc"), []byte("x"), 0644))
		err := m.Check("~/.bashrc")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrLinkConflict))
	})

	t.Run("foreign_link_conflicts", func(t *testing.T) {
		require.NoError(t, os.Symlink("/somewhere/else", filepath.Join(home, ".tmux.conf")))
		err := m.Check("~/.tmux.conf")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrLinkConflict))
	})

	t.Run("relative_noop", func(t *testing.T) {
		assert.NoError(t, m.Check("inside/tree"))
	})
}
