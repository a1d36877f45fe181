// pkg/git/git_test.go
// TEST TYPE: Unit Tests (plus integration tests requiring the git binary)
// DEPENDENCIES: git executable for the repository tests
// PURPOSE: Test repository identifier normalization and exec-git operations

package git_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonyvu2014/fresh/pkg/errors"
	"github.com/tonyvu2014/fresh/pkg/git"
)

func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		ident   string
		url     string
		owner   string
		repo    string
		wantErr bool
	}{
		{"github_shorthand", "freshshell/fresh", "https://github.com/freshshell/fresh", "freshshell", "fresh", false},
		{"https_url", "https://example.com/owner/repo.git", "https://example.com/owner/repo.git", "owner", "repo", false},
		{"ssh_url", "git@github.com:owner/repo.git", "git@github.com:owner/repo.git", "github.com", "repo", false},
		{"bare_name", "justarepo", "", "", "", true},
		{"empty_owner", "/repo", "", "", "", true},
		{"too_many_parts", "a/b/c", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, owner, repo, err := git.NormalizeIdentifier(tt.ident)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, errors.ErrConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.url, url)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.repo, repo)
		})
	}
}

// initTestRepo builds a one-commit repository with the given files.
func initTestRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	for _, args := range [][]string{
		{"init", "-q"},
		{"config", "user.email", "test@example.com"},
		{"config", "user.name", "test"},
		{"add", "."},
		{"commit", "-q", "-m", "init"},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		require.NoError(t, cmd.Run(), "git %v", args)
	}
	return dir
}

func TestListTree(t *testing.T) {
	dir := initTestRepo(t, map[string]string{
		"shell/aliases.sh": "alias l=ls\n",
		"shell/git.sh":     "alias gs='git status'\n",
		"README.md":        "readme\n",
	})

	paths, err := git.ListTree(dir, "HEAD")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"shell/aliases.sh", "shell/git.sh", "README.md"}, paths)
}

func TestShowObject(t *testing.T) {
	dir := initTestRepo(t, map[string]string{"shell/git.sh": "alias gs='git status'\n"})

	content, err := git.ShowObject(dir, "HEAD", "shell/git.sh")
	require.NoError(t, err)
	assert.Equal(t, "alias gs='git status'\n", string(content))
}

func TestShowObject_MissingPath(t *testing.T) {
	dir := initTestRepo(t, map[string]string{"a.sh": "x\n"})

	_, err := git.ShowObject(dir, "HEAD", "nope.sh")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSubprocess))
}

func TestListTree_BadRef(t *testing.T) {
	dir := initTestRepo(t, map[string]string{"a.sh": "x\n"})

	_, err := git.ListTree(dir, "no-such-ref")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSubprocess))
}

func TestIsCloned(t *testing.T) {
	dir := initTestRepo(t, map[string]string{"a.sh": "x\n"})
	assert.True(t, git.IsCloned(dir))
	assert.False(t, git.IsCloned(t.TempDir()))
}
