// Package git is the source-control collaborator. All operations
// shell out to the git binary; a non-zero exit from any of them is a
// hard failure.
package git

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/tonyvu2014/fresh/pkg/errors"
	"github.com/tonyvu2014/fresh/pkg/logging"
)

// Repo identifies a cloned repository on disk.
type Repo struct {
	// URL is the normalized clone URL
	URL string

	// Owner and Name are the path components under <root>/source/
	Owner string
	Name  string

	// Dir is the local clone location
	Dir string
}

// NormalizeIdentifier turns a declaration repo identifier into a clone
// URL and owner/name pair. A bare "owner/repo" is shorthand for a
// GitHub repository; anything with a scheme or scp-style host passes
// through unchanged.
func NormalizeIdentifier(ident string) (url, owner, name string, err error) {
	if strings.Contains(ident, "://") || strings.Contains(ident, "@") {
		url = ident
		trimmed := strings.TrimSuffix(ident, ".git")
		trimmed = strings.ReplaceAll(trimmed, ":", "/")
		parts := strings.Split(trimmed, "/")
		if len(parts) < 2 {
			return "", "", "", errors.Newf(errors.ErrConfig, "cannot derive a source directory from repository %q", ident)
		}
		return url, parts[len(parts)-2], parts[len(parts)-1], nil
	}

	parts := strings.Split(ident, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", "", errors.Newf(errors.ErrConfig, "repository %q is not of the form owner/repo", ident)
	}
	return "https://github.com/" + ident, parts[0], parts[1], nil
}

// Clone clones url into dir.
func Clone(url, dir string) error {
	_, err := run("", "clone", url, dir)
	return err
}

// IsCloned reports whether dir contains a git repository.
func IsCloned(dir string) bool {
	out, err := run(dir, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

// ListTree returns every file path under ref, repository-relative.
func ListTree(repoDir, ref string) ([]string, error) {
	out, err := run(repoDir, "ls-tree", "-r", "--name-only", ref)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, line := range strings.Split(string(out), "\n") {
		if line != "" {
			paths = append(paths, line)
		}
	}
	return paths, nil
}

// ShowObject returns the content of path at ref.
func ShowObject(repoDir, ref, path string) ([]byte, error) {
	return run(repoDir, "show", ref+":"+path)
}

func run(dir string, args ...string) ([]byte, error) {
	logger := logging.GetLogger("git")
	logger.Debug().Str("dir", dir).Strs("args", args).Msg("running git")

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrSubprocess, "git %s failed", strings.Join(args, " ")).
			WithDetail("stderr", strings.TrimSpace(stderr.String()))
	}
	return out, nil
}
