package install

import (
	"fmt"
	"path/filepath"

	"github.com/tonyvu2014/fresh/pkg/git"
	"github.com/tonyvu2014/fresh/pkg/parser"
	"github.com/tonyvu2014/fresh/pkg/resolver"
)

// EnvNoLocalCheck suppresses the duplicate-source advisory for one
// entry when set in its captured env.
const EnvNoLocalCheck = "FRESH_NO_LOCAL_CHECK"

// repoRefSource adapts a cloned repository to the resolver's RefSource.
type repoRefSource struct {
	dir string
}

func (r repoRefSource) ListTree(ref string) ([]string, error) {
	return git.ListTree(r.dir, ref)
}

func (r repoRefSource) ShowObject(ref, path string) ([]byte, error) {
	return git.ShowObject(r.dir, ref, path)
}

// sourceRootFor returns the directory an entry resolves against,
// cloning the entry's repository first when necessary.
func (in *Installer) sourceRootFor(entry parser.Entry) (string, resolver.RefSource, error) {
	if entry.Repo == "" {
		return in.p.LocalSource(), nil, nil
	}

	url, owner, name, err := git.NormalizeIdentifier(entry.Repo)
	if err != nil {
		return "", nil, err
	}

	repoDir := in.p.RepoDir(owner, name)
	if !in.isCloned(repoDir) {
		in.logger.Info().Str("repo", entry.Repo).Str("dir", repoDir).Msg("cloning repository")
		if err := in.clone(url, repoDir); err != nil {
			return "", nil, err
		}
	}
	return repoDir, in.refSourceFor(repoDir), nil
}

// localDuplicateAdvisory notes when a remote-sourced entry shadows
// files that also exist in the local dotfiles directory.
func (in *Installer) localDuplicateAdvisory(entry parser.Entry) string {
	if in.cfg.NoLocalAdvisory || entry.Repo == "" {
		return ""
	}
	if entry.Env[EnvNoLocalCheck] != "" {
		return ""
	}

	matches, err := filepath.Glob(filepath.Join(in.p.LocalSource(), entry.Name))
	if err != nil || len(matches) == 0 {
		return ""
	}
	return fmt.Sprintf("%q from %s also exists in your local dotfiles; the remote copy wins.",
		entry.Name, entry.Repo)
}
