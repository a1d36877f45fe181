// Package install runs the build-tree synthesis transaction: stage,
// assemble, verify, publish, reconcile links. The transaction either
// publishes a complete tree or leaves the previous one untouched.
package install

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tonyvu2014/fresh/pkg/build"
	"github.com/tonyvu2014/fresh/pkg/config"
	"github.com/tonyvu2014/fresh/pkg/errors"
	"github.com/tonyvu2014/fresh/pkg/git"
	"github.com/tonyvu2014/fresh/pkg/links"
	"github.com/tonyvu2014/fresh/pkg/logging"
	"github.com/tonyvu2014/fresh/pkg/parser"
	"github.com/tonyvu2014/fresh/pkg/paths"
	"github.com/tonyvu2014/fresh/pkg/resolver"
	"github.com/tonyvu2014/fresh/pkg/shell"
)

// State names the transaction's progress for logging and tests.
type State string

const (
	StateEmpty      State = "EMPTY"
	StateStaging    State = "STAGING"
	StateFinalizing State = "FINALIZING"
	StatePublished  State = "PUBLISHED"
	StateFailed     State = "FAILED"
)

// Result summarizes a successful transaction.
type Result struct {
	Entries    int
	Files      int
	Links      int
	Advisories []string
}

type pendingLink struct {
	path     string
	buildRel string
}

// Installer drives one install transaction. External collaborators
// (rc-script execution, git) are fields so tests can stand in for
// them.
type Installer struct {
	p      *paths.Paths
	cfg    *config.Config
	state  State
	logger zerolog.Logger

	runRc        func(rcPath string) ([]byte, error)
	clone        func(url, dir string) error
	isCloned     func(dir string) bool
	refSourceFor func(repoDir string) resolver.RefSource
}

// New creates an installer with the real collaborators wired in.
func New(p *paths.Paths, cfg *config.Config) *Installer {
	return &Installer{
		p:        p,
		cfg:      cfg,
		state:    StateEmpty,
		logger:   logging.GetLogger("install"),
		runRc:    shell.RunRcFile,
		clone:    git.Clone,
		isCloned: git.IsCloned,
		refSourceFor: func(repoDir string) resolver.RefSource {
			return repoRefSource{dir: repoDir}
		},
	}
}

// State returns the transaction's current state.
func (in *Installer) State() State { return in.state }

// SetRcRunner overrides rc-script execution, for tests.
func (in *Installer) SetRcRunner(fn func(rcPath string) ([]byte, error)) {
	in.runRc = fn
}

// SetGitCollaborator overrides repository operations, for tests.
func (in *Installer) SetGitCollaborator(
	clone func(url, dir string) error,
	isCloned func(dir string) bool,
	refSourceFor func(repoDir string) resolver.RefSource,
) {
	in.clone = clone
	in.isCloned = isCloned
	if refSourceFor != nil {
		in.refSourceFor = refSourceFor
	}
}

// Run executes the whole pipeline: rc script to records, records to
// entries, entries to a published tree.
func (in *Installer) Run() (*Result, error) {
	stream, err := in.runRc(in.p.RcFile())
	if err != nil {
		in.state = StateFailed
		return nil, err
	}

	records, err := parser.ReadRecords(strings.NewReader(string(stream)))
	if err != nil {
		in.state = StateFailed
		return nil, err
	}

	entries, err := parser.Parse(records)
	if err != nil {
		in.state = StateFailed
		return nil, err
	}

	return in.RunEntries(entries)
}

// RunEntries runs the transaction over already-parsed entries.
func (in *Installer) RunEntries(entries []parser.Entry) (*Result, error) {
	result, err := in.runEntries(entries)
	if err != nil {
		in.state = StateFailed
		return nil, err
	}
	return result, nil
}

func (in *Installer) runEntries(entries []parser.Entry) (*Result, error) {
	in.state = StateStaging
	staging := in.p.StagingDir()

	// A leftover staging tree from a failed run is garbage
	if err := os.RemoveAll(staging); err != nil {
		return nil, errors.Wrap(err, errors.ErrPermission, "failed to remove stale staging directory")
	}
	if err := os.MkdirAll(staging, 0755); err != nil {
		return nil, errors.Wrap(err, errors.ErrPermission, "failed to create staging directory")
	}

	assembler := build.NewAssembler(staging, in.p.RcFile())
	if !in.cfg.NoPathExport {
		lines := shell.IntegrationLines(filepath.Join(in.p.BuildDir(), "bin"), in.p.Root())
		if err := assembler.Prime(paths.ShellFileName, lines); err != nil {
			return nil, err
		}
	}

	var pending []pendingLink
	seenLinks := map[string]bool{}
	addLink := func(path, buildRel string) {
		if path == "" || seenLinks[path] {
			return
		}
		seenLinks[path] = true
		pending = append(pending, pendingLink{path: path, buildRel: buildRel})
	}

	advisories := []string{}
	for _, entry := range entries {
		if note := in.localDuplicateAdvisory(entry); note != "" {
			advisories = append(advisories, note)
		}

		sourceRoot, refSrc, err := in.sourceRootFor(entry)
		if err != nil {
			return nil, err
		}

		sources, err := resolver.Resolve(entry, sourceRoot, refSrc)
		if err != nil {
			return nil, err
		}

		contributed := false
		for _, src := range sources {
			target, err := build.TargetFor(in.p, entry, src)
			if err != nil {
				return nil, err
			}
			wrote, err := assembler.Append(entry, src, target, refSrc)
			if err != nil {
				return nil, err
			}
			if wrote {
				contributed = true
				addLink(target.LinkPath, target.BuildPath)
			}
		}

		if contributed {
			if target, ok := build.DirTargetLink(in.p, entry); ok {
				addLink(target.LinkPath, target.BuildPath)
			}
		} else if !entry.Options.IgnoreMissingValue() {
			return nil, errors.Newf(errors.ErrMissingSource, "no sources matched %q", entry.Name).
				WithDeclaration(entry.SourceFile, entry.SourceLine, entry.Text)
		}
	}
	advisories = append(advisories, assembler.Advisories()...)

	if err := in.guardCheck(staging); err != nil {
		return nil, err
	}

	// Detect link conflicts before publishing anything
	manager := links.NewManager(in.p)
	for _, l := range pending {
		if err := manager.Check(l.path); err != nil {
			return nil, err
		}
	}

	in.state = StateFinalizing
	if err := finalize(staging); err != nil {
		return nil, err
	}

	if err := in.publish(); err != nil {
		return nil, err
	}
	in.state = StatePublished

	linked := 0
	for _, l := range pending {
		if err := manager.Ensure(l.path, l.buildRel); err != nil {
			// The tree is already published; a re-run repairs links
			return nil, err
		}
		// Relative link paths are intentional no-ops, not links
		if paths.IsHomeRooted(l.path) {
			linked++
		}
	}

	in.logger.Info().
		Int("entries", len(entries)).
		Int("files", assembler.Files()).
		Int("links", linked).
		Msg("install complete")

	return &Result{
		Entries:    len(entries),
		Files:      assembler.Files(),
		Links:      linked,
		Advisories: advisories,
	}, nil
}

// guardCheck ensures fresh manages its own executable, so PATH keeps
// working after the first install.
func (in *Installer) guardCheck(staging string) error {
	if in.cfg.NoBinCheck {
		return nil
	}
	if _, err := os.Stat(filepath.Join(staging, paths.FreshBinPath)); err != nil {
		return errors.New(errors.ErrConfig,
			"fresh is not in the assembled tree; add `fresh freshshell/fresh bin/fresh --bin` to your rc file")
	}
	return nil
}

// finalize marks every regular file in the staging tree read-only.
func finalize(staging string) error {
	return filepath.WalkDir(staging, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, errors.ErrPermission, "failed to finalize %s", path)
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return errors.Wrapf(err, errors.ErrPermission, "failed to finalize %s", path)
		}
		if err := os.Chmod(path, info.Mode().Perm()&^0222); err != nil {
			return errors.Wrapf(err, errors.ErrPermission, "failed to finalize %s", path)
		}
		return nil
	})
}

// publish rotates the three directories: the current build becomes the
// backup, staging becomes the build, and the backup is deleted. Each
// rename is atomic, so consumers never observe a half-written tree; a
// crash in between leaves the backup recoverable by a re-run.
func (in *Installer) publish() error {
	buildDir := in.p.BuildDir()
	backupDir := in.p.BuildOldDir()

	if err := os.RemoveAll(backupDir); err != nil {
		return errors.Wrap(err, errors.ErrPermission, "failed to remove previous backup")
	}
	if _, err := os.Lstat(buildDir); err == nil {
		if err := os.Rename(buildDir, backupDir); err != nil {
			return errors.Wrap(err, errors.ErrPermission, "failed to back up published tree")
		}
	}
	if err := os.Rename(in.p.StagingDir(), buildDir); err != nil {
		return errors.Wrap(err, errors.ErrPermission, "failed to publish staging tree")
	}
	if err := os.RemoveAll(backupDir); err != nil {
		return errors.Wrap(err, errors.ErrPermission, "failed to remove backup tree")
	}
	return nil
}
