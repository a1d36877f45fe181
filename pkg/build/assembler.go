package build

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tonyvu2014/fresh/pkg/errors"
	"github.com/tonyvu2014/fresh/pkg/logging"
	"github.com/tonyvu2014/fresh/pkg/parser"
	"github.com/tonyvu2014/fresh/pkg/resolver"
	"github.com/tonyvu2014/fresh/pkg/shell"
)

// EnvNoBinConflictCheck suppresses the bin-concatenation advisory when
// set in an entry's captured env.
const EnvNoBinConflictCheck = "FRESH_NO_BIN_CONFLICT_CHECK"

// FilterFunc pipes content through a shell filter command.
type FilterFunc func(filter, rcPath string, input []byte) ([]byte, error)

// Assembler writes resolved source content into the staging tree,
// concatenating contributions to shared build files.
type Assembler struct {
	stagingDir string
	rcPath     string
	runFilter  FilterFunc

	fileStates map[string]*fileState
	advisories []string
}

type fileState struct {
	hasContent bool
	entries    map[string]bool
	binAdvised bool
}

// NewAssembler creates an assembler writing under stagingDir. rcPath
// is the declaration script made available to filter commands.
func NewAssembler(stagingDir, rcPath string) *Assembler {
	return &Assembler{
		stagingDir: stagingDir,
		rcPath:     rcPath,
		runFilter:  shell.RunFilter,
		fileStates: map[string]*fileState{},
	}
}

// SetFilterFunc overrides filter execution, for tests.
func (a *Assembler) SetFilterFunc(fn FilterFunc) { a.runFilter = fn }

// Advisories returns the non-fatal notes produced so far.
func (a *Assembler) Advisories() []string { return a.advisories }

// Files returns the number of distinct build files written.
func (a *Assembler) Files() int { return len(a.fileStates) }

// Prime writes initial lines to a build file before any entry
// contributes, so later contributions separate correctly.
func (a *Assembler) Prime(buildPath string, lines []string) error {
	buildFile := filepath.Join(a.stagingDir, buildPath)
	if err := os.MkdirAll(filepath.Dir(buildFile), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrPermission, "failed to create build directory for %s", buildPath)
	}
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(buildFile, []byte(content), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrPermission, "failed to write build file %s", buildPath)
	}
	a.fileStates[buildPath] = &fileState{hasContent: true, entries: map[string]bool{}}
	return nil
}

// Append reads one resolved source, applies the entry's filter, and
// appends the result to the target's build file. It reports whether
// the source contributed content: a source that turns out to be
// unreadable counts the same as one that never matched.
func (a *Assembler) Append(entry parser.Entry, src resolver.ResolvedSource, target Target, refSrc resolver.RefSource) (bool, error) {
	logger := logging.GetLogger("build")

	content, ok := a.readSource(entry, src, refSrc)
	if !ok {
		logger.Debug().Str("path", src.Path).Msg("source unreadable, treating as unmatched")
		return false, nil
	}

	if filter := entry.Options.FilterValue(); filter != "" {
		filtered, err := a.runFilter(filter, a.rcPath, content)
		if err != nil {
			return false, err
		}
		content = filtered
	}

	buildFile := filepath.Join(a.stagingDir, target.BuildPath)
	if err := os.MkdirAll(filepath.Dir(buildFile), 0755); err != nil {
		return false, errors.Wrapf(err, errors.ErrPermission, "failed to create build directory for %s", target.BuildPath)
	}

	state := a.fileStates[target.BuildPath]
	if state == nil {
		state = &fileState{entries: map[string]bool{}}
		a.fileStates[target.BuildPath] = state
	}

	entryKey := fmt.Sprintf("%s:%d", entry.SourceFile, entry.SourceLine)
	if target.Bin && !state.binAdvised && len(state.entries) > 0 && !state.entries[entryKey] {
		state.binAdvised = true
		if !envTruthy(entry.Env[EnvNoBinConflictCheck]) {
			a.advisories = append(a.advisories, fmt.Sprintf(
				"Multiple sources concatenated into the executable %s; the result may not run as intended.",
				target.BuildPath))
		}
	}
	state.entries[entryKey] = true

	var out strings.Builder
	if state.hasContent {
		out.WriteString("\n")
	}
	if target.Marker != nil {
		out.WriteString(markerLine(*target.Marker, entry, src.RelativeName))
		out.WriteString("\n\n")
	}
	out.Write(content)
	if len(content) > 0 && content[len(content)-1] != '\n' {
		out.WriteString("\n")
	}

	mode := os.FileMode(0644)
	if target.Bin {
		mode = 0755
	}
	f, err := os.OpenFile(buildFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, mode)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrPermission, "failed to open build file %s", target.BuildPath)
	}
	if _, err := f.WriteString(out.String()); err != nil {
		_ = f.Close()
		return false, errors.Wrapf(err, errors.ErrPermission, "failed to write build file %s", target.BuildPath)
	}
	if err := f.Close(); err != nil {
		return false, errors.Wrapf(err, errors.ErrPermission, "failed to write build file %s", target.BuildPath)
	}

	if target.Bin {
		if err := os.Chmod(buildFile, 0755); err != nil {
			return false, errors.Wrapf(err, errors.ErrPermission, "failed to mark %s executable", target.BuildPath)
		}
	}

	state.hasContent = true
	return true, nil
}

func (a *Assembler) readSource(entry parser.Entry, src resolver.ResolvedSource, refSrc resolver.RefSource) ([]byte, bool) {
	if ref := entry.Options.RefValue(); ref != "" {
		content, err := refSrc.ShowObject(ref, src.Path)
		if err != nil {
			return nil, false
		}
		return content, true
	}

	content, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, false
	}
	return content, true
}

// markerLine formats the separator identifying a fragment's origin:
//
//	<marker> fresh: [<repo> ]<relativeName>[ @ <ref>][ # <filter>]
//
// An empty marker drops the prefix but keeps the line.
func markerLine(marker string, entry parser.Entry, relativeName string) string {
	var b strings.Builder
	if marker != "" {
		b.WriteString(marker)
		b.WriteString(" ")
	}
	b.WriteString("fresh:")
	if entry.Repo != "" {
		b.WriteString(" " + entry.Repo)
	}
	b.WriteString(" " + relativeName)
	if ref := entry.Options.RefValue(); ref != "" {
		b.WriteString(" @ " + ref)
	}
	if filter := entry.Options.FilterValue(); filter != "" {
		b.WriteString(" # " + filter)
	}
	return b.String()
}

func envTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "", "0", "false", "no":
		return false
	}
	return true
}
