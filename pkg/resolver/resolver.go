// Package resolver produces the ordered list of concrete source files
// for an entry. One of three mutually exclusive strategies applies:
// git-tree listing when a ref is set, a recursive directory walk for
// directory targets, and a filesystem glob otherwise. Directories and
// .fresh-order files never appear in results.
//
// Ordering: glob and git-ref results sort lexicographically by full
// path; directory-walk results keep filepath.WalkDir traversal order,
// which visits each directory's entries in lexical order and is
// therefore deterministic without re-sorting. A .fresh-order file in
// the entry's base directory overrides either default.
package resolver

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tonyvu2014/fresh/pkg/errors"
	"github.com/tonyvu2014/fresh/pkg/logging"
	"github.com/tonyvu2014/fresh/pkg/parser"
	"github.com/tonyvu2014/fresh/pkg/paths"
)

// ResolvedSource is a concrete file found for an entry. In filesystem
// modes Path is absolute; in git-ref mode it is the tree path used
// with the show-object operation. RelativeName is the path with the
// source-root prefix stripped.
type ResolvedSource struct {
	Path         string
	RelativeName string
}

// RefSource lists and reads files at a git ref.
type RefSource interface {
	ListTree(ref string) ([]string, error)
	ShowObject(ref, path string) ([]byte, error)
}

// IsDirTarget reports whether the entry targets a directory (its file
// option value ends in a path separator).
func IsDirTarget(entry parser.Entry) bool {
	return entry.Options.File != nil && strings.HasSuffix(*entry.Options.File, "/")
}

// Resolve returns the entry's sources in final order. sourceRoot is
// the local dotfiles directory or the entry's clone location; refSrc
// is consulted only in git-ref mode. Zero results is not an error
// here: the caller decides between failing and skipping based on the
// entry's ignore-missing option.
func Resolve(entry parser.Entry, sourceRoot string, refSrc RefSource) ([]ResolvedSource, error) {
	logger := logging.GetLogger("resolver")

	var sources []ResolvedSource
	var err error
	switch {
	case entry.Options.RefValue() != "":
		sources, err = resolveRef(entry, refSrc)
	case IsDirTarget(entry):
		sources, err = resolveWalk(entry, sourceRoot)
	default:
		sources, err = resolveGlob(entry, sourceRoot)
	}
	if err != nil {
		return nil, err
	}

	sources, err = reorder(entry, sourceRoot, refSrc, sources)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("name", entry.Name).
		Str("repo", entry.Repo).
		Int("sources", len(sources)).
		Msg("resolved entry sources")
	return sources, nil
}

// resolveGlob expands the entry name as a shell-style glob against the
// source root.
func resolveGlob(entry parser.Entry, sourceRoot string) ([]ResolvedSource, error) {
	matches, err := filepath.Glob(filepath.Join(sourceRoot, entry.Name))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrParse, "bad glob pattern %q", entry.Name).
			WithDeclaration(entry.SourceFile, entry.SourceLine, entry.Text)
	}

	var sources []ResolvedSource
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		rel := strings.TrimPrefix(match, sourceRoot+string(filepath.Separator))
		if filepath.Base(rel) == paths.OrderFileName {
			continue
		}
		if excludedDotfile(entry.Name, rel) {
			continue
		}
		sources = append(sources, ResolvedSource{Path: match, RelativeName: rel})
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].Path < sources[j].Path })
	return sources, nil
}

// resolveWalk includes every file under the entry's name directory in
// traversal order.
func resolveWalk(entry parser.Entry, sourceRoot string) ([]ResolvedSource, error) {
	base := filepath.Join(sourceRoot, entry.Name)
	if info, err := os.Stat(base); err != nil || !info.IsDir() {
		return nil, nil
	}

	var sources []ResolvedSource
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || d.Name() == paths.OrderFileName {
			return nil
		}
		rel := strings.TrimPrefix(path, sourceRoot+string(filepath.Separator))
		sources = append(sources, ResolvedSource{Path: path, RelativeName: rel})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to walk %s", base)
	}
	return sources, nil
}

// resolveRef filters the full tree listing at the entry's ref.
func resolveRef(entry parser.Entry, refSrc RefSource) ([]ResolvedSource, error) {
	if refSrc == nil {
		return nil, errors.New(errors.ErrInternal, "git-ref resolution requires a repository")
	}

	ref := entry.Options.RefValue()
	treePaths, err := refSrc.ListTree(ref)
	if err != nil {
		return nil, err
	}

	var sources []ResolvedSource
	for _, p := range treePaths {
		if filepath.Base(p) == paths.OrderFileName {
			continue
		}
		if IsDirTarget(entry) {
			if !strings.HasPrefix(p, entry.Name+"/") {
				continue
			}
		} else if !MatchesEntryGlob(entry.Name, p) {
			continue
		}
		sources = append(sources, ResolvedSource{Path: p, RelativeName: p})
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].Path < sources[j].Path })
	return sources, nil
}

// excludedDotfile applies the dotfile rule to filesystem glob matches:
// hidden files only match when the pattern's own final component is
// dotfile-named.
func excludedDotfile(pattern, rel string) bool {
	base := filepath.Base(rel)
	patternBase := filepath.Base(pattern)
	return strings.HasPrefix(base, ".") && !strings.HasPrefix(patternBase, ".")
}

// reorder applies a .fresh-order file from the entry's base directory,
// when one exists.
func reorder(entry parser.Entry, sourceRoot string, refSrc RefSource, sources []ResolvedSource) ([]ResolvedSource, error) {
	if len(sources) < 2 {
		return sources, nil
	}

	// For directory targets the order file lives in the walked
	// directory; otherwise it sits next to the entry's base name.
	orderDir := filepath.Dir(entry.Name)
	if IsDirTarget(entry) {
		orderDir = entry.Name
	}

	var orderData []byte
	if entry.Options.RefValue() != "" {
		orderPath := paths.OrderFileName
		if orderDir != "." {
			orderPath = orderDir + "/" + paths.OrderFileName
		}
		data, err := refSrc.ShowObject(entry.Options.RefValue(), orderPath)
		if err != nil {
			// Absent at this ref; any other git failure would also
			// have failed the listing.
			return sources, nil
		}
		orderData = data
	} else {
		data, err := os.ReadFile(filepath.Join(sourceRoot, orderDir, paths.OrderFileName))
		if err != nil {
			return sources, nil
		}
		orderData = data
	}

	prefix := ""
	if orderDir != "." {
		prefix = orderDir + "/"
	}
	return applyOrder(sources, strings.Split(string(orderData), "\n"), func(s ResolvedSource) string {
		return strings.TrimPrefix(s.RelativeName, prefix)
	}), nil
}
