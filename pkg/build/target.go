// Package build derives build-tree locations for resolved sources and
// assembles their content into the staging tree.
package build

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tonyvu2014/fresh/pkg/errors"
	"github.com/tonyvu2014/fresh/pkg/parser"
	"github.com/tonyvu2014/fresh/pkg/paths"
	"github.com/tonyvu2014/fresh/pkg/resolver"
)

// Target is a destination inside the staging tree.
type Target struct {
	// BuildPath is the file location relative to the tree root
	BuildPath string

	// LinkPath is the declared link location ("" when nothing links
	// to this file directly)
	LinkPath string

	// Marker is the separator comment prefix; nil writes no marker line
	Marker *string

	// Bin marks the file executable
	Bin bool
}

var externalNameRe = regexp.MustCompile(`[/ ()]+`)

// TargetFor derives the build target for one resolved source.
func TargetFor(p *paths.Paths, entry parser.Entry, src resolver.ResolvedSource) (Target, error) {
	opts := entry.Options

	switch {
	case opts.Bin != nil:
		link := *opts.Bin
		if link == "" {
			link = "~/bin/" + filepath.Base(src.RelativeName)
		}
		if !filepath.IsAbs(p.ExpandHome(link)) {
			return Target{}, errors.Newf(errors.ErrConfig, "--bin link path %q must be absolute", link).
				WithDeclaration(entry.SourceFile, entry.SourceLine, entry.Text)
		}
		return Target{
			BuildPath: "bin/" + filepath.Base(link),
			LinkPath:  link,
			Marker:    opts.Marker,
			Bin:       true,
		}, nil

	case opts.File != nil:
		link := *opts.File
		if link == "" {
			link = "~/." + strings.TrimPrefix(filepath.Base(entry.Name), ".")
		}

		buildPath := buildName(p, link)
		if resolver.IsDirTarget(entry) {
			// Files inside a directory target keep their sub-path;
			// the directory itself gets one synthetic link instead.
			sub := strings.TrimPrefix(src.RelativeName, entry.Name+"/")
			return Target{BuildPath: path.Join(buildPath, sub), Marker: opts.Marker}, nil
		}
		return Target{BuildPath: buildPath, LinkPath: link, Marker: opts.Marker}, nil

	default:
		marker := opts.Marker
		if marker == nil {
			m := parser.DefaultMarker
			marker = &m
		}
		return Target{BuildPath: paths.ShellFileName, Marker: marker}, nil
	}
}

// DirTargetLink returns the synthetic link a directory-target entry
// registers after its files are processed. Only external (absolute or
// home-rooted) directory targets link; the second return is false
// otherwise.
func DirTargetLink(p *paths.Paths, entry parser.Entry) (Target, bool) {
	if !resolver.IsDirTarget(entry) {
		return Target{}, false
	}
	link := *entry.Options.File
	if !paths.IsHomeRooted(link) {
		return Target{}, false
	}
	return Target{
		BuildPath: buildName(p, link),
		LinkPath:  strings.TrimSuffix(link, "/"),
	}, true
}

// buildName maps a link path to its build-tree-relative name. Paths
// under the home directory keep their structure with the leading dot
// removed. Absolute paths outside home are external targets whose runs
// of separators, spaces, and parentheses collapse to single hyphens.
// Relative paths name a location inside the build tree directly (no
// link is made for them) and keep their structure.
func buildName(p *paths.Paths, link string) string {
	trimmed := strings.TrimSuffix(link, "/")
	if rest, ok := p.StripHomePrefix(trimmed); ok {
		return strings.TrimPrefix(rest, ".")
	}
	if !filepath.IsAbs(trimmed) {
		return strings.TrimPrefix(trimmed, ".")
	}
	name := externalNameRe.ReplaceAllString(trimmed, "-")
	return strings.Trim(name, "-")
}
