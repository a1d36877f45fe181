package resolver

import (
	"path"
	"strings"
)

// MatchesEntryGlob reports whether a path matches an entry's glob
// pattern. Matching is anchored: the path must have exactly as many
// components as the pattern, so globs never recurse into
// subdirectories. A path whose final component is dotfile-named only
// matches when the pattern's final component itself starts with a dot.
func MatchesEntryGlob(pattern, p string) bool {
	patternParts := strings.Split(pattern, "/")
	pathParts := strings.Split(p, "/")
	if len(patternParts) != len(pathParts) {
		return false
	}

	for i := range patternParts {
		ok, err := path.Match(patternParts[i], pathParts[i])
		if err != nil || !ok {
			return false
		}
	}

	base := pathParts[len(pathParts)-1]
	patternBase := patternParts[len(patternParts)-1]
	if strings.HasPrefix(base, ".") && !strings.HasPrefix(patternBase, ".") {
		return false
	}

	return true
}
