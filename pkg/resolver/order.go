package resolver

import (
	"sort"
	"strings"
)

// applyOrder sorts sources according to an order file's lines. Each
// line is a path relative to the order file's directory. Sources
// listed in the file sort by their line index; unlisted sources sort
// after all listed ones, keeping their original relative order.
// relKey maps a source to its order-file-relative path.
func applyOrder(sources []ResolvedSource, orderLines []string, relKey func(ResolvedSource) string) []ResolvedSource {
	index := make(map[string]int, len(orderLines))
	n := 0
	for _, line := range orderLines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, seen := index[line]; !seen {
			index[line] = n
			n++
		}
	}

	rank := func(s ResolvedSource) int {
		if i, ok := index[relKey(s)]; ok {
			return i
		}
		return len(index)
	}

	sorted := make([]ResolvedSource, len(sources))
	copy(sorted, sources)
	sort.SliceStable(sorted, func(i, j int) bool {
		return rank(sorted[i]) < rank(sorted[j])
	})
	return sorted
}
