// pkg/build/assembler_test.go
// TEST TYPE: Unit Tests
// DEPENDENCIES: Filesystem (t.TempDir)
// PURPOSE: Test content assembly: concatenation, markers, filters, bin handling

package build_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonyvu2014/fresh/pkg/build"
	"github.com/tonyvu2014/fresh/pkg/parser"
	"github.com/tonyvu2014/fresh/pkg/resolver"
)

func writeSource(t *testing.T, dir, name, content string) resolver.ResolvedSource {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return resolver.ResolvedSource{Path: path, RelativeName: name}
}

func readBuildFile(t *testing.T, stagingDir, name string) string {
	t.Helper()
	body, err := os.ReadFile(filepath.Join(stagingDir, name))
	require.NoError(t, err)
	return string(body)
}

func TestAppend_ConcatenationWithMarkers(t *testing.T) {
	srcDir, staging := t.TempDir(), t.TempDir()
	a := build.NewAssembler(staging, "")

	marker := "#"
	entryA := parser.Entry{SourceFile: "rc", SourceLine: 1, Name: "a.sh"}
	entryB := parser.Entry{SourceFile: "rc", SourceLine: 2, Name: "b.sh"}
	target := build.Target{BuildPath: "shell.sh", Marker: &marker}

	srcA := writeSource(t, srcDir, "a.sh", "alias a=1\n")
	srcB := writeSource(t, srcDir, "b.sh", "alias b=2\n")

	contributed, err := a.Append(entryA, srcA, target, nil)
	require.NoError(t, err)
	assert.True(t, contributed)
	_, err = a.Append(entryB, srcB, target, nil)
	require.NoError(t, err)

	expected := "# fresh: a.sh\n\nalias a=1\n\n# fresh: b.sh\n\nalias b=2\n"
	assert.Equal(t, expected, readBuildFile(t, staging, "shell.sh"))
}

func TestAppend_MarkerVariants(t *testing.T) {
	srcDir := t.TempDir()

	tests := []struct {
		name     string
		entry    parser.Entry
		marker   *string
		expected string
	}{
		{
			name:     "no_marker_writes_bare_content",
			entry:    parser.Entry{Name: "f"},
			marker:   nil,
			expected: "body\n",
		},
		{
			name: "empty_marker_keeps_line_without_prefix",
			entry: parser.Entry{Name: "f"},
			marker: func() *string { s := ""; return &s }(),
			expected: "fresh: f\n\nbody\n",
		},
		{
			name: "marker_with_repo_ref_and_filter",
			entry: parser.Entry{
				Name: "f",
				Repo: "owner/repo",
				Options: parser.Options{
					Ref:    func() *string { s := "v1"; return &s }(),
					Filter: func() *string { s := "sed s/a/b/"; return &s }(),
				},
			},
			marker:   func() *string { s := ";"; return &s }(),
			expected: "; fresh: owner/repo f @ v1 # sed s/a/b/\n\nBODY\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			staging := t.TempDir()
			a := build.NewAssembler(staging, "")
			a.SetFilterFunc(func(filter, rcPath string, input []byte) ([]byte, error) {
				return []byte(strings.ToUpper(string(input))), nil
			})

			var src resolver.ResolvedSource
			var refSrc resolver.RefSource
			if tt.entry.Options.RefValue() != "" {
				refSrc = &fakeRefSource{files: map[string]string{"f": "body\n"}}
				src = resolver.ResolvedSource{Path: "f", RelativeName: "f"}
			} else {
				src = writeSource(t, srcDir, "f", "body\n")
			}

			_, err := a.Append(tt.entry, src, build.Target{BuildPath: "out", Marker: tt.marker}, refSrc)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, readBuildFile(t, staging, "out"))
		})
	}
}

type fakeRefSource struct{ files map[string]string }

func (f *fakeRefSource) ListTree(ref string) ([]string, error) {
	var out []string
	for name := range f.files {
		out = append(out, name)
	}
	return out, nil
}

func (f *fakeRefSource) ShowObject(ref, path string) ([]byte, error) {
	content, ok := f.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(content), nil
}

func TestAppend_FilterTransformsContent(t *testing.T) {
	srcDir, staging := t.TempDir(), t.TempDir()
	a := build.NewAssembler(staging, "")

	var gotFilter string
	a.SetFilterFunc(func(filter, rcPath string, input []byte) ([]byte, error) {
		gotFilter = filter
		return []byte(strings.ReplaceAll(string(input), "x", "y")), nil
	})

	filter := "sed s/x/y/g"
	entry := parser.Entry{Name: "f", Options: parser.Options{Filter: &filter}}
	src := writeSource(t, srcDir, "f", "xxx\n")

	_, err := a.Append(entry, src, build.Target{BuildPath: "out"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "sed s/x/y/g", gotFilter)
	assert.Equal(t, "yyy\n", readBuildFile(t, staging, "out"))
}

func TestAppend_UnreadableSourceIsUnmatched(t *testing.T) {
	staging := t.TempDir()
	a := build.NewAssembler(staging, "")

	entry := parser.Entry{Name: "gone"}
	src := resolver.ResolvedSource{Path: filepath.Join(staging, "no-such-file"), RelativeName: "gone"}

	contributed, err := a.Append(entry, src, build.Target{BuildPath: "out"}, nil)
	require.NoError(t, err)
	assert.False(t, contributed)
	assert.NoFileExists(t, filepath.Join(staging, "out"))
}

func TestAppend_BinExecutableAndAdvisory(t *testing.T) {
	srcDir, staging := t.TempDir(), t.TempDir()
	a := build.NewAssembler(staging, "")

	target := build.Target{BuildPath: "bin/tool", Bin: true}
	entryA := parser.Entry{SourceFile: "rc", SourceLine: 1, Name: "bin/a"}
	entryB := parser.Entry{SourceFile: "rc", SourceLine: 2, Name: "bin/b"}

	_, err := a.Append(entryA, writeSource(t, srcDir, "a", "#!/bin/sh\n"), target, nil)
	require.NoError(t, err)
	assert.Empty(t, a.Advisories())

	info, err := os.Stat(filepath.Join(staging, "bin/tool"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0111)

	// Second distinct entry into the same bin file triggers one advisory
	_, err = a.Append(entryB, writeSource(t, srcDir, "b", "echo b\n"), target, nil)
	require.NoError(t, err)
	require.Len(t, a.Advisories(), 1)
	assert.Contains(t, a.Advisories()[0], "bin/tool")

	// And only one, even with further contributions
	_, err = a.Append(entryA, writeSource(t, srcDir, "c", "echo c\n"), target, nil)
	require.NoError(t, err)
	assert.Len(t, a.Advisories(), 1)
}

func TestAppend_BinAdvisorySuppressedByEnv(t *testing.T) {
	srcDir, staging := t.TempDir(), t.TempDir()
	a := build.NewAssembler(staging, "")

	target := build.Target{BuildPath: "bin/tool", Bin: true}
	entryA := parser.Entry{SourceFile: "rc", SourceLine: 1, Name: "bin/a"}
	entryB := parser.Entry{
		SourceFile: "rc", SourceLine: 2, Name: "bin/b",
		Env: map[string]string{build.EnvNoBinConflictCheck: "true"},
	}

	_, err := a.Append(entryA, writeSource(t, srcDir, "a", "a\n"), target, nil)
	require.NoError(t, err)
	_, err = a.Append(entryB, writeSource(t, srcDir, "b", "b\n"), target, nil)
	require.NoError(t, err)

	assert.Empty(t, a.Advisories())
}

func TestAppend_MissingTrailingNewlineAdded(t *testing.T) {
	srcDir, staging := t.TempDir(), t.TempDir()
	a := build.NewAssembler(staging, "")

	entry := parser.Entry{SourceFile: "rc", SourceLine: 1, Name: "a"}
	_, err := a.Append(entry, writeSource(t, srcDir, "a", "no newline"), build.Target{BuildPath: "out"}, nil)
	require.NoError(t, err)

	entry2 := parser.Entry{SourceFile: "rc", SourceLine: 2, Name: "b"}
	_, err = a.Append(entry2, writeSource(t, srcDir, "b", "second\n"), build.Target{BuildPath: "out"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "no newline\n\nsecond\n", readBuildFile(t, staging, "out"))
}
