package parser

// Options holds the per-entry placement options. Pointer fields
// distinguish "not given" (nil) from "given without a value" or
// "given as empty string", which differ for marker, file, and bin.
type Options struct {
	// Marker is the comment prefix for concatenation separator lines
	Marker *string

	// File targets a specific link path instead of the shell file
	File *string

	// Bin targets an executable under bin/
	Bin *string

	// Ref selects a git ref to read sources from instead of the worktree
	Ref *string

	// Filter pipes source content through a shell command
	Filter *string

	// IgnoreMissing suppresses the zero-matches failure
	IgnoreMissing *bool
}

// MergeOver returns o with unset fields filled from defaults.
func (o Options) MergeOver(defaults Options) Options {
	merged := o
	if merged.Marker == nil {
		merged.Marker = defaults.Marker
	}
	if merged.File == nil {
		merged.File = defaults.File
	}
	if merged.Bin == nil {
		merged.Bin = defaults.Bin
	}
	if merged.Ref == nil {
		merged.Ref = defaults.Ref
	}
	if merged.Filter == nil {
		merged.Filter = defaults.Filter
	}
	if merged.IgnoreMissing == nil {
		merged.IgnoreMissing = defaults.IgnoreMissing
	}
	return merged
}

// RefValue returns the git ref, or "" when unset.
func (o Options) RefValue() string {
	if o.Ref == nil {
		return ""
	}
	return *o.Ref
}

// FilterValue returns the filter command, or "" when unset.
func (o Options) FilterValue() string {
	if o.Filter == nil {
		return ""
	}
	return *o.Filter
}

// IgnoreMissingValue reports whether ignore-missing was requested.
func (o Options) IgnoreMissingValue() bool {
	return o.IgnoreMissing != nil && *o.IgnoreMissing
}

// Entry is one declared source binding from the rc script.
type Entry struct {
	// SourceFile and SourceLine locate the declaration for diagnostics
	SourceFile string
	SourceLine int

	// Text is the literal declaration line, when recoverable
	Text string

	// Repo names a remote repository; empty means the local source dir
	Repo string

	// Name is a path or glob pattern relative to the source root
	Name string

	// Options is the resolved option set (entry options over defaults)
	Options Options

	// Env holds environment overrides captured before this declaration
	Env map[string]string
}
