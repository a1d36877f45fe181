// Package parser turns raw declaration records into structured
// entries. Two pieces of state thread through the record loop: the
// current default options (replaced wholesale by each fresh-options
// record) and the pending env mapping (accumulated by env records,
// consumed and cleared by the next fresh record).
package parser

import (
	"bufio"
	"os"
	"strings"

	"github.com/tonyvu2014/fresh/pkg/errors"
	"github.com/tonyvu2014/fresh/pkg/logging"
)

// Record commands understood by the parser.
const (
	CmdFresh   = "fresh"
	CmdOptions = "fresh-options"
	CmdEnv     = "env"
)

// DefaultMarker is the marker used when --marker is given without a value.
const DefaultMarker = "#"

// Parse converts an ordered record sequence into entries.
func Parse(records []Record) ([]Entry, error) {
	logger := logging.GetLogger("parser")

	var entries []Entry
	var currentDefaults Options
	pendingEnv := map[string]string{}

	for _, rec := range records {
		switch rec.Command {
		case CmdOptions:
			positional, opts, err := parseOptions(rec)
			if err != nil {
				return nil, err
			}
			if len(positional) > 0 {
				return nil, parseErrorf(rec, "fresh-options takes no arguments, got %q", positional[0])
			}
			currentDefaults = opts

		case CmdEnv:
			if len(rec.Tokens) != 2 {
				return nil, parseErrorf(rec, "env takes exactly 2 arguments, got %d", len(rec.Tokens))
			}
			pendingEnv[rec.Tokens[0]] = rec.Tokens[1]

		case CmdFresh:
			positional, opts, err := parseOptions(rec)
			if err != nil {
				return nil, err
			}

			entry := Entry{
				SourceFile: rec.File,
				SourceLine: rec.Line,
				Text:       readSourceLine(rec.File, rec.Line),
				Options:    opts.MergeOver(currentDefaults),
			}
			switch len(positional) {
			case 1:
				entry.Name = positional[0]
			case 2:
				entry.Repo = positional[0]
				entry.Name = positional[1]
			case 0:
				return nil, parseErrorf(rec, "fresh requires a source name")
			default:
				return nil, parseErrorf(rec, "unexpected argument %q", positional[2])
			}
			if entry.Name == "" {
				return nil, parseErrorf(rec, "fresh source name must not be empty")
			}
			if len(positional) == 2 && entry.Repo == "" {
				return nil, parseErrorf(rec, "fresh repository must not be empty")
			}

			if len(pendingEnv) > 0 {
				entry.Env = pendingEnv
				pendingEnv = map[string]string{}
			}
			entries = append(entries, entry)

		default:
			return nil, parseErrorf(rec, "unknown command %q", rec.Command)
		}
	}

	logger.Debug().Int("entries", len(entries)).Msg("parsed declaration records")
	return entries, nil
}

// parseOptions splits a record's tokens into positional arguments and
// recognized options. Unknown options fail.
func parseOptions(rec Record) ([]string, Options, error) {
	var positional []string
	var opts Options

	for _, tok := range rec.Tokens {
		if !strings.HasPrefix(tok, "--") {
			positional = append(positional, tok)
			continue
		}

		name := tok[2:]
		value := ""
		hasValue := false
		if idx := strings.Index(name, "="); idx >= 0 {
			value = name[idx+1:]
			name = name[:idx]
			hasValue = true
		}

		switch name {
		case "marker":
			if !hasValue {
				value = DefaultMarker
			}
			opts.Marker = &value
		case "file":
			opts.File = &value
		case "bin":
			opts.Bin = &value
		case "ref":
			if !hasValue || value == "" {
				return nil, Options{}, parseErrorf(rec, "--ref requires a value")
			}
			opts.Ref = &value
		case "filter":
			if !hasValue || value == "" {
				return nil, Options{}, parseErrorf(rec, "--filter requires a value")
			}
			opts.Filter = &value
		case "ignore-missing":
			yes := true
			opts.IgnoreMissing = &yes
		default:
			return nil, Options{}, parseErrorf(rec, "unknown option --%s", name)
		}
	}

	return positional, opts, nil
}

func parseErrorf(rec Record, format string, args ...interface{}) *errors.FreshError {
	return errors.Newf(errors.ErrParse, format, args...).
		WithDeclaration(rec.File, rec.Line, readSourceLine(rec.File, rec.Line))
}

// readSourceLine fetches the literal declaration line for diagnostics.
// Best effort: returns "" when the origin file cannot be read.
func readSourceLine(file string, line int) string {
	f, err := os.Open(file)
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	n := 0
	for scanner.Scan() {
		n++
		if n == line {
			return strings.TrimSpace(scanner.Text())
		}
	}
	return ""
}
