// Package shell invokes the external command interpreter: it turns the
// rc script into a declaration record stream and runs content filters
// in the rc script's shell context.
package shell

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tonyvu2014/fresh/pkg/errors"
	"github.com/tonyvu2014/fresh/pkg/logging"
)

// recordBootstrap defines fresh, fresh-options, and env as functions
// that append one record per call to the record file, then sources the
// rc script. Records go to a dedicated descriptor so user output in
// the rc script cannot corrupt the stream.
const recordBootstrap = `
exec 9>"$FRESH_RECORD_FILE"

_fresh_quote() {
  local s=$1
  s=${s//\\/\\\\}
  s=${s//\"/\\\"}
  printf '"%s"' "$s"
}

_fresh_record() {
  local out="$(_fresh_quote "${BASH_SOURCE[2]}") ${BASH_LINENO[1]} $1"
  shift
  local a
  for a in "$@"; do
    out+=" $(_fresh_quote "$a")"
  done
  printf '%s\n' "$out" >&9
}

fresh() { _fresh_record fresh "$@"; }
fresh-options() { _fresh_record fresh-options "$@"; }
env() { _fresh_record env "$@"; }

source "$FRESH_RCFILE"
`

// filterBootstrap re-sources the rc script with the declaration
// functions neutered, so filters see its variables and functions
// without re-registering entries, then runs the filter over stdin.
const filterBootstrap = `
fresh() { :; }
fresh-options() { :; }
env() { :; }

if [ -r "$FRESH_RCFILE" ]; then
  source "$FRESH_RCFILE" >/dev/null
fi

eval "$FRESH_FILTER"
`

// RunRcFile sources the rc script and returns the raw declaration
// record stream it emits.
func RunRcFile(rcPath string) ([]byte, error) {
	logger := logging.GetLogger("shell")

	if _, err := os.Stat(rcPath); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read rc file %s", rcPath)
	}

	recordFile, err := os.CreateTemp("", "fresh-records-")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to create record file")
	}
	recordPath := recordFile.Name()
	_ = recordFile.Close()
	defer func() { _ = os.Remove(recordPath) }()

	cmd := exec.Command("bash", "-c", recordBootstrap)
	cmd.Dir = filepath.Dir(rcPath)
	cmd.Env = append(os.Environ(),
		"FRESH_RCFILE="+rcPath,
		"FRESH_RECORD_FILE="+recordPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrSubprocess, "sourcing %s failed", rcPath).
			WithDetail("stderr", strings.TrimSpace(stderr.String()))
	}

	records, err := os.ReadFile(recordPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to read record stream")
	}

	logger.Debug().Str("rcfile", rcPath).Int("bytes", len(records)).Msg("collected declaration records")
	return records, nil
}

// RunFilter pipes input through the filter command with the rc
// script's shell context available.
func RunFilter(filter, rcPath string, input []byte) ([]byte, error) {
	cmd := exec.Command("bash", "-c", filterBootstrap)
	cmd.Env = append(os.Environ(),
		"FRESH_RCFILE="+rcPath,
		"FRESH_FILTER="+filter,
	)
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrSubprocess, "filter %q failed", filter).
			WithDetail("stderr", strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
