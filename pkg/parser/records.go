package parser

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tonyvu2014/fresh/pkg/errors"
)

// Record is one raw declaration record as emitted by the rc-script
// collaborator: origin file and line, the command, and its tokens.
type Record struct {
	File    string
	Line    int
	Command string
	Tokens  []string
}

// ReadRecords parses a declaration record stream. Each non-blank line
// is `<origin-file> <origin-line> <command> <token>...` with
// shell-style quoting.
func ReadRecords(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens, err := SplitTokens(line)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrParse, "malformed record at stream line %d", lineNo)
		}
		if len(tokens) < 3 {
			return nil, errors.Newf(errors.ErrParse, "record at stream line %d has %d fields, want at least 3", lineNo, len(tokens))
		}

		originLine, err := strconv.Atoi(tokens[1])
		if err != nil {
			return nil, errors.Newf(errors.ErrParse, "record at stream line %d has non-numeric origin line %q", lineNo, tokens[1])
		}

		records = append(records, Record{
			File:    tokens[0],
			Line:    originLine,
			Command: tokens[2],
			Tokens:  tokens[3:],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrParse, "failed to read record stream")
	}

	return records, nil
}

// SplitTokens splits a line into tokens following shell-style quoting:
// single quotes are literal, double quotes allow backslash escapes of
// `"` and `\`, and a backslash outside quotes escapes the next rune.
func SplitTokens(line string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	inToken := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == ' ' || c == '\t':
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}
		case c == '\'':
			inToken = true
			end := -1
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == '\'' {
					end = j
					break
				}
			}
			if end == -1 {
				return nil, fmt.Errorf("unterminated single quote")
			}
			current.WriteString(string(runes[i+1 : end]))
			i = end
		case c == '"':
			inToken = true
			closed := false
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == '\\' && j+1 < len(runes) && (runes[j+1] == '"' || runes[j+1] == '\\') {
					current.WriteRune(runes[j+1])
					j++
					i = j
					continue
				}
				if runes[j] == '"' {
					i = j
					closed = true
					break
				}
				current.WriteRune(runes[j])
				i = j
			}
			if !closed {
				return nil, fmt.Errorf("unterminated double quote")
			}
		case c == '\\':
			if i+1 >= len(runes) {
				return nil, fmt.Errorf("trailing backslash")
			}
			inToken = true
			current.WriteRune(runes[i+1])
			i++
		default:
			inToken = true
			current.WriteRune(c)
		}
	}
	if inToken {
		tokens = append(tokens, current.String())
	}

	return tokens, nil
}
