package fresh

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tonyvu2014/fresh/pkg/parser"
	"github.com/tonyvu2014/fresh/pkg/shell"
)

// entryView is the serializable form of a parsed entry
type entryView struct {
	File          string            `yaml:"file"`
	Line          int               `yaml:"line"`
	Repo          string            `yaml:"repo,omitempty"`
	Name          string            `yaml:"name"`
	Marker        *string           `yaml:"marker,omitempty"`
	LinkFile      *string           `yaml:"link_file,omitempty"`
	Bin           *string           `yaml:"bin,omitempty"`
	Ref           string            `yaml:"ref,omitempty"`
	Filter        string            `yaml:"filter,omitempty"`
	IgnoreMissing bool              `yaml:"ignore_missing,omitempty"`
	Env           map[string]string `yaml:"env,omitempty"`
}

func newShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: MsgShowShort,
		Long:  MsgShowLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := initPaths()
			if err != nil {
				return err
			}

			raw, err := shell.RunRcFile(p.RcFile())
			if err != nil {
				return fmt.Errorf(MsgErrShowEntries, err)
			}
			records, err := parser.ReadRecords(bytes.NewReader(raw))
			if err != nil {
				return fmt.Errorf(MsgErrShowEntries, err)
			}
			entries, err := parser.Parse(records)
			if err != nil {
				return fmt.Errorf(MsgErrShowEntries, err)
			}

			switch format {
			case "yaml":
				return printEntriesYAML(cmd, entries)
			case "text":
				printEntriesText(cmd, entries)
				return nil
			default:
				return fmt.Errorf("unknown format %q (want text or yaml)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", MsgFlagFormat)
	return cmd
}

func printEntriesText(cmd *cobra.Command, entries []parser.Entry) {
	for _, e := range entries {
		text := e.Text
		if text == "" {
			text = e.Name
		}
		cmd.Printf(MsgShowEntryFormat, e.SourceFile, e.SourceLine, text)
	}
}

func printEntriesYAML(cmd *cobra.Command, entries []parser.Entry) error {
	views := make([]entryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, entryView{
			File:          e.SourceFile,
			Line:          e.SourceLine,
			Repo:          e.Repo,
			Name:          e.Name,
			Marker:        e.Options.Marker,
			LinkFile:      e.Options.File,
			Bin:           e.Options.Bin,
			Ref:           e.Options.RefValue(),
			Filter:        e.Options.FilterValue(),
			IgnoreMissing: e.Options.IgnoreMissingValue(),
			Env:           e.Env,
		})
	}
	out, err := yaml.Marshal(views)
	if err != nil {
		return err
	}
	cmd.Print(string(out))
	return nil
}
