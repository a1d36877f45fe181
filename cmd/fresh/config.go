package fresh

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tonyvu2014/fresh/pkg/config"
	"github.com/tonyvu2014/fresh/pkg/paths"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: MsgConfigShort,
	}
	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: MsgConfigInitShort,
		Long:  MsgConfigInitLong,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := paths.ConfigFilePath()
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteDefault(path); err != nil {
				return fmt.Errorf(MsgErrWriteConfig, err)
			}
			cmd.Printf(MsgConfigWritten, path)
			return nil
		},
	}
}
