package fresh

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tonyvu2014/fresh/pkg/install"
	"github.com/tonyvu2014/fresh/pkg/logging"
)

func newInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: MsgInstallShort,
		Long:  MsgInstallLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd)
		},
	}
}

func runInstall(cmd *cobra.Command) error {
	logger := logging.GetLogger("cmd.install")

	p, cfg, err := initPaths()
	if err != nil {
		return err
	}

	result, err := install.New(p, cfg).Run()
	if err != nil {
		return fmt.Errorf(MsgErrInstall, err)
	}

	logger.Info().
		Int("entries", result.Entries).
		Int("files", result.Files).
		Int("links", result.Links).
		Msg("Install finished")

	for _, adv := range result.Advisories {
		cmd.Printf(MsgAdvisoryItem, render(styleNote, adv))
	}
	cmd.Println(render(styleSuccess, MsgInstallDone))
	cmd.Printf(MsgInstallSummary, result.Entries, result.Files, result.Links)
	return nil
}
