package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/openkcm/common-sdk/pkg/utils"
	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	depositcmd "github.com/superquinquin/consigne-desk/cmd/consigne-desk/deposit"
	"github.com/superquinquin/consigne-desk/cmd/consigne-desk/login"
	sessioncmd "github.com/superquinquin/consigne-desk/cmd/consigne-desk/session"
	"github.com/superquinquin/consigne-desk/cmd/consigne-desk/users"
	"github.com/superquinquin/consigne-desk/internal/cmdutils"
	"github.com/superquinquin/consigne-desk/internal/config"
)

// BuildInfo will be set by the build system
var BuildInfo = "{}"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Consigne Desk Version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		value, err := utils.ExtractFromComplexValue(BuildInfo)
		if err != nil {
			return err
		}

		slog.InfoContext(cmd.Context(), value)

		return nil
	},
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "consigne-desk",
		Short:         "Consigne Desk",
		Long:          "Counter client of the consigne service: choose who gives back returnables, scan them and close the deposit.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP(cmdutils.OutputFlag, "o", config.OutputText, "output format, text or yaml")

	cmd.AddCommand(
		versionCmd,
		login.Cmd(BuildInfo),
		users.Cmd(BuildInfo),
		sessioncmd.Cmd(BuildInfo),
		depositcmd.Cmd(BuildInfo),
	)

	return cmd
}

func execute() error {
	ctx, cancelOnSignal := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancelOnSignal()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		slogctx.Debug(ctx, "command failed", "error", err)
		_, _ = fmt.Fprintln(os.Stderr, err)

		return err
	}

	return nil
}

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}
