package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/when/internal/config"
	"github.com/papapumpkin/when/internal/tui"
	"github.com/papapumpkin/when/internal/ui"
)

var interactiveCmd = &cobra.Command{
	Use:     "interactive [expression]",
	Aliases: []string{"i"},
	Short:   "Convert interactively as you type",
	RunE:    runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	mode, err := ui.ParseColorMode(cfg.Output.Colors)
	if err != nil {
		return err
	}
	env, err := buildEnvironment(cmd.Context(), cfg, newLogger(cmd, cfg))
	if err != nil {
		return err
	}
	local, err := env.zones.Local(cfg.LocalZone)
	if err != nil {
		return fmt.Errorf("local zone %q: %w", cfg.LocalZone, err)
	}
	return tui.Run(cmd.Context(), env.conv, local,
		tui.WithColorMode(mode),
		tui.WithInitial(strings.Join(args, " ")),
	)
}
