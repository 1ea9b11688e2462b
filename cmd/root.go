package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/when/internal/config"
	"github.com/papapumpkin/when/internal/ui"
)

// errReported marks an error that was already printed to the user.
var errReported = errors.New("error already reported")

var rootCmd = &cobra.Command{
	Use:   "when [expression]",
	Short: "Convert times between timezones",
	Long: `When converts a time expression with optional locations into the time in each zone.

  when now
  when 5pm in yyz -> sfo
  when "noon tomorrow in new york -> vienna -> tokyo"
  when unix:1639067620 in Tokyo
  when in 2 hours 30 minutes in london`,
	Args:          cobra.ArbitraryArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runConvert,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .when.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringP("zone", "z", "", "local zone id (default: the machine zone)")
	rootCmd.PersistentFlags().String("colors", "", "color output: auto, never or always")
	rootCmd.PersistentFlags().String("gazetteer", "", "gazetteer source: a .db file or a TSV directory")
	_ = viper.BindPFlag("local_zone", rootCmd.PersistentFlags().Lookup("zone"))
	_ = viper.BindPFlag("output.colors", rootCmd.PersistentFlags().Lookup("colors"))
	_ = viper.BindPFlag("gazetteer.path", rootCmd.PersistentFlags().Lookup("gazetteer"))

	rootCmd.Flags().BoolP("short", "s", false, "one line per location")
	rootCmd.Flags().Bool("json", false, "print JSON")
	rootCmd.Flags().BoolP("local", "l", false, "also show the local zone")
	rootCmd.Flags().Bool("list-timezones", false, "list all known timezone ids")
	rootCmd.MarkFlagsMutuallyExclusive("short", "json")
	// Flags end at the first word of the expression so "->" stays an argument.
	rootCmd.Flags().SetInterspersed(false)
	_ = viper.BindPFlag("output.local_echo", rootCmd.Flags().Lookup("local"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".when")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("WHEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// runConvert converts the expression given as arguments. With no arguments
// it shows the current time.
func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)
	p, err := newPrinter(cmd, cfg)
	if err != nil {
		return err
	}

	env, err := buildEnvironment(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	if list, _ := cmd.Flags().GetBool("list-timezones"); list {
		return p.Zones(env.zones.Names())
	}

	local, err := env.zones.Local(cfg.LocalZone)
	if err != nil {
		return fmt.Errorf("local zone %q: %w", cfg.LocalZone, err)
	}

	input := strings.Join(args, " ")
	if strings.TrimSpace(input) == "" {
		input = "now"
	}

	res, err := env.conv.Convert(input, local)
	if err != nil {
		p.Error(err)
		return errReported
	}
	return p.Print(res, outputFormat(cmd, cfg))
}

func outputFormat(cmd *cobra.Command, cfg config.Config) ui.Format {
	if j, _ := cmd.Flags().GetBool("json"); j {
		return ui.FormatJSON
	}
	if s, _ := cmd.Flags().GetBool("short"); s {
		return ui.FormatShort
	}
	f, err := ui.ParseFormat(cfg.Output.Format)
	if err != nil {
		return ui.FormatLong
	}
	return f
}

func newPrinter(cmd *cobra.Command, cfg config.Config) (*ui.Printer, error) {
	mode, err := ui.ParseColorMode(cfg.Output.Colors)
	if err != nil {
		return nil, err
	}
	return ui.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode), nil
}
