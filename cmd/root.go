// Package cmd implements the command-line interface for malcr.
package cmd

import (
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/malcr/malcr/color"
	"github.com/malcr/malcr/constant"
	"github.com/malcr/malcr/key"
	"github.com/malcr/malcr/log"
	"github.com/malcr/malcr/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().BoolP("dry-run", "n", false, "Match everything but do not mark anything on Crunchyroll")
	lo.Must0(viper.BindPFlag(key.SyncDryRun, rootCmd.PersistentFlags().Lookup("dry-run")))

	rootCmd.PersistentFlags().StringP("log-level", "l", "", "Diagnostic level: error, warn, info, debug")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("log-level", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"error", "warn", "info", "debug", "trace"}, cobra.ShellCompDirectiveNoFileComp
	}))
	lo.Must0(viper.BindPFlag(key.LogsLevel, rootCmd.PersistentFlags().Lookup("log-level")))
}

// rootCmd syncs by default, like the sync subcommand.
var rootCmd = &cobra.Command{
	Use:   constant.App,
	Short: "Mark on Crunchyroll what MyAnimeList says you watched",
	Long: style.New().Bold(true).Foreground(color.HiPurple).Render(constant.App) + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - Mark on Crunchyroll what MyAnimeList says you watched"),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("log-level") {
			return log.Setup()
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		handleErr(runSync(cmd))
	},
}

// Execute routes to the subcommands and exits non-zero on failure.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		handleErr(err)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", style.Fg(color.Red)("error:"), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
