package cmd

import (
	"fmt"

	"github.com/malcr/malcr/color"
	"github.com/malcr/malcr/crunchyroll"
	"github.com/malcr/malcr/filesystem"
	"github.com/malcr/malcr/key"
	"github.com/malcr/malcr/style"
	"github.com/malcr/malcr/util"
	"github.com/malcr/malcr/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// clearTarget is something the clear command can remove.
type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	clear    func() error
}

func removePath(path func() string) func() error {
	return func() error {
		return filesystem.API().RemoveAll(path())
	}
}

var clearTargets = []clearTarget{
	{"cache directory", "cache", mo.Some("c"), removePath(where.Cache)},
	{"last run summary", "report", mo.Some("r"), removePath(where.LastRun)},
	{"logs", "logs", mo.Some("l"), removePath(where.Logs)},
	{"stored crunchyroll session", "session", mo.Some("s"), func() error {
		return crunchyroll.KeyringStore{User: viper.GetString(key.CrunchyrollEmail)}.Delete()
	}},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("clear %s", target.name)
		if target.argShort.IsPresent() {
			clearCmd.Flags().BoolP(target.argLong, target.argShort.MustGet(), false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}
}

// clearCmd removes cached artifacts.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear cached artifacts and the stored session",
	Run: func(cmd *cobra.Command, args []string) {
		var anyCleared bool

		for _, target := range clearTargets {
			if lo.Must(cmd.Flags().GetBool(target.argLong)) {
				anyCleared = true
				handleErr(target.clear())
				cmd.Printf("%s %s cleared\n", style.Fg(color.Green)("✓"), util.Capitalize(target.name))
			}
		}

		if !anyCleared {
			handleErr(cmd.Help())
		}
	},
}
