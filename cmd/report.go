package cmd

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/malcr/malcr/report"
	"github.com/malcr/malcr/style"
	"github.com/malcr/malcr/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringP("filter", "f", "", "Fuzzy filter on the unresolved titles")
	reportCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	reportCmd.Flags().BoolP("titles", "t", false, "Print only the unresolved titles, one per line")
	reportCmd.MarkFlagsMutuallyExclusive("json", "titles")
	reportCmd.SetOut(os.Stdout)
}

// reportCmd shows what the last sync did.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Display the summary of the last sync",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			filter = lo.Must(cmd.Flags().GetString("filter"))
			asJson = lo.Must(cmd.Flags().GetBool("json"))
			titles = lo.Must(cmd.Flags().GetBool("titles"))
		)

		last, err := report.Last()
		handleErr(err)

		rep, ok := last.Get()
		if !ok {
			handleErr(errors.New("no sync has been recorded yet"))
		}

		unresolved := rep.Filter(filter)

		switch {
		case asJson:
			rep.Unresolved = unresolved
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(rep))
		case titles:
			for _, title := range unresolved {
				cmd.Println(title)
			}
		default:
			styled := util.IsTerminal(os.Stdout)
			cmd.Println(rep.Render(styled))
			if len(unresolved) > 0 {
				cmd.Println(report.RenderUnresolved(unresolved, styled))
			}
			cmd.Println(style.Faint(rep.Headline()))
		}
	},
}
