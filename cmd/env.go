package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/malcr/malcr/color"
	"github.com/malcr/malcr/config"
	"github.com/malcr/malcr/matcher"
	"github.com/malcr/malcr/style"
	"github.com/malcr/malcr/util"
	"github.com/malcr/malcr/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolP("set-only", "s", false, "Display only environment variables that are currently defined")
	envCmd.Flags().BoolP("unset-only", "u", false, "Display only environment variables that are currently undefined")
	envCmd.Flags().StringSliceP("var", "k", []string{}, "Display only the given variables")
	envCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	_ = envCmd.RegisterFlagCompletionFunc("var", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return envNames(), cobra.ShellCompDirectiveNoFileComp
	})

	envCmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")
	envCmd.SetOut(os.Stdout)
}

type envVar struct {
	Name        string `json:"name"`
	Value       string `json:"value,omitempty"`
	Set         bool   `json:"set"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

func envNames() []string {
	names := lo.Map(config.Fields, func(f config.Field, _ int) string {
		return f.Env
	})
	return append(names, where.EnvConfigPath)
}

func errUnknownEnv(name string) error {
	closest := lo.MinBy(envNames(), func(a, b string) bool {
		return matcher.Distance(name, a) < matcher.Distance(name, b)
	})

	return errors.New(fmt.Sprintf(
		"unknown variable %s, did you mean %s?",
		style.Fg(color.Red)(name),
		style.Fg(color.Yellow)(closest),
	))
}

// collectEnv reads the variables from the process environment, secrets masked.
func collectEnv() []envVar {
	vars := lo.Map(config.Fields, func(f config.Field, _ int) envVar {
		value, set := os.LookupEnv(f.Env)
		if set && f.Secret {
			value = util.Mask(value)
		}
		return envVar{Name: f.Env, Value: value, Set: set, Required: f.Required, Description: f.Description}
	})

	value, set := os.LookupEnv(where.EnvConfigPath)
	vars = append(vars, envVar{Name: where.EnvConfigPath, Value: value, Set: set, Description: "Overrides the configuration directory"})

	slices.SortStableFunc(vars, func(a, b envVar) int {
		if a.Required != b.Required {
			if a.Required {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})

	return vars
}

// envCmd displays the supported environment variables and their values.
var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Display the collection of supported environment variables",
	Long: `Display the collection of supported environment variables and their current process values.
Values from ./` + config.DotEnv + ` are included. Secrets are masked.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			setOnly   = lo.Must(cmd.Flags().GetBool("set-only"))
			unsetOnly = lo.Must(cmd.Flags().GetBool("unset-only"))
			only      = lo.Must(cmd.Flags().GetStringSlice("var"))
			asJson    = lo.Must(cmd.Flags().GetBool("json"))
		)

		for _, name := range only {
			if !lo.Contains(envNames(), name) {
				handleErr(errUnknownEnv(name))
			}
		}

		vars := lo.Filter(collectEnv(), func(v envVar, _ int) bool {
			switch {
			case len(only) > 0 && !lo.Contains(only, v.Name):
				return false
			case setOnly && !v.Set, unsetOnly && v.Set:
				return false
			}
			return true
		})

		if asJson {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(vars))
			return
		}

		for _, v := range vars {
			name := style.New().Bold(true).Foreground(color.Purple).Render(v.Name)
			if v.Required {
				name += style.Fg(color.Red)("*")
			}
			cmd.Print(name, "=")

			if v.Set {
				cmd.Println(style.Fg(color.Green)(v.Value))
			} else {
				cmd.Println(style.Fg(color.Red)("unset"))
			}
		}
	},
}
