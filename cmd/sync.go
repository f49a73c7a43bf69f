package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/malcr/malcr/config"
	"github.com/malcr/malcr/crunchyroll"
	"github.com/malcr/malcr/log"
	"github.com/malcr/malcr/mal"
	"github.com/malcr/malcr/network"
	"github.com/malcr/malcr/reconcile"
	"github.com/malcr/malcr/report"
	"github.com/malcr/malcr/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.SetOut(os.Stdout)
	rootCmd.SetOut(os.Stdout)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Read the MyAnimeList list and mark the watched episodes on Crunchyroll",
	Long: `Read the MyAnimeList list and mark the watched episodes on Crunchyroll.

Titles that could not be found on Crunchyroll are printed on stdout, one per line.
Diagnostics and the final summary go to stderr.`,
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(runSync(cmd))
	},
}

func runSync(cmd *cobra.Command) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	streamer, err := connect(ctx, settings)
	if err != nil {
		return err
	}

	tracker := mal.New(network.NewClient(false), settings.MalClientID, settings.MalUsername)
	tracker.PageDelay = settings.PageDelay

	driver := reconcile.New(streamer, cmd.OutOrStdout(), settings.DryRun)
	rep, err := driver.Sync(ctx, tracker)

	_, _ = fmt.Fprintln(os.Stderr, rep.Render(util.IsTerminal(os.Stderr)))
	if saveErr := report.Save(rep); saveErr != nil {
		log.Warnf("Could not save the run summary: %v", saveErr)
	}

	if errors.Is(err, crunchyroll.ErrUnauthorized) {
		return fmt.Errorf("crunchyroll refused the session, run stopped: %w", err)
	}
	return err
}

// connect logs in and returns a streamer bound to the account.
func connect(ctx context.Context, settings *config.Settings) (*crunchyroll.Client, error) {
	httpClient := network.NewClient(settings.TLSFingerprint)

	opts := []crunchyroll.SessionOption{
		crunchyroll.WithClientCredentials(settings.ClientID, settings.ClientSecret),
	}
	if settings.RememberSession {
		opts = append(opts, crunchyroll.WithStore(crunchyroll.KeyringStore{User: settings.Email}))
	}

	session := crunchyroll.NewSession(httpClient, settings.Email, settings.Password, opts...)
	if err := session.Login(ctx); err != nil {
		return nil, fmt.Errorf("crunchyroll %w", err)
	}

	account, err := session.Account(ctx)
	if err != nil {
		return nil, fmt.Errorf("crunchyroll account: %w", err)
	}
	log.Infof("Logged in to Crunchyroll as %s", settings.Email)

	return crunchyroll.New(httpClient, session, account, settings.PreferredAudio, settings.Locale), nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
