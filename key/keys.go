// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// MyAnimeList - the tracker the watch list is read from.
const (
	MalUsername  = "mal.username"
	MalClientID  = "mal.client_id"
	MalPageDelay = "mal.page_delay"
)

// Crunchyroll - the streamer progress is written to.
const (
	CrunchyrollEmail           = "crunchyroll.email"
	CrunchyrollPassword        = "crunchyroll.password"
	CrunchyrollPreferredAudio  = "crunchyroll.preferred_audio"
	CrunchyrollLocale          = "crunchyroll.locale"
	CrunchyrollClientID        = "crunchyroll.client_id"
	CrunchyrollClientSecret    = "crunchyroll.client_secret"
	CrunchyrollRememberSession = "crunchyroll.remember_session"
	CrunchyrollTLSFingerprint  = "crunchyroll.tls_fingerprint"
)

// Sync behaviour.
const (
	SyncDryRun = "sync.dry_run"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsFile  = "logs.file"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment.
const (
	CliColored = "cli.colored"
)
