package config

import (
	"time"

	"github.com/malcr/malcr/crunchyroll"
	"github.com/malcr/malcr/key"
)

// Field is a single configuration setting and the environment variable it is read from.
type Field struct {
	Key         string
	Env         string
	Value       any
	Description string
	Required    bool
	Secret      bool
}

// Default holds every registered field by key.
var Default = make(map[string]Field)

// Fields lists registered fields in registration order.
var Fields []Field

func init() {
	register := func(f Field) {
		if _, exists := Default[f.Key]; exists {
			panic("Duplicate config key: " + f.Key)
		}
		Default[f.Key] = f
		Fields = append(Fields, f)
	}

	required := func(k, env, desc string, secret bool) {
		register(Field{Key: k, Env: env, Description: desc, Required: true, Secret: secret})
	}
	optional := func(k, env string, v any, desc string) {
		register(Field{Key: k, Env: env, Value: v, Description: desc})
	}

	required(key.MalUsername, "MAL_USERNAME", "MyAnimeList user whose list is read", false)
	required(key.MalClientID, "MAL_CLIENT_ID", "MyAnimeList API client id", true)
	required(key.CrunchyrollEmail, "EMAIL", "Crunchyroll account email", false)
	required(key.CrunchyrollPassword, "PASSWORD", "Crunchyroll account password", true)
	required(key.CrunchyrollPreferredAudio, "PREFERRED_AUDIO", "Preferred audio locale, e.g. ja-JP", false)
	required(key.CrunchyrollLocale, "CLOCALE", "Crunchyroll UI and content locale, e.g. en-US", false)

	optional(key.MalPageDelay, "MALCR_PAGE_DELAY", 2*time.Second, "Pause between two MyAnimeList list pages")
	optional(key.CrunchyrollClientID, "CR_CLIENT_ID", crunchyroll.PublicClientID, "Client id used for the Crunchyroll token endpoint")
	optional(key.CrunchyrollClientSecret, "CR_CLIENT_SECRET", "", "Client secret used for the Crunchyroll token endpoint")
	optional(key.CrunchyrollRememberSession, "MALCR_REMEMBER_SESSION", false, "Keep the Crunchyroll refresh token in the system keyring between runs")
	optional(key.CrunchyrollTLSFingerprint, "MALCR_TLS_FINGERPRINT", true, "Present a browser TLS fingerprint to Crunchyroll")
	optional(key.SyncDryRun, "MALCR_DRY_RUN", false, "Match everything but do not send mark requests")
	optional(key.LogsFile, "MALCR_LOG_FILE", false, "Mirror diagnostics into a dated file under the config directory")
	optional(key.LogsLevel, "MALCR_LOG_LEVEL", "info", "panic, fatal, error, warn, info, debug, trace")
	optional(key.LogsJson, "MALCR_LOG_JSON", false, "Use json format for diagnostics")
	optional(key.CliColored, "MALCR_COLORED", true, "Enable colored CLI output")
}
