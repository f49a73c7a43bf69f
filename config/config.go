// Package config resolves malcr settings from the process environment, overlaid by an optional ./.env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/malcr/malcr/key"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"golang.org/x/text/language"
)

// DotEnv is the conventional key=value file read from the working directory.
const DotEnv = ".env"

// Setup overlays DotEnv onto the environment and binds every field to its variable.
// Variables already present in the environment win over the file.
func Setup() error {
	if err := gotenv.Load(DotEnv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read %s: %w", DotEnv, err)
	}

	viper.SetTypeByDefaultValue(true)
	for _, field := range Fields {
		if err := viper.BindEnv(field.Key, field.Env); err != nil {
			return err
		}
		if field.Value != nil {
			viper.SetDefault(field.Key, field.Value)
		}
	}

	return nil
}

// Settings is the validated view of the configuration a sync run needs.
type Settings struct {
	MalUsername string
	MalClientID string
	PageDelay   time.Duration

	Email          string
	Password       string
	PreferredAudio language.Tag
	Locale         language.Tag
	ClientID       string
	ClientSecret   string

	RememberSession bool
	TLSFingerprint  bool
	DryRun          bool
}

// Load validates the required fields and returns the settings.
// Every missing or malformed field is reported, joined into one error.
func Load() (*Settings, error) {
	var errs []error
	for _, field := range Fields {
		if field.Required && viper.GetString(field.Key) == "" {
			errs = append(errs, fmt.Errorf("'%s' environment variable not found", field.Env))
		}
	}

	audio, err := parseLocale(key.CrunchyrollPreferredAudio)
	if err != nil {
		errs = append(errs, err)
	}
	locale, err := parseLocale(key.CrunchyrollLocale)
	if err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Settings{
		MalUsername:     viper.GetString(key.MalUsername),
		MalClientID:     viper.GetString(key.MalClientID),
		PageDelay:       viper.GetDuration(key.MalPageDelay),
		Email:           viper.GetString(key.CrunchyrollEmail),
		Password:        viper.GetString(key.CrunchyrollPassword),
		PreferredAudio:  audio,
		Locale:          locale,
		ClientID:        viper.GetString(key.CrunchyrollClientID),
		ClientSecret:    viper.GetString(key.CrunchyrollClientSecret),
		RememberSession: viper.GetBool(key.CrunchyrollRememberSession),
		TLSFingerprint:  viper.GetBool(key.CrunchyrollTLSFingerprint),
		DryRun:          viper.GetBool(key.SyncDryRun),
	}, nil
}

// parseLocale reads a BCP-47 tag. An unset value is left to the required-field check.
func parseLocale(k string) (language.Tag, error) {
	raw := viper.GetString(k)
	if raw == "" {
		return language.Und, nil
	}

	tag, err := language.Parse(raw)
	if err != nil {
		return language.Und, fmt.Errorf("'%s' is not a valid locale (%q): %w", Default[k].Env, raw, err)
	}
	return tag, nil
}
