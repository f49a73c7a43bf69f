// Package where resolves the filesystem locations malcr writes to.
package where

import (
	"os"
	"path/filepath"

	"github.com/malcr/malcr/constant"
	"github.com/malcr/malcr/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath overrides the default configuration directory.
const EnvConfigPath = "MALCR_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config is the application configuration directory (XDG_CONFIG_HOME or the platform equivalent).
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.App))
}

// Cache is the application cache directory.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.App))
}

// Logs is the directory for dated log files.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// LastRun is the file holding the summary of the most recent sync.
func LastRun() string {
	return filepath.Join(Cache(), "last_run.json")
}
