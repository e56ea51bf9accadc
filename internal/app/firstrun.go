// Package app locates per-user state: the first-run marker and the result cache.
package app

import (
	"log/slog"
	"os"
	"path/filepath"
)

const (
	markerFileName = "first_run_completed"
	cacheFileName  = "results.db"
	appName        = "hubconn"
)

// GetAppConfigDir returns the path to the application's configuration directory.
func GetAppConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appName), nil
}

// DefaultCachePath returns where the result cache lives when no path is configured.
func DefaultCachePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, appName, cacheFileName), nil
}

// IsFirstRun reports whether the marker file was absent, creating it so that
// later runs return false. Errors are logged and treated as not first run.
func IsFirstRun() bool {
	appConfigDir, err := GetAppConfigDir()
	if err != nil {
		slog.Debug("failed to get app config directory", slog.String("error", err.Error()))
		return false
	}
	return isFirstRunIn(appConfigDir)
}

func isFirstRunIn(dir string) bool {
	markerFilePath := filepath.Join(dir, markerFileName)

	if _, err := os.Stat(markerFilePath); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			slog.Debug("failed to create app config directory", slog.String("path", dir), slog.String("error", err.Error()))
			return false
		}
		f, err := os.Create(markerFilePath)
		if err != nil {
			slog.Debug("failed to create first run marker file", slog.String("path", markerFilePath), slog.String("error", err.Error()))
			return false
		}
		_ = f.Close()
		slog.Debug("first run detected and marker created", slog.String("path", markerFilePath))
		return true
	} else if err != nil {
		slog.Debug("failed to check first run marker file", slog.String("path", markerFilePath), slog.String("error", err.Error()))
		return false
	}

	return false
}
