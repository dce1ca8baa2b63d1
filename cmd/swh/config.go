package main

import (
	"github.com/franz/spotify-warehouse/internal/store"
	"github.com/franz/spotify-warehouse/internal/util"
	"github.com/spf13/viper"
)

// GetDBPath retrieves the warehouse location with proper precedence:
// 1. Command-line flag (if set)
// 2. Environment variable SQLITE_PATH (process or .env)
// 3. Config file key "db"
// 4. ./data/spotify.db
func GetDBPath() string {
	return util.DBPath(viper.GetViper())
}

// GetOpenOptions builds store options from flags, SWH_* env and config
func GetOpenOptions() *store.OpenOptions {
	return &store.OpenOptions{
		BusyTimeout: viper.GetDuration("busy-timeout"),
		JournalMode: viper.GetString("journal-mode"),
	}
}

// GetConfigString retrieves a string config value, falling back to defaultValue
func GetConfigString(key string, defaultValue string) string {
	val := viper.GetString(key)
	if val == "" {
		return defaultValue
	}
	return val
}
