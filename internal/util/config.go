package util

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// KeyDB is the configuration key holding the warehouse file location
	KeyDB = "db"

	// DBPathEnv overrides the warehouse file location
	DBPathEnv = "SQLITE_PATH"

	// DefaultDBPath is used when nothing else sets a location
	DefaultDBPath = "./data/spotify.db"

	// DefaultEnvFile is the local settings file read before resolving config
	DefaultEnvFile = ".env"
)

// LoadEnvFile reads KEY=VALUE pairs from path into the process environment.
// Variables that are already set win over the file. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: load %s: %v", ErrInvalidConfig, path, err)
	}
	return nil
}

// BindDBPath wires the db key to SQLITE_PATH and the default location
func BindDBPath(v *viper.Viper) {
	v.SetDefault(KeyDB, DefaultDBPath)
	// BindEnv only fails when called without a key
	_ = v.BindEnv(KeyDB, DBPathEnv)
}

// DBPath returns the configured warehouse location.
// The string is not validated; opening the store does that.
func DBPath(v *viper.Viper) string {
	if p := v.GetString(KeyDB); p != "" {
		return p
	}
	return DefaultDBPath
}

// ResolveDBPath loads envFile and returns SQLITE_PATH, or DefaultDBPath when unset
func ResolveDBPath(envFile string) (string, error) {
	if err := LoadEnvFile(envFile); err != nil {
		return "", err
	}
	v := viper.New()
	BindDBPath(v)
	return DBPath(v), nil
}
