package util

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func TestResolveDBPath_Default(t *testing.T) {
	t.Setenv(DBPathEnv, "")

	// Point at a settings file that does not exist
	path, err := ResolveDBPath(filepath.Join(t.TempDir(), ".env"))
	if err != nil {
		t.Fatalf("ResolveDBPath failed: %v", err)
	}

	if path != "./data/spotify.db" {
		t.Errorf("expected default path ./data/spotify.db, got %s", path)
	}
}

func TestResolveDBPath_Env(t *testing.T) {
	t.Setenv(DBPathEnv, "/tmp/test123/warehouse.db")

	path, err := ResolveDBPath(filepath.Join(t.TempDir(), ".env"))
	if err != nil {
		t.Fatalf("ResolveDBPath failed: %v", err)
	}

	if path != "/tmp/test123/warehouse.db" {
		t.Errorf("expected env path, got %s", path)
	}
}

func TestResolveDBPath_EnvFile(t *testing.T) {
	t.Setenv(DBPathEnv, "")
	os.Unsetenv(DBPathEnv)

	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("SQLITE_PATH=./warehouse/from-file.db\n"), 0644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	path, err := ResolveDBPath(envFile)
	if err != nil {
		t.Fatalf("ResolveDBPath failed: %v", err)
	}

	if path != "./warehouse/from-file.db" {
		t.Errorf("expected path from env file, got %s", path)
	}
}

func TestResolveDBPath_ProcessEnvWinsOverFile(t *testing.T) {
	t.Setenv(DBPathEnv, "/from/process.db")

	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("SQLITE_PATH=/from/file.db\n"), 0644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	path, err := ResolveDBPath(envFile)
	if err != nil {
		t.Fatalf("ResolveDBPath failed: %v", err)
	}

	if path != "/from/process.db" {
		t.Errorf("expected process env to win, got %s", path)
	}
}

func TestLoadEnvFile_Malformed(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("SQLITE_PATH='unterminated\n"), 0644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	err := LoadEnvFile(envFile)
	if err == nil {
		t.Fatal("expected error for malformed env file")
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestDBPath_Precedence(t *testing.T) {
	t.Setenv(DBPathEnv, "")

	cfgFile := filepath.Join(t.TempDir(), "swh.yaml")
	if err := os.WriteFile(cfgFile, []byte("db: /config/path.db\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	flags := pflag.NewFlagSet("swh", pflag.ContinueOnError)
	flags.String("db", "", "warehouse database file")

	v := viper.New()
	if err := v.BindPFlag(KeyDB, flags.Lookup("db")); err != nil {
		t.Fatalf("failed to bind flag: %v", err)
	}
	BindDBPath(v)

	// Nothing set
	if got := DBPath(v); got != DefaultDBPath {
		t.Errorf("expected default %s, got %s", DefaultDBPath, got)
	}

	// Config file beats the default
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	if got := DBPath(v); got != "/config/path.db" {
		t.Errorf("expected config value, got %s", got)
	}

	// SQLITE_PATH beats the config file
	t.Setenv(DBPathEnv, "/env/path.db")
	if got := DBPath(v); got != "/env/path.db" {
		t.Errorf("expected env value, got %s", got)
	}

	// An explicit --db beats everything
	if err := flags.Parse([]string{"--db", "/flag/path.db"}); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	if got := DBPath(v); got != "/flag/path.db" {
		t.Errorf("expected flag value, got %s", got)
	}
}
