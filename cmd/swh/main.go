package main

import (
	"fmt"
	"os"

	"github.com/franz/spotify-warehouse/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set at build time
	Version = "dev"

	cfgFile string
	envFile string

	rootCmd = &cobra.Command{
		Use:   "swh",
		Short: "Playlist warehouse - bootstrap the SQLite star schema",
		Long: `swh (Spotify Warehouse) creates and maintains a SQLite star schema for
playlist and track metadata: playlist, album, artist, track and audio
feature dimensions, a track/artist bridge, a date dimension, and a fact
table holding track positions per playlist snapshot.

Running swh without a subcommand creates the database (if needed) and
applies the schema. The location comes from --db, SQLITE_PATH (process
environment or .env), the config file, or ./data/spotify.db.`,
		Version:           Version,
		Args:              cobra.NoArgs,
		PersistentPreRunE: applyLogSettings,
		RunE:              runInit,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/swh.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", util.DefaultEnvFile, "settings file loaded into the environment before resolving config")
	rootCmd.PersistentFlags().String("db", "", "warehouse database file (default from SQLITE_PATH or "+util.DefaultDBPath+")")
	rootCmd.PersistentFlags().Duration("busy-timeout", 0, "wait this long on a locked database instead of failing")
	rootCmd.PersistentFlags().String("journal-mode", "", "SQLite journal mode to set on open (e.g. WAL); empty keeps the default")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "quiet output (errors only)")

	// Bind flags to viper
	viper.BindPFlag(util.KeyDB, rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("busy-timeout", rootCmd.PersistentFlags().Lookup("busy-timeout"))
	viper.BindPFlag("journal-mode", rootCmd.PersistentFlags().Lookup("journal-mode"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	// .env goes into the process environment first so viper sees it
	if err := util.LoadEnvFile(envFile); err != nil {
		util.WarnLog("%v", err)
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in common locations
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.SetConfigName("swh")
		viper.SetConfigType("yaml")
	}

	// Read in environment variables that match
	viper.SetEnvPrefix("SWH")
	viper.AutomaticEnv()
	util.BindDBPath(viper.GetViper())

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		util.DebugLog("Using config file: %s", viper.ConfigFileUsed())
	}
}

func applyLogSettings(cmd *cobra.Command, args []string) error {
	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
