// Package main is the entry point for the breedbase CLI.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/LavishGent/breedbase/internal/config"
	"github.com/LavishGent/breedbase/pkg/breedbase"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "breedbase",
	Short: "Dog breed catalog, lookup and narratives",
	Long: `breedbase aggregates dog-breed information from a breed-data API, an online
encyclopedia and a generative text API.

The breed catalog is cached under a single key and refreshed once it is older
than the configured TTL. lookup answers free-text queries from the catalog or
the encyclopedia, narrate generates a Markdown description, and serve exposes
all of it over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvFile(viper.GetString("env-file"))
	},
}

func init() {
	cobra.OnInitialize(initViper)

	rootCmd.PersistentFlags().String("config", "", "JSON config file (default: ./breedbase.json when present)")
	rootCmd.PersistentFlags().String("cache-backend", "", "cache backend: memory, file, redis, dynamodb, tiered, disabled")
	rootCmd.PersistentFlags().String("env-file", ".env.local", "dotenv file loaded before the config")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")

	for _, name := range []string{"config", "cache-backend", "env-file", "log-level"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

func initViper() {
	viper.SetEnvPrefix("BREEDBASE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// loadEnvFile loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func newLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log-level"))); err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the config file, applies environment overrides and then the
// CLI flags, which take precedence.
func loadConfig() (*config.Config, error) {
	path := viper.GetString("config")
	if path == "" {
		path = "breedbase.json"
	}
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, err
	}
	if backend := viper.GetString("cache-backend"); backend != "" {
		cfg.Cache.Backend = strings.ToLower(backend)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func newClient(cmd *cobra.Command) (*breedbase.Client, *slog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger()
	client, err := breedbase.NewFromConfigContext(cmd.Context(), cfg, breedbase.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return client, logger, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode distinguishes bad input (2) from upstream and cache failures (1).
func exitCode(err error) int {
	if breedbase.IsValidation(err) {
		return 2
	}
	return 1
}
