// Package cmd implements the sift command-line interface.
package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/sift/internal/config"
	"github.com/Iron-Ham/sift/internal/llm"
	"github.com/Iron-Ham/sift/internal/logging"
	"github.com/Iron-Ham/sift/internal/search"
)

var rootCmd = &cobra.Command{
	Use:   "sift",
	Short: "Web research reports and structured debates from the terminal",
	Long: `sift turns a question into a researched Markdown report: it plans web
searches, summarizes what it finds, and writes a report with follow-up
questions. It can also stage a debate on a motion, with a FOR debater,
an AGAINST debater and a judge.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Version is set at build time with -ldflags "-X github.com/Iron-Ham/sift/internal/cmd.Version=..."
var Version = "dev"

// Factories for the model and search backends, replaced in tests.
var (
	newProvider = llm.NewFromConfig
	newSearch   = search.NewFromConfig
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, which is canceled on
// interrupt by the caller.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/sift/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// A .env file in the working directory may hold API keys
	_ = godotenv.Load()

	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("SIFT")
	// Replace dots with underscores for nested keys in env vars
	// e.g., SIFT_SEARCH_PROVIDER for search.provider
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// LogDir returns the directory debug logs are written to.
func LogDir() string {
	return filepath.Join(config.StateDir(), "logs")
}

// newLogger returns the file logger configured by cfg, or a no-op logger
// when logging is disabled or the log directory cannot be created.
func newLogger(cfg *config.Config) *logging.Logger {
	if !cfg.Logging.Enabled {
		return logging.NopLogger()
	}
	dir := LogDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return logging.NopLogger()
	}
	logger, err := logging.NewLogger(dir, cfg.Logging.Level, logging.WithRotation(logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	}))
	if err != nil {
		return logging.NopLogger()
	}
	return logger
}
