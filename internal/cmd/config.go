package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/sift/internal/config"
	"github.com/Iron-Ham/sift/internal/errors"
	tuiconfig "github.com/Iron-Ham/sift/internal/tui/config"
	"github.com/Iron-Ham/sift/internal/tui/styles"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify sift configuration",
	Long: `View or modify sift configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  sift config set llm.provider anthropic
  sift config set research.default_searches 5
  sift config set debate.oppose false`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/sift/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		return tuiconfig.Run()
	},
}

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Manage the terminal color theme",
	Long: `Manage the terminal color theme.

A theme is a YAML file of hex colors. Point ui.theme_file at it; the
terminal UI reloads it whenever the file changes.`,
}

var themeExportCmd = &cobra.Command{
	Use:   "export [output-file]",
	Short: "Write the default theme as a starting point",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runThemeExport,
}

var themeCheckCmd = &cobra.Command{
	Use:   "check <theme-file>",
	Short: "Validate a theme file",
	Args:  cobra.ExactArgs(1),
	RunE:  runThemeCheck,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(themeCmd)
	themeCmd.AddCommand(themeExportCmd)
	themeCmd.AddCommand(themeCheckCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(out, "Configuration is invalid, showing defaults:\n%v\n\n", err)
		cfg = config.Default()
	}

	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "# Config file: %s\n", used)
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}

	data, err := config.RenderYAML(cfg)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	kind, ok := config.SettableKeys()[key]
	if !ok {
		keys := make([]string, 0, len(config.SettableKeys()))
		for k := range config.SettableKeys() {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return errors.NewValidationError("unknown configuration key\nValid keys:\n  " + strings.Join(keys, "\n  ")).
			WithField(key)
	}

	var typedValue any
	switch kind {
	case config.KindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return errors.NewValidationError("expected true or false").WithField(key).WithValue(value)
		}
		typedValue = b
	case config.KindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return errors.NewValidationError("expected integer").WithField(key).WithValue(value)
		}
		typedValue = n
	default:
		typedValue = value
	}

	// Validate against a copy so a rejected value never reaches the file
	candidate := viper.New()
	if err := candidate.MergeConfigMap(viper.AllSettings()); err != nil {
		return fmt.Errorf("failed to read current config: %w", err)
	}
	candidate.Set(key, typedValue)
	var cfg config.Config
	if err := candidate.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		var cause error = config.ValidationErrors(errs)
		if key == "research.default_searches" {
			cause = fmt.Errorf("%w: %w", errors.ErrInvalidSearchCount, cause)
		}
		return errors.NewValidationError("invalid value").WithField(key).WithValue(typedValue).WithCause(cause)
	}
	viper.Set(key, typedValue)

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = config.ConfigFile()
	}
	if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Set %s = %v\n", key, typedValue)
	fmt.Fprintf(out, "Config saved to %s\n", configFile)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configFile := config.ConfigFile()

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'sift config set' to modify values", configFile)
	}
	if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := config.RenderYAML(config.Default())
	if err != nil {
		return err
	}
	if err := os.WriteFile(configFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created config file at %s\n", configFile)
	fmt.Fprintln(out, "Edit this file or run 'sift config edit' to customize sift.")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "Active config: %s\n", used)
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", config.ConfigFile())
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", config.ConfigFile())
	fmt.Fprintln(out, "  2. ./config.yaml (current directory)")
	fmt.Fprintln(out, "\nEnvironment variables: SIFT_* (e.g., SIFT_SEARCH_PROVIDER)")
	fmt.Fprintf(out, "Logs: %s\n", LogDir())
	return nil
}

func runThemeExport(cmd *cobra.Command, args []string) error {
	p := styles.DefaultPalette()
	theme := styles.ThemeFile{
		Name: "custom",
		Colors: styles.ThemeColors{
			Primary:   string(p.Primary),
			Secondary: string(p.Secondary),
			Warning:   string(p.Warning),
			Error:     string(p.Error),
			Muted:     string(p.Muted),
			Text:      string(p.Text),
			Border:    string(p.Border),
			Accent:    string(p.Accent),
		},
	}
	data, err := yaml.Marshal(theme)
	if err != nil {
		return fmt.Errorf("failed to encode theme: %w", err)
	}

	if len(args) == 0 {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(args[0], data, 0o644); err != nil {
		return fmt.Errorf("failed to write theme: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Theme written to %s\nSet it with: sift config set ui.theme_file %s\n", args[0], args[0])
	return nil
}

func runThemeCheck(cmd *cobra.Command, args []string) error {
	theme, err := styles.LoadThemeFile(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Theme %q is valid\n", theme.Name)
	return nil
}
