package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/dircomp/pkg/dircomp/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "dircomp <left-dir> <right-dir>",
		Short: "Compare two directory trees side by side",
		Long: `Dircomp compares two directory trees and shows where they diverge.

By default, dircomp launches an interactive dual-panel TUI to browse
the merged tree, view diffs, and copy entries between the sides.
Use --simple for one-line-per-difference text output.

Examples:
  dircomp ./a ./b               # Interactive dual-panel comparison
  dircomp --simple ./a ./b      # Non-interactive diff listing
  dircomp -f diff ./a ./b       # Start with identical entries hidden
  dircomp --watch ./a ./b       # Auto-refresh on filesystem changes
  dircomp history               # View copy operation history`,
		Args: cobra.ExactArgs(2),
		RunE: runCompare,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/dircomp/config.yaml)")
	rootCmd.PersistentFlags().Bool("simple", false, "disable TUI, print one line per difference")
	rootCmd.PersistentFlags().StringP("filter", "f", "", "initial filter (all, diff, no-orphans)")
	rootCmd.PersistentFlags().StringSliceP("exclude", "e", nil, "exclude patterns (can be specified multiple times)")
	rootCmd.PersistentFlags().Bool("watch", false, "refresh automatically on filesystem changes")
	rootCmd.PersistentFlags().Bool("trust-mtime", false, "treat same-size files with matching mtimes as identical")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	_ = viper.BindPFlag("simple", rootCmd.PersistentFlags().Lookup("simple"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig enables environment overrides for the flag-bound keys.
// File and default handling lives in config.Load.
func initConfig() {
	viper.SetEnvPrefix("DIRCOMP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

// loadConfig loads the file/env configuration, then lets flags the
// user set explicitly override it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadFile(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlagOverrides(cmd.Flags(), cfg)
	return cfg, nil
}

// applyFlagOverrides copies explicitly set flag values into cfg.
func applyFlagOverrides(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("filter") {
		cfg.Filter, _ = flags.GetString("filter")
	}
	if flags.Changed("exclude") {
		cfg.Exclude, _ = flags.GetStringSlice("exclude")
	}
	if flags.Changed("watch") {
		cfg.Watch, _ = flags.GetBool("watch")
	}
	if flags.Changed("trust-mtime") {
		cfg.Compare.TrustModTime, _ = flags.GetBool("trust-mtime")
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// resolveRoot expands, absolutizes and validates one root argument.
func resolveRoot(arg string) (string, error) {
	expanded, err := config.ExpandPath(arg)
	if err != nil {
		return "", fmt.Errorf("failed to expand path: %w", err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("path does not exist: %s", abs)
		}
		return "", fmt.Errorf("cannot access path: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", abs)
	}
	return abs, nil
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
