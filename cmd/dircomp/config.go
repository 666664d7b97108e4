package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/dircomp/pkg/dircomp/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage dircomp configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/dircomp/config.yaml (if set)
  2. ~/.config/dircomp/config.yaml

Environment variables can override config file settings using the
DIRCOMP_ prefix:
  DIRCOMP_FILTER=diff
  DIRCOMP_COMPARE_TRUST_MOD_TIME=true
  DIRCOMP_EXCLUDE=.git,node_modules`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFile(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	fmt.Println("Current Configuration:")
	fmt.Println("----------------------")
	fmt.Printf("filter:                  %s\n", cfg.Filter)
	fmt.Printf("exclude:                 %s\n", strings.Join(cfg.Exclude, ", "))
	fmt.Printf("watch:                   %t\n", cfg.Watch)
	fmt.Printf("compare.small_file_max:  %s\n", cfg.Compare.SmallFileMax)
	fmt.Printf("compare.hash_file_max:   %s\n", cfg.Compare.HashFileMax)
	fmt.Printf("compare.prefix_bytes:    %s\n", cfg.Compare.PrefixBytes)
	fmt.Printf("compare.trust_mod_time:  %t\n", cfg.Compare.TrustModTime)
	fmt.Printf("history.enabled:         %t\n", cfg.History.Enabled)
	fmt.Printf("history.path:            %s\n", cfg.History.Path)
	fmt.Printf("logging.level:           %s\n", cfg.Logging.Level)
	fmt.Printf("logging.path:            %s\n", cfg.Logging.Path)
	return nil
}

// runConfigPath prints the config file location.
func runConfigPath(cmd *cobra.Command, args []string) error {
	if cfgFile != "" {
		fmt.Println(cfgFile)
		return nil
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	fmt.Println(filepath.Join(dir, "config.yaml"))
	return nil
}
