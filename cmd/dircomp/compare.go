package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jamesainslie/dircomp/cmd/dircomp/tui"
	"github.com/jamesainslie/dircomp/pkg/dircomp/compare"
	"github.com/jamesainslie/dircomp/pkg/dircomp/config"
	"github.com/jamesainslie/dircomp/pkg/dircomp/engine"
	"github.com/jamesainslie/dircomp/pkg/dircomp/logging"
	"github.com/jamesainslie/dircomp/pkg/dircomp/manifest"
	"github.com/jamesainslie/dircomp/pkg/dircomp/scanner"
	"github.com/jamesainslie/dircomp/pkg/dircomp/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runCompare is the main comparison command handler.
func runCompare(cmd *cobra.Command, args []string) error {
	leftRoot, err := resolveRoot(args[0])
	if err != nil {
		return fmt.Errorf("left root %q: %w", args[0], err)
	}
	rightRoot, err := resolveRoot(args[1])
	if err != nil {
		return fmt.Errorf("right root %q: %w", args[1], err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	thresholds, err := cfg.Thresholds()
	if err != nil {
		return err
	}

	filter, err := cfg.FilterMode()
	if err != nil {
		return fmt.Errorf("invalid filter %q: %w", cfg.Filter, err)
	}

	simple := viper.GetBool("simple")
	if !simple && !stdoutIsTerminal() {
		printVerbose("stdout is not a terminal, falling back to simple output")
		simple = true
	}

	if err := initLogging(cfg, simple); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logging.Close() }()

	cmp := compare.New(thresholds)
	scanOpts := scanner.Options{Exclude: cfg.Exclude}
	eng := engine.New(leftRoot, rightRoot, cmp, scanOpts)

	printVerbose("comparing %s and %s", leftRoot, rightRoot)
	printVerbose("thresholds: small=%s hash=%s prefix=%s trust-mtime=%v",
		types.FormatSize(thresholds.SmallFileMax),
		types.FormatSize(thresholds.HashFileMax),
		types.FormatSize(thresholds.PrefixBytes),
		thresholds.TrustModTime)

	if simple {
		return runSimple(eng)
	}

	history, err := openHistory(cfg)
	if err != nil {
		printVerbose("history disabled: %v", err)
	}

	tuiOpts := tui.Options{
		Engine:  eng,
		Filter:  filter,
		Watch:   cfg.Watch,
		History: history,
	}
	return tui.Run(tuiOpts)
}

// initLogging configures the file-backed logger. Console output is
// only allowed in simple mode with --verbose; the TUI owns the
// terminal.
func initLogging(cfg *config.Config, simple bool) error {
	level := cfg.Logging.Level
	if getVerbose() {
		level = "debug"
	}
	return logging.Init(logging.Config{
		Level:   level,
		Path:    cfg.Logging.Path,
		Console: simple && getVerbose(),
	})
}

// openHistory opens the copy-operation manifest, nil when disabled.
func openHistory(cfg *config.Config) (*manifest.Log, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	dir := cfg.History.Path
	if dir == "" {
		dir = manifest.DefaultDir()
	}
	return manifest.Open(dir)
}

// stdoutIsTerminal reports whether stdout is attached to a terminal.
func stdoutIsTerminal() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// interruptContext returns a context cancelled on SIGINT/SIGTERM.
func interruptContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		printInfo("\nInterrupted, stopping comparison...")
		cancel()
	}()
	return ctx, cancel
}
