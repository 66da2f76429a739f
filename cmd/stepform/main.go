package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/mark3labs/stepform/internal/config"
	"github.com/mark3labs/stepform/internal/logger"
	"github.com/mark3labs/stepform/internal/tui/theme"
	"github.com/spf13/cobra"
)

const (
	logoText1 = "█▀ ▀█▀ █▀▀ █▀█ █▀▀ █▀█ █▀█ █▀▄▀█"
	logoText2 = "▄█  █  ██▄ █▀▀ █▀  █▄█ █▀▄ █ ▀ █"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stepform",
	Short: "Resumable multi-step forms in the terminal",
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.NewCatppuccinMocha()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

// loadConfig loads configuration and points the logger at the configured
// level and file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	return cfg, nil
}

func init() {
	rootCmd.Long = renderLogo() + `

stepform runs multi-step forms defined in YAML. Each step is validated before
the form moves on, and in-progress answers are saved after every change so an
interrupted form resumes where it stopped.

Snapshots live in a directory of files, an embedded NATS JetStream key-value
bucket, or memory, depending on the "storage" setting.`

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(lintCmd)
}
