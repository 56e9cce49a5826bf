// Package cmd provides the robolearn CLI commands.
//
// Commands:
//   - serve: HTTP API server for the personalization platform
//   - index: embed chapter passages into the retrieval store
//   - version: build information
//
// Signal handling and graceful shutdown are implemented via context
// cancellation.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/robolearn/robolearn/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "robolearn",
	Short: "Personalization backend for the robotics textbook platform",
	Long: `robolearn serves the AI personalization layer of the robotics
educational platform: chapter adaptation per learner profile, Urdu
translation, quiz generation, exam summaries, content validation, and
focused Q&A over selected text.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds the process logger from config strings.
func newLogger(level, format string) log.Logger {
	cfg := log.Config{Level: log.ParseLevel(level), JSON: format == "json"}
	if os.Getenv("DEBUG") != "" {
		cfg.Level = log.ParseLevel("debug")
	}
	return log.New(cfg)
}
