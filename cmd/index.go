package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/robolearn/robolearn/internal/app"
	"github.com/robolearn/robolearn/internal/config"
)

var indexCmd = &cobra.Command{
	Use:   "index [chapter-id...]",
	Short: "Embed chapter passages into the retrieval store",
	Long: `index splits chapter bodies into passages, embeds each passage, and
stores the vectors for focused Q&A retrieval. With no arguments every
chapter in the catalog is reindexed; otherwise only the named chapters.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIndex(args)
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(chapterIDs []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := newLogger(cfg.LogLevel, cfg.LogFormat)

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	if len(chapterIDs) == 0 {
		chapterIDs = a.Catalog.IDs()
	}

	total := 0
	for _, id := range chapterIDs {
		ch, ok := a.Catalog.Get(id)
		if !ok {
			return fmt.Errorf("chapter %q not in catalog", id)
		}
		n, err := a.Indexer.IndexChapter(ctx, ch)
		if err != nil {
			return fmt.Errorf("indexing chapter %s: %w", id, err)
		}
		logger.Info("chapter indexed", "chapter_id", id, "passages", n)
		total += n
	}

	logger.Info("indexing complete", "chapters", len(chapterIDs), "passages", total)
	return nil
}
