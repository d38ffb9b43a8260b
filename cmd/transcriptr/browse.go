package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mark3labs/transcriptr/internal/cache"
	"github.com/mark3labs/transcriptr/internal/config"
	"github.com/mark3labs/transcriptr/internal/logger"
	"github.com/mark3labs/transcriptr/internal/transcript"
	"github.com/mark3labs/transcriptr/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse [path]",
	Short: "Browse transcripts in a full-screen terminal UI",
	Long: `Browse transcripts in a full-screen terminal UI.

Without a path the projects root (~/.claude/projects) opens with a project
selector. Pointing at a single project directory skips straight to its
session list.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	root := cfg.ProjectsDir
	if len(args) > 0 {
		root = args[0]
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("failed to access %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}

	// A directory that directly holds transcript files is one project;
	// anything else is treated as a projects root.
	singleProject := false
	if files, err := transcript.ListSessionFiles(root); err == nil && len(files) > 0 {
		singleProject = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var mgr *cache.Manager
	if cfg.CacheEnabled {
		mgr, err = cache.New(ctx, dataDir(cfg))
		if err != nil {
			logger.Warn("Cache unavailable, browsing without it: %v", err)
		} else {
			defer func() { _ = mgr.Close() }()
		}
	}

	return tui.Run(ctx, root, singleProject, mgr)
}
