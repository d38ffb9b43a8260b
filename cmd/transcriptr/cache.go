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
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the transcript metadata cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show cached session totals",
	RunE:  runCacheInfo,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Purge all cached file fingerprints and session metadata",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func openCache(ctx context.Context) (*cache.Manager, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	mgr, err := cache.New(ctx, dataDir(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return mgr, nil
}

func runCacheInfo(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mgr, err := openCache(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = mgr.Close() }()

	agg, err := mgr.ProjectAggregates(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Sessions:     %d\n", agg.SessionCount)
	fmt.Printf("Messages:     %d\n", agg.MessageCount)
	fmt.Printf("Total tokens: %d\n", agg.TotalTokens)
	if agg.LastTimestamp != "" {
		fmt.Printf("Last entry:   %s\n", agg.LastTimestamp)
	}
	if len(agg.WorkingDirs) > 0 {
		fmt.Println("Working directories:")
		for _, dir := range agg.WorkingDirs {
			fmt.Printf("  %s\n", dir)
		}
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mgr, err := openCache(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = mgr.Close() }()

	if err := mgr.Clear(ctx); err != nil {
		return err
	}
	fmt.Println("Cache cleared.")
	return nil
}
