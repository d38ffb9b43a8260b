package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mark3labs/transcriptr/internal/cache"
	"github.com/mark3labs/transcriptr/internal/config"
	"github.com/mark3labs/transcriptr/internal/converter"
	"github.com/mark3labs/transcriptr/internal/logger"
)

var convertFlags struct {
	output               string
	format               string
	fromDate             string
	toDate               string
	allProjects          bool
	noIndividualSessions bool
	skipCombined         bool
	noCache              bool
	clearCache           bool
	clearOutput          bool
	openBrowser          bool
	projectsDir          string
	imageExportMode      string
	watch                bool
}

var convertCmd = &cobra.Command{
	Use:   "convert [path]",
	Short: "Convert transcript files to HTML or Markdown",
	Long: `Convert Claude Code transcript files to HTML or Markdown pages.

The path may be a single .jsonl file, a project directory, or the projects
root. Without a path the default projects directory (~/.claude/projects) is
converted with --all-projects implied, producing a linked index page.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertFlags.output, "output", "o", "", "Output directory (default: next to the input)")
	convertCmd.Flags().StringVarP(&convertFlags.format, "format", "f", "", "Output format: html, md or markdown")
	convertCmd.Flags().StringVar(&convertFlags.fromDate, "from-date", "", "Only include entries from this date (YYYY-MM-DD or 'yesterday')")
	convertCmd.Flags().StringVar(&convertFlags.toDate, "to-date", "", "Only include entries up to this date (YYYY-MM-DD or 'today')")
	convertCmd.Flags().BoolVar(&convertFlags.allProjects, "all-projects", false, "Process every project under the projects directory")
	convertCmd.Flags().BoolVar(&convertFlags.noIndividualSessions, "no-individual-sessions", false, "Skip per-session pages")
	convertCmd.Flags().BoolVar(&convertFlags.skipCombined, "skip-combined", false, "Skip the combined transcript page")
	convertCmd.Flags().BoolVar(&convertFlags.noCache, "no-cache", false, "Disable the transcript metadata cache")
	convertCmd.Flags().BoolVar(&convertFlags.clearCache, "clear-cache", false, "Clear the cache before converting")
	convertCmd.Flags().BoolVar(&convertFlags.clearOutput, "clear-output", false, "Delete previously generated pages before converting")
	convertCmd.Flags().BoolVar(&convertFlags.openBrowser, "open-browser", false, "Open the generated page in the default browser")
	convertCmd.Flags().StringVar(&convertFlags.projectsDir, "projects-dir", "", "Projects root (default: ~/.claude/projects)")
	convertCmd.Flags().StringVar(&convertFlags.imageExportMode, "image-export-mode", "", "Image handling: embedded or placeholder")
	convertCmd.Flags().BoolVar(&convertFlags.watch, "watch", false, "Re-convert whenever a transcript file changes")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	projectsDir := cfg.ProjectsDir
	if convertFlags.projectsDir != "" {
		projectsDir = convertFlags.projectsDir
	}

	inputPath := ""
	allProjects := convertFlags.allProjects
	if len(args) > 0 {
		inputPath = args[0]
	} else {
		// Bare `convert` processes the whole projects hierarchy.
		inputPath = projectsDir
		allProjects = true
	}

	format := cfg.OutputFormat
	if convertFlags.format != "" {
		format = convertFlags.format
	}
	imageMode := cfg.ImageExportMode
	if convertFlags.imageExportMode != "" {
		imageMode = convertFlags.imageExportMode
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var mgr *cache.Manager
	if cfg.CacheEnabled && !convertFlags.noCache {
		mgr, err = cache.New(ctx, dataDir(cfg))
		if err != nil {
			logger.Warn("Cache unavailable, converting without it: %v", err)
		} else {
			defer func() { _ = mgr.Close() }()
		}
	}
	if convertFlags.clearCache {
		if err := mgr.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
	}

	if convertFlags.clearOutput {
		dir := convertFlags.output
		if dir == "" {
			dir = inputPath
		}
		if err := clearGeneratedPages(dir); err != nil {
			return err
		}
	}

	opts := converter.Options{
		OutputDir:            convertFlags.output,
		Format:               format,
		FromDate:             convertFlags.fromDate,
		ToDate:               convertFlags.toDate,
		NoIndividualSessions: convertFlags.noIndividualSessions,
		SkipCombined:         convertFlags.skipCombined,
		ImageExportMode:      imageMode,
		Cache:                mgr,
	}

	if convertFlags.watch {
		if allProjects {
			return fmt.Errorf("--watch requires a single file or project directory")
		}
		err := converter.Watch(ctx, inputPath, opts)
		if err == context.Canceled {
			return nil
		}
		return err
	}

	var output string
	var stats *converter.GenerationStats
	if allProjects {
		output, stats, err = converter.ProcessProjectsHierarchy(ctx, inputPath, opts)
	} else {
		output, stats, err = converter.ConvertJSONL(ctx, inputPath, opts)
	}
	if err != nil {
		return err
	}

	fmt.Println(stats.Summary(output))
	for _, warning := range stats.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}

	if convertFlags.openBrowser {
		if err := openBrowser(output); err != nil {
			logger.Warn("Failed to open browser: %v", err)
		}
	}
	return nil
}

// clearGeneratedPages removes previously generated pages from a project
// directory or the projects root: combined transcripts, per-session pages
// and the index. Transcript files are never touched.
func clearGeneratedPages(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to access %s: %w", dir, err)
	}
	if !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		name := d.Name()
		ext := filepath.Ext(name)
		if ext != ".html" && ext != ".md" {
			return nil
		}
		stem := strings.TrimSuffix(name, ext)
		if stem == "combined_transcripts" || stem == "index" || strings.HasPrefix(stem, "session-") {
			logger.Debug("Removing %s", path)
			return os.Remove(path)
		}
		return nil
	})
}

// dataDir picks the cache location: the configured directory, or the XDG
// data home fallback.
func dataDir(cfg *config.Config) string {
	if cfg.DataDir != "" {
		return cfg.DataDir
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "transcriptr")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "transcriptr")
}

func openBrowser(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}
