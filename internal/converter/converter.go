package converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gosimple/slug"

	"github.com/mark3labs/transcriptr/internal/cache"
	"github.com/mark3labs/transcriptr/internal/logger"
	"github.com/mark3labs/transcriptr/internal/render"
	"github.com/mark3labs/transcriptr/internal/transcript"
)

// Format selects the output renderer.
const (
	FormatHTML     = "html"
	FormatMarkdown = "md"
)

// FileExtension maps a format name to its output extension.
func FileExtension(format string) (string, error) {
	switch format {
	case FormatHTML, "":
		return ".html", nil
	case FormatMarkdown, "markdown":
		return ".md", nil
	}
	return "", fmt.Errorf("unsupported output format: %s", format)
}

// Options configures a conversion run.
type Options struct {
	OutputDir            string
	Format               string
	FromDate             string
	ToDate               string
	NoIndividualSessions bool
	SkipCombined         bool
	ImageExportMode      string         // render.ImageModeEmbedded when empty
	Cache                *cache.Manager // nil disables caching
}

// GenerationStats accumulates counters across a conversion run.
type GenerationStats struct {
	FilesProcessed int
	FilesSkipped   int // unchanged per cache fingerprint
	SessionsFound  int
	PagesWritten   int
	Warnings       []string
}

// AddWarning records a non-fatal problem for the end-of-run summary.
func (s *GenerationStats) AddWarning(msg string) {
	s.Warnings = append(s.Warnings, msg)
	logger.Warn("%s", msg)
}

// Summary is the one-line run report.
func (s *GenerationStats) Summary(name string) string {
	line := fmt.Sprintf("%s: %d files processed, %d sessions, %d pages written",
		name, s.FilesProcessed, s.SessionsFound, s.PagesWritten)
	if s.FilesSkipped > 0 {
		line += fmt.Sprintf(", %d unchanged", s.FilesSkipped)
	}
	if len(s.Warnings) > 0 {
		line += fmt.Sprintf(", %d warnings", len(s.Warnings))
	}
	return line
}

// ConvertJSONL converts one transcript file or a project directory of them.
// Returns the path of the primary output page.
func ConvertJSONL(ctx context.Context, inputPath string, opts Options) (string, *GenerationStats, error) {
	stats := &GenerationStats{}

	info, err := os.Stat(inputPath)
	if err != nil {
		return "", stats, fmt.Errorf("failed to access %s: %w", inputPath, err)
	}

	ext, err := FileExtension(opts.Format)
	if err != nil {
		return "", stats, err
	}

	switch opts.ImageExportMode {
	case "", render.ImageModeEmbedded, render.ImageModePlaceholder:
	default:
		return "", stats, fmt.Errorf("unsupported image export mode: %s", opts.ImageExportMode)
	}

	if info.IsDir() {
		return convertDirectory(ctx, inputPath, ext, opts, stats)
	}
	return convertSingleFile(ctx, inputPath, ext, opts, stats)
}

func convertSingleFile(ctx context.Context, path, ext string, opts Options, stats *GenerationStats) (string, *GenerationStats, error) {
	entries, err := transcript.LoadTranscript(path, opts.FromDate, opts.ToDate)
	if err != nil {
		return "", stats, err
	}
	stats.FilesProcessed++

	entries = transcript.DeduplicateEntries(entries)
	stats.SessionsFound = len(collectSessions(entries).order)

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = filepath.Dir(path)
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outputPath := filepath.Join(outputDir, stem+ext)

	title := "Claude Transcript - " + stem
	if err := writePage(outputPath, title, entries, ext, opts.ImageExportMode, stats); err != nil {
		return "", stats, err
	}
	recordCache(ctx, opts.Cache, path, entries, stats)
	return outputPath, stats, nil
}

func convertDirectory(ctx context.Context, dir, ext string, opts Options, stats *GenerationStats) (string, *GenerationStats, error) {
	files, err := transcript.ListSessionFiles(dir)
	if err != nil {
		return "", stats, err
	}
	if len(files) == 0 {
		return "", stats, fmt.Errorf("no transcript files found in %s", dir)
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = dir
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", stats, fmt.Errorf("failed to create output dir: %w", err)
	}

	for _, file := range files {
		if opts.Cache.IsFileCached(ctx, file) {
			stats.FilesSkipped++
		}
	}

	entries, err := transcript.LoadDirectoryTranscripts(dir, opts.FromDate, opts.ToDate)
	if err != nil {
		return "", stats, err
	}
	stats.FilesProcessed += len(files)
	entries = transcript.DeduplicateEntries(entries)
	stats.SessionsFound = len(collectSessions(entries).order)

	primary := filepath.Join(outputDir, "combined_transcripts"+ext)
	if !opts.SkipCombined {
		title := "Claude Transcripts - " + ProjectDisplayName(dir)
		if err := writePage(primary, title, entries, ext, opts.ImageExportMode, stats); err != nil {
			return "", stats, err
		}
	}

	if !opts.NoIndividualSessions {
		if err := writeSessionPages(outputDir, entries, ext, opts.ImageExportMode, stats); err != nil {
			return "", stats, err
		}
	}

	for _, file := range files {
		fileEntries, err := transcript.LoadTranscript(file, "", "")
		if err != nil {
			stats.AddWarning(fmt.Sprintf("cache update skipped for %s: %v", file, err))
			continue
		}
		recordCache(ctx, opts.Cache, file, fileEntries, stats)
	}

	if opts.SkipCombined {
		primary = outputDir
	}
	return primary, stats, nil
}

// RenderEntries renders entries to a complete document in the given format
// without touching the filesystem.
func RenderEntries(title string, entries []transcript.Entry, format string) (string, error) {
	ext, err := FileExtension(format)
	if err != nil {
		return "", err
	}
	return renderEntries(title, entries, ext, render.ImageModeEmbedded)
}

func renderEntries(title string, entries []transcript.Entry, ext, imageMode string) (string, error) {
	collection := collectSessions(entries)
	if ext == ".md" {
		return RenderMarkdownPage(title, entries, collection), nil
	}
	blocks := buildMessages(entries, collection, imageMode)
	return RenderPage(title, blocks, collection.Ordered())
}

// writePage renders entries in the selected format and writes the file.
func writePage(outputPath, title string, entries []transcript.Entry, ext, imageMode string, stats *GenerationStats) error {
	content, err := renderEntries(title, entries, ext, imageMode)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	stats.PagesWritten++
	logger.Info("Wrote %s", outputPath)
	return nil
}

// writeSessionPages writes one page per session, named session-<id> with
// the summary slug when one exists.
func writeSessionPages(outputDir string, entries []transcript.Entry, ext, imageMode string, stats *GenerationStats) error {
	collection := collectSessions(entries)

	bySession := map[string][]transcript.Entry{}
	for _, entry := range entries {
		if entry.Type == "summary" {
			continue
		}
		bySession[entry.SessionID] = append(bySession[entry.SessionID], entry)
	}

	for _, id := range collection.order {
		sessionEntries := bySession[id]
		if len(sessionEntries) == 0 {
			continue
		}
		info := collection.sessions[id]

		name := "session-" + id
		if info.Summary != "" {
			name = "session-" + slug.Make(info.Summary) + "-" + shortID(id)
		}

		title := "Claude Transcript - " + info.Title()
		outputPath := filepath.Join(outputDir, name+ext)
		if err := writePage(outputPath, title, sessionEntries, ext, imageMode, stats); err != nil {
			return err
		}
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ProjectDisplayName reverses the projects-directory encoding: directory
// names substitute '-' for path separators, so "-home-user-code-app" reads
// back as "home/user/code/app" (approximately; embedded dashes are lost).
func ProjectDisplayName(dir string) string {
	name := filepath.Base(dir)
	if strings.HasPrefix(name, "-") {
		return strings.ReplaceAll(strings.TrimPrefix(name, "-"), "-", "/")
	}
	return name
}

// recordCache stores the file fingerprint and per-session records.
func recordCache(ctx context.Context, mgr *cache.Manager, path string, entries []transcript.Entry, stats *GenerationStats) {
	if mgr == nil {
		return
	}
	collection := collectSessions(transcript.DeduplicateEntries(entries))

	var sessionIDs []string
	for _, id := range collection.order {
		info := collection.sessions[id]
		sessionIDs = append(sessionIDs, id)
		record := cache.SessionRecord{
			ID:                       info.ID,
			Summary:                  info.Summary,
			FirstTimestamp:           info.FirstTimestamp,
			LastTimestamp:            info.LastTimestamp,
			MessageCount:             info.MessageCount,
			FirstUserMessage:         info.FirstUserMessage,
			CWD:                      info.CWD,
			TotalInputTokens:         info.TotalInputTokens,
			TotalOutputTokens:        info.TotalOutputTokens,
			TotalCacheCreationTokens: info.TotalCacheCreationTokens,
			TotalCacheReadTokens:     info.TotalCacheReadTokens,
		}
		if err := mgr.PutSessionData(ctx, record); err != nil {
			stats.AddWarning(fmt.Sprintf("failed to cache session %s: %v", info.ID, err))
		}
	}

	if err := mgr.MarkFileCached(ctx, path, len(entries), sessionIDs); err != nil {
		stats.AddWarning(fmt.Sprintf("failed to cache file %s: %v", path, err))
	}
}

// ProjectResult is one converted project in the hierarchy index.
type ProjectResult struct {
	Name         string
	Path         string
	OutputPath   string
	Sessions     int
	Messages     int
	TotalTokens  int
	LastModified string
	WorkingDirs  []string
}

// ProcessProjectsHierarchy converts every project directory under root and
// writes a linked index page.
func ProcessProjectsHierarchy(ctx context.Context, root string, opts Options) (string, *GenerationStats, error) {
	stats := &GenerationStats{}

	dirEntries, err := os.ReadDir(root)
	if err != nil {
		return "", stats, fmt.Errorf("failed to read projects dir %s: %w", root, err)
	}

	var results []ProjectResult
	for _, dirEntry := range dirEntries {
		if !dirEntry.IsDir() {
			continue
		}
		projectDir := filepath.Join(root, dirEntry.Name())
		files, err := transcript.ListSessionFiles(projectDir)
		if err != nil || len(files) == 0 {
			continue
		}

		projectOpts := opts
		projectOpts.OutputDir = projectDir
		outputPath, projectStats, err := ConvertJSONL(ctx, projectDir, projectOpts)
		if err != nil {
			stats.AddWarning(fmt.Sprintf("skipping project %s: %v", dirEntry.Name(), err))
			continue
		}

		stats.FilesProcessed += projectStats.FilesProcessed
		stats.FilesSkipped += projectStats.FilesSkipped
		stats.PagesWritten += projectStats.PagesWritten
		stats.SessionsFound += projectStats.SessionsFound
		stats.Warnings = append(stats.Warnings, projectStats.Warnings...)

		result := ProjectResult{
			Name:       ProjectDisplayName(projectDir),
			Path:       projectDir,
			OutputPath: outputPath,
			Sessions:   projectStats.SessionsFound,
		}
		fillProjectAggregates(&result, projectDir)
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].LastModified > results[j].LastModified
	})

	indexPath := filepath.Join(root, "index.html")
	if err := writeProjectIndex(indexPath, results); err != nil {
		return "", stats, err
	}
	stats.PagesWritten++
	return indexPath, stats, nil
}

// fillProjectAggregates computes per-project rollups straight from the
// transcripts. Aggregates from the cache would need per-project buckets;
// the project list is small enough to recount.
func fillProjectAggregates(result *ProjectResult, projectDir string) {
	entries, err := transcript.LoadDirectoryTranscripts(projectDir, "", "")
	if err != nil {
		return
	}
	entries = transcript.DeduplicateEntries(entries)
	collection := collectSessions(entries)

	seenDirs := map[string]bool{}
	for _, id := range collection.order {
		info := collection.sessions[id]
		result.Messages += info.MessageCount
		result.TotalTokens += info.TotalInputTokens + info.TotalOutputTokens
		if info.LastTimestamp > result.LastModified {
			result.LastModified = info.LastTimestamp
		}
		if info.CWD != "" && !seenDirs[info.CWD] {
			seenDirs[info.CWD] = true
			result.WorkingDirs = append(result.WorkingDirs, info.CWD)
		}
	}
}
