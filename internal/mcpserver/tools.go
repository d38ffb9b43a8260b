package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mark3labs/transcriptr/internal/converter"
	"github.com/mark3labs/transcriptr/internal/transcript"
)

// registerTools registers the transcript browsing tools with the MCP server.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("list-projects",
			mcp.WithDescription("List Claude Code projects with session and message counts"),
		),
		s.handleListProjects,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list-sessions",
			mcp.WithDescription("List the sessions of one project with summaries and token totals"),
			mcp.WithString("project", mcp.Required(),
				mcp.Description("Project directory name under the projects root"),
			),
		),
		s.handleListSessions,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("export-session",
			mcp.WithDescription("Render one session as a complete HTML or Markdown document"),
			mcp.WithString("project", mcp.Required(),
				mcp.Description("Project directory name under the projects root"),
			),
			mcp.WithString("session", mcp.Required(),
				mcp.Description("Session id"),
			),
			mcp.WithString("format",
				mcp.Description("Output format: html (default) or md"),
			),
		),
		s.handleExportSession,
	)
}

// projectEntry is one row of the list-projects JSON output.
type projectEntry struct {
	Name          string `json:"name"`
	Directory     string `json:"directory"`
	Files         int    `json:"files"`
	Sessions      int    `json:"sessions"`
	Messages      int    `json:"messages"`
	LastTimestamp string `json:"last_timestamp,omitempty"`
}

// handleListProjects scans the projects root and reports per-project stats.
func (s *Server) handleListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dirEntries, err := os.ReadDir(s.projectsDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read projects dir: %v", err)), nil
	}

	var projects []projectEntry
	for _, dirEntry := range dirEntries {
		if !dirEntry.IsDir() {
			continue
		}
		projectDir := filepath.Join(s.projectsDir, dirEntry.Name())
		files, err := transcript.ListSessionFiles(projectDir)
		if err != nil || len(files) == 0 {
			continue
		}

		project := projectEntry{
			Name:      converter.ProjectDisplayName(projectDir),
			Directory: dirEntry.Name(),
			Files:     len(files),
		}
		if entries, err := transcript.LoadDirectoryTranscripts(projectDir, "", ""); err == nil {
			infos := converter.SessionInfos(transcript.DeduplicateEntries(entries))
			project.Sessions = len(infos)
			for _, info := range infos {
				project.Messages += info.MessageCount
				if info.LastTimestamp > project.LastTimestamp {
					project.LastTimestamp = info.LastTimestamp
				}
			}
		}
		projects = append(projects, project)
	}

	if len(projects) == 0 {
		return mcp.NewToolResultText("No projects with transcripts found"), nil
	}

	output, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal projects: %v", err)), nil
	}
	return mcp.NewToolResultText(string(output)), nil
}

// sessionEntry is one row of the list-sessions JSON output.
type sessionEntry struct {
	ID               string `json:"id"`
	Summary          string `json:"summary,omitempty"`
	FirstUserMessage string `json:"first_user_message,omitempty"`
	FirstTimestamp   string `json:"first_timestamp,omitempty"`
	LastTimestamp    string `json:"last_timestamp,omitempty"`
	Messages         int    `json:"messages"`
	InputTokens      int    `json:"input_tokens,omitempty"`
	OutputTokens     int    `json:"output_tokens,omitempty"`
	WorkingDir       string `json:"working_dir,omitempty"`
}

// handleListSessions lists the sessions of one project.
func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	project, ok := args["project"].(string)
	if !ok || project == "" {
		return mcp.NewToolResultError("missing or empty 'project' parameter"), nil
	}

	projectDir, errResult := s.resolveProject(project)
	if errResult != nil {
		return errResult, nil
	}

	entries, err := transcript.LoadDirectoryTranscripts(projectDir, "", "")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load transcripts: %v", err)), nil
	}
	infos := converter.SessionInfos(transcript.DeduplicateEntries(entries))
	if len(infos) == 0 {
		return mcp.NewToolResultText("No sessions found"), nil
	}

	sessions := make([]sessionEntry, 0, len(infos))
	for _, info := range infos {
		sessions = append(sessions, sessionEntry{
			ID:               info.ID,
			Summary:          info.Summary,
			FirstUserMessage: info.FirstUserMessage,
			FirstTimestamp:   info.FirstTimestamp,
			LastTimestamp:    info.LastTimestamp,
			Messages:         info.MessageCount,
			InputTokens:      info.TotalInputTokens,
			OutputTokens:     info.TotalOutputTokens,
			WorkingDir:       info.CWD,
		})
	}

	output, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal sessions: %v", err)), nil
	}
	return mcp.NewToolResultText(string(output)), nil
}

// handleExportSession renders one session to HTML or Markdown.
func (s *Server) handleExportSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	project, ok := args["project"].(string)
	if !ok || project == "" {
		return mcp.NewToolResultError("missing or empty 'project' parameter"), nil
	}
	sessionID, ok := args["session"].(string)
	if !ok || sessionID == "" {
		return mcp.NewToolResultError("missing or empty 'session' parameter"), nil
	}
	format := "html"
	if f, ok := args["format"].(string); ok && f != "" {
		format = f
	}

	projectDir, errResult := s.resolveProject(project)
	if errResult != nil {
		return errResult, nil
	}

	entries, err := transcript.LoadDirectoryTranscripts(projectDir, "", "")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load transcripts: %v", err)), nil
	}
	entries = transcript.DeduplicateEntries(entries)

	var sessionEntries []transcript.Entry
	for _, entry := range entries {
		if entry.SessionID == sessionID || entry.Type == "summary" {
			sessionEntries = append(sessionEntries, entry)
		}
	}
	found := false
	for _, entry := range sessionEntries {
		if entry.Type != "summary" {
			found = true
			break
		}
	}
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("session %s not found in project %s", sessionID, project)), nil
	}

	title := "Claude Transcript - " + sessionID
	content, err := converter.RenderEntries(title, sessionEntries, format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(content), nil
}

// resolveProject maps a project name to its directory, rejecting names that
// escape the projects root.
func (s *Server) resolveProject(project string) (string, *mcp.CallToolResult) {
	if project != filepath.Base(project) {
		return "", mcp.NewToolResultError("project must be a directory name, not a path")
	}
	projectDir := filepath.Join(s.projectsDir, project)
	if info, err := os.Stat(projectDir); err != nil || !info.IsDir() {
		return "", mcp.NewToolResultError(fmt.Sprintf("project %s not found", project))
	}
	return projectDir, nil
}
