package tui

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Disable color output so rendered strings compare cleanly.
	lipgloss.Writer.Profile = colorprofile.Ascii
}

func keyPress(key string) tea.KeyPressMsg {
	switch key {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	}
	return tea.KeyPressMsg{Text: key}
}

func TestAppStartsOnProjectSelector(t *testing.T) {
	app := NewApp(context.Background(), t.TempDir(), false, nil)
	assert.Equal(t, screenProjects, app.screen)

	cmd := app.Init()
	require.NotNil(t, cmd, "Init must kick off the project scan")
	assert.True(t, app.loading)
}

func TestAppSingleProjectSkipsSelector(t *testing.T) {
	dir := t.TempDir()
	app := NewApp(context.Background(), dir, true, nil)
	assert.Equal(t, screenSessions, app.screen)
	assert.Equal(t, dir, app.sessions.projectDir)
}

func TestAppProjectsLoadedStopsSpinner(t *testing.T) {
	app := NewApp(context.Background(), t.TempDir(), false, nil)
	app.Init()

	model, _ := app.Update(projectsLoadedMsg{rows: []ProjectRow{{Name: "demo", Dir: "/tmp/demo"}}})
	app = model.(*App)

	assert.False(t, app.loading)
	require.Len(t, app.projects.rows, 1)
	assert.Equal(t, "demo", app.projects.rows[0].Name)
}

func TestAppEnterOpensSessions(t *testing.T) {
	app := NewApp(context.Background(), t.TempDir(), false, nil)
	app.Update(projectsLoadedMsg{rows: []ProjectRow{{Name: "demo", Dir: "/tmp/demo"}}})

	model, cmd := app.Update(keyPress("enter"))
	app = model.(*App)

	assert.Equal(t, screenSessions, app.screen)
	require.NotNil(t, cmd, "selecting a project must load its sessions")
	assert.True(t, app.loading)
}

func TestAppEscFromSessionsReturnsToProjects(t *testing.T) {
	app := NewApp(context.Background(), t.TempDir(), false, nil)
	app.screen = screenSessions

	model, _ := app.Update(keyPress("esc"))
	app = model.(*App)

	assert.Equal(t, screenProjects, app.screen)
	assert.False(t, app.quitting)
}

func TestAppEscFromSingleProjectQuits(t *testing.T) {
	app := NewApp(context.Background(), t.TempDir(), true, nil)

	model, cmd := app.Update(keyPress("esc"))
	app = model.(*App)

	assert.True(t, app.quitting)
	require.NotNil(t, cmd)
}

func TestAppViewerLoadedSwitchesScreen(t *testing.T) {
	app := NewApp(context.Background(), t.TempDir(), false, nil)
	app.screen = screenSessions
	app.width = 80
	app.height = 24

	items := []MessageItem{
		&UserMessageItem{id: "user-0", content: "hello"},
	}
	model, _ := app.Update(viewerLoadedMsg{title: "demo session", items: items})
	app = model.(*App)

	assert.Equal(t, screenViewer, app.screen)
	assert.Equal(t, "demo session", app.viewer.title)
	require.Len(t, app.viewer.list.Items(), 1)
}

func TestAppViewerEscReturnsToSessions(t *testing.T) {
	app := NewApp(context.Background(), t.TempDir(), false, nil)
	app.screen = screenViewer

	model, _ := app.Update(keyPress("q"))
	app = model.(*App)

	assert.Equal(t, screenSessions, app.screen)
}

func TestAppWindowSizeResizesViewer(t *testing.T) {
	app := NewApp(context.Background(), t.TempDir(), false, nil)

	model, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	app = model.(*App)

	assert.Equal(t, 100, app.width)
	assert.Equal(t, 40, app.height)
	assert.Equal(t, 38, app.contentHeight(), "header and status bar each take one row")
}

func TestAppStatusMessage(t *testing.T) {
	app := NewApp(context.Background(), t.TempDir(), false, nil)

	model, _ := app.Update(statusMsg{text: "Wrote /tmp/out.html"})
	app = model.(*App)

	line := app.statusLine(80)
	assert.Contains(t, line, "Wrote /tmp/out.html")
}

func TestAppGenerateFailureShowsError(t *testing.T) {
	app := NewApp(context.Background(), t.TempDir(), false, nil)
	app.loading = true

	model, cmd := app.Update(generateDoneMsg{err: assert.AnError})
	app = model.(*App)

	assert.False(t, app.loading)
	assert.Contains(t, app.status, "generate failed")
	assert.Nil(t, cmd, "a failed generation must not open the browser")
}
