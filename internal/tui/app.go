package tui

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	lipglossv2 "charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/mark3labs/transcriptr/internal/cache"
	"github.com/mark3labs/transcriptr/internal/tui/theme"
)

// screen identifies which browser screen is active.
type screen int

const (
	screenProjects screen = iota
	screenSessions
	screenViewer
)

// App is the main Bubbletea model for the transcript browser. It moves
// between three screens: project list, session list and transcript viewer.
type App struct {
	ctx           context.Context
	root          string // projects root (or a single project directory)
	singleProject bool   // true when root is one project, not the projects root
	cache         *cache.Manager

	screen   screen
	projects *ProjectsScreen
	sessions *SessionsScreen
	viewer   *ViewerScreen

	width    int
	height   int
	status   string // transient status line text
	spin     Spinner
	loading  bool // spinner ticks only while a load is in flight
	quitting bool
}

// NewApp creates the browser rooted at the given directory. When
// singleProject is true the app starts on the session list and never shows
// the project selector.
func NewApp(ctx context.Context, root string, singleProject bool, mgr *cache.Manager) *App {
	app := &App{
		ctx:           ctx,
		root:          root,
		singleProject: singleProject,
		cache:         mgr,
		projects:      NewProjectsScreen(),
		sessions:      NewSessionsScreen(),
		viewer:        NewViewerScreen(),
		spin:          NewDefaultSpinner(),
	}
	if singleProject {
		app.screen = screenSessions
		app.sessions.projectDir = root
	}
	return app
}

// Run starts the browser and blocks until the user quits.
func Run(ctx context.Context, root string, singleProject bool, mgr *cache.Manager) error {
	app := NewApp(ctx, root, singleProject, mgr)
	p := tea.NewProgram(app)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("browser failed: %w", err)
	}
	return nil
}

// Init loads the first screen's data.
func (a *App) Init() tea.Cmd {
	a.loading = true
	if a.singleProject {
		return tea.Batch(a.sessions.load(a.ctx, a.root, a.cache, false), a.spin.Tick())
	}
	return tea.Batch(a.projects.load(a.ctx, a.root, a.cache), a.spin.Tick())
}

// startLoading sets the status line and runs cmd with the spinner ticking.
func (a *App) startLoading(text string, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	a.status = text
	a.loading = true
	return a, tea.Batch(cmd, a.spin.Tick())
}

// Update handles incoming messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return a.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.viewer.setSize(a.width, a.contentHeight())
		return a, nil

	case spinner.TickMsg:
		cmd := a.spin.Update(msg)
		if a.loading {
			return a, cmd
		}
		return a, nil

	case projectsLoadedMsg:
		a.status = ""
		a.loading = false
		a.projects.setRows(msg.rows, msg.err)
		return a, nil

	case sessionsLoadedMsg:
		a.status = ""
		a.loading = false
		a.sessions.setRows(msg.projectDir, msg.rows, msg.err)
		return a, nil

	case viewerLoadedMsg:
		a.status = ""
		a.loading = false
		a.viewer.setContent(msg.title, msg.items, msg.err)
		a.viewer.setSize(a.width, a.contentHeight())
		a.screen = screenViewer
		return a, nil

	case generateDoneMsg:
		a.loading = false
		if msg.err != nil {
			a.status = fmt.Sprintf("generate failed: %v", msg.err)
			return a, nil
		}
		a.status = "Wrote " + msg.path
		return a, openInBrowser(msg.path)

	case editorFinishedMsg:
		if msg.err != nil {
			a.status = fmt.Sprintf("editor failed: %v", msg.err)
		}
		return a, nil

	case statusMsg:
		a.status = msg.text
		return a, nil
	}

	return a, nil
}

// handleKeyPress routes keys to the active screen.
func (a *App) handleKeyPress(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		a.quitting = true
		return a, tea.Quit
	}

	switch a.screen {
	case screenProjects:
		return a.handleProjectsKeys(msg)
	case screenSessions:
		return a.handleSessionsKeys(msg)
	case screenViewer:
		return a.handleViewerKeys(msg)
	}
	return a, nil
}

func (a *App) handleProjectsKeys(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		a.quitting = true
		return a, tea.Quit
	case "up", "k":
		a.projects.moveCursor(-1)
	case "down", "j":
		a.projects.moveCursor(1)
	case "enter":
		row := a.projects.selected()
		if row == nil {
			return a, nil
		}
		a.screen = screenSessions
		return a.startLoading("Loading sessions…", a.sessions.load(a.ctx, row.Dir, a.cache, false))
	case "r":
		return a.startLoading("Scanning projects…", a.projects.load(a.ctx, a.root, a.cache))
	}
	return a, nil
}

func (a *App) handleSessionsKeys(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		if a.singleProject {
			a.quitting = true
			return a, tea.Quit
		}
		a.screen = screenProjects
		return a, nil
	case "up", "k":
		a.sessions.moveCursor(-1)
	case "down", "j":
		a.sessions.moveCursor(1)
	case "enter":
		row := a.sessions.selected()
		if row == nil {
			return a, nil
		}
		return a.startLoading("Loading transcript…", a.viewer.load(row))
	case "g":
		row := a.sessions.selected()
		if row == nil {
			return a, nil
		}
		return a.startLoading("Generating HTML…", generateHTML(a.ctx, row.File, a.cache))
	case "e":
		row := a.sessions.selected()
		if row == nil {
			return a, nil
		}
		return a, openInEditor(row.File)
	case "r":
		return a.startLoading("Refreshing…", a.sessions.load(a.ctx, a.sessions.projectDir, a.cache, true))
	}
	return a, nil
}

func (a *App) handleViewerKeys(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		a.screen = screenSessions
		return a, nil
	case "up", "k":
		a.viewer.list.MoveSelection(-1)
	case "down", "j":
		a.viewer.list.MoveSelection(1)
	case "enter":
		a.viewer.toggleSelected()
	default:
		return a, a.viewer.list.Update(msg)
	}
	return a, nil
}

// contentHeight is the rows available between the header and status bar.
func (a *App) contentHeight() int {
	h := a.height - 2
	if h < 1 {
		h = 1
	}
	return h
}

// View renders the current view. In Bubbletea v2 this returns tea.View
// with display options like AltScreen.
func (a *App) View() tea.View {
	var view tea.View
	view.AltScreen = true

	if a.quitting {
		view.AltScreen = false
		view.Content = lipglossv2.NewLayer("")
		return view
	}

	canvas := uv.NewScreenBuffer(a.width, a.height)
	a.Draw(canvas, canvas.Bounds())

	view.Content = lipglossv2.NewLayer(canvas.Render())
	view.BackgroundColor = lipglossv2.Color(theme.Current().BgBase)
	return view
}

// Draw renders the active screen plus header and status bar to the canvas.
func (a *App) Draw(scr uv.Screen, area uv.Rectangle) {
	if area.Dx() == 0 || area.Dy() == 0 {
		return
	}

	header := uv.Rect(area.Min.X, area.Min.Y, area.Dx(), 1)
	content := uv.Rect(area.Min.X, area.Min.Y+1, area.Dx(), area.Dy()-2)
	statusBar := uv.Rect(area.Min.X, area.Max.Y-1, area.Dx(), 1)

	uv.NewStyledString(a.headerLine(area.Dx())).Draw(scr, header)

	var body string
	switch a.screen {
	case screenProjects:
		body = a.projects.view(content.Dx(), content.Dy())
	case screenSessions:
		body = a.sessions.view(content.Dx(), content.Dy())
	case screenViewer:
		body = a.viewer.view()
	}
	uv.NewStyledString(body).Draw(scr, content)

	uv.NewStyledString(a.statusLine(statusBar.Dx())).Draw(scr, statusBar)
}

func (a *App) headerLine(width int) string {
	s := theme.Current().S()
	title := s.HeaderTitle.Render("transcriptr")

	var crumb string
	switch a.screen {
	case screenProjects:
		crumb = "projects"
	case screenSessions:
		crumb = a.sessions.title()
	case screenViewer:
		crumb = a.viewer.title
	}
	line := title + " " + s.HeaderMeta.Render("· "+crumb)
	if lipglossv2.Width(line) > width {
		return title
	}
	return line
}

func (a *App) statusLine(width int) string {
	s := theme.Current().S()
	if a.status != "" {
		text := a.status
		if a.loading {
			text = a.spin.View() + " " + text
		}
		return s.StatusBar.Width(width).Render(text)
	}

	var hints [][2]string
	switch a.screen {
	case screenProjects:
		hints = [][2]string{{"↑↓", "move"}, {"enter", "open"}, {"r", "rescan"}, {"q", "quit"}}
	case screenSessions:
		hints = [][2]string{{"↑↓", "move"}, {"enter", "view"}, {"g", "html"}, {"e", "edit"}, {"r", "refresh"}, {"q", "back"}}
	case screenViewer:
		hints = [][2]string{{"↑↓", "select"}, {"enter", "expand"}, {"pgup/pgdn", "scroll"}, {"q", "back"}}
	}

	var parts []string
	for _, h := range hints {
		parts = append(parts, s.HintKey.Render(h[0])+" "+s.HintLabel.Render(h[1]))
	}
	return s.StatusBar.Width(width).Render(strings.Join(parts, "  "))
}

// statusMsg updates the transient status line.
type statusMsg struct {
	text string
}

// editorFinishedMsg is sent when the external editor exits.
type editorFinishedMsg struct {
	err error
}

// openInBrowser opens the given file with the platform opener.
func openInBrowser(path string) tea.Cmd {
	return func() tea.Msg {
		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", path)
		case "windows":
			cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
		default:
			cmd = exec.Command("xdg-open", path)
		}
		if err := cmd.Start(); err != nil {
			return statusMsg{text: fmt.Sprintf("open failed: %v", err)}
		}
		return nil
	}
}
