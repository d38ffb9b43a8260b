package converter

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

// PageData feeds the transcript page template.
type PageData struct {
	Title      string
	Messages   []MessageBlock
	Sessions   []SessionInfo
	Stylesheet template.CSS
}

var (
	pageOnce sync.Once
	pageTmpl *template.Template
	pageErr  error
)

func transcriptPage() (*template.Template, error) {
	pageOnce.Do(func() {
		pageTmpl, pageErr = template.New("transcript").Parse(pageTemplate)
	})
	return pageTmpl, pageErr
}

// RenderPage assembles the full HTML page: session navigation sidebar,
// message blocks and the embedded stylesheet.
func RenderPage(title string, blocks []MessageBlock, sessions []SessionInfo) (string, error) {
	tmpl, err := transcriptPage()
	if err != nil {
		return "", fmt.Errorf("failed to parse page template: %w", err)
	}

	// Sessions without a user message are agent-only scaffolding and stay
	// out of the navigation.
	var nav []SessionInfo
	for _, s := range sessions {
		if s.FirstUserMessage != "" {
			nav = append(nav, s)
		}
	}

	var out strings.Builder
	data := PageData{
		Title:      title,
		Messages:   blocks,
		Sessions:   nav,
		Stylesheet: template.CSS(pageStylesheet),
	}
	if err := tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("failed to render page: %w", err)
	}
	return out.String(), nil
}

// TimestampRange renders the session's time span for the nav sidebar.
func (s SessionInfo) TimestampRange() string {
	return formatTimestampRange(s.FirstTimestamp, s.LastTimestamp)
}

// Preview is the nav entry's first-user-message text with a fallback label.
func (s SessionInfo) Preview() string {
	if s.FirstUserMessage == "" {
		return "[No user message found in session.]"
	}
	return s.FirstUserMessage
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>{{.Stylesheet}}</style>
</head>
<body>
<header class="page-header">
  <h1>{{.Title}}</h1>
</header>
{{if gt (len .Sessions) 1}}
<nav class="session-nav">
  <h2>Sessions</h2>
  <ul>
  {{range .Sessions}}
    <li class="session-nav-item">
      <a href="#session-{{.ID}}">
        {{if .Summary}}<span class="session-nav-summary">{{.Summary}}</span>{{end}}
        <span class="session-nav-preview">{{.Preview}}</span>
      </a>
      <div class="session-nav-meta">
        <span class="session-nav-range">{{.TimestampRange}}</span>
        <span class="session-nav-count">{{.MessageCount}} messages</span>
        {{with .TokenSummary}}<span class="session-nav-tokens">{{.}}</span>{{end}}
      </div>
    </li>
  {{end}}
  </ul>
</nav>
{{end}}
<main class="messages">
{{range .Messages}}
  {{if .IsSessionHeader}}
  <div class="message {{.CSSClass}}" id="session-{{.SessionID}}">
    <div class="message-header">
      <span class="message-emoji">{{.Emoji}}</span>
      <span class="message-title">{{.Title}}</span>
    </div>
  </div>
  {{else}}
  <div class="message {{.CSSClass}}" id="m-{{.Index}}">
    <div class="message-header">
      <span class="message-emoji">{{.Emoji}}</span>
      <span class="message-title">{{.Title}}</span>
      {{with .Timestamp}}<span class="message-timestamp">{{.}}</span>{{end}}
    </div>
    <div class="message-body">{{.HTML}}</div>
    {{with .TokenLine}}<div class="token-usage">{{.}}</div>{{end}}
  </div>
  {{end}}
{{end}}
</main>
</body>
</html>
`
