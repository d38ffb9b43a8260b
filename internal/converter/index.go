package converter

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sync"
)

type projectIndexData struct {
	Projects   []projectIndexRow
	Stylesheet template.CSS
}

type projectIndexRow struct {
	Name         string
	Link         string
	Sessions     int
	Messages     int
	TotalTokens  int
	LastModified string
	WorkingDirs  string
}

var (
	indexOnce sync.Once
	indexTmpl *template.Template
	indexErr  error
)

func projectIndexPage() (*template.Template, error) {
	indexOnce.Do(func() {
		indexTmpl, indexErr = template.New("index").Parse(projectIndexTemplate)
	})
	return indexTmpl, indexErr
}

// writeProjectIndex renders the hierarchy index with per-project stats and
// links to each project's combined page.
func writeProjectIndex(outputPath string, results []ProjectResult) error {
	tmpl, err := projectIndexPage()
	if err != nil {
		return fmt.Errorf("failed to parse index template: %w", err)
	}

	root := filepath.Dir(outputPath)
	data := projectIndexData{Stylesheet: template.CSS(pageStylesheet)}
	for _, result := range results {
		link, err := filepath.Rel(root, result.OutputPath)
		if err != nil {
			link = result.OutputPath
		}
		dirs := ""
		for i, dir := range result.WorkingDirs {
			if i > 0 {
				dirs += ", "
			}
			dirs += dir
		}
		data.Projects = append(data.Projects, projectIndexRow{
			Name:         result.Name,
			Link:         filepath.ToSlash(link),
			Sessions:     result.Sessions,
			Messages:     result.Messages,
			TotalTokens:  result.TotalTokens,
			LastModified: formatTimestamp(result.LastModified),
			WorkingDirs:  dirs,
		})
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", outputPath, err)
	}
	defer file.Close()

	if err := tmpl.Execute(file, data); err != nil {
		return fmt.Errorf("failed to render index: %w", err)
	}
	return nil
}

const projectIndexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Claude Transcripts - Projects</title>
<style>{{.Stylesheet}}</style>
</head>
<body>
<h1>Claude Transcripts</h1>
{{if .Projects}}
<table class="project-table">
<thead>
<tr><th>Project</th><th>Sessions</th><th>Messages</th><th>Tokens</th><th>Last Activity</th></tr>
</thead>
<tbody>
{{range .Projects}}
<tr>
<td><a href="{{.Link}}">{{.Name}}</a>{{if .WorkingDirs}}<div class="project-dirs">{{.WorkingDirs}}</div>{{end}}</td>
<td>{{.Sessions}}</td>
<td>{{.Messages}}</td>
<td>{{.TotalTokens}}</td>
<td>{{.LastModified}}</td>
</tr>
{{end}}
</tbody>
</table>
{{else}}
<p>No projects with transcripts found.</p>
{{end}}
</body>
</html>
`
