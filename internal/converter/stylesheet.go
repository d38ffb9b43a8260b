package converter

// pageStylesheet is the embedded stylesheet for generated pages. The class
// names form a fixed vocabulary shared with the render package; renaming a
// class here requires the matching change there.
const pageStylesheet = `
:root {
  --bg: #fdfdfd;
  --fg: #1a1a1a;
  --border: #d8d8d8;
  --muted: #6a6a6a;
  --user-bg: #eef6ff;
  --assistant-bg: #f6f6f6;
  --tool-bg: #fbf6ec;
  --error-bg: #fdecec;
  --code-bg: #f2f0ec;
}

body {
  font-family: -apple-system, "Segoe UI", Roboto, sans-serif;
  margin: 0 auto;
  max-width: 60rem;
  padding: 1rem;
  background: var(--bg);
  color: var(--fg);
  line-height: 1.5;
}

.page-header h1 { font-size: 1.4rem; }

.session-nav {
  border: 1px solid var(--border);
  border-radius: 6px;
  padding: 0.5rem 1rem;
  margin-bottom: 1.5rem;
}
.session-nav ul { list-style: none; padding: 0; margin: 0; }
.session-nav-item { padding: 0.5rem 0; border-bottom: 1px solid var(--border); }
.session-nav-item:last-child { border-bottom: none; }
.session-nav-summary { font-weight: 600; display: block; }
.session-nav-preview { color: var(--muted); font-size: 0.9rem; }
.session-nav-meta { color: var(--muted); font-size: 0.8rem; display: flex; gap: 1rem; flex-wrap: wrap; }

.message {
  border: 1px solid var(--border);
  border-radius: 6px;
  margin: 0.75rem 0;
  padding: 0.5rem 0.75rem;
}
.message-header { display: flex; gap: 0.5rem; align-items: baseline; }
.message-title { font-weight: 600; }
.message-timestamp { margin-left: auto; color: var(--muted); font-size: 0.8rem; }
.message-body { margin-top: 0.35rem; overflow-x: auto; }
.token-usage { color: var(--muted); font-size: 0.8rem; margin-top: 0.35rem; }

.message.user { background: var(--user-bg); }
.message.assistant { background: var(--assistant-bg); }
.message.tool_use, .message.tool_result { background: var(--tool-bg); }
.message.tool_result.error { background: var(--error-bg); }
.message.system { background: #f0f0f8; }
.message.system-error { background: var(--error-bg); }
.message.thinking { background: #f4eefb; font-style: italic; }
.message.session_header { background: #e8e8e8; font-size: 1.05rem; }
.message.sidechain { margin-left: 2rem; }
.message.compacted .message-body { color: var(--muted); }

pre {
  background: var(--code-bg);
  padding: 0.5rem;
  border-radius: 4px;
  overflow-x: auto;
  white-space: pre-wrap;
  word-break: break-word;
}
code { background: var(--code-bg); padding: 0.1rem 0.25rem; border-radius: 3px; }

/* ANSI terminal colors */
.ansi-black { color: #3f3f3f; }
.ansi-red { color: #cc0000; }
.ansi-green { color: #4e9a06; }
.ansi-yellow { color: #c4a000; }
.ansi-blue { color: #3465a4; }
.ansi-magenta { color: #75507b; }
.ansi-cyan { color: #06989a; }
.ansi-white { color: #d3d7cf; }
.ansi-bright-black { color: #555753; }
.ansi-bright-red { color: #ef2929; }
.ansi-bright-green { color: #8ae234; }
.ansi-bright-yellow { color: #fce94f; }
.ansi-bright-blue { color: #729fcf; }
.ansi-bright-magenta { color: #ad7fa8; }
.ansi-bright-cyan { color: #34e2e2; }
.ansi-bright-white { color: #eeeeec; }
.ansi-bg-black { background-color: #3f3f3f; }
.ansi-bg-red { background-color: #cc0000; }
.ansi-bg-green { background-color: #4e9a06; }
.ansi-bg-yellow { background-color: #c4a000; }
.ansi-bg-blue { background-color: #3465a4; }
.ansi-bg-magenta { background-color: #75507b; }
.ansi-bg-cyan { background-color: #06989a; }
.ansi-bg-white { background-color: #d3d7cf; }
.ansi-bg-bright-black { background-color: #555753; }
.ansi-bg-bright-red { background-color: #ef2929; }
.ansi-bg-bright-green { background-color: #8ae234; }
.ansi-bg-bright-yellow { background-color: #fce94f; }
.ansi-bg-bright-blue { background-color: #729fcf; }
.ansi-bg-bright-magenta { background-color: #ad7fa8; }
.ansi-bg-bright-cyan { background-color: #34e2e2; }
.ansi-bg-bright-white { background-color: #eeeeec; }
.ansi-bold { font-weight: bold; }
.ansi-dim { opacity: 0.7; }
.ansi-italic { font-style: italic; }
.ansi-underline { text-decoration: underline; }

/* Syntax highlighting (chroma standard short classes) */
.highlight pre { margin: 0; }
.highlighttable { border-spacing: 0; width: 100%; }
.highlighttable .linenos { color: var(--muted); padding-right: 0.75rem; text-align: right; user-select: none; vertical-align: top; }
.highlighttable .code { width: 100%; vertical-align: top; }
.highlight .k, .highlight .kn, .highlight .kd, .highlight .kr { color: #204a87; font-weight: bold; }
.highlight .kt { color: #204a87; }
.highlight .s, .highlight .s1, .highlight .s2, .highlight .sb { color: #4e9a06; }
.highlight .c, .highlight .c1, .highlight .cm { color: #8f5902; font-style: italic; }
.highlight .m, .highlight .mi, .highlight .mf { color: #0000cf; }
.highlight .nf, .highlight .nc { color: #000000; font-weight: bold; }
.highlight .o { color: #ce5c00; }
.highlight .nb { color: #204a87; }

/* Diffs */
.edit-diff { font-family: ui-monospace, monospace; font-size: 0.85rem; background: var(--code-bg); border-radius: 4px; padding: 0.25rem; }
.diff-line { white-space: pre-wrap; word-break: break-word; padding: 0 0.25rem; }
.diff-line.diff-removed { background: #fdd; }
.diff-line.diff-added { background: #dfd; }
.diff-line.diff-context { color: var(--muted); }
.diff-marker { user-select: none; margin-right: 0.25rem; }
mark.diff-char-removed { background: #f8a0a0; }
mark.diff-char-added { background: #90e890; }

/* Collapsibles */
details.collapsible-code, details.collapsible-details { border: 1px dashed var(--border); border-radius: 4px; padding: 0.25rem; }
details summary { cursor: pointer; }
details summary .line-count { color: var(--muted); font-size: 0.8rem; margin-right: 0.5rem; }
details .preview-content { display: inline-block; max-width: 100%; vertical-align: top; }
details[open] summary .preview-content { display: none; }
details .code-full, details .details-content { margin-top: 0.25rem; }

/* Tool formatting */
.tool-params-table { border-collapse: collapse; width: 100%; }
.tool-params-table td { border: 1px solid var(--border); padding: 0.25rem 0.5rem; vertical-align: top; }
.tool-param-key { font-family: ui-monospace, monospace; white-space: nowrap; }
.bash-tool-command { background: #2d2d2d; color: #e8e8e8; }
.todo-list { display: flex; flex-direction: column; gap: 0.25rem; }
.todo-item { display: flex; gap: 0.5rem; align-items: baseline; }
.todo-item.completed .todo-content { text-decoration: line-through; color: var(--muted); }
.todo-id { color: var(--muted); font-size: 0.8rem; margin-left: auto; }
.question-block { margin: 0.5rem 0; }
.qa-label { font-weight: 600; }
.qa-label.answer { color: #4e9a06; }
.question-options { margin: 0.25rem 0 0.25rem 1rem; }
.system-reminder { color: var(--muted); font-size: 0.85rem; margin-top: 0.25rem; }
.multiedit-file-path, .edit-replace-all { font-weight: 600; margin-bottom: 0.25rem; }
.tool-result-image { max-width: 100%; border: 1px solid var(--border); border-radius: 4px; }

/* Project index */
.project-table { border-collapse: collapse; width: 100%; }
.project-table th, .project-table td { border: 1px solid var(--border); padding: 0.35rem 0.6rem; text-align: left; }
.project-table td.num { text-align: right; font-variant-numeric: tabular-nums; }
`
