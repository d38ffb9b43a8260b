package converter

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Transcript user entries carry special payloads inline as pseudo-XML tags.
// These helpers detect and unpack them; each one is a narrow pure function
// over the raw text.

var (
	commandNamePattern     = regexp.MustCompile(`<command-name>([^<]+)</command-name>`)
	commandArgsPattern     = regexp.MustCompile(`<command-args>([^<]*)</command-args>`)
	commandContentsPattern = regexp.MustCompile(`(?s)<command-contents>(.+?)</command-contents>`)
	commandStdoutPattern   = regexp.MustCompile(`(?s)<local-command-stdout>(.*?)</local-command-stdout>`)
	bashInputPattern       = regexp.MustCompile(`(?s)<bash-input>(.*?)</bash-input>`)
	bashStdoutPattern      = regexp.MustCompile(`(?s)<bash-stdout>(.*?)</bash-stdout>`)
	bashStderrPattern      = regexp.MustCompile(`(?s)<bash-stderr>(.*?)</bash-stderr>`)
	markdownHeaderPattern  = regexp.MustCompile(`(?m)^#+\s+`)
)

// compactedSummaryPrefix opens the synthetic user message injected when a
// session is continued after running out of context.
const compactedSummaryPrefix = "This session is being continued from a previous conversation that ran out of context"

const caveatPrefix = "Caveat: The messages below were generated by the user while running local commands"

func isCommandMessage(text string) bool {
	return strings.Contains(text, "<command-name>") && strings.Contains(text, "<command-message>")
}

func isLocalCommandOutput(text string) bool {
	return strings.Contains(text, "<local-command-stdout>")
}

func isBashInput(text string) bool {
	return strings.Contains(text, "<bash-input>") && strings.Contains(text, "</bash-input>")
}

func isBashOutput(text string) bool {
	return strings.Contains(text, "<bash-stdout>") || strings.Contains(text, "<bash-stderr>")
}

func isCompactedSummary(text string) bool {
	return strings.HasPrefix(text, compactedSummaryPrefix)
}

// isSystemText reports whether the text is tool-injected rather than typed
// by the user: the local-commands caveat banner or command tag payloads.
func isSystemText(text string) bool {
	return strings.HasPrefix(text, caveatPrefix) ||
		strings.Contains(text, "<command-name>") ||
		strings.Contains(text, "<local-command-stdout>")
}

// shouldSkipText drops system banners that carry nothing renderable; command
// invocations and their output stay.
func shouldSkipText(text string) bool {
	return isSystemText(text) && !isCommandMessage(text) && !isLocalCommandOutput(text)
}

// slashCommand is a parsed slash command invocation.
type slashCommand struct {
	Name     string
	Args     string
	Contents string
}

// parseSlashCommand unpacks command tags. Contents can be a JSON object with
// a "text" field or plain text.
func parseSlashCommand(text string) (slashCommand, bool) {
	nameMatch := commandNamePattern.FindStringSubmatch(text)
	if nameMatch == nil {
		return slashCommand{}, false
	}

	cmd := slashCommand{Name: strings.TrimSpace(nameMatch[1])}
	if argsMatch := commandArgsPattern.FindStringSubmatch(text); argsMatch != nil {
		cmd.Args = strings.TrimSpace(argsMatch[1])
	}
	if contentsMatch := commandContentsPattern.FindStringSubmatch(text); contentsMatch != nil {
		contents := strings.TrimSpace(contentsMatch[1])
		var structured struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal([]byte(contents), &structured); err == nil && structured.Text != "" {
			contents = structured.Text
		}
		cmd.Contents = contents
	}
	return cmd, true
}

// parseCommandOutput extracts local command stdout, reporting whether it
// looks like markdown (leading headers) so the caller can pick a renderer.
func parseCommandOutput(text string) (stdout string, isMarkdown, ok bool) {
	match := commandStdoutPattern.FindStringSubmatch(text)
	if match == nil {
		return "", false, false
	}
	stdout = strings.TrimSpace(match[1])
	return stdout, markdownHeaderPattern.MatchString(stdout), true
}

func parseBashInput(text string) (string, bool) {
	match := bashInputPattern.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	return strings.TrimSpace(match[1]), true
}

// parseBashOutput extracts stdout and stderr from an interactive bash echo.
func parseBashOutput(text string) (stdout, stderr string, ok bool) {
	stdoutMatch := bashStdoutPattern.FindStringSubmatch(text)
	stderrMatch := bashStderrPattern.FindStringSubmatch(text)
	if stdoutMatch == nil && stderrMatch == nil {
		return "", "", false
	}
	if stdoutMatch != nil {
		stdout = strings.TrimSpace(stdoutMatch[1])
	}
	if stderrMatch != nil {
		stderr = strings.TrimSpace(stderrMatch[1])
	}
	return stdout, stderr, true
}

// firstUserMessagePreviewLength bounds session preview text.
const firstUserMessagePreviewLength = 1000

// usableAsSessionStarter reports whether a user text should seed the session
// preview. Warmup pings, system banners and slash commands (except /init,
// which genuinely opens sessions) are not representative.
func usableAsSessionStarter(text string) bool {
	if strings.TrimSpace(text) == "Warmup" {
		return false
	}
	if strings.Contains(text, "<command-name>") {
		return strings.Contains(text, "<command-name>init")
	}
	return !isSystemText(text)
}

// sessionPreview builds the truncated first-user-message preview.
func sessionPreview(text string) string {
	if strings.Contains(text, "<command-name>init") && strings.Contains(text, "<command-contents>") {
		return "Claude Initializes Codebase Documentation Guide (/init command)"
	}
	return truncateRunes(text, firstUserMessagePreviewLength)
}
