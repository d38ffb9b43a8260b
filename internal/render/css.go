package render

import "strings"

// ContentKind is the closed set of message content kinds the renderer knows
// how to classify. External stylesheets depend on the exact class names
// derived from these, so the set and the mapping below are fixed vocabulary.
type ContentKind int

const (
	KindUnknown ContentKind = iota
	KindSystem
	KindUser
	KindSlashCommand
	KindCommandOutput
	KindCompactedSummary
	KindAssistant
	KindToolUse
	KindToolResult
	KindThinking
	KindSessionHeader
	KindBashInput
	KindBashOutput
	KindImage
)

var kindClasses = map[ContentKind][]string{
	KindUnknown:          {"unknown"},
	KindSystem:           {"system"},
	KindUser:             {"user"},
	KindSlashCommand:     {"user", "slash-command"},
	KindCommandOutput:    {"user", "command-output"},
	KindCompactedSummary: {"user", "compacted"},
	KindAssistant:        {"assistant"},
	KindToolUse:          {"tool_use"},
	KindToolResult:       {"tool_result"},
	KindThinking:         {"thinking"},
	KindSessionHeader:    {"session_header"},
	KindBashInput:        {"bash-input"},
	KindBashOutput:       {"bash-output"},
	KindImage:            {"image"},
}

// ClassModifiers are the cross-cutting flags layered on top of the base kind.
type ClassModifiers struct {
	SystemLevel string // system messages carry their level as "system-<level>"
	IsError     bool   // tool results flagged as errors
	IsSidechain bool   // messages from a sub-agent sidechain
}

// CSSClasses returns the space-separated class string for a content kind:
// base classes from the registry, then kind-specific modifiers, then
// cross-cutting flags.
func CSSClasses(kind ContentKind, mods ClassModifiers) string {
	parts := append([]string(nil), kindClasses[kind]...)
	if len(parts) == 0 {
		parts = []string{"unknown"}
	}

	if kind == KindSystem && mods.SystemLevel != "" {
		parts = append(parts, "system-"+mods.SystemLevel)
	}
	if kind == KindToolResult && mods.IsError {
		parts = append(parts, "error")
	}
	if mods.IsSidechain {
		parts = append(parts, "sidechain")
	}

	return strings.Join(parts, " ")
}

// MessageEmoji returns the emoji shown next to a message of the given kind.
// Command output stays neutral since it can come from a built-in or a user
// command.
func MessageEmoji(kind ContentKind, mods ClassModifiers) string {
	switch kind {
	case KindSessionHeader:
		return "📋"
	case KindUser, KindSlashCommand, KindCompactedSummary:
		return "🤷"
	case KindCommandOutput:
		return ""
	case KindBashInput:
		return "💻"
	case KindAssistant:
		if mods.IsSidechain {
			return "🔗"
		}
		return "🤖"
	case KindSystem:
		return "⚙️"
	case KindToolUse:
		return "🛠️"
	case KindToolResult:
		if mods.IsError {
			return "🚨"
		}
		return "🧰"
	case KindThinking:
		return "💭"
	case KindImage:
		return "🖼️"
	}
	return ""
}
