package transcript

import (
	"encoding/json"
	"strings"
	"time"
)

// Entry is one line of a session JSONL log. The envelope is shared across
// entry types; type-specific fields stay zero-valued for the others.
type Entry struct {
	Type        string `json:"type"`
	ParentUUID  string `json:"parentUuid,omitempty"`
	IsSidechain bool   `json:"isSidechain,omitempty"`
	UserType    string `json:"userType,omitempty"`
	CWD         string `json:"cwd,omitempty"`
	SessionID   string `json:"sessionId,omitempty"`
	Version     string `json:"version,omitempty"`
	GitBranch   string `json:"gitBranch,omitempty"`
	UUID        string `json:"uuid,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
	IsMeta      bool   `json:"isMeta,omitempty"`
	AgentID     string `json:"agentId,omitempty"`
	RequestID   string `json:"requestId,omitempty"`

	// System entries.
	Level   string `json:"level,omitempty"`
	Content string `json:"content,omitempty"`

	// Summary entries carry no timestamp or uuid; leafUuid points at the
	// last entry of the summarized session.
	Summary  string `json:"summary,omitempty"`
	LeafUUID string `json:"leafUuid,omitempty"`

	Message *Message `json:"message,omitempty"`

	// Raw tool result payload attached to user entries; may carry a nested
	// agentId reference.
	ToolUseResult json.RawMessage `json:"toolUseResult,omitempty"`
}

// Message is the user/assistant message body.
type Message struct {
	Role    string       `json:"role,omitempty"`
	ID      string       `json:"id,omitempty"`
	Model   string       `json:"model,omitempty"`
	Usage   *Usage       `json:"usage,omitempty"`
	Content ContentItems `json:"content"`
}

// Usage is the assistant token accounting block.
type Usage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
}

// ContentItems is a message content list. The wire format is either a bare
// string (plain user text) or an array of typed items; both decode into the
// list form.
type ContentItems []ContentItem

func (c *ContentItems) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*c = ContentItems{{Type: "text", Text: text}}
		return nil
	}
	var items []ContentItem
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*c = items
	return nil
}

// ContentItem is one typed content block: text, thinking, image, tool_use
// or tool_result.
type ContentItem struct {
	Type     string       `json:"type"`
	Text     string       `json:"text,omitempty"`
	Thinking string       `json:"thinking,omitempty"`
	Source   *ImageSource `json:"source,omitempty"`

	// tool_use fields.
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`

	// tool_result fields.
	ToolUseID string        `json:"tool_use_id,omitempty"`
	Content   ResultContent `json:"content,omitempty"`
	IsError   bool          `json:"is_error,omitempty"`
}

// ImageSource is an embedded base64 image payload.
type ImageSource struct {
	Type      string `json:"type,omitempty"`
	MediaType string `json:"media_type,omitempty"`
	Data      string `json:"data,omitempty"`
}

// ResultContent is a tool_result body: either a plain string or a list of
// structured parts (text and image items).
type ResultContent struct {
	Text       string
	Parts      []ResultPart
	Structured bool
}

// ResultPart is one structured tool-result part.
type ResultPart struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *ImageSource `json:"source,omitempty"`
}

func (r *ResultContent) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		r.Text = text
		return nil
	}
	var parts []ResultPart
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	r.Parts = parts
	r.Structured = true
	return nil
}

func (r ResultContent) MarshalJSON() ([]byte, error) {
	if r.Structured {
		return json.Marshal(r.Parts)
	}
	return json.Marshal(r.Text)
}

// PlainText flattens the result content to text: the string itself, or the
// joined text parts of structured content.
func (r ResultContent) PlainText() string {
	if !r.Structured {
		return r.Text
	}
	var texts []string
	for _, part := range r.Parts {
		if part.Type == "text" {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// HasImages reports whether structured content carries any image parts.
func (r ResultContent) HasImages() bool {
	for _, part := range r.Parts {
		if part.Type == "image" {
			return true
		}
	}
	return false
}

// TextContent extracts the joined plain text blocks of a message.
func (m *Message) TextContent() string {
	if m == nil {
		return ""
	}
	var texts []string
	for _, item := range m.Content {
		if item.Type == "text" {
			texts = append(texts, item.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// ParseTimestamp parses an entry's RFC3339 timestamp. Returns the zero time
// when the timestamp is missing or malformed.
func ParseTimestamp(timestamp string) time.Time {
	if timestamp == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}
