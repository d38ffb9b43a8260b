package render

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// RenderParamsTable renders a parameter map as an HTML table. This is the
// generic fallback for tool inputs without a specialized formatter, and is
// reusable for any structured key/value payload. Keys render in sorted order
// so output is deterministic.
func RenderParamsTable(params map[string]any) string {
	if len(params) == 0 {
		return "<div class='tool-params-empty'>No parameters</div>"
	}

	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var out strings.Builder
	out.WriteString("<table class='tool-params-table'>")
	for _, key := range keys {
		out.WriteString("<tr><td class='tool-param-key'>")
		out.WriteString(EscapeHTML(key))
		out.WriteString("</td><td class='tool-param-value'>")
		out.WriteString(renderParamValue(params[key]))
		out.WriteString("</td></tr>")
	}
	out.WriteString("</table>")
	return out.String()
}

// renderParamValue renders one parameter value. Structured values render as
// pretty-printed JSON, collapsible when long; simple values render inline,
// collapsible when long. JSON marshalling failures fall back to the escaped
// string form.
func renderParamValue(value any) string {
	switch value.(type) {
	case map[string]any, []any:
		formatted, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return EscapeHTML(fmt.Sprintf("%v", value))
		}
		escaped := EscapeHTML(string(formatted))
		if len(formatted) > 200 {
			preview := EscapeHTML(prefixChars(string(formatted), 100)) + "..."
			return "<details class='tool-param-collapsible'><summary>" + preview + "</summary>" +
				"<pre class='tool-param-structured'>" + escaped + "</pre></details>"
		}
		return "<pre class='tool-param-structured'>" + escaped + "</pre>"
	default:
		text := fmt.Sprintf("%v", value)
		escaped := EscapeHTML(text)
		if len(text) > 100 {
			preview := EscapeHTML(prefixChars(text, 80)) + "..."
			return "<details class='tool-param-collapsible'><summary>" + preview + "</summary>" +
				"<div class='tool-param-full'>" + escaped + "</div></details>"
		}
		return escaped
	}
}
