package render

import "encoding/base64"

// Image export modes. Embedded inlines the payload as a data URL;
// placeholder marks the position without carrying the bytes.
const (
	ImageModeEmbedded    = "embedded"
	ImageModePlaceholder = "placeholder"
)

// Media types allowed for embedded images. SVG is deliberately excluded: it
// can carry script content and must never be embedded verbatim.
var allowedImageMediaTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// RenderEmbeddedImage returns an <img> tag with a data URL for an allowed
// media type and a validly base64-encoded payload. Disallowed or malformed
// payloads are silently dropped (empty string), never rendered.
func RenderEmbeddedImage(mediaType, data string) string {
	if !allowedImageMediaTypes[mediaType] || data == "" {
		return ""
	}
	if _, err := base64.StdEncoding.Strict().DecodeString(data); err != nil {
		return ""
	}
	dataURL := "data:" + mediaType + ";base64," + data
	return `<img src="` + EscapeHTML(dataURL) + `" alt="Tool result image" class="tool-result-image" />`
}

// RenderImage renders an image per the export mode. The empty mode means
// embedded. Validation is shared with RenderEmbeddedImage: disallowed media
// types and malformed payloads render nothing in every mode.
func RenderImage(mode, mediaType, data string) string {
	if mode != ImageModePlaceholder {
		return RenderEmbeddedImage(mediaType, data)
	}
	if !allowedImageMediaTypes[mediaType] || data == "" {
		return ""
	}
	if _, err := base64.StdEncoding.Strict().DecodeString(data); err != nil {
		return ""
	}
	return `<p class="image-placeholder">[Image: ` + EscapeHTML(mediaType) + `]</p>`
}
