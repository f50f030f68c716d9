package auditor

import "html"

// FallbackBlock returns a minimal styled error block for embedding in
// the viewer. Every failure path renders through here (or through the
// auditor's own error HTML), so the viewer never shows a blank frame.
// The message is escaped; it frequently contains stderr text.
func FallbackBlock(msg string) string {
	return `<div style="padding: 20px; color: red;">Error: ` + html.EscapeString(msg) + `</div>`
}

// FallbackDocument wraps a fallback block in a complete HTML document.
// File-mode failures use this: the caller expects a whole document,
// not a fragment, in place of the missing annotated page.
func FallbackDocument(msg string) string {
	return `<html><head><meta charset="UTF-8"></head><body><h1>Error running test</h1>` +
		FallbackBlock(msg) + `</body></html>`
}
