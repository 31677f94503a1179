// ABOUTME: Display formatting for chat message text
// ABOUTME: Escapes markup first, then applies line-break and emphasis transforms

// Package format turns raw chat text into display strings.
//
// DisplayText produces HTML-safe markup. It escapes first so that literal
// angle brackets and ampersands can never become tags, then rewrites the
// escaped text in a fixed order:
//
//  1. "\n" becomes "<br>"
//  2. **bold** becomes <strong>bold</strong>
//  3. *italic* becomes <em>italic</em>
//
// TerminalText applies the same two emphasis transforms using ANSI
// attributes instead of tags.
package format

import (
	"html"
	"regexp"
	"strings"

	"github.com/fatih/color"
)

var (
	boldPattern   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern = regexp.MustCompile(`\*(.*?)\*`)
)

// DisplayText returns raw as markup-safe HTML with line breaks and emphasis applied.
func DisplayText(raw string) string {
	s := html.EscapeString(raw)
	s = strings.ReplaceAll(s, "\n", "<br>")
	s = boldPattern.ReplaceAllString(s, "<strong>$1</strong>")
	s = italicPattern.ReplaceAllString(s, "<em>$1</em>")
	return s
}

var (
	boldText   = color.New(color.Bold)
	italicText = color.New(color.Italic)
)

// TerminalText renders **bold** and *italic* spans with ANSI attributes.
// When color output is disabled the markers are removed and the text is kept.
func TerminalText(raw string) string {
	s := boldPattern.ReplaceAllStringFunc(raw, func(m string) string {
		return boldText.Sprint(boldPattern.FindStringSubmatch(m)[1])
	})
	return italicPattern.ReplaceAllStringFunc(s, func(m string) string {
		return italicText.Sprint(italicPattern.FindStringSubmatch(m)[1])
	})
}
