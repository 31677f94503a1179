// ABOUTME: HTML renderer that writes chat messages as bubble fragments
// ABOUTME: User text is escaped; bot text goes through format.DisplayText

package render

import (
	"fmt"
	"html"
	"io"
	"sync"
	"time"

	"github.com/2389/coven-chat/internal/format"
)

// HTML writes one <div class="message ..."> block per message.
// Write errors are remembered and reported by Err; later writes are skipped.
type HTML struct {
	mu      sync.Mutex
	w       io.Writer
	botName string
	now     func() time.Time
	err     error
}

// NewHTML creates an HTML renderer writing fragments to w.
func NewHTML(w io.Writer, botName string) *HTML {
	return &HTML{
		w:       w,
		botName: botName,
		now:     time.Now,
	}
}

// RenderUserMessage writes a user bubble.
func (h *HTML) RenderUserMessage(text string) {
	h.write("user-message", "You", html.EscapeString(text))
}

// RenderBotMessage writes a bot bubble, styled as an error when isError is set.
func (h *HTML) RenderBotMessage(text string, isError bool) {
	class := "bot-message"
	if isError {
		class += " error-message"
	}
	h.write(class, h.botName, format.DisplayText(text))
}

// SetTyping is a no-op; a transcript has no transient state.
func (h *HTML) SetTyping(bool) {}

// Begin writes the opening of a standalone transcript document.
func (h *HTML) Begin(title string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, h.err = fmt.Fprintf(h.w, documentStart, html.EscapeString(title))
	return h.err
}

// End closes a document opened with Begin.
func (h *HTML) End() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	_, h.err = io.WriteString(h.w, documentEnd)
	return h.err
}

// Err returns the first write error, if any.
func (h *HTML) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *HTML) write(class, sender, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return
	}
	_, h.err = fmt.Fprintf(h.w,
		"<div class=\"message %s\"><div class=\"message-content\"><strong>%s:</strong> %s</div><div class=\"message-time\">%s</div></div>\n",
		class,
		html.EscapeString(sender),
		content,
		h.now().Format(TimeLayout),
	)
}

const documentStart = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
.message { margin: 0.5em 0; padding: 0.5em 0.75em; border-radius: 8px; max-width: 40em; }
.user-message { background: #e3f2fd; margin-left: auto; }
.bot-message { background: #f1f3f4; }
.error-message { background: #fdecea; color: #b71c1c; }
.message-time { font-size: 0.75em; color: #888; }
</style>
</head>
<body>
<div id="chatMessages">
`

const documentEnd = `</div>
</body>
</html>
`
