// ABOUTME: Terminal renderer for chat sessions using colored output
// ABOUTME: Prints user and bot lines with timestamps and a transient typing line

package render

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/2389/coven-chat/internal/format"
)

// TimeLayout is the clock format shown next to each message.
const TimeLayout = "03:04 PM"

// Terminal renders session events as lines of text.
type Terminal struct {
	mu          sync.Mutex
	w           io.Writer
	botName     string
	interactive bool
	typing      bool
	now         func() time.Time

	userLabel  *color.Color
	botLabel   *color.Color
	errorLabel *color.Color
	dim        *color.Color
}

// NewTerminal creates a Terminal writing to w. When interactive is true a
// "<bot> is typing..." line is shown while waiting and erased afterwards.
func NewTerminal(w io.Writer, botName string, interactive bool) *Terminal {
	return &Terminal{
		w:           w,
		botName:     botName,
		interactive: interactive,
		now:         time.Now,
		userLabel:   color.New(color.FgCyan, color.Bold),
		botLabel:    color.New(color.FgGreen, color.Bold),
		errorLabel:  color.New(color.FgRed, color.Bold),
		dim:         color.New(color.FgHiBlack),
	}
}

// RenderUserMessage prints the user's message.
func (t *Terminal) RenderUserMessage(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearTypingLocked()
	t.line(t.userLabel.Sprint("You:"), text)
}

// RenderBotMessage prints a reply, or an error notice when isError is set.
func (t *Terminal) RenderBotMessage(text string, isError bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearTypingLocked()
	if isError {
		t.line(t.errorLabel.Sprint(t.botName+":"), color.RedString(text))
		return
	}
	t.line(t.botLabel.Sprint(t.botName+":"), format.TerminalText(text))
}

// SetTyping shows or clears the typing line. It does nothing for non-interactive output.
func (t *Terminal) SetTyping(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.interactive {
		return
	}
	if !on {
		t.clearTypingLocked()
		return
	}
	if t.typing {
		return
	}
	t.typing = true
	fmt.Fprint(t.w, t.dim.Sprintf("%s is typing...", t.botName))
}

// clearTypingLocked erases the typing line. Must be called with mu held.
func (t *Terminal) clearTypingLocked() {
	if !t.typing {
		return
	}
	t.typing = false
	fmt.Fprint(t.w, "\r\033[K")
}

func (t *Terminal) line(label, text string) {
	fmt.Fprintf(t.w, "%s %s %s\n", label, text, t.dim.Sprint(t.now().Format(TimeLayout)))
}
