// ABOUTME: Reply generation for the development chat backend
// ABOUTME: EchoResponder answers with formatted markdown and reports the context it saw

package devserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/2389/coven-chat/internal/chatapi"
)

// MaxContextExchanges is how many trailing history pairs a responder considers.
const MaxContextExchanges = 3

// Responder produces the bot's reply to a chat message.
type Responder interface {
	// Ready reports whether the responder can answer; /chat returns 503 until it is.
	Ready() bool
	Respond(ctx context.Context, message string, history []chatapi.HistoryPair) (string, error)
}

// EchoResponder is a Responder that echoes the message back with markdown.
type EchoResponder struct {
	BotName string
}

// Ready always returns true.
func (e *EchoResponder) Ready() bool {
	return true
}

// Respond echoes message. Requests mentioning markdown, bullets or lists get a
// fixed markdown sample instead.
func (e *EchoResponder) Respond(ctx context.Context, message string, history []chatapi.HistoryPair) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	lower := strings.ToLower(message)
	if strings.Contains(lower, "markdown") || strings.Contains(lower, "bullet") || strings.Contains(lower, "list") {
		return "Here is a **markdown** response:\n- First item\n- Second item\n- Third item", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Echo: **%s**", message)

	recent := RecentHistory(history)
	switch len(recent) {
	case 0:
		b.WriteString("\nThis is the *start* of our conversation.")
	case 1:
		fmt.Fprintf(&b, "\nYou previously asked: *%s*", recent[0].User)
	default:
		fmt.Fprintf(&b, "\nI remember our last *%d* exchanges.", len(recent))
	}

	if e.BotName != "" {
		fmt.Fprintf(&b, "\n- %s", e.BotName)
	}
	return b.String(), nil
}

// RecentHistory returns the trailing MaxContextExchanges pairs of history.
func RecentHistory(history []chatapi.HistoryPair) []chatapi.HistoryPair {
	if len(history) <= MaxContextExchanges {
		return history
	}
	return history[len(history)-MaxContextExchanges:]
}
