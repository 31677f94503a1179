// ABOUTME: Tests for terminal, HTML and fan-out renderers
// ABOUTME: Drives renderers directly and through a session with a fake chatter

package render

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/coven-chat/internal/session"
)

var fixedTime = time.Date(2024, 5, 1, 14, 7, 0, 0, time.UTC)

func disableColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func TestTerminal_Messages(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer
	term := NewTerminal(&buf, "Prakhar", false)
	term.now = func() time.Time { return fixedTime }

	term.RenderUserMessage("Hello")
	term.RenderBotMessage("Hi **there**", false)
	term.RenderBotMessage(session.ApologyText, true)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "You: Hello 02:07 PM", lines[0])
	assert.Equal(t, "Prakhar: Hi there 02:07 PM", lines[1])
	assert.Equal(t, "Prakhar: "+session.ApologyText+" 02:07 PM", lines[2])
}

func TestTerminal_TypingNonInteractive(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer
	term := NewTerminal(&buf, "Bot", false)

	term.SetTyping(true)
	term.SetTyping(false)

	assert.Empty(t, buf.String())
}

func TestTerminal_TypingInteractive(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer
	term := NewTerminal(&buf, "Bot", true)
	term.now = func() time.Time { return fixedTime }

	term.SetTyping(true)
	term.SetTyping(true)
	assert.Equal(t, "Bot is typing...", buf.String())

	term.SetTyping(false)
	assert.Equal(t, "Bot is typing...\r\033[K", buf.String())

	// A second stop does not emit another clear sequence.
	term.SetTyping(false)
	assert.Equal(t, "Bot is typing...\r\033[K", buf.String())
}

func TestTerminal_MessageClearsTyping(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer
	term := NewTerminal(&buf, "Bot", true)
	term.now = func() time.Time { return fixedTime }

	term.SetTyping(true)
	term.RenderBotMessage("done", false)

	assert.Equal(t, "Bot is typing...\r\033[KBot: done 02:07 PM\n", buf.String())
}

func TestHTML_Messages(t *testing.T) {
	var buf bytes.Buffer
	h := NewHTML(&buf, "Prakhar")
	h.now = func() time.Time { return fixedTime }

	h.RenderUserMessage("<b>hi</b> **not bold**")
	h.SetTyping(true)
	h.RenderBotMessage("**bold**\n*it* <x>", false)
	h.RenderBotMessage("sorry", true)
	require.NoError(t, h.Err())

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t,
		`<div class="message user-message"><div class="message-content"><strong>You:</strong> &lt;b&gt;hi&lt;/b&gt; **not bold**</div><div class="message-time">02:07 PM</div></div>`,
		lines[0])
	assert.Equal(t,
		`<div class="message bot-message"><div class="message-content"><strong>Prakhar:</strong> <strong>bold</strong><br><em>it</em> &lt;x&gt;</div><div class="message-time">02:07 PM</div></div>`,
		lines[1])
	assert.Contains(t, lines[2], `class="message bot-message error-message"`)
}

func TestHTML_EscapesBotName(t *testing.T) {
	var buf bytes.Buffer
	h := NewHTML(&buf, "<Bot>")
	h.RenderBotMessage("x", false)
	assert.Contains(t, buf.String(), "<strong>&lt;Bot&gt;:</strong>")
}

func TestHTML_Document(t *testing.T) {
	var buf bytes.Buffer
	h := NewHTML(&buf, "Bot")

	require.NoError(t, h.Begin("Chat & more"))
	h.RenderUserMessage("hi")
	require.NoError(t, h.End())

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>Chat &amp; more</title>")
	assert.Contains(t, out, "user-message")
	assert.True(t, strings.HasSuffix(out, "</html>\n"))
}

type failingWriter struct{ writes int }

func (f *failingWriter) Write(p []byte) (int, error) {
	f.writes++
	return 0, errors.New("disk full")
}

func TestHTML_StopsAfterWriteError(t *testing.T) {
	w := &failingWriter{}
	h := NewHTML(w, "Bot")

	h.RenderUserMessage("one")
	h.RenderUserMessage("two")

	assert.EqualError(t, h.Err(), "disk full")
	assert.Equal(t, 1, w.writes)
	assert.Error(t, h.End())
}

type countingRenderer struct {
	users, bots, typing int
}

func (c *countingRenderer) RenderUserMessage(string)      { c.users++ }
func (c *countingRenderer) RenderBotMessage(string, bool) { c.bots++ }
func (c *countingRenderer) SetTyping(bool)                { c.typing++ }

func TestMulti_FansOut(t *testing.T) {
	a, b := &countingRenderer{}, &countingRenderer{}
	m := Multi(a, nil, b)

	m.RenderUserMessage("x")
	m.SetTyping(true)
	m.SetTyping(false)
	m.RenderBotMessage("y", false)

	for _, r := range []*countingRenderer{a, b} {
		assert.Equal(t, 1, r.users)
		assert.Equal(t, 1, r.bots)
		assert.Equal(t, 2, r.typing)
	}
}

type staticChatter string

func (s staticChatter) Chat(context.Context, session.Request) (string, error) {
	return string(s), nil
}

func TestRenderers_DrivenBySession(t *testing.T) {
	disableColor(t)
	var termBuf, htmlBuf bytes.Buffer
	term := NewTerminal(&termBuf, "Bot", false)
	term.now = func() time.Time { return fixedTime }
	h := NewHTML(&htmlBuf, "Bot")
	h.now = func() time.Time { return fixedTime }

	sess := session.New(staticChatter("*hello*"), Multi(term, h))
	res := sess.Submit(context.Background(), "hi")

	require.Equal(t, session.OutcomeReplied, res.Outcome)
	assert.Equal(t, "You: hi 02:07 PM\nBot: hello 02:07 PM\n", termBuf.String())
	assert.Contains(t, htmlBuf.String(), "<em>hello</em>")
}
