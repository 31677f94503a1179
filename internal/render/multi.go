// ABOUTME: Fan-out renderer that forwards session events to several renderers
// ABOUTME: Used to drive a terminal and a transcript from one session

package render

import "github.com/2389/coven-chat/internal/session"

type multi []session.Renderer

// Multi returns a renderer that forwards every event to each non-nil renderer in order.
func Multi(renderers ...session.Renderer) session.Renderer {
	m := make(multi, 0, len(renderers))
	for _, r := range renderers {
		if r != nil {
			m = append(m, r)
		}
	}
	return m
}

func (m multi) RenderUserMessage(text string) {
	for _, r := range m {
		r.RenderUserMessage(text)
	}
}

func (m multi) RenderBotMessage(text string, isError bool) {
	for _, r := range m {
		r.RenderBotMessage(text, isError)
	}
}

func (m multi) SetTyping(on bool) {
	for _, r := range m {
		r.SetTyping(on)
	}
}
