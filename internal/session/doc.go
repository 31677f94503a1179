// Package session implements the conversation session that sits between a
// chat input surface and the chat backend.
//
// # Overview
//
// A Session owns three pieces of state:
//
//   - a bounded History of completed exchanges (oldest first)
//   - a busy flag that is set while a request is outstanding
//   - the Renderer that receives UI events
//
// Each call to Submit walks one submission through the state machine:
//
//	Idle -> Sending -> (Success | Failed) -> Idle
//
// Only one submission may be in flight. A Submit that arrives while the
// session is Sending returns OutcomeBusy without emitting events, sending a
// request or touching the history.
//
// # Events
//
// Submit drives the Renderer in a fixed order:
//
//	RenderUserMessage(text)
//	SetTyping(true)
//	SetTyping(false)
//	RenderBotMessage(reply, false)  // or (ApologyText, true) on failure
//
// # Context Window
//
// Every outbound Request carries the last ContextWindowSize exchanges of the
// history in chronological order. The history itself keeps the last
// HistoryLimit exchanges and evicts from the front.
//
// # Usage
//
//	sess := session.New(chatClient, renderer, session.WithLogger(logger))
//	res := sess.Submit(ctx, "What is your background?")
//	if res.Outcome == session.OutcomeFailed {
//	    logger.Warn("chat failed", "error", res.Err)
//	}
package session
