// ABOUTME: Conversation session that guards submissions and tracks bounded history
// ABOUTME: Reconciles request, reply and failure outcomes with renderer events

package session

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
)

// ApologyText is shown in place of a reply when a request fails.
const ApologyText = "I apologize, but I encountered an error. Please try again."

// Renderer receives the UI events produced by a Session.
type Renderer interface {
	RenderUserMessage(text string)
	RenderBotMessage(text string, isError bool)
	SetTyping(on bool)
}

// Request is the outbound payload for one submission.
type Request struct {
	Message string
	History []Exchange
}

// Chatter sends a Request to the chat backend and returns the reply text.
// Transport failures, non-2xx statuses and malformed bodies are all errors.
type Chatter interface {
	Chat(ctx context.Context, req Request) (string, error)
}

// State is the position of a Session in its submission state machine.
type State int

const (
	StateIdle State = iota
	StateSending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	default:
		return "unknown"
	}
}

// Outcome describes how a call to Submit ended.
type Outcome int

const (
	// OutcomeReplied means the backend answered and the exchange was recorded.
	OutcomeReplied Outcome = iota
	// OutcomeFailed means the request failed and the apology was shown.
	OutcomeFailed
	// OutcomeBusy means another submission was in flight; nothing happened.
	OutcomeBusy
	// OutcomeEmpty means the text was blank after trimming; nothing happened.
	OutcomeEmpty
)

func (o Outcome) String() string {
	switch o {
	case OutcomeReplied:
		return "replied"
	case OutcomeFailed:
		return "failed"
	case OutcomeBusy:
		return "busy"
	case OutcomeEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Result is returned by Submit.
type Result struct {
	Outcome Outcome
	Reply   string // set for OutcomeReplied
	Err     error  // set for OutcomeFailed
}

// Session is a single conversation with the chat backend.
// Its methods are safe to call from multiple goroutines.
type Session struct {
	chatter       Chatter
	renderer      Renderer
	logger        *slog.Logger
	contextWindow int

	busy atomic.Bool

	mu      sync.Mutex
	history *History
}

// Option configures a Session.
type Option func(*Session)

// WithHistoryLimit sets how many exchanges are kept. Non-positive values keep the default.
func WithHistoryLimit(n int) Option {
	return func(s *Session) {
		s.history = NewHistory(n)
	}
}

// WithContextWindow sets how many trailing exchanges accompany each request.
// Non-positive values keep the default.
func WithContextWindow(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.contextWindow = n
		}
	}
}

// WithLogger sets the logger used for failed requests and ignored submissions.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an idle Session with an empty history. A nil renderer discards events.
func New(chatter Chatter, renderer Renderer, opts ...Option) *Session {
	if renderer == nil {
		renderer = discardRenderer{}
	}
	s := &Session{
		chatter:       chatter,
		renderer:      renderer,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		contextWindow: DefaultContextWindow,
		history:       NewHistory(DefaultHistoryLimit),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit sends text to the backend and blocks until the exchange completes.
//
// Blank text returns OutcomeEmpty and a submission made while another is in
// flight returns OutcomeBusy; neither emits events or sends a request.
// Otherwise the busy flag is held for the duration of the request and is
// always released before Submit returns.
func (s *Session) Submit(ctx context.Context, text string) Result {
	message := strings.TrimSpace(text)
	if message == "" {
		return Result{Outcome: OutcomeEmpty}
	}

	if !s.busy.CompareAndSwap(false, true) {
		s.logger.Debug("submission ignored while a request is in flight")
		return Result{Outcome: OutcomeBusy}
	}
	defer s.busy.Store(false)

	s.renderer.RenderUserMessage(message)
	s.renderer.SetTyping(true)

	req := Request{
		Message: message,
		History: s.ContextWindow(),
	}

	reply, err := s.chatter.Chat(ctx, req)
	s.renderer.SetTyping(false)

	if err != nil {
		s.logger.Error("chat request failed",
			"error", err,
			"context_exchanges", len(req.History),
		)
		s.renderer.RenderBotMessage(ApologyText, true)
		return Result{Outcome: OutcomeFailed, Err: err}
	}

	s.renderer.RenderBotMessage(reply, false)

	s.mu.Lock()
	s.history.Append(Exchange{UserText: message, BotText: reply})
	size := s.history.Len()
	s.mu.Unlock()

	s.logger.Debug("exchange recorded", "history_size", size)
	return Result{Outcome: OutcomeReplied, Reply: reply}
}

// Busy reports whether a request is outstanding.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// State reports the current state machine position.
func (s *Session) State() State {
	if s.Busy() {
		return StateSending
	}
	return StateIdle
}

// History returns a copy of the recorded exchanges, oldest first.
func (s *Session) History() []Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.All()
}

// ContextWindow returns the exchanges the next request would carry.
func (s *Session) ContextWindow() []Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Last(s.contextWindow)
}

// Len reports the number of recorded exchanges.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Len()
}

type discardRenderer struct{}

func (discardRenderer) RenderUserMessage(string) {}

func (discardRenderer) RenderBotMessage(string, bool) {}

func (discardRenderer) SetTyping(bool) {}
