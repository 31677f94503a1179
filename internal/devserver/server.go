// ABOUTME: Development chat backend serving /chat, /health and a landing page
// ABOUTME: Speaks the same JSON wire format the chat client expects

package devserver

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"github.com/2389/coven-chat/internal/auth"
	"github.com/2389/coven-chat/internal/chatapi"
	"github.com/2389/coven-chat/internal/logging"
)

//go:embed landing.md
var landingMarkdown string

// maxRequestBody bounds the size of a /chat request body.
const maxRequestBody = 1 << 20

// Server is a local stand-in for the chat backend.
type Server struct {
	responder Responder
	verifier  auth.TokenVerifier
	logger    *slog.Logger
	botName   string
	landing   []byte

	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithVerifier requires a valid bearer token on /chat.
func WithVerifier(v auth.TokenVerifier) Option {
	return func(s *Server) {
		s.verifier = v
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBotName sets the persona name shown on the landing page.
func WithBotName(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.botName = name
		}
	}
}

// New creates a Server answering with responder. A nil responder leaves the
// bot uninitialized: /health reports bot_ready=false and /chat returns 503.
func New(responder Responder, opts ...Option) (*Server, error) {
	s := &Server{
		responder: responder,
		logger:    logging.Discard(),
		botName:   "Prakhar",
	}
	for _, opt := range opts {
		opt(s)
	}

	landing, err := renderLanding(s.botName)
	if err != nil {
		return nil, fmt.Errorf("rendering landing page: %w", err)
	}
	s.landing = landing

	return s, nil
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	var chat http.Handler = http.HandlerFunc(s.handleChat)
	if s.verifier != nil {
		chat = auth.BearerMiddleware(s.verifier)(chat)
	}

	mux.Handle("/chat", chat)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/", s.handleLanding)

	return s.requestID(mux)
}

// Run listens on addr and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully.
// Returns nil on graceful shutdown, or the error that stopped the server.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
		close(errCh)
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case err, ok := <-errCh:
		if ok {
			s.logger.Error("server error", "error", err)
			serverErr = err
		}
	}

	// The caller's context is already done, so shutdown gets a fresh one.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	shutdownErr := s.httpServer.Shutdown(shutdownCtx)

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	req, err := parseChatRequest(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.responder == nil || !s.responder.Ready() {
		s.sendJSON(w, http.StatusServiceUnavailable, chatapi.ErrorResponse{Detail: "Chatbot not initialized"})
		return
	}

	logger := s.logger.With("request_id", w.Header().Get("X-Request-ID"))
	if sub := auth.FromContext(r.Context()); sub != "" {
		logger = logger.With("subject", sub)
	}

	start := time.Now()
	reply, err := s.responder.Respond(r.Context(), req.Message, req.History)
	if err != nil {
		logger.Error("responder failed", "error", err)
		s.sendJSON(w, http.StatusInternalServerError, chatapi.ErrorResponse{Detail: "Internal server error"})
		return
	}

	logger.Info("chat handled",
		"history", len(req.History),
		"duration", time.Since(start),
	)

	s.sendJSON(w, http.StatusOK, chatapi.ChatResponse{Response: &reply, Status: "success"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ready := s.responder != nil && s.responder.Ready()
	s.sendJSON(w, http.StatusOK, chatapi.HealthResponse{Status: "healthy", BotReady: ready})
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(s.landing)
}

// requestID tags every response with X-Request-ID, reusing the caller's id when present.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", "error", err)
	}
}

func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	s.sendJSON(w, status, chatapi.ErrorResponse{Error: message})
}

// parseChatRequest parses and validates a ChatRequest from the given reader.
// Returns an error if the JSON is invalid or the message is blank.
func parseChatRequest(r io.Reader) (*chatapi.ChatRequest, error) {
	var req chatapi.ChatRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, errors.New("invalid JSON body")
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return nil, errors.New("message is required")
	}

	return &req, nil
}

var landingTemplate = template.Must(template.New("landing").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Chat with {{.BotName}}</title>
</head>
<body>
{{.Content}}
</body>
</html>
`))

// renderLanding converts the embedded markdown to a full HTML page.
func renderLanding(botName string) ([]byte, error) {
	md := strings.ReplaceAll(landingMarkdown, "{{bot}}", botName)

	var content bytes.Buffer
	if err := goldmark.Convert([]byte(md), &content); err != nil {
		return nil, fmt.Errorf("converting markdown: %w", err)
	}

	var page bytes.Buffer
	err := landingTemplate.Execute(&page, struct {
		BotName string
		Content template.HTML
	}{
		BotName: botName,
		Content: template.HTML(content.String()),
	})
	if err != nil {
		return nil, err
	}
	return page.Bytes(), nil
}
