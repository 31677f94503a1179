// ABOUTME: Tests for the chat backend HTTP client
// ABOUTME: Covers wire format, headers, status and malformed body errors, and health

package chatapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/coven-chat/internal/session"
)

func TestClient_ChatSendsWireFormat(t *testing.T) {
	var gotBody map[string]any
	var gotHeaders http.Header
	var gotMethod, gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotHeaders = r.Header.Clone()
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"response":"Hi there","status":"success"}`)
	}))
	defer srv.Close()

	client := New(srv.URL + "/")
	reply, err := client.Chat(context.Background(), session.Request{Message: "Hello"})

	require.NoError(t, err)
	assert.Equal(t, "Hi there", reply)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/chat", gotPath)
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.Empty(t, gotHeaders.Get("Authorization"))

	_, err = uuid.Parse(gotHeaders.Get("X-Request-ID"))
	assert.NoError(t, err, "X-Request-ID should be a UUID")

	assert.Equal(t, "Hello", gotBody["message"])
	history, ok := gotBody["history"].([]any)
	require.True(t, ok, "history must be a JSON array, got %T", gotBody["history"])
	assert.Empty(t, history)
}

func TestClient_ChatSendsHistoryPairs(t *testing.T) {
	var got ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"response":"ok"}`)
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.Chat(context.Background(), session.Request{
		Message: "third",
		History: []session.Exchange{
			{UserText: "first", BotText: "one"},
			{UserText: "second", BotText: "two"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "third", got.Message)
	assert.Equal(t, []HistoryPair{
		{User: "first", Bot: "one"},
		{User: "second", Bot: "two"},
	}, got.History)
}

func TestClient_ChatSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{"response":"ok"}`)
	}))
	defer srv.Close()

	client := New(srv.URL, WithToken("secret-token"))
	_, err := client.Chat(context.Background(), session.Request{Message: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
}

func TestClient_ChatErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
		malformed  bool
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"detail":"Internal server error"}`, wantStatus: 500, wantMsg: "Internal server error"},
		{name: "not initialized", status: http.StatusServiceUnavailable, body: `{"detail":"Chatbot not initialized"}`, wantStatus: 503, wantMsg: "Chatbot not initialized"},
		{name: "bad request with error field", status: http.StatusBadRequest, body: `{"error":"message is required"}`, wantStatus: 400, wantMsg: "message is required"},
		{name: "non-json error body", status: http.StatusBadGateway, body: "upstream down", wantStatus: 502},
		{name: "missing response field", status: http.StatusOK, body: `{"status":"success"}`, malformed: true},
		{name: "null response field", status: http.StatusOK, body: `{"response":null}`, malformed: true},
		{name: "wrong response type", status: http.StatusOK, body: `{"response":42}`, malformed: true},
		{name: "not json", status: http.StatusOK, body: "<html>oops</html>", malformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := New(srv.URL).Chat(context.Background(), session.Request{Message: "hi"})
			require.Error(t, err)

			if tt.malformed {
				assert.ErrorIs(t, err, ErrMalformedResponse)
				return
			}

			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr), "expected *StatusError, got %T", err)
			assert.Equal(t, tt.wantStatus, statusErr.Code)
			assert.Equal(t, tt.wantMsg, statusErr.Message)
		})
	}
}

func TestClient_ChatAcceptsEmptyReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"response":""}`)
	}))
	defer srv.Close()

	reply, err := New(srv.URL).Chat(context.Background(), session.Request{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "", reply)
}

func TestClient_ChatTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).Chat(context.Background(), session.Request{Message: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sending request")
}

func TestClient_ChatTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := New(srv.URL, WithTimeout(50*time.Millisecond))
	_, err := client.Chat(context.Background(), session.Request{Message: "hi"})
	require.Error(t, err)
}

func TestStatusError_Error(t *testing.T) {
	assert.Equal(t, "server returned status 500", (&StatusError{Code: 500}).Error())
	assert.Equal(t, "server returned status 400: bad", (&StatusError{Code: 400, Message: "bad"}).Error())
}

func TestClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = io.WriteString(w, `{"status":"healthy","bot_ready":true}`)
	}))
	defer srv.Close()

	client := New(srv.URL)
	health := client.Health(context.Background())

	assert.Equal(t, "healthy", health.Status)
	assert.True(t, health.BotReady)
	assert.True(t, client.Ready(context.Background()))
}

func TestClient_HealthFailuresReportNotReady(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "not json")
		}},
		{"bot not ready", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"status":"healthy","bot_ready":false}`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			assert.False(t, New(srv.URL).Ready(context.Background()))
		})
	}
}

func TestClient_HealthUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	health := New(url).Health(context.Background())
	assert.Equal(t, "unreachable", health.Status)
	assert.False(t, health.BotReady)
}

func TestClient_DrivesSession(t *testing.T) {
	var requests []ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests = append(requests, req)
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "echo " + req.Message})
	}))
	defer srv.Close()

	sess := session.New(New(srv.URL), nil)
	for _, msg := range []string{"a", "b", "c"} {
		res := sess.Submit(context.Background(), msg)
		require.Equal(t, session.OutcomeReplied, res.Outcome)
	}

	require.Len(t, requests, 3)
	assert.Empty(t, requests[0].History)
	assert.Equal(t, []HistoryPair{{User: "a", Bot: "echo a"}, {User: "b", Bot: "echo b"}}, requests[2].History)
	assert.Len(t, sess.History(), 3)
}

func TestPairConversionRoundTrip(t *testing.T) {
	exchanges := []session.Exchange{{UserText: "u", BotText: "b"}}
	assert.Equal(t, exchanges, ExchangesFromPairs(PairsFromExchanges(exchanges)))
	assert.NotNil(t, PairsFromExchanges(nil))
}
