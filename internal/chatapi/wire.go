// ABOUTME: JSON wire types shared by the chat client and the dev backend
// ABOUTME: Mirrors the POST /chat and GET /health payloads

package chatapi

import "github.com/2389/coven-chat/internal/session"

// ChatRequest is the JSON request body for POST /chat.
type ChatRequest struct {
	Message string        `json:"message"`
	History []HistoryPair `json:"history"`
}

// HistoryPair is one prior exchange as carried on the wire.
type HistoryPair struct {
	User string `json:"user"`
	Bot  string `json:"bot"`
}

// ChatResponse is the JSON response body for POST /chat.
// Response is a pointer so a missing field can be told apart from an empty reply.
type ChatResponse struct {
	Response *string `json:"response"`
	Status   string  `json:"status,omitempty"`
}

// HealthResponse is the JSON response body for GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	BotReady bool   `json:"bot_ready"`
}

// ErrorResponse is the JSON body used for error statuses.
// The dev backend sets Error; FastAPI-style backends set Detail.
type ErrorResponse struct {
	Error  string `json:"error,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// PairsFromExchanges converts session exchanges to wire pairs, never returning nil.
func PairsFromExchanges(exchanges []session.Exchange) []HistoryPair {
	pairs := make([]HistoryPair, len(exchanges))
	for i, ex := range exchanges {
		pairs[i] = HistoryPair{User: ex.UserText, Bot: ex.BotText}
	}
	return pairs
}

// ExchangesFromPairs converts wire pairs back to session exchanges.
func ExchangesFromPairs(pairs []HistoryPair) []session.Exchange {
	exchanges := make([]session.Exchange, len(pairs))
	for i, p := range pairs {
		exchanges[i] = session.Exchange{UserText: p.User, BotText: p.Bot}
	}
	return exchanges
}
