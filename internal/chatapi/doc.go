// Package chatapi is the HTTP transport between a conversation session and
// the chat backend.
//
// # Endpoints
//
//   - POST /chat: sends {"message", "history"} and expects {"response"}
//   - GET /health: reports {"status", "bot_ready"}
//
// History entries travel as {"user", "bot"} pairs, oldest first. An empty
// history is sent as [] rather than null.
//
// # Errors
//
// Chat returns a *StatusError for non-2xx responses and ErrMalformedResponse
// when a 2xx body cannot be decoded or has no "response" field. Health never
// returns an error: failures are logged and reported as not ready.
//
// # Usage
//
//	client := chatapi.New("http://localhost:8000",
//	    chatapi.WithToken(token),
//	    chatapi.WithLogger(logger),
//	)
//	sess := session.New(client, renderer)
package chatapi
