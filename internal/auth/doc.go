// Package auth provides bearer token authentication for the chat backend.
//
// Tokens are HS256 JWTs whose "sub" claim names the caller. The secret must
// be at least MinSecretLength bytes.
//
//	verifier, err := auth.NewJWTVerifier([]byte(secret))
//	token, err := verifier.Generate("alice", 24*time.Hour)
//
// BearerMiddleware guards an http.Handler; handlers read the caller with
// FromContext. The chat client sends the token it resolves from config as
// "Authorization: Bearer <token>".
package auth
