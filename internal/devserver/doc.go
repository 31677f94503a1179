// Package devserver implements a local chat backend for development and tests.
//
// It serves the same HTTP surface as the production backend:
//
//	POST /chat    {"message": "...", "history": [{"user": "...", "bot": "..."}]}
//	              -> {"response": "...", "status": "success"}
//	GET  /health  -> {"status": "healthy", "bot_ready": true}
//	GET  /        landing page rendered from embedded markdown
//
// Replies come from a Responder. EchoResponder echoes the message with a
// little markdown and looks at the last MaxContextExchanges history pairs.
//
// Error statuses:
//
//	400 {"error": ...}                       invalid JSON or blank message
//	401 {"error": ...}                       bad bearer token (when a verifier is set)
//	503 {"detail": "Chatbot not initialized"} responder missing or not ready
//	500 {"detail": "Internal server error"}   responder failed
package devserver
