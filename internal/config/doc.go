// Package config handles configuration loading for coven-chat.
//
// # Overview
//
// Configuration is loaded from YAML or TOML files with environment variable
// expansion. Missing fields keep the values from Default().
//
// # Configuration File
//
// Locations (in order):
//
//  1. Path passed with -config
//  2. Path from COVEN_CHAT_CONFIG environment variable
//  3. $XDG_CONFIG_HOME/coven/chat.yaml (or ~/.config/coven/chat.yaml)
//
// When none of these exist the built-in defaults are used. A .env file in
// the working directory is loaded before any of the above.
//
// # Environment Variable Expansion
//
//	auth:
//	  token: "${COVEN_TOKEN}"
//
// Unset variables expand to the empty string.
//
// # Configuration Sections
//
//	server:
//	  url: "http://localhost:8000"
//	  request_timeout: "30s"   # empty means no timeout
//
//	session:
//	  history_limit: 10        # <= 0 uses the default
//	  context_window: 6
//
//	display:
//	  bot_name: "Prakhar"
//	  transcript: "chat.html"  # optional HTML transcript
//
//	logging:
//	  level: "info"            # debug, info, warn, error
//	  format: "text"           # text, json
//
//	devserver:
//	  http_addr: "localhost:8000"
//	  jwt_secret: "${COVEN_JWT_SECRET}"  # empty disables auth
//
// # Token Resolution
//
// ResolveToken picks the bearer token: the configured auth.token, then
// COVEN_TOKEN, then the contents of $XDG_CONFIG_HOME/coven/token.
package config
