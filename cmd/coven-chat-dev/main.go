// ABOUTME: Entry point for the coven-chat development backend
// ABOUTME: Serves /chat and /health with an echo bot, mints tokens, and checks health

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/2389/coven-chat/internal/auth"
	"github.com/2389/coven-chat/internal/chatapi"
	"github.com/2389/coven-chat/internal/config"
	"github.com/2389/coven-chat/internal/devserver"
	"github.com/2389/coven-chat/internal/logging"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
                                    _           _
  ___ _____   _____ _ __        ___| |__   __ _| |_
 / __/ _ \ \ / / _ \ '_ \ _____/ __| '_ \ / _' | __|
| (_| (_) \ V /  __/ | | |_____| (__| | | | (_| | |_
 \___\___/ \_/ \___|_| |_|      \___|_| |_|\__,_|\__|
`

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: coven-chat-dev <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve                  Start the development backend")
		fmt.Println("  token --sub NAME       Mint a bearer token (requires devserver.jwt_secret)")
		fmt.Println("  health                 Check backend health")
		fmt.Println()
		fmt.Println("Config is read from $COVEN_CHAT_CONFIG or ~/.config/coven/chat.yaml")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "token":
		err = runToken(os.Args[2:])
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, configPath, err := config.Resolve("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Logging, os.Stdout)

	opts := []devserver.Option{
		devserver.WithLogger(logger),
		devserver.WithBotName(cfg.DevServer.BotName),
	}

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	if configPath == "" {
		configPath = "(defaults)"
	}
	green.Print("    ▶ ")
	fmt.Printf("Config: %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:   %s\n", cfg.DevServer.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Bot:    %s\n", cfg.DevServer.BotName)

	green.Print("    ▶ ")
	if cfg.DevServer.JWTSecret != "" {
		verifier, err := auth.NewJWTVerifier([]byte(cfg.DevServer.JWTSecret))
		if err != nil {
			return fmt.Errorf("creating token verifier: %w", err)
		}
		opts = append(opts, devserver.WithVerifier(verifier))
		fmt.Println("Auth:   bearer token required on /chat")
	} else {
		fmt.Print("Auth:   ")
		yellow.Println("disabled")
	}
	fmt.Println()

	srv, err := devserver.New(&devserver.EchoResponder{BotName: cfg.DevServer.BotName}, opts...)
	if err != nil {
		return err
	}

	logger.Info("starting coven-chat-dev", "addr", cfg.DevServer.HTTPAddr)
	return srv.Run(ctx, cfg.DevServer.HTTPAddr)
}

// runToken mints a token for --sub. Supports both "--sub value" and "--sub=value".
func runToken(args []string) error {
	var subject string
	expiresIn := 30 * 24 * time.Hour

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--sub" || arg == "-s":
			if i+1 >= len(args) {
				return fmt.Errorf("--sub requires a value")
			}
			subject = args[i+1]
			i++
		case strings.HasPrefix(arg, "--sub="):
			subject = strings.TrimPrefix(arg, "--sub=")
		case strings.HasPrefix(arg, "--expires="):
			d, err := time.ParseDuration(strings.TrimPrefix(arg, "--expires="))
			if err != nil {
				return fmt.Errorf("parsing --expires: %w", err)
			}
			expiresIn = d
		case strings.HasPrefix(arg, "-"):
			return fmt.Errorf("unknown flag: %s", arg)
		default:
			return fmt.Errorf("unexpected argument: %s", arg)
		}
	}

	subject = strings.TrimSpace(subject)
	if subject == "" {
		return fmt.Errorf("--sub flag is required")
	}

	cfg, _, err := config.Resolve("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.DevServer.JWTSecret == "" {
		return fmt.Errorf("devserver.jwt_secret is not configured")
	}

	verifier, err := auth.NewJWTVerifier([]byte(cfg.DevServer.JWTSecret))
	if err != nil {
		return fmt.Errorf("creating token verifier: %w", err)
	}

	token, err := verifier.Generate(subject, expiresIn)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	fmt.Println(token)
	return nil
}

func runHealth(ctx context.Context) error {
	cfg, _, err := config.Resolve("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	client := chatapi.New("http://"+cfg.DevServer.HTTPAddr, chatapi.WithTimeout(5*time.Second))
	health := client.Health(ctx)
	if health.Status == "unreachable" {
		return fmt.Errorf("health check failed: backend unreachable")
	}
	if !health.BotReady {
		return fmt.Errorf("unhealthy: bot not ready")
	}

	fmt.Println(health.Status)
	return nil
}
