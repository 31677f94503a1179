// ABOUTME: Interactive terminal client for a coven-chat backend
// ABOUTME: Drives a conversation session over HTTP with colored output and an optional HTML transcript

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/2389/coven-chat/internal/chatapi"
	"github.com/2389/coven-chat/internal/config"
	"github.com/2389/coven-chat/internal/logging"
	"github.com/2389/coven-chat/internal/render"
	"github.com/2389/coven-chat/internal/session"
)

// Version is set by goreleaser at build time.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "Config file path (default: $COVEN_CHAT_CONFIG or ~/.config/coven/chat.yaml)")
	server := flag.String("server", "", "Chat backend URL (overrides server.url)")
	transcript := flag.String("transcript", "", "Write an HTML transcript to this file (overrides display.transcript)")
	botName := flag.String("bot-name", "", "Name shown for bot messages (overrides display.bot_name)")
	flag.Parse()

	cfg, path, err := config.Resolve(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *server != "" {
		cfg.Server.URL = *server
	}
	if *transcript != "" {
		cfg.Display.Transcript = *transcript
	}
	if *botName != "" {
		cfg.Display.BotName = *botName
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nGoodbye!")
}

func run(ctx context.Context, cfg *config.Config, configPath string) error {
	logger := logging.New(cfg.Logging, os.Stderr)

	token := config.ResolveToken(cfg.Auth.Token)
	client := chatapi.New(cfg.Server.URL,
		chatapi.WithTimeout(cfg.Server.RequestTimeout),
		chatapi.WithToken(token),
		chatapi.WithLogger(logger),
	)

	printHeader(ctx, cfg, configPath, client, token != "")

	interactive := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	renderers := []session.Renderer{render.NewTerminal(os.Stdout, cfg.Display.BotName, interactive)}

	if cfg.Display.Transcript != "" {
		f, err := os.Create(cfg.Display.Transcript)
		if err != nil {
			return fmt.Errorf("creating transcript: %w", err)
		}
		defer f.Close()

		html := render.NewHTML(f, cfg.Display.BotName)
		if err := html.Begin("Chat with " + cfg.Display.BotName); err != nil {
			return fmt.Errorf("writing transcript: %w", err)
		}
		defer func() {
			if err := html.End(); err != nil {
				logger.Error("failed to finish transcript", "error", err)
			}
		}()
		renderers = append(renderers, html)
	}

	sess := session.New(client, render.Multi(renderers...),
		session.WithHistoryLimit(cfg.Session.HistoryLimit),
		session.WithContextWindow(cfg.Session.ContextWindow),
		session.WithLogger(logger),
	)

	return loop(ctx, os.Stdin, sess, client, logger)
}

// printHeader prints connection details and the backend's readiness.
func printHeader(ctx context.Context, cfg *config.Config, configPath string, client *chatapi.Client, hasToken bool) {
	green := color.New(color.FgGreen)
	gray := color.New(color.FgHiBlack)

	color.New(color.FgCyan, color.Bold).Printf("coven-chat")
	gray.Printf(" %s\n", version)

	green.Print("  ▶ ")
	fmt.Printf("Server: %s\n", client.BaseURL())
	if configPath != "" {
		green.Print("  ▶ ")
		fmt.Printf("Config: %s\n", configPath)
	}
	green.Print("  ▶ ")
	if hasToken {
		fmt.Println("Auth:   bearer token configured")
	} else {
		fmt.Println("Auth:   none (set COVEN_TOKEN for authentication)")
	}
	if cfg.Display.Transcript != "" {
		green.Print("  ▶ ")
		fmt.Printf("Transcript: %s\n", cfg.Display.Transcript)
	}

	printHealth(ctx, client)
	fmt.Println("Type a message and press Enter. /help for commands. Ctrl+C to quit.")
	fmt.Println()
}

func printHealth(ctx context.Context, client *chatapi.Client) {
	health := client.Health(ctx)
	switch {
	case health.BotReady:
		color.New(color.FgGreen).Printf("  ● %s is ready\n", health.Status)
	case health.Status == "unreachable":
		color.New(color.FgRed).Println("  ● backend unreachable")
	default:
		color.New(color.FgYellow).Printf("  ● %s, bot not ready\n", health.Status)
	}
}

func loop(ctx context.Context, in io.Reader, sess *session.Session, client *chatapi.Client, logger *slog.Logger) error {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Print("> ")

		// Read input with context awareness
		inputCh := make(chan string, 1)
		errCh := make(chan error, 1)

		go func() {
			if scanner.Scan() {
				inputCh <- scanner.Text()
			} else if err := scanner.Err(); err != nil {
				errCh <- err
			} else {
				errCh <- io.EOF
			}
		}()

		var input string
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		case input = <-inputCh:
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		switch input {
		case "/quit", "/exit", "/q":
			return nil
		case "/help":
			printHelp()
			fmt.Println()
			continue
		case "/history":
			printHistory(sess)
			fmt.Println()
			continue
		case "/health":
			printHealth(ctx, client)
			fmt.Println()
			continue
		}

		res := sess.Submit(ctx, input)
		logger.Debug("submit finished", "outcome", res.Outcome.String(), "history", sess.Len())
		fmt.Println()
	}
}

// printHelp displays available commands.
func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  /history       Show the exchanges kept for context")
	fmt.Println("  /health        Check backend health")
	fmt.Println("  /help          Show this help")
	fmt.Println("  /quit          Exit coven-chat")
}

func printHistory(sess *session.Session) {
	history := sess.History()
	if len(history) == 0 {
		fmt.Println("No exchanges yet")
		return
	}

	gray := color.New(color.FgHiBlack)
	window := len(sess.ContextWindow())
	for i, ex := range history {
		marker := " "
		if i >= len(history)-window {
			marker = "*"
		}
		gray.Printf("%s %2d. ", marker, i+1)
		fmt.Printf("You: %s\n", ex.UserText)
		gray.Print("      ")
		fmt.Printf("Bot: %s\n", ex.BotText)
	}
	gray.Println("(* sent as context with the next message)")
}
