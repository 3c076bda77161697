package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"chat-relay/api"
	"chat-relay/auth"
	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/services"
	"chat-relay/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so deferred cleanup always executes before
// the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB, accounts only)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Account service
	tokens := auth.NewTokenManager(config.JWTSecret, config.AuthTokenDuration)
	users := repositories.NewUserRepository(db)
	authService := services.NewAuthService(users, tokens)

	// 4. Relay engine
	replacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return err
	}
	words, err := moderation.DefaultWords()
	if err != nil {
		return fmt.Errorf("wordlist loading failed: %w", err)
	}
	masker, err := moderation.NewMasker(words, replacement)
	if err != nil {
		return fmt.Errorf("masker build failed: %w", err)
	}

	var verifier runtime.TokenVerifier
	if config.AuthRequired {
		verifier = tokens
		log.Info("Join credential gate enabled")
	}

	registry := runtime.NewRegistry()
	router := runtime.NewRouter(log, registry, masker)
	presence := runtime.NewBroadcaster(log)
	relay := runtime.NewRelay(log, registry, router, presence, verifier)
	relayService := services.NewRelayService(relay)

	// 5. HTTP surface
	wsHandler := ws.NewHandler(log, relayService, config.ConnectionBufferSize)
	routes := api.NewRouter(api.RouterDeps{
		WS:         wsHandler,
		Auth:       api.NewAuthHandler(log, authService),
		Tokens:     tokens,
		RateBurst:  config.RateLimitBurst,
		RateRefill: config.RateLimitRefill,
	})

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:         address,
		Handler:      routes,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // websocket connections are long-lived
	}

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting relay server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", "error", err)
	}
	relay.Shutdown(shutdownCtx)
	log.Info("Program stopped cleanly")

	return nil
}
