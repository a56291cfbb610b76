package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"score-table/auth"
	"score-table/contract"
	"score-table/domain"
	"score-table/internal"
	"score-table/runtime"
	"score-table/runtime/workers"
	"score-table/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the listener and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Identity verification seam
	var verifier contract.IdentityVerifier
	switch config.AuthMode {
	case "signed-token":
		if config.AuthJWTSecret == "" {
			return fmt.Errorf("AUTH_MODE=signed-token requires AUTH_JWT_SECRET")
		}
		verifier = auth.NewSignedToken(config.AuthJWTSecret)
	case "self-asserted":
		verifier = auth.SelfAsserted{}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", config.AuthMode)
	}

	// 3. Coordinator wiring
	registry := runtime.NewRegistry()
	pool := domain.NewAvatarPool(domain.Catalog, rand.New(rand.NewSource(time.Now().UnixNano())))
	coordinator := runtime.NewCoordinator(log, registry, pool,
		rand.New(rand.NewSource(time.Now().UnixNano())), config.RoomTTL)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Supervised background workers
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewReaperWorker(log, coordinator, config.ReaperInterval))
	supervisorDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supervisorDone)
	}()

	// 6. WebSocket endpoint
	mux := http.NewServeMux()
	mux.Handle("/ws", server.NewHandler(log, coordinator, verifier, config.SendBufferSize))

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{Addr: address, Handler: mux}
	serverErr := make(chan error, 1)
	go func() {
		log.Info("Coordinator listening", "address", address)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// 7. Debug endpoint, best-effort
	debugServer := internal.NewDebugServer(log, config.DebugPort, func() map[string]any {
		return map[string]any{
			"rooms":        coordinator.RoomCount(),
			"participants": coordinator.ParticipantCount(),
		}
	})
	go func() {
		if err := debugServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Warn("Debug server stopped", "error", err)
		}
	}()

	// 8. Wait for shutdown
	select {
	case err := <-serverErr:
		return fmt.Errorf("listener failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	_ = debugServer.Shutdown(shutdownCtx)

	sup.Stop()
	<-supervisorDone
	return nil
}
