package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"heystack-be/internal/bootstrap"
	"heystack-be/internal/config"
	"heystack-be/internal/pkg/logger"
	"heystack-be/internal/server"
	"heystack-be/internal/tracer"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.Tracing)

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize container: %v", err)
	}

	// 4. Initialize Server
	srv := server.New(cfg, container)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	// 5. Wait for a signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-quit:
		log.Printf("Received %s, shutting down", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[ERROR] Server stopped: %v", err)
			exitCode = 1
		}
	}

	// 6. Graceful shutdown: HTTP first, then events and the session flush
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[WARN] HTTP shutdown: %v", err)
	}
	if err := container.Shutdown(ctx); err != nil {
		container.Logger.Error(logger.ModuleApp, "Shutdown flush failed", map[string]interface{}{
			"error": err.Error(),
		})
		exitCode = 1
	}
	if err := shutdownTracer(ctx); err != nil {
		log.Printf("[WARN] Tracer shutdown: %v", err)
	}

	os.Exit(exitCode)
}
