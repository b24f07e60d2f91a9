package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prudhvinik1/grftalk/internal/api"
	"github.com/prudhvinik1/grftalk/internal/config"
	"github.com/prudhvinik1/grftalk/internal/credentials"
	"github.com/prudhvinik1/grftalk/internal/handlers"
	"github.com/prudhvinik1/grftalk/internal/logging"
)

func main() {
	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)

	remote := api.NewClient(cfg.APIBaseURL, &http.Client{Timeout: cfg.HTTPTimeout})
	h := handlers.New(remote, handlers.Options{
		Cookie:         credentials.CookieOptions{Secure: cfg.CookieSecure},
		SessionTTL:     cfg.SessionTTL,
		PresenceWindow: cfg.PresenceWindow,
		Logger:         logger,
	})

	// Initialize HTTP Server
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	h.Register(router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	// graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	logger.Info("starting server", "port", cfg.ServerPort, "api", cfg.APIBaseURL)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
