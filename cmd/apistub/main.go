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
	"github.com/prudhvinik1/grftalk/internal/apistub"
	"github.com/prudhvinik1/grftalk/internal/config"
	"github.com/prudhvinik1/grftalk/internal/logging"
)

func main() {
	godotenv.Load()

	cfg, err := config.LoadStubConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)

	stub := apistub.New(apistub.Options{
		JWTSecret: cfg.JWTSecret,
		JWTExpiry: cfg.JWTExpiry,
		Logger:    logger,
	})

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Mount("/", stub.Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	logger.Info("starting api stub", "port", cfg.Port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
