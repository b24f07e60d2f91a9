package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prudhvinik1/grftalk/internal/api"
	"github.com/prudhvinik1/grftalk/internal/cli"
	"github.com/prudhvinik1/grftalk/internal/config"
	"github.com/prudhvinik1/grftalk/internal/credentials"
	"github.com/prudhvinik1/grftalk/internal/database"
	"github.com/prudhvinik1/grftalk/internal/gateway"
	"github.com/prudhvinik1/grftalk/internal/logging"
	"github.com/prudhvinik1/grftalk/internal/presence"
	"github.com/prudhvinik1/grftalk/internal/services"
	"github.com/prudhvinik1/grftalk/internal/state"
)

func main() {
	godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel).With("client_session", uuid.NewString())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Without redis the session lasts as long as the process.
	var store credentials.Store = credentials.NewMemoryStore(nil)
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL, logger)
		if err != nil {
			return fmt.Errorf("failed to create redis client: %w", err)
		}
		defer redisClient.Close()
		store = credentials.NewRedisStore(redisClient, cfg.ClientProfile)
	}

	remote := api.NewClient(cfg.APIBaseURL, &http.Client{Timeout: cfg.HTTPTimeout})
	gw := gateway.New(remote, store,
		gateway.WithSessionTTL(cfg.SessionTTL),
		gateway.WithLogger(logger),
		gateway.WithNavigator(gateway.NavigatorFunc(func(path string) {
			fmt.Println("Signed out. Type 'signin' to continue.")
		})),
	)
	svc := services.NewSessionService(gw, state.NewAuthStore(), state.NewChatStore(), logger)

	terminal := cli.NewTerminal(cli.DefaultHistoryFile(), os.Stdout)
	defer terminal.Close()

	repl := cli.NewREPL(svc, terminal, os.Stdout, presence.NewEvaluator(nil, cfg.PresenceWindow))
	if err := repl.Run(ctx); err != nil {
		logger.Error("client stopped", "error", err)
	}
	return nil
}
