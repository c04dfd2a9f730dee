package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/evcraddock/bloggu/internal/auth"
	"github.com/evcraddock/bloggu/internal/comment"
	"github.com/evcraddock/bloggu/internal/config"
	"github.com/evcraddock/bloggu/internal/logging"
	"github.com/evcraddock/bloggu/internal/ratelimit"
	"github.com/evcraddock/bloggu/internal/user"
	"github.com/evcraddock/bloggu/internal/web"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the HTTP server exposing the REST API and the GraphQL endpoint at /graphql.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "address to listen on (default: $BLOGGU_ADDR or :8080)")

	return cmd
}

func runServe(ctx context.Context, addrFlag string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if addrFlag != "" {
		cfg.Addr = addrFlag
	}

	logging.Setup(cfg.DevMode)

	database, err := openDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer closeDB(database)

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.TokenTTL)
	if err != nil {
		return err
	}

	opts := []user.Option{user.WithBcryptCost(cfg.BcryptCost)}
	if cfg.RedisURL != "" {
		throttle, err := ratelimit.NewRedisThrottle(cfg.RedisURL, cfg.LoginMaxFailures, cfg.LoginWindow)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer func() {
			if cerr := throttle.Close(); cerr != nil {
				slog.Warn("closing redis", "error", cerr)
			}
		}()
		opts = append(opts, user.WithThrottle(throttle))
		slog.Info("login throttling enabled", "max_failures", cfg.LoginMaxFailures, "window", cfg.LoginWindow)
	}

	users := user.NewService(user.NewRepository(database), tokens, opts...)
	comments := comment.NewService(comment.NewRepository(database))
	srv := web.NewServer(users, comments, auth.NewGuard(tokens, users))

	slog.Info("database ready", "dialect", database.Dialect)
	return srv.ListenAndServe(ctx, cfg.Addr)
}
