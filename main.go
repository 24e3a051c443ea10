// Command hexfray starts the game server: REST API, WebSocket rooms, and the
// Redis-backed game state behind them.
//
// Configuration comes from the environment (optionally a .env file); the CLI
// only controls the listen address and debug logging.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/hexfray/hexfray/api"
	"github.com/hexfray/hexfray/auth"
	"github.com/hexfray/hexfray/game/config"
	"github.com/hexfray/hexfray/kv"
	"github.com/hexfray/hexfray/logger"
	"github.com/hexfray/hexfray/room"
	"github.com/hexfray/hexfray/store"
	"github.com/hexfray/hexfray/transport/websocket"
)

const (
	Version = "1.0.0"
	AppName = "hexfray"
)

func main() {
	cmd := &cli.Command{
		Name:    AppName,
		Usage:   "authoritative hex territory game server",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Value: "0.0.0.0",
				Usage: "HTTP listen host",
			},
			&cli.IntFlag{
				Name:  "port",
				Value: 8080,
				Usage: "HTTP listen port",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd.String("host"), int(cmd.Int("port")), cmd.Bool("debug"))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, host string, port int, debug bool) error {
	// Load .env if present; absence is not an error.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: loading .env: %v\n", err)
	}

	if err := logger.Init(debug); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	client := kv.New(cfg.RedisAddr, cfg.RedisPoolSize)
	defer client.Close()
	if err := client.Ping(ctx); err != nil {
		// Start anyway: the availability flag keeps the loops quiet until
		// the store comes back.
		logger.L().Warn("store unreachable at startup", zap.Error(err))
	}

	st := store.New(client, cfg)
	authsvc := auth.New(st, cfg.Secret)
	hub := websocket.NewHub()
	mm := room.NewMatchmaker(cfg, st, authsvc, hub)

	if err := mm.RestoreActiveRooms(ctx); err != nil {
		logger.L().Warn("restoring active games failed", zap.Error(err))
	}

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      api.NewServer(st, authsvc, mm, hub),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("server listening",
			zap.String("addr", addr), zap.String("version", Version))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.L().Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.L().Warn("shutdown incomplete", zap.Error(err))
	}
	logger.L().Info("server stopped")
	return nil
}
