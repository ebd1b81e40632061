package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/peterkuimelis/hollowstate/internal/config"
	hsmcp "github.com/peterkuimelis/hollowstate/internal/mcp"
	"github.com/peterkuimelis/hollowstate/internal/room"
	"github.com/peterkuimelis/hollowstate/internal/web"
)

// The agent plays over stdio. Humans join the same rooms through the
// websocket server started alongside it; -addr "" disables it.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.ParseConfig(flag.NewFlagSet("hollowstate-mcp", flag.ExitOnError), os.Args[1:])
	if err != nil {
		return err
	}
	// zap writes to stderr; stdout carries the MCP stream.
	logger, err := config.NewLogger(cfg.LogDev)
	if err != nil {
		return err
	}
	defer logger.Sync()

	gameCfg, err := cfg.GameConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := room.NewRegistry(ctx, room.Options{Game: gameCfg, Tick: cfg.Tick, Zap: logger})
	defer reg.Wait()

	if cfg.Addr != "" {
		go func() {
			err := web.NewServer(reg, gameCfg.Catalog, logger).ListenAndServe(ctx, cfg.Addr)
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server", zap.Error(err))
			}
		}()
	}

	s := server.NewMCPServer("hollowstate", "1.0.0")
	session := hsmcp.NewSession(reg, logger)
	session.RegisterTools(s)

	err = server.ServeStdio(s)
	stop()
	return err
}
