package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/peterkuimelis/hollowstate/internal/config"
	"github.com/peterkuimelis/hollowstate/internal/room"
	"github.com/peterkuimelis/hollowstate/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.ParseConfig(flag.NewFlagSet("hollowstate-server", flag.ExitOnError), os.Args[1:])
	if err != nil {
		return err
	}
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

	logger.Info("hollowstate server starting", zap.String("addr", cfg.Addr))
	err = web.NewServer(reg, gameCfg.Catalog, logger).ListenAndServe(ctx, cfg.Addr)
	stop()
	return err
}
