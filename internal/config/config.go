// Package config layers HOLLOWSTATE_* environment variables and command-line
// flags into the settings of the server and MCP commands.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"

	"github.com/peterkuimelis/hollowstate/internal/game"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Timers mirrors game.Timings with environment bindings.
type Timers struct {
	Plotting      time.Duration `env:"HOLLOWSTATE_PLOTTING" envDefault:"30s"`
	Action        time.Duration `env:"HOLLOWSTATE_ACTION" envDefault:"60s"`
	Reaction      time.Duration `env:"HOLLOWSTATE_REACTION" envDefault:"10s"`
	ShortReaction time.Duration `env:"HOLLOWSTATE_SHORT_REACTION" envDefault:"8s"`
	AllianceOffer time.Duration `env:"HOLLOWSTATE_ALLIANCE_OFFER" envDefault:"15s"`
	Vote          time.Duration `env:"HOLLOWSTATE_VOTE" envDefault:"20s"`
	Crisis        time.Duration `env:"HOLLOWSTATE_CRISIS" envDefault:"15s"`
	ViolentCoup   time.Duration `env:"HOLLOWSTATE_VIOLENT_COUP" envDefault:"30s"`
	MilitaryCoup  time.Duration `env:"HOLLOWSTATE_MILITARY_COUP" envDefault:"12s"`
	BotDelay      time.Duration `env:"HOLLOWSTATE_BOT_DELAY" envDefault:"350ms"`
}

// Config holds the settings shared by the server and MCP commands.
type Config struct {
	Addr        string        `env:"HOLLOWSTATE_ADDR" envDefault:":8080"`
	CatalogPath string        `env:"HOLLOWSTATE_CATALOG"`
	Tick        time.Duration `env:"HOLLOWSTATE_TICK" envDefault:"250ms"`
	LogDev      bool          `env:"HOLLOWSTATE_LOG_DEV"`
	Seed        int64         `env:"HOLLOWSTATE_SEED"`

	MaxRounds         int `env:"HOLLOWSTATE_MAX_ROUNDS" envDefault:"8"`
	HandSize          int `env:"HOLLOWSTATE_HAND_SIZE" envDefault:"5"`
	ElectionThreshold int `env:"HOLLOWSTATE_ELECTION_THRESHOLD" envDefault:"8"`
	MaxHumans         int `env:"HOLLOWSTATE_MAX_HUMANS" envDefault:"2"`
	MaxSeats          int `env:"HOLLOWSTATE_MAX_SEATS" envDefault:"6"`

	Timers Timers
}

// ParseConfig parses environment and then flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "card and agenda catalog YAML (default: built in)")
	fs.DurationVar(&cfg.Tick, "tick", cfg.Tick, "room timer scan interval")
	fs.BoolVar(&cfg.LogDev, "dev", cfg.LogDev, "human-readable development logging")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "fixed RNG seed for every room (0 for random)")
	fs.IntVar(&cfg.MaxRounds, "rounds", cfg.MaxRounds, "rounds before the game ends on standings")
	fs.IntVar(&cfg.MaxHumans, "humans", cfg.MaxHumans, "human players per room")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.Tick <= 0 {
		return Config{}, fmt.Errorf("tick must be positive, got %s", cfg.Tick)
	}
	return cfg, nil
}

// GameConfig builds the engine template for new rooms, loading the catalog
// override when one is set.
func (c Config) GameConfig() (game.Config, error) {
	g := game.DefaultConfig()
	g.MaxRounds = c.MaxRounds
	g.HandSize = c.HandSize
	g.ElectionThreshold = c.ElectionThreshold
	g.MaxHumans = c.MaxHumans
	g.MaxSeats = c.MaxSeats
	g.Seed = c.Seed
	g.Timings = game.Timings(c.Timers)
	if c.CatalogPath != "" {
		cat, err := game.LoadCatalog(c.CatalogPath)
		if err != nil {
			return game.Config{}, fmt.Errorf("load catalog %s: %w", c.CatalogPath, err)
		}
		g.Catalog = cat
	}
	return g, nil
}

// NewLogger returns the operational logger.
func NewLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
