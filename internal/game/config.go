package game

import (
	"time"

	"go.uber.org/zap"

	"github.com/peterkuimelis/hollowstate/internal/log"
)

// Timings holds every phase and window duration.
type Timings struct {
	Plotting      time.Duration
	Action        time.Duration // idle turn timeout; 0 waits forever
	Reaction      time.Duration // window after a played card
	ShortReaction time.Duration // window after a coup prep or alliance break
	AllianceOffer time.Duration
	Vote          time.Duration
	Crisis        time.Duration
	ViolentCoup   time.Duration
	MilitaryCoup  time.Duration
	BotDelay      time.Duration // automated players wait this long into each phase
}

// DefaultTimings returns the standard table timers.
func DefaultTimings() Timings {
	return Timings{
		Plotting:      30 * time.Second,
		Action:        60 * time.Second,
		Reaction:      10 * time.Second,
		ShortReaction: 8 * time.Second,
		AllianceOffer: 15 * time.Second,
		Vote:          20 * time.Second,
		Crisis:        15 * time.Second,
		ViolentCoup:   30 * time.Second,
		MilitaryCoup:  12 * time.Second,
		BotDelay:      350 * time.Millisecond,
	}
}

// Config holds configuration for creating a new table.
type Config struct {
	MaxRounds         int
	HandSize          int
	StartSupport      int
	StartStability    int
	StartMoney        int
	ElectionThreshold int
	MaxHumans         int
	MaxSeats          int
	Timings           Timings
	Catalog           *Catalog
	Seed              int64            // RNG seed (0 for time-based)
	Clock             func() time.Time // nil uses time.Now
	Logger            log.EventLogger  // room event log; nil uses a MemoryLogger
	Zap               *zap.Logger      // operational log; nil is a no-op
}

// DefaultConfig returns the standard rules.
func DefaultConfig() Config {
	return Config{
		MaxRounds:         8,
		HandSize:          5,
		StartSupport:      5,
		StartStability:    5,
		StartMoney:        3,
		ElectionThreshold: 8,
		MaxHumans:         2,
		MaxSeats:          6,
		Timings:           DefaultTimings(),
	}
}

// withDefaults fills zero-valued fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxRounds <= 0 {
		c.MaxRounds = d.MaxRounds
	}
	if c.HandSize <= 0 {
		c.HandSize = d.HandSize
	}
	if c.StartSupport <= 0 {
		c.StartSupport = d.StartSupport
	}
	if c.StartStability <= 0 {
		c.StartStability = d.StartStability
	}
	if c.StartMoney <= 0 {
		c.StartMoney = d.StartMoney
	}
	if c.ElectionThreshold <= 0 {
		c.ElectionThreshold = d.ElectionThreshold
	}
	if c.MaxHumans <= 0 {
		c.MaxHumans = d.MaxHumans
	}
	if c.MaxSeats <= 0 {
		c.MaxSeats = d.MaxSeats
	}
	if c.Timings == (Timings{}) {
		c.Timings = d.Timings
	}
	if c.Catalog == nil {
		c.Catalog = DefaultCatalog()
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	if c.Logger == nil {
		c.Logger = log.NewMemoryLogger()
	}
	if c.Zap == nil {
		c.Zap = zap.NewNop()
	}
	return c
}
