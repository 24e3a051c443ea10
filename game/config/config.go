package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Palette is the fixed set of colors assigned to new players at registration.
var Palette = []string{
	"#e74c3c", "#3498db", "#2ecc71", "#f1c40f",
	"#9b59b6", "#e67e22", "#1abc9c", "#e84393",
}

// Config holds every server tunable. Fields without an environment override
// keep their defaults; Load applies the environment on top of Default.
type Config struct {
	// Identity and backing store.
	Secret        string `env:"HEXFRAY_SECRET"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPoolSize int    `env:"REDIS_POOL_SIZE"`

	// Room timing.
	StartDelay         time.Duration `env:"START_DELAY"`
	TickInterval       time.Duration `env:"TICK_INTERVAL"`
	AutoExpandInterval time.Duration `env:"AUTO_EXPAND_INTERVAL"`
	CleanupDelay       time.Duration `env:"CLEANUP_DELAY"`
	SessionTTL         time.Duration `env:"SESSION_TTL"`

	// Lobby.
	MinReady         int `env:"MIN_READY"`
	CountdownSeconds int `env:"COUNTDOWN_SECONDS"`
	LobbyCapacity    int `env:"LOBBY_CAPACITY"`

	// Economy and combat.
	HexValue             int     `env:"HEX_VALUE"`
	ExpGrowth            int     `env:"EXP_GROWTH"`
	OccupiedBase         int     `env:"OCCUPIED_BASE"`
	AttackMult           float64 `env:"ATTACK_MULT"`
	BaseIncome           int     `env:"BASE_INCOME"`
	StartingPoints       int     `env:"STARTING_POINTS"`
	StartingMaxPoints    int     `env:"STARTING_MAX_POINTS"`
	AutoCaptureThreshold int     `env:"AUTO_CAPTURE_THRESHOLD"`
	UpgradeBankCost      int     `env:"UPGRADE_BANK_COST"`
	UpgradeCityCost      int     `env:"UPGRADE_CITY_COST"`
	UpgradeFortCost      int     `env:"UPGRADE_FORT_COST"`

	// Terrain generation.
	TerrainSeed          int64   `env:"TERRAIN_SEED"`
	MountainChainsMin    int     `env:"MOUNTAIN_CHAINS_MIN"`
	MountainChainsMax    int     `env:"MOUNTAIN_CHAINS_MAX"`
	MountainChainLenMin  int     `env:"MOUNTAIN_CHAIN_LEN_MIN"`
	MountainChainLenMax  int     `env:"MOUNTAIN_CHAIN_LEN_MAX"`
	MountainChainSpacing int     `env:"MOUNTAIN_CHAIN_SPACING"`
	MountainAreaSize     int     `env:"MOUNTAIN_AREA_SIZE"`
	MountainDensity      float64 `env:"MOUNTAIN_DENSITY"`
	MountainZigzagChance float64 `env:"MOUNTAIN_ZIGZAG_CHANCE"`
	RiverCount           int     `env:"RIVER_COUNT"`
	RiverLength          int     `env:"RIVER_LENGTH"`
	RiverSpacing         int     `env:"RIVER_SPACING"`
	RiverForkChance      float64 `env:"RIVER_FORK_CHANCE"`
	RiverForkLength      int     `env:"RIVER_FORK_LENGTH"`
}

// Default returns the configuration with every tunable at its documented
// default.
func Default() *Config {
	return &Config{
		Secret:        "dev-secret-change-me",
		RedisAddr:     "localhost:6379",
		RedisPoolSize: 10,

		StartDelay:         5 * time.Second,
		TickInterval:       1 * time.Second,
		AutoExpandInterval: 10 * time.Second,
		CleanupDelay:       60 * time.Second,
		SessionTTL:         time.Hour,

		MinReady:         2,
		CountdownSeconds: 5,
		LobbyCapacity:    32,

		HexValue:             10,
		ExpGrowth:            5,
		OccupiedBase:         5,
		AttackMult:           2.5,
		BaseIncome:           2,
		StartingPoints:       200,
		StartingMaxPoints:    200,
		AutoCaptureThreshold: 3,
		UpgradeBankCost:      100,
		UpgradeCityCost:      200,
		UpgradeFortCost:      300,

		TerrainSeed:          0,
		MountainChainsMin:    3,
		MountainChainsMax:    10,
		MountainChainLenMin:  8,
		MountainChainLenMax:  10,
		MountainChainSpacing: 10,
		MountainAreaSize:     60,
		MountainDensity:      0.15,
		MountainZigzagChance: 0.2,
		RiverCount:           3,
		RiverLength:          18,
		RiverSpacing:         15,
		RiverForkChance:      0.25,
		RiverForkLength:      6,
	}
}

// Load builds the configuration from defaults overlaid with environment
// variables.
func Load() (*Config, error) {
	cfg := Default()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Secret == "" {
		return fmt.Errorf("HEXFRAY_SECRET must not be empty")
	}
	if c.RedisPoolSize < 1 {
		return fmt.Errorf("REDIS_POOL_SIZE must be positive, got %d", c.RedisPoolSize)
	}
	if c.MinReady < 2 {
		return fmt.Errorf("MIN_READY must be at least 2, got %d", c.MinReady)
	}
	if c.MountainChainsMin > c.MountainChainsMax {
		return fmt.Errorf("mountain chain bounds inverted: %d > %d", c.MountainChainsMin, c.MountainChainsMax)
	}
	if c.MountainChainLenMin > c.MountainChainLenMax {
		return fmt.Errorf("mountain chain length bounds inverted: %d > %d", c.MountainChainLenMin, c.MountainChainLenMax)
	}
	return nil
}
