package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvPath names the environment variable that overrides DefaultPath.
const (
	EnvPath     = "SURVIVOR_CONFIG"
	DefaultPath = "config/survivor.toml"
)

type Config struct {
	Session   SessionConfig   `toml:"session"`
	World     WorldConfig     `toml:"world"`
	Spawn     SpawnConfig     `toml:"spawn"`
	Pools     PoolsConfig     `toml:"pools"`
	Clock     ClockConfig     `toml:"clock"`
	Content   ContentConfig   `toml:"content"`
	Logging   LoggingConfig   `toml:"logging"`
	Spectator SpectatorConfig `toml:"spectator"`
	Audio     AudioConfig     `toml:"audio"`
}

type SessionConfig struct {
	FrameRate     int           `toml:"frame_rate"`      // frames per second of the driver
	MaxFrameDelta time.Duration `toml:"max_frame_delta"` // longer frames are clamped
	Strict        bool          `toml:"strict"`          // panic on pool invariant violations
	Seed          int64         `toml:"seed"`            // 0 = seed from time
}

type WorldConfig struct {
	SectorSize    float64 `toml:"sector_size"`
	KeepRadius    int     `toml:"keep_radius"` // sectors kept around the focus; 0 = never tear down
	ContactRadius float64 `toml:"contact_radius"`
}

type SpawnConfig struct {
	Interval  time.Duration `toml:"interval"`
	RingInner float64       `toml:"ring_inner"`
	RingWidth float64       `toml:"ring_width"`
}

type PoolsConfig struct {
	Hostiles    int `toml:"hostiles"`
	Experience  int `toml:"experience"`
	Medkits     int `toml:"medkits"`
	Decorations int `toml:"decorations"`
}

type ClockConfig struct {
	LevelThresholds []int `toml:"level_thresholds"` // seconds, ascending
}

type ContentConfig struct {
	Path    string `toml:"path"`    // yaml content table; empty = built-in
	Scripts string `toml:"scripts"` // lua scripts root; empty = flat difficulty
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
	File   string `toml:"file"`   // console output goes here while the terminal is in use
}

type SpectatorConfig struct {
	Enabled     bool          `toml:"enabled"`
	BindAddress string        `toml:"bind_address"`
	Interval    time.Duration `toml:"interval"`
}

type AudioConfig struct {
	Enabled    bool    `toml:"enabled"`
	SampleRate int     `toml:"sample_rate"`
	Volume     float64 `toml:"volume"`
}

// Path returns the config file to load: $SURVIVOR_CONFIG or DefaultPath.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			FrameRate:     60,
			MaxFrameDelta: 250 * time.Millisecond,
		},
		World: WorldConfig{
			SectorSize:    30,
			KeepRadius:    2,
			ContactRadius: 0.5,
		},
		Spawn: SpawnConfig{
			Interval:  time.Second,
			RingInner: 9,
			RingWidth: 4,
		},
		Pools: PoolsConfig{
			Hostiles:    50,
			Experience:  120,
			Medkits:     30,
			Decorations: 160,
		},
		Clock: ClockConfig{
			LevelThresholds: []int{0, 60, 180, 300},
		},
		Content: ContentConfig{
			Path:    "data/yaml/content.yaml",
			Scripts: "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   "survivor.log",
		},
		Spectator: SpectatorConfig{
			Enabled:     false,
			BindAddress: "127.0.0.1:7070",
			Interval:    100 * time.Millisecond,
		},
		Audio: AudioConfig{
			Enabled:    true,
			SampleRate: 44100,
			Volume:     0.3,
		},
	}
}

// Validate rejects values the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Session.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("session.frame_rate must be positive, got %d", c.Session.FrameRate))
	}
	if c.World.SectorSize < 1 || c.World.SectorSize != math.Trunc(c.World.SectorSize) {
		// sector keys are integer multiples of the size
		errs = append(errs, fmt.Errorf("world.sector_size must be a whole number of at least 1, got %v", c.World.SectorSize))
	}
	if c.World.KeepRadius != 0 && c.World.KeepRadius < 2 {
		// radius 1 would tear down sectors the 3x3 sync just generated
		errs = append(errs, fmt.Errorf("world.keep_radius must be 0 or at least 2, got %d", c.World.KeepRadius))
	}
	if c.Spawn.Interval < 0 {
		errs = append(errs, fmt.Errorf("spawn.interval must not be negative, got %s", c.Spawn.Interval))
	}
	if c.Spawn.RingInner < 0 || c.Spawn.RingWidth < 0 {
		errs = append(errs, errors.New("spawn ring radii must not be negative"))
	}
	for i := 1; i < len(c.Clock.LevelThresholds); i++ {
		if c.Clock.LevelThresholds[i] <= c.Clock.LevelThresholds[i-1] {
			errs = append(errs, fmt.Errorf("clock.level_thresholds must be ascending at index %d", i))
			break
		}
	}
	return errors.Join(errs...)
}

// FrameInterval is the driver tick derived from FrameRate.
func (s SessionConfig) FrameInterval() time.Duration {
	if s.FrameRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(s.FrameRate)
}
