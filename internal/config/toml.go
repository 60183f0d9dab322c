// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Game      GameConfig      `toml:"game"`
	Generator GeneratorConfig `toml:"generator"`
	Server    ServerConfig    `toml:"server"`
	Log       LogConfig       `toml:"log"`
}

// GameConfig maps play settings.
type GameConfig struct {
	Difficulty      *string  `toml:"difficulty"`
	PixelsPerSecond *float64 `toml:"pixels-per-second"`
	MinLineTimeMs   *int     `toml:"min-line-time-ms"`
	GuessTimeLimit  *int     `toml:"guess-time-limit"`
	HintCooldown    *int     `toml:"hint-cooldown"`
	WrongFlashMs    *int     `toml:"wrong-flash-ms"`
	PuzzleDir       *string  `toml:"puzzle-dir"`
}

// GeneratorConfig maps the remote puzzle generator settings.
type GeneratorConfig struct {
	Endpoint       *string `toml:"endpoint"`
	Model          *string `toml:"model"`
	APIKeyEnv      *string `toml:"api-key-env"`
	TimeoutSeconds *int    `toml:"timeout-seconds"`
}

// ServerConfig maps the HTTP server settings.
type ServerConfig struct {
	Addr *string `toml:"addr"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Sample is the commented default config printed by `dotdaily config`.
const Sample = `[game]
# difficulty = "easy"         # easy or hard
# pixels-per-second = 200
# min-line-time-ms = 200
# guess-time-limit = 20       # seconds
# hint-cooldown = 5           # seconds
# wrong-flash-ms = 800
# puzzle-dir = ""             # directory with <category>.json overrides

[generator]
# endpoint = "https://api.anthropic.com/v1/messages"
# model = "claude-3-5-sonnet-latest"
# api-key-env = "ANTHROPIC_API_KEY"
# timeout-seconds = 30

[server]
# addr = "127.0.0.1:8080"

[log]
# level = "info"
# file = ""
`
