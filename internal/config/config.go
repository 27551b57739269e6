// Package config provides centralized configuration management.
// Defaults match the wire contract; environment variables override them.
package config

import (
	"os"
	"strconv"

	"tank-arena/internal/world"
)

// ServerConfig holds the listener settings. The bind host comes from the
// CLI's single positional argument; ports may be overridden via env.
type ServerConfig struct {
	Host        string // bind host for both listeners
	GamePort    int    // websocket transport
	ControlPort int    // control-plane HTTP API
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Host:        "127.0.0.1",
		GamePort:    8080,
		ControlPort: 8081,
	}
}

// ServerFromEnv returns server configuration with environment overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("GAME_PORT", 0); p > 0 {
		cfg.GamePort = p
	}
	if p := getEnvInt("CONTROL_PORT", 0); p > 0 {
		cfg.ControlPort = p
	}
	return cfg
}

// GameConfig holds the tick settings applied to newly created lobbies.
type GameConfig struct {
	TickLengthMilliSeconds int
}

// DefaultGame returns the default game configuration.
func DefaultGame() GameConfig {
	return GameConfig{TickLengthMilliSeconds: world.TickLengthMilliSeconds}
}

// GameFromEnv returns game configuration with environment overrides.
func GameFromEnv() GameConfig {
	cfg := DefaultGame()

	if t := getEnvInt("TICK_LENGTH_MS", 0); t > 0 {
		cfg.TickLengthMilliSeconds = t
	}
	return cfg
}

// DebugConfig holds the observability listener settings.
type DebugConfig struct {
	Enabled    bool
	ListenAddr string
}

// DebugFromEnv returns the debug configuration with environment overrides.
func DebugFromEnv() DebugConfig {
	cfg := DebugConfig{Enabled: true, ListenAddr: "127.0.0.1:6060"}

	if os.Getenv("DISABLE_DEBUG_SERVER") == "true" {
		cfg.Enabled = false
	}
	if addr := os.Getenv("DEBUG_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	return cfg
}

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Server ServerConfig
	Game   GameConfig
	Debug  DebugConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Server: ServerFromEnv(),
		Game:   GameFromEnv(),
		Debug:  DebugFromEnv(),
	}
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
