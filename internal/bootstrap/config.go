package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/eleven-am/triage-client/internal/audio"
	"github.com/eleven-am/triage-client/internal/playback"
	"github.com/eleven-am/triage-client/internal/transport"
)

type Config struct {
	Endpoint    string `toml:"endpoint"`
	SessionID   string `toml:"session_id"`
	MonitorAddr string `toml:"monitor_addr"`

	SendBuffer          int `toml:"send_buffer"`
	HandshakeTimeoutMs  int `toml:"handshake_timeout_ms"`
	ReconnectBaseMs     int `toml:"reconnect_base_ms"`
	ReconnectMaxMs      int `toml:"reconnect_max_ms"`
	ReconnectMaxRetries int `toml:"reconnect_max_retries"`

	SampleRate     int `toml:"sample_rate"`
	ChunkThreshold int `toml:"chunk_threshold"`
	IdleWindowMs   int `toml:"idle_window_ms"`

	AudioInput    string   `toml:"audio_input"`
	PlayerCommand string   `toml:"player_command"`
	PlayerArgs    []string `toml:"player_args"`

	LogLevel string `toml:"log_level"`
}

// LoadConfig reads the environment, then overlays an optional TOML file
// named by TRIAGE_CONFIG. File values win over environment values.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Endpoint:    getEnv("TRIAGE_ENDPOINT", "ws://localhost:8000/ws"),
		SessionID:   getEnv("TRIAGE_SESSION_ID", ""),
		MonitorAddr: getEnv("MONITOR_ADDR", ":8090"),

		SendBuffer:          getEnvInt("SEND_BUFFER", 64),
		HandshakeTimeoutMs:  getEnvInt("HANDSHAKE_TIMEOUT_MS", 10000),
		ReconnectBaseMs:     getEnvInt("RECONNECT_BASE_MS", 1000),
		ReconnectMaxMs:      getEnvInt("RECONNECT_MAX_MS", 30000),
		ReconnectMaxRetries: getEnvInt("RECONNECT_MAX_RETRIES", 5),

		SampleRate:     getEnvInt("SAMPLE_RATE", audio.DefaultSampleRate),
		ChunkThreshold: getEnvInt("CHUNK_THRESHOLD", audio.DefaultChunkThreshold),
		IdleWindowMs:   getEnvInt("IDLE_WINDOW_MS", int(playback.DefaultIdleWindow/time.Millisecond)),

		AudioInput:    getEnv("AUDIO_INPUT", "-"),
		PlayerCommand: getEnv("PLAYER_COMMAND", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if path := os.Getenv("TRIAGE_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	return cfg, nil
}

func (c *Config) TransportConfig() transport.Config {
	return transport.Config{
		Endpoint:         c.Endpoint,
		HandshakeTimeout: time.Duration(c.HandshakeTimeoutMs) * time.Millisecond,
		SendBuffer:       c.SendBuffer,
		Backoff: transport.Backoff{
			Base:        time.Duration(c.ReconnectBaseMs) * time.Millisecond,
			Max:         time.Duration(c.ReconnectMaxMs) * time.Millisecond,
			MaxAttempts: c.ReconnectMaxRetries,
		},
	}
}

func (c *Config) IdleWindow() time.Duration {
	return time.Duration(c.IdleWindowMs) * time.Millisecond
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
