package streamchat

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	valid := DefaultConfig()
	valid.BaseURL = "ws://chat.example.com"
	require.NoError(t, valid.Validate())

	tests := map[string]func(*Config){
		"empty url":        func(c *Config) { c.BaseURL = "" },
		"bad scheme":       func(c *Config) { c.BaseURL = "ftp://chat.example.com" },
		"no host":          func(c *Config) { c.BaseURL = "ws://" },
		"zero reconnect":   func(c *Config) { c.ReconnectDelay = 0 },
		"negative retry":   func(c *Config) { c.SendRetryDelay = -time.Second },
		"zero write queue": func(c *Config) { c.WriteQueueSize = 0 },
		"unparseable url":  func(c *Config) { c.BaseURL = "ws://[::1" },
		"zero read limit":  func(c *Config) { c.ReadLimit = 0 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			mutate(&cfg)
			err := cfg.Validate()
			require.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestConfigRoomURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "wss://dev.example.com"

	u, err := cfg.roomURL("0f8fad5b-d9cb-469f-a165-70867728950e", "a b&c")
	require.NoError(t, err)
	require.Equal(t, "wss://dev.example.com/ws/0f8fad5b-d9cb-469f-a165-70867728950e?token=a+b%26c", u)

	u, err = cfg.roomURL("room", "")
	require.NoError(t, err)
	require.Equal(t, "wss://dev.example.com/ws/room?token=", u)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "streamchat.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_url = "ws://localhost:8000"
reconnect_delay = "2s"
system_sender = "assistant"
`), 0o600))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	require.Equal(t, "ws://localhost:8000", cfg.BaseURL)
	require.Equal(t, 2*time.Second, cfg.ReconnectDelay)
	require.Equal(t, "assistant", cfg.SystemSender)
	// Untouched keys keep their defaults.
	require.Equal(t, 500*time.Millisecond, cfg.SendRetryDelay)
	require.Equal(t, 16, cfg.WriteQueueSize)
}

func TestLoadConfigFileErrors(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.toml"))
	require.True(t, errors.Is(err, ErrInvalidConfig))

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte(`base_url = `), 0o600))
	_, err = LoadConfigFile(path)
	require.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("STREAMCHAT_BASE_URL", "wss://env.example.com")
	t.Setenv("STREAMCHAT_RECONNECT_DELAY", "750ms")

	cfg := DefaultConfig()
	cfg.SystemSender = "bot"
	require.NoError(t, ApplyEnv(&cfg))
	require.Equal(t, "wss://env.example.com", cfg.BaseURL)
	require.Equal(t, 750*time.Millisecond, cfg.ReconnectDelay)
	require.Equal(t, "bot", cfg.SystemSender)

	t.Setenv("STREAMCHAT_WRITE_QUEUE_SIZE", "lots")
	require.True(t, errors.Is(ApplyEnv(&cfg), ErrInvalidConfig))
}
