package streamchat

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/vovakirdan/streamchat-sdk-go/streamchat/internal"
)

// DefaultSystemSender is the username the backend uses for assistant frames.
const DefaultSystemSender = "GPT"

// Config controls how the client connects and retries.
type Config struct {
	// BaseURL is scheme and host of the chat server, e.g. "ws://localhost:8000".
	// The room path is appended as /ws/<room>.
	BaseURL string `toml:"base_url" env:"STREAMCHAT_BASE_URL"`

	// SystemSender marks frames authored by the non-human participant.
	SystemSender string `toml:"system_sender" env:"STREAMCHAT_SYSTEM_SENDER"`

	ReconnectDelay   time.Duration `toml:"reconnect_delay" env:"STREAMCHAT_RECONNECT_DELAY"`
	SendRetryDelay   time.Duration `toml:"send_retry_delay" env:"STREAMCHAT_SEND_RETRY_DELAY"`
	HandshakeTimeout time.Duration `toml:"handshake_timeout" env:"STREAMCHAT_HANDSHAKE_TIMEOUT"` // bounds the dial only
	ReadTimeout      time.Duration `toml:"read_timeout" env:"STREAMCHAT_READ_TIMEOUT"`
	WriteTimeout     time.Duration `toml:"write_timeout" env:"STREAMCHAT_WRITE_TIMEOUT"`
	WriteQueueSize   int           `toml:"write_queue_size" env:"STREAMCHAT_WRITE_QUEUE_SIZE"`

	// ReadLimit is the largest inbound frame in bytes. A streamed fragment is
	// the whole reply so far; a bigger one drops the connection and reconnects.
	ReadLimit int64 `toml:"read_limit" env:"STREAMCHAT_READ_LIMIT"`
}

// DefaultConfig returns sensible defaults.
// Set a timeout to 0 to disable it.
func DefaultConfig() Config {
	return Config{
		SystemSender:     DefaultSystemSender,
		ReconnectDelay:   5 * time.Second,
		SendRetryDelay:   500 * time.Millisecond,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
		WriteQueueSize:   16,
		ReadLimit:        internal.DefaultReadLimit,
	}
}

// Validate reports the first problem with the config.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return NewError(ErrorInvalidConfig, "empty base URL")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return WrapError(ErrorInvalidConfig, "parse base URL", err)
	}
	switch u.Scheme {
	case "ws", "wss", "http", "https":
	default:
		return NewError(ErrorInvalidConfig, fmt.Sprintf("unsupported scheme %q", u.Scheme))
	}
	if u.Host == "" {
		return NewError(ErrorInvalidConfig, "base URL has no host")
	}
	if c.ReconnectDelay <= 0 {
		return NewError(ErrorInvalidConfig, "reconnect delay must be positive")
	}
	if c.SendRetryDelay <= 0 {
		return NewError(ErrorInvalidConfig, "send retry delay must be positive")
	}
	if c.WriteQueueSize <= 0 {
		return NewError(ErrorInvalidConfig, "write queue size must be positive")
	}
	if c.ReadLimit <= 0 {
		return NewError(ErrorInvalidConfig, "read limit must be positive")
	}
	return nil
}

// LoadConfigFile decodes a TOML file on top of DefaultConfig.
// Durations are written as strings, e.g. reconnect_delay = "5s".
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, WrapError(ErrorInvalidConfig, "decode "+path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg fields from STREAMCHAT_* environment variables.
// Unset variables leave the field untouched.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return WrapError(ErrorInvalidConfig, "parse env", err)
	}
	return nil
}

// roomURL builds <base>/ws/<room>?token=<token>.
func (c Config) roomURL(room, token string) (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", WrapError(ErrorInvalidConfig, "parse base URL", err)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/" + room
	u.RawQuery = url.Values{"token": []string{token}}.Encode()
	return u.String(), nil
}
