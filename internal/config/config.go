// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep defaults in New and let Load layer file and env on top.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration for both the blob host binary
// and the embedded scorecard service. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the blob host HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataDir holds the local badger database for write-through
	// persistence of the scorecard document.
	DataDir string `koanf:"data_dir"`

	// RemoteEndpoint is the base URL of the session blob host used for
	// cloud sync, e.g. "https://mashup.example.com".
	RemoteEndpoint string `koanf:"remote_endpoint"`

	// PollIntervalMS sets the cadence of non-forced pulls while a
	// session is live.
	PollIntervalMS int `koanf:"poll_interval_ms"`

	// PushTimeoutMS bounds a single push or pull request.
	PushTimeoutMS int `koanf:"push_timeout_ms"`

	// OutboxSize bounds the queue of snapshots awaiting push.
	OutboxSize int `koanf:"outbox_size"`

	// SessionTTLHours controls how long the blob host keeps an idle
	// session before the sweep reaps it.
	SessionTTLHours int `koanf:"session_ttl_hours"`

	// SweepIntervalMS sets how often the blob host scans for expired
	// sessions.
	SweepIntervalMS int `koanf:"sweep_interval_ms"`

	// MaxPayloadBytes caps the size of a session document the blob host
	// accepts.
	MaxPayloadBytes int64 `koanf:"max_payload_bytes"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		DataDir:         "data",
		RemoteEndpoint:  "http://localhost:9080",
		PollIntervalMS:  12_000,
		PushTimeoutMS:   10_000,
		OutboxSize:      64,
		SessionTTLHours: 24,
		SweepIntervalMS: 60_000,
		MaxPayloadBytes: 4 << 20,
	}
}
