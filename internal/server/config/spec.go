package config

import "time"

// ServerConfig is the root configuration for tokgate-server.
type ServerConfig struct {
	Server    ServerSection    `koanf:"server"`
	Telegram  TelegramSection  `koanf:"telegram"`
	History   HistorySection   `koanf:"history"`
	Auth      AuthSection      `koanf:"auth"`
	Security  SecuritySection  `koanf:"security"`
	RateLimit RateLimitSection `koanf:"ratelimit"`
	Telemetry TelemetrySection `koanf:"telemetry"`
	Log       LogSection       `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP  HTTPConfig  `koanf:"http"`
	Local LocalConfig `koanf:"local"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	// CORSAllowedOrigins lists allowed origins. Empty allows all.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// MaxUploadBytes bounds send_with_file bodies.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// SpoolDir holds media while it is served. Empty uses the system temp dir.
	SpoolDir string `koanf:"spool_dir"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// EnableAudit logs every request.
	EnableAudit bool `koanf:"enable_audit"`
}

// LocalConfig configures the local management socket. An empty path
// disables it.
type LocalConfig struct {
	Path string `koanf:"path"`
}

// TelegramSection configures protocol connections.
type TelegramSection struct {
	// ConnectTimeout bounds connect plus the authorization check.
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	Device         DeviceConfig  `koanf:"device"`
}

// DeviceConfig is the device the gateway reports to the remote service.
type DeviceConfig struct {
	Model         string `koanf:"model"`
	SystemVersion string `koanf:"system_version"`
	AppVersion    string `koanf:"app_version"`
	LangCode      string `koanf:"lang_code"`
}

// HistorySection paces history reads.
type HistorySection struct {
	PrefetchDelay time.Duration `koanf:"prefetch_delay"`
	BatchDelay    time.Duration `koanf:"batch_delay"`
	// BatchSize is the number of mapped messages between batch pauses.
	// Zero disables batch pauses.
	BatchSize int `koanf:"batch_size"`
}

// AuthSection configures the login flow.
type AuthSection struct {
	// PendingTTL is how long an unfinished login keeps its connection.
	PendingTTL time.Duration `koanf:"pending_ttl"`
	// SweepInterval is how often expired logins are dropped.
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// SecuritySection configures security settings.
type SecuritySection struct {
	// CredentialKey seals the credential half of issued tokens. Empty
	// issues legacy obfuscated tokens.
	CredentialKey string `koanf:"credential_key"`
}

// RateLimitSection configures per-IP HTTP rate limiting.
type RateLimitSection struct {
	Enabled           bool    `koanf:"enabled"`
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`
}

// TelemetrySection configures metrics and tracing.
type TelemetrySection struct {
	Metrics MetricsConfig `koanf:"metrics"`
	Tracing TracingConfig `koanf:"tracing"`
}

// MetricsConfig configures the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// TracingConfig configures OTLP/HTTP trace export.
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	Insecure    bool    `koanf:"insecure"`
	SampleRatio float64 `koanf:"sample_ratio"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
