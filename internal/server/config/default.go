package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr        = "127.0.0.1:8000"
	DefaultLocalSocket     = "/var/run/tokgate-server/tokgate-server.sock"
	DefaultMaxUploadBytes  = 50 << 20
	DefaultShutdownTimeout = 30 * time.Second

	DefaultConnectTimeout = 30 * time.Second
	DefaultDeviceModel    = "tokgate"
	DefaultSystemVersion  = "linux"
	DefaultAppVersion     = "1.0"
	DefaultLangCode       = "en"

	DefaultPrefetchDelay = 2 * time.Second
	DefaultBatchDelay    = time.Second
	DefaultBatchSize     = 20

	DefaultPendingTTL    = 10 * time.Minute
	DefaultSweepInterval = time.Minute

	DefaultRequestsPerSecond = 50
	DefaultBurst             = 100

	DefaultSampleRatio = 0.1

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:            DefaultHTTPAddr,
				MaxUploadBytes:  DefaultMaxUploadBytes,
				ShutdownTimeout: DefaultShutdownTimeout,
				EnableAudit:     true,
			},
			Local: LocalConfig{
				Path: DefaultLocalSocket,
			},
		},
		Telegram: TelegramSection{
			ConnectTimeout: DefaultConnectTimeout,
			Device: DeviceConfig{
				Model:         DefaultDeviceModel,
				SystemVersion: DefaultSystemVersion,
				AppVersion:    DefaultAppVersion,
				LangCode:      DefaultLangCode,
			},
		},
		History: HistorySection{
			PrefetchDelay: DefaultPrefetchDelay,
			BatchDelay:    DefaultBatchDelay,
			BatchSize:     DefaultBatchSize,
		},
		Auth: AuthSection{
			PendingTTL:    DefaultPendingTTL,
			SweepInterval: DefaultSweepInterval,
		},
		RateLimit: RateLimitSection{
			Enabled:           true,
			RequestsPerSecond: DefaultRequestsPerSecond,
			Burst:             DefaultBurst,
		},
		Telemetry: TelemetrySection{
			Metrics: MetricsConfig{Enabled: true},
			Tracing: TracingConfig{SampleRatio: DefaultSampleRatio},
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
