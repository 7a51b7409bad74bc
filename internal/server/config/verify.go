package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/yndnr/tokgate-go/internal/telemetry/logger"
)

// minCredentialKeyLen is the shortest accepted credential key.
const minCredentialKeyLen = 16

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	checks := []func(*ServerConfig) error{
		verifyServer,
		verifyTelegram,
		verifyHistory,
		verifyAuth,
		verifySecurity,
		verifyRateLimit,
		verifyTelemetry,
		verifyLog,
	}
	for _, check := range checks {
		if err := check(cfg); err != nil {
			return err
		}
	}
	return nil
}

func verifyServer(cfg *ServerConfig) error {
	h := cfg.Server.HTTP
	if h.Addr == "" {
		return errors.New("server.http.addr is required")
	}
	if _, _, err := net.SplitHostPort(h.Addr); err != nil {
		return fmt.Errorf("server.http.addr: %w", err)
	}
	if (h.TLSCertFile == "") != (h.TLSKeyFile == "") {
		return errors.New("server.http.tls_cert_file and tls_key_file must be set together")
	}
	for _, f := range []string{h.TLSCertFile, h.TLSKeyFile} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("server.http TLS file: %w", err)
		}
	}
	if h.MaxUploadBytes <= 0 {
		return errors.New("server.http.max_upload_bytes must be positive")
	}
	if h.ShutdownTimeout <= 0 {
		return errors.New("server.http.shutdown_timeout must be positive")
	}
	if h.SpoolDir != "" {
		if fi, err := os.Stat(h.SpoolDir); err != nil || !fi.IsDir() {
			return fmt.Errorf("server.http.spool_dir %q is not a directory", h.SpoolDir)
		}
	}
	return nil
}

func verifyTelegram(cfg *ServerConfig) error {
	if cfg.Telegram.ConnectTimeout <= 0 {
		return errors.New("telegram.connect_timeout must be positive")
	}
	if strings.TrimSpace(cfg.Telegram.Device.Model) == "" {
		return errors.New("telegram.device.model is required")
	}
	return nil
}

func verifyHistory(cfg *ServerConfig) error {
	h := cfg.History
	if h.PrefetchDelay < 0 || h.BatchDelay < 0 {
		return errors.New("history delays must not be negative")
	}
	if h.BatchSize < 0 {
		return errors.New("history.batch_size must not be negative")
	}
	return nil
}

func verifyAuth(cfg *ServerConfig) error {
	if cfg.Auth.PendingTTL <= 0 {
		return errors.New("auth.pending_ttl must be positive")
	}
	if cfg.Auth.SweepInterval <= 0 {
		return errors.New("auth.sweep_interval must be positive")
	}
	return nil
}

func verifySecurity(cfg *ServerConfig) error {
	if k := cfg.Security.CredentialKey; k != "" && len(k) < minCredentialKeyLen {
		return fmt.Errorf("security.credential_key must be at least %d bytes", minCredentialKeyLen)
	}
	return nil
}

func verifyRateLimit(cfg *ServerConfig) error {
	r := cfg.RateLimit
	if !r.Enabled {
		return nil
	}
	if r.RequestsPerSecond <= 0 {
		return errors.New("ratelimit.requests_per_second must be positive")
	}
	if r.Burst < 0 {
		return errors.New("ratelimit.burst must not be negative")
	}
	return nil
}

func verifyTelemetry(cfg *ServerConfig) error {
	t := cfg.Telemetry.Tracing
	if t.SampleRatio < 0 || t.SampleRatio > 1 {
		return errors.New("telemetry.tracing.sample_ratio must be within [0, 1]")
	}
	if t.Enabled && t.Endpoint == "" {
		return errors.New("telemetry.tracing.endpoint is required when tracing is enabled")
	}
	return nil
}

func verifyLog(cfg *ServerConfig) error {
	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Log.Level)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "json", "text", "console":
	default:
		return fmt.Errorf("log.format %q is not json or text", cfg.Log.Format)
	}
	return nil
}
