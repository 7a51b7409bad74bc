package config

import "fmt"

// Sanitize returns a copy of cfg that is safe to log. The credential key is
// replaced by its length.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	out := *cfg
	out.Server.HTTP.CORSAllowedOrigins = append([]string(nil), cfg.Server.HTTP.CORSAllowedOrigins...)
	if n := len(cfg.Security.CredentialKey); n > 0 {
		out.Security.CredentialKey = fmt.Sprintf("<redacted, %d bytes>", n)
	}
	return &out
}
