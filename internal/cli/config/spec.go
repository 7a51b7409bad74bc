package config

// CLIConfig is the configuration for tokgate-cli.
type CLIConfig struct {
	Server string `yaml:"server"`
	Output string `yaml:"output"` // table, json, yaml
	Socket string `yaml:"socket"`
	// Session is the default session string. It is a credential; the file
	// is written with 0600 permissions.
	Session string `yaml:"session,omitempty"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server: "http://127.0.0.1:8000",
		Output: "table",
		Socket: "/var/run/tokgate-server/tokgate-server.sock",
	}
}
