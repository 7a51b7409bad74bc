package confloader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the environment variable prefix.
const DefaultEnvPrefix = "TOKGATE_"

// Loader merges the config file, the environment and explicit overrides,
// in that order of increasing precedence.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	filePath  string
	known     map[string]string
	overrides overrides
	fileKeys  []string
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithConfigFile sets the YAML file to read. Empty means none.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithKnownKeys lists the dotted keys the target understands. Environment
// names are matched against them first, so TOKGATE_HISTORY_BATCH_SIZE maps
// to history.batch_size rather than history.batch.size.
func WithKnownKeys(keys ...string) Option {
	return func(l *Loader) {
		for _, k := range keys {
			l.known[strings.ReplaceAll(k, ".", "_")] = k
		}
	}
}

// WithOverrides sets dotted-key values that win over every other source.
// Command-line flags use it.
func WithOverrides(values map[string]any) Option {
	return func(l *Loader) {
		for k, v := range values {
			l.overrides[k] = v
		}
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
		known:     make(map[string]string),
		overrides: make(overrides),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FilePath returns the config file path, if any.
func (l *Loader) FilePath() string {
	return l.filePath
}

// Load reads every source and unmarshals into target. Fields no source
// sets keep their current value, so callers pass a struct holding defaults.
func (l *Loader) Load(target any) error {
	if l.filePath != "" {
		if err := l.k.Load(file.Provider(l.filePath), yaml.Parser()); err != nil {
			return fmt.Errorf("load config file %s: %w", l.filePath, err)
		}
		l.fileKeys = l.k.Keys()
	}
	if err := l.k.Load(env.Provider(l.envPrefix, ".", l.envKey), nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	if len(l.overrides) > 0 {
		if err := l.k.Load(l.overrides, nil); err != nil {
			return fmt.Errorf("load overrides: %w", err)
		}
	}
	if err := l.k.Unmarshal("", target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

// envKey maps an environment variable name to a dotted key.
func (l *Loader) envKey(name string) string {
	s := strings.ToLower(strings.TrimPrefix(name, l.envPrefix))
	if k, ok := l.known[s]; ok {
		return k
	}
	return strings.ReplaceAll(s, "_", ".")
}

// Unknown returns the config file keys that are not among the known keys,
// sorted. The environment is not checked because it holds variables of
// other programs too. It is empty when no known keys were given.
func (l *Loader) Unknown() []string {
	if len(l.known) == 0 {
		return nil
	}
	valid := make(map[string]bool, len(l.known))
	for _, k := range l.known {
		valid[k] = true
	}
	var unknown []string
	for _, k := range l.fileKeys {
		if !valid[k] {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return unknown
}
