package config

import (
	"fmt"
	"os"
	"strconv"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "TWINTREE_"

// envSetter applies one environment value to a config.
type envSetter func(c *Config, value string) error

// EnvLoader overrides configuration values from environment variables.
type EnvLoader struct {
	prefix  string
	lookup  func(string) (string, bool)
	mapping map[string]envSetter // variable name without prefix -> setter
}

// NewEnvLoader creates a loader reading the process environment.
// The prefix should include the trailing underscore (e.g., "TWINTREE_").
func NewEnvLoader(prefix string) *EnvLoader {
	return NewEnvLoaderWithLookup(prefix, os.LookupEnv)
}

// NewEnvLoaderWithLookup creates a loader reading variables through lookup.
func NewEnvLoaderWithLookup(prefix string, lookup func(string) (string, bool)) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		lookup:  lookup,
		mapping: defaultEnvMapping(),
	}
}

// defaultEnvMapping returns the default environment variable mappings.
func defaultEnvMapping() map[string]envSetter {
	return map[string]envSetter{
		"LOG_LEVEL":  func(c *Config, v string) error { c.Log.Level = v; return nil },
		"LOG_FORMAT": func(c *Config, v string) error { c.Log.Format = v; return nil },
		"STRICT": func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			c.Conversion.Strict = b
			return err
		},
		"NORMALIZE_TEXT": func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			c.Conversion.NormalizeText = b
			return err
		},
	}
}

// Names returns the full variable names the loader reads.
func (l *EnvLoader) Names() []string {
	names := make([]string, 0, len(l.mapping))
	for name := range l.mapping {
		names = append(names, l.prefix+name)
	}
	return names
}

// Apply sets every mapped variable that is present. Empty string values are
// treated as valid values, not as unset.
func (l *EnvLoader) Apply(c *Config) error {
	for name, set := range l.mapping {
		env := l.prefix + name
		val, ok := l.lookup(env)
		if !ok {
			continue
		}
		if err := set(c, val); err != nil {
			return fmt.Errorf("environment %s=%q: %w", env, val, err)
		}
	}
	return nil
}
