package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/twintree/internal/conversion"
	"github.com/dshills/twintree/internal/logging"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config is the complete twintree configuration.
type Config struct {
	Log        LogConfig        `toml:"log" yaml:"log"`
	Conversion ConversionConfig `toml:"conversion" yaml:"conversion"`

	Elements          []ElementRule          `toml:"elements" yaml:"elements"`
	Attributes        []AttributeRule        `toml:"attributes" yaml:"attributes"`
	ElementAttributes []ElementAttributeRule `toml:"element_attributes" yaml:"element_attributes"`
	Markers           []MarkerRule           `toml:"markers" yaml:"markers"`

	// Scripts are Lua files defining further converters. Relative paths
	// are resolved against the directory of the config file.
	Scripts []string `toml:"scripts" yaml:"scripts"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// ConversionConfig configures the dispatchers.
type ConversionConfig struct {
	Strict        bool `toml:"strict" yaml:"strict"`
	NormalizeText bool `toml:"normalize_text" yaml:"normalize_text"`
	// DefaultPriority applies to rules that set no priority of their own.
	DefaultPriority string `toml:"default_priority" yaml:"default_priority"`
}

// ElementRule maps a model element to a view container element, both ways.
type ElementRule struct {
	Model   string   `toml:"model" yaml:"model"`
	View    string   `toml:"view" yaml:"view"`
	Classes []string `toml:"classes" yaml:"classes"`
}

// AttributeRule maps a text attribute to a wrapping view element, both ways.
type AttributeRule struct {
	Key string `toml:"key" yaml:"key"`
	// Model defaults to text.
	Model string `toml:"model" yaml:"model"`
	View  string `toml:"view" yaml:"view"`
	// Value limits the rule to one attribute value. Empty means any value
	// downcasts and upcast produces true.
	Value      string            `toml:"value" yaml:"value"`
	Classes    []string          `toml:"classes" yaml:"classes"`
	Styles     map[string]string `toml:"styles" yaml:"styles"`
	Attributes map[string]string `toml:"attributes" yaml:"attributes"`
	// ViewPriority orders nested wrapping elements; lower is outer.
	ViewPriority int    `toml:"view_priority" yaml:"view_priority"`
	Priority     string `toml:"priority" yaml:"priority"`
}

// ElementAttributeRule maps a model element attribute to a view attribute,
// class or style.
type ElementAttributeRule struct {
	Model string `toml:"model" yaml:"model"`
	Key   string `toml:"key" yaml:"key"`
	// ViewKey is a view attribute name, "class" or "style".
	ViewKey string `toml:"view_key" yaml:"view_key"`
	// Style names the style property when ViewKey is "style".
	Style string `toml:"style" yaml:"style"`
	// View, when set, enables the upcast direction for that view element.
	View     string `toml:"view" yaml:"view"`
	Priority string `toml:"priority" yaml:"priority"`
}

// Marker rule modes.
const (
	MarkerModeHighlight = "highlight"
	MarkerModeElement   = "element"
)

// MarkerRule maps a marker group to a highlight or to boundary elements.
type MarkerRule struct {
	Name         string   `toml:"name" yaml:"name"`
	Mode         string   `toml:"mode" yaml:"mode"`
	View         string   `toml:"view" yaml:"view"`
	Classes      []string `toml:"classes" yaml:"classes"`
	ViewPriority int      `toml:"view_priority" yaml:"view_priority"`
	Priority     string   `toml:"priority" yaml:"priority"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: string(logging.FormatText)},
		Conversion: ConversionConfig{
			DefaultPriority: "normal",
		},
	}
}

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	fs.FS
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// Open implements fs.FS.
func (OSFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Loader reads configuration files and applies environment overrides.
type Loader struct {
	fs  FileSystem
	env *EnvLoader
}

// NewLoader creates a loader for the OS file system and environment.
func NewLoader() *Loader {
	return &Loader{fs: OSFS{}, env: NewEnvLoader(EnvPrefix)}
}

// NewLoaderWithFS creates a loader with a custom file system and
// environment.
func NewLoaderWithFS(fsys FileSystem, env *EnvLoader) *Loader {
	return &Loader{fs: fsys, env: env}
}

// Load reads path with the OS loader. See Loader.Load.
func Load(path string) (*Config, error) {
	return NewLoader().Load(path)
}

// Load reads the file at path on top of Default, applies environment
// overrides and validates the result. An empty path loads only the
// defaults and the environment.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := l.fs.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
			}
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		format, err := formatOf(path)
		if err != nil {
			return nil, err
		}
		if err := decode(cfg, path, format, bytes.NewReader(data)); err != nil {
			return nil, err
		}
		cfg.resolveScripts(filepath.Dir(path))
	}
	if l.env != nil {
		if err := l.env.Apply(cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Format is a configuration file format.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

func formatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Parse decodes data in the given format on top of Default without
// touching the environment or validating.
func Parse(data []byte, format Format) (*Config, error) {
	cfg := Default()
	if err := decode(cfg, "<reader>", format, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(cfg *Config, source string, format Format, r io.Reader) error {
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(r).DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			perr := &ParseError{Path: source, Format: format, Err: err}
			var derr *toml.DecodeError
			if errors.As(err, &derr) {
				perr.Line, perr.Column = derr.Position()
			}
			return perr
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return &ParseError{Path: source, Format: format, Err: err}
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return nil
}

func (c *Config) resolveScripts(dir string) {
	for i, s := range c.Scripts {
		if !filepath.IsAbs(s) {
			c.Scripts[i] = filepath.Join(dir, s)
		}
	}
}

// NewLogger builds the logger described by the [log] section.
func (c *Config) NewLogger(out io.Writer) *logging.Logger {
	cfg := logging.DefaultLoggerConfig()
	cfg.Level = logging.ParseLogLevel(c.Log.Level)
	cfg.Format = logging.Format(c.Log.Format)
	if out != nil {
		cfg.Output = out
	}
	return logging.NewLogger(cfg)
}

// Options returns the dispatcher options described by [conversion].
func (c *Config) Options(log *logging.Logger) conversion.Options {
	return conversion.Options{
		Strict:        c.Conversion.Strict,
		NormalizeText: c.Conversion.NormalizeText,
		Logger:        log,
	}
}
