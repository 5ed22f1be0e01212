package config

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vango-dev/snapfx/internal/errors"
	"github.com/vango-dev/snapfx/pkg/snapfx"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "snapfx.json"

	// YAMLConfigFileName is the name of the YAML configuration file. It is
	// used when no ConfigFileName exists.
	YAMLConfigFileName = "snapfx.yaml"

	// DefaultDevtoolsAddr is the default devtools listen address.
	DefaultDevtoolsAddr = "localhost:7070"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "snapfx"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "snapfx"

	// DefaultInterval is the default CountButton tick interval.
	DefaultInterval = "1s"

	// DefaultTicks is the number of ticks the demo waits for.
	DefaultTicks = 3

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"
)

// Config represents the complete snapfx configuration.
type Config struct {
	Runtime  RuntimeConfig  `json:"runtime" yaml:"runtime"`
	Demo     DemoConfig     `json:"demo" yaml:"demo"`
	Devtools DevtoolsConfig `json:"devtools" yaml:"devtools"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics"`
	Tracing  TracingConfig  `json:"tracing" yaml:"tracing"`
	Log      LogConfig      `json:"log" yaml:"log"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RuntimeConfig contains state/effect runtime settings.
type RuntimeConfig struct {
	// Comparer is the dependency comparison policy: default, identity,
	// structural or cmp.
	Comparer string `json:"comparer,omitempty" yaml:"comparer,omitempty"`

	// MaxBatchesPerFlush is the render storm budget. Zero disables it.
	MaxBatchesPerFlush int `json:"maxBatchesPerFlush" yaml:"maxBatchesPerFlush"`

	// Debug enables debug logging of runtime internals.
	Debug bool `json:"debug,omitempty" yaml:"debug,omitempty"`
}

// DemoConfig contains settings for the demo page.
type DemoConfig struct {
	// Interval is the CountButton tick interval (e.g., "1s").
	Interval string `json:"interval,omitempty" yaml:"interval,omitempty"`

	// Ticks is how many ticks the demo command waits before hiding the
	// child.
	Ticks int `json:"ticks,omitempty" yaml:"ticks,omitempty"`
}

// DevtoolsConfig contains devtools server settings.
type DevtoolsConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Runtime: RuntimeConfig{
			Comparer:           "default",
			MaxBatchesPerFlush: snapfx.DefaultMaxBatchesPerFlush,
		},
		Demo: DemoConfig{
			Interval: DefaultInterval,
			Ticks:    DefaultTicks,
		},
		Devtools: DevtoolsConfig{Addr: DefaultDevtoolsAddr},
		Metrics:  MetricsConfig{Namespace: DefaultNamespace},
		Tracing:  TracingConfig{TracerName: DefaultTracerName},
		Log:      LogConfig{Level: DefaultLogLevel},
	}
}

// Load reads configuration from the specified directory.
// It looks for snapfx.json, then snapfx.yaml.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err != nil {
		if yamlPath := filepath.Join(dir, YAMLConfigFileName); fileExists(yamlPath) {
			path = yamlPath
		}
	}
	return LoadFile(path)
}

// LoadFile reads configuration from the specified file path. Files ending
// in .yaml or .yml are decoded as YAML, anything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No " + ConfigFileName + " or " + YAMLConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Run 'snapfx demo' without --config to use the defaults, or create " + ConfigFileName)
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("E120").
				WithLocationFromError(path, err).
				WithSuggestion("Check that " + filepath.Base(path) + " is valid YAML").
				Wrap(err)
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		e := errors.New("E120").
			WithSuggestion("Check that " + filepath.Base(path) + " is valid JSON").
			Wrap(err)
		var syntax *json.SyntaxError
		if stderrors.As(err, &syntax) {
			line, col := position(data, syntax.Offset)
			e.WithLocation(path, line, col)
		}
		return nil, e
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	before := data[:offset]
	line = strings.Count(string(before), "\n") + 1
	col = int(offset) - strings.LastIndexByte(string(before), '\n')
	if col < 1 {
		col = 1
	}
	return line, col
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, in YAML when the
// path ends in .yaml or .yml.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		// Add newline at end of file
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E120").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E140").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
// Runtime.MaxBatchesPerFlush is left alone: zero disables the budget.
func (c *Config) applyDefaults() {
	if c.Runtime.Comparer == "" {
		c.Runtime.Comparer = "default"
	}
	if c.Demo.Interval == "" {
		c.Demo.Interval = DefaultInterval
	}
	if c.Demo.Ticks == 0 {
		c.Demo.Ticks = DefaultTicks
	}
	if c.Devtools.Addr == "" {
		c.Devtools.Addr = DefaultDevtoolsAddr
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := snapfx.ComparerByName(c.Runtime.Comparer); err != nil {
		return errors.New("E122").Wrap(err)
	}
	if c.Runtime.MaxBatchesPerFlush < 0 {
		return errors.New("E121").
			WithDetail("runtime.maxBatchesPerFlush must not be negative")
	}
	d, err := time.ParseDuration(c.Demo.Interval)
	if err != nil {
		return errors.New("E121").
			WithSuggestion("demo.interval must be a duration such as 1s").
			Wrap(err)
	}
	if d <= 0 {
		return errors.New("E121").
			WithDetail("demo.interval must be positive")
	}
	if c.Demo.Ticks < 0 {
		return errors.New("E121").
			WithDetail("demo.ticks must not be negative")
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return errors.New("E121").
			WithSuggestion("log.level must be one of debug, info, warn, error").
			Wrap(err)
	}
	return nil
}

// Comparer returns the configured comparison policy.
func (c *Config) Comparer() (snapfx.Comparer, error) {
	cmp, err := snapfx.ComparerByName(c.Runtime.Comparer)
	if err != nil {
		return nil, errors.New("E122").Wrap(err)
	}
	return cmp, nil
}

// Interval returns the demo tick interval, or the default when it does not
// parse.
func (c *Config) Interval() time.Duration {
	d, err := time.ParseDuration(c.Demo.Interval)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// LogLevel returns the configured log level. Runtime.Debug forces debug.
func (c *Config) LogLevel() slog.Level {
	if c.Runtime.Debug {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// RuntimeOptions returns the snapfx options described by the runtime
// section.
func (c *Config) RuntimeOptions() ([]snapfx.Option, error) {
	cmp, err := c.Comparer()
	if err != nil {
		return nil, err
	}
	return []snapfx.Option{
		snapfx.WithComparer(cmp),
		snapfx.WithMaxBatchesPerFlush(c.Runtime.MaxBatchesPerFlush),
	}, nil
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	return fileExists(filepath.Join(dir, ConfigFileName)) ||
		fileExists(filepath.Join(dir, YAMLConfigFileName))
}

// LoadOrDefault loads configuration from dir when a file exists there and
// returns the defaults otherwise.
func LoadOrDefault(dir string) (*Config, error) {
	if !Exists(dir) {
		return New(), nil
	}
	return Load(dir)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
