package config

import (
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/vango-dev/snapfx/internal/errors"
	"github.com/vango-dev/snapfx/pkg/snapfx"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func errorCode(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Runtime.Comparer != "default" {
		t.Errorf("Runtime.Comparer = %q, want %q", cfg.Runtime.Comparer, "default")
	}
	if cfg.Runtime.MaxBatchesPerFlush != snapfx.DefaultMaxBatchesPerFlush {
		t.Errorf("Runtime.MaxBatchesPerFlush = %d, want %d", cfg.Runtime.MaxBatchesPerFlush, snapfx.DefaultMaxBatchesPerFlush)
	}
	if cfg.Devtools.Addr != DefaultDevtoolsAddr {
		t.Errorf("Devtools.Addr = %q, want %q", cfg.Devtools.Addr, DefaultDevtoolsAddr)
	}
	if cfg.Interval() != time.Second {
		t.Errorf("Interval() = %v, want 1s", cfg.Interval())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestLoad_JSON(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir)
	if code := errorCode(err); code != "E141" {
		t.Fatalf("Load(empty dir) code = %q, want E141 (err %v)", code, err)
	}

	writeConfig(t, dir, ConfigFileName, `{
  "runtime": {"comparer": "structural"},
  "demo": {"interval": "250ms", "ticks": 5},
  "log": {"level": "debug"}
}
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Runtime.Comparer != "structural" {
		t.Errorf("Runtime.Comparer = %q, want structural", cfg.Runtime.Comparer)
	}
	if cfg.Runtime.MaxBatchesPerFlush != snapfx.DefaultMaxBatchesPerFlush {
		t.Errorf("Runtime.MaxBatchesPerFlush = %d, want default", cfg.Runtime.MaxBatchesPerFlush)
	}
	if cfg.Interval() != 250*time.Millisecond {
		t.Errorf("Interval() = %v, want 250ms", cfg.Interval())
	}
	if cfg.Demo.Ticks != 5 {
		t.Errorf("Demo.Ticks = %d, want 5", cfg.Demo.Ticks)
	}
	if cfg.LogLevel() != slog.LevelDebug {
		t.Errorf("LogLevel() = %v, want DEBUG", cfg.LogLevel())
	}
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace = %q, want %q", cfg.Metrics.Namespace, DefaultNamespace)
	}
	if cfg.Path() != filepath.Join(dir, ConfigFileName) {
		t.Errorf("Path() = %q", cfg.Path())
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, YAMLConfigFileName, `runtime:
  comparer: identity
  maxBatchesPerFlush: 0
devtools:
  addr: 127.0.0.1:9000
tracing:
  tracerName: demo
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := New()
	want.Runtime = RuntimeConfig{Comparer: "identity", MaxBatchesPerFlush: 0}
	want.Devtools.Addr = "127.0.0.1:9000"
	want.Tracing.TracerName = "demo"
	want.configPath = filepath.Join(dir, YAMLConfigFileName)
	if diff := cmp.Diff(want, cfg, cmp.AllowUnexported(Config{})); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_PrefersJSON(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ConfigFileName, `{"log": {"level": "warn"}}`)
	writeConfig(t, dir, YAMLConfigFileName, "log:\n  level: error\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
}

func TestLoadFile_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, ConfigFileName, "{\n  \"demo\": {\n    \"ticks\": ,\n  }\n}\n")

	_, err := LoadFile(path)
	if code := errorCode(err); code != "E120" {
		t.Fatalf("LoadFile() code = %q, want E120 (err %v)", code, err)
	}
	var e *errors.Error
	stderrors.As(err, &e)
	if e.Location == nil || e.Location.Line != 3 {
		t.Errorf("Location = %v, want line 3", e.Location)
	}
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "custom.yml", "demo:\n  ticks: [\n")

	_, err := LoadFile(path)
	if code := errorCode(err); code != "E120" {
		t.Fatalf("LoadFile() code = %q, want E120 (err %v)", code, err)
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	for _, name := range []string{"out.json", "out.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			cfg := New()
			cfg.Runtime.Comparer = "cmp"
			cfg.Demo.Ticks = 7
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo() error = %v", err)
			}
			if cfg.Path() != path {
				t.Errorf("Path() = %q, want %q", cfg.Path(), path)
			}

			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}
			if diff := cmp.Diff(cfg, loaded, cmp.AllowUnexported(Config{})); diff != "" {
				t.Errorf("round trip mismatch (-saved +loaded):\n%s", diff)
			}
		})
	}
}

func TestSave_NoPath(t *testing.T) {
	if err := New().Save(); err == nil {
		t.Error("Save() without path = nil, want error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		code   string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown comparer", func(c *Config) { c.Runtime.Comparer = "deep" }, "E122"},
		{"negative budget", func(c *Config) { c.Runtime.MaxBatchesPerFlush = -1 }, "E121"},
		{"bad interval", func(c *Config) { c.Demo.Interval = "soon" }, "E121"},
		{"zero interval", func(c *Config) { c.Demo.Interval = "0s" }, "E121"},
		{"negative ticks", func(c *Config) { c.Demo.Ticks = -2 }, "E121"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "E121"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()
			if got := errorCode(err); got != tt.code {
				t.Errorf("Validate() code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestRuntimeOptions(t *testing.T) {
	cfg := New()
	cfg.Runtime.Comparer = "identity"
	opts, err := cfg.RuntimeOptions()
	if err != nil {
		t.Fatalf("RuntimeOptions() error = %v", err)
	}
	if len(opts) != 2 {
		t.Errorf("len(RuntimeOptions()) = %d, want 2", len(opts))
	}
	snapfx.New(opts...)

	cfg.Runtime.Comparer = "nope"
	if _, err := cfg.RuntimeOptions(); errorCode(err) != "E122" {
		t.Errorf("RuntimeOptions() error = %v, want E122", err)
	}
}

func TestLogLevel_DebugFlag(t *testing.T) {
	cfg := New()
	cfg.Runtime.Debug = true
	if cfg.LogLevel() != slog.LevelDebug {
		t.Errorf("LogLevel() = %v, want DEBUG", cfg.LogLevel())
	}
}

func TestLoadOrDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadOrDefault(dir)
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Path() != "" {
		t.Errorf("Path() = %q, want empty for defaults", cfg.Path())
	}

	writeConfig(t, dir, YAMLConfigFileName, "demo:\n  ticks: 9\n")
	if !Exists(dir) {
		t.Fatal("Exists() = false after writing snapfx.yaml")
	}
	cfg, err = LoadOrDefault(dir)
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Demo.Ticks != 9 {
		t.Errorf("Demo.Ticks = %d, want 9", cfg.Demo.Ticks)
	}
}
