package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/snapfx/internal/config"
	"github.com/vango-dev/snapfx/internal/demo"
)

func TestVersionShort(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version", "--short"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != version {
		t.Errorf("version --short = %q, want %q", got, version)
	}
}

func TestRunDemo(t *testing.T) {
	cfg := config.New()
	cfg.Demo.Interval = "10ms"
	cfg.Demo.Ticks = 2

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out, logs bytes.Buffer
	if err := runDemo(ctx, cfg, &out, &logs); err != nil {
		t.Fatalf("runDemo() error = %v\nlogs:\n%s", err, logs.String())
	}

	var s struct {
		View      demo.View `json:"view"`
		Instances []struct {
			Name     string `json:"name"`
			Children []any  `json:"children"`
		} `json:"instances"`
	}
	if err := json.Unmarshal(out.Bytes(), &s); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}

	if s.View.Count != demo.IncrementStep {
		t.Errorf("view.count = %d, want %d", s.View.Count, demo.IncrementStep)
	}
	if s.View.Message != demo.ChangedMessage {
		t.Errorf("view.message = %q, want %q", s.View.Message, demo.ChangedMessage)
	}
	if s.View.ShowButton {
		t.Error("view.showButton = true after hiding")
	}
	if len(s.Instances) != 1 || s.Instances[0].Name != "learn-state-and-effects" || len(s.Instances[0].Children) != 0 {
		t.Errorf("instances = %+v, want only the page", s.Instances)
	}
	if !strings.Contains(logs.String(), `msg="count in event handler" component=page count=0`) {
		t.Errorf("logs missing the handler snapshot line:\n%s", logs.String())
	}
}

func TestDemoFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapfx.yaml")
	if err := os.WriteFile(path, []byte("demo:\n  ticks: 9\n  interval: 2s\n"), 0644); err != nil {
		t.Fatal(err)
	}

	flags := runFlags{configPath: path, ticks: 1, interval: 5 * time.Millisecond, logLevel: "warn"}
	cfg, err := flags.load()
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if cfg.Demo.Ticks != 1 || cfg.Interval() != 5*time.Millisecond || cfg.Log.Level != "warn" {
		t.Errorf("config = %+v, want flag values", cfg.Demo)
	}
}

func TestDemoBadConfig(t *testing.T) {
	flags := runFlags{configPath: filepath.Join(t.TempDir(), "missing.json")}
	if _, err := flags.load(); err == nil || !strings.Contains(err.Error(), "E141") {
		t.Errorf("load() error = %v, want E141", err)
	}

	flags = runFlags{logLevel: "loud"}
	if _, err := flags.load(); err == nil || !strings.Contains(err.Error(), "E121") {
		t.Errorf("load() error = %v, want E121", err)
	}
}
