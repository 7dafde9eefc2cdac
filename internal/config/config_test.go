package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if cfg.Pipeline.ChunkSize != 128 {
		t.Fatalf("chunk size = %d", cfg.Pipeline.ChunkSize)
	}
	if cfg.Pipeline.Workers != 2 {
		t.Fatalf("workers = %d", cfg.Pipeline.Workers)
	}
	if cfg.Engine.BaseURL != "http://127.0.0.1:8710" {
		t.Fatalf("engine url = %q", cfg.Engine.BaseURL)
	}
	if strings.HasPrefix(cfg.Paths.OutputDir, "~") {
		t.Fatalf("output dir not expanded: %q", cfg.Paths.OutputDir)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	path := writeConfig(t, `
[paths]
output_dir = "/tmp/enrich-out"
create_output_dir = false

[pipeline]
chunk_size = 64
workers = 4
preset = " Patent "
noun_chunks = true

[engine]
base_url = "http://spacy.local:9000/"
model = "en_core_web_sm"
timeout_seconds = 30

[logging]
format = "JSON"
level = "DEBUG"
`)

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q exists = %v", resolved, exists)
	}
	if cfg.Pipeline.ChunkSize != 64 || cfg.Pipeline.Workers != 4 {
		t.Fatalf("pipeline = %+v", cfg.Pipeline)
	}
	if cfg.Pipeline.Preset != "patent" {
		t.Fatalf("preset = %q", cfg.Pipeline.Preset)
	}
	if !cfg.Pipeline.NounChunks || cfg.Pipeline.SVOs {
		t.Fatalf("annotation flags = %+v", cfg.Pipeline)
	}
	if cfg.Engine.BaseURL != "http://spacy.local:9000" {
		t.Fatalf("engine url = %q", cfg.Engine.BaseURL)
	}
	if cfg.Engine.Concurrency != 10 {
		t.Fatalf("engine concurrency default not applied: %d", cfg.Engine.Concurrency)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
}

func TestLoadEngineURLFromEnvironment(t *testing.T) {
	t.Setenv("ENRICH_ENGINE_URL", "http://sidecar:8000/")
	path := writeConfig(t, `
[engine]
base_url = ""
`)
	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.BaseURL != "http://sidecar:8000" {
		t.Fatalf("engine url = %q", cfg.Engine.BaseURL)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero chunk size", func(c *Config) { c.Pipeline.ChunkSize = 0 }},
		{"zero workers", func(c *Config) { c.Pipeline.Workers = 0 }},
		{"preset and fields together", func(c *Config) {
			c.Pipeline.Preset = "gnip"
			c.Pipeline.ContentFields = []string{"body"}
		}},
		{"unknown preset", func(c *Config) { c.Pipeline.Preset = "newswire" }},
		{"missing engine host", func(c *Config) { c.Engine.BaseURL = "http://" }},
		{"unsupported scheme", func(c *Config) { c.Engine.BaseURL = "ftp://host" }},
		{"bad language tag", func(c *Config) { c.Engine.Language = "not a tag" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestResolveContentFields(t *testing.T) {
	cfg := Default()
	if _, err := cfg.ResolveContentFields(); err == nil {
		t.Fatal("expected error with no fields configured")
	}

	cfg.Pipeline.Preset = "gnip"
	fields, err := cfg.ResolveContentFields()
	if err != nil {
		t.Fatalf("ResolveContentFields: %v", err)
	}
	if !reflect.DeepEqual(fields, []string{"body"}) {
		t.Fatalf("fields = %v", fields)
	}

	cfg.Pipeline.Preset = ""
	cfg.Pipeline.ContentFields = []string{"title", "abstract"}
	fields, err = cfg.ResolveContentFields()
	if err != nil {
		t.Fatalf("ResolveContentFields: %v", err)
	}
	if !reflect.DeepEqual(fields, []string{"title", "abstract"}) {
		t.Fatalf("fields = %v", fields)
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	got, err := ExpandPath("~/data/input")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "data", "input") {
		t.Fatalf("ExpandPath = %q", got)
	}
}

func TestEnsureDirectoriesHonorsCreateOutputDir(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.CreateOutputDir = false

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if _, err := os.Stat(cfg.Paths.LogDir); err != nil {
		t.Fatalf("log dir not created: %v", err)
	}
	if _, err := os.Stat(cfg.Paths.OutputDir); !os.IsNotExist(err) {
		t.Fatalf("output dir should not exist, stat err = %v", err)
	}
	if err := cfg.ValidateOutputDir(); err == nil {
		t.Fatal("expected ValidateOutputDir to reject missing directory")
	}

	cfg.Paths.CreateOutputDir = true
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if err := cfg.ValidateOutputDir(); err != nil {
		t.Fatalf("ValidateOutputDir: %v", err)
	}
}

func TestValidateOutputDirRejectsFile(t *testing.T) {
	cfg := Default()
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	cfg.Paths.OutputDir = file
	if err := cfg.ValidateOutputDir(); err == nil {
		t.Fatal("expected error for file path")
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := CreateSample(target); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := Load(target)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample config not found after CreateSample")
	}
	if cfg.Pipeline.ChunkSize <= 0 {
		t.Fatalf("sample chunk size = %d", cfg.Pipeline.ChunkSize)
	}
}
