package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// OutputDir receives one <basename>.enrich file per input. May be
	// overridden per run on the command line.
	OutputDir string `toml:"output_dir"`
	// CreateOutputDir controls whether a missing output directory is created
	// instead of rejected at startup.
	CreateOutputDir bool   `toml:"create_output_dir"`
	LogDir          string `toml:"log_dir"`
	// StateDir holds the run ledger database and the run lock file.
	StateDir string `toml:"state_dir"`
}

// Pipeline contains record chunking and dispatch settings.
type Pipeline struct {
	// ChunkSize bounds how many records are held in memory per batch.
	ChunkSize int `toml:"chunk_size"`
	// Workers is the number of input files enriched concurrently. 1 runs
	// jobs sequentially in-process.
	Workers int `toml:"workers"`
	// ContentFields are the record keys whose values are joined into the
	// text sent to the engine, in order. Mutually exclusive with Preset.
	ContentFields []string `toml:"content_fields"`
	// Preset names a predefined content-field list (gnip, patent, publication).
	Preset string `toml:"preset"`
	// Optional annotation outputs.
	NounChunks bool `toml:"noun_chunks"`
	SVOs       bool `toml:"svos"`
	Entities   bool `toml:"entities"`
	Sents      bool `toml:"sents"`
}

// Engine contains configuration for the spaCy annotation sidecar.
type Engine struct {
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
	// Language is the BCP 47 tag the model is expected to serve.
	Language string `toml:"language"`
	// Concurrency is the parallelism hint forwarded with each annotate
	// request; the sidecar batches document parsing internally.
	Concurrency    int `toml:"concurrency"`
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the enrichment CLI.
//
// Configuration sections by subsystem:
//   - Paths: output, log, and state directories
//   - Pipeline: chunking, worker count, content fields, annotation flags
//   - Engine: spaCy sidecar connection and model settings
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Pipeline Pipeline `toml:"pipeline"`
	Engine   Engine   `toml:"engine"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/enrich/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("enrich.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run needs. The output directory
// is only created when create_output_dir is enabled; a missing output
// directory is otherwise a startup error caught by ValidateOutputDir.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Paths.CreateOutputDir && strings.TrimSpace(c.Paths.OutputDir) != "" {
		if err := os.MkdirAll(c.Paths.OutputDir, 0o755); err != nil {
			return fmt.Errorf("create output directory %q: %w", c.Paths.OutputDir, err)
		}
	}
	return nil
}

// ValidateOutputDir verifies the output directory exists and is a directory.
// Called before any enrichment work begins.
func (c *Config) ValidateOutputDir() error {
	info, err := os.Stat(c.Paths.OutputDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("output directory %s is not there (set paths.create_output_dir to create it)", c.Paths.OutputDir)
		}
		return fmt.Errorf("stat output directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", c.Paths.OutputDir)
	}
	return nil
}

// ExpandPath resolves ~ prefixes and returns an absolute, cleaned path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// CreateSample writes the embedded sample configuration to the target path.
func CreateSample(target string) error {
	sample := sampleConfig
	if !strings.HasSuffix(sample, "\n") {
		sample += "\n"
	}
	if err := os.WriteFile(target, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
