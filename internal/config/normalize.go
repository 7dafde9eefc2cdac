package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePipeline()
	c.normalizeEngine()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePipeline() {
	fields := make([]string, 0, len(c.Pipeline.ContentFields))
	for _, field := range c.Pipeline.ContentFields {
		trimmed := strings.TrimSpace(field)
		if trimmed == "" {
			continue
		}
		fields = append(fields, trimmed)
	}
	c.Pipeline.ContentFields = fields
	c.Pipeline.Preset = strings.ToLower(strings.TrimSpace(c.Pipeline.Preset))
}

func (c *Config) normalizeEngine() {
	c.Engine.BaseURL = strings.TrimRight(strings.TrimSpace(c.Engine.BaseURL), "/")
	if c.Engine.BaseURL == "" {
		if value, ok := os.LookupEnv("ENRICH_ENGINE_URL"); ok {
			c.Engine.BaseURL = strings.TrimRight(strings.TrimSpace(value), "/")
		}
	}
	if c.Engine.BaseURL == "" {
		c.Engine.BaseURL = defaultEngineBaseURL
	}
	c.Engine.Model = strings.TrimSpace(c.Engine.Model)
	if c.Engine.Model == "" {
		c.Engine.Model = defaultEngineModel
	}
	c.Engine.Language = strings.TrimSpace(c.Engine.Language)
	if c.Engine.Language == "" {
		c.Engine.Language = defaultEngineLanguage
	}
	if c.Engine.Concurrency <= 0 {
		c.Engine.Concurrency = defaultEngineConcurrency
	}
	if c.Engine.TimeoutSeconds <= 0 {
		c.Engine.TimeoutSeconds = defaultEngineTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
