package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"

	"enrich/internal/presets"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.ChunkSize <= 0 {
		return errors.New("pipeline.chunk_size must be positive")
	}
	if c.Pipeline.Workers < 1 {
		return errors.New("pipeline.workers must be at least 1")
	}
	if c.Pipeline.Preset != "" {
		if len(c.Pipeline.ContentFields) > 0 {
			return errors.New("pipeline.preset and pipeline.content_fields are mutually exclusive")
		}
		if _, ok := presets.ContentFields(c.Pipeline.Preset); !ok {
			return fmt.Errorf("pipeline.preset %q is unknown (available: %s)", c.Pipeline.Preset, strings.Join(presets.Names(), ", "))
		}
	}
	return nil
}

func (c *Config) validateEngine() error {
	parsed, err := url.Parse(c.Engine.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("engine.base_url %q must be a valid http(s) URL", c.Engine.BaseURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("engine.base_url scheme %q is unsupported", parsed.Scheme)
	}
	if _, err := language.Parse(c.Engine.Language); err != nil {
		return fmt.Errorf("engine.language %q is not a valid language tag: %w", c.Engine.Language, err)
	}
	return nil
}

// ResolveContentFields returns the effective ordered content-field list,
// consulting the preset table when one is configured.
func (c *Config) ResolveContentFields() ([]string, error) {
	if c.Pipeline.Preset != "" {
		fields, ok := presets.ContentFields(c.Pipeline.Preset)
		if !ok {
			return nil, fmt.Errorf("preset %q is unknown", c.Pipeline.Preset)
		}
		return fields, nil
	}
	if len(c.Pipeline.ContentFields) == 0 {
		return nil, errors.New("no content fields configured: set pipeline.content_fields or pipeline.preset")
	}
	return append([]string(nil), c.Pipeline.ContentFields...), nil
}
