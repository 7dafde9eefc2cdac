package spacy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"enrich/internal/annotate"
	"enrich/internal/records"
	"enrich/internal/services"
)

const (
	defaultBaseURL     = "http://127.0.0.1:8710"
	defaultModel       = "en_core_web_lg"
	defaultHTTPTimeout = 5 * time.Minute
)

// Client talks to a spaCy annotation sidecar over HTTP. The sidecar loads a
// pretrained model once at startup and parses batches of texts on demand.
type Client struct {
	baseURL    string
	model      string
	language   string
	pipes      annotate.Pipes
	httpClient *http.Client
}

// Option customizes the sidecar client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default sidecar address (useful for tests/mocks).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithModel selects the pretrained model the sidecar must serve.
func WithModel(model string) Option {
	return func(c *Client) {
		model = strings.TrimSpace(model)
		if model != "" {
			c.model = model
		}
	}
}

// WithLanguage records the language tag the model is expected to serve.
func WithLanguage(tag string) Option {
	return func(c *Client) {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			c.language = tag
		}
	}
}

// WithPipes sets the engine components requested with every annotate call.
func WithPipes(pipes annotate.Pipes) Option {
	return func(c *Client) {
		c.pipes = pipes
	}
}

// WithTimeout overrides the default HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient constructs a sidecar client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		language:   "en",
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type healthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
	Loaded bool   `json:"loaded"`
}

// Health verifies the sidecar is reachable and has the configured model
// loaded. Called once before any file is processed; a failure here aborts the
// whole run, matching the original model-load-at-startup semantics.
func (c *Client) Health(ctx context.Context) error {
	endpoint, err := url.JoinPath(c.baseURL, "/health")
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "annotate", "health", "build url", err)
	}
	endpoint += "?model=" + url.QueryEscape(c.model)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "annotate", "health", "request", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "annotate", "health",
			fmt.Sprintf("engine unreachable at %s", c.baseURL), err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "annotate", "health", "read body", err)
	}
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrExternalTool, "annotate", "health",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	var health healthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		return services.Wrap(services.ErrExternalTool, "annotate", "health", "decode response", err)
	}
	if !health.Loaded {
		return services.Wrap(services.ErrExternalTool, "annotate", "health",
			fmt.Sprintf("model %s is not loaded", c.model), nil)
	}
	return nil
}

type annotateRequest struct {
	Model    string         `json:"model"`
	Language string         `json:"language,omitempty"`
	Texts    []string       `json:"texts"`
	NProcess int            `json:"n_process,omitempty"`
	Pipes    annotate.Pipes `json:"pipes"`
}

type annotateResponse struct {
	Documents []annotate.Document `json:"documents"`
	Error     string              `json:"error,omitempty"`
}

// Annotate sends a batch of texts for parsing. The sidecar parallelizes
// internally according to the hint; the response preserves input order and
// this client re-attaches metadata by position.
func (c *Client) Annotate(ctx context.Context, texts []string, metadata []records.Record, hint int) ([]annotate.Document, error) {
	if len(texts) != len(metadata) {
		return nil, services.Wrap(services.ErrValidation, "annotate", "request",
			fmt.Sprintf("texts/metadata length mismatch: %d vs %d", len(texts), len(metadata)), nil)
	}
	if len(texts) == 0 {
		return nil, nil
	}

	payload := annotateRequest{
		Model:    c.model,
		Language: c.language,
		Texts:    texts,
		NProcess: hint,
		Pipes:    c.pipes,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "annotate", "batch", "encode request", err)
	}
	endpoint, err := url.JoinPath(c.baseURL, "/annotate")
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "annotate", "batch", "build url", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "annotate", "batch", "request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "annotate", "batch", "request failed", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "annotate", "batch", "read body", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, services.Wrap(services.ErrExternalTool, "annotate", "batch",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var decoded annotateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "annotate", "batch", "decode response", err)
	}
	if decoded.Error != "" {
		return nil, services.Wrap(services.ErrExternalTool, "annotate", "batch",
			"engine error: "+strings.TrimSpace(decoded.Error), nil)
	}
	if len(decoded.Documents) != len(texts) {
		return nil, services.Wrap(services.ErrExternalTool, "annotate", "batch",
			fmt.Sprintf("engine returned %d documents for %d texts", len(decoded.Documents), len(texts)), errContractBreach)
	}

	for i := range decoded.Documents {
		decoded.Documents[i].Meta = metadata[i]
	}
	return decoded.Documents, nil
}

var errContractBreach = errors.New("positional correspondence broken")
