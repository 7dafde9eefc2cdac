package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"enrich/internal/annotate"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	outputDir  string
	engine     *httptest.Server
}

// fakeEngine answers /health as loaded and /annotate with one single-token
// document per text.
func fakeEngine(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "model": r.URL.Query().Get("model"), "loaded": true})
	})
	mux.HandleFunc("/annotate", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Texts []string `json:"texts"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		docs := make([]annotate.Document, len(req.Texts))
		for i, text := range req.Texts {
			docs[i] = annotate.Document{
				Tokens: []annotate.Token{{Index: 0, Head: 0, Text: text, Lemma: strings.ToLower(text), POS: "NOUN", Dep: "ROOT"}},
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"documents": docs})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	engine := fakeEngine(t)
	outputDir := filepath.Join(base, "output")

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`
[paths]
output_dir = %q
create_output_dir = true
log_dir = %q
state_dir = %q

[pipeline]
chunk_size = 4
workers = 1
content_fields = ["title"]

[engine]
base_url = %q
model = "en_core_web_sm"
`, outputDir, filepath.Join(base, "logs"), filepath.Join(base, "state"), engine.URL)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		baseDir:    base,
		configPath: configPath,
		outputDir:  outputDir,
		engine:     engine,
	}
}

func writeInputFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
