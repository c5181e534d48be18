package mock

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeFile(t, "mock.yaml", `
port: 9090
feed: /events
routes:
  - name: users
    method: PATCH
    path: /users/
    pathType: prefix
    echo: true
`)
	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Port != 9090 || config.Feed != "/events" {
		t.Errorf("Unexpected config %+v", config)
	}
	if !config.Logging {
		t.Error("Expected logging on by default")
	}
	if len(config.Routes) != 1 || !config.Routes[0].Echo {
		t.Errorf("Unexpected routes %+v", config.Routes)
	}
}

func TestLoadConfig_JSONC(t *testing.T) {
	path := writeFile(t, "mock.jsonc", `{
  // echo every update
  "routes": [
    {"method": "PATCH", "path": "/", "pathType": "prefix", "display": "{{value}}!",},
  ],
}`)
	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Routes[0].Display != "{{value}}!" {
		t.Errorf("Unexpected display template %q", config.Routes[0].Display)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"no routes", "a.yaml", "port: 1\n", "no routes"},
		{"missing method", "b.yaml", "routes:\n  - path: /\n", "method is required"},
		{"bad path type", "c.yaml", "routes:\n  - method: PATCH\n    path: /\n    pathType: glob\n", "pathType"},
		{"bad regex", "d.yaml", "routes:\n  - method: PATCH\n    path: \"(\"\n    pathType: regex\n", "invalid regex"},
		{"conflicting replies", "e.yaml", "routes:\n  - method: PATCH\n    path: /\n    body: x\n    echo: true\n", "mutually exclusive"},
		{"relative feed", "f.yaml", "feed: events\nroutes:\n  - method: PATCH\n    path: /\n", "absolute"},
		{"unknown format", "g.toml", "", "unsupported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeFile(t, tt.file, tt.content))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mock.yaml")
	if err := SaveConfig(DefaultConfig(), path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if len(config.Routes) != len(DefaultConfig().Routes) {
		t.Errorf("Expected %d routes, got %d", len(DefaultConfig().Routes), len(config.Routes))
	}
}
