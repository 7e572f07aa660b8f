package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pedigree-app/pedigree/pkg/errors"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Store != "memory" {
		t.Errorf("defaults = %+v, want :8080/memory", cfg)
	}
}

func TestLoadConfig_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
addr = ":9090"
store = "mongo"
mongo_uri = "mongodb://localhost:27017"

[dev_tokens.tok-1]
google_sub = "sub-1"
email = "a@example.com"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PEDIGREE_ADDR", ":7070")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Errorf("Addr = %q, want env override :7070", cfg.Addr)
	}
	if cfg.Store != "mongo" || cfg.MongoURI != "mongodb://localhost:27017" {
		t.Errorf("store settings = %+v, want file values", cfg)
	}
	if cfg.MongoDatabase != "pedigree" {
		t.Errorf("MongoDatabase = %q, want default retained", cfg.MongoDatabase)
	}
	if id := cfg.DevTokens["tok-1"]; id.GoogleSub != "sub-1" {
		t.Errorf("DevTokens = %+v, want tok-1 mapping", cfg.DevTokens)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown store", `store = "postgres"`},
		{"mongo without uri", `store = "mongo"`},
	}
	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		_, err := LoadConfig(path)
		if !errors.Is(err, errors.ErrCodeInvalidConfig) {
			t.Errorf("%s: error = %v, want INVALID_CONFIG", tt.name, err)
		}
	}
}
