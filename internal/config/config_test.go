package config

import (
	"os"
	"path/filepath"
	"testing"

	"homework-transcriber/internal/document"
	"homework-transcriber/internal/types"
)

func TestNewManager(t *testing.T) {
	t.Run("with custom path", func(t *testing.T) {
		customPath := "/tmp/test-config.json"
		m, err := NewManager(customPath)
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}
		if m.GetConfigPath() != customPath {
			t.Errorf("expected config path %s, got %s", customPath, m.GetConfigPath())
		}
	})

	t.Run("with empty path uses default", func(t *testing.T) {
		m, err := NewManager("")
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}
		if m.GetConfigPath() == "" {
			t.Error("expected non-empty config path")
		}
	})
}

func TestManager_LoadSave(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.json")

	t.Run("Load with non-existent file uses defaults", func(t *testing.T) {
		m, err := NewManager(configPath)
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}

		if err := m.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		config := m.GetConfig()
		if config.Model != DefaultModel {
			t.Errorf("expected default model %s, got %s", DefaultModel, config.Model)
		}
		if config.Compiler != DefaultCompiler {
			t.Errorf("expected default compiler %s, got %s", DefaultCompiler, config.Compiler)
		}
		if config.Format != document.DefaultFormat() {
			t.Errorf("expected default format, got %+v", config.Format)
		}
	})

	t.Run("Save then Load round-trips the config", func(t *testing.T) {
		m, err := NewManager(configPath)
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}

		m.SetConfig(&types.Config{
			APIKey:     "test-api-key",
			Model:      "pixtral-12b",
			Engine:     "tesseract",
			Compiler:   "pdflatex",
			DPI:        200,
			MaxRetries: 3,
			Format:     document.DefaultFormat(),
		})
		if err := m.Save(); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		loaded, err := NewManager(configPath)
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}
		if err := loaded.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		config := loaded.GetConfig()
		if config.APIKey != "test-api-key" {
			t.Errorf("expected saved API key, got %q", config.APIKey)
		}
		if config.Model != "pixtral-12b" {
			t.Errorf("expected saved model, got %q", config.Model)
		}
		if config.Engine != "tesseract" {
			t.Errorf("expected saved engine, got %q", config.Engine)
		}
		if config.DPI != 200 {
			t.Errorf("expected saved DPI, got %d", config.DPI)
		}
	})

	t.Run("Load with invalid JSON uses defaults", func(t *testing.T) {
		badPath := filepath.Join(tmpDir, "bad-config.json")
		if err := os.WriteFile(badPath, []byte("{not json"), 0600); err != nil {
			t.Fatalf("failed to write bad config: %v", err)
		}

		m, err := NewManager(badPath)
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}
		if err := m.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if m.GetConfig().Model != DefaultModel {
			t.Errorf("expected default model after invalid JSON, got %q", m.GetConfig().Model)
		}
	})
}

func TestManager_GetAPIKey(t *testing.T) {
	t.Run("config value wins", func(t *testing.T) {
		m, _ := NewManager("/tmp/unused-config.json")
		m.SetConfig(&types.Config{APIKey: "from-config"})
		if got := m.GetAPIKey(); got != "from-config" {
			t.Errorf("expected config API key, got %q", got)
		}
	})

	t.Run("falls back to environment", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "from-env")
		m, _ := NewManager("/tmp/unused-config.json")
		m.SetConfig(&types.Config{})
		if got := m.GetAPIKey(); got != "from-env" {
			t.Errorf("expected env API key, got %q", got)
		}
	})

	t.Run("falls back to OpenAI variable", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "")
		t.Setenv(EnvOpenAIAPIKey, "from-openai-env")
		m, _ := NewManager("/tmp/unused-config.json")
		m.SetConfig(&types.Config{})
		if got := m.GetAPIKey(); got != "from-openai-env" {
			t.Errorf("expected fallback env API key, got %q", got)
		}
	})
}
