package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.TOC != "main.toc" || cfg.PDF != "main.pdf" {
		t.Errorf("unexpected default inputs: %s, %s", cfg.TOC, cfg.PDF)
	}
	if !cfg.UsePredefinedNames || !cfg.TrimBlankPages {
		t.Error("expected predefined names and trimming on by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("resolves environment variable", func(t *testing.T) {
		t.Setenv("TEST_BUILD_DIR", "/tmp/build")

		result := ResolveEnvVars("${TEST_BUILD_DIR}/main.pdf")
		if result != "/tmp/build/main.pdf" {
			t.Errorf("expected /tmp/build/main.pdf, got %s", result)
		}
	})

	t.Run("returns empty for missing env var", func(t *testing.T) {
		result := ResolveEnvVars("${DEFINITELY_NOT_SET_12345}")
		if result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})

	t.Run("leaves literal values unchanged", func(t *testing.T) {
		result := ResolveEnvVars("literal-value")
		if result != "literal-value" {
			t.Errorf("expected literal-value, got %s", result)
		}
	})
}

func TestConfig_SlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.in}
		if got := cfg.SlogLevel(); got != tt.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TOC = " "
	cfg.Level = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "toc path is empty") || !strings.Contains(err.Error(), "level is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("loads from config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "chapsplit.yaml")

		configContent := `
pdf: book.pdf
output_dir: chapters
chapter_names:
  - 01-mol-bio.pdf
  - 02-history.pdf
watch:
  debounce: 2s
`
		if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}

		cfg := mgr.Get()
		if cfg.PDF != "book.pdf" || cfg.OutputDir != "chapters" {
			t.Errorf("unexpected paths: %+v", cfg)
		}
		if cfg.TOC != "main.toc" {
			t.Errorf("expected default toc, got %s", cfg.TOC)
		}
		if len(cfg.ChapterNames) != 2 || cfg.ChapterNames[1] != "02-history.pdf" {
			t.Errorf("unexpected chapter names: %v", cfg.ChapterNames)
		}
		if cfg.Watch.Debounce != 2*time.Second {
			t.Errorf("expected 2s debounce, got %v", cfg.Watch.Debounce)
		}
		if mgr.ConfigFileUsed() != configFile {
			t.Errorf("expected %s, got %s", configFile, mgr.ConfigFileUsed())
		}
	})

	t.Run("searches directories", func(t *testing.T) {
		tmpDir := t.TempDir()
		if err := os.WriteFile(filepath.Join(tmpDir, "chapsplit.yaml"), []byte("level: part\n"), 0644); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		mgr, err := NewManager("", tmpDir)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		if mgr.Get().Level != "part" {
			t.Errorf("expected level part, got %s", mgr.Get().Level)
		}
	})

	t.Run("missing file uses defaults", func(t *testing.T) {
		mgr, err := NewManager("", t.TempDir())
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		if mgr.Get().PDF != "main.pdf" {
			t.Errorf("expected default pdf, got %s", mgr.Get().PDF)
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("CHAPSPLIT_OUTPUT_DIR", "/tmp/out")
		t.Setenv("OUT_ROOT", "/srv")

		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "chapsplit.yaml")
		if err := os.WriteFile(configFile, []byte("pdf: ${OUT_ROOT}/main.pdf\n"), 0644); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		cfg := mgr.Get()
		if cfg.OutputDir != "/tmp/out" {
			t.Errorf("expected env output dir, got %s", cfg.OutputDir)
		}
		if cfg.PDF != "/srv/main.pdf" {
			t.Errorf("expected expanded pdf path, got %s", cfg.PDF)
		}
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "chapsplit.yaml")
		if err := os.WriteFile(configFile, []byte("pdf: [unclosed\n"), 0644); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}
		if _, err := NewManager(configFile); err == nil {
			t.Error("expected error for malformed config")
		}
	})
}

func TestManager_GetReturnsCopy(t *testing.T) {
	mgr, err := NewManager("", t.TempDir())
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	cfg := mgr.Get()
	cfg.OutputDir = "changed"
	cfg.ChapterNames = append(cfg.ChapterNames, "x.pdf")

	if mgr.Get().OutputDir != "." || len(mgr.Get().ChapterNames) != 0 {
		t.Error("mutating Get result leaked into manager")
	}
}

func TestManager_OnChange_Multiple(t *testing.T) {
	mgr, err := NewManager("", t.TempDir())
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	// Register multiple callbacks
	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})

	mgr.mu.RLock()
	if len(mgr.callbacks) != 3 {
		t.Errorf("expected 3 callbacks, got %d", len(mgr.callbacks))
	}
	mgr.mu.RUnlock()
}

func TestManager_WatchConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "chapsplit.yaml")

	if err := os.WriteFile(configFile, []byte("output_dir: first\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	mgr, err := NewManager(configFile)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	var callbackCount atomic.Int32
	var lastValue atomic.Value

	mgr.OnChange(func(cfg *Config) {
		callbackCount.Add(1)
		lastValue.Store(cfg.OutputDir)
	})

	mgr.WatchConfig()

	// Give fsnotify time to set up the watcher
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(configFile, []byte("output_dir: second\n"), 0644); err != nil {
		t.Fatalf("failed to write updated config file: %v", err)
	}

	// Wait for the watcher to detect the change (fsnotify is async)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if callbackCount.Load() > 0 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	if callbackCount.Load() == 0 {
		t.Fatal("callback was not invoked after config file change")
	}
	if v, _ := lastValue.Load().(string); v != "second" {
		t.Errorf("expected second, got %q", v)
	}
	if mgr.Get().OutputDir != "second" {
		t.Errorf("manager not updated, got %s", mgr.Get().OutputDir)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chapsplit.yaml")

	if err := WriteDefault(path, false); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("written default does not load: %v", err)
	}
	cfg := mgr.Get()
	if cfg.PDF != "main.pdf" || cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("unexpected round-tripped config: %+v", cfg)
	}
	if len(cfg.ChapterNames) != 0 {
		t.Errorf("example chapter names should stay commented out, got %v", cfg.ChapterNames)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"01-mol-bio.pdf", "04-genes.pdf", "07-filogeny.pdf"} {
		if !strings.Contains(string(data), "#   - "+name) {
			t.Errorf("header is missing example name %s", name)
		}
	}

	if err := WriteDefault(path, false); err == nil {
		t.Error("expected error when file exists")
	}
	if err := WriteDefault(path, true); err != nil {
		t.Errorf("force overwrite failed: %v", err)
	}
}
