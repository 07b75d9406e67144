package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRootCmd_ConfigInit(t *testing.T) {
	homePath := filepath.Join(t.TempDir(), "home")
	run := func(args ...string) error {
		configInitPath, configInitForce = "", false
		rootCmd.SetArgs(append([]string{"--home", homePath, "--log-level", "error", "config", "init"}, args...))
		return rootCmd.ExecuteContext(context.Background())
	}

	if err := run(); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	cfgPath := filepath.Join(homePath, "chapsplit.yaml")
	if _, err := os.Stat(cfgPath); err != nil {
		t.Fatalf("expected config at %s: %v", cfgPath, err)
	}

	err := run()
	if err == nil || !strings.Contains(err.Error(), "--force") {
		t.Errorf("expected a hint to use --force, got %v", err)
	}

	if err := run("--force"); err != nil {
		t.Errorf("config init --force failed: %v", err)
	}
}
