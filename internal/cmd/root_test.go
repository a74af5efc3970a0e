package cmd

import (
	"testing"

	"github.com/spf13/viper"
)

func TestResolveConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg := resolveConfig()
	if cfg.BackendURL != "http://localhost:8000" {
		t.Fatalf("backend = %q", cfg.BackendURL)
	}
	if cfg.ExportDir != "exports" {
		t.Fatalf("export dir = %q", cfg.ExportDir)
	}
}

func TestResolveConfigHonorsOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("backend", "http://ops.internal:9000")
	viper.Set("export_dir", "/var/lib/commander")

	cfg := resolveConfig()
	if cfg.BackendURL != "http://ops.internal:9000" {
		t.Fatalf("backend = %q", cfg.BackendURL)
	}
	if cfg.ExportDir != "/var/lib/commander" {
		t.Fatalf("export dir = %q", cfg.ExportDir)
	}
}
