package models

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

const minimalConfig = `
wordpress:
  url: "https://old.example.com"
prestashop:
  url: "https://shop.example.com"
  api_key: "KEY"
`

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.PrestaShop.DefaultLangID != 1 {
		t.Errorf("DefaultLangID = %d, want 1", cfg.PrestaShop.DefaultLangID)
	}
	if cfg.PrestaShop.CMSCategoryID != 1 {
		t.Errorf("CMSCategoryID = %d, want 1", cfg.PrestaShop.CMSCategoryID)
	}
	if cfg.Migration.LogFile != "migration.log" {
		t.Errorf("LogFile = %q", cfg.Migration.LogFile)
	}
	if cfg.Migration.ImageTempDir != "temp_images" {
		t.Errorf("ImageTempDir = %q", cfg.Migration.ImageTempDir)
	}
	if !cfg.Migration.DownloadImages {
		t.Error("DownloadImages default should be true")
	}
	if cfg.Mapping.Default != "skip" {
		t.Errorf("Mapping.Default = %q, want skip", cfg.Mapping.Default)
	}
}

func TestLoadConfigExplicitDownloadImagesFalse(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalConfig+`
migration:
  download_images: false
`))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Migration.DownloadImages {
		t.Error("explicit download_images: false was ignored")
	}
}

func TestLoadConfigMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no wordpress url", `
prestashop:
  url: "https://shop.example.com"
  api_key: "KEY"
`},
		{"no prestashop url", `
wordpress:
  url: "https://old.example.com"
prestashop:
  api_key: "KEY"
`},
		{"no api key", `
wordpress:
  url: "https://old.example.com"
prestashop:
  url: "https://shop.example.com"
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.content)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadConfigCleansBaseURLs(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
wordpress:
  url: "https://old.example.com/wp-json"
prestashop:
  url: "https://shop.example.com/"
  api_key: "KEY"
`))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.WordPress.URL != "https://old.example.com" {
		t.Errorf("WordPress.URL = %q", cfg.WordPress.URL)
	}
	if cfg.PrestaShop.URL != "https://shop.example.com" {
		t.Errorf("PrestaShop.URL = %q", cfg.PrestaShop.URL)
	}
	if got := cfg.WordPress.APIBase(); got != "https://old.example.com/wp-json/wp/v2" {
		t.Errorf("APIBase() = %q", got)
	}
}

func TestLoadConfigRejectsBadScheme(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
wordpress:
  url: "ftp://old.example.com"
prestashop:
  url: "https://shop.example.com"
  api_key: "KEY"
`))
	if err == nil {
		t.Error("expected error for non-http scheme")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
