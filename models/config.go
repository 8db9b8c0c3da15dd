// Package models defines the configuration and content data structures
// shared across the migration pipeline.
package models

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"wp2presta/internal/common"
)

// WordPressConfig holds the source site connection settings.
type WordPressConfig struct {
	URL          string `yaml:"url"`
	Username     string `yaml:"username"`
	AppPassword  string `yaml:"app_password"`
	IncludePosts bool   `yaml:"include_posts"`
}

// HasAuth reports whether application-password credentials are configured.
func (w WordPressConfig) HasAuth() bool {
	return w.Username != "" && w.AppPassword != ""
}

// APIBase returns the WP REST API root, e.g. https://site/wp-json/wp/v2.
func (w WordPressConfig) APIBase() string {
	return strings.TrimRight(w.URL, "/") + "/wp-json/wp/v2"
}

// PrestaShopConfig holds the destination store connection settings.
type PrestaShopConfig struct {
	URL           string `yaml:"url"`
	APIKey        string `yaml:"api_key"`
	DefaultLangID int    `yaml:"default_lang_id"`
	CMSCategoryID int    `yaml:"cms_category_id"`
}

// APIBase returns the Webservice API root, e.g. https://shop/api.
func (p PrestaShopConfig) APIBase() string {
	return strings.TrimRight(p.URL, "/") + "/api"
}

// MigrationConfig holds run behavior and image transfer settings.
type MigrationConfig struct {
	DryRun         bool   `yaml:"dry_run"`
	LogFile        string `yaml:"log_file"`
	DownloadImages bool   `yaml:"download_images"`
	ImageTempDir   string `yaml:"image_temp_dir"`
	ImageTargetDir string `yaml:"image_target_dir"`
	FTPHost        string `yaml:"ftp_host"`
	FTPUser        string `yaml:"ftp_user"`
	FTPPassword    string `yaml:"ftp_password"`
	FTPRemotePath  string `yaml:"ftp_remote_path"`
}

// RuleConfig is one raw routing rule as written in config.yaml.
// Validation and normalization happen in the router package.
type RuleConfig struct {
	Name          string         `yaml:"name"`
	Target        string         `yaml:"target"`
	Slugs         []string       `yaml:"slugs"`
	Patterns      []string       `yaml:"patterns"`
	CMSCategoryID int            `yaml:"cms_category_id"`
	MatchBy       string         `yaml:"match_by"`
	ProductMap    map[string]any `yaml:"product_map"`
}

// MappingConfig is the raw mapping section, consumed by router.New.
type MappingConfig struct {
	Default string       `yaml:"default"`
	Rules   []RuleConfig `yaml:"rules"`
}

// Config is the validated application configuration.
type Config struct {
	WordPress  WordPressConfig  `yaml:"wordpress"`
	PrestaShop PrestaShopConfig `yaml:"prestashop"`
	Migration  MigrationConfig  `yaml:"migration"`
	Mapping    MappingConfig    `yaml:"mapping"`
}

// LoadConfig reads and validates a YAML configuration file.
// Missing required fields fail here, before any item is processed.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// Pre-seed defaults that yaml cannot distinguish from zero values.
	cfg := &Config{Migration: MigrationConfig{DownloadImages: true}}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.WordPress.URL == "" {
		return nil, fmt.Errorf("wordpress.url is required")
	}
	if cfg.PrestaShop.URL == "" {
		return nil, fmt.Errorf("prestashop.url is required")
	}
	if cfg.PrestaShop.APIKey == "" {
		return nil, fmt.Errorf("prestashop.api_key is required")
	}

	cfg.WordPress.URL = common.SanitizeBaseURL(cfg.WordPress.URL)
	cfg.PrestaShop.URL = common.SanitizeBaseURL(cfg.PrestaShop.URL)
	if err := common.ValidateBaseURL(cfg.WordPress.URL); err != nil {
		return nil, fmt.Errorf("wordpress.url: %w", err)
	}
	if err := common.ValidateBaseURL(cfg.PrestaShop.URL); err != nil {
		return nil, fmt.Errorf("prestashop.url: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.PrestaShop.DefaultLangID == 0 {
		c.PrestaShop.DefaultLangID = 1
	}
	if c.PrestaShop.CMSCategoryID == 0 {
		c.PrestaShop.CMSCategoryID = 1
	}
	if c.Migration.LogFile == "" {
		c.Migration.LogFile = "migration.log"
	}
	if c.Migration.ImageTempDir == "" {
		c.Migration.ImageTempDir = "temp_images"
	}
	if c.Mapping.Default == "" {
		c.Mapping.Default = "skip"
	}
}
