package social

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// VendorConfig describes one vendor API endpoint set, loaded from
// <vendors-dir>/<vendor>.yml.
type VendorConfig struct {
	Vendor       string `yaml:"-"` // derived from filename
	BaseURL      string `yaml:"base_url"`
	AuthURL      string `yaml:"auth_url"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`

	Settings VendorSettings `yaml:"settings"`
}

type VendorSettings struct {
	Enabled   bool    `yaml:"enabled"`
	Timeout   int     `yaml:"timeout"`    // seconds per request
	RateLimit float64 `yaml:"rate_limit"` // requests per second
	RateBurst int     `yaml:"rate_burst"`
}

// ConfigCache loads and caches vendor configuration files.
type ConfigCache struct {
	vendorsDir string
	cache      map[string]*VendorConfig
	mu         sync.RWMutex
}

func NewConfigCache(vendorsDir string) *ConfigCache {
	return &ConfigCache{
		vendorsDir: vendorsDir,
		cache:      make(map[string]*VendorConfig),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.vendorsDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.vendorsDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		vendor := strings.TrimSuffix(filepath.Base(file), ".yml")

		config, err := cc.LoadConfig(vendor)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Vendor configuration loaded", "vendor", vendor, "enabled", config.Settings.Enabled)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(vendor string) (*VendorConfig, error) {
	configFile := filepath.Join(cc.vendorsDir, vendor+".yml")

	config, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	config.Vendor = vendor

	if err := cc.validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[vendor] = config

	return config, nil
}

func (cc *ConfigCache) GetConfig(vendor string) (*VendorConfig, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	config, ok := cc.cache[vendor]
	if !ok {
		return nil, fmt.Errorf("vendor config with name '%s' not found", vendor)
	}
	return config, nil
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parseConfig(configFile string) (*VendorConfig, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	// Secrets are referenced as ${VAR} and resolved from the environment,
	// which godotenv has already populated.
	expanded := os.ExpandEnv(string(data))

	var config VendorConfig
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if config.Settings.Timeout == 0 {
		config.Settings.Timeout = 30
	}
	if config.Settings.RateLimit == 0 {
		config.Settings.RateLimit = 2.0
	}
	if config.Settings.RateBurst == 0 {
		config.Settings.RateBurst = 10
	}

	return &config, nil
}

func (cc *ConfigCache) validateConfig(config *VendorConfig) error {
	if config == nil {
		return fmt.Errorf("config is nil")
	}

	requiredFields := map[string]string{
		"vendor name": config.Vendor,
		"base URL":    config.BaseURL,
	}

	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}

	if config.Settings.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	if config.Settings.RateLimit < 0 {
		return fmt.Errorf("rate limit must be non-negative")
	}

	return nil
}
