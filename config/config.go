// Package config provides configuration management for the screenshot tool.
// It supports YAML configuration files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration settings for the screenshot tool
type Config struct {
	// Chrome installation paths
	Chrome ChromeConfig `yaml:"chrome"`

	// Browser automation settings
	Browser BrowserConfig `yaml:"browser"`

	// Navigation behavior
	Navigation NavigationConfig `yaml:"navigation"`

	// Capture output settings
	Capture CaptureConfig `yaml:"capture"`

	// Stealth settings for anti-detection
	Stealth StealthConfig `yaml:"stealth"`

	// Process management settings
	Process ProcessConfig `yaml:"process"`

	// Storage configuration
	Storage StorageConfig `yaml:"storage"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`
}

// ChromeConfig holds paths to the local Chrome installation
type ChromeConfig struct {
	ExecutablePath string `yaml:"executable_path"`
	UserDataDir    string `yaml:"user_data_dir"`
}

// BrowserConfig holds browser automation settings
type BrowserConfig struct {
	Headless       bool `yaml:"headless"`
	SlowMotion     int  `yaml:"slow_motion_ms"`
	Timeout        int  `yaml:"timeout_seconds"`
	ViewportWidth  int  `yaml:"viewport_width"`
	ViewportHeight int  `yaml:"viewport_height"`
}

// NavigationConfig holds page navigation settings
type NavigationConfig struct {
	TimeoutSeconds      int    `yaml:"timeout_seconds"`
	RetryTimeoutSeconds int    `yaml:"retry_timeout_seconds"`
	NetworkIdleSeconds  int    `yaml:"network_idle_seconds"`
	Locale              string `yaml:"locale"`
	TimezoneID          string `yaml:"timezone_id"`
	AcceptLanguage      string `yaml:"accept_language"`
}

// CaptureConfig holds screenshot output settings
type CaptureConfig struct {
	OutputDir     string `yaml:"output_dir"`
	DefaultURL    string `yaml:"default_url"`
	SettleWaitMs  int    `yaml:"settle_wait_ms"`
	HoldOpenMs    int    `yaml:"hold_open_ms"`
	MinFileSizeKB int    `yaml:"min_file_size_kb"`
}

// StealthConfig holds anti-detection settings
type StealthConfig struct {
	RandomizeViewport bool `yaml:"randomize_viewport"`
	RandomUserAgent   bool `yaml:"random_user_agent"`
	PageLoadWaitMin   int  `yaml:"page_load_wait_min_ms"`
	PageLoadWaitMax   int  `yaml:"page_load_wait_max_ms"`
}

// ProcessConfig holds settings for sweeping existing browser processes
type ProcessConfig struct {
	MatchPattern    string `yaml:"match_pattern"`
	TermWaitSeconds int    `yaml:"term_wait_seconds"`
}

// StorageConfig holds data persistence settings
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	OutputFile string `yaml:"output_file"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Chrome: ChromeConfig{
			ExecutablePath: "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			UserDataDir:    os.ExpandEnv("$HOME/Library/Application Support/Google/Chrome"),
		},
		Browser: BrowserConfig{
			Headless:       false,
			SlowMotion:     0,
			Timeout:        60,
			ViewportWidth:  1920,
			ViewportHeight: 1080,
		},
		Navigation: NavigationConfig{
			TimeoutSeconds:      45,
			RetryTimeoutSeconds: 30,
			NetworkIdleSeconds:  15,
			Locale:              "ko-KR",
			TimezoneID:          "Asia/Seoul",
			AcceptLanguage:      "ko-KR,ko;q=0.9,en;q=0.8",
		},
		Capture: CaptureConfig{
			OutputDir:     "./screenshots",
			DefaultURL:    "https://www.naver.com",
			SettleWaitMs:  8000,
			HoldOpenMs:    10000,
			MinFileSizeKB: 10,
		},
		Stealth: StealthConfig{
			RandomizeViewport: false,
			RandomUserAgent:   false,
			PageLoadWaitMin:   1000,
			PageLoadWaitMax:   3000,
		},
		Process: ProcessConfig{
			MatchPattern:    "Google Chrome",
			TermWaitSeconds: 5,
		},
		Storage: StorageConfig{
			DatabasePath: "./data/captures.db",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			OutputFile: "",
		},
	}
}

// LoadConfig loads configuration from a YAML file and applies environment variable overrides
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	// Try to load from file if it exists
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// File doesn't exist, use defaults
		} else {
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Apply environment variable overrides
	config.applyEnvOverrides()

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func (c *Config) applyEnvOverrides() {
	// Chrome paths (most commonly overridden via env)
	if exe := os.Getenv("CHROMIUM_EXECUTABLE_PATH"); exe != "" {
		c.Chrome.ExecutablePath = exe
	}
	if userData := os.Getenv("CHROMIUM_USERDATA_PATH"); userData != "" {
		c.Chrome.UserDataDir = userData
	}

	// Browser settings
	if headless := os.Getenv("BROWSER_HEADLESS"); headless != "" {
		c.Browser.Headless = headless == "true" || headless == "1"
	}

	// Capture settings
	if outDir := os.Getenv("SCREENSHOT_OUTPUT_DIR"); outDir != "" {
		c.Capture.OutputDir = outDir
	}
	if settle := os.Getenv("CAPTURE_SETTLE_WAIT_MS"); settle != "" {
		if val, err := strconv.Atoi(settle); err == nil {
			c.Capture.SettleWaitMs = val
		}
	}

	// Logging
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	// Storage
	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		c.Storage.DatabasePath = dbPath
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// The Chrome executable and user data directory must exist on disk
	if c.Chrome.ExecutablePath == "" {
		return fmt.Errorf("chrome executable path is required (set CHROMIUM_EXECUTABLE_PATH env var or in config)")
	}
	if _, err := os.Stat(c.Chrome.ExecutablePath); err != nil {
		return fmt.Errorf("chrome executable not found: %s", c.Chrome.ExecutablePath)
	}
	if c.Chrome.UserDataDir == "" {
		return fmt.Errorf("chrome user data directory is required (set CHROMIUM_USERDATA_PATH env var or in config)")
	}
	if _, err := os.Stat(c.Chrome.UserDataDir); err != nil {
		return fmt.Errorf("chrome user data directory not found: %s", c.Chrome.UserDataDir)
	}

	// Validate timeouts
	if c.Browser.Timeout <= 0 {
		return fmt.Errorf("browser timeout_seconds must be positive")
	}
	if c.Navigation.TimeoutSeconds <= 0 || c.Navigation.RetryTimeoutSeconds <= 0 {
		return fmt.Errorf("navigation timeouts must be positive")
	}

	// Validate viewport
	if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
		return fmt.Errorf("viewport dimensions must be positive")
	}

	// Validate stealth delays
	if c.Stealth.PageLoadWaitMin > c.Stealth.PageLoadWaitMax {
		return fmt.Errorf("page_load_wait_min_ms must not exceed page_load_wait_max_ms")
	}

	// Validate logging level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	return nil
}

// NavTimeout returns the primary navigation timeout as a time.Duration
func (c *Config) NavTimeout() time.Duration {
	return time.Duration(c.Navigation.TimeoutSeconds) * time.Second
}

// RetryTimeout returns the fallback navigation timeout as a time.Duration
func (c *Config) RetryTimeout() time.Duration {
	return time.Duration(c.Navigation.RetryTimeoutSeconds) * time.Second
}

// SaveConfig saves the current configuration to a YAML file
func (c *Config) SaveConfig(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
