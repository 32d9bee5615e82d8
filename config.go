package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	koanftoml "github.com/knadh/koanf/parsers/toml/v2"
	koanfenv "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
)

const (
	appName           = "chatpane"
	envPrefix         = "CHATPANE_"
	projectConfigDir  = ".agents"
	projectConfigFile = "chatpane.toml"
)

// Config represents the application configuration structure
type Config struct {
	Storage StorageConfig `koanf:"storage"`
	Logging LoggingConfig `koanf:"logging"`
	UI      UIConfig      `koanf:"ui"`
	LLM     LLMConfig     `koanf:"llm"`
	Session SessionConfig `koanf:"session"`
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	DatabasePath string `koanf:"database_path"` // Path to SQLite database
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `koanf:"level"`
}

// LLMConfig holds LLM configuration
type LLMConfig struct {
	Provider     string `koanf:"provider"`
	Model        string `koanf:"model"`
	APIKey       string `koanf:"api_key"`
	BaseURL      string `koanf:"base_url"`
	SystemPrompt string `koanf:"system_prompt"`
}

// UIConfig holds UI-specific configuration
type UIConfig struct {
	SubmitKey         string `koanf:"submit_key"`
	Language          string `koanf:"language"`
	MarkdownEnabled   bool   `koanf:"markdown_enabled"`
	ShowSidebar       bool   `koanf:"show_sidebar"`
	ContextMenu       bool   `koanf:"context_menu"`
	AutoScrollDelayMs int    `koanf:"auto_scroll_delay_ms"`
}

// SessionConfig holds session persistence configuration
type SessionConfig struct {
	Enabled     bool `koanf:"enabled"`
	MaxSessions int  `koanf:"max_sessions"`
	ListLimit   int  `koanf:"list_limit"`
}

// defaultConfig returns the configuration populated with sensible defaults.
func defaultConfig() Config {
	homeDir, _ := os.UserHomeDir()
	dbPath := filepath.Join(homeDir, ".local", "share", appName, appName+".sqlite")

	return Config{
		Storage: StorageConfig{
			DatabasePath: dbPath,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		UI: UIConfig{
			SubmitKey:         string(SubmitKeyEnter),
			Language:          "en",
			MarkdownEnabled:   true,
			ShowSidebar:       true,
			ContextMenu:       false,
			AutoScrollDelayMs: 500,
		},
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
		Session: SessionConfig{
			Enabled:     true,
			MaxSessions: 50,
			ListLimit:   0,
		},
	}
}

func userConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", appName, "conf.toml"), nil
}

// LoadConfig loads configuration from multiple sources
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if userPath, err := userConfigPath(); err != nil {
		log.Printf("Failed to get user home directory: %v", err)
	} else if _, err := os.Stat(userPath); err == nil {
		if err := k.Load(file.Provider(userPath), koanftoml.Parser()); err != nil {
			log.Printf("Failed to load user config from %s: %v", userPath, err)
		}
	}

	projectConfigPath := filepath.Join(projectConfigDir, projectConfigFile)
	if _, err := os.Stat(projectConfigPath); err == nil {
		if err := k.Load(file.Provider(projectConfigPath), koanftoml.Parser()); err != nil {
			log.Printf("Failed to load project config from %s: %v", projectConfigPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("Unable to stat project config at %s: %v", projectConfigPath, err)
	}

	// Environment variables with prefix "CHATPANE_" override config values.
	// Only the first underscore after the section splits, so
	// CHATPANE_UI_SUBMIT_KEY becomes "ui.submit_key".
	if err := k.Load(koanfenv.Provider(".", koanfenv.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
			key = strings.Replace(key, "_", ".", 1)
			return key, value
		},
	}), nil); err != nil {
		log.Printf("Failed to load environment variables: %v", err)
	}

	// Standard provider environment variables
	if k.String("llm.api_key") == "" {
		envKey := ""
		switch k.String("llm.provider") {
		case "openai", "":
			envKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic":
			envKey = os.Getenv("ANTHROPIC_API_KEY")
		case "googleai":
			envKey = os.Getenv("GEMINI_API_KEY")
		}
		if envKey != "" {
			if err := k.Set("llm.api_key", envKey); err != nil {
				log.Printf("Failed to set API key from environment: %v", err)
			}
		}
	}

	config := defaultConfig()
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the values that have a closed set of options
func (c *Config) Validate() error {
	if _, err := ParseSubmitKey(c.UI.SubmitKey); err != nil {
		return fmt.Errorf("invalid ui.submit_key: %w", err)
	}
	if c.UI.AutoScrollDelayMs < 0 {
		return fmt.Errorf("invalid ui.auto_scroll_delay_ms: %d", c.UI.AutoScrollDelayMs)
	}
	return nil
}

// SubmitKeyPolicy returns the parsed submit key, Enter when unset
func (c *Config) SubmitKeyPolicy() SubmitKey {
	k, err := ParseSubmitKey(c.UI.SubmitKey)
	if err != nil {
		return SubmitKeyEnter
	}
	return k
}

// SaveConfig saves the submit key to the project-level chatpane.toml file
func SaveConfig(config *Config) error {
	projectConfigPath := filepath.Join(projectConfigDir, projectConfigFile)

	if err := os.MkdirAll(projectConfigDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", projectConfigDir, err)
	}

	k := koanf.New(".")
	if _, err := os.Stat(projectConfigPath); err == nil {
		if err := k.Load(file.Provider(projectConfigPath), koanftoml.Parser()); err != nil {
			return fmt.Errorf("failed to load existing project config: %w", err)
		}
	}

	if err := k.Set("ui.submit_key", config.UI.SubmitKey); err != nil {
		return fmt.Errorf("failed to update submit key in config: %w", err)
	}

	data, err := k.Marshal(koanftoml.Parser())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(projectConfigPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
