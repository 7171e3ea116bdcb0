package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type ProviderConfig struct {
	ID           string `toml:"id"`
	Host         string `toml:"host,omitempty"`
	DefaultModel string `toml:"default_model"`
	APIKeyEnv    string `toml:"api_key_env,omitempty"`
}

type UserConfig struct {
	Provider       ProviderConfig `toml:"provider"`
	StorageBackend string         `toml:"storage_backend"`
	PromptPreface  string         `toml:"prompt_preface,omitempty"`
	TTSCommand     string         `toml:"tts_command,omitempty"`
}

type Config struct {
	DataDirectory  string
	ProviderID     string
	ProviderHost   string
	DefaultModel   string
	APIKeyEnv      string
	StorageBackend string
	PromptPreface  string
	TTSCommand     string
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// APIKey resolves the provider API key from the configured environment
// variable, falling back to the conventional name for the provider.
func (c *Config) APIKey() string {
	if c.APIKeyEnv != "" {
		return os.Getenv(c.APIKeyEnv)
	}
	switch c.ProviderID {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "openrouter":
		return os.Getenv("OPENROUTER_API_KEY")
	}
	return ""
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DataDirectory, validation.Required),
		validation.Field(&c.ProviderID, validation.Required,
			validation.In("ollama", "openai", "anthropic", "openrouter")),
		validation.Field(&c.StorageBackend, validation.Required,
			validation.In("file", "sqlite")),
	)
}

func (c *Config) applyEnvOverrides() {
	if dataDir := os.Getenv("LOQUI_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if provider := os.Getenv("LOQUI_PROVIDER"); provider != "" {
		c.ProviderID = provider
	}
	if host := os.Getenv("LOQUI_PROVIDER_HOST"); host != "" {
		c.ProviderHost = host
	}
	if model := os.Getenv("LOQUI_MODEL"); model != "" {
		c.DefaultModel = model
	}
	if backend := os.Getenv("LOQUI_STORAGE"); backend != "" {
		c.StorageBackend = backend
	}
}

func CheckDebug() bool {
	debug := os.Getenv("LOQUI_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// Create debug log with secure permissions (0600 - may contain conversation text)
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (LOQUI_DEBUG=%s) ===", os.Getenv("LOQUI_DEBUG"))
	DebugLog.Printf("Log path: %s", logPath)
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	settingsPath := GetSettingsFilePath()
	if FileExists(settingsPath) {
		systemCfg, err := LoadSystemConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load system config: %w", err)
		}
		cfg.DataDirectory = systemCfg.DataDirectory

		userCfg, err := LoadUserConfig(cfg.DataDir())
		if err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
		cfg.applyUserConfig(userCfg)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyUserConfig(userCfg *UserConfig) {
	if userCfg.Provider.ID != "" {
		c.ProviderID = userCfg.Provider.ID
	}
	if userCfg.Provider.Host != "" {
		c.ProviderHost = userCfg.Provider.Host
	}
	if userCfg.Provider.DefaultModel != "" {
		c.DefaultModel = userCfg.Provider.DefaultModel
	}
	c.APIKeyEnv = userCfg.Provider.APIKeyEnv
	if userCfg.StorageBackend != "" {
		c.StorageBackend = userCfg.StorageBackend
	}
	c.PromptPreface = userCfg.PromptPreface
	c.TTSCommand = userCfg.TTSCommand
}
