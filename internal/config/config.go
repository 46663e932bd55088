// Package config provides configuration management for the homework
// transcriber application.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"homework-transcriber/internal/document"
	"homework-transcriber/internal/logger"
	"homework-transcriber/internal/types"
)

const (
	// DefaultConfigFileName is the default configuration file name
	DefaultConfigFileName = "homework-transcriber-config.json"
	// EnvAPIKey is the primary environment variable for the vision API key
	EnvAPIKey = "MISTRAL_API_KEY"
	// EnvOpenAIAPIKey is the fallback key variable for OpenAI-compatible endpoints
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	// EnvBaseURL is the environment variable for the vision API base URL
	EnvBaseURL = "TRANSCRIBER_BASE_URL"
	// DefaultBaseURL is the default vision API base URL
	DefaultBaseURL = "https://api.mistral.ai/v1"
	// DefaultModel is the default vision model to use
	DefaultModel = "pixtral-large-latest"
	// DefaultEngine is the default recognition engine
	DefaultEngine = "vision"
	// DefaultCompiler is the default LaTeX compiler
	DefaultCompiler = "tectonic"
	// DefaultDPI is the default page rendering resolution
	DefaultDPI = 300
	// DefaultMaxRetries is the default recognition retry limit
	DefaultMaxRetries = 2
)

// Manager loads, persists and resolves the application configuration.
type Manager struct {
	configPath string
	config     *types.Config
}

// NewManager creates a Manager with the specified config path.
// If configPath is empty, it uses the default path in the user's home directory.
func NewManager(configPath string) (*Manager, error) {
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			logger.Error("failed to get user home directory", err)
			return nil, types.NewAppError(types.ErrConfig, "failed to get user home directory", err)
		}
		configPath = filepath.Join(homeDir, ".config", "homework-transcriber", DefaultConfigFileName)
	}

	logger.Info("config manager initialized", logger.String("configPath", configPath))
	return &Manager{
		configPath: configPath,
		config:     defaultConfig(),
	}, nil
}

// defaultConfig returns a Config with default values
func defaultConfig() *types.Config {
	return &types.Config{
		BaseURL:    DefaultBaseURL,
		Model:      DefaultModel,
		Engine:     DefaultEngine,
		Compiler:   DefaultCompiler,
		DPI:        DefaultDPI,
		MaxRetries: DefaultMaxRetries,
		Format:     document.DefaultFormat(),
	}
}

// Load loads configuration from the config file.
// If the file doesn't exist, it uses default values.
// Environment variables take precedence for the API key when the config file
// value is empty.
func (m *Manager) Load() error {
	logger.Debug("loading configuration", logger.String("path", m.configPath))

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("config file not found, using defaults", logger.String("path", m.configPath))
			m.config = defaultConfig()
		} else {
			logger.Error("failed to read config file", err, logger.String("path", m.configPath))
			return types.NewAppError(types.ErrConfig, "failed to read config file", err)
		}
	} else {
		config := &types.Config{}
		if err := json.Unmarshal(data, config); err != nil {
			logger.Warn("invalid config file format, using defaults",
				logger.String("path", m.configPath), logger.Err(err))
			m.config = defaultConfig()
		} else {
			logger.Info("configuration loaded successfully",
				logger.String("path", m.configPath),
				logger.Int("apiKeyLength", len(config.APIKey)),
				logger.String("baseURL", config.BaseURL),
				logger.String("model", config.Model))
			m.config = config
		}
	}

	// Apply defaults for empty fields
	if m.config.BaseURL == "" {
		m.config.BaseURL = DefaultBaseURL
	}
	if m.config.Model == "" {
		m.config.Model = DefaultModel
	}
	if m.config.Engine == "" {
		m.config.Engine = DefaultEngine
	}
	if m.config.Compiler == "" {
		m.config.Compiler = DefaultCompiler
	}
	if m.config.DPI == 0 {
		m.config.DPI = DefaultDPI
	}
	if m.config.MaxRetries == 0 {
		m.config.MaxRetries = DefaultMaxRetries
	}
	if (m.config.Format == document.Format{}) {
		m.config.Format = document.DefaultFormat()
	}

	return nil
}

// Save saves the current configuration to the config file.
func (m *Manager) Save() error {
	logger.Debug("saving configuration", logger.String("path", m.configPath))

	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("failed to create config directory", err, logger.String("dir", dir))
		return types.NewAppError(types.ErrConfig, "failed to create config directory", err)
	}

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		logger.Error("failed to marshal config", err)
		return types.NewAppError(types.ErrConfig, "failed to marshal config", err)
	}

	if err := os.WriteFile(m.configPath, data, 0600); err != nil {
		logger.Error("failed to write config file", err, logger.String("path", m.configPath))
		return types.NewAppError(types.ErrConfig, "failed to write config file", err)
	}

	logger.Info("configuration saved successfully", logger.String("path", m.configPath))
	return nil
}

// GetAPIKey returns the vision API key.
// It first checks the config file value, then falls back to the environment.
func (m *Manager) GetAPIKey() string {
	if m.config != nil && m.config.APIKey != "" {
		return m.config.APIKey
	}
	if key := os.Getenv(EnvAPIKey); key != "" {
		return key
	}
	return os.Getenv(EnvOpenAIAPIKey)
}

// SetAPIKey sets the API key and saves the configuration.
func (m *Manager) SetAPIKey(key string) error {
	logger.Info("setting API key")
	if m.config == nil {
		m.config = defaultConfig()
	}
	m.config.APIKey = key
	return m.Save()
}

// GetBaseURL returns the vision API base URL.
// It first checks the config file value, then falls back to the environment.
func (m *Manager) GetBaseURL() string {
	if m.config != nil && m.config.BaseURL != "" {
		return m.config.BaseURL
	}
	if envURL := os.Getenv(EnvBaseURL); envURL != "" {
		return envURL
	}
	return DefaultBaseURL
}

// GetConfig returns the current configuration.
func (m *Manager) GetConfig() *types.Config {
	if m.config == nil {
		return defaultConfig()
	}
	return m.config
}

// SetConfig sets the entire configuration.
func (m *Manager) SetConfig(config *types.Config) {
	m.config = config
}

// GetConfigPath returns the path to the config file.
func (m *Manager) GetConfigPath() string {
	return m.configPath
}
