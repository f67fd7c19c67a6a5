package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/lumocast/pickerd/internal/logger"
	"gopkg.in/yaml.v3"
)

// Config represents the daemon configuration
type Config struct {
	// SocketPath is the unix socket the Lumocast app listens on.
	// Empty means the derived default under $XDG_RUNTIME_DIR.
	SocketPath string `json:"socket_path" yaml:"socket_path"`

	// QueryTimeoutMs bounds one selection query round trip to the app.
	QueryTimeoutMs int `json:"query_timeout_ms" yaml:"query_timeout_ms"`

	// APIPort is the localhost status API port. 0 disables the API.
	APIPort int `json:"api_port" yaml:"api_port"`

	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogPretty bool   `json:"log_pretty" yaml:"log_pretty"`
}

// Manager handles configuration
type Manager struct {
	configPath string
	config     *Config
	mu         sync.RWMutex
}

// NewManager creates a new configuration manager.
//
// The config file is created with defaults on first run, so a plain
// `pickerd serve` works without any setup.
func NewManager(configFile string) (*Manager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", "lumocast")
	actualConfigPath := filepath.Join(configDir, "pickerd.yaml")
	if configFile != "" {
		actualConfigPath = configFile
	}

	if err := os.MkdirAll(filepath.Dir(actualConfigPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	m := &Manager{
		configPath: actualConfigPath,
	}

	if err := m.load(); err != nil {
		if os.IsNotExist(err) {
			logger.WithComponent("config").Info().
				Str("path", m.configPath).
				Msg("Config file not found, creating new config")
			m.config = Defaults()
			if err := m.Save(); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	logger.WithComponent("config").Info().
		Str("path", m.configPath).
		Msg("Config loaded")

	return m, nil
}

// Defaults returns the default configuration
func Defaults() *Config {
	return &Config{
		SocketPath:     "",
		QueryTimeoutMs: 3000,
		APIPort:        0,
		LogLevel:       "info",
		LogPretty:      false,
	}
}

// load reads the configuration from disk
func (m *Manager) load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	// Guard against nonsense timeouts from hand-edited files.
	if cfg.QueryTimeoutMs <= 0 {
		cfg.QueryTimeoutMs = Defaults().QueryTimeoutMs
	}

	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	return nil
}

// Get returns a copy of the current configuration
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return Defaults()
	}
	cfg := *m.config
	return &cfg
}

// Save saves the current configuration to disk
func (m *Manager) Save() error {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	if cfg == nil {
		cfg = Defaults()
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		logger.WithComponent("config").Error().
			Err(err).
			Str("path", m.configPath).
			Msg("Failed to write config")
		return err
	}
	return nil
}

// SetLogLevel sets the log level
func (m *Manager) SetLogLevel(level string) error {
	m.mu.Lock()
	m.config.LogLevel = level
	m.mu.Unlock()
	return m.Save()
}

// SetAPIPort sets the status API port
func (m *Manager) SetAPIPort(port int) error {
	m.mu.Lock()
	m.config.APIPort = port
	m.mu.Unlock()
	return m.Save()
}

// GetConfigPath returns the path to the config file
func (m *Manager) GetConfigPath() string {
	return m.configPath
}
