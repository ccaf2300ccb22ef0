package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// PlaceholderEndpoint is shown when no endpoint has been configured.
const PlaceholderEndpoint = "https://YOUR-API-ENDPOINT.run.app"

// APIConfig locates the remote search API.
type APIConfig struct {
	Endpoint    string `yaml:"endpoint"`
	EndpointEnv string `yaml:"endpoint_env"`
	// TimeoutSecs bounds a request; 0 waits indefinitely.
	TimeoutSecs int `yaml:"timeout_secs"`
}

// FormConfig holds the initial state of the search form.
type FormConfig struct {
	Summarization bool     `yaml:"summarization"`
	Reasoning     bool     `yaml:"reasoning"`
	Sources       []string `yaml:"sources"`
}

// ServerConfig configures the web front end.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `yaml:"level"`
	// File receives logs; empty means stderr, except in the TUI where it disables logging.
	File string `yaml:"file"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	API    APIConfig    `yaml:"api"`
	Form   FormConfig   `yaml:"form"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/scisearch/config.yaml.
// If neither exists, it writes defaults to ~/.config/scisearch/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := DefaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// DefaultUserConfigPath returns ~/.config/scisearch/config.yaml.
func DefaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "scisearch", "config.yaml"), nil
}

// ResolveEndpoint picks the API endpoint: the environment variable named by
// api.endpoint_env, then api.endpoint, then the placeholder.
func (c *AppConfig) ResolveEndpoint() string {
	if c.API.EndpointEnv != "" {
		if v := strings.TrimSpace(os.Getenv(c.API.EndpointEnv)); v != "" {
			return v
		}
	}
	if v := strings.TrimSpace(c.API.Endpoint); v != "" {
		return v
	}
	return PlaceholderEndpoint
}

// HasSource reports whether name is preselected in the form.
func (f FormConfig) HasSource(name string) bool {
	for _, s := range f.Sources {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		API:    APIConfig{EndpointEnv: "API_ENDPOINT"},
		Form:   FormConfig{Summarization: true, Reasoning: true, Sources: []string{"arxiv"}},
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info"},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.API.EndpointEnv == "" {
		cfg.API.EndpointEnv = "API_ENDPOINT"
	}
	if cfg.API.TimeoutSecs < 0 {
		cfg.API.TimeoutSecs = 0
	}
	if cfg.Form.Sources == nil {
		cfg.Form.Sources = []string{"arxiv"}
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
