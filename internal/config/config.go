package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. CLUSTERVIEW_SERVER_BASE_URL.
const EnvPrefix = "CLUSTERVIEW"

// ServerConfig points at the external clustering service.
type ServerConfig struct {
	BaseURL     string `mapstructure:"base_url" yaml:"base_url"`
	TimeoutSecs int    `mapstructure:"timeout_secs" yaml:"timeout_secs"`
}

// AnalysisConfig bounds the k selector.
type AnalysisConfig struct {
	DefaultK int `mapstructure:"default_k" yaml:"default_k"`
	KMin     int `mapstructure:"k_min" yaml:"k_min"`
	KMax     int `mapstructure:"k_max" yaml:"k_max"`
}

// ViewerConfig configures the local result viewer.
type ViewerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// LogConfig controls log verbosity and where the TUI writes its log.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Viewer   ViewerConfig   `mapstructure:"viewer" yaml:"viewer"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist,
// defaults are used. Environment variables override file values.
func Load(path string) (*AppConfig, error) {
	v := newViper()
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/clusterview/config.yaml.
// If neither exists, it writes defaults to ~/.config/clusterview/config.yaml and returns them.
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
	if err := Save(userPath, Default()); err != nil {
		return nil, "", err
	}
	cfg, err := Load(userPath)
	return cfg, userPath, err
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

// DefaultUserConfigPath is ~/.config/clusterview/config.yaml.
func DefaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "clusterview", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	return &AppConfig{
		Server:   ServerConfig{BaseURL: "http://127.0.0.1:5000", TimeoutSecs: 30},
		Analysis: AnalysisConfig{DefaultK: 3, KMin: 2, KMax: 10},
		Viewer:   ViewerConfig{Addr: "127.0.0.1:8088"},
		Log:      LogConfig{Level: "info", File: "clusterview.log"},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("server.base_url", d.Server.BaseURL)
	v.SetDefault("server.timeout_secs", d.Server.TimeoutSecs)
	v.SetDefault("analysis.default_k", d.Analysis.DefaultK)
	v.SetDefault("analysis.k_min", d.Analysis.KMin)
	v.SetDefault("analysis.k_max", d.Analysis.KMax)
	v.SetDefault("viewer.addr", d.Viewer.Addr)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	return v
}

func applyConfigDefaults(cfg *AppConfig) {
	d := Default()
	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = d.Server.BaseURL
	}
	if cfg.Server.TimeoutSecs <= 0 {
		cfg.Server.TimeoutSecs = d.Server.TimeoutSecs
	}
	if cfg.Analysis.KMin < 1 {
		cfg.Analysis.KMin = 1
	}
	if cfg.Analysis.KMax < cfg.Analysis.KMin {
		cfg.Analysis.KMax = cfg.Analysis.KMin
	}
	if cfg.Analysis.DefaultK < cfg.Analysis.KMin {
		cfg.Analysis.DefaultK = cfg.Analysis.KMin
	}
	if cfg.Analysis.DefaultK > cfg.Analysis.KMax {
		cfg.Analysis.DefaultK = cfg.Analysis.KMax
	}
	if cfg.Viewer.Addr == "" {
		cfg.Viewer.Addr = d.Viewer.Addr
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = d.Log.Level
	}
}
