package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the full client configuration
type Config struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Export  ExportConfig  `mapstructure:"export" yaml:"export"`
	UI      UIConfig      `mapstructure:"ui" yaml:"ui"`
}

// APIConfig points the client at the backend
type APIConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	// Timeout of 0 keeps the transport's default behavior
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type LoggingConfig struct {
	Development bool   `mapstructure:"development" yaml:"development"`
	File        string `mapstructure:"file" yaml:"file"`
}

// StorageConfig locates the database holding the session token
type StorageConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type ExportConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

type UIConfig struct {
	AltScreen bool `mapstructure:"alt_screen" yaml:"alt_screen"`
	Mouse     bool `mapstructure:"mouse" yaml:"mouse"`
}

// EnvPrefix prefixes every environment override, e.g. TASKBOARD_API_BASE_URL
const EnvPrefix = "TASKBOARD"

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000/api",
		},
		Export: ExportConfig{
			File: "export_tasks.csv",
		},
		UI: UIConfig{
			AltScreen: true,
			Mouse:     true,
		},
	}
}

func newViper() *viper.Viper {
	d := Default()
	v := viper.New()
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("logging.development", d.Logging.Development)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("export.file", d.Export.File)
	v.SetDefault("ui.alt_screen", d.UI.AltScreen)
	v.SetDefault("ui.mouse", d.UI.Mouse)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from defaults, the config file and the
// environment, in increasing precedence. path may be empty, in which case
// the default location is used and a missing file is not an error.
func Load(path string) (*Config, error) {
	v := newViper()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
			if explicit || !missing {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	return cfg, nil
}

// DefaultPath returns the config file location under the XDG config directory
func DefaultPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "taskboard", "config.yml")
}

// Dump writes the configuration as YAML
func (c *Config) Dump(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}
