package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Data sources, tried before the built-in candidate directories
	DataDirs []string `mapstructure:"data_dirs" yaml:"data_dirs,omitempty"`
	DayFile  string   `mapstructure:"day_file" yaml:"day_file,omitempty"`
	HourFile string   `mapstructure:"hour_file" yaml:"hour_file,omitempty"`

	// Initial filter selection for new sessions and CLI runs
	DefaultSeasons    []string `mapstructure:"default_seasons" yaml:"default_seasons,omitempty"`
	DefaultWorkingDay string   `mapstructure:"default_workingday" yaml:"default_workingday,omitempty"`

	// HTTP surface
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr,omitempty"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level,omitempty"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format,omitempty"`

	// ExportDir is where exports go without an explicit path; empty means
	// the working directory.
	ExportDir string `mapstructure:"export_dir" yaml:"export_dir,omitempty"`
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".bikeshare"), nil
}

// Path resolves the config file location: cfgFile when set, otherwise
// ~/.bikeshare/config.yaml.
func Path(cfgFile string) (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.bikeshare/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path, err := Path(cfgFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// LoadFile reads only the values stored in the config file, without
// defaults or environment overrides. A missing file yields an empty Global.
// Use it to edit and re-save the file.
func LoadFile(cfgFile string) (*Global, error) {
	path, err := Path(cfgFile)
	if err != nil {
		return nil, err
	}
	var c Global
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("BIKESHARE")
	v.AutomaticEnv()

	v.SetDefault("data_dirs", []string{})
	v.SetDefault("day_file", "day.csv")
	v.SetDefault("hour_file", "hour.csv")
	v.SetDefault("default_seasons", []string{"Spring", "Summer", "Fall", "Winter"})
	v.SetDefault("default_workingday", "all")
	v.SetDefault("listen_addr", "127.0.0.1:8501")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("export_dir", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
