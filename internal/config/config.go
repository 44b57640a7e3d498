package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the CLI configuration.
type Config struct {
	DB     DBConfig     `mapstructure:"db"`
	Log    LogConfig    `mapstructure:"log"`
	Notify NotifyConfig `mapstructure:"notify"`
}

// DBConfig locates the SQLite database. An empty path keeps everything in memory.
type DBConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level    string `mapstructure:"level"`  // debug, info, warn, error
	Format   string `mapstructure:"format"` // json, console
	Output   string `mapstructure:"output"` // stdout, stderr, file
	FilePath string `mapstructure:"file_path"`
}

// NotifyConfig controls where user notifications and console emails are printed.
type NotifyConfig struct {
	Output string `mapstructure:"output"` // stdout, stderr
}

// Persistent reports whether a database path is configured.
func (c *Config) Persistent() bool { return strings.TrimSpace(c.DB.Path) != "" }

// Load reads configPath (or ./library.yaml, ./config/library.yaml when empty),
// then LIBRARY_* environment variables, over the defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("library")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("LIBRARY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.path", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("log.file_path", "logs/library.log")

	v.SetDefault("notify.output", "stdout")
}
