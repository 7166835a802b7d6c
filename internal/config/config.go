// Package config loads docsql settings from defaults, an optional config
// file and DOCSQL_* environment variables, in increasing precedence.
package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// Output formats accepted by output.format.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

// EnvPrefix is prepended to environment variable names, e.g. DOCSQL_DATA_FILE.
const EnvPrefix = "DOCSQL"

// Config is the CLI configuration.
type Config struct {
	Data   DataConfig   `mapstructure:"data"`
	Output OutputConfig `mapstructure:"output"`
	Log    LogConfig    `mapstructure:"log"`
}

// DataConfig points at the document the statements run against.
type DataConfig struct {
	File  string `mapstructure:"file"`
	Watch bool   `mapstructure:"watch"`
}

// OutputConfig controls result rendering.
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// LogConfig controls diagnostics on stderr.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data.file", "")
	v.SetDefault("data.watch", false)
	v.SetDefault("output.format", FormatTable)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.json", false)
}

// New returns a viper instance with defaults and environment binding. When
// path is empty a docsql.{toml,yaml,json} in the working directory is used
// if present.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "config: read %s", path)
		}
		return v, nil
	}

	v.SetConfigName("docsql")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "config: read docsql config")
		}
	}
	return v, nil
}

// LoadWithViper decodes and validates the configuration held by v.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "config: unmarshal")
	}
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads the configuration from path (or the working directory) and the
// environment.
func Load(path string) (*Config, error) {
	v, err := New(path)
	if err != nil {
		return nil, err
	}
	return LoadWithViper(v)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case FormatTable, FormatCSV, FormatJSON:
	default:
		return errors.Newf("config: output.format must be one of table, csv, json; got %q", c.Output.Format)
	}
	return nil
}
