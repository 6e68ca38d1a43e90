package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
	"github.com/vbonduro/txdao/internal/db"
)

const (
	KeyDBDriver        = "db_driver"
	KeyDBPath          = "db_path"
	KeyDBURL           = "db_url"
	KeyDBMaxOpenConns  = "db_max_open_conns"
	KeyDBReadOnlyHints = "db_read_only_hints"
	KeyLogLevel        = "log_level"
	KeyLogFile         = "log_file"
	KeyLogFormat       = "log_format"
)

type Config struct {
	DBDriver        string `mapstructure:"db_driver"`
	DBPath          string `mapstructure:"db_path"`
	DBURL           string `mapstructure:"db_url"`
	DBMaxOpenConns  int    `mapstructure:"db_max_open_conns"`
	DBReadOnlyHints bool   `mapstructure:"db_read_only_hints"`
	LogLevel        string `mapstructure:"log_level"`
	LogFile         string `mapstructure:"log_file"`
	LogFormat       string `mapstructure:"log_format"`
}

// NewViper returns a viper instance holding the defaults, with every key
// overridable from the environment variable of the same name in upper case.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyDBDriver, "sqlite")
	v.SetDefault(KeyDBPath, "txdao.db")
	v.SetDefault(KeyDBURL, "")
	v.SetDefault(KeyDBMaxOpenConns, 8)
	v.SetDefault(KeyDBReadOnlyHints, true)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyLogFormat, "json")
	v.AutomaticEnv()
	return v
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile layers the file at path, if any, between the defaults and the
// environment.
func LoadFile(path string) (*Config, error) {
	return Read(NewViper(), path)
}

// Read decodes v into a Config after reading the optional file at path.
func Read(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	dialect, err := db.DialectFor(c.DBDriver)
	if err != nil {
		return err
	}
	if dialect == db.Postgres && c.DBURL == "" {
		return errors.New("DB_URL is required for the pgx driver")
	}
	if dialect == db.SQLite && c.DBPath == "" {
		return errors.New("DB_PATH is required for the sqlite driver")
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported log format %q", c.LogFormat)
	}
	return nil
}

// DSN returns the data source name for the configured driver.
func (c *Config) DSN() string {
	if dialect, _ := db.DialectFor(c.DBDriver); dialect == db.Postgres {
		return c.DBURL
	}
	return db.SQLiteDSN(c.DBPath)
}

func (c *Config) DBOptions() db.Options {
	return db.Options{MaxOpenConns: c.DBMaxOpenConns}
}
