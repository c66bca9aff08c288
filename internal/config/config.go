// Package config loads process configuration from the environment and flags.
//
// The MySQL variables keep the names used by the docker-compose setup
// (MYSQLHOST, MYSQLUSER, ...) and PORT selects the public listen port.
// Everything else is prefixed with DATACYCLE_.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/go-viper/mapstructure/v2"
	"github.com/maloquacious/datacycle/internal/store"
	"github.com/maloquacious/datacycle/internal/store/sqlstore"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultPort            = 5000
	DefaultAdminPort       = 8383
	DefaultMySQLPort       = 3306
	DefaultDriver          = "mysql"
	DefaultShutdownTimeout = 15 * time.Second
	DefaultServerURL       = "http://localhost:5000"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Client   ClientConfig   `mapstructure:"client"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	PoolSize int    `mapstructure:"pool_size"`
}

type MySQLConfig struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	Port     int    `mapstructure:"port"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	AdminPort       int           `mapstructure:"admin_port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type ClientConfig struct {
	Server string `mapstructure:"server"`
}

// binding ties a config key to its environment variable and default.
type binding struct {
	key string
	env string
	def any
}

var bindings = []binding{
	{"database.driver", "DATACYCLE_DRIVER", DefaultDriver},
	{"database.pool_size", "DATACYCLE_POOL_SIZE", sqlstore.DefaultPoolSize},
	{"mysql.host", "MYSQLHOST", "localhost"},
	{"mysql.user", "MYSQLUSER", ""},
	{"mysql.password", "MYSQLPASSWORD", ""},
	{"mysql.database", "MYSQLDATABASE", ""},
	{"mysql.port", "MYSQLPORT", DefaultMySQLPort},
	{"sqlite.path", "DATACYCLE_SQLITE_PATH", store.DefaultSQLitePath},
	{"server.port", "PORT", DefaultPort},
	{"server.admin_port", "DATACYCLE_ADMIN_PORT", DefaultAdminPort},
	{"server.shutdown_timeout", "DATACYCLE_SHUTDOWN_TIMEOUT", DefaultShutdownTimeout},
	{"log.level", "DATACYCLE_LOG_LEVEL", "info"},
	{"client.server", "DATACYCLE_SERVER", DefaultServerURL},
}

// FlagKeys maps command-line flag names to config keys.
// Flags that are set explicitly take precedence over the environment.
var FlagKeys = map[string]string{
	"driver":           "database.driver",
	"pool-size":        "database.pool_size",
	"sqlite-path":      "sqlite.path",
	"port":             "server.port",
	"admin-port":       "server.admin_port",
	"shutdown-timeout": "server.shutdown_timeout",
	"log-level":        "log.level",
	"server":           "client.server",
}

// Load reads configuration from the environment, overridden by any flags in
// flags that appear in FlagKeys. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	for _, b := range bindings {
		if err := v.BindEnv(b.key, b.env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", b.env, err)
		}
		v.SetDefault(b.key, b.def)
	}

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag --%s: %w", name, err)
				}
			}
		}
	}

	decodeHooks := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	)

	cfg := &Config{}
	if err := v.Unmarshal(cfg, viper.DecodeHook(decodeHooks)); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later and less clearly.
func (c *Config) Validate() error {
	if _, err := sqlstore.DialectFor(c.Database.Driver); err != nil {
		return err
	}
	if c.Database.PoolSize <= 0 {
		return errors.New("pool size must be positive")
	}
	if err := validPort("server port", c.Server.Port); err != nil {
		return err
	}
	if err := validPort("admin port", c.Server.AdminPort); err != nil {
		return err
	}
	switch c.Database.Driver {
	case sqlstore.MySQL.Name:
		if c.MySQL.Host == "" {
			return errors.New("mysql host is required (set MYSQLHOST)")
		}
		if err := validPort("mysql port", c.MySQL.Port); err != nil {
			return err
		}
	case sqlstore.SQLite.Name:
		if c.SQLite.Path == "" {
			return errors.New("sqlite path is required")
		}
	}
	return nil
}

func validPort(name string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s %d out of range", name, port)
	}
	return nil
}

// DSN returns the data source name for the configured driver.
func (c *Config) DSN() string {
	if c.Database.Driver == sqlstore.SQLite.Name {
		return c.SQLite.Path
	}
	mc := mysql.NewConfig()
	mc.User = c.MySQL.User
	mc.Passwd = c.MySQL.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.MySQL.Host, strconv.Itoa(c.MySQL.Port))
	mc.DBName = c.MySQL.Database
	return mc.FormatDSN()
}

// StoreOptions builds the options for sqlstore.New.
func (c *Config) StoreOptions() (sqlstore.Options, error) {
	dialect, err := sqlstore.DialectFor(c.Database.Driver)
	if err != nil {
		return sqlstore.Options{}, err
	}
	return sqlstore.Options{
		Dialect:  dialect,
		DSN:      c.DSN(),
		PoolSize: c.Database.PoolSize,
	}, nil
}
