package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"bank-ledger/store"
)

const EnvPrefix = "LEDGER"

// Keys understood by Load. Each can come from a flag, a LEDGER_* variable
// or the config file, in that order of precedence.
const (
	KeyStore          = "store"
	KeySnapshotPath   = "snapshot_path"
	KeyLogLevel       = "log_level"
	KeyLogFormat      = "log_format"
	KeyCurrencySymbol = "currency_symbol"
	KeyEnvFile        = "env_file"
)

const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
)

type Config struct {
	Store          string
	SnapshotPath   string
	LogLevel       string
	LogFormat      string
	CurrencySymbol string
	EnvFile        string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyStore, StoreFile)
	v.SetDefault(KeySnapshotPath, "accounts.json")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyCurrencySymbol, "₹")
	v.SetDefault(KeyEnvFile, ".env")
}

// Load reads configFile (if set) and LEDGER_* environment variables into v
// and returns the resulting Config. Flags bound to v before calling Load
// take precedence over both.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", configFile)
		}
	}

	cfg := &Config{
		Store:          strings.ToLower(strings.TrimSpace(v.GetString(KeyStore))),
		SnapshotPath:   v.GetString(KeySnapshotPath),
		LogLevel:       v.GetString(KeyLogLevel),
		LogFormat:      v.GetString(KeyLogFormat),
		CurrencySymbol: v.GetString(KeyCurrencySymbol),
		EnvFile:        v.GetString(KeyEnvFile),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StorePostgres:
	case StoreFile:
		if c.SnapshotPath == "" {
			return fmt.Errorf("%s must be set when %s=%s", KeySnapshotPath, KeyStore, StoreFile)
		}
	default:
		return fmt.Errorf("unknown %s %q (want %s, %s or %s)", KeyStore, c.Store, StoreMemory, StoreFile, StorePostgres)
	}
	return nil
}

// PostgresEnv is the PostgreSQL connection read from LEDGER_DB_* variables.
type PostgresEnv struct {
	DBHost     string `env:"HOST,required"`          // DBHost represents the database host
	DBPort     int    `env:"PORT" envDefault:"5432"` // DBPort is the database port
	DBName     string `env:"NAME,required"`          // DBName is the database name
	DBUser     string `env:"USER,required"`          // DBUser is the database user used to connect
	DBPassword string `env:"PASSWORD"`               // DBPassword is the database password
	DBSchema   string `env:"SCHEMA"`                 // DBSchema represents the database schema
	Table      string `env:"TABLE" envDefault:"ledger_snapshots"`
	MaxConns   int32  `env:"MAX_CONNS" envDefault:"4"`
}

// LoadPostgres reads the PostgreSQL settings from the environment. envFile,
// when it exists, is loaded first; variables already set win over it.
func LoadPostgres(envFile string) (*store.PostgresConfig, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(err, "load %s", envFile)
		}
	}

	var pg PostgresEnv
	opts := env.Options{Prefix: EnvPrefix + "_DB_"}
	if err := env.ParseWithOptions(&pg, opts); err != nil {
		return nil, errors.Wrap(err, "parse postgres settings")
	}

	return &store.PostgresConfig{
		DBHost:     pg.DBHost,
		DBPort:     pg.DBPort,
		DBName:     pg.DBName,
		DBUser:     pg.DBUser,
		DBPassword: pg.DBPassword,
		DBSchema:   pg.DBSchema,
		Table:      pg.Table,
		MaxConns:   pg.MaxConns,
	}, nil
}
