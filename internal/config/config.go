package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	envSecret     = "JWT_SECRET"
	envBcryptCost = "BCRYPT_ROUNDS"
)

type Server struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Debug   bool   `toml:"debug_mode"`
	Metrics bool   `toml:"metrics"`
	TLSCert string `toml:"tls_cert"`
	TLSKey  string `toml:"tls_key"`
}

func (s Server) TLS() bool {
	return s.TLSCert != "" && s.TLSKey != ""
}

type Auth struct {
	Secret       string   `toml:"secret"`
	Expiration   string   `toml:"token_ttl"`
	BcryptCost   int      `toml:"bcrypt_cost"`
	DefaultRole  string   `toml:"default_role"`
	Roles        []string `toml:"roles"`
	RootUsername string   `toml:"root_username"`
	RootPassword string   `toml:"root_password"`

	TokenTTL time.Duration `toml:"-"`
}

type Postgres struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	DBName   string `toml:"dbname"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	SSLMode  string `toml:"sslmode"`
}

type Storage struct {
	Driver     string   `toml:"driver"`
	SqliteFile string   `toml:"sqlite_file"`
	Postgres   Postgres `toml:"postgres"`
}

type Config struct {
	Server  Server  `toml:"server"`
	Auth    Auth    `toml:"auth"`
	Storage Storage `toml:"storage"`
}

func Default() Config {
	return Config{
		Server: Server{
			Host:    "0.0.0.0",
			Port:    3000,
			Metrics: true,
		},
		Auth: Auth{
			Expiration:   "24h",
			TokenTTL:     24 * time.Hour,
			BcryptCost:   8,
			DefaultRole:  "user",
			Roles:        []string{"admin", "user"},
			RootUsername: "root",
		},
		Storage: Storage{
			Driver:     DriverSqlite,
			SqliteFile: "auth.sqlite",
			Postgres: Postgres{
				Host:    "localhost",
				Port:    5432,
				DBName:  "auth",
				SSLMode: "disable",
			},
		},
	}
}

// New reads the TOML file at path on top of Default, applies environment
// overrides and validates the result. An empty path skips the file.
func New(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if secret := os.Getenv(envSecret); secret != "" {
		cfg.Auth.Secret = secret
	}
	if raw := os.Getenv(envBcryptCost); raw != "" {
		cost, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", envBcryptCost, err)
		}
		cfg.Auth.BcryptCost = cost
	}

	ttl, err := time.ParseDuration(cfg.Auth.Expiration)
	if err != nil {
		return Config{}, fmt.Errorf("token_ttl: %w", err)
	}
	cfg.Auth.TokenTTL = ttl

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var err error
	if c.Auth.Secret == "" {
		err = errors.Join(err, errors.New("auth.secret must be set"))
	}
	if c.Auth.TokenTTL <= 0 {
		err = errors.Join(err, errors.New("auth.token_ttl must be positive"))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		err = errors.Join(err, fmt.Errorf("auth.bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if !contains(c.Auth.Roles, c.Auth.DefaultRole) {
		err = errors.Join(err, fmt.Errorf("auth.default_role %q is not listed in auth.roles", c.Auth.DefaultRole))
	}
	if (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
		err = errors.Join(err, errors.New("server.tls_cert and server.tls_key must be set together"))
	}
	switch c.Storage.Driver {
	case DriverSqlite:
		if c.Storage.SqliteFile == "" {
			err = errors.Join(err, errors.New("storage.sqlite_file must be set"))
		}
	case DriverPostgres:
	default:
		err = errors.Join(err, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}
	return err
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
