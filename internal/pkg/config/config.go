package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

type Config struct {
	Storage Storage  `yaml:"storage"`
	Redis   Redis    `yaml:"redis"`
	Auth    Auth     `yaml:"auth"`
	Office  Office   `yaml:"office"`
	Origins []string `yaml:"allowed_origins"`
}

type Storage struct {
	Driver     string `yaml:"driver"`
	Dir        string `yaml:"dir"`
	DBUsername string `yaml:"db_username"`
	DBPassword string `yaml:"db_password"`
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"port"`
	DBName     string `yaml:"db_name"`
	DisableTLS bool   `yaml:"disable_tls"`
	Debug      bool   `yaml:"debug"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Auth struct {
	JWTKey        string        `yaml:"jwt_key"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
	SessionDriver string        `yaml:"session_driver"`
	HashPasswords bool          `yaml:"hash_passwords"`
}

// Office describes the optional geofence. A zero radius disables it.
type Office struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Radius    float64 `yaml:"radius"`
}

// NewConfig reads and validates the yaml file at path.
func NewConfig(path string) (*Config, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}

	return Parse(yamlFile)
}

// Parse decodes yaml, fills defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var c Config

	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}

	c.setDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Config) setDefaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverFile
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "./data"
	}
	if c.Storage.DBPort == "" {
		c.Storage.DBPort = "5432"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 12 * time.Hour
	}
	if c.Auth.SessionDriver == "" {
		c.Auth.SessionDriver = DriverMemory
	}
}

// Validate checks the settings each selected driver depends on.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverFile, DriverRedis:
	case DriverPostgres:
		if c.Storage.DBUsername == "" || c.Storage.DBPassword == "" || c.Storage.DBHost == "" || c.Storage.DBName == "" {
			return errors.New("missing required database configuration")
		}
	default:
		return errors.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Auth.SessionDriver {
	case DriverMemory, DriverRedis:
	default:
		return errors.Errorf("unknown session driver %q", c.Auth.SessionDriver)
	}

	if c.Auth.JWTKey == "" {
		return errors.New("missing required auth configuration: jwt_key")
	}

	if c.Office.Radius < 0 {
		return errors.New("office radius must not be negative")
	}

	return nil
}
