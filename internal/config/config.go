package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config holds all runtime settings for the onboarding service
type Config struct {
	Port              string         `yaml:"port"`
	Environment       string         `yaml:"environment"`
	StoreDriver       string         `yaml:"store_driver"`
	SessionCollection string         `yaml:"session_collection"`
	ViewsDir          string         `yaml:"views_dir"`
	SeedFile          string         `yaml:"seed_file"`
	GalleryLimit      int            `yaml:"gallery_limit"`
	Postgres          PostgresConfig `yaml:"postgres"`
	Mongo             MongoConfig    `yaml:"mongo"`
	Redis             RedisConfig    `yaml:"redis"`
	Log               LogConfig      `yaml:"log"`
}

// PostgresConfig holds the postgres connection settings
type PostgresConfig struct {
	User                   string `yaml:"user"`
	Password               string `yaml:"password"`
	Name                   string `yaml:"name"`
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	SocketDir              string `yaml:"socket_dir"`
	InstanceConnectionName string `yaml:"instance_connection_name"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Port:              "8080",
		Environment:       "development",
		StoreDriver:       "postgres",
		SessionCollection: "dev",
		GalleryLimit:      50,
		Postgres: PostgresConfig{
			User:      "postgres",
			Name:      "onboarding",
			Host:      "localhost",
			Port:      5432,
			SocketDir: "/cloudsql",
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "mocap",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadDotEnv loads .env files for local development. Production (Cloud Run)
// is detected by INSTANCE_CONNECTION_NAME and relies on the real environment.
func LoadDotEnv() string {
	if os.Getenv("INSTANCE_CONNECTION_NAME") != "" {
		return ""
	}
	for _, path := range []string{".env", "environments/.env.development"} {
		if err := godotenv.Load(path); err == nil {
			return path
		}
	}
	return ""
}

// Load builds the configuration: defaults, then the optional YAML file named
// by CONFIG_FILE, then environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.Environment, "APP_ENV")
	setString(&c.StoreDriver, "STORE_DRIVER")
	setString(&c.SessionCollection, "SESSION_COLLECTION")
	setString(&c.ViewsDir, "VIEWS_DIR")
	setString(&c.SeedFile, "SEED_FILE")

	setString(&c.Postgres.User, "DB_USER")
	setString(&c.Postgres.Password, "DB_PASS")
	setString(&c.Postgres.Name, "DB_NAME")
	setString(&c.Postgres.Host, "DB_HOST")
	setString(&c.Postgres.InstanceConnectionName, "INSTANCE_CONNECTION_NAME")

	setString(&c.Mongo.URI, "MONGO_URI")
	setString(&c.Mongo.Database, "MONGO_DATABASE")
	setString(&c.Redis.URL, "REDIS_URL")
	setString(&c.Log.Level, "LOG_LEVEL")

	if err := setInt(&c.Postgres.Port, "DB_PORT"); err != nil {
		return err
	}
	if err := setInt(&c.GalleryLimit, "GALLERY_LIMIT"); err != nil {
		return err
	}
	if err := setBool(&c.Log.Pretty, "LOG_PRETTY"); err != nil {
		return err
	}

	// Kept from the first deployments, which only knew memory vs postgres
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		c.StoreDriver = "memory"
	}

	c.StoreDriver = strings.ToLower(c.StoreDriver)
	return nil
}

// Validate checks that the selected store driver has what it needs
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.SessionCollection == "" {
		return fmt.Errorf("session collection is required")
	}
	if c.GalleryLimit < 0 {
		return fmt.Errorf("gallery limit must not be negative")
	}

	switch c.StoreDriver {
	case "memory":
	case "postgres":
		if c.Postgres.Name == "" {
			return fmt.Errorf("DB_NAME is required for the postgres store")
		}
	case "mongo":
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			return fmt.Errorf("MONGO_URI and MONGO_DATABASE are required for the mongo store")
		}
	case "redis":
		if c.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	return nil
}

// IsProduction reports whether the service runs on Cloud Run
func (c *Config) IsProduction() bool {
	return c.Postgres.InstanceConnectionName != "" || c.Environment == "production"
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}
