package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	Env     string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP    HTTPConfig    `yaml:"http"`
	Storage StorageConfig `yaml:"storage"`
	Likes   LikesConfig   `yaml:"likes"`
	Redis   RedisConf     `yaml:"redis"`
	Listing ListingConfig `yaml:"listing"`
	Author  AuthorConfig  `yaml:"author"`
}

type HTTPConfig struct {
	Host           string        `yaml:"host" env:"HTTP_HOST"`
	Port           string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env-default:"5s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env-default:"10s"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" env-separator:","`
}

type StorageConfig struct {
	Backend      string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"memory"`
	DSN          string `yaml:"dsn" env:"STORAGE_DSN"`
	SnapshotPath string `yaml:"snapshot_path" env:"STORAGE_SNAPSHOT_PATH"`
	Seed         bool   `yaml:"seed" env:"STORAGE_SEED" env-default:"true"`
	SeedSize     int    `yaml:"seed_size" env-default:"50"`
}

type LikesConfig struct {
	Backend string `yaml:"backend" env:"LIKES_BACKEND" env-default:"memory"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redispassword" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB"`
}

type ListingConfig struct {
	DefaultLimit     int           `yaml:"default_limit" env-default:"12"`
	MaxLimit         int           `yaml:"max_limit" env-default:"100"`
	SimulatedLatency time.Duration `yaml:"simulated_latency" env:"LISTING_SIMULATED_LATENCY" env-default:"0s"`
}

type AuthorConfig struct {
	ID     string `yaml:"id" env-default:"current-user"`
	Name   string `yaml:"name" env-default:"Current User"`
	Avatar string `yaml:"avatar" env-default:"https://i.pravatar.cc/100?img=1"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	// a missing .env is fine, real env vars still apply
	_ = godotenv.Load()

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	if err := cfg.Validate(); err != nil {
		panic("invalid config: " + err.Error())
	}

	return &cfg
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the %s backend", BackendPostgres)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	switch c.Likes.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("unknown likes backend %q", c.Likes.Backend)
	}

	if c.Listing.DefaultLimit < 1 {
		return fmt.Errorf("listing.default_limit must be positive")
	}
	if c.Listing.MaxLimit < c.Listing.DefaultLimit {
		return fmt.Errorf("listing.max_limit must not be below listing.default_limit")
	}

	return nil
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
