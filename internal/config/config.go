package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration. It is loaded once at startup
// and passed explicitly into constructors; there is no global settings value.
type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Build    BuildConfig    `yaml:"build"`
	Site     SiteConfig     `yaml:"site"`
	Redis    RedisConfig    `yaml:"redis"`
	S3       S3Config       `yaml:"s3"`
	CORS     CORSConfig     `yaml:"cors"`
}

// AppConfig core process settings
type AppConfig struct {
	Env    string `yaml:"env"`
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

// DatabaseConfig embedded sqlite database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// BuildConfig build engine settings
type BuildConfig struct {
	// Workers bounds concurrent scanning/rendering within one build run.
	Workers   int    `yaml:"workers"`
	OutputDir string `yaml:"output_dir"`
}

// SiteConfig generated site identity
type SiteConfig struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Authors string `yaml:"authors"`
}

// RedisConfig optional resolve-cache settings
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// S3Config optional artifact sync target (S3/R2/MinIO compatible)
type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Bucket          string `yaml:"bucket"`
	BasePath        string `yaml:"base_path"`
	ForcePathStyle  bool   `yaml:"force_path_style"`
}

// CORSConfig API CORS settings
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Load reads the YAML config file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if cfg.Build.Workers < 1 {
		cfg.Build.Workers = 4
	}
	if cfg.Build.OutputDir == "" {
		return nil, fmt.Errorf("config: build.output_dir is required")
	}
	if cfg.Database.Path == "" {
		return nil, fmt.Errorf("config: database.path is required")
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		App: AppConfig{
			Env:  "local",
			Port: 8082,
		},
		Build: BuildConfig{
			Workers: 4,
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			PoolSize: 10,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.App.Env = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = p
		}
	}
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.App.APIKey = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("BUILD_OUTPUT_DIR"); v != "" {
		cfg.Build.OutputDir = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("S3_ACCESS_KEY_ID"); v != "" {
		cfg.S3.AccessKeyID = v
	}
	if v := os.Getenv("S3_SECRET_ACCESS_KEY"); v != "" {
		cfg.S3.SecretAccessKey = v
	}
}
