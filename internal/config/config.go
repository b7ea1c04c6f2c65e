package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"stress-quiz/internal/domain"
	"stress-quiz/internal/engine"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Dataset struct {
		// Source pins the loader: postgres, sqlite, http or file. Empty picks the first configured.
		Source string `yaml:"source"`
		Dir    string `yaml:"dir"`
		URL    string `yaml:"url"`
		TTL    string `yaml:"ttl"`
	} `yaml:"dataset"`
	Engine Engine `yaml:"engine"`
	Log    struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Engine overrides the built-in mode profile. Zero values keep the profile's.
// Course only applies to Mode when Mode is set.
type Engine struct {
	Mode              string   `yaml:"mode"`
	Course            string   `yaml:"course"`
	TotalRounds       int      `yaml:"totalRounds"`
	Curveballs        *int     `yaml:"curveballs"`
	Tick              string   `yaml:"tick"`
	StressProbability *float64 `yaml:"stressProbability"`
	ReasonTimeout     string   `yaml:"reasonTimeout"`
	Seed              int64    `yaml:"seed"`
}

// Default is the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Dataset.Dir = "data"
	cfg.Dataset.TTL = "10m"
	cfg.Redis.TTL = "30m"
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	return cfg
}

// Load reads YAML config from path over the defaults, then applies environment
// overrides (a .env file is honoured). A missing config file is not an error.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setFromEnv(&c.Postgres.URL, "DATABASE_URL")
	setFromEnv(&c.Redis.Addr, "REDIS_ADDR")
	setFromEnv(&c.Redis.Password, "REDIS_PASSWORD")
	setFromEnv(&c.SQLite.Path, "SQLITE_PATH")
	setFromEnv(&c.Dataset.Source, "DATASET_SOURCE")
	setFromEnv(&c.Dataset.Dir, "DATASET_DIR")
	setFromEnv(&c.Dataset.URL, "DATASET_URL")
	setFromEnv(&c.Log.Level, "LOG_LEVEL")
	setFromEnv(&c.Log.Format, "LOG_FORMAT")
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Settings builds engine settings for mode, applying the overrides.
func (e Engine) Settings(mode domain.Mode) engine.Settings {
	s := engine.ProfileFor(mode)
	if e.TotalRounds > 0 {
		s.TotalRounds = e.TotalRounds
	}
	if e.Curveballs != nil {
		s.Curveballs = *e.Curveballs
	}
	s.TickInterval = Duration(e.Tick, s.TickInterval)
	if e.StressProbability != nil {
		s.Stress.Probability = *e.StressProbability
	}
	s.ReasonTimeout = Duration(e.ReasonTimeout, s.ReasonTimeout)
	if e.Course != "" && (e.Mode == "" || e.Mode == string(mode)) {
		s.DefaultCourse = e.Course
	}
	return s
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// Duration is TTLDuration for non-TTL settings; negative values fall back too.
func Duration(raw string, fallback time.Duration) time.Duration {
	d := TTLDuration(raw, fallback)
	if d < 0 {
		return fallback
	}
	return d
}
