package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type config struct {
	Addr          string    `yaml:"addr"`
	ContentDir    string    `yaml:"content_dir"`
	DataDir       string    `yaml:"data_dir"`
	LogLevel      string    `yaml:"log_level"`
	LogFormat     string    `yaml:"log_format"`
	TLS           tlsConfig `yaml:"tls"`
	MCP           bool      `yaml:"mcp"`
	SearchLog     bool      `yaml:"search_log"`
	CheckInterval string    `yaml:"check_interval"`
	Workers       int       `yaml:"workers"`
}

type tlsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
	HTTP3    bool   `yaml:"http3"`
}

func defaultConfig() config {
	return config{
		Addr:       ":8420",
		ContentDir: "content",
		DataDir:    "data",
		LogLevel:   "info",
		LogFormat:  "text",
		MCP:        true,
		SearchLog:  true,
		Workers:    4,
	}
}

// loadConfig reads the YAML config at path, then .env, then SHOWROOM_*
// environment variables, each layer overriding the previous one. A missing
// config file means defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	// .env is optional and never overrides variables already set.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if _, err := cfg.checkInterval(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *config) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := os.LookupEnv(key)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
		return nil
	}

	str("SHOWROOM_ADDR", &cfg.Addr)
	str("SHOWROOM_CONTENT_DIR", &cfg.ContentDir)
	str("SHOWROOM_DATA_DIR", &cfg.DataDir)
	str("SHOWROOM_LOG_LEVEL", &cfg.LogLevel)
	str("SHOWROOM_LOG_FORMAT", &cfg.LogFormat)
	str("SHOWROOM_TLS_CERT_FILE", &cfg.TLS.CertFile)
	str("SHOWROOM_TLS_KEY_FILE", &cfg.TLS.KeyFile)
	str("SHOWROOM_CHECK_INTERVAL", &cfg.CheckInterval)
	for key, dst := range map[string]*bool{
		"SHOWROOM_TLS":        &cfg.TLS.Enabled,
		"SHOWROOM_HTTP3":      &cfg.TLS.HTTP3,
		"SHOWROOM_MCP":        &cfg.MCP,
		"SHOWROOM_SEARCH_LOG": &cfg.SearchLog,
	} {
		if err := boolean(key, dst); err != nil {
			return err
		}
	}
	if v, ok := os.LookupEnv("SHOWROOM_WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SHOWROOM_WORKERS: %w", err)
		}
		cfg.Workers = n
	}
	return nil
}

// checkInterval parses CheckInterval. Zero disables the source checker.
func (c config) checkInterval() (time.Duration, error) {
	if c.CheckInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.CheckInterval)
	if err != nil {
		return 0, fmt.Errorf("check_interval: %w", err)
	}
	return d, nil
}

func newLogger(cfg config, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
