package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	DB         DBConfig         `yaml:"db"`
	Log        LogConfig        `yaml:"log"`
	Transport  TransportConfig  `yaml:"transport"`
	Showcaller ShowcallerConfig `yaml:"showcaller"`
	Guard      GuardConfig      `yaml:"guard"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// Tenant scopes all data this server instance serves.
	Tenant string `yaml:"tenant"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type TransportConfig struct {
	// Mode is "stdio" or "http".
	Mode string `yaml:"mode"`
}

type ShowcallerConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	// Tolerance is the on-time window for schedule adherence.
	Tolerance time.Duration `yaml:"tolerance"`
}

type GuardConfig struct {
	ProtectionWindow time.Duration `yaml:"protection_window"`
	GraceInterval    time.Duration `yaml:"grace_interval"`
	AmbiguityWindow  time.Duration `yaml:"ambiguity_window"`
	MaxTrackedFields int           `yaml:"max_tracked_fields"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:   "0.0.0.0",
			Port:   8080,
			Tenant: "default",
		},
		DB: DBConfig{
			Path: "cuer.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: "stdio",
		},
		Showcaller: ShowcallerConfig{
			TickInterval: time.Second,
			Tolerance:    5 * time.Second,
		},
		Guard: GuardConfig{
			ProtectionWindow: 3 * time.Second,
			GraceInterval:    2 * time.Second,
			AmbiguityWindow:  2 * time.Second,
			MaxTrackedFields: 64,
		},
	}

	if path := os.Getenv("CUER_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("CUER_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("CUER_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CUER_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if tenant := os.Getenv("CUER_TENANT"); tenant != "" {
		cfg.Server.Tenant = tenant
	}
	if dbPath := os.Getenv("CUER_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("CUER_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if mode := os.Getenv("CUER_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if tol := os.Getenv("CUER_SHOWCALLER_TOLERANCE"); tol != "" {
		d, err := time.ParseDuration(tol)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CUER_SHOWCALLER_TOLERANCE: %w", err)
		}
		cfg.Showcaller.Tolerance = d
	}

	if cfg.Transport.Mode != "stdio" && cfg.Transport.Mode != "http" {
		return Config{}, fmt.Errorf("invalid transport mode %q", cfg.Transport.Mode)
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
