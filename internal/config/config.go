package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Hermes   HermesConfig   `yaml:"hermes"`
	Scorer   ScorerConfig   `yaml:"scorer"`
	Sessions SessionsConfig `yaml:"sessions"`
	Weights  WeightDefaults `yaml:"weights"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port              int    `yaml:"port"`
	MetricsPort       int    `yaml:"metrics_port"`
	AdminToken        string `yaml:"admin_token"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

// ScorerConfig points at the external matching service.
type ScorerConfig struct {
	URL       string `yaml:"url"`
	Token     string `yaml:"token"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type SessionsConfig struct {
	IdleTTLMs     int `yaml:"idle_ttl_ms"`
	SweepInterval int `yaml:"sweep_interval_ms"`
	MaxSessions   int `yaml:"max_sessions"`
}

// WeightDefaults seeds every new session's weight sliders.
type WeightDefaults struct {
	Scenario  float64 `yaml:"scenario"`
	TechReq   float64 `yaml:"tech_req"`
	TechStack float64 `yaml:"tech_stack"`
	CitySize  float64 `yaml:"city_size"`
	Budget    float64 `yaml:"budget"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) ScorerTimeout() time.Duration {
	return time.Duration(c.Scorer.TimeoutMs) * time.Millisecond
}

func (c *Config) SessionIdleTTL() time.Duration {
	return time.Duration(c.Sessions.IdleTTLMs) * time.Millisecond
}

func (c *Config) SessionSweepInterval() time.Duration {
	return time.Duration(c.Sessions.SweepInterval) * time.Millisecond
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:              8700,
			MetricsPort:       8701,
			RequestsPerMinute: 120,
		},
		Hermes: HermesConfig{
			URL: "nats://localhost:4222",
		},
		Scorer: ScorerConfig{
			URL:       "http://localhost:8000",
			TimeoutMs: 30000,
		},
		Sessions: SessionsConfig{
			IdleTTLMs:     1800000,
			SweepInterval: 60000,
			MaxSessions:   1000,
		},
		Weights: WeightDefaults{
			Scenario:  0.2,
			TechReq:   0.2,
			TechStack: 0.2,
			CitySize:  0.2,
			Budget:    0.2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ADVISOR_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("ADVISOR_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("ADVISOR_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("ADVISOR_REQUESTS_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RequestsPerMinute = n
		}
	}
	if v := os.Getenv("ADVISOR_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("ADVISOR_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("ADVISOR_SCORER_URL"); v != "" {
		cfg.Scorer.URL = v
	}
	if v := os.Getenv("ADVISOR_SCORER_TOKEN"); v != "" {
		cfg.Scorer.Token = v
	}
	if v := os.Getenv("ADVISOR_SCORER_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scorer.TimeoutMs = n
		}
	}
	if v := os.Getenv("ADVISOR_SESSION_TTL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sessions.IdleTTLMs = n
		}
	}
	if v := os.Getenv("ADVISOR_MAX_SESSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sessions.MaxSessions = n
		}
	}
	if v := os.Getenv("ADVISOR_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ADVISOR_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
