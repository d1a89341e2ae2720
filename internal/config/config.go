// Package config loads the orchestrator's immutable runtime configuration.
// The dependency graph, weight table and penalty knobs are validated once
// at startup and never mutated afterwards; there are no process-wide
// mutable singletons — the loaded Config is passed explicitly into the
// components that need it.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/scoring"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/sources"
)

// Config is the full orchestrator configuration.
type Config struct {
	Server struct {
		Addr        string `mapstructure:"addr"`
		MetricsAddr string `mapstructure:"metrics_addr"`
	} `mapstructure:"server"`

	Temporal struct {
		HostPort  string `mapstructure:"host_port"`
		Namespace string `mapstructure:"namespace"`
		TaskQueue string `mapstructure:"task_queue"`
	} `mapstructure:"temporal"`

	Orchestration struct {
		// GlobalDeadline bounds one full analysis run; pending agents at
		// the deadline are force-failed into fallback.
		GlobalDeadline time.Duration `mapstructure:"global_deadline"`
		// DefaultAgentTimeout applies where no per-agent override exists.
		DefaultAgentTimeout time.Duration            `mapstructure:"default_agent_timeout"`
		AgentTimeouts       map[string]time.Duration `mapstructure:"agent_timeouts"`
	} `mapstructure:"orchestration"`

	Scoring struct {
		Weights scoring.Weights `mapstructure:"weights"`
		Penalty scoring.Penalty `mapstructure:"penalty"`
	} `mapstructure:"scoring"`

	Sources struct {
		Endpoints sources.Endpoints `mapstructure:"endpoints"`
		RateRPM   map[string]int    `mapstructure:"rate_rpm"`
	} `mapstructure:"sources"`

	Webhook struct {
		URL     string        `mapstructure:"url"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"webhook"`

	Redis struct {
		Addr     string        `mapstructure:"addr"`
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"redis"`

	Postgres struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Database string `mapstructure:"database"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"postgres"`
}

// Load reads the config file from CONFIG_PATH (default
// ./config/analysis.yaml), applies env overrides with the ANALYSIS prefix,
// and validates the result.
func Load() (*Config, *viper.Viper, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/analysis.yaml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("ANALYSIS")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Weight maps merge badly with viper defaults, so an absent table gets
	// the shipped one here instead of via SetDefault.
	if len(cfg.Scoring.Weights) == 0 {
		cfg.Scoring.Weights = scoring.DefaultWeights()
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return &cfg, v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.metrics_addr", ":9090")
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "analysis")
	v.SetDefault("orchestration.global_deadline", "120s")
	v.SetDefault("orchestration.default_agent_timeout", "15s")
	v.SetDefault("webhook.timeout", "10s")
	v.SetDefault("scoring.penalty.per_signal", 2.0)
	v.SetDefault("scoring.penalty.cap", 20.0)
	v.SetDefault("redis.cache_ttl", "15m")
	v.SetDefault("postgres.sslmode", "disable")
	ep := sources.DefaultEndpoints()
	v.SetDefault("sources.endpoints.clinical_trials", ep.ClinicalTrials)
	v.SetDefault("sources.endpoints.europe_pmc", ep.EuropePMC)
	v.SetDefault("sources.endpoints.patents_view", ep.PatentsView)
	v.SetDefault("sources.endpoints.open_fda", ep.OpenFDA)
}

// Validate enforces the startup invariants that are checkable without the
// agent registry: weight table sums to 1.0, penalty bounded, timeouts
// below the global deadline. Graph validation happens in the planner once
// the registry exists.
func (c *Config) Validate() error {
	if err := scoring.ValidateWeights(c.Scoring.Weights); err != nil {
		return err
	}
	if c.Scoring.Penalty.PerSignal < 0 || c.Scoring.Penalty.Cap < 0 {
		return fmt.Errorf("scoring penalty: negative per_signal or cap")
	}
	if c.Orchestration.GlobalDeadline <= 0 {
		return fmt.Errorf("orchestration: global_deadline must be positive")
	}
	if c.Orchestration.DefaultAgentTimeout <= 0 {
		return fmt.Errorf("orchestration: default_agent_timeout must be positive")
	}
	if c.Orchestration.DefaultAgentTimeout >= c.Orchestration.GlobalDeadline {
		return fmt.Errorf("orchestration: default agent timeout %s must stay below the global deadline %s",
			c.Orchestration.DefaultAgentTimeout, c.Orchestration.GlobalDeadline)
	}
	for name, d := range c.Orchestration.AgentTimeouts {
		if d <= 0 {
			return fmt.Errorf("orchestration: agent %q timeout must be positive", name)
		}
		if d >= c.Orchestration.GlobalDeadline {
			return fmt.Errorf("orchestration: agent %q timeout %s must stay below the global deadline %s",
				name, d, c.Orchestration.GlobalDeadline)
		}
	}
	if c.Webhook.Timeout <= 0 {
		return fmt.Errorf("webhook: timeout must be positive")
	}
	return nil
}
