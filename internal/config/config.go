package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the process configuration. Values come from the environment; the
// network table may be replaced by a YAML file (CONFIG_FILE).
type Config struct {
	Port           string
	Env            string
	StoryAPIKey    string
	StoryAPIBase   string
	PinataGateway  string
	RedisURL       string
	IdempotencyTTL time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	RateLimitTTL   time.Duration
	CORSOrigins    []string

	Networks       []Network
	DefaultNetwork string
}

// File is the on-disk shape of CONFIG_FILE.
type File struct {
	DefaultNetwork string    `yaml:"default_network"`
	Networks       []Network `yaml:"networks"`
}

func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	err = yaml.Unmarshal(data, &f)
	if err != nil {
		return nil, err
	}

	return &f, nil
}

// Load builds a Config from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            strings.ToLower(getEnv("APP_ENV", "development")),
		StoryAPIKey:    strings.TrimSpace(os.Getenv("STORY_API_KEY")),
		StoryAPIBase:   strings.TrimRight(getEnv("STORY_API_BASE", DefaultAPIBase), "/"),
		PinataGateway:  strings.TrimSpace(os.Getenv("PINATA_GATEWAY")),
		RedisURL:       strings.TrimSpace(os.Getenv("REDIS_URL")),
		IdempotencyTTL: time.Duration(getEnvInt("IDEMPOTENCY_TTL_SEC", 60)) * time.Second,
		RateLimitRPS:   getEnvFloat("API_RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvInt("API_RATE_LIMIT_BURST", 20),
		RateLimitTTL:   time.Duration(getEnvInt("API_RATE_LIMIT_TTL_MIN", 15)) * time.Minute,
		CORSOrigins:    splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		Networks:       DefaultNetworks(),
		DefaultNetwork: Mainnet,
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		f, err := LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
		if len(f.Networks) > 0 {
			cfg.Networks = f.Networks
		}
		if f.DefaultNetwork != "" {
			cfg.DefaultNetwork = f.DefaultNetwork
		}
	}

	for i := range cfg.Networks {
		n := &cfg.Networks[i]
		if n.APIBase == "" {
			n.APIBase = cfg.StoryAPIBase
		}
		if rpc := strings.TrimSpace(os.Getenv(rpcEnvKey(n.Label))); rpc != "" {
			n.RPC = rpc
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Networks) == 0 {
		return fmt.Errorf("no networks configured")
	}
	seen := make(map[string]bool, len(c.Networks))
	for _, n := range c.Networks {
		if n.Label == "" {
			return fmt.Errorf("network without label")
		}
		if seen[n.Label] {
			return fmt.Errorf("duplicate network %q", n.Label)
		}
		seen[n.Label] = true
	}
	if !seen[c.DefaultNetwork] {
		return fmt.Errorf("default network %q is not configured", c.DefaultNetwork)
	}
	return nil
}

// Network looks up a network by label ("testnet", "mainnet").
func (c *Config) Network(label string) (Network, bool) {
	for _, n := range c.Networks {
		if n.Label == label {
			return n, true
		}
	}
	return Network{}, false
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, defaultVal int) int {
	if valStr := strings.TrimSpace(os.Getenv(key)); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			return val
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if valStr := strings.TrimSpace(os.Getenv(key)); valStr != "" {
		if val, err := strconv.ParseFloat(valStr, 64); err == nil {
			return val
		}
	}
	return defaultVal
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
