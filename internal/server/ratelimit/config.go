package ratelimit

import (
	"strings"
	"time"
)

// ExtractPath is the expensive, model-backed endpoint.
const ExtractPath = "/resume/extract"

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (a trailing "/" enables prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window; 0 means unlimited
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTTL         time.Duration // buckets unused for this long are dropped
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// Settings are the limiter knobs carried by the process configuration.
type Settings struct {
	Enabled         bool
	ExtractPerHour  int
	ExtractBurst    int
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       []string
	Blacklist       []string
}

// LoadConfig builds the limiter configuration from settings. The extraction
// endpoint allows ExtractPerHour requests per client with ExtractBurst burst.
func LoadConfig(settings Settings) *Config {
	if !settings.Enabled {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    settings.DefaultLimit,
		DefaultWindow:   settings.DefaultWindow,
		CleanupInterval: settings.CleanupInterval,
		IdleTTL:         time.Hour,
		Whitelist:       ipSet(settings.Whitelist),
		Blacklist:       ipSet(settings.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(settings.ExtractPerHour, settings.ExtractBurst),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific limits.
// A zero perHour leaves extraction unlimited.
func DefaultEndpointConfigs(perHour, burst int) []EndpointConfig {
	return []EndpointConfig{
		{Path: ExtractPath, Method: "POST", Limit: perHour, Window: time.Hour, Burst: burst},
		{Path: "/extractions", Method: "GET", Limit: 120, Window: time.Minute, Burst: 20},
	}
}

// ipSet turns a list of client addresses into a lookup set.
func ipSet(ips []string) map[string]bool {
	result := make(map[string]bool, len(ips))
	for _, ip := range ips {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
