// Package config provides configuration loading and validation for the
// resume parser server and CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Deployment environments
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Defaults
const (
	DefaultPort             = 8000
	DefaultMaxUploadBytes   = 10 << 20
	DefaultRateLimitPerHour = 30
	DefaultRateLimitBurst   = 5
	DefaultRateLimit        = 600
	DefaultRateLimitWindow  = time.Minute
	DefaultRateLimitCleanup = 5 * time.Minute
)

// Config is the process configuration. It is built once at startup by Load
// and passed to the components that need it.
type Config struct {
	APIKey             string   `json:"api_key,omitempty" validate:"required"`
	Env                string   `json:"env,omitempty" validate:"oneof=development production"`
	Port               int      `json:"port,omitempty" validate:"min=1,max=65535"`
	UploadDir          string   `json:"upload_dir,omitempty"`
	CORSAllowedOrigins []string `json:"cors_allowed_origins,omitempty" validate:"required_if=Env production,dive,url"`
	DatabaseURL        string   `json:"database_url,omitempty" validate:"omitempty,url"`
	LLMModel           string   `json:"llm_model,omitempty"`
	MaxUploadBytes     int64    `json:"max_upload_bytes,omitempty" validate:"gt=0"`
	RateLimitPerHour   int      `json:"rate_limit_per_hour,omitempty" validate:"gte=0"`
	RateLimitBurst     int      `json:"rate_limit_burst,omitempty" validate:"gte=0"`
	Verbose            bool     `json:"verbose,omitempty"`

	// Limits for endpoints without a specific rule, and limiter housekeeping
	RateLimitDisabled        bool          `json:"rate_limit_disabled,omitempty"`
	RateLimitDefault         int           `json:"rate_limit_default,omitempty" validate:"gte=0"`
	RateLimitDefaultWindow   time.Duration `json:"rate_limit_default_window,omitempty" validate:"gte=0"`
	RateLimitCleanupInterval time.Duration `json:"rate_limit_cleanup_interval,omitempty" validate:"gte=0"`
	RateLimitWhitelist       []string      `json:"rate_limit_whitelist,omitempty" validate:"dive,ip"`
	RateLimitBlacklist       []string      `json:"rate_limit_blacklist,omitempty" validate:"dive,ip"`
}

// Default returns a Config with every optional field set to its default.
func Default() Config {
	return Config{
		Env:              EnvDevelopment,
		Port:             DefaultPort,
		MaxUploadBytes:   DefaultMaxUploadBytes,
		RateLimitPerHour: DefaultRateLimitPerHour,
		RateLimitBurst:   DefaultRateLimitBurst,

		RateLimitDefault:         DefaultRateLimit,
		RateLimitDefaultWindow:   DefaultRateLimitWindow,
		RateLimitCleanupInterval: DefaultRateLimitCleanup,
	}
}

// IsProduction reports whether the production CORS policy applies.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load builds the configuration from defaults, an optional JSON file and the
// environment, in that order of precedence, then validates it.
// A missing API key is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Env == "" {
		result.Env = defaults.Env
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.UploadDir == "" {
		result.UploadDir = defaults.UploadDir
	}
	if len(result.CORSAllowedOrigins) == 0 {
		result.CORSAllowedOrigins = defaults.CORSAllowedOrigins
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.LLMModel == "" {
		result.LLMModel = defaults.LLMModel
	}
	if result.MaxUploadBytes == 0 {
		result.MaxUploadBytes = defaults.MaxUploadBytes
	}
	if result.RateLimitPerHour == 0 {
		result.RateLimitPerHour = defaults.RateLimitPerHour
	}
	if result.RateLimitBurst == 0 {
		result.RateLimitBurst = defaults.RateLimitBurst
	}

	if result.RateLimitDefault == 0 {
		result.RateLimitDefault = defaults.RateLimitDefault
	}
	if result.RateLimitDefaultWindow == 0 {
		result.RateLimitDefaultWindow = defaults.RateLimitDefaultWindow
	}
	if result.RateLimitCleanupInterval == 0 {
		result.RateLimitCleanupInterval = defaults.RateLimitCleanupInterval
	}
	if len(result.RateLimitWhitelist) == 0 {
		result.RateLimitWhitelist = defaults.RateLimitWhitelist
	}
	if len(result.RateLimitBlacklist) == 0 {
		result.RateLimitBlacklist = defaults.RateLimitBlacklist
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge

	return result
}

// applyEnv overrides fields with any environment variables that are set.
// GEMINI_API_KEY wins over GOOGLE_API_KEY.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("GOOGLE_API_KEY"); ok {
		c.APIKey = v
	}
	if v, ok := get("GEMINI_API_KEY"); ok {
		c.APIKey = v
	}
	if v, ok := get("ENV"); ok {
		c.Env = strings.ToLower(v)
	}
	if v, ok := get("UPLOAD_DIR"); ok {
		c.UploadDir = v
	}
	if v, ok := get("CORS_ALLOWED_ORIGINS"); ok {
		c.CORSAllowedOrigins = SplitOrigins(v)
	}
	if v, ok := get("DATABASE_URL"); ok {
		c.DatabaseURL = v
	}
	if v, ok := get("LLM_MODEL"); ok {
		c.LLMModel = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"PORT", &c.Port},
		{"RATE_LIMIT_PER_HOUR", &c.RateLimitPerHour},
		{"RATE_LIMIT_BURST", &c.RateLimitBurst},
		{"RATE_LIMIT_DEFAULT_LIMIT", &c.RateLimitDefault},
	}
	for _, field := range ints {
		if v, ok := get(field.key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("config error: %s must be an integer, got %q", field.key, v)
			}
			*field.dst = n
		}
	}

	if v, ok := get("MAX_UPLOAD_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config error: MAX_UPLOAD_BYTES must be an integer, got %q", v)
		}
		c.MaxUploadBytes = n
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"RATE_LIMIT_DEFAULT_WINDOW", &c.RateLimitDefaultWindow},
		{"RATE_LIMIT_CLEANUP_INTERVAL", &c.RateLimitCleanupInterval},
	}
	for _, field := range durations {
		if v, ok := get(field.key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("config error: %s must be a duration, got %q", field.key, v)
			}
			*field.dst = d
		}
	}

	if v, ok := get("RATE_LIMIT_ENABLED"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config error: RATE_LIMIT_ENABLED must be a boolean, got %q", v)
		}
		c.RateLimitDisabled = !enabled
	}
	if v, ok := get("RATE_LIMIT_WHITELIST"); ok {
		c.RateLimitWhitelist = splitList(v)
	}
	if v, ok := get("RATE_LIMIT_BLACKLIST"); ok {
		c.RateLimitBlacklist = splitList(v)
	}

	return nil
}

// SplitOrigins parses a comma-separated origin list.
func SplitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, strings.TrimSuffix(o, "/"))
		}
	}
	return origins
}

// splitList parses a comma-separated list, dropping blank entries.
func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// envNames maps struct fields to the environment variable users set.
var envNames = map[string]string{
	"APIKey":             "GEMINI_API_KEY",
	"Env":                "ENV",
	"Port":               "PORT",
	"CORSAllowedOrigins": "CORS_ALLOWED_ORIGINS",
	"DatabaseURL":        "DATABASE_URL",
	"MaxUploadBytes":     "MAX_UPLOAD_BYTES",
	"RateLimitPerHour":   "RATE_LIMIT_PER_HOUR",
	"RateLimitBurst":     "RATE_LIMIT_BURST",

	"RateLimitDefault":         "RATE_LIMIT_DEFAULT_LIMIT",
	"RateLimitDefaultWindow":   "RATE_LIMIT_DEFAULT_WINDOW",
	"RateLimitCleanupInterval": "RATE_LIMIT_CLEANUP_INTERVAL",
	"RateLimitWhitelist":       "RATE_LIMIT_WHITELIST",
	"RateLimitBlacklist":       "RATE_LIMIT_BLACKLIST",
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("config error: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		name := fe.StructField()
		// dive errors name the element, e.g. RateLimitWhitelist[1]
		if i := strings.IndexByte(name, '['); i >= 0 {
			name = name[:i]
		}
		if env, ok := envNames[name]; ok {
			name = env
		}
		switch fe.Tag() {
		case "required", "required_if":
			msgs = append(msgs, fmt.Sprintf("%s is required", name))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", name, fe.Param(), fe.Value()))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid URL, got %q", name, fe.Value()))
		case "ip":
			msgs = append(msgs, fmt.Sprintf("%s must contain IP addresses, got %q", name, fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", name, fe.Tag(), fe.Param()))
		}
	}
	return fmt.Errorf("config error: %s", strings.Join(msgs, "; "))
}
