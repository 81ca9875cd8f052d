package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingAPIKey is returned when a real provider is selected without a key.
var ErrMissingAPIKey = errors.New("config: API key is not set (API_KEY, GEMINI_API_KEY or OPENAI_API_KEY)")

type Config struct {
	Port     string `yaml:"port" validate:"required"`
	Env      string `yaml:"env" validate:"required"`
	LogLevel string `yaml:"log_level" validate:"oneof=trace debug info warn error"`
	// CORSOrigins restricts browser origins. Empty allows all.
	CORSOrigins []string       `yaml:"cors_origins" validate:"dive,url"`
	LLM         LLMConfig      `yaml:"llm"`
	Session     SessionConfig  `yaml:"session"`
	Sandbox     SandboxConfig  `yaml:"sandbox"`
	Artifact    ArtifactConfig `yaml:"artifact"`
	Usage       UsageConfig    `yaml:"usage"`
}

type LLMConfig struct {
	Provider string        `yaml:"provider" validate:"oneof=gemini openai fake"`
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	BaseURL  string        `yaml:"base_url" validate:"omitempty,url"`
	RPS      float64       `yaml:"rps" validate:"gte=0"`
	Burst    int           `yaml:"burst" validate:"gte=0"`
	Timeout  time.Duration `yaml:"timeout" validate:"gte=0"`
}

type SessionConfig struct {
	TTL time.Duration `yaml:"ttl" validate:"gt=0"`
	Max int           `yaml:"max" validate:"gt=0"`
}

type SandboxConfig struct {
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

type ArtifactConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// CanUseS3 reports whether the S3 export store has everything it needs.
// Otherwise exports stay in memory.
func (a ArtifactConfig) CanUseS3() bool {
	return strings.TrimSpace(a.Endpoint) != "" &&
		strings.TrimSpace(a.AccessKey) != "" &&
		strings.TrimSpace(a.SecretKey) != "" &&
		strings.TrimSpace(a.Bucket) != ""
}

type UsageConfig struct {
	Driver string `yaml:"driver" validate:"oneof=none file postgres sqlite"`
	DSN    string `yaml:"dsn" validate:"required_if=Driver postgres"`
	Path   string `yaml:"path" validate:"required_if=Driver file"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Port:     ":8081",
		Env:      "local",
		LogLevel: "info",
		LLM:      LLMConfig{Provider: "gemini"},
		Session:  SessionConfig{TTL: 30 * time.Minute, Max: 1024},
		Sandbox:  SandboxConfig{Timeout: 2 * time.Second},
		Artifact: ArtifactConfig{Region: "us-east-1", Bucket: "codemorph-exports", UseSSL: true},
		Usage:    UsageConfig{Driver: "file", Path: "tmp/llm_usage.json"},
	}
}

// Override adjusts a loaded config before validation, e.g. from CLI flags.
type Override func(*Config)

// Load reads .env, the optional YAML file named by CODEMORPH_CONFIG, the
// environment and then overrides, in that order of increasing precedence.
func Load(overrides ...Override) (*Config, error) {
	_ = godotenv.Load()
	return load(os.Getenv, overrides...)
}

func load(getenv func(string) string, overrides ...Override) (*Config, error) {
	cfg := Defaults()
	env := func(key string) string { return strings.TrimSpace(getenv(key)) }

	if path := env("CODEMORPH_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if v := env("PORT"); v != "" {
		cfg.Port = normalizePort(v)
	}
	cfg.Env = firstNonEmpty(env("APP_ENV"), cfg.Env)
	cfg.LogLevel = strings.ToLower(firstNonEmpty(env("LOG_LEVEL"), cfg.LogLevel))
	if v := env("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	cfg.LLM.Provider = strings.ToLower(firstNonEmpty(env("LLM_PROVIDER"), cfg.LLM.Provider))
	cfg.LLM.Model = firstNonEmpty(env("LLM_MODEL"), cfg.LLM.Model)
	cfg.LLM.BaseURL = firstNonEmpty(env("LLM_BASE_URL"), cfg.LLM.BaseURL)
	cfg.LLM.APIKey = firstNonEmpty(env("API_KEY"), providerKey(env, cfg.LLM.Provider), cfg.LLM.APIKey)

	var err error
	if cfg.LLM.RPS, err = floatEnv(env, "LLM_RPS", cfg.LLM.RPS); err != nil {
		return nil, err
	}
	if cfg.LLM.Burst, err = intEnv(env, "LLM_BURST", cfg.LLM.Burst); err != nil {
		return nil, err
	}
	if cfg.LLM.Timeout, err = durationEnv(env, "LLM_TIMEOUT", cfg.LLM.Timeout); err != nil {
		return nil, err
	}
	if cfg.Session.TTL, err = durationEnv(env, "SESSION_TTL", cfg.Session.TTL); err != nil {
		return nil, err
	}
	if cfg.Session.Max, err = intEnv(env, "SESSION_MAX", cfg.Session.Max); err != nil {
		return nil, err
	}
	if cfg.Sandbox.Timeout, err = durationEnv(env, "SANDBOX_TIMEOUT", cfg.Sandbox.Timeout); err != nil {
		return nil, err
	}

	cfg.Artifact = loadArtifactConfig(env, cfg.Env, cfg.Artifact)

	cfg.Usage.Driver = strings.ToLower(firstNonEmpty(env("USAGE_DRIVER"), cfg.Usage.Driver))
	cfg.Usage.DSN = firstNonEmpty(env("USAGE_DSN"), cfg.Usage.DSN)
	cfg.Usage.Path = firstNonEmpty(env("USAGE_PATH"), cfg.Usage.Path)

	for _, o := range overrides {
		if o != nil {
			o(&cfg)
		}
	}
	cfg.Port = normalizePort(cfg.Port)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and that a real provider has a key.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.LLM.Provider != "fake" && c.LLM.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func providerKey(env func(string) string, provider string) string {
	switch provider {
	case "openai":
		return env("OPENAI_API_KEY")
	case "gemini":
		return env("GEMINI_API_KEY")
	}
	return ""
}

func loadArtifactConfig(env func(string) string, appEnv string, base ArtifactConfig) ArtifactConfig {
	out := base
	out.Endpoint = firstNonEmpty(resolveArtifactEndpoint(env, appEnv), base.Endpoint)
	out.Region = firstNonEmpty(env("ARTIFACT_S3_REGION"), base.Region)
	out.AccessKey = firstNonEmpty(env("ARTIFACT_S3_ACCESS_KEY"), env("MINIO_ROOT_USER"), base.AccessKey)
	out.SecretKey = firstNonEmpty(env("ARTIFACT_S3_SECRET_KEY"), env("MINIO_ROOT_PASSWORD"), base.SecretKey)
	out.Bucket = firstNonEmpty(env("ARTIFACT_S3_BUCKET"), base.Bucket)
	out.UseSSL = resolveArtifactUseSSL(env, appEnv, base.UseSSL)
	return out
}

func resolveArtifactEndpoint(env func(string) string, appEnv string) string {
	if strings.EqualFold(appEnv, "local") {
		return env("ARTIFACT_MINIO_ENDPOINT")
	}
	return env("ARTIFACT_S3_ENDPOINT")
}

func resolveArtifactUseSSL(env func(string) string, appEnv string, fallback bool) bool {
	if strings.EqualFold(appEnv, "local") {
		return false
	}
	raw := env("ARTIFACT_S3_USE_SSL")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
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

func normalizePort(p string) string {
	if p == "" || strings.Contains(p, ":") {
		return p
	}
	return ":" + p
}

func floatEnv(env func(string) string, key string, def float64) (float64, error) {
	raw := env(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func intEnv(env func(string) string, key string, def int) (int, error) {
	raw := env(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func durationEnv(env func(string) string, key string, def time.Duration) (time.Duration, error) {
	raw := env(key)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
