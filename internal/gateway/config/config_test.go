package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(envMap(map[string]string{"API_KEY": "k"}))
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.Port)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "k", cfg.LLM.APIKey)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 1024, cfg.Session.Max)
	assert.Equal(t, 2*time.Second, cfg.Sandbox.Timeout)
	assert.Equal(t, "file", cfg.Usage.Driver)
	assert.False(t, cfg.Artifact.UseSSL)
	assert.False(t, cfg.Artifact.CanUseS3())
}

func TestLoadMissingAPIKey(t *testing.T) {
	_, err := load(envMap(nil))
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	cfg, err := load(envMap(map[string]string{"LLM_PROVIDER": "fake"}))
	require.NoError(t, err)
	assert.Equal(t, "fake", cfg.LLM.Provider)
}

func TestLoadProviderSpecificKey(t *testing.T) {
	cfg, err := load(envMap(map[string]string{
		"LLM_PROVIDER":   "OpenAI",
		"OPENAI_API_KEY": "sk-1",
		"GEMINI_API_KEY": "g-1",
	}))
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-1", cfg.LLM.APIKey)
}

func TestLoadEnvOverrides(t *testing.T) {
	cfg, err := load(envMap(map[string]string{
		"API_KEY":                "k",
		"PORT":                   "9090",
		"APP_ENV":                "production",
		"LOG_LEVEL":              "DEBUG",
		"LLM_RPS":                "1.5",
		"LLM_BURST":              "3",
		"LLM_TIMEOUT":            "45s",
		"SESSION_TTL":            "5m",
		"SESSION_MAX":            "10",
		"SANDBOX_TIMEOUT":        "500ms",
		"ARTIFACT_S3_ENDPOINT":   "s3.example.com",
		"ARTIFACT_S3_ACCESS_KEY": "ak",
		"ARTIFACT_S3_SECRET_KEY": "sk",
		"USAGE_DRIVER":           "sqlite",
	}))
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.InDelta(t, 1.5, cfg.LLM.RPS, 1e-9)
	assert.Equal(t, 3, cfg.LLM.Burst)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 10, cfg.Session.Max)
	assert.Equal(t, 500*time.Millisecond, cfg.Sandbox.Timeout)
	assert.True(t, cfg.Artifact.CanUseS3())
	assert.True(t, cfg.Artifact.UseSSL)
	assert.Equal(t, "sqlite", cfg.Usage.Driver)
}

func TestLoadInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"bad duration": {"API_KEY": "k", "SESSION_TTL": "soon"},
		"bad int":      {"API_KEY": "k", "SESSION_MAX": "many"},
		"zero max":     {"API_KEY": "k", "SESSION_MAX": "0"},
		"provider":     {"API_KEY": "k", "LLM_PROVIDER": "llama"},
		"level":        {"API_KEY": "k", "LOG_LEVEL": "loud"},
		"usage driver": {"API_KEY": "k", "USAGE_DRIVER": "mongo"},
		"postgres dsn": {"API_KEY": "k", "USAGE_DRIVER": "postgres"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := load(envMap(env))
			assert.Error(t, err)
		})
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codemorph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: ":7000"
llm:
  provider: fake
  model: custom
session:
  ttl: 10m
usage:
  driver: none
`), 0o644))

	cfg, err := load(envMap(map[string]string{"CODEMORPH_CONFIG": path, "SESSION_MAX": "5"}))
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Port)
	assert.Equal(t, "fake", cfg.LLM.Provider)
	assert.Equal(t, "custom", cfg.LLM.Model)
	assert.Equal(t, 10*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 5, cfg.Session.Max)
	assert.Equal(t, "none", cfg.Usage.Driver)
}

func TestLoadYAMLMissingFile(t *testing.T) {
	_, err := load(envMap(map[string]string{"CODEMORPH_CONFIG": "/does/not/exist.yaml"}))
	assert.Error(t, err)
}

func TestLoadCORSOrigins(t *testing.T) {
	cfg, err := load(envMap(map[string]string{
		"API_KEY":      "k",
		"CORS_ORIGINS": "https://a.example, https://b.example ,",
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)

	_, err = load(envMap(map[string]string{"API_KEY": "k", "CORS_ORIGINS": "not a url"}))
	assert.Error(t, err)
}

func TestLoadOverridesApplyBeforeValidation(t *testing.T) {
	cfg, err := load(envMap(map[string]string{"LLM_PROVIDER": "gemini"}), func(c *Config) {
		c.LLM.Provider = "fake"
		c.Port = ":9000"
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "fake", cfg.LLM.Provider)
	assert.Equal(t, ":9000", cfg.Port)

	_, err = load(envMap(map[string]string{"LLM_PROVIDER": "fake"}), func(c *Config) {
		c.Usage.Driver = "bogus"
	})
	assert.Error(t, err)
}
