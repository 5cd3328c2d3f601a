package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferProvider(t *testing.T) {
	cases := []struct {
		model    string
		provider string
	}{
		{"claude-sonnet-4-5", ProviderAnthropic},
		{"claude-experimental-foo", ProviderAnthropic},
		{"gpt-5", ProviderOpenAI},
		{"o3-mini", ProviderOpenAI},
		{"gemini-2.5-flash", ProviderGoogle},
		{"llama3.2", ProviderOllama},
		{"qwen2.5-coder", ProviderOllama},
	}
	for _, tc := range cases {
		provider, err := InferProvider(tc.model)
		require.NoError(t, err, tc.model)
		assert.Equal(t, tc.provider, provider, tc.model)
	}

	_, err := InferProvider("mystery-model-9000")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	assert.NoError(t, cfg.Validate())

	bad := defaultConfig()
	bad.Model.Name = ""
	assert.Error(t, bad.Validate())

	bad = defaultConfig()
	bad.Model.Temperature = 3.0
	assert.Error(t, bad.Validate())

	bad = defaultConfig()
	bad.Collector.LinkTokenBudget = 0
	assert.Error(t, bad.Validate())
}

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	require.NoError(t, LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")))

	cfg, err := GetConfig()
	require.NoError(t, err)
	assert.Equal(t, ModelClaudeSonnetLatest, cfg.Model.Name)
	assert.Equal(t, DefaultLinkTokenBudget, cfg.Collector.LinkTokenBudget)
	assert.Equal(t, DefaultListenAddr, cfg.Server.ListenAddr)
}

func TestLoadConfigYAMLAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "copysmith.yaml")
	yaml := `
model:
  name: gpt-5
  temperature: 0.3
collector:
  link_token_budget: 500
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	// Env beats file.
	t.Setenv("COPYSMITH_MODEL", "gemini-2.5-flash")

	require.NoError(t, LoadConfig(path))
	cfg, err := GetConfig()
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-flash", cfg.Model.Name)
	assert.InDelta(t, 0.3, float64(cfg.Model.Temperature), 0.001)
	assert.Equal(t, 500, cfg.Collector.LinkTokenBudget)
}

func TestGetConfigReturnsCopy(t *testing.T) {
	require.NoError(t, LoadConfig(""))

	cfg, err := GetConfig()
	require.NoError(t, err)
	cfg.Model.Name = "mutated"

	again, err := GetConfig()
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", again.Model.Name)
}
