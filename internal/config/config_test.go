package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/gmail-drafter/internal/config"
	"github.com/hal9000y/gmail-drafter/internal/llm"
)

func env(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	cfg, err = config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 20*time.Second, cfg.LLM.Generator().Timeout)
	assert.Equal(t, "Regards,\nKanishk", cfg.Mail.Assistant().Signature())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drafter.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[llm]
url = "https://api.openai.com/v1/chat/completions"
model = "gpt-4o-mini"
flavor = "openai"
timeout_ms = 5000

[mail]
signature_name = "Sam"
label = "Drafted"

[api]
drafts_per_minute = 30
`), 0600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, llm.FlavorOpenAICompatible, cfg.LLM.Client(nil).Flavor)
	assert.Equal(t, 5*time.Second, cfg.LLM.Generator().Timeout)
	assert.Equal(t, "Drafted", cfg.Mail.Assistant().Label)
	assert.Equal(t, 30, cfg.API.DraftsPerMinute)
	// untouched keys keep defaults
	assert.Equal(t, llm.DefaultNumCtx, cfg.LLM.NumCtx)
	assert.Equal(t, "-in:drafts", cfg.Mail.ListQuery)
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drafter.toml")
	require.NoError(t, os.WriteFile(path, []byte("[llm\nurl = "), 0600))

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := config.Default()
	err := cfg.ApplyEnv(env(map[string]string{
		"LLM_API_URL":                "http://localhost:1234/v1/chat/completions",
		"LLM_MODEL":                  "llama3",
		"LLM_API_KEY":                "k",
		"LLM_NUM_CTX":                "4096",
		"LLM_TIMEOUT_MS":             "1500",
		"LLM_MIN_WORDS":              "40",
		"LLM_MIN_CHARS":              "100",
		"SIGNATURE_NAME":             "Sam",
		"GMAIL_CUSTOM_LABEL":         "AI",
		"OAUTH_GOOGLE_CLIENT_ID":     "id",
		"OAUTH_GOOGLE_CLIENT_SECRET": "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:1234/v1/chat/completions", cfg.LLM.URL)
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.Equal(t, 4096, cfg.LLM.NumCtx)
	assert.Equal(t, 1500*time.Millisecond, cfg.LLM.Generator().Timeout)
	assert.Equal(t, 40, cfg.LLM.Generator().MinWords)
	assert.Equal(t, 100, cfg.Mail.Assistant().MinBodyChars)
	assert.Equal(t, "Regards,\nSam", cfg.Mail.Assistant().Signature())
	assert.Equal(t, "AI", cfg.Mail.Label)
	assert.Equal(t, config.OAuthConfig{ClientID: "id", ClientSecret: "secret"}, cfg.OAuth)
}

func TestApplyEnvInvalidNumbers(t *testing.T) {
	cfg := config.Default()
	err := cfg.ApplyEnv(env(map[string]string{
		"LLM_NUM_CTX":    "lots",
		"LLM_TIMEOUT_MS": "20s",
		"LLM_MODEL":      "still-applied",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM_NUM_CTX")
	assert.Contains(t, err.Error(), "LLM_TIMEOUT_MS")
	assert.Equal(t, llm.DefaultNumCtx, cfg.LLM.NumCtx)
	assert.Equal(t, "still-applied", cfg.LLM.Model)
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Flavor = "grpc"
	cfg.Store.Path = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grpc")
	assert.Contains(t, err.Error(), "store path")
}
