// Package config loads the drafter settings from a TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/hal9000y/gmail-drafter/internal/assistant"
	"github.com/hal9000y/gmail-drafter/internal/draft"
	"github.com/hal9000y/gmail-drafter/internal/llm"
	"github.com/hal9000y/gmail-drafter/internal/thread"
)

type LLMConfig struct {
	URL             string  `toml:"url"`
	Model           string  `toml:"model"`
	APIKey          string  `toml:"api_key"`
	Flavor          string  `toml:"flavor"`
	NumCtx          int     `toml:"num_ctx"`
	Temperature     float64 `toml:"temperature"`
	TimeoutMS       int     `toml:"timeout_ms"`
	MinWords        int     `toml:"min_words"`
	MaxContextChars int     `toml:"max_context_chars"`
}

type MailConfig struct {
	SignatureName   string `toml:"signature_name"`
	Label           string `toml:"label"`
	ListQuery       string `toml:"list_query"`
	ListMax         int64  `toml:"list_max"`
	ContextMessages int    `toml:"context_messages"`
	MinBodyChars    int    `toml:"min_body_chars"`
}

type OAuthConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

type StoreConfig struct {
	Path string `toml:"path"`
}

type APIConfig struct {
	DraftsPerMinute int `toml:"drafts_per_minute"`
	DraftBurst      int `toml:"draft_burst"`
}

type Config struct {
	LLM   LLMConfig   `toml:"llm"`
	Mail  MailConfig  `toml:"mail"`
	OAuth OAuthConfig `toml:"oauth"`
	Store StoreConfig `toml:"store"`
	API   APIConfig   `toml:"api"`
}

func Default() Config {
	return Config{
		LLM: LLMConfig{
			URL:             llm.DefaultURL,
			Model:           llm.DefaultModel,
			Flavor:          "auto",
			NumCtx:          llm.DefaultNumCtx,
			Temperature:     llm.DefaultTemperature,
			TimeoutMS:       int(draft.DefaultTimeout / time.Millisecond),
			MinWords:        draft.DefaultMinWords,
			MaxContextChars: draft.DefaultMaxContextChars,
		},
		Mail: MailConfig{
			SignatureName:   assistant.DefaultSignatureName,
			Label:           assistant.DefaultLabel,
			ListQuery:       assistant.DefaultListQuery,
			ListMax:         assistant.DefaultListMax,
			ContextMessages: thread.DefaultMessages,
			MinBodyChars:    assistant.DefaultMinBodyChars,
		},
		Store: StoreConfig{Path: "./data/gmail-drafter.db"},
		API:   APIConfig{DraftsPerMinute: 6, DraftBurst: 2},
	}
}

// Load reads path over the defaults. An empty or missing path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("os.Stat failed: %w", err)
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("toml.DecodeFile failed: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides settings from environment variables read through getenv.
// Unset or empty variables leave the current value.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	var errs []error
	setInt := func(key string, dst *int) {
		v := getenv(key)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = n
	}

	setString("LLM_API_URL", &c.LLM.URL)
	setString("LLM_MODEL", &c.LLM.Model)
	setString("LLM_API_KEY", &c.LLM.APIKey)
	setString("LLM_FLAVOR", &c.LLM.Flavor)
	setInt("LLM_NUM_CTX", &c.LLM.NumCtx)
	setInt("LLM_TIMEOUT_MS", &c.LLM.TimeoutMS)
	setInt("LLM_MIN_WORDS", &c.LLM.MinWords)
	setInt("LLM_MIN_CHARS", &c.Mail.MinBodyChars)
	setString("SIGNATURE_NAME", &c.Mail.SignatureName)
	setString("GMAIL_CUSTOM_LABEL", &c.Mail.Label)
	setString("OAUTH_GOOGLE_CLIENT_ID", &c.OAuth.ClientID)
	setString("OAUTH_GOOGLE_CLIENT_SECRET", &c.OAuth.ClientSecret)

	return errors.Join(errs...)
}

// Validate checks values that would otherwise fail deep inside a request.
func (c Config) Validate() error {
	var errs []error
	if _, err := llm.ParseFlavor(c.LLM.Flavor); err != nil {
		errs = append(errs, err)
	}
	if c.LLM.TimeoutMS < 0 {
		errs = append(errs, errors.New("llm timeout must not be negative"))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm temperature %v out of range [0,2]", c.LLM.Temperature))
	}
	if c.Store.Path == "" {
		errs = append(errs, errors.New("store path must be set"))
	}
	return errors.Join(errs...)
}

// Client converts to the generation backend settings.
func (c LLMConfig) Client(httpClient *http.Client) llm.Config {
	flavor, _ := llm.ParseFlavor(c.Flavor)
	return llm.Config{
		URL:         c.URL,
		Model:       c.Model,
		APIKey:      c.APIKey,
		Flavor:      flavor,
		NumCtx:      c.NumCtx,
		Temperature: c.Temperature,
		HTTPClient:  httpClient,
	}
}

// Generator converts to the draft generator settings.
func (c LLMConfig) Generator() draft.Config {
	return draft.Config{
		Timeout:         time.Duration(c.TimeoutMS) * time.Millisecond,
		MinWords:        c.MinWords,
		MaxContextChars: c.MaxContextChars,
	}
}

// Assistant converts to the assistant settings.
func (c MailConfig) Assistant() assistant.Config {
	return assistant.Config{
		SignatureName:   c.SignatureName,
		MinBodyChars:    c.MinBodyChars,
		ContextMessages: c.ContextMessages,
		Label:           c.Label,
		ListQuery:       c.ListQuery,
		ListMax:         c.ListMax,
	}
}
