// Package llm talks to the text-generation backend used for drafting replies.
package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/tidwall/gjson"
)

const (
	DefaultURL         = "http://127.0.0.1:11434/api/chat"
	DefaultModel       = "qwen2.5:3b-instruct"
	DefaultNumCtx      = 1024
	DefaultTemperature = 0.4
)

// ErrBadStatus is returned when the backend answers with a non-2xx status.
var ErrBadStatus = errors.New("llm backend returned non-2xx status")

// Completer sends one system + user exchange and returns the raw reply text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Config describes one backend. Zero values take the package defaults.
type Config struct {
	URL         string
	Model       string
	APIKey      string
	Flavor      Flavor
	NumCtx      int
	Temperature float64
	HTTPClient  *http.Client
}

// New builds the backend client for the resolved flavor.
func New(cfg Config) Completer {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	cfg.URL = NormalizeURL(cfg.URL)
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.NumCtx <= 0 {
		cfg.NumCtx = DefaultNumCtx
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	// keys never leave for a backend on this machine
	if IsLoopback(cfg.URL) {
		cfg.APIKey = ""
	}

	if cfg.Flavor.Resolve(cfg.URL) == FlavorOpenAICompatible {
		return newOpenAICompatible(cfg)
	}
	return newLocalChat(cfg)
}

// textPaths lists the response locations that may carry generated text, in priority order.
var textPaths = []string{
	"message.content",
	"choices.0.message.content",
	"output_text",
	"text",
}

// ExtractText finds the generated text in a backend response body.
// The boolean is false when none of the known shapes carry a string.
func ExtractText(body []byte) (string, bool) {
	if !gjson.ValidBytes(body) {
		return "", false
	}

	for _, path := range textPaths {
		if r := gjson.GetBytes(body, path); r.Type == gjson.String {
			return r.String(), true
		}
	}

	return "", false
}
