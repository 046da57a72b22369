package llm

import (
	"context"
	"fmt"
	"log"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAICompatible uses the openai-go SDK against any /chat/completions endpoint.
// The SDK decodes the transport, but the generated text is read from the raw
// response with ExtractText, so both flavors accept the same response shapes.
type OpenAICompatible struct {
	endpoint    string
	model       string
	temperature float64
	opts        []option.RequestOption
}

func newOpenAICompatible(cfg Config) *OpenAICompatible {
	opts := []option.RequestOption{
		option.WithBaseURL(baseURL(cfg.URL)),
		option.WithHTTPClient(cfg.HTTPClient),
		// retries are decided by the draft generator, not the SDK
		option.WithMaxRetries(0),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}

	return &OpenAICompatible{
		endpoint:    cfg.URL,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		opts:        opts,
	}
}

// Complete implements Completer.
func (o *OpenAICompatible) Complete(ctx context.Context, system, user string) (string, error) {
	client := openai.NewClient(o.opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(o.temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat.Completions.New failed: %w", err)
	}

	raw := resp.RawJSON()
	if text, ok := ExtractText([]byte(raw)); ok {
		return text, nil
	}
	if len(resp.Choices) > 0 && resp.Choices[0].Message.Content != "" {
		return resp.Choices[0].Message.Content, nil
	}

	log.Printf("llm: no text in response from %s: %s", o.endpoint, snippet([]byte(raw)))
	return "", nil
}

// baseURL turns a full completions endpoint into the SDK base URL.
func baseURL(endpoint string) string {
	base := strings.TrimSuffix(strings.TrimRight(endpoint, "/"), "chat/completions")
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}
