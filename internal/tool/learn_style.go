package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/gmail-drafter/internal/assistant"
)

type LearnStyleRequest struct {
	Sender   string `json:"sender" jsonschema:"sender email address the style belongs to"`
	Original string `json:"original,omitempty" jsonschema:"draft text before the user edited it"`
	Edited   string `json:"edited" jsonschema:"the text the user actually sent"`
}

// LearnStyleResponse is the updated profile in a flat shape.
type LearnStyleResponse struct {
	SenderKey     string `json:"sender_key" jsonschema:"normalized sender address"`
	PreferredTone string `json:"preferred_tone" jsonschema:"comma separated tone tags"`
	Greeting      string `json:"greeting,omitempty" jsonschema:"preferred greeting"`
	Closing       string `json:"closing,omitempty" jsonschema:"preferred closing"`
	MustUseTerms  string `json:"must_use_terms,omitempty" jsonschema:"phrases every reply should include"`
	AverageLength int    `json:"average_length" jsonschema:"target reply length in words"`
	EditCount     int    `json:"edit_count" jsonschema:"number of learned examples"`
	EditDelta     int    `json:"edit_delta" jsonschema:"edit distance between original and edited text"`
}

type learnStyleSvc interface {
	Learn(sender, original, edited string) (assistant.Learned, error)
}

func NewLearnStyle(svc learnStyleSvc) *LearnStyle {
	return &LearnStyle{svc: svc}
}

type LearnStyle struct {
	svc learnStyleSvc
}

func (t *LearnStyle) LearnStyle(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input LearnStyleRequest,
) (*mcp.CallToolResult, LearnStyleResponse, error) {
	res, err := t.svc.Learn(input.Sender, input.Original, input.Edited)
	if err != nil {
		return nil, LearnStyleResponse{}, fmt.Errorf("svc.Learn failed: %w", err)
	}

	p := res.Profile
	return nil, LearnStyleResponse{
		SenderKey:     p.SenderKey,
		PreferredTone: p.PreferredTone,
		Greeting:      p.Greeting,
		Closing:       p.Closing,
		MustUseTerms:  p.MustUseTerms,
		AverageLength: p.AverageLength,
		EditCount:     p.EditCount,
		EditDelta:     res.EditDelta,
	}, nil
}
