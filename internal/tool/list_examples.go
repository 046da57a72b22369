package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/gmail-drafter/internal/store"
)

type ListExamplesRequest struct {
	Sender string `json:"sender" jsonschema:"sender email address to list learned edits for"`
}

type ListExamplesResponse struct {
	Examples []Example `json:"examples" jsonschema:"learned edits, oldest first"`
}

// Example is a learned edit with its timestamp rendered as RFC 3339 text.
type Example struct {
	ID        string `json:"id" jsonschema:"example ID"`
	Original  string `json:"original,omitempty" jsonschema:"draft text before the edit"`
	Edited    string `json:"edited" jsonschema:"text after the edit"`
	EditDelta int    `json:"edit_delta" jsonschema:"edit distance between original and edited text"`
	CreatedAt string `json:"created_at" jsonschema:"when the edit was learned"`
}

type listExamplesSvc interface {
	Examples(sender string) ([]store.Example, error)
}

func NewListExamples(svc listExamplesSvc) *ListExamples {
	return &ListExamples{svc: svc}
}

type ListExamples struct {
	svc listExamplesSvc
}

func (t *ListExamples) ListExamples(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ListExamplesRequest,
) (*mcp.CallToolResult, ListExamplesResponse, error) {
	examples, err := t.svc.Examples(input.Sender)
	if err != nil {
		return nil, ListExamplesResponse{}, fmt.Errorf("svc.Examples failed: %w", err)
	}

	out := ListExamplesResponse{Examples: make([]Example, 0, len(examples))}
	for _, ex := range examples {
		out.Examples = append(out.Examples, Example{
			ID:        ex.ID,
			Original:  ex.Original,
			Edited:    ex.Edited,
			EditDelta: ex.EditDelta,
			CreatedAt: ex.CreatedAt.Format(time.RFC3339),
		})
	}

	return nil, out, nil
}
