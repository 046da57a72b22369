package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/gmail-drafter/internal/assistant"
)

type ListMessagesRequest struct {
	Query      string `json:"query,omitempty" jsonschema:"Gmail search query, defaults to the inbox without drafts"`
	MaxResults int64  `json:"max_results,omitempty" jsonschema:"max messages to return"`
}

type ListMessagesResponse struct {
	Messages     []assistant.MessageSummary `json:"messages" jsonschema:"array of message summaries"`
	TotalResults int                        `json:"total_results" jsonschema:"number of messages returned"`
}

type listMessagesSvc interface {
	ListRecent(ctx context.Context, query string, maxResults int64) ([]assistant.MessageSummary, error)
}

func NewListMessages(svc listMessagesSvc) *ListMessages {
	return &ListMessages{
		svc: svc,
	}
}

type ListMessages struct {
	svc listMessagesSvc
}

func (t *ListMessages) ListMessages(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListMessagesRequest,
) (*mcp.CallToolResult, ListMessagesResponse, error) {
	messages, err := t.svc.ListRecent(ctx, input.Query, input.MaxResults)
	if err != nil {
		return nil, ListMessagesResponse{}, fmt.Errorf("svc.ListRecent failed: %w", err)
	}
	if messages == nil {
		messages = []assistant.MessageSummary{}
	}

	return nil, ListMessagesResponse{
		Messages:     messages,
		TotalResults: len(messages),
	}, nil
}
