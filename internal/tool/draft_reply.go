package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/gmail-drafter/internal/assistant"
)

type DraftReplyRequest struct {
	MessageID string `json:"message_id" jsonschema:"ID of the message to reply to"`
}

type draftReplySvc interface {
	DraftReply(ctx context.Context, messageID string) (assistant.Reply, error)
}

func NewDraftReply(svc draftReplySvc) *DraftReply {
	return &DraftReply{svc: svc}
}

type DraftReply struct {
	svc draftReplySvc
}

func (t *DraftReply) DraftReply(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DraftReplyRequest,
) (*mcp.CallToolResult, assistant.Reply, error) {
	reply, err := t.svc.DraftReply(ctx, input.MessageID)
	if err != nil {
		return nil, assistant.Reply{}, fmt.Errorf("svc.DraftReply failed: %w", err)
	}

	return nil, reply, nil
}
