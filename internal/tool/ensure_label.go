package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/gmail-drafter/internal/assistant"
)

type EnsureLabelRequest struct{}

type ensureLabelSvc interface {
	EnsureLabel(ctx context.Context) (assistant.Label, error)
}

func NewEnsureLabel(svc ensureLabelSvc) *EnsureLabel {
	return &EnsureLabel{svc: svc}
}

type EnsureLabel struct {
	svc ensureLabelSvc
}

func (t *EnsureLabel) EnsureLabel(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EnsureLabelRequest,
) (*mcp.CallToolResult, assistant.Label, error) {
	l, err := t.svc.EnsureLabel(ctx)
	if err != nil {
		return nil, assistant.Label{}, fmt.Errorf("svc.EnsureLabel failed: %w", err)
	}

	return nil, l, nil
}
