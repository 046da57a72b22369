package tool_test

import (
	"context"

	"github.com/hal9000y/gmail-drafter/internal/assistant"
	"github.com/hal9000y/gmail-drafter/internal/store"
)

type assistantSvcMock struct {
	ListRecentFunc  func(ctx context.Context, query string, maxResults int64) ([]assistant.MessageSummary, error)
	DraftReplyFunc  func(ctx context.Context, messageID string) (assistant.Reply, error)
	LearnFunc       func(sender, original, edited string) (assistant.Learned, error)
	ExamplesFunc    func(sender string) ([]store.Example, error)
	EnsureLabelFunc func(ctx context.Context) (assistant.Label, error)
}

func (m *assistantSvcMock) ListRecent(ctx context.Context, query string, maxResults int64) ([]assistant.MessageSummary, error) {
	return m.ListRecentFunc(ctx, query, maxResults)
}

func (m *assistantSvcMock) DraftReply(ctx context.Context, messageID string) (assistant.Reply, error) {
	return m.DraftReplyFunc(ctx, messageID)
}

func (m *assistantSvcMock) Learn(sender, original, edited string) (assistant.Learned, error) {
	return m.LearnFunc(sender, original, edited)
}

func (m *assistantSvcMock) Examples(sender string) ([]store.Example, error) {
	return m.ExamplesFunc(sender)
}

func (m *assistantSvcMock) EnsureLabel(ctx context.Context) (assistant.Label, error) {
	return m.EnsureLabelFunc(ctx)
}
