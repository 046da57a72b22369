package assistant_test

import (
	"context"
	"sync"

	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/gmail-drafter/internal/draft"
)

type mailboxMock struct {
	ConnectedFunc          func(ctx context.Context) error
	ListMessagesFunc       func(ctx context.Context, Q, pageToken string, maxResults int64) (*gmail.ListMessagesResponse, error)
	GetMessageMetadataFunc func(ctx context.Context, msgID string) (*gmail.Message, error)
	GetThreadFunc          func(ctx context.Context, threadID string) (*gmail.Thread, error)
	CreateDraftFunc        func(ctx context.Context, threadID string, raw []byte) (*gmail.Draft, error)
	ListLabelsFunc         func(ctx context.Context) ([]*gmail.Label, error)
	CreateLabelFunc        func(ctx context.Context, name string) (*gmail.Label, error)
	AddLabelsFunc          func(ctx context.Context, msgID string, labelIDs ...string) error
}

func (m *mailboxMock) Connected(ctx context.Context) error {
	if m.ConnectedFunc == nil {
		return nil
	}
	return m.ConnectedFunc(ctx)
}

func (m *mailboxMock) ListMessages(ctx context.Context, Q, pageToken string, maxResults int64) (*gmail.ListMessagesResponse, error) {
	return m.ListMessagesFunc(ctx, Q, pageToken, maxResults)
}

func (m *mailboxMock) GetMessageMetadata(ctx context.Context, msgID string) (*gmail.Message, error) {
	return m.GetMessageMetadataFunc(ctx, msgID)
}

func (m *mailboxMock) GetThread(ctx context.Context, threadID string) (*gmail.Thread, error) {
	return m.GetThreadFunc(ctx, threadID)
}

func (m *mailboxMock) CreateDraft(ctx context.Context, threadID string, raw []byte) (*gmail.Draft, error) {
	return m.CreateDraftFunc(ctx, threadID, raw)
}

func (m *mailboxMock) ListLabels(ctx context.Context) ([]*gmail.Label, error) {
	return m.ListLabelsFunc(ctx)
}

func (m *mailboxMock) CreateLabel(ctx context.Context, name string) (*gmail.Label, error) {
	return m.CreateLabelFunc(ctx, name)
}

func (m *mailboxMock) AddLabels(ctx context.Context, msgID string, labelIDs ...string) error {
	return m.AddLabelsFunc(ctx, msgID, labelIDs...)
}

type generatorMock struct {
	GenerateFunc func(ctx context.Context, req draft.Request) draft.Result

	mu       sync.Mutex
	requests []draft.Request
}

func (m *generatorMock) Generate(ctx context.Context, req draft.Request) draft.Result {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	return m.GenerateFunc(ctx, req)
}
