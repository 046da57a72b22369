package assistant_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/gmail-drafter/internal/assistant"
	"github.com/hal9000y/gmail-drafter/internal/draft"
)

type sentReply struct {
	header mail.Header
	body   string
}

func readReply(t *testing.T, raw []byte) sentReply {
	t.Helper()

	e, err := message.Read(bytes.NewReader(raw))
	require.NoError(t, err)
	body, err := io.ReadAll(e.Body)
	require.NoError(t, err)

	return sentReply{header: mail.Header{Header: e.Header}, body: string(body)}
}

func (r sentReply) subject(t *testing.T) string {
	s, err := r.header.Subject()
	require.NoError(t, err)
	return s
}

func (r sentReply) to(t *testing.T) []string {
	list, err := r.header.AddressList("To")
	require.NoError(t, err)

	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Address)
	}
	return out
}

func (r sentReply) msgIDs(t *testing.T, key string) []string {
	ids, err := r.header.MsgIDList(key)
	require.NoError(t, err)
	return ids
}

func TestDraftReplyFoldsLongReferences(t *testing.T) {
	var refs []string
	for i := range 30 {
		refs = append(refs, fmt.Sprintf("<ref-%02d-%s@mail.example.com>", i, strings.Repeat("x", 40)))
	}

	f := newDraftFixture(draft.Result{Body: longText(30)})
	f.mail.GetMessageMetadataFunc = func(_ context.Context, msgID string) (*gmail.Message, error) {
		return &gmail.Message{Id: msgID, ThreadId: "t-1", Payload: &gmail.MessagePart{Headers: []*gmail.MessagePartHeader{
			{Name: "Subject", Value: "Hi"},
			{Name: "From", Value: "ann@b.com"},
			{Name: "Message-ID", Value: "<m1@mail.example.com>"},
			{Name: "References", Value: strings.Join(refs, " ")},
		}}}, nil
	}

	_, err := assistant.NewService(f.mail, openStore(t), f.gen, assistant.Config{}).DraftReply(context.Background(), "m-1")
	require.NoError(t, err)

	head, _, found := strings.Cut(string(f.raw), "\r\n\r\n")
	require.True(t, found)
	for _, line := range strings.Split(head, "\r\n") {
		assert.LessOrEqual(t, len(line), 998, "header line too long: %.40s", line)
	}

	ids := readReply(t, f.raw).msgIDs(t, "References")
	require.Len(t, ids, 31)
	assert.Equal(t, strings.Trim(refs[0], "<>"), ids[0])
	assert.Equal(t, "m1@mail.example.com", ids[30])
}

func TestDraftReplyQuotedSenderName(t *testing.T) {
	f := newDraftFixture(draft.Result{Body: longText(30)})
	f.mail.GetMessageMetadataFunc = func(_ context.Context, msgID string) (*gmail.Message, error) {
		return &gmail.Message{Id: msgID, ThreadId: "t-1", Payload: &gmail.MessagePart{Headers: []*gmail.MessagePartHeader{
			{Name: "Subject", Value: "Hi"},
			{Name: "From", Value: `"Doe, John" <j@x.com>`},
		}}}, nil
	}

	_, err := assistant.NewService(f.mail, openStore(t), f.gen, assistant.Config{}).DraftReply(context.Background(), "m-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"j@x.com"}, readReply(t, f.raw).to(t))
}

func TestListRecentParsesAddressHeaders(t *testing.T) {
	mb := &mailboxMock{
		ListMessagesFunc: func(context.Context, string, string, int64) (*gmail.ListMessagesResponse, error) {
			return &gmail.ListMessagesResponse{Messages: []*gmail.Message{{Id: "m-1"}}}, nil
		},
		GetMessageMetadataFunc: func(_ context.Context, msgID string) (*gmail.Message, error) {
			return &gmail.Message{Id: msgID, Payload: &gmail.MessagePart{Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "=?utf-8?q?J=C3=B6rg?= <jorg@example.com>"},
				{Name: "To", Value: `"Doe, John" <j@x.com>, me@test.com`},
				{Name: "Cc", Value: "not an address <broken"},
			}}}, nil
		},
	}

	got, err := assistant.NewService(mb, nil, nil, assistant.Config{}).ListRecent(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, assistant.EmailAddress{Name: "Jörg", Email: "jorg@example.com"}, got[0].From)
	assert.Equal(t, []assistant.EmailAddress{
		{Name: "Doe, John", Email: "j@x.com"},
		{Email: "me@test.com"},
	}, got[0].To)
	assert.Equal(t, []assistant.EmailAddress{{Name: "not an address", Email: ""}}, got[0].CC)
}
