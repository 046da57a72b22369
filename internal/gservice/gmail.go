// Package gservice wraps the Gmail API calls used by the assistant.
package gservice

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/hal9000y/gmail-drafter/internal/auth"
)

const gmailUserID = "me"

// ErrUnauthorized means there is no usable Gmail authorization and the user must sign in again.
var ErrUnauthorized = errors.New("gmail authorization required")

// MetadataHeaders are the headers fetched for message listings and reply assembly.
var MetadataHeaders = []string{"From", "To", "Cc", "Subject", "Date", "Message-ID", "References"}

type tokenSource interface {
	OAuthToken() (*oauth2.Token, error)
	TokenSource(ctx context.Context) oauth2.TokenSource
}

// NewGmail builds the client. Extra options are appended to every service
// constructed, e.g. option.WithEndpoint.
func NewGmail(tok tokenSource, opts ...option.ClientOption) *GMail {
	return &GMail{tok: tok, opts: opts}
}

type GMail struct {
	tok  tokenSource
	opts []option.ClientOption
}

// Connected reports ErrUnauthorized when no account has been authorized yet.
func (m *GMail) Connected(_ context.Context) error {
	if _, err := m.tok.OAuthToken(); err != nil {
		return classify(err)
	}
	return nil
}

func (m *GMail) ListMessages(ctx context.Context, Q, pageToken string, maxResults int64) (*gmail.ListMessagesResponse, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	result, err := svc.Users.Messages.List(gmailUserID).
		Q(Q).
		PageToken(pageToken).
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("messages.List failed: %w", classify(err))
	}

	return result, nil
}

func (m *GMail) GetMessageMetadata(ctx context.Context, msgID string) (*gmail.Message, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	msg, err := svc.Users.Messages.Get(gmailUserID, msgID).
		Format("metadata").
		MetadataHeaders(MetadataHeaders...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("messages.Get failed: %w", classify(err))
	}

	return msg, nil
}

func (m *GMail) GetThread(ctx context.Context, threadID string) (*gmail.Thread, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	thread, err := svc.Users.Threads.Get(gmailUserID, threadID).
		Format("full").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("threads.Get failed: %w", classify(err))
	}

	return thread, nil
}

// CreateDraft stores raw RFC 822 bytes as a draft in threadID.
func (m *GMail) CreateDraft(ctx context.Context, threadID string, raw []byte) (*gmail.Draft, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	d, err := svc.Users.Drafts.Create(gmailUserID, &gmail.Draft{
		Message: &gmail.Message{
			Raw:      base64.URLEncoding.EncodeToString(raw),
			ThreadId: threadID,
		},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("drafts.Create failed: %w", classify(err))
	}

	return d, nil
}

func (m *GMail) ListLabels(ctx context.Context) ([]*gmail.Label, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	res, err := svc.Users.Labels.List(gmailUserID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("labels.List failed: %w", classify(err))
	}

	return res.Labels, nil
}

func (m *GMail) CreateLabel(ctx context.Context, name string) (*gmail.Label, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	l, err := svc.Users.Labels.Create(gmailUserID, &gmail.Label{
		Name:                  name,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("labels.Create failed: %w", classify(err))
	}

	return l, nil
}

func (m *GMail) AddLabels(ctx context.Context, msgID string, labelIDs ...string) error {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return fmt.Errorf("newSvc failed: %w", err)
	}

	_, err = svc.Users.Messages.Modify(gmailUserID, msgID, &gmail.ModifyMessageRequest{
		AddLabelIds: labelIDs,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("messages.Modify failed: %w", classify(err))
	}

	return nil
}

func (m *GMail) newSvc(ctx context.Context) (*gmail.Service, error) {
	if err := m.Connected(ctx); err != nil {
		return nil, err
	}

	clt := oauth2.NewClient(ctx, m.tok.TokenSource(ctx))

	opts := append([]option.ClientOption{option.WithHTTPClient(clt)}, m.opts...)
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gmail.NewService failed: %w", err)
	}

	return svc, nil
}

// classify marks errors that only a new sign-in can fix.
func classify(err error) error {
	var (
		rErr *oauth2.RetrieveError
		gErr *googleapi.Error
	)

	switch {
	case errors.Is(err, auth.ErrTokenNotSet), errors.As(err, &rErr):
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	case errors.As(err, &gErr) && gErr.Code == http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	return err
}
