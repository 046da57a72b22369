// Package assistant implements the user facing operations: listing the inbox,
// drafting a styled reply, learning from edits and managing the draft label.
package assistant

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/gmail-drafter/internal/draft"
	"github.com/hal9000y/gmail-drafter/internal/gservice"
	"github.com/hal9000y/gmail-drafter/internal/store"
	"github.com/hal9000y/gmail-drafter/internal/style"
	"github.com/hal9000y/gmail-drafter/internal/thread"
)

var (
	// ErrValidation marks missing or malformed caller input.
	ErrValidation = errors.New("invalid request")
	// ErrUpstreamAuth means Gmail is not connected or the credentials expired.
	ErrUpstreamAuth = errors.New("gmail is not connected, sign in again")
)

const (
	DefaultSignatureName = "Kanishk"
	DefaultMinBodyChars  = 80
	DefaultLabel         = "AutoResponder"
	DefaultListQuery     = "-in:drafts"
	DefaultListMax       = 20
	maxListMax           = 50
	metadataConcurrency  = 8
)

type mailbox interface {
	Connected(ctx context.Context) error
	ListMessages(ctx context.Context, Q, pageToken string, maxResults int64) (*gmail.ListMessagesResponse, error)
	GetMessageMetadata(ctx context.Context, msgID string) (*gmail.Message, error)
	GetThread(ctx context.Context, threadID string) (*gmail.Thread, error)
	CreateDraft(ctx context.Context, threadID string, raw []byte) (*gmail.Draft, error)
	ListLabels(ctx context.Context) ([]*gmail.Label, error)
	CreateLabel(ctx context.Context, name string) (*gmail.Label, error)
	AddLabels(ctx context.Context, msgID string, labelIDs ...string) error
}

type profileStore interface {
	Get(key string) (*style.Profile, error)
	Upsert(key string, fn func(existing *style.Profile) style.Profile) (style.Profile, error)
	LogExample(ex store.Example) (store.Example, error)
	Examples(sender string) ([]store.Example, error)
}

type generator interface {
	Generate(ctx context.Context, req draft.Request) draft.Result
}

// Config holds the caller boundary knobs. Zero values take the defaults.
type Config struct {
	SignatureName   string
	MinBodyChars    int
	ContextMessages int
	Label           string
	ListQuery       string
	ListMax         int64
}

func (c Config) withDefaults() Config {
	if c.SignatureName == "" {
		c.SignatureName = DefaultSignatureName
	}
	if c.MinBodyChars <= 0 {
		c.MinBodyChars = DefaultMinBodyChars
	}
	if c.ContextMessages <= 0 {
		c.ContextMessages = thread.DefaultMessages
	}
	if c.Label == "" {
		c.Label = DefaultLabel
	}
	if c.ListQuery == "" {
		c.ListQuery = DefaultListQuery
	}
	if c.ListMax <= 0 {
		c.ListMax = DefaultListMax
	}
	return c
}

// Signature is the closing block appended to drafts.
func (c Config) Signature() string {
	return "Regards,\n" + c.SignatureName
}

type Service struct {
	mail     mailbox
	profiles profileStore
	gen      generator
	cfg      Config
}

func NewService(mail mailbox, profiles profileStore, gen generator, cfg Config) *Service {
	return &Service{
		mail:     mail,
		profiles: profiles,
		gen:      gen,
		cfg:      cfg.withDefaults(),
	}
}

// upstream wraps a mail provider error, promoting authorization failures to ErrUpstreamAuth.
func upstream(op string, err error) error {
	if errors.Is(err, gservice.ErrUnauthorized) {
		return fmt.Errorf("%w: %s: %w", ErrUpstreamAuth, op, err)
	}
	return fmt.Errorf("%s failed: %w", op, err)
}
