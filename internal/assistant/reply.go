package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/emersion/go-message/mail"

	"github.com/hal9000y/gmail-drafter/internal/draft"
	"github.com/hal9000y/gmail-drafter/internal/store"
	"github.com/hal9000y/gmail-drafter/internal/style"
	"github.com/hal9000y/gmail-drafter/internal/thread"
)

// Reply is the outcome of DraftReply.
type Reply struct {
	DraftID            string   `json:"draft_id" jsonschema:"ID of the created Gmail draft"`
	ThreadID           string   `json:"thread_id" jsonschema:"thread the draft belongs to"`
	Subject            string   `json:"subject" jsonschema:"draft subject"`
	Body               string   `json:"body" jsonschema:"draft body"`
	NeedsClarification *bool    `json:"needs_clarification,omitempty" jsonschema:"whether the reply needs more information"`
	Questions          []string `json:"questions,omitempty" jsonschema:"clarifying questions"`
}

// DraftReply generates a reply to messageID in the sender's style and saves
// it as a Gmail draft in the same thread. Generation problems never fail the
// call; only validation, authorization and draft creation errors do.
func (s *Service) DraftReply(ctx context.Context, messageID string) (Reply, error) {
	if err := s.mail.Connected(ctx); err != nil {
		return Reply{}, upstream("mail.Connected", err)
	}

	messageID = strings.TrimSpace(messageID)
	if messageID == "" {
		return Reply{}, fmt.Errorf("%w: messageId required", ErrValidation)
	}

	original, err := s.mail.GetMessageMetadata(ctx, messageID)
	if err != nil {
		return Reply{}, upstream("mail.GetMessageMetadata", err)
	}

	headers := headerMap(original)
	subject := headers["subject"]
	if subject == "" {
		subject = noSubject
	}
	replyTo := parseEmailAddress(headers["from"]).Email
	threadID := original.ThreadId
	signature := s.cfg.Signature()

	out := s.gen.Generate(ctx, draft.Request{
		MessageID:      messageID,
		ThreadID:       threadID,
		Subject:        subject,
		ThreadContext:  s.threadContext(ctx, messageID, threadID, original.Snippet),
		StyleDirective: style.Directive(s.profile(messageID, replyTo), style.DirectiveDefaults(signature)),
		Signature:      signature,
	})

	subjectOut := strings.TrimSpace(out.Subject)
	if subjectOut == "" {
		subjectOut = draft.ReplySubject(subject)
	}
	bodyOut := strings.TrimSpace(out.Body)
	if utf8.RuneCountInString(bodyOut) < s.cfg.MinBodyChars {
		log.Printf("assistant: draft body for message %s thread %s below %d chars, using acknowledgment", messageID, threadID, s.cfg.MinBodyChars)
		bodyOut = draft.GenericBody(signature)
	}

	var to []*mail.Address
	if replyTo != "" {
		to = []*mail.Address{{Address: replyTo}}
	}
	raw, err := buildReply(replyMessage{
		To:        to,
		Subject:   subjectOut,
		MessageID: headers["message-id"],
		Refs:      headers["references"],
		Body:      bodyOut,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("buildReply failed: %w", err)
	}

	d, err := s.mail.CreateDraft(ctx, threadID, raw)
	if err != nil {
		return Reply{}, upstream("mail.CreateDraft", err)
	}

	if err := s.labelMessage(ctx, messageID); err != nil {
		log.Printf("assistant: labeling message %s thread %s failed: %v", messageID, threadID, err)
	}

	return Reply{
		DraftID:            d.Id,
		ThreadID:           threadID,
		Subject:            subjectOut,
		Body:               bodyOut,
		NeedsClarification: out.NeedsClarification,
		Questions:          out.Questions,
	}, nil
}

// profile looks up the stored style of the sender. Lookup failures only cost
// personalization.
func (s *Service) profile(messageID, sender string) *style.Profile {
	if sender == "" {
		return nil
	}

	p, err := s.profiles.Get(sender)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("assistant: profile lookup for message %s failed: %v", messageID, err)
		}
		return nil
	}
	return p
}

// threadContext renders the recent thread, falling back to the snippet when the
// thread cannot be fetched or has no readable text.
func (s *Service) threadContext(ctx context.Context, messageID, threadID, snippet string) string {
	th, err := s.mail.GetThread(ctx, threadID)
	if err != nil {
		log.Printf("assistant: thread fetch for message %s thread %s failed, using snippet: %v", messageID, threadID, err)
		return snippet
	}

	text := thread.Build(th.Messages, s.cfg.ContextMessages)
	if text == "" {
		return snippet
	}
	return text
}
