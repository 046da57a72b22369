package assistant

import (
	"strings"

	"github.com/emersion/go-message/mail"
	"google.golang.org/api/gmail/v1"

	// charset decoders for encoded display names
	_ "github.com/emersion/go-message/charset"
)

const noSubject = "(no subject)"

// EmailAddress represents an email address with optional display name.
type EmailAddress struct {
	Name  string `json:"name,omitempty" jsonschema:"the display name"`
	Email string `json:"email" jsonschema:"the email address"`
}

// MessageSummary contains essential message metadata.
type MessageSummary struct {
	ID              string         `json:"id" jsonschema:"message ID"`
	ThreadID        string         `json:"thread_id" jsonschema:"thread ID"`
	Timestamp       string         `json:"timestamp" jsonschema:"message timestamp"`
	From            EmailAddress   `json:"from" jsonschema:"sender information"`
	To              []EmailAddress `json:"to,omitempty" jsonschema:"recipients"`
	CC              []EmailAddress `json:"cc,omitempty" jsonschema:"CC recipients"`
	Subject         string         `json:"subject" jsonschema:"email subject"`
	Snippet         string         `json:"snippet" jsonschema:"message preview"`
	MessageIDHeader string         `json:"message_id_header,omitempty" jsonschema:"RFC 822 Message-ID header"`
}

func extractMessageSummary(msg *gmail.Message) MessageSummary {
	summary := MessageSummary{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Snippet:  msg.Snippet,
		Subject:  noSubject,
	}

	if msg.Payload != nil && msg.Payload.Headers != nil {
		extractHeadersToSummary(msg.Payload.Headers, &summary)
	}

	return summary
}

func extractHeadersToSummary(headers []*gmail.MessagePartHeader, summary *MessageSummary) {
	for _, header := range headers {
		switch header.Name {
		case "From":
			summary.From = parseEmailAddress(header.Value)
		case "To":
			summary.To = parseEmailAddressList(header.Value)
		case "Cc":
			summary.CC = parseEmailAddressList(header.Value)
		case "Subject":
			if header.Value != "" {
				summary.Subject = header.Value
			}
		case "Date":
			summary.Timestamp = header.Value
		case "Message-ID", "Message-Id":
			summary.MessageIDHeader = strings.TrimSpace(header.Value)
		}
	}
}

// headerMap flattens message headers under lowercase names; the first
// occurrence of a name wins.
func headerMap(msg *gmail.Message) map[string]string {
	out := map[string]string{}
	if msg.Payload == nil {
		return out
	}
	for _, h := range msg.Payload.Headers {
		name := strings.ToLower(h.Name)
		if _, ok := out[name]; !ok {
			out[name] = h.Value
		}
	}
	return out
}

// parseEmailAddress reads a From-style header. Values the RFC 5322 parser
// rejects fall back to a lenient "Name <addr>" split.
func parseEmailAddress(from string) EmailAddress {
	from = strings.TrimSpace(from)
	if from == "" {
		return EmailAddress{}
	}

	if a, err := mail.ParseAddress(from); err == nil {
		return EmailAddress{Name: a.Name, Email: a.Address}
	}

	return lenientAddress(from)
}

func parseEmailAddressList(addresses string) []EmailAddress {
	if strings.TrimSpace(addresses) == "" {
		return nil
	}

	if list, err := mail.ParseAddressList(addresses); err == nil {
		result := make([]EmailAddress, 0, len(list))
		for _, a := range list {
			result = append(result, EmailAddress{Name: a.Name, Email: a.Address})
		}
		return result
	}

	parts := strings.Split(addresses, ",")
	result := make([]EmailAddress, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, lenientAddress(trimmed))
		}
	}

	return result
}

func lenientAddress(from string) EmailAddress {
	addr := EmailAddress{}

	if idx := strings.Index(from, "<"); idx != -1 {
		addr.Name = strings.TrimSpace(from[:idx])
		if endIdx := strings.Index(from[idx:], ">"); endIdx != -1 {
			addr.Email = strings.TrimSpace(from[idx+1 : idx+endIdx])
		}
	} else {
		addr.Email = strings.TrimSpace(from)
	}

	addr.Name = strings.Trim(addr.Name, "\"")

	return addr
}
