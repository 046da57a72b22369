// Package thread rebuilds the readable context of a Gmail conversation.
package thread

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/gmail-drafter/internal/format"
)

// DefaultMessages is how many trailing messages of a thread are rendered.
const DefaultMessages = 4

const delimiter = "\n\n====================\n\n"

var (
	quoteMarkerRe = regexp.MustCompile(`^\s*>`)
	attributionRe = regexp.MustCompile(`(?i)^On .*wrote:$`)
	forwardHdrRe  = regexp.MustCompile(`(?i)^From:\s?`)
	lineSplitRe   = regexp.MustCompile(`\r?\n`)
)

// Message is the cleaned, ephemeral view of one message in a thread.
type Message struct {
	Sender   string
	Date     string
	BodyText string
}

// Build renders the last n messages of a thread, oldest first.
func Build(msgs []*gmail.Message, n int) string {
	return Render(Collect(msgs, n))
}

// Collect cleans the last n messages and drops those left without text.
func Collect(msgs []*gmail.Message, n int) []Message {
	if n <= 0 {
		n = DefaultMessages
	}
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}

	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if m == nil || m.Payload == nil {
			continue
		}

		text := StripQuoted(ExtractText(m.Payload))
		if text == "" {
			continue
		}

		out = append(out, Message{
			Sender:   header(m.Payload, "From"),
			Date:     header(m.Payload, "Date"),
			BodyText: text,
		})
	}

	return out
}

// Render joins messages into one context block.
func Render(msgs []Message) string {
	chunks := make([]string, 0, len(msgs))
	for _, m := range msgs {
		chunks = append(chunks, fmt.Sprintf("From: %s\nDate: %s\n---\n%s", m.Sender, m.Date, m.BodyText))
	}

	return strings.TrimSpace(strings.Join(chunks, delimiter))
}

// ExtractText returns the readable body of a part tree. A text/plain part
// anywhere in the tree wins unless it is blank; otherwise the first text/html
// part is stripped of markup; otherwise the first non-empty body found
// depth-first is used.
func ExtractText(p *gmail.MessagePart) string {
	if part := findPart(p, "text/plain"); part != nil {
		if text := decodeBase64URL(part.Body.Data); strings.TrimSpace(text) != "" {
			return text
		}
	}
	if part := findPart(p, "text/html"); part != nil {
		if text := format.HTMLToText(decodeBase64URL(part.Body.Data)); strings.TrimSpace(text) != "" {
			return text
		}
	}
	if part := findPart(p, ""); part != nil {
		return decodeBase64URL(part.Body.Data)
	}

	return ""
}

// StripQuoted cuts the text at the first line that starts quoted history:
// a quote marker, an "On ... wrote:" attribution or a forwarded header block.
func StripQuoted(text string) string {
	var kept []string
	for _, line := range lineSplitRe.Split(text, -1) {
		trimmed := strings.TrimSpace(line)
		if quoteMarkerRe.MatchString(line) || attributionRe.MatchString(trimmed) || forwardHdrRe.MatchString(trimmed) {
			break
		}
		kept = append(kept, line)
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// findPart walks the tree depth-first for a part with data whose MIME type
// starts with mimeType. An empty mimeType matches any part with data.
func findPart(p *gmail.MessagePart, mimeType string) *gmail.MessagePart {
	if p == nil {
		return nil
	}
	if p.Body != nil && p.Body.Data != "" && strings.HasPrefix(strings.ToLower(p.MimeType), mimeType) {
		return p
	}
	for _, child := range p.Parts {
		if found := findPart(child, mimeType); found != nil {
			return found
		}
	}
	return nil
}

func header(p *gmail.MessagePart, name string) string {
	for _, h := range p.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

func decodeBase64URL(data string) string {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return data
		}
	}
	return string(decoded)
}
