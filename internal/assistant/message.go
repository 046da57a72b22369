package assistant

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/emersion/go-message/mail"
)

var lineBreakRe = regexp.MustCompile(`\r?\n`)

type replyMessage struct {
	To        []*mail.Address
	Subject   string
	MessageID string
	Refs      string
	Body      string
}

// buildReply assembles a plain text RFC 822 reply with CRLF line endings.
// Threading headers are only written when the original carried a Message-ID
// or References.
func buildReply(m replyMessage) ([]byte, error) {
	var h mail.Header
	if len(m.To) > 0 {
		h.SetAddressList("To", m.To)
	} else {
		h.Set("To", "undisclosed-recipients:;")
	}
	h.SetSubject(m.Subject)

	if inReplyTo := msgIDs(m.MessageID); len(inReplyTo) > 0 {
		h.SetMsgIDList("In-Reply-To", inReplyTo[:1])
	}
	if refs := msgIDs(m.Refs + " " + m.MessageID); len(refs) > 0 {
		h.SetMsgIDList("References", refs)
	}

	h.SetContentType("text/plain", map[string]string{"charset": "UTF-8"})
	h.Set("Content-Transfer-Encoding", "8bit")

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("mail.CreateSingleInlineWriter failed: %w", err)
	}
	if _, err := io.WriteString(w, lineBreakRe.ReplaceAllString(m.Body, "\r\n")+"\r\n"); err != nil {
		return nil, fmt.Errorf("write body failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close body failed: %w", err)
	}

	return buf.Bytes(), nil
}

// msgIDs splits a Message-ID or References value into bare ids. Values that do
// not parse as msg-id lists still contribute their space separated tokens.
func msgIDs(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}

	var h mail.Header
	h.Set("References", v)
	if ids, err := h.MsgIDList("References"); err == nil && len(ids) > 0 {
		return ids
	}

	var ids []string
	for _, f := range strings.Fields(v) {
		if id := strings.Trim(f, "<>"); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
