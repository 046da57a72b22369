package draft

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fenceRe     = regexp.MustCompile("```json|```")
	wordRe      = regexp.MustCompile(`\w+`)
	lineBreakRe = regexp.MustCompile(`\r?\n`)
)

// Unfence removes markdown code fence markers.
func Unfence(s string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(s, ""))
}

// Parse pulls a draft out of raw backend text. Surrounding prose and code
// fences are tolerated; the outermost {...} block is decoded. The draft is
// valid only when it carries a string body.
func Parse(raw string) (Result, bool) {
	t := Unfence(raw)
	if start, end := strings.Index(t, "{"), strings.LastIndex(t, "}"); start >= 0 && end > start {
		t = t[start : end+1]
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(t), &obj); err != nil {
		return Result{}, false
	}

	body, ok := obj["body"].(string)
	if !ok {
		return Result{}, false
	}

	res := Result{Body: body}
	res.Subject, _ = obj["subject"].(string)
	if v, ok := obj["needs_clarification"].(bool); ok {
		res.NeedsClarification = &v
	}
	if qs, ok := obj["questions"].([]any); ok {
		for _, q := range qs {
			if s, ok := q.(string); ok {
				res.Questions = append(res.Questions, s)
			}
		}
	}

	return res, true
}

// WordCount counts word-character runs.
func WordCount(s string) int {
	return len(wordRe.FindAllString(s, -1))
}

// ReplySubject prefixes subject with "Re: " unless it already is a reply.
func ReplySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}

// GenericBody is the acknowledgment used when nothing better is available.
func GenericBody(signature string) string {
	return "Hello,\r\n\r\n" +
		"Thanks for your email. I’ve noted the request and will follow up with details shortly.\r\n\r\n" +
		signature + "\r\n"
}

// Salvage builds a best-effort draft from raw backend text. Text that already
// parsed as a structured draft was judged insufficient and is not reused.
func Salvage(req Request, raw string) Result {
	body := ""
	if _, structured := Parse(raw); !structured {
		body = strings.TrimSpace(toCRLF(Unfence(raw)))
	}
	if body == "" {
		body = GenericBody(req.Signature)
	}

	return Result{
		Subject: ReplySubject(req.Subject),
		Body:    body,
	}
}

func toCRLF(s string) string {
	return lineBreakRe.ReplaceAllString(s, "\r\n")
}
