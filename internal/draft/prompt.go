package draft

import (
	"fmt"
	"strings"
)

const (
	firstAttempt = "Write 80–140 words in the body. Include greeting and sign-off."
	retryAttempt = "Your previous body was too short. Rewrite to 100–160 words, JSON only."
)

func systemPrompt(req Request, length string) string {
	return strings.Join([]string{
		"You are a professional email assistant.",
		"Write concise, polite, factual replies.",
		"Never invent facts; if information is missing, set needs_clarification=true and include up to 3 short questions.",
		"Style: " + req.StyleDirective,
		fmt.Sprintf("If the style doesn't include a closing, add: %q.", req.Signature),
		`Return ONLY valid JSON: {"subject":"...","body":"...","needs_clarification":bool?,"questions":string[]?}`,
		length,
	}, " ")
}

func userPrompt(subject, threadContext string, limit int) string {
	return strings.Join([]string{
		"Original Subject: " + subject,
		"Email thread context (latest last):",
		TailChars(threadContext, limit),
	}, "\n\n")
}

// TailChars keeps the last limit characters of s.
func TailChars(s string, limit int) string {
	r := []rune(s)
	if limit <= 0 || len(r) <= limit {
		return s
	}
	return string(r[len(r)-limit:])
}
