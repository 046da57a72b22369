// Package style infers a sender's preferred writing style from edited drafts
// and renders it into a directive for the generation prompt.
package style

import (
	"regexp"
	"strings"
)

const (
	minTargetLength = 60
	maxTargetLength = 180
	conciseWords    = 120
)

var (
	greetingRe = regexp.MustCompile(`(?i)\A(?:hi|hello|dear)[^\n]{0,40}`)
	closingRe  = regexp.MustCompile(`(?i)\n(?:best|regards|thanks)[^\n]{0,40}\z`)
	pleaseRe   = regexp.MustCompile(`(?i)\bplease\b`)
	thanksRe   = regexp.MustCompile(`(?i)\bthank(?:s| you)\b`)
)

// Signals are heuristics derived from a single edited text sample.
type Signals struct {
	TargetLength int
	Greeting     string
	Closing      string
	MustUseTerms string
	ToneTags     []string
}

// Tone joins the tone tags in the order they were detected.
func (s Signals) Tone() string {
	return strings.Join(s.ToneTags, ", ")
}

// ExtractSignals derives tone, greeting, closing and length hints from text.
// Fields that do not match are left empty.
func ExtractSignals(text string) Signals {
	words := len(strings.Fields(text))
	hasThanks := thanksRe.MatchString(text)

	s := Signals{
		TargetLength: clamp(words, minTargetLength, maxTargetLength),
		Greeting:     strings.TrimSpace(greetingRe.FindString(strings.TrimLeft(text, " \t\r\n"))),
		Closing:      strings.TrimSpace(closingRe.FindString(strings.TrimRight(text, " \t\r\n"))),
	}

	if pleaseRe.MatchString(text) || hasThanks {
		s.ToneTags = append(s.ToneTags, "polite")
	}
	if !strings.Contains(text, "!") {
		s.ToneTags = append(s.ToneTags, "calm")
	}
	if words < conciseWords {
		s.ToneTags = append(s.ToneTags, "concise")
	}

	if hasThanks {
		s.MustUseTerms = "Thanks"
	}

	return s
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
