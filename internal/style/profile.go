package style

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// DefaultLanguage is assigned to new profiles and used when a stored tag is not parseable.
const DefaultLanguage = "en"

// Profile is the learned style of one sender.
type Profile struct {
	SenderKey         string    `json:"sender_key"`
	PreferredTone     string    `json:"preferred_tone"`
	PreferredLanguage string    `json:"preferred_language"`
	Greeting          string    `json:"greeting,omitempty"`
	Closing           string    `json:"closing,omitempty"`
	MustUseTerms      string    `json:"must_use_terms,omitempty"`
	AverageLength     int       `json:"average_length"`
	EditCount         int       `json:"edit_count"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NormalizeKey turns a sender identity into a profile key.
// "Jane <Jane@Example.com>" and "jane@example.com" map to the same key.
func NormalizeKey(sender string) string {
	sender = strings.TrimSpace(sender)
	if start := strings.LastIndex(sender, "<"); start != -1 {
		if end := strings.Index(sender[start:], ">"); end != -1 {
			sender = sender[start+1 : start+end]
		}
	}

	return strings.ToLower(strings.TrimSpace(sender))
}

// MergeTerms unions two comma separated term lists, keeping first-seen order.
func MergeTerms(prev, next string) string {
	seen := make(map[string]struct{})
	var terms []string

	for _, list := range []string{prev, next} {
		for _, term := range strings.Split(list, ",") {
			term = strings.TrimSpace(term)
			if term == "" {
				continue
			}
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			terms = append(terms, term)
		}
	}

	return strings.Join(terms, ", ")
}

// Merge applies freshly extracted signals to an existing profile.
// A nil existing profile starts a new one with a single recorded edit.
func Merge(existing *Profile, key string, s Signals) Profile {
	if existing == nil {
		return Profile{
			SenderKey:         NormalizeKey(key),
			PreferredTone:     s.Tone(),
			PreferredLanguage: DefaultLanguage,
			Greeting:          s.Greeting,
			Closing:           s.Closing,
			MustUseTerms:      MergeTerms("", s.MustUseTerms),
			AverageLength:     s.TargetLength,
			EditCount:         1,
			UpdatedAt:         time.Now().UTC(),
		}
	}

	p := *existing
	p.SenderKey = NormalizeKey(key)
	p.PreferredTone = s.Tone()
	p.PreferredLanguage = normalizeLanguage(p.PreferredLanguage)
	if s.Greeting != "" {
		p.Greeting = s.Greeting
	}
	if s.Closing != "" {
		p.Closing = s.Closing
	}
	p.MustUseTerms = MergeTerms(p.MustUseTerms, s.MustUseTerms)
	p.AverageLength = s.TargetLength
	p.EditCount++
	p.UpdatedAt = time.Now().UTC()

	return p
}

// Defaults fill the directive where a profile has nothing to say.
type Defaults struct {
	Tone         string
	Greeting     string
	Closing      string
	TargetLength int
}

// DirectiveDefaults returns the stock directive values for the given signature.
func DirectiveDefaults(signature string) Defaults {
	return Defaults{
		Tone:         "concise, calm, polite",
		Greeting:     "Hi {first}",
		Closing:      signature,
		TargetLength: 120,
	}
}

// Directive renders a profile into the style instruction used in the prompt.
// A nil profile renders the defaults.
func Directive(p *Profile, d Defaults) string {
	if p == nil {
		p = &Profile{}
	}

	tone := or(p.PreferredTone, d.Tone)
	greeting := or(p.Greeting, d.Greeting)
	closing := or(p.Closing, d.Closing)
	length := d.TargetLength
	if p.AverageLength > 0 {
		length = p.AverageLength
	}

	parts := []string{
		fmt.Sprintf("Language: %s.", normalizeLanguage(p.PreferredLanguage)),
		fmt.Sprintf("Tone: %s.", tone),
		fmt.Sprintf("Greeting: %q.", greeting),
		fmt.Sprintf("Closing: %q.", closing),
	}
	if p.MustUseTerms != "" {
		parts = append(parts, fmt.Sprintf("Must-include phrases: %s.", p.MustUseTerms))
	}
	parts = append(parts, fmt.Sprintf("Target length ~%d words.", length))

	return strings.Join(parts, " ")
}

func normalizeLanguage(tag string) string {
	if tag == "" {
		return DefaultLanguage
	}

	t, err := language.Parse(tag)
	if err != nil {
		return DefaultLanguage
	}

	return t.String()
}

func or(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
