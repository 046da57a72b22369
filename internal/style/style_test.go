package style_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/gmail-drafter/internal/style"
)

func TestExtractSignals(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		expected style.Signals
	}{
		{
			name: "short thankful note with exclamation",
			text: "Hi, thanks so much! Best, A",
			expected: style.Signals{
				TargetLength: 60,
				Greeting:     "Hi, thanks so much! Best, A",
				MustUseTerms: "Thanks",
				ToneTags:     []string{"polite", "concise"},
			},
		},
		{
			name: "greeting and closing lines",
			text: "Hello Maria,\n\nPlease find the report attached.\n\nRegards, Tom\n",
			expected: style.Signals{
				TargetLength: 60,
				Greeting:     "Hello Maria,",
				Closing:      "Regards, Tom",
				ToneTags:     []string{"polite", "calm", "concise"},
			},
		},
		{
			name: "no recognizable patterns",
			text: "Sure. Works for me",
			expected: style.Signals{
				TargetLength: 60,
				ToneTags:     []string{"calm", "concise"},
			},
		},
		{
			name: "empty text",
			text: "",
			expected: style.Signals{
				TargetLength: 60,
				ToneTags:     []string{"calm", "concise"},
			},
		},
		{
			name: "thank you counts as gratitude",
			text: "Dear team\nThank you for the quick turnaround",
			expected: style.Signals{
				TargetLength: 60,
				Greeting:     "Dear team",
				MustUseTerms: "Thanks",
				ToneTags:     []string{"polite", "calm", "concise"},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, style.ExtractSignals(tc.text))
		})
	}
}

func TestExtractSignalsTargetLengthClamped(t *testing.T) {
	cases := []struct {
		words    int
		expected int
	}{
		{words: 0, expected: 60},
		{words: 10, expected: 60},
		{words: 60, expected: 60},
		{words: 95, expected: 95},
		{words: 180, expected: 180},
		{words: 10000, expected: 180},
	}

	for _, tc := range cases {
		text := strings.TrimSpace(strings.Repeat("word ", tc.words))
		s := style.ExtractSignals(text)
		assert.Equal(t, tc.expected, s.TargetLength, "words=%d", tc.words)
		assert.GreaterOrEqual(t, s.TargetLength, 60)
		assert.LessOrEqual(t, s.TargetLength, 180)
	}
}

func TestExtractSignalsLongTextIsNotConcise(t *testing.T) {
	s := style.ExtractSignals(strings.Repeat("word ", 150))
	assert.Equal(t, []string{"calm"}, s.ToneTags)
	assert.Equal(t, "calm", s.Tone())
}

func TestMergeTerms(t *testing.T) {
	cases := []struct {
		prev, next string
		expected   string
	}{
		{prev: "", next: "", expected: ""},
		{prev: "", next: "Thanks", expected: "Thanks"},
		{prev: "Thanks", next: "", expected: "Thanks"},
		{prev: "Thanks, Cheers", next: "Cheers,Thanks, Best", expected: "Thanks, Cheers, Best"},
		{prev: " a , ,b", next: "b,c,a", expected: "a, b, c"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, style.MergeTerms(tc.prev, tc.next), "prev=%q next=%q", tc.prev, tc.next)
	}
}

func TestMergeTermsTwiceKeepsEachTermOnce(t *testing.T) {
	merged := style.MergeTerms("Thanks, Cheers", "Cheers, Kind regards")
	merged = style.MergeTerms(merged, "Kind regards, Thanks, Talk soon")

	assert.Equal(t, "Thanks, Cheers, Kind regards, Talk soon", merged)
}

func TestMergeCreatesAndUpdatesProfile(t *testing.T) {
	first := style.Merge(nil, "A@B.com", style.ExtractSignals("Hi, thanks so much! Best, A"))

	assert.Equal(t, "a@b.com", first.SenderKey)
	assert.Equal(t, 1, first.EditCount)
	assert.Equal(t, "Thanks", first.MustUseTerms)
	assert.Contains(t, first.PreferredTone, "polite")
	assert.Equal(t, "en", first.PreferredLanguage)
	assert.Equal(t, 60, first.AverageLength)

	second := style.Merge(&first, "a@b.com", style.ExtractSignals(strings.Repeat("ok ", 90)+"\nBest, Alice"))

	assert.Equal(t, 2, second.EditCount)
	assert.Equal(t, "Thanks", second.MustUseTerms, "prior terms must survive")
	assert.Equal(t, "calm, concise", second.PreferredTone)
	assert.Equal(t, "Hi, thanks so much! Best, A", second.Greeting, "greeting kept when new sample has none")
	assert.Equal(t, "Best, Alice", second.Closing)
	assert.Equal(t, 92, second.AverageLength)
	assert.Equal(t, 1, first.EditCount, "existing profile must not be mutated")
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "jane@example.com", style.NormalizeKey("Jane Doe <Jane@Example.COM>"))
	assert.Equal(t, "jane@example.com", style.NormalizeKey("  JANE@example.com "))
	assert.Equal(t, "", style.NormalizeKey(""))
}

func TestDirective(t *testing.T) {
	defaults := style.DirectiveDefaults("Regards,\nKanishk")

	t.Run("defaults without profile", func(t *testing.T) {
		d := style.Directive(nil, defaults)
		assert.Equal(t,
			`Language: en. Tone: concise, calm, polite. Greeting: "Hi {first}". Closing: "Regards,\nKanishk". Target length ~120 words.`,
			d)
	})

	t.Run("profile values win", func(t *testing.T) {
		d := style.Directive(&style.Profile{
			PreferredTone:     "polite, calm",
			PreferredLanguage: "de-de",
			Greeting:          "Hallo Anna",
			Closing:           "Viele Grüße",
			MustUseTerms:      "Thanks, Cheers",
			AverageLength:     75,
		}, defaults)

		assert.Contains(t, d, "Language: de-DE.")
		assert.Contains(t, d, "Tone: polite, calm.")
		assert.Contains(t, d, `Greeting: "Hallo Anna".`)
		assert.Contains(t, d, `Closing: "Viele Grüße".`)
		assert.Contains(t, d, "Must-include phrases: Thanks, Cheers.")
		assert.Contains(t, d, "Target length ~75 words.")
	})

	t.Run("unparseable language falls back", func(t *testing.T) {
		d := style.Directive(&style.Profile{PreferredLanguage: "not a tag!"}, defaults)
		require.True(t, strings.HasPrefix(d, "Language: en."), d)
	})
}

func TestEditDistance(t *testing.T) {
	cases := []struct {
		a, b     string
		expected int
	}{
		{a: "", b: "", expected: 0},
		{a: "", b: "hello", expected: 5},
		{a: "hello", b: "", expected: 5},
		{a: "kitten", b: "sitting", expected: 3},
		{a: "flaw", b: "lawn", expected: 2},
		{a: "Grüße", b: "Grüsse", expected: 2},
		{a: "same text", b: "same text", expected: 0},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, style.EditDistance(tc.a, tc.b), "a=%q b=%q", tc.a, tc.b)
		assert.Equal(t, tc.expected, style.EditDistance(tc.b, tc.a), "symmetry a=%q b=%q", tc.a, tc.b)
	}
}
