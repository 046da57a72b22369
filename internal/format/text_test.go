package format_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hal9000y/gmail-drafter/internal/format"
)

func TestHTMLToText(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "paragraphs and line breaks",
			input:    `<p>Hello Anna,</p><p>See you<br>tomorrow<br/>at noon.</p>`,
			expected: "Hello Anna,\n\nSee you\ntomorrow\nat noon.",
		},
		{
			name:     "style and script blocks removed",
			input:    `<html><head><style>p { color: red; }</style></head><body><script>alert("x")</script><p>Visible</p></body></html>`,
			expected: "Visible",
		},
		{
			name:     "entities decoded",
			input:    `<div>Fish &amp; chips&nbsp;at 5 &lt;sharp&gt; &#39;ok&#39;</div>`,
			expected: "Fish & chips at 5 <sharp> 'ok'",
		},
		{
			name:     "layout table rows become lines",
			input:    `<table id="main"><tr><td>Content line 1</td></tr><tr><td>Content line 2</td></tr></table>`,
			expected: "Content line 1\nContent line 2",
		},
		{
			name:     "plain text passes through",
			input:    "no markup at all",
			expected: "no markup at all",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, format.HTMLToText(tc.input))
		})
	}
}

func TestUnwrapTableLayout(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single_column_layout_table",
			input:    `<table id="main"><tbody><tr><td>Content line 1</td></tr><tr><td>Content line 2</td></tr></tbody></table>`,
			expected: "<html><head></head><body>Content line 1\nContent line 2\n</body></html>",
		},
		{
			name:     "nested_single_column_tables",
			input:    `<table><tr><td><table><tr><td><p>Nested content</p></td></tr></table></td></tr></table>`,
			expected: "<html><head></head><body><p>Nested content</p>\n</body></html>",
		},
		{
			name:     "data_table_with_headers",
			input:    `<table><tr><th>Name</th></tr><tr><td>Alice</td></tr></table>`,
			expected: "<html><head></head><body><table><tbody><tr><th>Name</th></tr><tr><td>Alice</td></tr></tbody></table></body></html>",
		},
		{
			name:     "multi_column_data_table",
			input:    `<table><tr><td>Cell 1</td><td>Cell 2</td></tr></table>`,
			expected: "<html><head></head><body><table><tbody><tr><td>Cell 1</td><td>Cell 2</td></tr></tbody></table></body></html>",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, string(format.UnwrapTableLayout([]byte(tc.input))))
		})
	}
}
