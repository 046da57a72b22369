// Package format turns HTML mail bodies into plain text suitable for prompts.
package format

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	styleBlockRe  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	scriptBlockRe = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	lineBreakRe   = regexp.MustCompile(`(?i)<br\s*/?>`)
	paragraphEnd  = regexp.MustCompile(`(?i)</p\s*>`)

	stripAll = bluemonday.StrictPolicy()
)

// HTMLToText renders an HTML body as plain text: style and script blocks are
// dropped, <br> becomes a newline, </p> a blank line, all other tags are
// removed and entities decoded.
func HTMLToText(raw string) string {
	s := string(UnwrapTableLayout([]byte(raw)))

	s = styleBlockRe.ReplaceAllString(s, "")
	s = scriptBlockRe.ReplaceAllString(s, "")
	s = lineBreakRe.ReplaceAllString(s, "\n")
	s = paragraphEnd.ReplaceAllString(s, "\n\n")

	// the policy escapes what it keeps, so decode afterwards
	s = html.UnescapeString(stripAll.Sanitize(s))
	s = strings.ReplaceAll(s, "\u00a0", " ")

	return strings.TrimSpace(s)
}
