package enrichment

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

var disallowed = regexp.MustCompile(`[^\p{L}\p{M}\p{N}\s._-]`)

// CleanText prepares chunk content for the extraction services: markup is stripped,
// characters other than letters, combining marks, digits, whitespace, '.', '_' and
// '-' are removed, the result is lowercased and runs of whitespace collapse to one
// space.
func CleanText(content string) string {
	text := stripHTML(content)
	text = norm.NFKC.String(text)
	text = disallowed.ReplaceAllString(text, "")
	text = strings.ToLower(text)
	return strings.Join(strings.Fields(text), " ")
}

// stripHTML keeps only text tokens, separating adjacent elements with a space so
// table cells don't run together.
func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input; either way keep what was read.
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			b.WriteByte(' ')
		}
	}
}
