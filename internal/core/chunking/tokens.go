package chunking

import (
	"strings"
	"unicode"
)

// CountTokens is the token proxy used for every size decision: the number of
// whitespace-delimited words in s. Swapping in a real tokenizer moves chunk boundaries.
func CountTokens(s string) int {
	return len(strings.Fields(s))
}

// tokenCounter tracks CountTokens of a string built by appending pieces, so a
// candidate can be measured without re-scanning everything appended so far.
type tokenCounter struct {
	n      int
	inWord bool
}

func (c *tokenCounter) add(s string) {
	for _, r := range s {
		if unicode.IsSpace(r) {
			c.inWord = false
		} else if !c.inWord {
			c.inWord = true
			c.n++
		}
	}
}

// with returns the count after appending pieces, leaving c untouched.
func (c tokenCounter) with(pieces ...string) int {
	for _, p := range pieces {
		c.add(p)
	}
	return c.n
}
