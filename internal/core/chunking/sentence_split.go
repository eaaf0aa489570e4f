package chunking

import "strings"

const sentenceDelimiter = ". "

// splitSentences breaks text on ". ", keeping the period on every sentence but the last.
func splitSentences(text string) []string {
	parts := strings.Split(text, sentenceDelimiter)
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if i < len(parts)-1 {
			p += "."
		}
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// packSentences greedily groups sentences into pieces of at most target tokens,
// flushing before the sentence that would overflow. A sentence that alone exceeds
// target becomes its own piece.
func packSentences(sentences []string, target int) []string {
	var (
		out  []string
		cur  []string
		size int
	)
	for _, s := range sentences {
		n := CountTokens(s)
		if len(cur) > 0 && size+n > target {
			out = append(out, strings.Join(cur, " "))
			cur, size = cur[:0], 0
		}
		cur = append(cur, s)
		size += n
	}
	if len(cur) > 0 {
		out = append(out, strings.Join(cur, " "))
	}
	return out
}

func splitText(text string, target int) []string {
	return packSentences(splitSentences(text), target)
}
