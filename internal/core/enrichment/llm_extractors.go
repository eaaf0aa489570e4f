package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/markdave123-py/layoutchunker/internal/core"
)

const (
	keyPhrasePrompt = "Extract the key phrases of the passage. " +
		"Reply with a JSON array of strings only, most important first, at most %d items."
	entityPrompt = "Extract the named entities (people, organizations, locations, products, dates) in the passage. " +
		"Reply with a JSON array of strings only, at most %d items."
)

// LLMKeyPhraseExtractor implements core.KeyPhraseExtractor with a completion model.
type LLMKeyPhraseExtractor struct {
	llm      core.CompletionProvider
	maxItems int
}

func NewLLMKeyPhraseExtractor(llm core.CompletionProvider, maxItems int) *LLMKeyPhraseExtractor {
	if maxItems <= 0 {
		maxItems = 10
	}
	return &LLMKeyPhraseExtractor{llm: llm, maxItems: maxItems}
}

func (e *LLMKeyPhraseExtractor) ExtractKeyPhrases(ctx context.Context, text string) ([]string, error) {
	return extractList(ctx, e.llm, fmt.Sprintf(keyPhrasePrompt, e.maxItems), text, e.maxItems)
}

// LLMEntityExtractor implements core.EntityExtractor with a completion model.
type LLMEntityExtractor struct {
	llm      core.CompletionProvider
	maxItems int
}

func NewLLMEntityExtractor(llm core.CompletionProvider, maxItems int) *LLMEntityExtractor {
	if maxItems <= 0 {
		maxItems = 20
	}
	return &LLMEntityExtractor{llm: llm, maxItems: maxItems}
}

func (e *LLMEntityExtractor) ExtractEntities(ctx context.Context, text string) ([]string, error) {
	return extractList(ctx, e.llm, fmt.Sprintf(entityPrompt, e.maxItems), text, e.maxItems)
}

func extractList(ctx context.Context, llm core.CompletionProvider, system, text string, maxItems int) ([]string, error) {
	reply, err := llm.Complete(ctx, []core.Message{
		{Role: core.RoleSystem, Content: system},
		{Role: core.RoleUser, Content: text},
	})
	if err != nil {
		return nil, err
	}
	return parseStringList(reply, maxItems)
}

// parseStringList decodes a JSON string array from a model reply, tolerating code
// fences and prose around the array. Items are trimmed and de-duplicated in order.
func parseStringList(reply string, maxItems int) ([]string, error) {
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON array in reply %q", truncate(reply, 80))
	}

	var items []string
	if err := json.Unmarshal([]byte(reply[start:end+1]), &items); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}

	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		key := strings.ToLower(it)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
		if len(out) == maxItems {
			break
		}
	}
	return out, nil
}

// truncate shortens s to n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
