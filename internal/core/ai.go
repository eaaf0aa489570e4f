package core

import "context"

// Message roles accepted by CompletionProvider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type CompletionProvider interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

type KeyPhraseExtractor interface {
	ExtractKeyPhrases(ctx context.Context, text string) ([]string, error)
}

type EntityExtractor interface {
	ExtractEntities(ctx context.Context, text string) ([]string, error)
}
