package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/markdave123-py/layoutchunker/internal/core"
)

const (
	defaultOllamaChatModel  = "llama3.2"
	defaultOllamaEmbedModel = "nomic-embed-text"
)

// OllamaClient serves both completions and embeddings from a local Ollama daemon.
type OllamaClient struct {
	client     *api.Client
	chatModel  string
	embedModel string
	keepAlive  *api.Duration
}

func NewOllama(host, chatModel, embedModel string) (*OllamaClient, error) {
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("ollama: parse host %q: %w", host, err)
	}
	if chatModel == "" {
		chatModel = defaultOllamaChatModel
	}
	if embedModel == "" {
		embedModel = defaultOllamaEmbedModel
	}
	return &OllamaClient{
		client:     api.NewClient(base, http.DefaultClient),
		chatModel:  chatModel,
		embedModel: embedModel,
		keepAlive:  &api.Duration{Duration: 30 * time.Minute},
	}, nil
}

func (o *OllamaClient) Complete(ctx context.Context, messages []core.Message) (string, error) {
	msgs := make([]api.Message, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, api.Message{Role: m.Role, Content: m.Content})
	}

	stream := false
	var reply string
	err := o.client.Chat(ctx, &api.ChatRequest{
		Model:     o.chatModel,
		Messages:  msgs,
		Stream:    &stream,
		KeepAlive: o.keepAlive,
	}, func(resp api.ChatResponse) error {
		reply += resp.Message.Content
		return nil
	})
	if err != nil {
		return "", core.Upstream("ollama chat", err)
	}
	return reply, nil
}

func (o *OllamaClient) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := o.client.Embeddings(ctx, &api.EmbeddingRequest{
		Model:     o.embedModel,
		Prompt:    text,
		KeepAlive: o.keepAlive,
	})
	if err != nil {
		return nil, core.Upstream("ollama embed", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, core.Upstream("ollama embed", fmt.Errorf("empty embedding"))
	}

	out := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		out[i] = float32(v)
	}
	return out, nil
}

var (
	_ core.CompletionProvider = (*OllamaClient)(nil)
	_ core.EmbeddingProvider  = (*OllamaClient)(nil)
)
