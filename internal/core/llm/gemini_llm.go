package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/markdave123-py/layoutchunker/internal/core"
)

const defaultGeminiModel = "gemini-1.5-flash"

type GeminiLLM struct {
	client    *genai.Client
	modelName string
}

func NewGeminiLLM(ctx context.Context, apiKey, modelName string) (*GeminiLLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key not set")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = defaultGeminiModel
	}
	return &GeminiLLM{client: cl, modelName: modelName}, nil
}

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Complete sends the conversation to Gemini. System messages become the system
// instruction, earlier turns become chat history and the last message is sent.
func (g *GeminiLLM) Complete(ctx context.Context, messages []core.Message) (string, error) {
	system, history, last, err := splitConversation(messages)
	if err != nil {
		return "", core.Upstream("gemini complete", err)
	}

	m := g.client.GenerativeModel(g.modelName)
	if system != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
	}

	cs := m.StartChat()
	for _, h := range history {
		role := "user"
		if h.Role == core.RoleAssistant {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(h.Content)}})
	}

	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return "", core.Upstream("gemini complete", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", core.Upstream("gemini complete", fmt.Errorf("empty response"))
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}

// splitConversation separates system text, prior turns and the final user turn.
func splitConversation(messages []core.Message) (system string, history []core.Message, last string, err error) {
	var sys []string
	var turns []core.Message
	for _, m := range messages {
		if m.Role == core.RoleSystem {
			sys = append(sys, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	if len(turns) == 0 {
		return "", nil, "", fmt.Errorf("no user message")
	}
	final := turns[len(turns)-1]
	if final.Role != core.RoleUser {
		return "", nil, "", fmt.Errorf("last message must come from the user, got %q", final.Role)
	}
	return strings.Join(sys, "\n\n"), turns[:len(turns)-1], final.Content, nil
}

var _ core.CompletionProvider = (*GeminiLLM)(nil)
