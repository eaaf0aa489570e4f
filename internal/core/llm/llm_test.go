package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/layoutchunker/internal/core"
)

func TestSplitConversation(t *testing.T) {
	sys, hist, last, err := splitConversation([]core.Message{
		{Role: core.RoleSystem, Content: "be brief"},
		{Role: core.RoleUser, Content: "hi"},
		{Role: core.RoleAssistant, Content: "hello"},
		{Role: core.RoleUser, Content: "summarize"},
	})
	require.NoError(t, err)
	assert.Equal(t, "be brief", sys)
	assert.Len(t, hist, 2)
	assert.Equal(t, "summarize", last)

	_, _, _, err = splitConversation([]core.Message{{Role: core.RoleSystem, Content: "x"}})
	assert.Error(t, err)

	_, _, _, err = splitConversation([]core.Message{{Role: core.RoleUser, Content: "a"}, {Role: core.RoleAssistant, Content: "b"}})
	assert.Error(t, err)
}

func TestOllamaCompleteAndEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/chat":
			var req map[string]any
			_ = json.NewDecoder(r.Body).Decode(&req)
			assert.Equal(t, "chat-model", req["model"])
			_, _ = w.Write([]byte(`{"model":"chat-model","message":{"role":"assistant","content":"a summary"},"done":true}`))
		case "/api/embeddings":
			_, _ = w.Write([]byte(`{"embedding":[0.5,0.25]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	o, err := NewOllama(srv.URL, "chat-model", "embed-model")
	require.NoError(t, err)

	reply, err := o.Complete(context.Background(), []core.Message{{Role: core.RoleUser, Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "a summary", reply)

	vec, err := o.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, vec)
}

func TestOllamaUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	o, err := NewOllama(srv.URL, "", "")
	require.NoError(t, err)

	_, err = o.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, core.ErrUpstream)
}
