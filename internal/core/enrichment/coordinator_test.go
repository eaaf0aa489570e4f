package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/markdave123-py/layoutchunker/internal/core"
	"github.com/markdave123-py/layoutchunker/internal/logger"
	"github.com/markdave123-py/layoutchunker/internal/models"
)

type fakeKeyPhrases struct {
	fn func(ctx context.Context, text string) ([]string, error)
}

func (f fakeKeyPhrases) ExtractKeyPhrases(ctx context.Context, text string) ([]string, error) {
	return f.fn(ctx, text)
}

type fakeEntities struct {
	fn func(ctx context.Context, text string) ([]string, error)
}

func (f fakeEntities) ExtractEntities(ctx context.Context, text string) ([]string, error) {
	return f.fn(ctx, text)
}

type fakeCompleter struct {
	fn func(ctx context.Context, messages []core.Message) (string, error)
}

func (f fakeCompleter) Complete(ctx context.Context, messages []core.Message) (string, error) {
	return f.fn(ctx, messages)
}

type fakeEmbedder struct {
	fn func(ctx context.Context, text string) ([]float32, error)
}

func (f fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.fn(ctx, text)
}

type fakes struct {
	kp  fakeKeyPhrases
	ent fakeEntities
	cmp fakeCompleter
	emb fakeEmbedder
}

func okFakes() fakes {
	return fakes{
		kp:  fakeKeyPhrases{fn: func(context.Context, string) ([]string, error) { return []string{"revenue"}, nil }},
		ent: fakeEntities{fn: func(context.Context, string) ([]string, error) { return []string{"Acme"}, nil }},
		cmp: fakeCompleter{fn: func(context.Context, []core.Message) (string, error) { return " Quarterly results. ", nil }},
		emb: fakeEmbedder{fn: func(context.Context, string) ([]float32, error) { return []float32{0.1, 0.2}, nil }},
	}
}

func (f fakes) coordinator(t *testing.T, concurrency int) *Coordinator {
	t.Helper()
	c, err := NewCoordinator(f.kp, f.ent, f.cmp, f.emb, concurrency)
	require.NoError(t, err)
	return c
}

func chunk(name, content string) models.Chunk {
	return models.Chunk{FileName: "report.pdf", ChunkFile: name, Content: content, Title: "Annual", Section: "Revenue", Pages: []int{1}}
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	obs, logs := observer.New(zapcore.WarnLevel)
	logger.Set(zap.New(obs))
	t.Cleanup(func() { logger.Set(nil) })
	return logs
}

func TestEnrichMergesAllResults(t *testing.T) {
	f := okFakes()
	var seen atomic.Value
	f.emb.fn = func(_ context.Context, text string) ([]float32, error) {
		seen.Store(text)
		return []float32{1, 2, 3}, nil
	}

	got := f.coordinator(t, 2).Enrich(context.Background(), chunk("report-1.json", "<table><tr><td>Revenue, Q1!</td></tr></table>"))

	assert.Equal(t, "revenue q1", seen.Load())
	assert.Equal(t, []string{"revenue"}, got.Keyphrases)
	assert.Equal(t, []string{"Acme"}, got.Entities)
	assert.Equal(t, []float32{1, 2, 3}, got.ContentVector)
	require.NotNil(t, got.Context)
	assert.Equal(t, "Quarterly results.", *got.Context)
	assert.Equal(t, "report-1.json", got.ChunkFile)
}

func TestEnrichCompletionFailureOmitsContext(t *testing.T) {
	logs := observeLogs(t)
	f := okFakes()
	f.cmp.fn = func(context.Context, []core.Message) (string, error) { return "", errors.New("429 too many requests") }

	got := f.coordinator(t, 1).Enrich(context.Background(), chunk("report-2.json", "Revenue grew."))

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))

	assert.Contains(t, m, "keyphrases")
	assert.Contains(t, m, "entities")
	assert.Contains(t, m, "contentVector")
	assert.NotContains(t, m, "context")

	entries := logs.FilterField(zap.String("op", opContext)).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "report-2.json", entries[0].ContextMap()["chunk_file"])
}

func TestEnrichFailuresUseDefaults(t *testing.T) {
	observeLogs(t)
	boom := errors.New("boom")
	f := okFakes()
	f.kp.fn = func(context.Context, string) ([]string, error) { return nil, boom }
	f.ent.fn = func(context.Context, string) ([]string, error) { return nil, boom }
	f.emb.fn = func(context.Context, string) ([]float32, error) { return nil, boom }

	got := f.coordinator(t, 1).Enrich(context.Background(), chunk("report-3.json", "text"))

	assert.Equal(t, []string{}, got.Keyphrases)
	assert.Equal(t, []string{}, got.Entities)
	assert.Equal(t, []float32{}, got.ContentVector)
	require.NotNil(t, got.Context)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"keyphrases":[]`)
	assert.Contains(t, string(raw), `"contentVector":[]`)
}

func TestEnrichRunsCallsConcurrently(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(4)
	barrier := func() error {
		wg.Done()
		done := make(chan struct{})
		go func() { wg.Wait(); close(done) }()
		select {
		case <-done:
			return nil
		case <-time.After(2 * time.Second):
			return errors.New("calls did not overlap")
		}
	}

	f := fakes{
		kp:  fakeKeyPhrases{fn: func(context.Context, string) ([]string, error) { return []string{"k"}, barrier() }},
		ent: fakeEntities{fn: func(context.Context, string) ([]string, error) { return []string{"e"}, barrier() }},
		cmp: fakeCompleter{fn: func(context.Context, []core.Message) (string, error) { return "c", barrier() }},
		emb: fakeEmbedder{fn: func(context.Context, string) ([]float32, error) { return []float32{1}, barrier() }},
	}

	got := f.coordinator(t, 1).Enrich(context.Background(), chunk("c.json", "text"))
	assert.Equal(t, []string{"k"}, got.Keyphrases)
	assert.Equal(t, []string{"e"}, got.Entities)
	assert.Equal(t, []float32{1}, got.ContentVector)
	require.NotNil(t, got.Context)
}

func TestEnrichAllPreservesOrderAndIsolatesFailures(t *testing.T) {
	observeLogs(t)
	f := okFakes()
	f.cmp.fn = func(_ context.Context, msgs []core.Message) (string, error) {
		if strings.HasSuffix(msgs[len(msgs)-1].Content, "second") {
			return "", errors.New("completion down")
		}
		return "ok", nil
	}

	chunks := []models.Chunk{chunk("a.json", "first"), chunk("b.json", "second"), chunk("c.json", "third")}
	got, err := f.coordinator(t, 2).EnrichAll(context.Background(), chunks)
	require.NoError(t, err)
	require.Len(t, got, 3)

	for i := range chunks {
		assert.Equal(t, chunks[i].ChunkFile, got[i].ChunkFile)
		assert.Equal(t, []string{"revenue"}, got[i].Keyphrases)
	}
	assert.NotNil(t, got[0].Context)
	assert.Nil(t, got[1].Context)
	assert.NotNil(t, got[2].Context)
}

func TestEnrichAllValidation(t *testing.T) {
	c := okFakes().coordinator(t, 0)

	_, err := c.EnrichAll(context.Background(), nil)
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = c.EnrichAll(context.Background(), []models.Chunk{{ChunkFile: "x.json", Content: "  "}})
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = c.EnrichAll(context.Background(), []models.Chunk{{Content: "text"}})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestEnrichAllCancelled(t *testing.T) {
	observeLogs(t)
	f := okFakes()
	f.emb.fn = func(ctx context.Context, _ string) ([]float32, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	got, err := f.coordinator(t, 1).EnrichAll(ctx, []models.Chunk{chunk("a.json", "text")})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, got)
}

func TestNewCoordinatorRequiresCollaborators(t *testing.T) {
	f := okFakes()
	_, err := NewCoordinator(nil, f.ent, f.cmp, f.emb, 1)
	assert.Error(t, err)
}
