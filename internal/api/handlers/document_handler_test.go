package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appMiddleware "github.com/markdave123-py/layoutchunker/internal/api/middlewares"
	"github.com/markdave123-py/layoutchunker/internal/core"
	"github.com/markdave123-py/layoutchunker/internal/core/ingestion_engine"
	objectclient "github.com/markdave123-py/layoutchunker/internal/core/object-client"
	"github.com/markdave123-py/layoutchunker/internal/services"
)

const secret = "test-secret"

type fakeIngestor struct {
	ingestion_engine.Ingestor
	jobs map[string]ingestion_engine.Job
}

func (f *fakeIngestor) Enqueue(_ context.Context, blob, user string) (ingestion_engine.Job, error) {
	if !strings.HasPrefix(blob, "unprocessed/") {
		return ingestion_engine.Job{}, core.Validationf("blob %q is not under unprocessed/", blob)
	}
	j := ingestion_engine.Job{ID: "job-" + blob, Blob: blob, SubmittedBy: user, Status: ingestion_engine.JobQueued}
	f.jobs[j.ID] = j
	return j, nil
}

func (f *fakeIngestor) Job(id string) (ingestion_engine.Job, bool) {
	j, ok := f.jobs[id]
	return j, ok
}

func newRouter(t *testing.T) (http.Handler, *objectclient.MemoryStore) {
	t.Helper()
	store := objectclient.NewMemoryStore("docs")
	h := NewDocumentHandler(services.NewDocumentService(store, &fakeIngestor{jobs: map[string]ingestion_engine.Job{}}, "unprocessed"))

	r := chi.NewRouter()
	r.Get("/api/health", Health)
	r.Group(func(p chi.Router) {
		p.Use(appMiddleware.JWTMiddleware(secret))
		p.Post("/api/documents/process", h.ProcessDocument)
		p.Post("/api/documents/upload", h.UploadDocument)
		p.Get("/api/jobs/{id}", h.GetJob)
	})
	return r, store
}

func authed(t *testing.T, req *http.Request) *http.Request {
	t.Helper()
	tok, err := appMiddleware.IssueToken(secret, "user-1", time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok)
	return req
}

func TestHealth(t *testing.T) {
	r, _ := newRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestProcessDocumentAndGetJob(t *testing.T) {
	r, _ := newRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, authed(t, httptest.NewRequest(http.MethodPost, "/api/documents/process", strings.NewReader(`{"blob":"unprocessed/report.pdf"}`))))
	require.Equal(t, http.StatusAccepted, rec.Code)

	var job ingestion_engine.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, ingestion_engine.JobQueued, job.Status)
	assert.Equal(t, "user-1", job.SubmittedBy)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, authed(t, httptest.NewRequest(http.MethodGet, "/api/jobs/"+job.ID, nil)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, authed(t, httptest.NewRequest(http.MethodGet, "/api/jobs/missing", nil)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProcessDocumentErrors(t *testing.T) {
	r, _ := newRouter(t)

	cases := map[string]string{
		"bad json":     `{`,
		"empty blob":   `{"blob":""}`,
		"wrong folder": `{"blob":"processed/report.pdf"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, authed(t, httptest.NewRequest(http.MethodPost, "/api/documents/process", strings.NewReader(body))))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/documents/process", strings.NewReader(`{"blob":"unprocessed/a"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUploadDocument(t *testing.T) {
	r, store := newRouter(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "annual report.json")
	require.NoError(t, err)
	_, err = fw.Write([]byte(`{"content":"x"}`))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := authed(t, httptest.NewRequest(http.MethodPost, "/api/documents/upload", &body))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"unprocessed/annual_report.json"}, store.Keys())
}
