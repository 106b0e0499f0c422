package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/answer"
	"docqa/internal/chunker"
	"docqa/internal/domain"
	"docqa/internal/embedding/embeddingtest"
	"docqa/internal/llm/llmtest"
	"docqa/internal/retrieval"
	"docqa/internal/service"
	"docqa/internal/session"
	"docqa/internal/summarize"
	"docqa/internal/vectorstore/memory"
)

type stubExtractor struct{}

func (stubExtractor) FromFile(path string) ([]domain.Unit, error) {
	return []domain.Unit{{Text: "uploaded document text about testing"}}, nil
}

func (stubExtractor) FromURL(_ context.Context, rawURL string) ([]domain.Unit, error) {
	if rawURL == "https://example.com/empty" {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoExtractableText, rawURL)
	}
	return []domain.Unit{{Text: "fetched page text about lighthouses and storms"}}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	emb := embeddingtest.New(256)
	llm := llmtest.New("An answer. [example.com]")
	provider := memory.NewProvider(emb)
	svc := service.New(service.Config{
		Extractor:  stubExtractor{},
		Chunker:    chunker.New(800, 200),
		Provider:   provider,
		Registry:   session.NewRegistry(provider),
		Engine:     retrieval.NewEngine(10),
		Synth:      answer.New(llm),
		Summarizer: summarize.NewLLM(llm),
		Embedder:   emb,
		LLMName:    llm.Name(),
	})
	s, err := New(svc, t.TempDir())
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func ingestURL(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp := postJSON(t, srv.URL+"/process-url", map[string]string{"url": "https://example.com/a"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[service.IngestResult](t, resp)
	require.NotEmpty(t, result.SessionID)
	return result.SessionID
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProcessURLAndAsk(t *testing.T) {
	srv := newTestServer(t)
	id := ingestURL(t, srv)

	resp := postJSON(t, srv.URL+"/ask", map[string]any{
		"session_id": id,
		"question":   "what about lighthouses?",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[service.Answer](t, resp)
	assert.Equal(t, "An answer. [example.com]", got.Text)
	assert.NotEmpty(t, got.Metadata)
}

func TestAskValidation(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/ask", map[string]any{"session_id": "", "question": "q"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/ask", map[string]any{"session_id": "x", "question": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAskUnknownSessionIs404(t *testing.T) {
	srv := newTestServer(t)
	resp := postJSON(t, srv.URL+"/ask", map[string]any{"session_id": "missing", "question": "q"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAskInvalidThresholdIs400(t *testing.T) {
	srv := newTestServer(t)
	id := ingestURL(t, srv)

	resp := postJSON(t, srv.URL+"/ask", map[string]any{
		"session_id":           id,
		"question":             "q",
		"similarity_threshold": 1.5,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProcessURLValidation(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/process-url", map[string]string{"url": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/process-url", map[string]string{"url": "ftp://example.com"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/process-url", map[string]string{"url": "https://example.com/empty"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	id := ingestURL(t, srv)

	resp, err := http.Get(srv.URL + "/session/" + id + "/technical")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	info := decode[domain.SessionInfo](t, resp)
	assert.Equal(t, id, info.SessionID)
	assert.Equal(t, "URL", info.SourceType)

	resp, err = http.Get(srv.URL + "/sessions")
	require.NoError(t, err)
	defer resp.Body.Close()
	sessions := decode[map[string][]string](t, resp)
	assert.Contains(t, sessions["sessions"], id)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/session/"+id, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/session/" + id + "/technical")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
