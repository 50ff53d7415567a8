package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/phuslu/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aigist/internal/domain"
)

// stubEngine lets each test inject just the behavior it exercises.
type stubEngine struct {
	ingest    func(req domain.IngestionRequest) (*domain.IngestResult, error)
	delete    func(docID string) (int, error)
	list      func() []domain.Document
	answer    func(question string) (*domain.Answer, error)
	summarize func(text string, level domain.SummaryLevel) (string, error)
	stats     func() domain.StoreStats
}

func (s *stubEngine) IngestDocument(ctx context.Context, req domain.IngestionRequest) (*domain.IngestResult, error) {
	return s.ingest(req)
}

func (s *stubEngine) DeleteDocument(ctx context.Context, docID string) (int, error) {
	return s.delete(docID)
}

func (s *stubEngine) ListDocuments(ctx context.Context) []domain.Document {
	if s.list == nil {
		return nil
	}
	return s.list()
}

func (s *stubEngine) AnswerQuestion(ctx context.Context, question string) (*domain.Answer, error) {
	return s.answer(question)
}

func (s *stubEngine) Summarize(ctx context.Context, text string, level domain.SummaryLevel) (string, error) {
	return s.summarize(text, level)
}

func (s *stubEngine) Stats(ctx context.Context) domain.StoreStats {
	if s.stats == nil {
		return domain.StoreStats{}
	}
	return s.stats()
}

func testServer(engine domain.Engine) *Server {
	return New(engine, "127.0.0.1", 0, log.Logger{Level: log.PanicLevel})
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIngestText(t *testing.T) {
	var got domain.IngestionRequest
	srv := testServer(&stubEngine{
		ingest: func(req domain.IngestionRequest) (*domain.IngestResult, error) {
			got = req
			return &domain.IngestResult{DocID: "doc_1", Title: "Notes", ChunkCount: 2}, nil
		},
	})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/documents",
		`{"source_type":"text","title":"Notes","text":"hello world"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	txt, ok := got.(domain.TextRequest)
	require.True(t, ok)
	assert.Equal(t, "Notes", txt.Label)
	assert.Equal(t, "hello world", txt.Body)

	var res domain.IngestResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "doc_1", res.DocID)
	assert.Equal(t, 2, res.ChunkCount)
	assert.Empty(t, res.Summary)
}

func TestIngestFileAndURLVariants(t *testing.T) {
	var got domain.IngestionRequest
	srv := testServer(&stubEngine{
		ingest: func(req domain.IngestionRequest) (*domain.IngestResult, error) {
			got = req
			return &domain.IngestResult{DocID: "doc_1"}, nil
		},
	})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/documents",
		`{"source_type":"file","filename":"report.txt","text":"contents"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	file, ok := got.(domain.FileRequest)
	require.True(t, ok)
	assert.Equal(t, "report.txt", file.Filename)

	rec = doJSON(t, srv.Handler(), http.MethodPost, "/api/documents",
		`{"source_type":"url","url":"https://example.com","title":"Example","text":"contents"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	url, ok := got.(domain.URLRequest)
	require.True(t, ok)
	assert.Equal(t, "https://example.com", url.URL)
	assert.Equal(t, "Example", url.PageTitle)
}

func TestIngestWithSummary(t *testing.T) {
	srv := testServer(&stubEngine{
		ingest: func(domain.IngestionRequest) (*domain.IngestResult, error) {
			return &domain.IngestResult{DocID: "doc_1"}, nil
		},
		summarize: func(text string, level domain.SummaryLevel) (string, error) {
			assert.Equal(t, domain.SummaryQuick, level)
			return "short summary", nil
		},
	})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/documents",
		`{"source_type":"text","text":"hello","summary_level":"quick"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var res domain.IngestResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "short summary", res.Summary)
}

func TestIngestSummaryFailureStillSucceeds(t *testing.T) {
	srv := testServer(&stubEngine{
		ingest: func(domain.IngestionRequest) (*domain.IngestResult, error) {
			return &domain.IngestResult{DocID: "doc_1"}, nil
		},
		summarize: func(string, domain.SummaryLevel) (string, error) {
			return "", domain.ErrCompletionUnavailable
		},
	})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/documents",
		`{"source_type":"text","text":"hello","summary_level":"quick"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var res domain.IngestResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Empty(t, res.Summary)
}

func TestIngestBadJSON(t *testing.T) {
	srv := testServer(&stubEngine{})
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/documents", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestUnknownSourceType(t *testing.T) {
	srv := testServer(&stubEngine{})
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/documents",
		`{"source_type":"carrier_pigeon","text":"hello"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"duplicate", domain.ErrDuplicateDocument, http.StatusConflict},
		{"empty input", &domain.IngestionError{Reason: "no text content"}, http.StatusUnprocessableEntity},
		{"embedding down", &domain.IngestionError{Reason: "embedding failed", Err: domain.ErrEmbeddingUnavailable}, http.StatusBadGateway},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := testServer(&stubEngine{
				ingest: func(domain.IngestionRequest) (*domain.IngestResult, error) {
					return nil, tc.err
				},
			})
			rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/documents",
				`{"source_type":"text","text":"hello"}`)
			assert.Equal(t, tc.code, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestListDocuments(t *testing.T) {
	srv := testServer(&stubEngine{
		list: func() []domain.Document {
			return []domain.Document{{DocID: "doc_1", Title: "One", UploadTime: time.Now()}}
		},
	})

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/documents", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var docs []domain.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "doc_1", docs[0].DocID)
}

func TestListDocumentsEmptyIsArray(t *testing.T) {
	srv := testServer(&stubEngine{})
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/documents", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestDeleteDocument(t *testing.T) {
	srv := testServer(&stubEngine{
		delete: func(docID string) (int, error) {
			assert.Equal(t, "doc_1", docID)
			return 3, nil
		},
	})

	rec := doJSON(t, srv.Handler(), http.MethodDelete, "/api/documents/doc_1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body["chunks_removed"])
}

func TestDeleteDocumentNotFound(t *testing.T) {
	srv := testServer(&stubEngine{
		delete: func(string) (int, error) { return 0, domain.ErrDocumentNotFound },
	})
	rec := doJSON(t, srv.Handler(), http.MethodDelete, "/api/documents/doc_missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAsk(t *testing.T) {
	srv := testServer(&stubEngine{
		answer: func(question string) (*domain.Answer, error) {
			assert.Equal(t, "what is up?", question)
			return &domain.Answer{
				Text:    "not much",
				Sources: []domain.Source{{DocumentTitle: "One", Similarity: 0.9, TextPreview: "..."}},
			}, nil
		},
	})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/ask", `{"question":"what is up?"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var ans domain.Answer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ans))
	assert.Equal(t, "not much", ans.Text)
	require.Len(t, ans.Sources, 1)
	assert.Equal(t, "One", ans.Sources[0].DocumentTitle)
}

func TestAskErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"empty question", domain.ErrEmptyQuestion, http.StatusBadRequest},
		{"nothing relevant", domain.ErrNoRelevantContent, http.StatusUnprocessableEntity},
		{"embedding down", domain.ErrEmbeddingUnavailable, http.StatusBadGateway},
		{"completion down", domain.ErrCompletionUnavailable, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := testServer(&stubEngine{
				answer: func(string) (*domain.Answer, error) { return nil, tc.err },
			})
			rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/ask", `{"question":"q"}`)
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestSummarizeDefaultsToStandard(t *testing.T) {
	srv := testServer(&stubEngine{
		summarize: func(text string, level domain.SummaryLevel) (string, error) {
			assert.Equal(t, domain.SummaryStandard, level)
			return "summary", nil
		},
	})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/summarize", `{"text":"lots of words"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "summary", body["summary"])
}

func TestStats(t *testing.T) {
	srv := testServer(&stubEngine{
		stats: func() domain.StoreStats {
			return domain.StoreStats{TotalPassages: 10, TotalDocuments: 2, Dimension: 1536}
		},
	})

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/stats", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var stats domain.StoreStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 10, stats.TotalPassages)
	assert.Equal(t, 2, stats.TotalDocuments)
	assert.Equal(t, 1536, stats.Dimension)
}
