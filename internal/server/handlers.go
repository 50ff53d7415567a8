package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"aigist/internal/domain"
)

type ingestRequest struct {
	DocID        string `json:"doc_id,omitempty"`
	SourceType   string `json:"source_type"`
	Title        string `json:"title,omitempty"`
	Filename     string `json:"filename,omitempty"`
	URL          string `json:"url,omitempty"`
	Text         string `json:"text"`
	SummaryLevel string `json:"summary_level,omitempty"`
}

type askRequest struct {
	Question string `json:"question"`
}

type summarizeRequest struct {
	Text  string `json:"text"`
	Level string `json:"level,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	var ingestion domain.IngestionRequest
	switch domain.SourceType(req.SourceType) {
	case domain.SourceText, "":
		ingestion = domain.TextRequest{ID: req.DocID, Label: req.Title, Body: req.Text}
	case domain.SourceFile:
		ingestion = domain.FileRequest{ID: req.DocID, Filename: req.Filename, Content: req.Text}
	case domain.SourceURL:
		ingestion = domain.URLRequest{ID: req.DocID, URL: req.URL, PageTitle: req.Title, Content: req.Text}
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown source_type: " + req.SourceType})
		return
	}

	result, err := s.engine.IngestDocument(r.Context(), ingestion)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if req.SummaryLevel != "" {
		summary, err := s.engine.Summarize(r.Context(), req.Text, domain.SummaryLevel(req.SummaryLevel))
		if err != nil {
			// the document is already stored; a failed summary is not worth a failed ingest
			s.logger.Warn().Err(err).Str("doc_id", result.DocID).Msg("summary generation failed")
		} else {
			result.Summary = summary
		}
	}

	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	docs := s.engine.ListDocuments(r.Context())
	if docs == nil {
		docs = []domain.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	docID := r.PathValue("id")
	removed, err := s.engine.DeleteDocument(r.Context(), docID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"chunks_removed": removed})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	answer, err := s.engine.AnswerQuestion(r.Context(), req.Question)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	level := domain.SummaryLevel(req.Level)
	if level == "" {
		level = domain.SummaryStandard
	}
	summary, err := s.engine.Summarize(r.Context(), req.Text, level)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Stats(r.Context()))
}

// writeError maps the engine's error taxonomy onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var ingestErr *domain.IngestionError
	switch {
	case errors.Is(err, domain.ErrEmptyQuestion):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNoRelevantContent):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrDocumentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateDocument):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrEmbeddingUnavailable),
		errors.Is(err, domain.ErrCompletionUnavailable):
		status = http.StatusBadGateway
	case errors.As(err, &ingestErr):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
