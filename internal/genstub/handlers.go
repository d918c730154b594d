package genstub

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jbonatakis/studydesk/internal/genclient"
	"go.uber.org/zap"
)

const minQuizText = 50

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid upload form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "could not read upload")
		return
	}
	s.log.Debug("upload request", zap.String("filename", header.Filename), zap.Int("bytes", len(data)))

	text, err := extractText(data, strings.ToLower(filepath.Ext(header.Filename)))
	if err != nil {
		s.log.Warn("extraction failed", zap.String("filename", header.Filename), zap.Error(err))
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(text) == "" {
		s.respondError(w, http.StatusBadRequest, "No text could be extracted from the document")
		return
	}
	s.respondJSON(w, http.StatusOK, genclient.UploadResult{Text: text, Filename: header.Filename})
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req genclient.SummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.respondError(w, http.StatusBadRequest, "Text is required to generate a summary")
		return
	}
	s.respondJSON(w, http.StatusOK, summarize(req.Text))
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req genclient.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.respondJSON(w, http.StatusOK, genclient.ChatResponse{Content: reply(req.Content, req.Context)})
}

func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var req genclient.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	flusher, _ := w.(http.Flusher)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	for _, piece := range chunkReply(reply(req.Content, req.Context)) {
		if err := writeFrame(w, map[string]string{"type": "chunk", "content": piece}); err != nil {
			s.log.Debug("stream write failed", zap.Error(err))
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
		if s.chunkDelay > 0 {
			select {
			case <-ctx.Done():
				s.log.Debug("stream cancelled by client")
				return
			case <-time.After(s.chunkDelay):
			}
		}
	}
	_ = writeFrame(w, map[string]string{"type": "done"})
	if flusher != nil {
		flusher.Flush()
	}
}

func (s *Server) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req genclient.QuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(strings.TrimSpace(req.Text)) < minQuizText {
		s.respondError(w, http.StatusBadRequest, "Text is too short to generate meaningful quiz questions")
		return
	}
	if req.NumQuestions < 1 {
		s.respondError(w, http.StatusBadRequest, "num_questions must be at least 1")
		return
	}

	q := storedQuiz{
		ID:        uuid.NewString(),
		Questions: buildQuestions(req.Text, req.NumQuestions),
	}
	s.saveQuiz(q)
	s.log.Debug("quiz generated", zap.String("quiz_id", q.ID), zap.Int("questions", len(q.Questions)))
	s.respondJSON(w, http.StatusOK, genclient.Quiz{ID: q.ID, Questions: q.Questions})
}

func (s *Server) handleCheckAnswer(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	answer, err := strconv.Atoi(query.Get("answer"))
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "answer must be an integer")
		return
	}
	q, ok := s.lookupQuiz(query.Get("quiz_id"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "Quiz not found")
		return
	}
	question, ok := q.question(query.Get("question_id"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "Question not found")
		return
	}
	s.respondJSON(w, http.StatusOK, genclient.AnswerResult{
		Correct:     answer == question.CorrectAnswer,
		Explanation: question.Explanation,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"detail": message})
}

func writeFrame(w io.Writer, frame map[string]string) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}
