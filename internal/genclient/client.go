// Package genclient talks to the remote generation service that extracts
// document text and produces summaries, quizzes and chat replies.
package genclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jbonatakis/studydesk/internal/stream"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://localhost:8000/api"
	DefaultTimeout = 120 * time.Second

	maxErrorBody = 64 * 1024
)

type Config struct {
	BaseURL string
	// Timeout bounds non-streaming requests. Streams are bounded only by
	// the caller's context.
	Timeout          time.Duration
	HTTPClient       *http.Client
	Logger           *zap.Logger
	MaxDroppedFrames int
}

type Client struct {
	base       *url.URL
	timeout    time.Duration
	http       *http.Client
	log        *zap.Logger
	maxDropped int
}

func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", raw)
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		base:       base,
		timeout:    timeout,
		http:       client,
		log:        log,
		maxDropped: cfg.MaxDroppedFrames,
	}, nil
}

func (c *Client) BaseURL() string {
	return c.base.String()
}

// UploadDocument sends the file as multipart form data and returns the
// extracted text.
func (c *Client) UploadDocument(ctx context.Context, filename string, content io.Reader) (UploadResult, error) {
	const op = "upload document"

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%s: build form: %w", op, err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return UploadResult{}, fmt.Errorf("%s: read file: %w", op, err)
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("%s: build form: %w", op, err)
	}

	var out UploadResult
	if err := c.doJSON(ctx, op, "/documents/upload", mw.FormDataContentType(), &body, &out); err != nil {
		return UploadResult{}, err
	}
	if out.Filename == "" {
		out.Filename = filename
	}
	return out, nil
}

func (c *Client) GenerateSummary(ctx context.Context, text string) (Summary, error) {
	const op = "generate summary"

	var out struct {
		QuickNotes   *[]string `json:"quick_notes"`
		KeyTakeaways *[]string `json:"key_takeaways"`
	}
	if err := c.postJSON(ctx, op, "/documents/summarize", SummaryRequest{Text: text}, &out); err != nil {
		return Summary{}, err
	}
	if out.QuickNotes == nil || out.KeyTakeaways == nil {
		return Summary{}, &ValidationError{Op: op, Reason: "missing quick_notes or key_takeaways"}
	}
	return Summary{QuickNotes: *out.QuickNotes, KeyTakeaways: *out.KeyTakeaways}, nil
}

func (c *Client) SendChat(ctx context.Context, content string, contextText string) (string, error) {
	const op = "send chat message"

	var out ChatResponse
	if err := c.postJSON(ctx, op, "/chat/message", ChatRequest{Content: content, Context: contextText}, &out); err != nil {
		return "", err
	}
	return out.Content, nil
}

// StreamChat opens the streaming chat endpoint and returns a frame reader.
// The caller owns the reader and must Close it; cancelling ctx also
// releases the connection.
func (c *Client) StreamChat(ctx context.Context, content string, contextText string) (*stream.Reader, error) {
	const op = "stream chat message"

	payload, err := json.Marshal(ChatRequest{Content: content, Context: contextText})
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/chat/message/stream"), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, serviceError(op, resp)
	}

	c.log.Debug("chat stream opened", zap.Int("status", resp.StatusCode))
	return stream.NewReader(resp.Body,
		stream.WithMaxDropped(c.maxDropped),
		stream.WithLogger(c.log.Named("stream")),
	), nil
}

func (c *Client) GenerateQuiz(ctx context.Context, text string, numQuestions int) (Quiz, error) {
	const op = "generate quiz"

	var out struct {
		ID        string          `json:"id"`
		Questions *[]QuizQuestion `json:"questions"`
	}
	req := QuizRequest{Text: text, NumQuestions: numQuestions}
	if err := c.postJSON(ctx, op, "/quiz/generate", req, &out); err != nil {
		return Quiz{}, err
	}
	if out.Questions == nil {
		return Quiz{}, &ValidationError{Op: op, Reason: "missing questions"}
	}
	return Quiz{ID: out.ID, Questions: *out.Questions}, nil
}

// CheckAnswer asks the service to grade one answer of a previously generated quiz.
func (c *Client) CheckAnswer(ctx context.Context, quizID string, questionID string, answer int) (AnswerResult, error) {
	const op = "check quiz answer"

	q := url.Values{}
	q.Set("quiz_id", quizID)
	q.Set("question_id", questionID)
	q.Set("answer", strconv.Itoa(answer))

	var out AnswerResult
	if err := c.doJSON(ctx, op, "/quiz/check-answer?"+q.Encode(), "", nil, &out); err != nil {
		return AnswerResult{}, err
	}
	return out, nil
}

func (c *Client) postJSON(ctx context.Context, op string, path string, in any, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}
	return c.doJSON(ctx, op, path, "application/json", bytes.NewReader(payload), out)
}

func (c *Client) doJSON(ctx context.Context, op string, path string, contentType string, body io.Reader, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("op", op), zap.Error(err))
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("request finished",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return serviceError(op, resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ValidationError{Op: op, Reason: fmt.Sprintf("decode body: %v", err)}
	}
	return nil
}

func (c *Client) endpoint(path string) string {
	return c.base.String() + path
}

func serviceError(op string, resp *http.Response) error {
	se := &ServiceError{Op: op, Status: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return se
	}

	var raw struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &raw); err != nil || len(raw.Detail) == 0 {
		return se
	}
	var detail string
	if err := json.Unmarshal(raw.Detail, &detail); err == nil {
		se.Detail = detail
		return se
	}
	se.Detail = string(raw.Detail)
	return se
}

// IsTransport reports whether err came from the network layer.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
