// Package openrouter is a minimal client for the OpenRouter chat-completions
// API: one POST per question, no history, no retries.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/mwiater/routerchat/internal/config"
)

// ErrEmptyQuestion is returned by Ask for a blank question; nothing is sent.
var ErrEmptyQuestion = errors.New("openrouter: question is empty")

// NoContent is the answer reported for a 200 response without choices.
const NoContent = "No response content found"

// Client sends single-turn questions to the chat-completions endpoint.
type Client struct {
	apiKey  string
	baseURL string
	referer string
	title   string
	client  *http.Client
	log     log.FieldLogger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l log.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a Client for cfg. It fails with config.ErrMissingAPIKey when the
// credential is absent, so no request can ever go out without one.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = config.DefaultBaseURL
	}
	c := &Client{
		apiKey:  cfg.APIKey,
		baseURL: base,
		referer: cfg.Referer,
		title:   cfg.Title,
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		l := log.New()
		l.SetOutput(io.Discard)
		c.log = l
	}
	return c, nil
}

// Ask sends question to modelID and returns the status and answer or raw
// error body. A non-nil error means no HTTP response was obtained.
func (c *Client) Ask(ctx context.Context, question, modelID string) (Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Result{}, ErrEmptyQuestion
	}

	body, err := json.Marshal(chatRequest{
		Model:    modelID,
		Messages: []message{{Role: "user", Content: question}},
	})
	if err != nil {
		return Result{}, fmt.Errorf("openrouter: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("openrouter: build request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	requestID := "req_" + uuid.New().String()[:8]
	entry := c.log.WithFields(log.Fields{
		"request_id": requestID,
		"model":      modelID,
	})
	entry.Debug("Sending chat completion")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		entry.WithError(err).Warn("Chat completion transport failure")
		return Result{}, fmt.Errorf("openrouter: post: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		entry.WithError(err).Warn("Chat completion body read failure")
		return Result{}, fmt.Errorf("openrouter: read body: %w", err)
	}

	entry = entry.WithFields(log.Fields{
		"status":     resp.StatusCode,
		"latency_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode != http.StatusOK {
		entry.Warn("Chat completion rejected")
		return Result{StatusCode: resp.StatusCode, ErrorBody: string(raw)}, nil
	}

	answer, usage := parseAnswer(raw)
	if usage != nil {
		entry = entry.WithFields(log.Fields{
			"prompt_tokens":     usage.PromptTokens,
			"completion_tokens": usage.CompletionTokens,
		})
	}
	entry.Debug("Chat completion received")
	return Result{StatusCode: resp.StatusCode, Answer: answer, Usage: usage}, nil
}

// parseAnswer extracts choices[0].message.content. Shape problems become the
// answer text rather than an error.
func parseAnswer(body []byte) (string, *Usage) {
	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "Error parsing response: " + err.Error(), nil
	}
	if out.Choices == nil || len(*out.Choices) == 0 {
		return NoContent, out.Usage
	}
	first := (*out.Choices)[0]
	if first.Message == nil {
		return "Error parsing response: first choice has no 'message'", out.Usage
	}
	if first.Message.Content == nil {
		return "Error parsing response: message has no 'content'", out.Usage
	}
	return *first.Message.Content, out.Usage
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.referer != "" {
		req.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		req.Header.Set("X-Title", c.title)
	}
}
