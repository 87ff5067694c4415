// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package anthropic sends a rendered conversation to Anthropic's Messages
// API and returns the next assistant turn.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/lectic/internal/httputil"
	"github.com/pdiddy/lectic/pkg/types"
)

const (
	// DefaultURL is the Messages API endpoint.
	DefaultURL = "https://api.anthropic.com/v1/messages"

	// DefaultModel is used when neither configuration nor the document
	// names a model.
	DefaultModel = "claude-3-5-sonnet-20240620"

	apiVersion = "2023-06-01"
)

// ErrNoAPIKey is returned by Complete when the client has no key to send.
var ErrNoAPIKey = errors.New("no Anthropic API key configured")

// Backend produces the next assistant turn for a conversation. The CLI
// depends on this interface so tests can substitute a fake.
type Backend interface {
	Complete(ctx context.Context, conv *types.Conversation) (*Reply, error)
}

// Usage counts the tokens a request consumed.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	CachedTokens int `json:"cache_read_input_tokens"`
}

// Reply is the model's answer to a conversation.
type Reply struct {
	Text       string
	Model      string
	StopReason string
	Usage      Usage
}

// APIError is a non-200 response from the Messages API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Anthropic API returned %d: %s", e.Status, e.Body)
}

// Client calls the Messages API over HTTP.
type Client struct {
	APIKey     string
	Model      string
	URL        string
	MaxRetries int
	HTTP       *http.Client
	Log        logrus.FieldLogger
}

// request is the request body for the Messages API.
type request struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// response is the response body from the Messages API.
type response struct {
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Content    []contentBlock `json:"content"`
	Usage      Usage          `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete sends conv and returns the concatenated text of the reply. A
// model named by the conversation takes precedence over c.Model.
func (c *Client) Complete(ctx context.Context, conv *types.Conversation) (*Reply, error) {
	if c.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	body, err := json.Marshal(c.buildRequest(conv))
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := c.URL
	if url == "" {
		url = DefaultURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	log := c.logger().WithFields(logrus.Fields{"model": c.ModelFor(conv), "messages": len(conv.Messages)})
	log.Debug("sending conversation")

	resp, err := httputil.DoWithRetry(ctx, client, req, c.MaxRetries, log)
	if err != nil {
		return nil, fmt.Errorf("calling Anthropic API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decoding Anthropic response: %w", err)
	}

	var text strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("no text content in Anthropic API response")
	}

	log.WithFields(logrus.Fields{
		"input_tokens":  r.Usage.InputTokens,
		"output_tokens": r.Usage.OutputTokens,
		"stop_reason":   r.StopReason,
	}).Debug("received reply")

	return &Reply{Text: text.String(), Model: r.Model, StopReason: r.StopReason, Usage: r.Usage}, nil
}

func (c *Client) buildRequest(conv *types.Conversation) request {
	msgs := make([]message, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		msgs = append(msgs, message{Role: string(m.Role), Content: m.Content})
	}
	return request{
		Model:       c.ModelFor(conv),
		System:      conv.SystemPrompt,
		MaxTokens:   conv.TokenLimit,
		Temperature: conv.Temperature,
		Messages:    msgs,
	}
}

// ModelFor returns the model a request for conv is sent to: the
// conversation's own model, else c.Model, else DefaultModel.
func (c *Client) ModelFor(conv *types.Conversation) string {
	switch {
	case conv.Model != "":
		return conv.Model
	case c.Model != "":
		return c.Model
	default:
		return DefaultModel
	}
}

func (c *Client) logger() logrus.FieldLogger {
	if c.Log != nil {
		return c.Log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
