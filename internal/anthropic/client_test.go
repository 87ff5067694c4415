// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/lectic/internal/httputil"
	"github.com/pdiddy/lectic/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

func testConversation() *types.Conversation {
	return &types.Conversation{
		Name: "Bob",
		Messages: []types.Message{
			{Role: types.RoleUser, Content: "Hello\n"},
			{Role: types.RoleAssistant, Content: "Hi there\n"},
			{Role: types.RoleUser, Content: "How are you?\n"},
		},
		SystemPrompt: "Your name is Bob.",
		Temperature:  0.7,
		TokenLimit:   512,
	}
}

const okResponse = `{
  "model": "claude-3-5-sonnet-20240620",
  "stop_reason": "end_turn",
  "content": [{"type": "text", "text": "Fine, "}, {"type": "text", "text": "thanks."}],
  "usage": {"input_tokens": 42, "output_tokens": 7, "cache_read_input_tokens": 3}
}`

func TestComplete(t *testing.T) {
	var got request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(okResponse))
	}))
	defer ts.Close()

	c := &Client{APIKey: "test-key", Model: "configured-model", URL: ts.URL, HTTP: ts.Client()}
	reply, err := c.Complete(context.Background(), testConversation())
	require.NoError(t, err)

	assert.Equal(t, "Fine, thanks.", reply.Text)
	assert.Equal(t, "end_turn", reply.StopReason)
	assert.Equal(t, Usage{InputTokens: 42, OutputTokens: 7, CachedTokens: 3}, reply.Usage)

	assert.Equal(t, "configured-model", got.Model)
	assert.Equal(t, "Your name is Bob.", got.System)
	assert.Equal(t, 512, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)
	assert.Equal(t, []message{
		{Role: "user", Content: "Hello\n"},
		{Role: "assistant", Content: "Hi there\n"},
		{Role: "user", Content: "How are you?\n"},
	}, got.Messages)
}

func TestComplete_ModelPrecedence(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		document   string
		want       string
	}{
		{"document wins", "configured", "document", "document"},
		{"configuration next", "configured", "", "configured"},
		{"default last", "", "", DefaultModel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{Model: tt.configured}
			conv := testConversation()
			conv.Model = tt.document
			assert.Equal(t, tt.want, c.ModelFor(conv))
			assert.Equal(t, tt.want, c.buildRequest(conv).Model)
		})
	}
}

func TestComplete_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error"}}` + "\n"))
	}))
	defer ts.Close()

	c := &Client{APIKey: "k", URL: ts.URL, HTTP: ts.Client()}
	_, err := c.Complete(context.Background(), testConversation())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Body, "invalid_request_error")
}

func TestComplete_RetriesOverloaded(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(httputil.StatusOverloaded)
			return
		}
		w.Write([]byte(okResponse))
	}))
	defer ts.Close()

	c := &Client{APIKey: "k", URL: ts.URL, HTTP: ts.Client(), MaxRetries: 2}
	reply, err := c.Complete(context.Background(), testConversation())
	require.NoError(t, err)
	assert.Equal(t, "Fine, thanks.", reply.Text)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestComplete_NoTextContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"content": [{"type": "tool_use"}]}`))
	}))
	defer ts.Close()

	c := &Client{APIKey: "k", URL: ts.URL, HTTP: ts.Client()}
	_, err := c.Complete(context.Background(), testConversation())
	assert.ErrorContains(t, err, "no text content")
}

func TestComplete_MalformedJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer ts.Close()

	c := &Client{APIKey: "k", URL: ts.URL, HTTP: ts.Client()}
	_, err := c.Complete(context.Background(), testConversation())
	assert.ErrorContains(t, err, "decoding Anthropic response")
}

func TestComplete_NoAPIKey(t *testing.T) {
	c := &Client{}
	_, err := c.Complete(context.Background(), testConversation())
	assert.ErrorIs(t, err, ErrNoAPIKey)
}
