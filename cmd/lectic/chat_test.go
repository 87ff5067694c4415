// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/lectic/internal/anthropic"
	"github.com/pdiddy/lectic/internal/lectic"
	"github.com/pdiddy/lectic/internal/transcript"
	"github.com/pdiddy/lectic/internal/usage"
	"github.com/pdiddy/lectic/pkg/types"
)

const bobLectic = `---
interlocutor:
  name: Bob
  prompt: Be terse.
  model: claude-test
---
Hello
::: Bob
Hi there
:::
How are you?
`

type fakeBackend struct {
	reply *anthropic.Reply
	err   error
	got   *types.Conversation
}

func (f *fakeBackend) Complete(_ context.Context, conv *types.Conversation) (*anthropic.Reply, error) {
	f.got = conv
	return f.reply, f.err
}

type fakeRecorder struct {
	model  string
	tokens usage.Tokens
	err    error
	calls  int
}

func (f *fakeRecorder) Record(_ context.Context, model string, t usage.Tokens, _ time.Time) error {
	f.calls++
	f.model = model
	f.tokens = t
	return f.err
}

func TestConverse(t *testing.T) {
	backend := &fakeBackend{reply: &anthropic.Reply{
		Text:  "  Fine, thanks.\n",
		Model: "claude-test",
		Usage: anthropic.Usage{InputTokens: 30, OutputTokens: 4, CachedTokens: 10},
	}}
	rec := &fakeRecorder{}
	logger, _ := test.NewNullLogger()

	reply, err := converse(context.Background(), bobLectic, backend, rec, logger)
	require.NoError(t, err)
	assert.Equal(t, "::: Bob\n\nFine, thanks.\n\n:::", reply)

	require.NotNil(t, backend.got)
	assert.Equal(t, "Bob", backend.got.Name)
	assert.Equal(t, "claude-test", backend.got.Model)
	require.Len(t, backend.got.Messages, 3)
	assert.Equal(t, types.RoleUser, backend.got.Messages[0].Role)
	assert.Equal(t, types.RoleAssistant, backend.got.Messages[1].Role)
	assert.Equal(t, types.RoleUser, backend.got.Messages[2].Role)

	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, "claude-test", rec.model)
	assert.Equal(t, usage.Tokens{Input: 30, Output: 4, Cached: 10}, rec.tokens)
}

func TestConverseRecorderFailureIsLogged(t *testing.T) {
	backend := &fakeBackend{reply: &anthropic.Reply{Text: "ok", Model: "m"}}
	rec := &fakeRecorder{err: errors.New("disk full")}
	logger, hook := test.NewNullLogger()

	reply, err := converse(context.Background(), bobLectic, backend, rec, logger)
	require.NoError(t, err)
	assert.Contains(t, reply, "ok")

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "could not record usage", hook.LastEntry().Message)
}

func TestConverseReplyWithFence(t *testing.T) {
	text := "In Haskell write Data.Map::: or a:::b"
	backend := &fakeBackend{reply: &anthropic.Reply{Text: text, Model: "m"}}
	rec := &fakeRecorder{}
	logger, hook := test.NewNullLogger()

	_, err := converse(context.Background(), bobLectic, backend, rec, logger)
	require.ErrorIs(t, err, transcript.ErrFenceInReply)

	assert.Equal(t, 1, rec.calls, "usage is still recorded")
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, text, hook.LastEntry().Data["reply"])
}

func TestConverseNilRecorder(t *testing.T) {
	backend := &fakeBackend{reply: &anthropic.Reply{Text: "ok"}}
	logger, _ := test.NewNullLogger()

	_, err := converse(context.Background(), bobLectic, backend, nil, logger)
	assert.NoError(t, err)
}

func TestConverseEmptyBody(t *testing.T) {
	backend := &fakeBackend{}
	logger, _ := test.NewNullLogger()

	doc := "---\ninterlocutor:\n  name: Bob\n  prompt: p\n---\n \n\t\n"
	_, err := converse(context.Background(), doc, backend, nil, logger)
	assert.ErrorIs(t, err, errEmptyConversation)
	assert.Nil(t, backend.got, "backend must not be called")
}

func TestConverseParseError(t *testing.T) {
	backend := &fakeBackend{}
	logger, _ := test.NewNullLogger()

	_, err := converse(context.Background(), "no header here", backend, nil, logger)
	assert.ErrorIs(t, err, lectic.ErrMissingHeader)
	assert.Nil(t, backend.got)
}

func TestConverseBackendError(t *testing.T) {
	backend := &fakeBackend{err: anthropic.ErrNoAPIKey}
	rec := &fakeRecorder{}
	logger, _ := test.NewNullLogger()

	_, err := converse(context.Background(), bobLectic, backend, rec, logger)
	assert.ErrorIs(t, err, anthropic.ErrNoAPIKey)
	assert.Zero(t, rec.calls)
}

func TestReadLectic(t *testing.T) {
	t.Run("stdin", func(t *testing.T) {
		got, err := readLectic("-", strings.NewReader(bobLectic))
		require.NoError(t, err)
		assert.Equal(t, bobLectic, got)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "chat.lec")
		require.NoError(t, os.WriteFile(path, []byte(bobLectic), 0o644))

		got, err := readLectic(path, nil)
		require.NoError(t, err)
		assert.Equal(t, bobLectic, got)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := readLectic(filepath.Join(t.TempDir(), "nope.lec"), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "can't read lectic")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestNewDocumentView(t *testing.T) {
	doc, err := lectic.Parse(bobLectic)
	require.NoError(t, err)

	view := newDocumentView(doc)
	assert.Equal(t, "Bob", view.Header.Interlocutor.Name)
	assert.Equal(t, []blockView{
		{Kind: "plain", Content: "Hello\n"},
		{Kind: "named", Name: "Bob", Content: "Hi there\n"},
		{Kind: "plain", Content: "\nHow are you?\n"},
	}, view.Body)
}

func TestWriteView(t *testing.T) {
	v := blockView{Kind: "named", Name: "Bob", Content: "hi"}

	var js bytes.Buffer
	require.NoError(t, writeView(&js, v, true))
	assert.JSONEq(t, `{"kind":"named","name":"Bob","content":"hi"}`, js.String())

	var ym bytes.Buffer
	require.NoError(t, writeView(&ym, v, false))
	assert.YAMLEq(t, "kind: named\nname: Bob\ncontent: hi\n", ym.String())
}

func TestArgPath(t *testing.T) {
	assert.Equal(t, "-", argPath(nil))
	assert.Equal(t, "a.lec", argPath([]string{"a.lec"}))
}
