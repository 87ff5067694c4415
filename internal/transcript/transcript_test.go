// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transcript

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/lectic/internal/lectic"
	"github.com/pdiddy/lectic/pkg/types"
)

const doc = "---\ninterlocutor:\n  name: Bob\n  prompt: Be terse.\n---\nHello\n:::Bob\nHi there\n:::\nHow are you?\n\n"

func reply(t *testing.T, name, text string) string {
	t.Helper()
	r, err := FormatReply(name, text)
	require.NoError(t, err)
	return r
}

func TestFormatReply(t *testing.T) {
	assert.Equal(t, "::: Bob\n\nFine.\n\n:::", reply(t, "Bob", "\n  Fine.\n"))
	assert.Equal(t, "::: Doctor Who\n\na: b :: c\n\n:::", reply(t, "Doctor Who", "a: b :: c"))
}

func TestFormatReply_RejectsFenceInText(t *testing.T) {
	for _, text := range []string{
		"In Haskell write Data.Map::: or a:::b",
		":::",
		"ends with a fence\n::::",
	} {
		_, err := FormatReply("Bob", text)
		assert.ErrorIs(t, err, ErrFenceInReply, "text %q", text)
	}
}

func TestFormatReply_RejectsUnfenceableName(t *testing.T) {
	for _, name := range []string{"", "Dr: Who", "Bob\nAlice", " Bob"} {
		_, err := FormatReply(name, "Hi")
		assert.Error(t, err, "name %q", name)
	}
}

func TestAppend(t *testing.T) {
	got := Append(doc, reply(t, "Bob", "Fine."))
	assert.Equal(t, "---\ninterlocutor:\n  name: Bob\n  prompt: Be terse.\n---\nHello\n:::Bob\nHi there\n:::\nHow are you?\n\n::: Bob\n\nFine.\n\n:::\n", got)
}

func TestAppend_ReparsesAsAssistantTurn(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		who  string
		text string
	}{
		{"plain reply", doc, "Bob", "Fine, thanks."},
		{"reply with colons", doc, "Bob", "Use a :: b, or x: y."},
		{"name with spaces", "---\ninterlocutor:\n  name: Doctor Who\n  prompt: p\n---\nHello\n", "Doctor Who", "Hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, err := lectic.Parse(tt.doc)
			require.NoError(t, err)

			parsed, err := lectic.Parse(Append(tt.doc, reply(t, tt.who, tt.text)))
			require.NoError(t, err)
			require.Len(t, parsed.Body, len(before.Body)+1)

			last := parsed.Body[len(parsed.Body)-1]
			require.IsType(t, types.NamedBlock{}, last)
			assert.Equal(t, before.Header.Interlocutor.Name, last.(types.NamedBlock).Name)
			assert.Equal(t, tt.text+"\n\n", last.Content())
		})
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chat.lec")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

	require.NoError(t, WriteFile(path, "new"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestWriteFile_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.lec")
	require.NoError(t, WriteFile(path, "content"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}
