// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render derives what the chat client sends to the model from a
// parsed lectic: the message list, the system prompt, and the sampling
// parameters.
package render

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/pdiddy/lectic/pkg/types"
)

const (
	// DefaultTemperature is used when the header has no temperature.
	DefaultTemperature = 0.7

	// DefaultTokenLimit is used when the header has no token_limit.
	DefaultTokenLimit = 512

	// temperatureScale maps the header's 0-255 integer onto [0, 1].
	temperatureScale = 255.0

	// WrapColumn is the soft-wrap width the model is asked to respect.
	WrapColumn = 78
)

// systemPromptTmpl frames the interlocutor's own prompt with output
// conventions that suit a plain-text transcript.
var systemPromptTmpl = template.Must(template.New("system").Parse(`Your name is {{.Name}}.

{{.Prompt}}

Follow these conventions in every reply:
- Your replies are written into a plain-text document, not rendered as markup.
- Prefer Unicode symbols (e.g. ∀, ∑, →, ≤) to LaTeX notation for mathematics.
- Soft-wrap your text so that lines are no longer than about {{.Wrap}} columns.
`))

// Render assembles the Conversation for doc.
func Render(doc *types.Document) (*types.Conversation, error) {
	ic := doc.Header.Interlocutor

	system, err := SystemPrompt(ic)
	if err != nil {
		return nil, fmt.Errorf("rendering system prompt: %w", err)
	}

	return &types.Conversation{
		Name:         ic.Name,
		Messages:     Messages(doc.Body),
		SystemPrompt: system,
		Temperature:  Temperature(ic),
		TokenLimit:   TokenLimit(ic),
		Model:        ic.Model,
	}, nil
}

// Messages maps each block to a message in order: named blocks are
// assistant turns and plain blocks are user turns.
func Messages(body []types.Block) []types.Message {
	msgs := make([]types.Message, 0, len(body))
	for _, b := range body {
		msgs = append(msgs, types.Message{Role: RoleOf(b), Content: b.Content()})
	}
	return msgs
}

// RoleOf returns the role a block is sent as. It depends only on the
// block's kind.
func RoleOf(b types.Block) types.Role {
	if _, ok := b.(types.NamedBlock); ok {
		return types.RoleAssistant
	}
	return types.RoleUser
}

// SystemPrompt renders the system prompt for ic.
func SystemPrompt(ic types.Interlocutor) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Name   string
		Prompt string
		Wrap   int
	}{ic.Name, ic.Prompt, WrapColumn}
	if err := systemPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Temperature scales the header temperature to [0, 1], or returns
// DefaultTemperature when it is absent.
func Temperature(ic types.Interlocutor) float64 {
	if ic.Temperature == nil {
		return DefaultTemperature
	}
	return float64(*ic.Temperature) / temperatureScale
}

// TokenLimit returns the header token limit, or DefaultTokenLimit when it
// is absent.
func TokenLimit(ic types.Interlocutor) int {
	if ic.TokenLimit == nil {
		return DefaultTokenLimit
	}
	return *ic.TokenLimit
}
