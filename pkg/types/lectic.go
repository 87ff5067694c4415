// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data model shared by the parser, the renderer and
// the CLI.
package types

// Interlocutor describes the assistant persona a lectic talks to.
type Interlocutor struct {
	// Name labels the persona's turns in the transcript (e.g. "Bob").
	Name string `json:"name" yaml:"name"`

	// Prompt is the persona's free-form system instructions.
	Prompt string `json:"prompt" yaml:"prompt"`

	// Temperature is an optional sampling temperature on a 0-255 scale.
	Temperature *int `json:"temperature,omitempty" yaml:"temperature,omitempty"`

	// TokenLimit is an optional cap on the length of the reply.
	TokenLimit *int `json:"token_limit,omitempty" yaml:"token_limit,omitempty"`

	// Model optionally overrides the configured model for this document.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
}

// Header is the decoded YAML region at the top of a lectic.
type Header struct {
	Interlocutor Interlocutor `json:"interlocutor" yaml:"interlocutor"`
}

// Block is one turn of the lectic body. It is either a NamedBlock (an
// assistant turn fenced with ":::name") or a PlainBlock (user text).
type Block interface {
	// Content returns the turn's text exactly as it appeared in the source.
	Content() string

	block()
}

// NamedBlock is a fenced turn attributed to the interlocutor.
type NamedBlock struct {
	Name string `json:"name" yaml:"name"`
	Text string `json:"content" yaml:"content"`
}

// Content implements Block.
func (b NamedBlock) Content() string { return b.Text }

func (NamedBlock) block() {}

// PlainBlock is unfenced text attributed to the user.
type PlainBlock struct {
	Text string `json:"content" yaml:"content"`
}

// Content implements Block.
func (b PlainBlock) Content() string { return b.Text }

func (PlainBlock) block() {}

// Document is the result of parsing one lectic: a header and the ordered
// body turns. It is not modified after parsing.
type Document struct {
	Header Header  `json:"header" yaml:"header"`
	Body   []Block `json:"body" yaml:"body"`
}
