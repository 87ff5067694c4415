// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Role identifies the speaker of a Message as the Messages API sees it.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged turn sent to the model.
type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// Conversation is everything the chat client needs to request the next
// assistant turn for a Document.
type Conversation struct {
	// Name is the interlocutor name the reply is attributed to.
	Name string `json:"name" yaml:"name"`

	// Messages lists the body turns in document order.
	Messages []Message `json:"messages" yaml:"messages"`

	// SystemPrompt is the rendered persona instructions.
	SystemPrompt string `json:"system" yaml:"system"`

	// Temperature is the sampling temperature in [0, 1].
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// TokenLimit is the maximum number of tokens in the reply.
	TokenLimit int `json:"max_tokens" yaml:"max_tokens"`

	// Model is the per-document model override, empty when unset.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
}
