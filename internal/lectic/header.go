// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lectic

import (
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/lectic/pkg/types"
)

// headerMarker opens and closes the YAML header. Each marker must sit on a
// line of its own.
const headerMarker = "---"

// maxTemperature is the top of the header's integer temperature scale.
const maxTemperature = 255

// rawHeader mirrors types.Header with pointer fields so that missing keys
// can be told apart from zero values.
type rawHeader struct {
	Interlocutor *rawInterlocutor `yaml:"interlocutor"`
}

type rawInterlocutor struct {
	Name        *string `yaml:"name"`
	Prompt      *string `yaml:"prompt"`
	Temperature *int    `yaml:"temperature"`
	TokenLimit  *int    `yaml:"token_limit"`
	Model       string  `yaml:"model"`
}

// ExtractHeader splits a lectic into its decoded header and the body text
// that follows the closing marker line.
func ExtractHeader(text string) (types.Header, string, error) {
	interior, body, ok := splitHeader(text)
	if !ok {
		return types.Header{}, "", ErrMissingHeader
	}

	header, err := decodeHeader(interior)
	if err != nil {
		return types.Header{}, "", err
	}
	return header, body, nil
}

// splitHeader finds the marker lines and returns the text between them and
// the text after the closing line.
func splitHeader(text string) (interior, body string, ok bool) {
	first, rest, found := cutLine(text)
	if first != headerMarker || !found {
		return "", "", false
	}

	offset := 0
	for offset <= len(rest) {
		line, after, found := cutLine(rest[offset:])
		if line == headerMarker {
			return rest[:offset], after, true
		}
		if !found {
			break
		}
		offset = len(rest) - len(after)
	}
	return "", "", false
}

// cutLine returns the first line of s without its terminator (a trailing
// carriage return is dropped too), the text after the line break, and
// whether a line break was present.
func cutLine(s string) (line, rest string, found bool) {
	line, rest, found = strings.Cut(s, "\n")
	return strings.TrimSuffix(line, "\r"), rest, found
}

func decodeHeader(interior string) (types.Header, error) {
	var raw rawHeader
	if err := yaml.Unmarshal([]byte(interior), &raw); err != nil {
		return types.Header{}, &HeaderDecodeError{Reason: err.Error(), Err: err}
	}

	ic := raw.Interlocutor
	switch {
	case ic == nil:
		return types.Header{}, &HeaderDecodeError{Reason: "missing interlocutor"}
	case ic.Name == nil:
		return types.Header{}, &HeaderDecodeError{Reason: "interlocutor is missing a name"}
	}

	// Replies are written under "::: name", so the name must read back
	// unchanged from a fence.
	name := strings.TrimSpace(*ic.Name)
	if err := CheckName(name); err != nil {
		return types.Header{}, &HeaderDecodeError{Reason: "interlocutor " + err.Error()}
	}

	switch {
	case ic.Prompt == nil:
		return types.Header{}, &HeaderDecodeError{Reason: "interlocutor is missing a prompt"}
	case ic.Temperature != nil && (*ic.Temperature < 0 || *ic.Temperature > maxTemperature):
		return types.Header{}, &HeaderDecodeError{Reason: "temperature must be between 0 and 255"}
	case ic.TokenLimit != nil && *ic.TokenLimit < 0:
		return types.Header{}, &HeaderDecodeError{Reason: "token_limit must not be negative"}
	}

	return types.Header{
		Interlocutor: types.Interlocutor{
			Name:        name,
			Prompt:      *ic.Prompt,
			Temperature: ic.Temperature,
			TokenLimit:  ic.TokenLimit,
			Model:       ic.Model,
		},
	}, nil
}
