// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lectic

import (
	"errors"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/lectic/pkg/types"
)

// Encode writes a Document back out as lectic text. Parsing the result
// yields the same sequence of block kinds and names, provided the body has
// no two plain blocks in a row (they would be read back as one). Named
// blocks whose name or text would not read back unchanged are an error.
func Encode(doc *types.Document) (string, error) {
	header, err := yaml.Marshal(doc.Header)
	if err != nil {
		return "", fmt.Errorf("marshaling header: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(headerMarker + "\n")
	sb.Write(header)
	sb.WriteString(headerMarker + "\n")

	for _, b := range doc.Body {
		switch b := b.(type) {
		case types.NamedBlock:
			if err := CheckName(b.Name); err != nil {
				return "", fmt.Errorf("block %q: %w", b.Name, err)
			}
			if ContainsFence(b.Text) {
				return "", fmt.Errorf("block %q: content contains %q", b.Name, fence)
			}
			sb.WriteString(FormatNamed(b.Name, b.Text))
		case types.PlainBlock:
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}

// ContainsFence reports whether s holds a run of three fence characters,
// which would end a named block early if s were written inside one.
func ContainsFence(s string) bool {
	return strings.Contains(s, fence)
}

// CheckName reports why name cannot label a fenced block, or returns nil.
// A usable name is non-blank, has no surrounding whitespace, and contains
// no fence character or line break, so that "::: name" reads back as name.
func CheckName(name string) error {
	switch {
	case IsBlank(name):
		return errors.New("name is empty")
	case strings.TrimSpace(name) != name:
		return errors.New("name has surrounding whitespace")
	case strings.ContainsAny(name, string(fenceChar)+"\r\n"):
		return errors.New("name must not contain ':' or a line break")
	}
	return nil
}

// FormatNamed renders a fenced block for name. The closing fence sits on its
// own line and ends with a line break, so a following fence is never
// swallowed by it.
func FormatNamed(name, content string) string {
	var sb strings.Builder
	sb.WriteString(fence + " " + name + "\n")
	sb.WriteString(content)
	if !strings.HasSuffix(content, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString(fence + "\n")
	return sb.String()
}
