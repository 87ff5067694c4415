// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transcript writes model replies back into lectic documents.
package transcript

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/lectic/internal/lectic"
)

// ErrFenceInReply is returned by FormatReply when the reply text holds a
// ":::" run, which would close the reply block early.
var ErrFenceInReply = errors.New("reply contains a ':::' fence")

// FormatReply renders a reply as a fenced block attributed to name, with a
// blank line inside each fence. It refuses names and texts that would not
// read back as a single block attributed to name.
func FormatReply(name, text string) (string, error) {
	if err := lectic.CheckName(name); err != nil {
		return "", fmt.Errorf("can't attribute reply to %q: %w", name, err)
	}
	if lectic.ContainsFence(text) {
		return "", ErrFenceInReply
	}
	return fmt.Sprintf("::: %s\n\n%s\n\n:::", name, strings.TrimSpace(text)), nil
}

// Append adds a formatted reply to the end of a document, separated from
// the existing text by one blank line. The result ends with a line break.
func Append(doc, reply string) string {
	return strings.TrimRight(doc, " \t\r\n") + "\n\n" + reply + "\n"
}

// WriteFile replaces path with content atomically: it writes a temporary
// file next to path and renames it into place, keeping path's mode.
func WriteFile(path, content string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return fmt.Errorf("setting mode on %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
