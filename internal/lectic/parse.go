// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lectic parses lectic documents: a YAML header naming an
// interlocutor, followed by user text interleaved with ":::name" fenced
// assistant turns.
//
//	---
//	interlocutor:
//	  name: Bob
//	  prompt: Be terse.
//	---
//	Hello
//	:::Bob
//	Hi there
//	:::
//
// Parsing is pure: no I/O, no logging, and errors are returned as typed
// values (ErrMissingHeader, *HeaderDecodeError, *MalformedSegmentError).
package lectic

import (
	"errors"
	"strings"

	"github.com/pdiddy/lectic/pkg/types"
)

// Parse decodes a full lectic into a Document.
func Parse(text string) (*types.Document, error) {
	header, body, err := ExtractHeader(text)
	if err != nil {
		return nil, err
	}

	segs, err := SegmentBody(body)
	if err != nil {
		var mse *MalformedSegmentError
		if errors.As(err, &mse) {
			// Report positions relative to the whole document.
			headerLen := len(text) - len(body)
			mse.Line += strings.Count(text[:headerLen], "\n")
			mse.Offset += headerLen
		}
		return nil, err
	}

	return &types.Document{Header: header, Body: Normalize(segs)}, nil
}
