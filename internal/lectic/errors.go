// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lectic

import (
	"errors"
	"fmt"
)

// ErrMissingHeader is returned when the input does not start with a
// "---" delimited header region.
var ErrMissingHeader = errors.New("couldn't locate YAML header")

// HeaderDecodeError reports a header region that was found but could not be
// decoded into an interlocutor.
type HeaderDecodeError struct {
	Reason string
	Err    error
}

func (e *HeaderDecodeError) Error() string {
	return fmt.Sprintf("couldn't parse header: %s", e.Reason)
}

func (e *HeaderDecodeError) Unwrap() error {
	return e.Err
}

// MalformedSegmentError reports a fence in the body that does not form a
// valid block. Offset is a byte offset into the text that was parsed and
// Line is its 1-based line number.
type MalformedSegmentError struct {
	Reason  string
	Context string
	Offset  int
	Line    int
}

func (e *MalformedSegmentError) Error() string {
	return fmt.Sprintf("malformed block at line %d: %s near %q", e.Line, e.Reason, e.Context)
}
