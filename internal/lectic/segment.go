// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lectic

import "strings"

const (
	// fenceChar is repeated to open and close a named block.
	fenceChar = ':'

	// fence is the shortest run of fenceChar that forms a marker.
	fence = ":::"

	// contextLen bounds the excerpt carried by MalformedSegmentError.
	contextLen = 40
)

// SegmentKind tells named (fenced) segments from plain ones.
type SegmentKind int

const (
	// PlainSegment is unfenced text, sent as a user turn.
	PlainSegment SegmentKind = iota

	// NamedSegment is a ":::name" fenced turn, sent as an assistant turn.
	NamedSegment
)

func (k SegmentKind) String() string {
	if k == NamedSegment {
		return "named"
	}
	return "plain"
}

// Segment is a raw slice of the body before whitespace-only turns are
// dropped. Content shares memory with the body it was cut from.
type Segment struct {
	Kind    SegmentKind
	Name    string
	Content string

	// Offset is the byte offset of Content within the body.
	Offset int
}

// SegmentBody splits body text into plain and named segments in source
// order.
//
// A named segment opens with three or more colons followed by a name that
// runs to the next colon or line break. Further colons and any whitespace
// after the name are consumed. Its content runs up to the next three-colon
// fence, which closes it together with any colons that follow. Everything
// else is plain text.
//
// An opening marker without a name, or one that is never closed, is an
// error.
func SegmentBody(body string) ([]Segment, error) {
	var segs []Segment
	pos := 0
	for pos < len(body) {
		next := strings.Index(body[pos:], fence)
		if next != 0 {
			end := len(body)
			if next > 0 {
				end = pos + next
			}
			segs = append(segs, Segment{Kind: PlainSegment, Content: body[pos:end], Offset: pos})
			pos = end
			continue
		}

		seg, end, err := scanNamed(body, pos)
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
		pos = end
	}
	return segs, nil
}

// scanNamed reads a named segment whose opening fence starts at pos. It
// returns the segment and the offset just past its closing fence.
func scanNamed(body string, pos int) (Segment, int, error) {
	p := skipFence(body, pos)

	nameStart := p
	for p < len(body) && body[p] != fenceChar && body[p] != '\n' {
		p++
	}
	name := strings.TrimSpace(body[nameStart:p])
	if name == "" {
		return Segment{}, 0, malformed(body, pos, "fence has no name")
	}

	p = skipFence(body, p)
	for p < len(body) && isMarkerSpace(body[p]) {
		p++
	}

	closing := strings.Index(body[p:], fence)
	if closing < 0 {
		return Segment{}, 0, malformed(body, pos, "block "+name+" is never closed")
	}

	seg := Segment{Kind: NamedSegment, Name: name, Content: body[p : p+closing], Offset: p}
	return seg, skipFence(body, p+closing), nil
}

// skipFence returns the offset of the first byte at or after p that is not
// a fence character.
func skipFence(body string, p int) int {
	for p < len(body) && body[p] == fenceChar {
		p++
	}
	return p
}

// isMarkerSpace matches the whitespace an opening marker swallows.
func isMarkerSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func malformed(body string, pos int, reason string) *MalformedSegmentError {
	excerpt, _, _ := strings.Cut(body[pos:], "\n")
	if len(excerpt) > contextLen {
		excerpt = excerpt[:contextLen]
	}
	return &MalformedSegmentError{
		Reason:  reason,
		Context: excerpt,
		Offset:  pos,
		Line:    strings.Count(body[:pos], "\n") + 1,
	}
}
