// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lectic

import (
	"strings"

	"github.com/pdiddy/lectic/pkg/types"
)

// Normalize turns segments into blocks and drops every block whose content
// is empty or whitespace. Order is preserved and content is not modified.
func Normalize(segs []Segment) []types.Block {
	blocks := make([]types.Block, 0, len(segs))
	for _, seg := range segs {
		b := toBlock(seg)
		if IsBlank(b.Content()) {
			continue
		}
		blocks = append(blocks, b)
	}
	return blocks
}

func toBlock(seg Segment) types.Block {
	if seg.Kind == NamedSegment {
		return types.NamedBlock{Name: seg.Name, Text: seg.Content}
	}
	return types.PlainBlock{Text: seg.Content}
}

// IsBlank reports whether s consists only of Unicode whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
