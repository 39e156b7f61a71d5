// Package textutil provides UTF-16/byte offset conversion and line-offset
// tables shared by every ecosystem parser.
//
// LSP positions are {line, character} pairs where character is a UTF-16
// code-unit offset within the line. Manifest content arrives as UTF-8 bytes,
// so every parser needs to convert between the two; this package is the one
// place that logic lives.
package textutil

import (
	"unicode/utf16"
	"unicode/utf8"

	"go.lsp.dev/protocol"
)

// LineTable is a precomputed, binary-searchable index of line-start byte
// offsets within a document. Building it once per parse keeps offset-to-
// position conversion O(log lines + length of one line) instead of O(n)
// per lookup.
type LineTable struct {
	content []byte
	starts  []int // byte offset of the start of each line; starts[0] == 0
}

// NewLineTable scans content once and records the byte offset of every
// line start.
func NewLineTable(content []byte) *LineTable {
	starts := make([]int, 1, 64)
	starts[0] = 0
	for i, b := range content {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineTable{content: content, starts: starts}
}

// LineCount returns the number of lines in the document.
func (t *LineTable) LineCount() int {
	return len(t.starts)
}

// byteOffsetToPosition converts an absolute byte offset into a {line,
// UTF-16 character} LSP position.
func (t *LineTable) byteOffsetToPosition(offset int) protocol.Position {
	line := t.lineForOffset(offset)
	lineStart := t.starts[line]
	lineBytes := t.lineBytes(line)

	col := offset - lineStart
	if col < 0 {
		col = 0
	}
	if col > len(lineBytes) {
		col = len(lineBytes)
	}

	char := utf16Len(lineBytes[:col])
	return protocol.Position{Line: uint32(line), Character: uint32(char)} //nolint:gosec
}

// PositionForOffset is the exported form of byteOffsetToPosition, used by
// parsers building Dependency ranges from byte offsets returned by the
// underlying TOML/JSON/go.mod decoder.
func (t *LineTable) PositionForOffset(offset int) protocol.Position {
	return t.byteOffsetToPosition(offset)
}

// RangeForOffsets builds a half-open LSP range [start, end) from two byte
// offsets into content.
func (t *LineTable) RangeForOffsets(start, end int) protocol.Range {
	return protocol.Range{
		Start: t.byteOffsetToPosition(start),
		End:   t.byteOffsetToPosition(end),
	}
}

// lineForOffset returns the 0-based line index containing the given byte
// offset via binary search over starts.
func (t *LineTable) lineForOffset(offset int) int {
	lo, hi := 0, len(t.starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if t.starts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

func (t *LineTable) lineBytes(line int) []byte {
	start := t.starts[line]
	var end int
	if line+1 < len(t.starts) {
		end = t.starts[line+1]
		// Strip the trailing newline (and a preceding \r) from the line body.
		for end > start && (t.content[end-1] == '\n' || t.content[end-1] == '\r') {
			end--
		}
	} else {
		end = len(t.content)
	}
	return t.content[start:end]
}

// LineText returns the raw text of a 0-based line, or "" if out of range.
func (t *LineTable) LineText(line int) string {
	if line < 0 || line >= len(t.starts) {
		return ""
	}
	return string(t.lineBytes(line))
}

// UTF16ToByteOffset converts a {line, UTF-16 character} position into a byte
// offset on that line's content, per spec.md's "shared utf16-to-byte-offset
// utility returning None out of bounds". Returns ok=false when the line or
// character is out of range.
func (t *LineTable) UTF16ToByteOffset(line, character int) (offset int, ok bool) {
	if line < 0 || line >= len(t.starts) {
		return 0, false
	}
	lineBytes := t.lineBytes(line)
	if character < 0 {
		return 0, false
	}

	units := utf16.Encode([]rune(string(lineBytes)))
	if character > len(units) {
		return 0, false
	}

	// Re-walk byte-by-byte counting UTF-16 units to find the byte offset
	// matching `character` UTF-16 units, one line at a time as recommended.
	byteIdx := 0
	unitCount := 0
	for byteIdx < len(lineBytes) && unitCount < character {
		r, size := utf8.DecodeRune(lineBytes[byteIdx:])
		unitCount += runeUTF16Width(r)
		byteIdx += size
	}
	if unitCount != character {
		return 0, false
	}
	return t.starts[line] + byteIdx, true
}

func utf16Len(b []byte) int {
	n := 0
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		n += runeUTF16Width(r)
		b = b[size:]
	}
	return n
}

func runeUTF16Width(r rune) int {
	if r1, r2 := utf16.EncodeRune(r); r1 == 0xFFFD && r2 == 0xFFFD {
		return 1
	}
	return 2
}
