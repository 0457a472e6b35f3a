package document

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/gossip-lsp/lspeasy/protocol"
)

// lineBounds returns the byte offsets of the start and end (exclusive of the
// newline) of the given zero-based line. ok is false when text has fewer lines.
func lineBounds(text string, line uint32) (start, end int, ok bool) {
	for l := uint32(0); l < line; l++ {
		nl := strings.IndexByte(text[start:], '\n')
		if nl < 0 {
			return len(text), len(text), false
		}
		start += nl + 1
	}
	end = len(text)
	if nl := strings.IndexByte(text[start:], '\n'); nl >= 0 {
		end = start + nl
	}
	return start, end, true
}

// OffsetAt converts an LSP position (line, UTF-16 code unit) to a byte offset.
// Positions past the end of a line clamp to the line end; lines past the end
// of the text clamp to len(text).
func OffsetAt(text string, pos protocol.Position) int {
	start, end, ok := lineBounds(text, pos.Line)
	if !ok {
		return len(text)
	}
	return start + utf16ToByteOffset(text[start:end], int(pos.Character))
}

// PositionAt converts a byte offset to an LSP position.
func PositionAt(text string, offset int) protocol.Position {
	offset = max(0, min(offset, len(text)))
	line := uint32(strings.Count(text[:offset], "\n"))
	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1
	return protocol.Position{Line: line, Character: uint32(UTF16Len(text[lineStart:offset]))}
}

// UTF16Len reports how many UTF-16 code units s occupies. Invalid bytes count
// as one unit each.
func UTF16Len(s string) int {
	n := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		n += runeUnits(r, size)
		i += size
	}
	return n
}

func utf16ToByteOffset(line string, units int) int {
	u, i := 0, 0
	for i < len(line) && u < units {
		r, size := utf8.DecodeRuneInString(line[i:])
		u += runeUnits(r, size)
		i += size
	}
	return i
}

func runeUnits(r rune, size int) int {
	if r == utf8.RuneError && size == 1 {
		return 1
	}
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

// LineAt returns the text of the given zero-based line without its newline,
// or "" when the line does not exist.
func LineAt(text string, line uint32) string {
	start, end, ok := lineBounds(text, line)
	if !ok {
		return ""
	}
	return text[start:end]
}

// WordAt returns the identifier-like word touching pos.
func WordAt(text string, pos protocol.Position) string {
	offset := OffsetAt(text, pos)
	if offset < 0 || offset > len(text) {
		return ""
	}
	start, end := offset, offset
	for start > 0 && isWordChar(text[start-1]) {
		start--
	}
	for end < len(text) && isWordChar(text[end]) {
		end++
	}
	return text[start:end]
}

func isWordChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_'
}

// EditRange describes one applied change in both byte and position terms, as
// incremental parsers need it.
type EditRange struct {
	StartByte  int
	OldEndByte int
	NewEndByte int
	StartPos   protocol.Position
	OldEndPos  protocol.Position
	NewEndPos  protocol.Position
	// Text is the inserted text.
	Text string
}

// ApplyChanges applies content change events in order and returns the new
// text. A change without a range replaces the whole text.
func ApplyChanges(text string, changes []protocol.TextDocumentContentChangeEvent) string {
	text, _ = ApplyChangesWithEdits(text, changes)
	return text
}

// ApplyChangesWithEdits is ApplyChanges that also reports the edit performed
// by each change.
func ApplyChangesWithEdits(text string, changes []protocol.TextDocumentContentChangeEvent) (string, []EditRange) {
	edits := make([]EditRange, 0, len(changes))
	for _, change := range changes {
		start, end := 0, len(text)
		startPos, oldEndPos := protocol.Position{}, PositionAt(text, len(text))
		if change.Range != nil {
			start = OffsetAt(text, change.Range.Start)
			end = max(start, OffsetAt(text, change.Range.End))
			startPos, oldEndPos = PositionAt(text, start), PositionAt(text, end)
		}
		text = text[:start] + change.Text + text[end:]
		newEnd := start + len(change.Text)
		edits = append(edits, EditRange{
			StartByte:  start,
			OldEndByte: end,
			NewEndByte: newEnd,
			StartPos:   startPos,
			OldEndPos:  oldEndPos,
			NewEndPos:  PositionAt(text, newEnd),
			Text:       change.Text,
		})
	}
	return text, edits
}
