// Package srcmap maps byte ranges produced by the lexer/parser to
// file/line/column locations for diagnostics. It is opaque to evaluation:
// nothing in internal/eval, internal/contracts, or internal/types imports
// it except to build a diag.Diagnostic.
package srcmap

import (
	"strings"

	"github.com/lucid-lang/lucid/internal/ident"
)

// File is one loaded source file: its name, raw content, and a
// precomputed table of line-start byte offsets for O(log n) offset ->
// line/column lookups, computed once up front instead of incrementally
// during scanning, since srcmap also serves positions synthesized after
// parsing (e.g. contract labels).
type File struct {
	ID          int
	Name        string
	Content     string
	lineOffsets []int
}

// Map owns the set of loaded files, keyed by the SourceID that
// ident.Allocator.NewSourceID handed out for each.
type Map struct {
	alloc *ident.Allocator
	files map[int]*File
}

// New creates an empty source map bound to the given allocator.
func New(alloc *ident.Allocator) *Map {
	return &Map{alloc: alloc, files: make(map[int]*File)}
}

// AddFile registers content under a fresh source id and returns it.
func (m *Map) AddFile(name, content string) *File {
	f := &File{
		ID:          m.alloc.NewSourceID(),
		Name:        name,
		Content:     content,
		lineOffsets: computeLineOffsets(content),
	}
	m.files[f.ID] = f
	return f
}

// File looks up a previously registered file by id.
func (m *Map) File(id int) (*File, bool) {
	f, ok := m.files[id]
	return f, ok
}

func computeLineOffsets(content string) []int {
	offsets := []int{0}
	for i, r := range content {
		if r == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// LineCol converts a byte offset within the file into a 1-based
// line/column pair.
func (f *File) LineCol(offset int) (line, col int) {
	// Binary search the largest lineOffsets[i] <= offset.
	lo, hi := 0, len(f.lineOffsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if f.lineOffsets[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	line = lo + 1
	col = offset - f.lineOffsets[lo] + 1
	return line, col
}

// Snippet returns the source text spanning a Pos, or "" for a synthesized
// position.
func (m *Map) Snippet(p ident.Pos) string {
	if !p.Valid {
		return ""
	}
	f, ok := m.files[p.SourceID]
	if !ok || p.Start < 0 || p.End > len(f.Content) || p.Start > p.End {
		return ""
	}
	return f.Content[p.Start:p.End]
}

// Describe renders a position as "file:line:col" for diagnostics, or
// "<synthesized>" when the position is synthesized.
func (m *Map) Describe(p ident.Pos) string {
	if !p.Valid {
		return "<synthesized>"
	}
	f, ok := m.files[p.SourceID]
	if !ok {
		return "<unknown>"
	}
	line, col := f.LineCol(p.Start)
	var b strings.Builder
	b.WriteString(f.Name)
	b.WriteByte(':')
	b.WriteString(itoa(line))
	b.WriteByte(':')
	b.WriteString(itoa(col))
	return b.String()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
