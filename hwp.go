// Package hwp provides a high-level API for reading, editing, and
// validating Korean word-processor documents: the binary .hwp container
// and the archive (ZIP+XML) .hwpx container, behind one format-agnostic
// Document type.
//
// # Basic Usage
//
// Opening a document and reading its text:
//
//	doc, err := hwp.Open("report.hwp")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, line := range must(doc.Text()) {
//	    fmt.Println(line)
//	}
//
// Editing and saving:
//
//	if err := doc.SetText("s0.p0", "Revised introduction"); err != nil {
//	    log.Fatal(err)
//	}
//	if err := doc.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Package Structure
//
// This package is a convenience wrapper around holder.Holder and the
// ops/ref dispatch machinery; it exists so callers editing one document at
// a time don't need to import holder, ops, and ref separately. The daemon
// client (package daemon) is the right tool instead when many short-lived
// processes need to share one open document without re-parsing it each
// time.
package hwp

import (
	"strings"

	"github.com/gohwp/hwp/binary"
	"github.com/gohwp/hwp/doc"
	"github.com/gohwp/hwp/format"
	"github.com/gohwp/hwp/holder"
	"github.com/gohwp/hwp/internal/options"
	"github.com/gohwp/hwp/ops"
)

// Document is the sole mutable handle to one open document. It is not
// safe for concurrent use — the daemon package exists for the
// concurrent/multi-client case.
type Document struct {
	h *holder.Holder
}

// Open loads the document at path, auto-detecting whether it is a
// binary-format or archive-format file.
func Open(path string) (*Document, error) {
	h, err := holder.Load(path)
	if err != nil {
		return nil, err
	}

	return &Document{h: h}, nil
}

// FormatTag reports which on-disk container format d was loaded from.
func (d *Document) FormatTag() format.Tag {
	return d.h.FormatTag()
}

// IsDirty reports whether d has pending edits not yet flushed to disk.
func (d *Document) IsDirty() bool {
	return d.h.IsDirty()
}

// Header returns d's font/char-shape/para-shape/style tables.
func (d *Document) Header() (doc.Header, error) {
	return d.h.GetHeader()
}

// Sections returns d's parsed sections.
func (d *Document) Sections() ([]doc.Section, error) {
	return d.h.GetSections()
}

// Text returns the text of every section-level paragraph across every
// section, in document order. Paragraphs inside table cells and text boxes
// are not included.
func (d *Document) Text() ([]string, error) {
	sections, err := d.h.GetSections()
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, sec := range sections {
		for _, p := range sec.Paragraphs {
			lines = append(lines, p.Text())
		}
	}

	return lines, nil
}

// Validate runs the structural validator over d's current bytes (§4.5).
// Archive-format documents short-circuit to a pass, since the validator's
// checks are specific to the binary record stream.
func (d *Document) Validate() (binary.Report, error) {
	return d.h.Validate()
}

// SetText replaces the text addressed by ref, which may name a paragraph,
// a table-cell paragraph, or a text-box paragraph.
func (d *Document) SetText(ref, text string) error {
	return d.h.ApplyOperations([]ops.Operation{{Kind: ops.SetText, Ref: ref, Text: text}})
}

// SetFormat applies f to the run range [start, end) of the paragraph
// addressed by ref, or to the whole paragraph when start and end are nil.
func (d *Document) SetFormat(ref string, f CharFormat, start, end *int) error {
	cf := f.toOps()

	return d.h.ApplyOperations([]ops.Operation{{
		Kind: ops.SetFormat, Ref: ref, Format: &cf, Start: start, End: end,
	}})
}

// AddTable inserts a new table into the section addressed by ref, with
// cellData supplying each cell's text in row-major order.
func (d *Document) AddTable(ref string, rows, cols int, cellData [][]string) error {
	return d.h.ApplyOperations([]ops.Operation{{
		Kind: ops.AddTable, Ref: ref, Rows: rows, Cols: cols, CellData: cellData,
	}})
}

// AddParagraph inserts a new paragraph into the section addressed by ref,
// at pos relative to the paragraph ref also names (ignored when pos is
// PositionEnd).
func (d *Document) AddParagraph(ref, text string, pos ops.Position, f *CharFormat) error {
	var cf *ops.CharFormat
	if f != nil {
		c := f.toOps()
		cf = &c
	}

	return d.h.ApplyOperations([]ops.Operation{{
		Kind: ops.AddParagraph, Ref: ref, Text: text, Position: pos, Format: cf,
	}})
}

// Save flushes pending edits to disk; a no-op if d has no pending edits.
func (d *Document) Save() error {
	return d.h.Flush()
}

// CharFormat is a set of optional character-formatting overrides, built up
// with functional options (the same Option[T] shape the rest of this
// module's configuration uses) rather than a struct literal full of
// pointer fields.
type CharFormat struct {
	bold, italic, underline *bool
	fontName                *string
	fontSize                *float64
	color                   *doc.Color
}

// CharFormatOption configures a CharFormat being built by NewCharFormat.
type CharFormatOption = options.Option[*CharFormat]

// NewCharFormat builds a CharFormat from zero or more options.
func NewCharFormat(opts ...CharFormatOption) CharFormat {
	var cf CharFormat
	_ = options.Apply(&cf, opts...) // the option funcs below never fail

	return cf
}

// WithBold sets or clears bold.
func WithBold(v bool) CharFormatOption {
	return options.NoError(func(cf *CharFormat) { cf.bold = &v })
}

// WithItalic sets or clears italic.
func WithItalic(v bool) CharFormatOption {
	return options.NoError(func(cf *CharFormat) { cf.italic = &v })
}

// WithUnderline sets or clears underline.
func WithUnderline(v bool) CharFormatOption {
	return options.NoError(func(cf *CharFormat) { cf.underline = &v })
}

// WithFontName sets the font face by name.
func WithFontName(name string) CharFormatOption {
	return options.NoError(func(cf *CharFormat) { cf.fontName = &name })
}

// WithFontSize sets the font size in points.
func WithFontSize(points float64) CharFormatOption {
	return options.NoError(func(cf *CharFormat) { cf.fontSize = &points })
}

// WithColor sets the text color, encoded "#RRGGBB" the same way the daemon
// wire protocol encodes it (§6.3).
func WithColor(hex string) CharFormatOption {
	return options.NoError(func(cf *CharFormat) {
		if c, ok := parseHexColor(hex); ok {
			cf.color = &c
		}
	})
}

func (f CharFormat) toOps() ops.CharFormat {
	return ops.CharFormat{
		Bold:      f.bold,
		Italic:    f.italic,
		Underline: f.underline,
		FontName:  f.fontName,
		FontSize:  f.fontSize,
		Color:     f.color,
	}
}

func parseHexColor(s string) (doc.Color, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return doc.Color{}, false
	}

	var v [3]uint8
	for i := 0; i < 3; i++ {
		n, ok := hexByte(s[i*2 : i*2+2])
		if !ok {
			return doc.Color{}, false
		}
		v[i] = n
	}

	return doc.Color{R: v[0], G: v[1], B: v[2]}, true
}

func hexByte(s string) (uint8, bool) {
	hi, ok := hexDigit(s[0])
	if !ok {
		return 0, false
	}
	lo, ok := hexDigit(s[1])
	if !ok {
		return 0, false
	}

	return hi<<4 | lo, true
}

func hexDigit(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	default:
		return 0, false
	}
}
