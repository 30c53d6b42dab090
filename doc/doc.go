// Package doc defines the format-agnostic in-memory document projection
// shared by the binary and archive codecs: a (format tag, header, sections)
// triple, plus the header tables and section sub-collections that hang off
// it. Neither codec package constructs these types directly from scratch —
// both parse into them and mutate through the ops/ref packages, keeping the
// projection itself free of any wire-format detail.
package doc

import "github.com/gohwp/hwp/format"

// Document is the root in-memory projection of a parsed file, independent
// of which on-disk format produced it.
type Document struct {
	FormatTag format.Tag
	Header    Header
	Sections  []Section
}

// Header holds the four ordered tables shared by every section, plus the
// embedded-binary-data table. Entry
// identity is positional: an entry's id is its index in the slice, and
// inter-entry references are indices into these slices.
type Header struct {
	Fonts      []Font
	CharShapes []CharShape
	ParaShapes []ParaShape
	Styles     []Style
	BinData    []BinDataEntry
}

// BinDataEntry is one resolved entry of the document's embedded-binary-data
// table: the id used by image/OLE references, the stream path it resolves
// to, and its format extension. Exposed so mutation operations that embed
// new images can detect an already-present one instead of duplicating it.
type BinDataEntry struct {
	ID     int
	Path   string
	Format string
}

// Font is a single font-face table entry.
type Font struct {
	Name string
}

// Alignment is a paragraph-shape horizontal alignment.
type Alignment uint8

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
	AlignJustify
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	case AlignCenter:
		return "center"
	case AlignJustify:
		return "justify"
	default:
		return "unknown"
	}
}

// CharShape is a formatting-run entry: font, size, and emphasis attributes.
// FontSizePoints is held in points in memory; on-disk binary-format storage
// is hundredths of a point (see the CHAR_SHAPE layout constants in
// binary/tags.go).
type CharShape struct {
	FontRef        int
	FontSizePoints float64
	Bold           bool
	Italic         bool
	Underline      bool
	Color          Color
}

// Color is an RGB color value. Binary-format storage is 0xBBGGRR
// little-endian; archive-format storage is the integer (R<<16)|(G<<8)|B.
type Color struct {
	R, G, B uint8
}

// ParaShape is a paragraph-shape table entry: alignment and an optional
// outline heading level (1..7).
type ParaShape struct {
	Alignment    Alignment
	HeadingLevel int // 0 means "not a heading"
}

// HasHeading reports whether a heading level is set.
func (p ParaShape) HasHeading() bool {
	return p.HeadingLevel > 0
}

// Style is a named combination of a char-shape and a para-shape.
type Style struct {
	Name       string
	CharShape  int
	ParaShape  int
}

// Section is one of a document's ordered sections; each owns its own
// paragraphs, tables, images, and text boxes.
type Section struct {
	Paragraphs []Paragraph
	Tables     []Table
	Images     []Image
	TextBoxes  []TextBox
}

// Paragraph is a run-sequence of text sharing a para-shape and a style.
type Paragraph struct {
	Reference string
	Runs       []Run
	ParaShapeRef int
	StyleRef     int
}

// Run is a contiguous slice of paragraph text sharing one char-shape id.
type Run struct {
	Text         string
	CharShapeRef int
	Marker       ControlMarker
}

// ControlMarker identifies an inline control the reader skipped rather than
// modeled (footnote anchors, fields, and the like). It is read-only: a
// caller can see where a control sat in the run sequence, but editing
// controls themselves is out of scope. ControlMarkerNone means the run
// carries no such marker.
type ControlMarker uint8

const (
	ControlMarkerNone ControlMarker = iota
	ControlMarkerFootnote
	ControlMarkerEndnote
	ControlMarkerField
	ControlMarkerOther
)

func (m ControlMarker) String() string {
	switch m {
	case ControlMarkerNone:
		return "none"
	case ControlMarkerFootnote:
		return "footnote"
	case ControlMarkerEndnote:
		return "endnote"
	case ControlMarkerField:
		return "field"
	case ControlMarkerOther:
		return "other"
	default:
		return "unknown"
	}
}

// Text concatenates a paragraph's runs into its full visible text.
func (p Paragraph) Text() string {
	var out []byte
	for _, r := range p.Runs {
		out = append(out, r.Text...)
	}

	return string(out)
}

// Table is a grid of logical cells; merged cells are represented once at
// their top-left grid position with ColSpan*RowSpan >= 1.
type Table struct {
	Reference string
	Rows      int
	Cols      int
	Cells     []Cell
}

// Cell is a logical table cell. Row/Col are the cell's top-left grid
// position (0-based); ColSpan/RowSpan are both >= 1 for an unmerged cell.
type Cell struct {
	Reference  string
	Row, Col   int
	RowSpan    int
	ColSpan    int
	Paragraphs []Paragraph
}

// TextBox is a container with its own paragraph subtree, addressed
// independently of the section it sits in.
type TextBox struct {
	Reference  string
	Paragraphs []Paragraph
}

// Image is a reference to binary picture data plus its display geometry.
type Image struct {
	Reference   string
	BinDataPath string
	Width       int
	Height      int
	Format      string // lowercase extension: "png", "jpg", ...
}
