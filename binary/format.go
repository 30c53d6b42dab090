package binary

import "github.com/gohwp/hwp/doc"

// CharFormat is a partial update to a CHAR_SHAPE's attributes; nil fields
// are left unchanged when cloning the source shape.
type CharFormat struct {
	Bold      *bool
	Italic    *bool
	Underline *bool
	FontName  *string
	FontSize  *float64 // points
	Color     *doc.Color
}

// Position selects where AddParagraph inserts a new paragraph relative to
// an existing one.
type Position int

const (
	PositionBefore Position = iota
	PositionAfter
	PositionEnd
)

// Range selects a visible-character span within a paragraph's text for
// SetFormat; Start and End are rune indices with End exclusive.
type Range struct {
	Start, End int
}
