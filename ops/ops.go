// Package ops defines the tagged-union edit operation that every caller
// (the top-level API, the daemon's command handlers) builds, and the
// dispatcher that routes it to the binary or archive mutator according to
// a document's detected format tag (§9 "Operation dispatch": "edit
// operations are a tagged union; a visitor/dispatcher selects the holder
// and, within it, the exact patch routine").
package ops

import (
	"fmt"

	"github.com/gohwp/hwp/archive"
	"github.com/gohwp/hwp/binary"
	"github.com/gohwp/hwp/doc"
	"github.com/gohwp/hwp/errs"
	"github.com/gohwp/hwp/format"
	"github.com/gohwp/hwp/ref"
)

// Kind identifies which edit operation a Operation carries.
type Kind int

const (
	SetText Kind = iota
	SetFormat
	AddTable
	AddParagraph
)

// Position mirrors binary.Position/archive.Position so callers don't need
// to import either codec package just to build an Operation.
type Position int

const (
	PositionBefore Position = iota
	PositionAfter
	PositionEnd
)

// CharFormat mirrors binary.CharFormat/archive.CharFormat.
type CharFormat struct {
	Bold      *bool
	Italic    *bool
	Underline *bool
	FontName  *string
	FontSize  *float64
	Color     *doc.Color
}

// Operation is a single edit, addressed by reference string. Which fields
// apply depends on Kind:
//   - SetText: Ref + Text (Ref may address a paragraph, a cell paragraph,
//     or a text-box paragraph).
//   - SetFormat: Ref (a paragraph) + Format, optionally Start/End for an
//     inline range.
//   - AddTable: Ref (a section) + Rows/Cols/CellData.
//   - AddParagraph: Ref (a section, optionally carrying a paragraph anchor)
//     + Text/Position, optionally Format.
type Operation struct {
	Kind Kind
	Ref  string

	Text string

	Format *CharFormat
	Start  *int
	End    *int

	Rows     int
	Cols     int
	CellData [][]string

	Position Position
}

// Dispatch applies op against whichever of bm/am is non-nil, matching
// tag. Exactly one of bm, am is expected to be set by the caller (the
// holder owns the mutator matching its own document's format).
func Dispatch(tag format.Tag, bm *binary.Mutator, am *archive.Mutator, op Operation) error {
	r, err := ref.Parse(op.Ref)
	if err != nil {
		return err
	}

	switch tag {
	case format.Binary:
		if bm == nil {
			return fmt.Errorf("%w: no binary mutator available", errs.ErrInvalidFormat)
		}

		return dispatchBinary(bm, r, op)
	case format.Archive:
		if am == nil {
			return fmt.Errorf("%w: no archive mutator available", errs.ErrInvalidFormat)
		}

		return dispatchArchive(am, r, op)
	default:
		return fmt.Errorf("%w: unknown format tag", errs.ErrInvalidFormat)
	}
}

func dispatchBinary(m *binary.Mutator, r ref.Ref, op Operation) error {
	switch op.Kind {
	case SetText:
		return binarySetText(m, r, op.Text)
	case SetFormat:
		return m.SetFormat(r.Section, r.Paragraph, toBinaryFormat(op.Format), toBinaryRange(op.Start, op.End))
	case AddTable:
		return m.AddTable(r.Section, op.Rows, op.Cols, op.CellData)
	case AddParagraph:
		var anchor *int
		if r.HasParagraph {
			anchor = &r.Paragraph
		}

		return m.AddParagraph(r.Section, anchor, op.Text, toBinaryPosition(op.Position), toBinaryFormatPtr(op.Format))
	default:
		return fmt.Errorf("%w: unknown operation kind", errs.ErrInvalidFormat)
	}
}

func binarySetText(m *binary.Mutator, r ref.Ref, text string) error {
	switch {
	case r.HasCell:
		cellParagraph := 0
		if r.HasCellParagraph {
			cellParagraph = r.CellParagraph
		}

		return m.SetTableCellText(r.Section, r.Table, r.Row, r.Col, cellParagraph, text)
	case r.HasTextBox:
		tbParagraph := 0
		if r.HasTextBoxParagraph {
			tbParagraph = r.TextBoxParagraph
		}

		return m.SetTextBoxText(r.Section, r.TextBox, tbParagraph, text)
	case r.HasParagraph:
		return m.SetParagraphText(r.Section, r.Paragraph, text)
	default:
		return fmt.Errorf("%w: %q does not address a paragraph", errs.ErrInvalidReference, ref.Build(r))
	}
}

func dispatchArchive(m *archive.Mutator, r ref.Ref, op Operation) error {
	switch op.Kind {
	case SetText:
		return archiveSetText(m, r, op.Text)
	case SetFormat:
		return m.SetFormat(r.Section, r.Paragraph, toArchiveFormat(op.Format), toArchiveRange(op.Start, op.End))
	case AddTable:
		return m.AddTable(r.Section, op.Rows, op.Cols, op.CellData)
	case AddParagraph:
		var anchor *int
		if r.HasParagraph {
			anchor = &r.Paragraph
		}

		return m.AddParagraph(r.Section, anchor, op.Text, toArchivePosition(op.Position), toArchiveFormatPtr(op.Format))
	default:
		return fmt.Errorf("%w: unknown operation kind", errs.ErrInvalidFormat)
	}
}

func archiveSetText(m *archive.Mutator, r ref.Ref, text string) error {
	switch {
	case r.HasCell:
		cellParagraph := 0
		if r.HasCellParagraph {
			cellParagraph = r.CellParagraph
		}

		return m.SetTableCellText(r.Section, r.Table, r.Row, r.Col, cellParagraph, text)
	case r.HasTextBox:
		tbParagraph := 0
		if r.HasTextBoxParagraph {
			tbParagraph = r.TextBoxParagraph
		}

		return m.SetTextBoxText(r.Section, r.TextBox, tbParagraph, text)
	case r.HasParagraph:
		return m.SetParagraphText(r.Section, r.Paragraph, text)
	default:
		return fmt.Errorf("%w: %q does not address a paragraph", errs.ErrInvalidReference, ref.Build(r))
	}
}

func toBinaryFormat(f *CharFormat) binary.CharFormat {
	if f == nil {
		return binary.CharFormat{}
	}

	return binary.CharFormat{
		Bold: f.Bold, Italic: f.Italic, Underline: f.Underline,
		FontName: f.FontName, FontSize: f.FontSize, Color: f.Color,
	}
}

func toBinaryFormatPtr(f *CharFormat) *binary.CharFormat {
	if f == nil {
		return nil
	}
	bf := toBinaryFormat(f)

	return &bf
}

func toBinaryRange(start, end *int) *binary.Range {
	if start == nil && end == nil {
		return nil
	}
	s, e := 0, 0
	if start != nil {
		s = *start
	}
	if end != nil {
		e = *end
	}

	return &binary.Range{Start: s, End: e}
}

func toBinaryPosition(p Position) binary.Position {
	switch p {
	case PositionBefore:
		return binary.PositionBefore
	case PositionAfter:
		return binary.PositionAfter
	default:
		return binary.PositionEnd
	}
}

func toArchiveFormat(f *CharFormat) archive.CharFormat {
	if f == nil {
		return archive.CharFormat{}
	}

	return archive.CharFormat{
		Bold: f.Bold, Italic: f.Italic, Underline: f.Underline,
		FontName: f.FontName, FontSize: f.FontSize, Color: f.Color,
	}
}

func toArchiveFormatPtr(f *CharFormat) *archive.CharFormat {
	if f == nil {
		return nil
	}
	af := toArchiveFormat(f)

	return &af
}

func toArchiveRange(start, end *int) *archive.Range {
	if start == nil && end == nil {
		return nil
	}
	s, e := 0, 0
	if start != nil {
		s = *start
	}
	if end != nil {
		e = *end
	}

	return &archive.Range{Start: s, End: e}
}

func toArchivePosition(p Position) archive.Position {
	switch p {
	case PositionBefore:
		return archive.PositionBefore
	case PositionAfter:
		return archive.PositionAfter
	default:
		return archive.PositionEnd
	}
}
