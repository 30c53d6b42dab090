package binary

import (
	"fmt"

	"github.com/gohwp/hwp/doc"
	"github.com/gohwp/hwp/format"
	"github.com/gohwp/hwp/ref"
)

// Parse reads a complete binary-format container buffer into the
// format-agnostic document projection (§4.3).
func Parse(raw []byte) (*doc.Document, error) {
	c, err := ParseContainer(raw)
	if err != nil {
		return nil, err
	}

	info, err := parseDocInfo(c.DocInfo)
	if err != nil {
		return nil, err
	}

	d := &doc.Document{FormatTag: format.Binary, Header: info.header}

	for i, stream := range c.Sections {
		sec, err := parseSection(stream, info)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}
		assignReferences(&sec, i)
		d.Sections = append(d.Sections, sec)
	}

	return d, nil
}

// assignReferences fills in the dotted-path Reference field of every
// paragraph/table/cell/text-box in a freshly parsed section.
func assignReferences(sec *doc.Section, sectionIdx int) {
	for pi := range sec.Paragraphs {
		sec.Paragraphs[pi].Reference = ref.Build(ref.Ref{Section: sectionIdx, HasParagraph: true, Paragraph: pi})
	}
	for ti := range sec.Tables {
		tbl := &sec.Tables[ti]
		tbl.Reference = ref.Build(ref.Ref{Section: sectionIdx, HasTable: true, Table: ti})
		for ci := range tbl.Cells {
			cell := &tbl.Cells[ci]
			cell.Reference = ref.Build(ref.Ref{
				Section: sectionIdx, HasTable: true, Table: ti,
				HasCell: true, Row: cell.Row, Col: cell.Col,
			})
			for pi := range cell.Paragraphs {
				cell.Paragraphs[pi].Reference = ref.Build(ref.Ref{
					Section: sectionIdx, HasTable: true, Table: ti,
					HasCell: true, Row: cell.Row, Col: cell.Col,
					HasCellParagraph: true, CellParagraph: pi,
				})
			}
		}
	}
	for bi := range sec.TextBoxes {
		tb := &sec.TextBoxes[bi]
		tb.Reference = ref.Build(ref.Ref{Section: sectionIdx, HasTextBox: true, TextBox: bi})
		for pi := range tb.Paragraphs {
			tb.Paragraphs[pi].Reference = ref.Build(ref.Ref{
				Section: sectionIdx, HasTextBox: true, TextBox: bi,
				HasTextBoxParagraph: true, TextBoxParagraph: pi,
			})
		}
	}
	for ii := range sec.Images {
		sec.Images[ii].Reference = ref.Build(ref.Ref{Section: sectionIdx, HasImage: true, Image: ii})
	}
}
