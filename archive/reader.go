package archive

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gohwp/hwp/doc"
	"github.com/gohwp/hwp/format"
	"github.com/gohwp/hwp/archive/xmltree"
	"github.com/gohwp/hwp/ref"
)

// binDataPrefix is the in-archive directory holding embedded picture/OLE
// streams (§3 "archive container" layout).
const binDataPrefix = "BinData/"

// binDataEntries lists c's embedded-binary-data parts in a stable order,
// mirroring the binary codec's bin-data table (doc.Header.BinData) so
// callers have one shape regardless of source format.
func binDataEntries(c *Container) []doc.BinDataEntry {
	var names []string
	for name := range c.Parts {
		if strings.HasPrefix(name, binDataPrefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	entries := make([]doc.BinDataEntry, 0, len(names))
	for i, name := range names {
		entries = append(entries, doc.BinDataEntry{
			ID:     i,
			Path:   name,
			Format: extensionOf(name),
		})
	}

	return entries
}

func extensionOf(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return strings.ToLower(name[i+1:])
		}
	}

	return name
}

// Parse reads a complete archive-format (ZIP of XML parts) buffer into the
// format-agnostic document projection, with references built identically
// to the binary reader (§4.6).
func Parse(raw []byte) (*doc.Document, error) {
	c, err := ParseContainer(raw)
	if err != nil {
		return nil, err
	}

	return DocumentFrom(c), nil
}

// DocumentFrom projects an already-parsed Container directly into a
// doc.Document. Unlike the binary reader, the archive codec's in-memory
// trees already are the live model, so the holder can call this straight
// off a Container it holds rather than serializing to ZIP bytes first.
func DocumentFrom(c *Container) *doc.Document {
	d := &doc.Document{FormatTag: format.Archive, Header: parseHeader(c.HeaderTree)}
	d.Header.BinData = binDataEntries(c)

	for i, tree := range c.SectionTrees {
		sec := parseSection(tree)
		assignReferences(&sec, i)
		d.Sections = append(d.Sections, sec)
	}

	return d
}

func parseHeader(root *xmltree.Node) doc.Header {
	var h doc.Header

	refList, ok := findRefList(root)
	if !ok {
		return h
	}

	if faces, ok := refList.Child(elFontfaces); ok {
		for _, f := range faces.ChildrenNamed(elFontface) {
			name, _ := f.Attr(attrName)
			h.Fonts = append(h.Fonts, doc.Font{Name: name})
		}
	}

	if chars, ok := refList.Child(elCharProps); ok {
		for _, cp := range chars.ChildrenNamed(elCharPr) {
			h.CharShapes = append(h.CharShapes, parseCharPr(cp))
		}
	}

	if paras, ok := refList.Child(elParaProps); ok {
		for _, pp := range paras.ChildrenNamed(elParaPr) {
			h.ParaShapes = append(h.ParaShapes, parseParaPr(pp))
		}
	}

	if styles, ok := refList.Child(elStyles); ok {
		for _, st := range styles.ChildrenNamed(elStyle) {
			name, _ := st.Attr(attrName)
			charRef, _ := strconv.Atoi(attrOrZero(st, attrCharPrIDRef))
			paraRef, _ := strconv.Atoi(attrOrZero(st, attrParaPrIDRef))
			h.Styles = append(h.Styles, doc.Style{Name: name, CharShape: charRef, ParaShape: paraRef})
		}
	}

	return h
}

func findRefList(root *xmltree.Node) (*xmltree.Node, bool) {
	head := root
	if root.Name.Local != "head" {
		if h, ok := root.Child("head"); ok {
			head = h
		}
	}

	return head.Child("refList")
}

func parseCharPr(n *xmltree.Node) doc.CharShape {
	fontRef, _ := strconv.Atoi(attrOrZero(n, attrFontRef))
	heightHundredths, _ := strconv.Atoi(attrOrZero(n, attrHeight))
	colorInt, _ := strconv.Atoi(attrOrZero(n, attrColor))

	return doc.CharShape{
		FontRef:        fontRef,
		FontSizePoints: float64(heightHundredths) / 100,
		Bold:           attrOrZero(n, attrFontBold) == "1",
		Italic:         attrOrZero(n, attrFontItalic) == "1",
		Underline:      attrOrZero(n, attrUnderline) == "1",
		Color:          colorFromInt(colorInt),
	}
}

func parseParaPr(n *xmltree.Node) doc.ParaShape {
	ps := doc.ParaShape{Alignment: alignmentFromString(attrOrZero(n, attrAlignment))}
	if heading, ok := n.Child(elHeading); ok {
		lvl, _ := strconv.Atoi(attrOrZero(heading, attrLevel))
		ps.HeadingLevel = lvl
	}

	return ps
}

func alignmentFromString(s string) doc.Alignment {
	switch s {
	case "right":
		return doc.AlignRight
	case "center":
		return doc.AlignCenter
	case "justify":
		return doc.AlignJustify
	default:
		return doc.AlignLeft
	}
}

func colorFromInt(v int) doc.Color {
	return doc.Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
}

func colorToInt(c doc.Color) int {
	return int(c.R)<<16 | int(c.G)<<8 | int(c.B)
}

func attrOrZero(n *xmltree.Node, local string) string {
	v, _ := n.Attr(local)

	return v
}

// parseSection walks hs:sec's direct children in document order into a
// doc.Section.
func parseSection(root *xmltree.Node) doc.Section {
	sec := doc.Section{}

	for _, child := range root.Children {
		if child.IsText() {
			continue
		}
		switch child.Name.Local {
		case elP:
			sec.Paragraphs = append(sec.Paragraphs, parseParagraph(child))
		case elTbl:
			sec.Tables = append(sec.Tables, parseTable(child))
		case elRect:
			if tb, ok := parseTextBox(child); ok {
				sec.TextBoxes = append(sec.TextBoxes, tb)
			}
		case elPic:
			sec.Images = append(sec.Images, parseImage(child))
		}
	}

	return sec
}

func parseParagraph(n *xmltree.Node) doc.Paragraph {
	paraRef, _ := strconv.Atoi(attrOrZero(n, attrParaPrIDRef))
	styleRef, _ := strconv.Atoi(attrOrZero(n, attrStyleIDRef))

	p := doc.Paragraph{ParaShapeRef: paraRef, StyleRef: styleRef}
	for _, run := range n.ChildrenNamed(elRun) {
		charRef, _ := strconv.Atoi(attrOrZero(run, attrCharPrIDRef))
		text := ""
		if t, ok := run.Child(elT); ok {
			text = textOf(t)
		}
		p.Runs = append(p.Runs, doc.Run{Text: text, CharShapeRef: charRef, Marker: runControlMarker(run)})
	}

	return p
}

// runControlMarker classifies a run's non-text inline control children
// (footnote/endnote anchors, fields) that the projection otherwise skips,
// mirroring the binary reader's CTRL_HEADER handling.
func runControlMarker(run *xmltree.Node) doc.ControlMarker {
	for _, c := range run.Children {
		if c.IsText() {
			continue
		}
		switch strings.ToLower(c.Name.Local) {
		case "t":
			continue
		case "footnote":
			return doc.ControlMarkerFootnote
		case "endnote":
			return doc.ControlMarkerEndnote
		case "fieldbegin", "field":
			return doc.ControlMarkerField
		default:
			return doc.ControlMarkerOther
		}
	}

	return doc.ControlMarkerNone
}

func textOf(n *xmltree.Node) string {
	var out []byte
	for _, c := range n.Children {
		if c.IsText() {
			out = append(out, c.Text...)
		}
	}

	return string(out)
}

func parseTable(n *xmltree.Node) doc.Table {
	tbl := doc.Table{}

	rows := n.ChildrenNamed(elTr)
	tbl.Rows = len(rows)
	maxCol := 0

	for rowIdx, tr := range rows {
		cells := tr.ChildrenNamed(elTc)
		for colIdx, tc := range cells {
			cell := doc.Cell{Row: rowIdx, Col: colIdx, RowSpan: 1, ColSpan: 1}
			if addr, ok := tc.Child(elCellAddr); ok {
				if r, err := strconv.Atoi(attrOrZero(addr, attrRowAddr)); err == nil {
					cell.Row = r
				}
				if c, err := strconv.Atoi(attrOrZero(addr, attrColAddr)); err == nil {
					cell.Col = c
				}
			}
			if span, ok := tc.Child(elCellSpan); ok {
				if cs, err := strconv.Atoi(attrOrZero(span, attrColSpan)); err == nil && cs > 0 {
					cell.ColSpan = cs
				}
				if rs, err := strconv.Atoi(attrOrZero(span, attrRowSpan)); err == nil && rs > 0 {
					cell.RowSpan = rs
				}
			}
			if cell.Col+1 > maxCol {
				maxCol = cell.Col + 1
			}
			for _, p := range tc.ChildrenNamed(elP) {
				cell.Paragraphs = append(cell.Paragraphs, parseParagraph(p))
			}
			tbl.Cells = append(tbl.Cells, cell)
		}
	}
	tbl.Cols = maxCol

	return tbl
}

func parseTextBox(n *xmltree.Node) (doc.TextBox, bool) {
	drawText, ok := n.Child(elDrawText)
	if !ok {
		return doc.TextBox{}, false
	}
	subList, ok := drawText.Child(elSubList)
	if !ok {
		return doc.TextBox{}, false
	}

	tb := doc.TextBox{}
	for _, p := range subList.ChildrenNamed(elP) {
		tb.Paragraphs = append(tb.Paragraphs, parseParagraph(p))
	}

	return tb, true
}

func parseImage(n *xmltree.Node) doc.Image {
	width, _ := strconv.Atoi(attrOrZero(n, attrWidth))
	height, _ := strconv.Atoi(attrOrZero(n, attrHeight))
	binRef := attrOrZero(n, attrBinDataRef)

	return doc.Image{BinDataPath: binRef, Width: width, Height: height}
}

// assignReferences fills in the dotted-path Reference field of every
// paragraph/table/cell/text-box/image in a freshly parsed section,
// identical in shape to the binary reader's assignment (§4.7).
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
