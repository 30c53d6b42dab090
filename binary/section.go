package binary

import (
	"encoding/binary"

	"github.com/gohwp/hwp/doc"
	"github.com/gohwp/hwp/internal/recstream"
	"github.com/gohwp/hwp/internal/textcodec"
)

// paraBuilder accumulates a paragraph's PARA_HEADER/PARA_TEXT/
// PARA_CHAR_SHAPE records; PARA_CHAR_SHAPE may arrive before or after
// PARA_TEXT, so text is recorded unconditionally and runs are only split
// once both pieces are known (see finish).
type paraBuilder struct {
	level        int
	reference    string
	nChars       uint32
	lastPara     bool
	paraShapeRef int
	styleRef     int

	text      textcodec.ParaText
	hasText   bool
	runStarts []runStart // code-unit positions from PARA_CHAR_SHAPE
}

// controlMarkerFor classifies a CTRL_HEADER id not otherwise modeled
// (table/GSO/section-def) into the read-only marker exposed on runs.
func controlMarkerFor(id string) doc.ControlMarker {
	switch id {
	case ctrlIDFootnote:
		return doc.ControlMarkerFootnote
	case ctrlIDEndnote:
		return doc.ControlMarkerEndnote
	case ctrlIDField:
		return doc.ControlMarkerField
	default:
		return doc.ControlMarkerOther
	}
}

type runStart struct {
	pos int
	ref int
}

func newParaBuilder(rec recstream.Record) *paraBuilder {
	pb := &paraBuilder{level: int(rec.Header.Level)}
	if len(rec.Payload) >= paraHeaderMinSize {
		raw := binary.LittleEndian.Uint32(rec.Payload[paraHeaderNCharsOffset:])
		pb.lastPara = raw&(1<<paraHeaderLastParaBit) != 0
		pb.nChars = raw &^ (1 << paraHeaderLastParaBit)
	}
	if len(rec.Payload) >= paraHeaderStyleOff+2 {
		pb.paraShapeRef = int(binary.LittleEndian.Uint16(rec.Payload[paraHeaderParaShapeOff:]))
		pb.styleRef = int(binary.LittleEndian.Uint16(rec.Payload[paraHeaderStyleOff:]))
	}

	return pb
}

func (pb *paraBuilder) addText(payload []byte) {
	pt, err := textcodec.Decode(payload)
	if err != nil {
		return
	}
	pb.text = pt
	pb.hasText = true
}

func (pb *paraBuilder) addCharShapeEntries(payload []byte) {
	// 8-byte entries: (position u32, char_shape_ref u32); legacy 6-byte
	// form has char_shape_ref as u16 at offset 4 within a single entry.
	if len(payload) >= 8 && len(payload)%8 == 0 {
		for i := 0; i+8 <= len(payload); i += 8 {
			pos := binary.LittleEndian.Uint32(payload[i:])
			ref := binary.LittleEndian.Uint32(payload[i+4:])
			pb.runStarts = append(pb.runStarts, runStart{pos: int(pos), ref: int(ref)})
		}

		return
	}
	if len(payload) == 6 {
		ref := binary.LittleEndian.Uint16(payload[4:])
		pb.runStarts = append(pb.runStarts, runStart{pos: 0, ref: int(ref)})
	}
}

// finish builds the final doc.Paragraph, splitting text into runs at each
// recorded PARA_CHAR_SHAPE position.
func (pb *paraBuilder) finish() doc.Paragraph {
	runes := []rune(pb.text.Text)
	if len(pb.runStarts) == 0 {
		return doc.Paragraph{
			ParaShapeRef: pb.paraShapeRef,
			StyleRef:     pb.styleRef,
			Runs:         []doc.Run{{Text: string(runes)}},
		}
	}

	var runs []doc.Run
	for i, rs := range pb.runStarts {
		start := pb.text.VisibleIndexForCodeUnit(rs.pos)
		end := len(runes)
		if i+1 < len(pb.runStarts) {
			end = pb.text.VisibleIndexForCodeUnit(pb.runStarts[i+1].pos)
		}
		if start > len(runes) {
			start = len(runes)
		}
		if end > len(runes) {
			end = len(runes)
		}
		if end < start {
			end = start
		}
		runs = append(runs, doc.Run{Text: string(runes[start:end]), CharShapeRef: rs.ref})
	}

	return doc.Paragraph{
		ParaShapeRef: pb.paraShapeRef,
		StyleRef:     pb.styleRef,
		Runs:         runs,
	}
}

// scopeKind identifies what kind of container a scope frame represents.
type scopeKind int

const (
	scopeSection scopeKind = iota
	scopeTable
	scopeCell
	scopeTextBox
)

type scopeFrame struct {
	level int
	kind  scopeKind

	paragraphs *[]doc.Paragraph // destination for paragraphs opened directly under this scope

	table     *doc.Table
	cell      *doc.Cell
	textBox   *doc.TextBox
	nextCellIdx int
}

type pendingShape struct {
	width, height int
	binDataID     int
	active        bool
}

// parseSection walks a decompressed BodyText/Section<n> stream into a
// doc.Section, following the level-stacked scoping model of §4.3/§9.
func parseSection(stream []byte, info *docInfo) (doc.Section, error) {
	records, _ := recstream.Iterate(stream)

	sec := doc.Section{}

	root := &scopeFrame{level: -1, kind: scopeSection, paragraphs: &sec.Paragraphs}
	stack := []*scopeFrame{root}

	var openPara *paraBuilder
	var pendingGSO bool
	var pendingGSOLevel int
	var pendingShapeImg pendingShape

	closeParagraph := func() {
		if openPara == nil {
			return
		}
		top := stack[len(stack)-1]
		*top.paragraphs = append(*top.paragraphs, openPara.finish())
		openPara = nil
	}

	closeScope := func(frame *scopeFrame) {
		switch frame.kind {
		case scopeCell:
			parent := stack[len(stack)-1]
			if parent.table != nil && frame.cell != nil {
				parent.table.Cells = append(parent.table.Cells, *frame.cell)
			}
		case scopeTable:
			if frame.table != nil {
				sec.Tables = append(sec.Tables, *frame.table)
			}
		case scopeTextBox:
			if frame.textBox != nil {
				sec.TextBoxes = append(sec.TextBoxes, *frame.textBox)
			}
		}
	}

	// closeScopesAtOrAbove pops and finalizes every scope (deepest first)
	// whose level is >= lvl, leaving the nearest ancestor with level < lvl
	// on top of the stack. The base section scope (level -1) is never
	// popped.
	closeScopesAtOrAbove := func(lvl int) {
		closeParagraph()
		for len(stack) > 1 && stack[len(stack)-1].level >= lvl {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			closeScope(top)
		}
	}

	for _, rec := range records {
		level := int(rec.Header.Level)

		switch rec.Header.TagID {
		case tagParaHeader:
			closeScopesAtOrAbove(level)
			closeParagraph()
			openPara = newParaBuilder(rec)

		case tagParaText:
			if openPara != nil {
				openPara.addText(rec.Payload)
			}

		case tagParaCharShape:
			if openPara != nil {
				openPara.addCharShapeEntries(rec.Payload)
			}

		case tagParaLineSeg:
			// not modeled in the document projection; presence is only
			// checked by the validator directly against the raw stream.

		case tagCtrlHeader:
			closeScopesAtOrAbove(level)
			id, err := textcodec.DecodeControlID(rec.Payload)
			if err != nil {
				continue
			}
			switch id {
			case ctrlIDTable:
				stack = append(stack, &scopeFrame{
					level: level,
					kind:  scopeTable,
					table: &doc.Table{},
				})
			case ctrlIDGSO:
				pendingGSO = true
				pendingGSOLevel = level
			case ctrlIDSectionDef:
				// section-level control, not attached to paragraph text.
			default:
				// closeScopesAtOrAbove has already finalized the paragraph
				// this control trails (HWP represents it as a sibling
				// construct, not nested paragraph content); mark that
				// paragraph's last run so callers can still see it.
				top := stack[len(stack)-1]
				if n := len(*top.paragraphs); n > 0 {
					p := &(*top.paragraphs)[n-1]
					if m := len(p.Runs); m > 0 {
						p.Runs[m-1].Marker = controlMarkerFor(id)
					}
				}
			}

		case tagTable:
			closeScopesAtOrAbove(level)
			top := stack[len(stack)-1]
			if top.kind == scopeTable && len(rec.Payload) >= tableColsOffset+2 {
				top.table.Rows = int(binary.LittleEndian.Uint16(rec.Payload[tableRowsOffset:]))
				top.table.Cols = int(binary.LittleEndian.Uint16(rec.Payload[tableColsOffset:]))
			}

		case tagShapeComponent:
			closeScopesAtOrAbove(level)
			subtype, err := textcodec.DecodeControlID(rec.Payload)
			if err != nil {
				continue
			}
			switch {
			case subtype == ctrlIDShapeRect && pendingGSO && level > pendingGSOLevel:
				stack = append(stack, &scopeFrame{level: level, kind: scopeTextBox, textBox: &doc.TextBox{}})
				pendingGSO = false
			default:
				pendingShapeImg = pendingShape{active: true}
				if len(rec.Payload) >= shapeComponentHeightOffset+4 {
					pendingShapeImg.width = int(binary.LittleEndian.Uint32(rec.Payload[shapeComponentWidthOffset:]))
					pendingShapeImg.height = int(binary.LittleEndian.Uint32(rec.Payload[shapeComponentHeightOffset:]))
				}
				if len(rec.Payload) >= shapeComponentBinDataIDAt+2 {
					pendingShapeImg.binDataID = int(binary.LittleEndian.Uint16(rec.Payload[shapeComponentBinDataIDAt:]))
				}
				pendingGSO = false
			}

		case tagShapeComponentPicture:
			if pendingShapeImg.active {
				entry := info.binDataByID[pendingShapeImg.binDataID]
				sec.Images = append(sec.Images, doc.Image{
					BinDataPath: entry.path,
					Format:      entry.format,
					Width:       pendingShapeImg.width,
					Height:      pendingShapeImg.height,
				})
				pendingShapeImg = pendingShape{}
			}

		case tagListHeader:
			closeScopesAtOrAbove(level)
			top := stack[len(stack)-1]
			switch top.kind {
			case scopeTable:
				col, row, colSpan, rowSpan, ok := parseCellAddress(rec.Payload)
				if !ok {
					idx := top.nextCellIdx
					cols := top.table.Cols
					if cols == 0 {
						cols = 1
					}
					row, col = idx/cols, idx%cols
					colSpan, rowSpan = 1, 1
				}
				top.nextCellIdx++
				cell := &doc.Cell{Row: row, Col: col, RowSpan: rowSpan, ColSpan: colSpan}
				stack = append(stack, &scopeFrame{level: level, kind: scopeCell, paragraphs: &cell.Paragraphs, cell: cell})
			case scopeTextBox:
				tb := top.textBox
				stack = append(stack, &scopeFrame{level: level, kind: scopeTextBox, paragraphs: &tb.Paragraphs, textBox: tb})
			default:
				// unrecognized nesting; treat as pass-through so paragraphs
				// still land somewhere sane.
				stack = append(stack, &scopeFrame{level: level, kind: top.kind, paragraphs: top.paragraphs})
			}
		}
	}

	closeScopesAtOrAbove(-1)

	// references are assigned by the caller once section index is known.
	return sec, nil
}

// parseCellAddress reads a LIST_HEADER's embedded (col,row,colSpan,rowSpan)
// address. The common header is 6 or 8 bytes before the address fields.
func parseCellAddress(payload []byte) (col, row, colSpan, rowSpan int, ok bool) {
	for _, headerLen := range []int{8, 6} {
		if len(payload) >= headerLen+8 {
			col = int(binary.LittleEndian.Uint16(payload[headerLen:]))
			row = int(binary.LittleEndian.Uint16(payload[headerLen+2:]))
			colSpan = int(binary.LittleEndian.Uint16(payload[headerLen+4:]))
			rowSpan = int(binary.LittleEndian.Uint16(payload[headerLen+6:]))
			if colSpan == 0 {
				colSpan = 1
			}
			if rowSpan == 0 {
				rowSpan = 1
			}

			return col, row, colSpan, rowSpan, true
		}
	}

	return 0, 0, 0, 0, false
}
