package binary

import (
	"encoding/binary"
	"fmt"

	"github.com/gohwp/hwp/errs"
	"github.com/gohwp/hwp/internal/pool"
	"github.com/gohwp/hwp/internal/recstream"
	"github.com/gohwp/hwp/internal/textcodec"
)

// Mutator applies §4.4's edit operations directly to a Container's raw
// section/DocInfo byte streams, patching only the records an operation
// touches and leaving everything else byte-identical.
type Mutator struct {
	c *Container
}

// NewMutator wraps a Container for in-place editing.
func NewMutator(c *Container) *Mutator {
	return &Mutator{c: c}
}

func (m *Mutator) section(idx int) ([]byte, error) {
	if idx < 0 || idx >= len(m.c.Sections) {
		return nil, fmt.Errorf("%w: section %d", errs.ErrRefNotFound, idx)
	}

	return m.c.Sections[idx], nil
}

// SetParagraphText replaces a top-level paragraph's text (§4.4).
func (m *Mutator) SetParagraphText(sectionIdx, paragraphIdx int, text string) error {
	stream, err := m.section(sectionIdx)
	if err != nil {
		return err
	}

	records, truncated := recstream.Iterate(stream)
	if truncated {
		return errs.ErrStreamTruncated
	}

	group, err := findTopLevelParagraph(records, paragraphIdx)
	if err != nil {
		return err
	}

	out, err := patchParagraphText(stream, records, group, text)
	if err != nil {
		return err
	}

	m.c.Sections[sectionIdx] = out

	return nil
}

// patchParagraphText rewrites a paragraph's PARA_TEXT, nChars, and
// PARA_CHAR_SHAPE (reset to a single entry over the previous first ref).
// PARA_CHAR_SHAPE is patched first, then PARA_TEXT (its offset shifted by
// the first patch's size change when PARA_CHAR_SHAPE precedes it), then the
// PARA_HEADER, which precedes both, so every offset used is still valid.
func patchParagraphText(stream []byte, records []recstream.Record, group paraGroup, text string) ([]byte, error) {
	preserveCR := group.textIdx != -1 && textcodec.HasTrailingCR(records[group.textIdx].Payload)
	newTextPayload := textcodec.Encode(text, preserveCR)

	prevRef := 0
	if group.charShapeIdx != -1 {
		if ref, ok := firstCharShapeRef(records[group.charShapeIdx].Payload); ok {
			prevRef = ref
		}
	}

	out := stream

	if group.charShapeIdx != -1 {
		newCS := make([]byte, 8)
		binary.LittleEndian.PutUint32(newCS[0:4], 0)
		binary.LittleEndian.PutUint32(newCS[4:8], uint32(prevRef))
		var err error
		out, err = recstream.ReplacePayload(out, records[group.charShapeIdx].Offset, newCS)
		if err != nil {
			return nil, err
		}
	}

	if group.textIdx != -1 {
		textOffset := records[group.textIdx].Offset
		if group.charShapeIdx != -1 && group.charShapeIdx < group.textIdx {
			textOffset += len(out) - len(stream)
		}
		var err error
		out, err = recstream.ReplacePayload(out, textOffset, newTextPayload)
		if err != nil {
			return nil, err
		}
	} else {
		// No PARA_TEXT existed (empty paragraph): insert one right after
		// the header.
		insertOffset := recordEnd(records[group.headerIdx])
		built := recstream.Build(tagParaText, records[group.headerIdx].Header.Level+1, newTextPayload)
		out = insertAt(out, insertOffset, built)
	}

	codeUnitLen := len(newTextPayload) / 2
	headerPayload := append([]byte(nil), records[group.headerIdx].Payload...)
	if len(headerPayload) >= paraHeaderMinSize {
		raw := binary.LittleEndian.Uint32(headerPayload[paraHeaderNCharsOffset:])
		lastFlag := raw & (1 << paraHeaderLastParaBit)
		binary.LittleEndian.PutUint32(headerPayload[paraHeaderNCharsOffset:], uint32(codeUnitLen)|lastFlag)

		var err error
		out, err = recstream.ReplacePayload(out, records[group.headerIdx].Offset, headerPayload)
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

func firstCharShapeRef(payload []byte) (int, bool) {
	if len(payload) >= 8 {
		return int(binary.LittleEndian.Uint32(payload[4:8])), true
	}
	if len(payload) == 6 {
		return int(binary.LittleEndian.Uint16(payload[4:6])), true
	}

	return 0, false
}

// SetTableCellText locates the target cell (by stored address, falling
// back to sequential index) and applies paragraph-text replacement to its
// cellParagraphIdx-th paragraph (§4.4).
func (m *Mutator) SetTableCellText(sectionIdx, tableIdx, row, col, cellParagraphIdx int, text string) error {
	stream, err := m.section(sectionIdx)
	if err != nil {
		return err
	}

	records, truncated := recstream.Iterate(stream)
	if truncated {
		return errs.ErrStreamTruncated
	}

	ctrlIdx, tblIdx, tableEnd, err := findTable(records, tableIdx)
	if err != nil {
		return err
	}

	cellStart, cellEnd, err := findCell(records, ctrlIdx, tblIdx, tableEnd, row, col)
	if err != nil {
		return err
	}

	group, err := findNthParagraphInRange(records, cellStart, cellEnd, cellParagraphIdx)
	if err != nil {
		return err
	}

	out, err := patchParagraphText(stream, records, group, text)
	if err != nil {
		return err
	}

	m.c.Sections[sectionIdx] = out

	return nil
}

// SetTextBoxText applies paragraph-text replacement to a text box's
// textBoxParagraphIdx-th paragraph (§4.4).
func (m *Mutator) SetTextBoxText(sectionIdx, textBoxIdx, textBoxParagraphIdx int, text string) error {
	stream, err := m.section(sectionIdx)
	if err != nil {
		return err
	}

	records, truncated := recstream.Iterate(stream)
	if truncated {
		return errs.ErrStreamTruncated
	}

	start, end, err := findTextBox(records, textBoxIdx)
	if err != nil {
		return err
	}

	group, err := findNthParagraphInRange(records, start, end, textBoxParagraphIdx)
	if err != nil {
		return err
	}

	out, err := patchParagraphText(stream, records, group, text)
	if err != nil {
		return err
	}

	m.c.Sections[sectionIdx] = out

	return nil
}

// SetFormat clones the paragraph's current char-shape, applies the given
// attribute overrides, appends it to DocInfo's char-shape block, and
// rewrites the paragraph's PARA_CHAR_SHAPE entries to reference it —
// either wholesale, or split into up to three ranged entries when
// (start, end) is given (§4.4).
func (m *Mutator) SetFormat(sectionIdx, paragraphIdx int, f CharFormat, rng *Range) error {
	stream, err := m.section(sectionIdx)
	if err != nil {
		return err
	}

	records, truncated := recstream.Iterate(stream)
	if truncated {
		return errs.ErrStreamTruncated
	}

	group, err := findTopLevelParagraph(records, paragraphIdx)
	if err != nil {
		return err
	}
	if group.charShapeIdx == -1 {
		return fmt.Errorf("%w: paragraph %d has no PARA_CHAR_SHAPE", errs.ErrRefNotFound, paragraphIdx)
	}

	sourceRef, _ := firstCharShapeRef(records[group.charShapeIdx].Payload)

	newDocInfo, newID, err := m.appendCharShape(sourceRef, f)
	if err != nil {
		return err
	}

	var newCSPayload []byte
	if rng == nil {
		newCSPayload = make([]byte, 8)
		binary.LittleEndian.PutUint32(newCSPayload[4:8], uint32(newID))
	} else {
		pt, ok := decodeParagraphText(records, group)
		if !ok {
			return fmt.Errorf("%w: paragraph %d has no text to range over", errs.ErrRefNotFound, paragraphIdx)
		}
		if rng.Start < 0 || rng.End > pt.VisibleLen() || rng.Start > rng.End {
			return errs.ErrRangeOutOfBounds
		}

		type entry struct{ pos, ref int }
		var entries []entry
		if rng.Start > 0 {
			entries = append(entries, entry{0, sourceRef})
		}
		startCU, _ := pt.CodeUnitOffset(rng.Start)
		entries = append(entries, entry{startCU, newID})
		if rng.End < pt.VisibleLen() {
			endCU, err := pt.CodeUnitOffset(rng.End)
			if err != nil {
				return err
			}
			entries = append(entries, entry{endCU, sourceRef})
		}

		newCSPayload = make([]byte, 8*len(entries))
		for i, e := range entries {
			binary.LittleEndian.PutUint32(newCSPayload[i*8:], uint32(e.pos))
			binary.LittleEndian.PutUint32(newCSPayload[i*8+4:], uint32(e.ref))
		}
	}

	out, err := recstream.ReplacePayload(stream, records[group.charShapeIdx].Offset, newCSPayload)
	if err != nil {
		return err
	}

	m.c.DocInfo = newDocInfo
	m.c.Sections[sectionIdx] = out

	return nil
}

func decodeParagraphText(records []recstream.Record, group paraGroup) (textcodec.ParaText, bool) {
	if group.textIdx == -1 {
		return textcodec.ParaText{}, false
	}
	pt, err := textcodec.Decode(records[group.textIdx].Payload)
	if err != nil {
		return textcodec.ParaText{}, false
	}

	return pt, true
}

// appendCharShape clones the CHAR_SHAPE at sourceID, applies overrides,
// appends it as a new record at the end of DocInfo's char-shape block, and
// bumps ID_MAPPINGS's declared count. Returns the updated DocInfo bytes and
// the new entry's id.
func (m *Mutator) appendCharShape(sourceID int, f CharFormat) ([]byte, int, error) {
	docInfo := m.c.DocInfo

	var fontRef int
	if f.FontName != nil {
		var err error
		docInfo, fontRef, err = resolveOrAddFont(docInfo, *f.FontName)
		if err != nil {
			return nil, 0, err
		}
	}

	records, truncated := recstream.Iterate(docInfo)
	if truncated {
		return nil, 0, errs.ErrStreamTruncated
	}

	var lastCharShapeIdx = -1
	var sourceIdx = -1
	count := 0
	for i, rec := range records {
		if rec.Header.TagID != tagCharShape {
			continue
		}
		if count == sourceID {
			sourceIdx = i
		}
		lastCharShapeIdx = i
		count++
	}
	if sourceIdx == -1 || lastCharShapeIdx == -1 {
		return nil, 0, fmt.Errorf("%w: char shape %d", errs.ErrRefNotFound, sourceID)
	}

	clone := append([]byte(nil), records[sourceIdx].Payload...)
	if len(clone) < charShapeMinSize {
		return nil, 0, fmt.Errorf("%w: char shape payload too short", errs.ErrInvalidFormat)
	}

	attrs := binary.LittleEndian.Uint32(clone[charShapeAttrOffset:])
	if f.Bold != nil {
		attrs = setBit(attrs, charShapeAttrBoldBit, *f.Bold)
	}
	if f.Italic != nil {
		attrs = setBit(attrs, charShapeAttrItalicBit, *f.Italic)
	}
	if f.Underline != nil {
		attrs &^= 0x3 << charShapeAttrUnderlineLo
		if *f.Underline {
			attrs |= 1 << charShapeAttrUnderlineLo
		}
	}
	binary.LittleEndian.PutUint32(clone[charShapeAttrOffset:], attrs)

	if f.FontSize != nil {
		binary.LittleEndian.PutUint32(clone[charShapeHeightOffset:], uint32(*f.FontSize*100))
	}
	if f.Color != nil {
		binary.LittleEndian.PutUint32(clone[charShapeColorOffset:], colorToBBGGRR(*f.Color))
	}
	if f.FontName != nil {
		binary.LittleEndian.PutUint16(clone[charShapeFontRefOffset:], uint16(fontRef))
	}

	insertOffset := recordEnd(records[lastCharShapeIdx])
	built := recstream.Build(tagCharShape, records[lastCharShapeIdx].Header.Level, clone)

	docInfoBytes := recordsToStream(records)
	out := insertAt(docInfoBytes, insertOffset, built)

	out, err := bumpCharShapeCount(out)
	if err != nil {
		return nil, 0, err
	}

	return out, count, nil
}

// resolveOrAddFont resolves name to a font ref into DocInfo's FACE_NAME
// table, appending a new FACE_NAME record when name isn't already present.
// Font refs are assigned by position among FACE_NAME records in stream
// order, matching how parseDocInfo builds doc.Header.Fonts, so a freshly
// appended name resolves to the count of names that preceded it. Mirrors
// the archive mutator's hh:fontfaces dedup-by-name shape, minus the
// xxHash64 bucket lookup: DocInfo's FACE_NAME table is small enough that a
// plain scan is the idiom already used elsewhere in this file (see
// appendCharShape's sourceID scan above).
func resolveOrAddFont(docInfo []byte, name string) ([]byte, int, error) {
	records, truncated := recstream.Iterate(docInfo)
	if truncated {
		return nil, 0, errs.ErrStreamTruncated
	}

	lastFaceNameIdx := -1
	faceNameCount := 0
	for i, rec := range records {
		if rec.Header.TagID != tagFaceName {
			continue
		}
		if existing, _, err := textcodec.DecodeName(rec.Payload); err == nil && existing == name {
			return docInfo, faceNameCount, nil
		}
		faceNameCount++
		lastFaceNameIdx = i
	}

	var insertOffset int
	var level uint16
	if lastFaceNameIdx != -1 {
		insertOffset = recordEnd(records[lastFaceNameIdx])
		level = records[lastFaceNameIdx].Header.Level
	}

	built := recstream.Build(tagFaceName, level, textcodec.EncodeName(name))
	out := insertAt(recordsToStream(records), insertOffset, built)

	return out, faceNameCount, nil
}

// recordsToStream re-flattens a parsed record list back into its wire form.
// appendCharShape and resolveOrAddFont call this to rebuild the whole
// DocInfo stream around an inserted record, so the scratch buffer comes from
// the shared blob pool rather than growing a fresh slice per call.
func recordsToStream(records []recstream.Record) []byte {
	bb := pool.GetBlobBuffer()
	defer pool.PutBlobBuffer(bb)

	for _, rec := range records {
		bb.MustWrite(recstream.Build(rec.Header.TagID, rec.Header.Level, rec.Payload))
	}

	out := make([]byte, bb.Len())
	copy(out, bb.Bytes())

	return out
}

func bumpCharShapeCount(docInfo []byte) ([]byte, error) {
	records, truncated := recstream.Iterate(docInfo)
	if truncated {
		return nil, errs.ErrStreamTruncated
	}

	for _, rec := range records {
		if rec.Header.TagID != tagIDMappings {
			continue
		}
		if len(rec.Payload) < idMappingsCharShapeCountOffset+4 {
			continue
		}
		payload := append([]byte(nil), rec.Payload...)
		n := binary.LittleEndian.Uint32(payload[idMappingsCharShapeCountOffset:])
		binary.LittleEndian.PutUint32(payload[idMappingsCharShapeCountOffset:], n+1)

		return recstream.ReplacePayload(docInfo, rec.Offset, payload)
	}

	return docInfo, nil
}

// AddParagraph inserts a new paragraph of text relative to an existing
// top-level paragraph (or at the section's end), cloning the reference
// paragraph's style/shape refs so the new paragraph renders consistently
// with its neighbor (§4.4).
func (m *Mutator) AddParagraph(sectionIdx int, anchorIdx *int, text string, pos Position, f *CharFormat) error {
	stream, err := m.section(sectionIdx)
	if err != nil {
		return err
	}

	records, truncated := recstream.Iterate(stream)
	if truncated {
		return errs.ErrStreamTruncated
	}

	paraShapeRef, styleRef, charShapeRef, insertOffset, level, isLast, clearIdx, err := newParagraphAnchor(records, anchorIdx, pos)
	if err != nil {
		return err
	}

	if clearIdx != -1 {
		header := append([]byte(nil), records[clearIdx].Payload...)
		raw := binary.LittleEndian.Uint32(header[paraHeaderNCharsOffset:])
		binary.LittleEndian.PutUint32(header[paraHeaderNCharsOffset:], raw&^(1<<paraHeaderLastParaBit))
		stream, err = recstream.ReplacePayload(stream, records[clearIdx].Offset, header)
		if err != nil {
			return err
		}
	}

	if f != nil {
		newDocInfo, newID, aerr := m.appendCharShape(charShapeRef, *f)
		if aerr != nil {
			return aerr
		}
		m.c.DocInfo = newDocInfo
		charShapeRef = newID
	}

	preserveCR := true
	payload := textcodec.Encode(text, preserveCR)

	header := make([]byte, paraHeaderSize)
	lastFlag := uint32(0)
	if isLast {
		lastFlag = 1 << paraHeaderLastParaBit
	}
	binary.LittleEndian.PutUint32(header[paraHeaderNCharsOffset:], uint32(len(payload)/2)|lastFlag)
	binary.LittleEndian.PutUint16(header[paraHeaderParaShapeOff:], uint16(paraShapeRef))
	binary.LittleEndian.PutUint16(header[paraHeaderStyleOff:], uint16(styleRef))

	var built []byte
	built = append(built, recstream.Build(tagParaHeader, level, header)...)
	built = append(built, recstream.Build(tagParaText, level+1, payload)...)

	csPayload := make([]byte, 8)
	binary.LittleEndian.PutUint32(csPayload[4:8], uint32(charShapeRef))
	built = append(built, recstream.Build(tagParaCharShape, level+1, csPayload)...)

	m.c.Sections[sectionIdx] = insertAt(stream, insertOffset, built)

	return nil
}

// newParagraphAnchor resolves the insertion point, style/shape refs the new
// paragraph should inherit from its neighbor, and the index of a header
// whose last-paragraph flag must be cleared (-1 if none) because the new
// paragraph takes over as the section's last paragraph.
func newParagraphAnchor(records []recstream.Record, anchorIdx *int, pos Position) (paraShapeRef, styleRef, charShapeRef, insertOffset int, level uint16, isLast bool, clearIdx int, err error) {
	if anchorIdx == nil || pos == PositionEnd {
		lastHeader := -1
		for i, rec := range records {
			if rec.Header.TagID == tagParaHeader && rec.Header.Level == 0 {
				lastHeader = i
			}
		}
		if lastHeader == -1 {
			return 0, 0, 0, 0, 0, true, -1, fmt.Errorf("%w: section has no paragraphs", errs.ErrRefNotFound)
		}

		group := buildParaGroup(records, lastHeader)
		paraShapeRef, styleRef, charShapeRef = paragraphRefs(records, group)

		return paraShapeRef, styleRef, charShapeRef, recordEnd(records[group.endIdx-1]), 0, true, lastHeader, nil
	}

	group, ferr := findTopLevelParagraph(records, *anchorIdx)
	if ferr != nil {
		return 0, 0, 0, 0, 0, false, -1, ferr
	}

	paraShapeRef, styleRef, charShapeRef = paragraphRefs(records, group)

	wasLast := len(records[group.headerIdx].Payload) >= paraHeaderMinSize &&
		binary.LittleEndian.Uint32(records[group.headerIdx].Payload[paraHeaderNCharsOffset:])&(1<<paraHeaderLastParaBit) != 0

	if pos == PositionBefore {
		return paraShapeRef, styleRef, charShapeRef, records[group.headerIdx].Offset, 0, false, -1, nil
	}

	clearIdx = -1
	if wasLast {
		clearIdx = group.headerIdx
	}

	return paraShapeRef, styleRef, charShapeRef, recordEnd(records[group.endIdx-1]), 0, wasLast, clearIdx, nil
}

func paragraphRefs(records []recstream.Record, group paraGroup) (paraShapeRef, styleRef, charShapeRef int) {
	if len(records[group.headerIdx].Payload) >= paraHeaderMinSize {
		paraShapeRef = int(binary.LittleEndian.Uint16(records[group.headerIdx].Payload[paraHeaderParaShapeOff:]))
		styleRef = int(binary.LittleEndian.Uint16(records[group.headerIdx].Payload[paraHeaderStyleOff:]))
	}
	if group.charShapeIdx != -1 {
		if ref, ok := firstCharShapeRef(records[group.charShapeIdx].Payload); ok {
			charShapeRef = ref
		}
	}

	return paraShapeRef, styleRef, charShapeRef
}

// AddTable inserts a new table at the end of the section with the given
// dimensions, optionally seeded with per-cell text (row-major order);
// cells left unspecified by cellData are empty (§4.4).
func (m *Mutator) AddTable(sectionIdx, rows, cols int, cellData [][]string) error {
	stream, err := m.section(sectionIdx)
	if err != nil {
		return err
	}
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("%w: rows=%d cols=%d", errs.ErrMalformedTable, rows, cols)
	}

	records, truncated := recstream.Iterate(stream)
	if truncated {
		return errs.ErrStreamTruncated
	}

	insertOffset := len(stream)
	level := uint16(0)
	if len(records) > 0 {
		insertOffset = recordEnd(records[len(records)-1])
	}

	built := buildTableSubtree(rows, cols, cellData, level)

	m.c.Sections[sectionIdx] = insertAt(stream, insertOffset, built)

	return nil
}

// buildTableSubtree encodes a complete CTRL_HEADER('tbl ')/TABLE/
// LIST_HEADER(per cell)/PARA_HEADER/PARA_TEXT subtree at the given base
// level, seeding each cell with one paragraph of the corresponding
// cellData entry (or an empty paragraph when absent).
func buildTableSubtree(rows, cols int, cellData [][]string, base uint16) []byte {
	ctrlPayload := make([]byte, minCtrlHeaderTableSize)
	idBytes := textcodec.EncodeControlID(ctrlIDTable)
	copy(ctrlPayload, idBytes[:])

	tablePayload := make([]byte, minTableSize)
	binary.LittleEndian.PutUint16(tablePayload[tableRowsOffset:], uint16(rows))
	binary.LittleEndian.PutUint16(tablePayload[tableColsOffset:], uint16(cols))

	var out []byte
	out = append(out, recstream.Build(tagCtrlHeader, base, ctrlPayload)...)
	out = append(out, recstream.Build(tagTable, base+1, tablePayload)...)

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			text := ""
			if r < len(cellData) && c < len(cellData[r]) {
				text = cellData[r][c]
			}

			// Cell address fields follow an 8-byte common header, matching
			// parseCellAddress's preferred (tried-first) header length.
			const listHeaderCommonLen = 8
			listPayload := make([]byte, minListHeaderSize)
			binary.LittleEndian.PutUint16(listPayload[listHeaderCommonLen:], uint16(c))
			binary.LittleEndian.PutUint16(listPayload[listHeaderCommonLen+2:], uint16(r))
			binary.LittleEndian.PutUint16(listPayload[listHeaderCommonLen+4:], 1)
			binary.LittleEndian.PutUint16(listPayload[listHeaderCommonLen+6:], 1)

			out = append(out, recstream.Build(tagListHeader, base+2, listPayload)...)

			payload := textcodec.Encode(text, true)
			header := make([]byte, paraHeaderSize)
			binary.LittleEndian.PutUint32(header[paraHeaderNCharsOffset:], uint32(len(payload)/2)|(1<<paraHeaderLastParaBit))

			out = append(out, recstream.Build(tagParaHeader, base+3, header)...)
			out = append(out, recstream.Build(tagParaText, base+4, payload)...)
		}
	}

	return out
}

func setBit(v uint32, bit int, on bool) uint32 {
	if on {
		return v | (1 << uint(bit))
	}

	return v &^ (1 << uint(bit))
}
