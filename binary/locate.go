package binary

import (
	"fmt"

	"github.com/gohwp/hwp/errs"
	"github.com/gohwp/hwp/internal/recstream"
	"github.com/gohwp/hwp/internal/textcodec"
)

// paraGroup identifies the record span of one paragraph within a stream:
// the PARA_HEADER's own index plus the index of its PARA_TEXT and
// PARA_CHAR_SHAPE children, if present.
type paraGroup struct {
	headerIdx    int
	textIdx      int // -1 if absent
	charShapeIdx int // -1 if absent
	endIdx       int
}

// findTopLevelParagraph locates the idx-th PARA_HEADER at level 0 in
// records (§4.3: "paragraphs at level 0 belong to the section").
func findTopLevelParagraph(records []recstream.Record, idx int) (paraGroup, error) {
	count := 0
	for i, rec := range records {
		if rec.Header.TagID != tagParaHeader || rec.Header.Level != 0 {
			continue
		}
		if count == idx {
			return buildParaGroup(records, i), nil
		}
		count++
	}

	return paraGroup{}, fmt.Errorf("%w: top-level paragraph %d", errs.ErrRefNotFound, idx)
}

// findNthParagraphInRange locates the idx-th PARA_HEADER within
// records[rangeStart:rangeEnd), used for cell and text-box paragraphs.
func findNthParagraphInRange(records []recstream.Record, rangeStart, rangeEnd, idx int) (paraGroup, error) {
	count := 0
	for i := rangeStart; i < rangeEnd; i++ {
		if records[i].Header.TagID != tagParaHeader {
			continue
		}
		if count == idx {
			return buildParaGroup(records, i), nil
		}
		count++
	}

	return paraGroup{}, fmt.Errorf("%w: paragraph %d in range", errs.ErrRefNotFound, idx)
}

func buildParaGroup(records []recstream.Record, headerIdx int) paraGroup {
	end := groupEnd(records, headerIdx)
	g := paraGroup{headerIdx: headerIdx, textIdx: -1, charShapeIdx: -1, endIdx: end}

	for i := headerIdx + 1; i < end; i++ {
		switch records[i].Header.TagID {
		case tagParaText:
			if g.textIdx == -1 {
				g.textIdx = i
			}
		case tagParaCharShape:
			if g.charShapeIdx == -1 {
				g.charShapeIdx = i
			}
		}
	}

	return g
}

// findTable locates the idx-th 'tbl ' CTRL_HEADER and its following TABLE
// record, returning the span [ctrlIdx, end) that belongs to the table.
func findTable(records []recstream.Record, idx int) (ctrlIdx, tableIdx, end int, err error) {
	count := 0
	for i, rec := range records {
		if rec.Header.TagID != tagCtrlHeader {
			continue
		}
		id, decErr := textcodec.DecodeControlID(rec.Payload)
		if decErr != nil || id != ctrlIDTable {
			continue
		}
		if count != idx {
			count++
			continue
		}

		end = groupEnd(records, i)
		tableIdx = -1
		for j := i + 1; j < end; j++ {
			if records[j].Header.TagID == tagTable {
				tableIdx = j
				break
			}
		}
		if tableIdx == -1 {
			return 0, 0, 0, fmt.Errorf("%w: table %d missing TABLE record", errs.ErrMalformedTable, idx)
		}

		return i, tableIdx, end, nil
	}

	return 0, 0, 0, fmt.Errorf("%w: table %d", errs.ErrRefNotFound, idx)
}

// findCell locates the cell at (row, col) within a table's record span
// [ctrlIdx, tableEnd), returning the LIST_HEADER's span.
func findCell(records []recstream.Record, ctrlIdx, tableIdx, tableEnd, row, col int) (start, end int, err error) {
	seq := 0
	for i := tableIdx + 1; i < tableEnd; i++ {
		if records[i].Header.TagID != tagListHeader {
			continue
		}

		cellEnd := groupEnd(records, i)
		c, r, _, _, ok := parseCellAddress(records[i].Payload)
		matched := false
		if ok {
			matched = c == col && r == row
		} else {
			cols := 1
			if tableIdx < len(records) && len(records[tableIdx].Payload) >= tableColsOffset+2 {
				cols = int(records[tableIdx].Payload[tableColsOffset]) | int(records[tableIdx].Payload[tableColsOffset+1])<<8
				if cols == 0 {
					cols = 1
				}
			}
			matched = seq == row*cols+col
		}
		seq++

		if matched {
			return i, cellEnd, nil
		}
		i = cellEnd - 1
	}

	return 0, 0, fmt.Errorf("%w: cell row=%d col=%d", errs.ErrRefNotFound, row, col)
}

// findTextBox locates the idx-th gso/$rec/LIST_HEADER text-box triple,
// returning the LIST_HEADER's span (the text box's paragraph range).
func findTextBox(records []recstream.Record, idx int) (start, end int, err error) {
	count := 0
	for i, rec := range records {
		if rec.Header.TagID != tagCtrlHeader {
			continue
		}
		id, decErr := textcodec.DecodeControlID(rec.Payload)
		if decErr != nil || id != ctrlIDGSO {
			continue
		}

		groupE := groupEnd(records, i)
		for j := i + 1; j < groupE; j++ {
			if records[j].Header.TagID != tagShapeComponent {
				continue
			}
			subtype, decErr := textcodec.DecodeControlID(records[j].Payload)
			if decErr != nil || subtype != ctrlIDShapeRect {
				continue
			}

			for k := j + 1; k < groupE; k++ {
				if records[k].Header.TagID == tagListHeader {
					if count == idx {
						return k, groupEnd(records, k), nil
					}
					count++

					break
				}
			}

			break
		}
	}

	return 0, 0, fmt.Errorf("%w: text box %d", errs.ErrRefNotFound, idx)
}
