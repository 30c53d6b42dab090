package archive

import (
	"fmt"
	"math"
	"strconv"

	"github.com/gohwp/hwp/archive/xmltree"
	"github.com/gohwp/hwp/doc"
	"github.com/gohwp/hwp/errs"
	"github.com/gohwp/hwp/internal/collision"
	"github.com/gohwp/hwp/internal/hash"
)

// CharFormat is a partial update to an hh:charPr's attributes; nil fields
// are left unchanged when cloning the source entry. Mirrors binary.CharFormat
// so ops/ can build one value and hand it to whichever mutator applies.
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

// Mutator applies reference-driven edits directly to a Container's XML
// trees (§4.6).
type Mutator struct {
	c *Container
}

// NewMutator wraps a parsed Container for editing.
func NewMutator(c *Container) *Mutator {
	return &Mutator{c: c}
}

func (m *Mutator) section(idx int) (*xmltree.Node, error) {
	if idx < 0 || idx >= len(m.c.SectionTrees) {
		return nil, fmt.Errorf("%w: section %d", errs.ErrRefNotFound, idx)
	}

	return m.c.SectionTrees[idx], nil
}

// SetParagraphText replaces a top-level paragraph's run sequence with a
// single run carrying the new text. The new run keeps the first existing
// run's charPrIDRef ("0" if there was none); the paragraph's other children
// and its paraPrIDRef/styleIDRef attributes are kept.
func (m *Mutator) SetParagraphText(sectionIdx, paragraphIdx int, text string) error {
	root, err := m.section(sectionIdx)
	if err != nil {
		return err
	}

	p, ok := findNthChild(root, elP, paragraphIdx)
	if !ok {
		return fmt.Errorf("%w: s%d.p%d", errs.ErrRefNotFound, sectionIdx, paragraphIdx)
	}
	setSingleRunText(p, text)
	m.c.MarkSectionDirty(sectionIdx)

	return nil
}

// SetTableCellText replaces a cell paragraph's text.
func (m *Mutator) SetTableCellText(sectionIdx, tableIdx, row, col, cellParagraphIdx int, text string) error {
	root, err := m.section(sectionIdx)
	if err != nil {
		return err
	}

	tbl, ok := findNthChild(root, elTbl, tableIdx)
	if !ok {
		return fmt.Errorf("%w: s%d.t%d", errs.ErrRefNotFound, sectionIdx, tableIdx)
	}
	cell, ok := findCell(tbl, row, col)
	if !ok {
		return fmt.Errorf("%w: s%d.t%d.r%d.c%d", errs.ErrRefNotFound, sectionIdx, tableIdx, row, col)
	}
	p, ok := findNthChild(cell, elP, cellParagraphIdx)
	if !ok {
		return fmt.Errorf("%w: s%d.t%d.r%d.c%d.p%d", errs.ErrRefNotFound, sectionIdx, tableIdx, row, col, cellParagraphIdx)
	}
	setSingleRunText(p, text)
	m.c.MarkSectionDirty(sectionIdx)

	return nil
}

// SetTextBoxText replaces a text-box paragraph's text.
func (m *Mutator) SetTextBoxText(sectionIdx, textBoxIdx, textBoxParagraphIdx int, text string) error {
	root, err := m.section(sectionIdx)
	if err != nil {
		return err
	}

	subList, ok := findTextBoxSubList(root, textBoxIdx)
	if !ok {
		return fmt.Errorf("%w: s%d.tb%d", errs.ErrRefNotFound, sectionIdx, textBoxIdx)
	}
	p, ok := findNthChild(subList, elP, textBoxParagraphIdx)
	if !ok {
		return fmt.Errorf("%w: s%d.tb%d.p%d", errs.ErrRefNotFound, sectionIdx, textBoxIdx, textBoxParagraphIdx)
	}
	setSingleRunText(p, text)
	m.c.MarkSectionDirty(sectionIdx)

	return nil
}

func setSingleRunText(p *xmltree.Node, text string) {
	charRef := "0"
	if len(p.Children) > 0 {
		for _, c := range p.Children {
			if !c.IsText() && c.Name.Local == elRun {
				if v, ok := c.Attr(attrCharPrIDRef); ok {
					charRef = v
				}

				break
			}
		}
	}

	run := &xmltree.Node{Name: qn(nsHP, elRun)}
	run.SetAttr(attrCharPrIDRef, charRef)
	t := &xmltree.Node{Name: qn(nsHP, elT)}
	t.Children = []*xmltree.Node{xmltree.CharDataNode(text)}
	run.Children = []*xmltree.Node{t}

	replaceChildren(p, elRun, []*xmltree.Node{run})
}

// findNthChild returns the idx-th direct element child of n whose local
// name matches.
func findNthChild(n *xmltree.Node, local string, idx int) (*xmltree.Node, bool) {
	i := 0
	for _, c := range n.Children {
		if c.IsText() || c.Name.Local != local {
			continue
		}
		if i == idx {
			return c, true
		}
		i++
	}

	return nil, false
}

func findCell(tbl *xmltree.Node, row, col int) (*xmltree.Node, bool) {
	for rowIdx, tr := range tbl.ChildrenNamed(elTr) {
		for colIdx, tc := range tr.ChildrenNamed(elTc) {
			r, c := rowIdx, colIdx
			if addr, ok := tc.Child(elCellAddr); ok {
				if v, err := strconv.Atoi(attrOrZero(addr, attrRowAddr)); err == nil {
					r = v
				}
				if v, err := strconv.Atoi(attrOrZero(addr, attrColAddr)); err == nil {
					c = v
				}
			}
			if r == row && c == col {
				return tc, true
			}
		}
	}

	return nil, false
}

func findTextBoxSubList(root *xmltree.Node, idx int) (*xmltree.Node, bool) {
	i := 0
	for _, rect := range root.ChildrenNamed(elRect) {
		drawText, ok := rect.Child(elDrawText)
		if !ok {
			continue
		}
		subList, ok := drawText.Child(elSubList)
		if !ok {
			continue
		}
		if i == idx {
			return subList, true
		}
		i++
	}

	return nil, false
}

// SetFormat clones the paragraph's source hh:charPr into a new entry with
// f applied, and rewrites charPrIDRef on the affected run(s). When rng is
// nil, every run in the paragraph is rewritten; otherwise the paragraph's
// runs are sliced into up to three runs at rng's boundaries.
func (m *Mutator) SetFormat(sectionIdx, paragraphIdx int, f CharFormat, rng *Range) error {
	root, err := m.section(sectionIdx)
	if err != nil {
		return err
	}

	p, ok := findNthChild(root, elP, paragraphIdx)
	if !ok {
		return fmt.Errorf("%w: s%d.p%d", errs.ErrRefNotFound, sectionIdx, paragraphIdx)
	}

	runs := p.ChildrenNamed(elRun)
	if len(runs) == 0 {
		return fmt.Errorf("%w: s%d.p%d has no runs", errs.ErrRefNotFound, sectionIdx, paragraphIdx)
	}
	sourceID := attrOrZero(runs[0], attrCharPrIDRef)

	newID, err := m.cloneCharPr(sourceID, f)
	if err != nil {
		return err
	}

	if rng == nil {
		for _, r := range runs {
			r.SetAttr(attrCharPrIDRef, newID)
		}
		m.c.MarkSectionDirty(sectionIdx)

		return nil
	}

	text := paragraphText(p)
	runeText := []rune(text)
	if rng.Start < 0 || rng.End > len(runeText) || rng.Start > rng.End {
		return fmt.Errorf("%w: range [%d,%d) in paragraph of length %d", errs.ErrRangeOutOfBounds, rng.Start, rng.End, len(runeText))
	}

	var newRuns []*xmltree.Node
	if rng.Start > 0 {
		newRuns = append(newRuns, buildRun(sourceID, string(runeText[:rng.Start])))
	}
	newRuns = append(newRuns, buildRun(newID, string(runeText[rng.Start:rng.End])))
	if rng.End < len(runeText) {
		newRuns = append(newRuns, buildRun(sourceID, string(runeText[rng.End:])))
	}

	replaceChildren(p, elRun, newRuns)
	m.c.MarkSectionDirty(sectionIdx)

	return nil
}

func buildRun(charPrID, text string) *xmltree.Node {
	run := &xmltree.Node{Name: qn(nsHP, elRun)}
	run.SetAttr(attrCharPrIDRef, charPrID)
	t := &xmltree.Node{Name: qn(nsHP, elT)}
	t.Children = []*xmltree.Node{xmltree.CharDataNode(text)}
	run.Children = []*xmltree.Node{t}

	return run
}

// replaceChildren swaps out every direct child of n with local name
// `local` for replacement, preserving the position of the first match and
// dropping the others, leaving every other child's order untouched.
func replaceChildren(n *xmltree.Node, local string, replacement []*xmltree.Node) {
	out := make([]*xmltree.Node, 0, len(n.Children)+len(replacement))
	inserted := false
	for _, c := range n.Children {
		if !c.IsText() && c.Name.Local == local {
			if !inserted {
				out = append(out, replacement...)
				inserted = true
			}

			continue
		}
		out = append(out, c)
	}
	if !inserted {
		out = append(out, replacement...)
	}
	n.Children = out
}

func paragraphText(p *xmltree.Node) string {
	var out []byte
	for _, run := range p.ChildrenNamed(elRun) {
		if t, ok := run.Child(elT); ok {
			out = append(out, textOf(t)...)
		}
	}

	return string(out)
}

// cloneCharPr deep-clones the hh:charPr identified by sourceID, applies f's
// overrides, appends it to hh:charProperties with the next integer id, and
// returns the new id as a string.
func (m *Mutator) cloneCharPr(sourceID string, f CharFormat) (string, error) {
	refList, ok := findRefList(m.c.HeaderTree)
	if !ok {
		return "", fmt.Errorf("%w: header has no refList", errs.ErrInvalidFormat)
	}
	charProps, ok := refList.Child(elCharProps)
	if !ok {
		return "", fmt.Errorf("%w: header has no charProperties", errs.ErrInvalidFormat)
	}

	var source *xmltree.Node
	maxID := -1
	for _, cp := range charProps.ChildrenNamed(elCharPr) {
		id, _ := strconv.Atoi(attrOrZero(cp, attrID))
		if id > maxID {
			maxID = id
		}
		if attrOrZero(cp, attrID) == sourceID {
			source = cp
		}
	}
	if source == nil {
		return "", fmt.Errorf("%w: charPr id %s", errs.ErrRefNotFound, sourceID)
	}

	clone := source.Clone()
	newID := maxID + 1
	clone.SetAttr(attrID, strconv.Itoa(newID))

	if f.Bold != nil {
		clone.SetAttr(attrFontBold, boolAttr(*f.Bold))
	}
	if f.Italic != nil {
		clone.SetAttr(attrFontItalic, boolAttr(*f.Italic))
	}
	if f.Underline != nil {
		clone.SetAttr(attrUnderline, boolAttr(*f.Underline))
	}
	if f.FontSize != nil {
		clone.SetAttr(attrHeight, strconv.Itoa(int(math.Round(*f.FontSize*100))))
	}
	if f.Color != nil {
		clone.SetAttr(attrColor, strconv.Itoa(colorToInt(*f.Color)))
	}
	if f.FontName != nil {
		fontRef := m.resolveOrAddFont(*f.FontName)
		clone.SetAttr(attrFontRef, strconv.Itoa(fontRef))
	}

	charProps.Children = append(charProps.Children, clone)
	m.c.MarkHeaderDirty()

	return strconv.Itoa(newID), nil
}

func boolAttr(b bool) string {
	if b {
		return "1"
	}

	return "0"
}

// resolveOrAddFont finds an hh:fontface by name, adding one with the next
// integer id if absent, and returns its id. Each call indexes every existing
// face into a fresh collision.Tracker keyed by internal/hash's xxHash64 of
// the name and looks the requested name up there, so repeated calls with
// the same name reuse one face instead of appending duplicates.
func (m *Mutator) resolveOrAddFont(name string) int {
	refList, ok := findRefList(m.c.HeaderTree)
	if !ok {
		return 0
	}
	faces, ok := refList.Child(elFontfaces)
	if !ok {
		faces = &xmltree.Node{Name: qn(nsHH, elFontfaces)}
		refList.Children = append([]*xmltree.Node{faces}, refList.Children...)
	}

	existing := faces.ChildrenNamed(elFontface)
	tr := collision.NewTracker()
	tracked := make([]*xmltree.Node, 0, len(existing))
	maxID := -1
	for _, f := range existing {
		id, _ := strconv.Atoi(attrOrZero(f, attrID))
		if id > maxID {
			maxID = id
		}
		if faceName := attrOrZero(f, attrName); faceName != "" {
			if tr.Track(faceName, hash.ID(faceName)) == nil {
				tracked = append(tracked, f)
			}
		}
	}

	if idx, found := tr.IndexOf(name, hash.ID(name)); found {
		id, _ := strconv.Atoi(attrOrZero(tracked[idx], attrID))

		return id
	}

	newID := maxID + 1
	nf := &xmltree.Node{Name: qn(nsHH, elFontface)}
	nf.SetAttr(attrID, strconv.Itoa(newID))
	nf.SetAttr(attrName, name)
	faces.Children = append(faces.Children, nf)
	m.c.MarkHeaderDirty()

	return newID
}

// AddTable appends a complete hp:tbl subtree at the end of the section,
// with rows*cols cells each carrying a single paragraph of the
// corresponding cellData entry (or empty text if cellData is nil or
// shorter than the grid).
func (m *Mutator) AddTable(sectionIdx, rows, cols int, cellData [][]string) error {
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("%w: rows and cols must be positive", errs.ErrMalformedTable)
	}
	root, err := m.section(sectionIdx)
	if err != nil {
		return err
	}

	tbl := &xmltree.Node{Name: qn(nsHP, elTbl)}
	for r := 0; r < rows; r++ {
		tr := &xmltree.Node{Name: qn(nsHP, elTr)}
		for c := 0; c < cols; c++ {
			text := ""
			if r < len(cellData) && c < len(cellData[r]) {
				text = cellData[r][c]
			}
			tr.Children = append(tr.Children, buildCell(r, c, text))
		}
		tbl.Children = append(tbl.Children, tr)
	}

	root.Children = append(root.Children, tbl)
	m.c.MarkSectionDirty(sectionIdx)

	return nil
}

func buildCell(row, col int, text string) *xmltree.Node {
	tc := &xmltree.Node{Name: qn(nsHP, elTc)}

	addr := &xmltree.Node{Name: qn(nsHP, elCellAddr)}
	addr.SetAttr(attrColAddr, strconv.Itoa(col))
	addr.SetAttr(attrRowAddr, strconv.Itoa(row))

	span := &xmltree.Node{Name: qn(nsHP, elCellSpan)}
	span.SetAttr(attrColSpan, "1")
	span.SetAttr(attrRowSpan, "1")

	p := &xmltree.Node{Name: qn(nsHP, elP)}
	p.SetAttr(attrParaPrIDRef, "0")
	p.SetAttr(attrStyleIDRef, "0")
	p.Children = []*xmltree.Node{buildRun("0", text)}

	tc.Children = []*xmltree.Node{addr, span, p}

	return tc
}

// AddParagraph inserts a new hp:p at the requested position relative to
// anchorIdx (or at the section's end when anchorIdx is nil or pos is
// PositionEnd). If f is supplied, the new paragraph's single run gets a
// freshly cloned char-shape.
func (m *Mutator) AddParagraph(sectionIdx int, anchorIdx *int, text string, pos Position, f *CharFormat) error {
	root, err := m.section(sectionIdx)
	if err != nil {
		return err
	}

	charRef := "0"
	if f != nil {
		newID, err := m.cloneCharPr("0", *f)
		if err != nil {
			return err
		}
		charRef = newID
	}

	p := &xmltree.Node{Name: qn(nsHP, elP)}
	p.SetAttr(attrParaPrIDRef, "0")
	p.SetAttr(attrStyleIDRef, "0")
	p.Children = []*xmltree.Node{buildRun(charRef, text)}

	insertAt := len(root.Children)
	if anchorIdx != nil && pos != PositionEnd {
		anchorPos, ok := positionOfNthChild(root, elP, *anchorIdx)
		if !ok {
			return fmt.Errorf("%w: s%d.p%d", errs.ErrRefNotFound, sectionIdx, *anchorIdx)
		}
		if pos == PositionBefore {
			insertAt = anchorPos
		} else {
			insertAt = anchorPos + 1
		}
	}

	out := make([]*xmltree.Node, 0, len(root.Children)+1)
	out = append(out, root.Children[:insertAt]...)
	out = append(out, p)
	out = append(out, root.Children[insertAt:]...)
	root.Children = out

	m.c.MarkSectionDirty(sectionIdx)

	return nil
}

// positionOfNthChild returns the Children-slice index of the idx-th
// element child of n whose local name matches.
func positionOfNthChild(n *xmltree.Node, local string, idx int) (int, bool) {
	i := 0
	for pos, c := range n.Children {
		if c.IsText() || c.Name.Local != local {
			continue
		}
		if i == idx {
			return pos, true
		}
		i++
	}

	return 0, false
}
