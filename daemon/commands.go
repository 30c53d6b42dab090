package daemon

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gohwp/hwp/doc"
	"github.com/gohwp/hwp/errs"
	"github.com/gohwp/hwp/holder"
	"github.com/gohwp/hwp/ops"
	"github.com/gohwp/hwp/ref"
)

// dispatch runs one command against h and returns the response "data"
// payload (§6.3).
func dispatch(h *holder.Holder, command string, rawArgs json.RawMessage) (any, error) {
	switch command {
	case "ping":
		return nil, nil
	case "read":
		return cmdRead(h, rawArgs)
	case "text":
		return cmdText(h)
	case "validate":
		return cmdValidate(h)
	case "edit-text":
		return cmdEditText(h, rawArgs)
	case "edit-format":
		return cmdEditFormat(h, rawArgs)
	case "edit-table-cell":
		return cmdEditTableCell(h, rawArgs)
	case "add-table":
		return cmdAddTable(h, rawArgs)
	case "add-paragraph":
		return cmdAddParagraph(h, rawArgs)
	case "__flush":
		return nil, h.Flush()
	default:
		return nil, fmt.Errorf("%w: unknown command %q", errs.ErrProtocol, command)
	}
}

type readArgs struct {
	Ref    *string `json:"ref"`
	Offset *int    `json:"offset"`
	Limit  *int    `json:"limit"`
}

func cmdRead(h *holder.Holder, rawArgs json.RawMessage) (any, error) {
	var a readArgs
	if err := unmarshalArgs(rawArgs, &a); err != nil {
		return nil, err
	}

	header, err := h.GetHeader()
	if err != nil {
		return nil, err
	}
	sections, err := h.GetSections()
	if err != nil {
		return nil, err
	}

	if a.Ref == nil {
		secs := sections
		if a.Offset != nil || a.Limit != nil {
			secs = paginate(secs, a.Offset, a.Limit)
		}

		return doc.Document{FormatTag: h.FormatTag(), Header: header, Sections: secs}, nil
	}

	r, err := ref.Parse(*a.Ref)
	if err != nil {
		return nil, err
	}

	return projectRef(sections, r)
}

func paginate(secs []doc.Section, offset, limit *int) []doc.Section {
	start := 0
	if offset != nil && *offset > 0 {
		start = *offset
	}
	if start > len(secs) {
		start = len(secs)
	}
	end := len(secs)
	if limit != nil && start+*limit < end {
		end = start + *limit
	}

	return secs[start:end]
}

// projectRef navigates sections to the exact sub-entity r addresses.
func projectRef(sections []doc.Section, r ref.Ref) (any, error) {
	if r.Section < 0 || r.Section >= len(sections) {
		return nil, fmt.Errorf("%w: section %d", errs.ErrRefNotFound, r.Section)
	}
	sec := sections[r.Section]

	switch {
	case r.HasCell:
		tbl, err := tableAt(sec, r.Table)
		if err != nil {
			return nil, err
		}
		cell, err := cellAt(tbl, r.Row, r.Col)
		if err != nil {
			return nil, err
		}
		if r.HasCellParagraph {
			return paragraphAt(cell.Paragraphs, r.CellParagraph)
		}

		return cell, nil
	case r.HasTable:
		return tableAt(sec, r.Table)
	case r.HasTextBox:
		tb, err := textBoxAt(sec, r.TextBox)
		if err != nil {
			return nil, err
		}
		if r.HasTextBoxParagraph {
			return paragraphAt(tb.Paragraphs, r.TextBoxParagraph)
		}

		return tb, nil
	case r.HasImage:
		return imageAt(sec, r.Image)
	case r.HasParagraph:
		p, err := paragraphAt(sec.Paragraphs, r.Paragraph)
		if err != nil {
			return nil, err
		}
		if r.HasRun {
			return runAt(p.Runs, r.Run)
		}

		return p, nil
	default:
		return sec, nil
	}
}

func tableAt(sec doc.Section, idx int) (doc.Table, error) {
	if idx < 0 || idx >= len(sec.Tables) {
		return doc.Table{}, fmt.Errorf("%w: table %d", errs.ErrRefNotFound, idx)
	}

	return sec.Tables[idx], nil
}

func cellAt(tbl doc.Table, row, col int) (doc.Cell, error) {
	for _, c := range tbl.Cells {
		if c.Row == row && c.Col == col {
			return c, nil
		}
	}

	return doc.Cell{}, fmt.Errorf("%w: cell (%d,%d)", errs.ErrRefNotFound, row, col)
}

func textBoxAt(sec doc.Section, idx int) (doc.TextBox, error) {
	if idx < 0 || idx >= len(sec.TextBoxes) {
		return doc.TextBox{}, fmt.Errorf("%w: text box %d", errs.ErrRefNotFound, idx)
	}

	return sec.TextBoxes[idx], nil
}

func imageAt(sec doc.Section, idx int) (doc.Image, error) {
	if idx < 0 || idx >= len(sec.Images) {
		return doc.Image{}, fmt.Errorf("%w: image %d", errs.ErrRefNotFound, idx)
	}

	return sec.Images[idx], nil
}

func paragraphAt(paragraphs []doc.Paragraph, idx int) (doc.Paragraph, error) {
	if idx < 0 || idx >= len(paragraphs) {
		return doc.Paragraph{}, fmt.Errorf("%w: paragraph %d", errs.ErrRefNotFound, idx)
	}

	return paragraphs[idx], nil
}

func runAt(runs []doc.Run, idx int) (doc.Run, error) {
	if idx < 0 || idx >= len(runs) {
		return doc.Run{}, fmt.Errorf("%w: run %d", errs.ErrRefNotFound, idx)
	}

	return runs[idx], nil
}

func cmdText(h *holder.Holder) (any, error) {
	sections, err := h.GetSections()
	if err != nil {
		return nil, err
	}

	out := make([]string, len(sections))
	for i, sec := range sections {
		var texts []string
		for _, p := range sec.Paragraphs {
			texts = append(texts, p.Text())
		}
		out[i] = strings.Join(texts, "\n")
	}

	return out, nil
}

type validateData struct {
	Valid  bool          `json:"valid"`
	Format string        `json:"format"`
	Checks []checkResult `json:"checks"`
}

type checkResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func cmdValidate(h *holder.Holder) (any, error) {
	report, err := h.Validate()
	if err != nil {
		return nil, err
	}

	checks := make([]checkResult, len(report.Checks))
	for i, c := range report.Checks {
		checks[i] = checkResult{Name: c.Name, Status: string(c.Status), Message: c.Message}
	}

	return validateData{Valid: report.Valid, Format: h.FormatTag().String(), Checks: checks}, nil
}

type editTextArgs struct {
	Ref  string `json:"ref"`
	Text string `json:"text"`
}

func cmdEditText(h *holder.Holder, rawArgs json.RawMessage) (any, error) {
	var a editTextArgs
	if err := unmarshalArgs(rawArgs, &a); err != nil {
		return nil, err
	}

	if err := h.ApplyOperations([]ops.Operation{{Kind: ops.SetText, Ref: a.Ref, Text: a.Text}}); err != nil {
		return nil, err
	}

	return map[string]any{"ref": a.Ref, "text": a.Text, "success": true}, nil
}

func cmdEditTableCell(h *holder.Holder, rawArgs json.RawMessage) (any, error) {
	var a editTextArgs
	if err := unmarshalArgs(rawArgs, &a); err != nil {
		return nil, err
	}

	if err := h.ApplyOperations([]ops.Operation{{Kind: ops.SetText, Ref: a.Ref, Text: a.Text}}); err != nil {
		return nil, err
	}

	return map[string]any{"ref": a.Ref, "success": true}, nil
}

// wireFormat mirrors §6.3's FormatOptions: a subset of bold/italic/
// underline/fontName/fontSize/color, color as "#RRGGBB".
type wireFormat struct {
	Bold      *bool    `json:"bold"`
	Italic    *bool    `json:"italic"`
	Underline *bool    `json:"underline"`
	FontName  *string  `json:"fontName"`
	FontSize  *float64 `json:"fontSize"`
	Color     *string  `json:"color"`
}

func (w wireFormat) toOps() (ops.CharFormat, error) {
	cf := ops.CharFormat{Bold: w.Bold, Italic: w.Italic, Underline: w.Underline, FontName: w.FontName, FontSize: w.FontSize}
	if w.Color != nil {
		c, err := parseHexColor(*w.Color)
		if err != nil {
			return ops.CharFormat{}, err
		}
		cf.Color = &c
	}

	return cf, nil
}

func parseHexColor(s string) (doc.Color, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return doc.Color{}, fmt.Errorf("%w: %q is not #RRGGBB", errs.ErrInvalidColor, s)
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return doc.Color{}, fmt.Errorf("%w: %q: %v", errs.ErrInvalidColor, s, err)
	}

	return doc.Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

type editFormatArgs struct {
	Ref    string     `json:"ref"`
	Format wireFormat `json:"format"`
	Start  *int       `json:"start"`
	End    *int       `json:"end"`
}

func cmdEditFormat(h *holder.Holder, rawArgs json.RawMessage) (any, error) {
	var a editFormatArgs
	if err := unmarshalArgs(rawArgs, &a); err != nil {
		return nil, err
	}

	cf, err := a.Format.toOps()
	if err != nil {
		return nil, err
	}

	op := ops.Operation{Kind: ops.SetFormat, Ref: a.Ref, Format: &cf, Start: a.Start, End: a.End}
	if err := h.ApplyOperations([]ops.Operation{op}); err != nil {
		return nil, err
	}

	return map[string]any{"ref": a.Ref, "success": true}, nil
}

type addTableArgs struct {
	Ref  string     `json:"ref"`
	Rows int        `json:"rows"`
	Cols int        `json:"cols"`
	Data [][]string `json:"data"`
}

func cmdAddTable(h *holder.Holder, rawArgs json.RawMessage) (any, error) {
	var a addTableArgs
	if err := unmarshalArgs(rawArgs, &a); err != nil {
		return nil, err
	}

	op := ops.Operation{Kind: ops.AddTable, Ref: a.Ref, Rows: a.Rows, Cols: a.Cols, CellData: a.Data}
	if err := h.ApplyOperations([]ops.Operation{op}); err != nil {
		return nil, err
	}

	return map[string]any{"success": true}, nil
}

type addParagraphArgs struct {
	Ref      string      `json:"ref"`
	Text     string      `json:"text"`
	Position string      `json:"position"`
	Format   *wireFormat `json:"format"`
}

func cmdAddParagraph(h *holder.Holder, rawArgs json.RawMessage) (any, error) {
	var a addParagraphArgs
	if err := unmarshalArgs(rawArgs, &a); err != nil {
		return nil, err
	}

	pos, err := parsePosition(a.Position)
	if err != nil {
		return nil, err
	}

	op := ops.Operation{Kind: ops.AddParagraph, Ref: a.Ref, Text: a.Text, Position: pos}
	if a.Format != nil {
		cf, err := a.Format.toOps()
		if err != nil {
			return nil, err
		}
		op.Format = &cf
	}

	if err := h.ApplyOperations([]ops.Operation{op}); err != nil {
		return nil, err
	}

	return map[string]any{"success": true}, nil
}

func parsePosition(s string) (ops.Position, error) {
	switch s {
	case "", "end":
		return ops.PositionEnd, nil
	case "before":
		return ops.PositionBefore, nil
	case "after":
		return ops.PositionAfter, nil
	default:
		return 0, fmt.Errorf("%w: unknown position %q", errs.ErrProtocol, s)
	}
}

func unmarshalArgs(rawArgs json.RawMessage, dst any) error {
	if len(rawArgs) == 0 {
		return nil
	}
	if err := json.Unmarshal(rawArgs, dst); err != nil {
		return fmt.Errorf("%w: malformed args: %v", errs.ErrProtocol, err)
	}

	return nil
}
