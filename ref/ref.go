// Package ref implements the document addressing grammar shared by every
// mutator: a dotted-path string identifying a section, and optionally a
// paragraph, table cell, text box, image, or run within it.
//
// Grammar: s\d+(.(p\d+ | (t\d+(.r\d+.c\d+(.p\d+)?)?) | (tb\d+(.p\d+)?) | img\d+))?(.run\d+)?
package ref

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gohwp/hwp/errs"
)

// Ref is a parsed reference. Section is always set; the other fields are
// optional and mutually exclusive except where noted (Run may combine with
// any of the others, Table fields travel together).
type Ref struct {
	Section int

	HasParagraph bool
	Paragraph    int

	HasTable  bool
	Table     int
	HasCell   bool
	Row       int
	Col       int
	HasCellParagraph bool
	CellParagraph    int

	HasTextBox bool
	TextBox    int
	HasTextBoxParagraph bool
	TextBoxParagraph    int

	HasImage bool
	Image    int

	HasRun bool
	Run    int
}

// Parse parses a reference string into its components. Returns
// errs.ErrInvalidReference on any grammar violation.
func Parse(s string) (Ref, error) {
	parts := strings.Split(s, ".")
	if len(parts) == 0 {
		return Ref{}, fmt.Errorf("%w: empty reference", errs.ErrInvalidReference)
	}

	var r Ref

	sec, ok := parseComponent(parts[0], "s")
	if !ok {
		return Ref{}, fmt.Errorf("%w: %q: missing leading section component", errs.ErrInvalidReference, s)
	}
	r.Section = sec
	rest := parts[1:]

	if len(rest) == 0 {
		return r, nil
	}

	i := 0

	switch {
	case strings.HasPrefix(rest[i], "p"):
		n, ok := parseComponent(rest[i], "p")
		if !ok {
			return Ref{}, fmt.Errorf("%w: %q: bad paragraph component", errs.ErrInvalidReference, s)
		}
		r.HasParagraph = true
		r.Paragraph = n
		i++

	case strings.HasPrefix(rest[i], "t") && !strings.HasPrefix(rest[i], "tb"):
		n, ok := parseComponent(rest[i], "t")
		if !ok {
			return Ref{}, fmt.Errorf("%w: %q: bad table component", errs.ErrInvalidReference, s)
		}
		r.HasTable = true
		r.Table = n
		i++

		if i < len(rest) && strings.HasPrefix(rest[i], "r") {
			row, ok := parseComponent(rest[i], "r")
			if !ok {
				return Ref{}, fmt.Errorf("%w: %q: bad row component", errs.ErrInvalidReference, s)
			}
			i++
			if i >= len(rest) || !strings.HasPrefix(rest[i], "c") {
				return Ref{}, fmt.Errorf("%w: %q: row component without matching column", errs.ErrInvalidReference, s)
			}
			col, ok := parseComponent(rest[i], "c")
			if !ok {
				return Ref{}, fmt.Errorf("%w: %q: bad column component", errs.ErrInvalidReference, s)
			}
			r.HasCell = true
			r.Row = row
			r.Col = col
			i++

			if i < len(rest) && strings.HasPrefix(rest[i], "p") {
				cp, ok := parseComponent(rest[i], "p")
				if !ok {
					return Ref{}, fmt.Errorf("%w: %q: bad cell-paragraph component", errs.ErrInvalidReference, s)
				}
				r.HasCellParagraph = true
				r.CellParagraph = cp
				i++
			}
		}

	case strings.HasPrefix(rest[i], "tb"):
		n, ok := parseComponent(rest[i], "tb")
		if !ok {
			return Ref{}, fmt.Errorf("%w: %q: bad text-box component", errs.ErrInvalidReference, s)
		}
		r.HasTextBox = true
		r.TextBox = n
		i++

		if i < len(rest) && strings.HasPrefix(rest[i], "p") {
			tp, ok := parseComponent(rest[i], "p")
			if !ok {
				return Ref{}, fmt.Errorf("%w: %q: bad text-box-paragraph component", errs.ErrInvalidReference, s)
			}
			r.HasTextBoxParagraph = true
			r.TextBoxParagraph = tp
			i++
		}

	case strings.HasPrefix(rest[i], "img"):
		n, ok := parseComponent(rest[i], "img")
		if !ok {
			return Ref{}, fmt.Errorf("%w: %q: bad image component", errs.ErrInvalidReference, s)
		}
		r.HasImage = true
		r.Image = n
		i++

	case strings.HasPrefix(rest[i], "run"):
		// run-only reference, handled below by the trailing check.

	default:
		return Ref{}, fmt.Errorf("%w: %q: unrecognized component %q", errs.ErrInvalidReference, s, rest[i])
	}

	if i < len(rest) {
		if !strings.HasPrefix(rest[i], "run") {
			return Ref{}, fmt.Errorf("%w: %q: unexpected trailing component %q", errs.ErrInvalidReference, s, rest[i])
		}
		n, ok := parseComponent(rest[i], "run")
		if !ok {
			return Ref{}, fmt.Errorf("%w: %q: bad run component", errs.ErrInvalidReference, s)
		}
		r.HasRun = true
		r.Run = n
		i++
	}

	if i != len(rest) {
		return Ref{}, fmt.Errorf("%w: %q: trailing components after run", errs.ErrInvalidReference, s)
	}

	return r, nil
}

// parseComponent checks that s has the given prefix followed by one or more
// digits, and returns the parsed integer.
func parseComponent(s, prefix string) (int, bool) {
	if !strings.HasPrefix(s, prefix) {
		return 0, false
	}
	digits := s[len(prefix):]
	if digits == "" {
		return 0, false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}

	return n, true
}

// Build is the inverse of Parse: for any valid Ref assembled from its parts,
// Parse(Build(r)) == r.
func Build(r Ref) string {
	var b strings.Builder
	fmt.Fprintf(&b, "s%d", r.Section)

	switch {
	case r.HasParagraph:
		fmt.Fprintf(&b, ".p%d", r.Paragraph)
	case r.HasTable:
		fmt.Fprintf(&b, ".t%d", r.Table)
		if r.HasCell {
			fmt.Fprintf(&b, ".r%d.c%d", r.Row, r.Col)
			if r.HasCellParagraph {
				fmt.Fprintf(&b, ".p%d", r.CellParagraph)
			}
		}
	case r.HasTextBox:
		fmt.Fprintf(&b, ".tb%d", r.TextBox)
		if r.HasTextBoxParagraph {
			fmt.Fprintf(&b, ".p%d", r.TextBoxParagraph)
		}
	case r.HasImage:
		fmt.Fprintf(&b, ".img%d", r.Image)
	}

	if r.HasRun {
		fmt.Fprintf(&b, ".run%d", r.Run)
	}

	return b.String()
}
