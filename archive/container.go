// Package archive implements the archive-format ("ZIP of XML parts") codec:
// ZIP part enumeration, header.xml/section<n>.xml parsing into the shared
// document model, the order-preserving XML mutator, and re-serialization
// that leaves every untouched ZIP entry byte-identical.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gohwp/hwp/archive/xmltree"
	"github.com/gohwp/hwp/errs"
)

const (
	partVersion    = "version.xml"
	partManifest   = "META-INF/manifest.xml"
	partContentHPF = "Contents/content.hpf"
	partHeader     = "Contents/header.xml"
	sectionPrefix  = "Contents/section"
	sectionSuffix  = ".xml"
)

// Container is the parsed form of an archive-format file: every ZIP part
// kept as raw bytes, plus the header and section parts additionally parsed
// into order-preserving XML trees that the mutator edits directly. Parts
// the mutator never touches are re-emitted byte-identical by Serialize.
type Container struct {
	// Parts holds every ZIP entry's raw bytes, keyed by its in-archive
	// name, in original ZIP order (see order).
	Parts map[string][]byte
	order []string

	HeaderTree   *xmltree.Node
	SectionTrees []*xmltree.Node // index i holds "Contents/section<i>.xml"

	headerDirty   bool
	sectionDirty  []bool
}

// ParseContainer reads a ZIP buffer into a Container, parsing the header
// and section parts into editable XML trees.
func ParseContainer(raw []byte) (*Container, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidFormat, err)
	}

	c := &Container{Parts: map[string][]byte{}}

	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: opening %s: %v", errs.ErrInvalidFormat, f.Name, err)
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			rc.Close()

			return nil, fmt.Errorf("%w: reading %s: %v", errs.ErrInvalidFormat, f.Name, err)
		}
		rc.Close()

		c.Parts[f.Name] = buf.Bytes()
		c.order = append(c.order, f.Name)
	}

	headerRaw, ok := c.Parts[partHeader]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrMissingStream, partHeader)
	}
	headerTree, err := xmltree.Parse(headerRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: header.xml: %v", errs.ErrInvalidFormat, err)
	}
	c.HeaderTree = headerTree

	sectionIdx := map[int]*xmltree.Node{}
	for name, data := range c.Parts {
		if !strings.HasPrefix(name, sectionPrefix) || !strings.HasSuffix(name, sectionSuffix) {
			continue
		}
		numStr := strings.TrimSuffix(strings.TrimPrefix(name, sectionPrefix), sectionSuffix)
		n, err := strconv.Atoi(numStr)
		if err != nil {
			continue
		}
		tree, err := xmltree.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errs.ErrInvalidFormat, name, err)
		}
		sectionIdx[n] = tree
	}
	if _, ok := sectionIdx[0]; !ok {
		return nil, fmt.Errorf("%w: %s0%s", errs.ErrMissingStream, sectionPrefix, sectionSuffix)
	}

	nums := make([]int, 0, len(sectionIdx))
	for n := range sectionIdx {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	for _, n := range nums {
		c.SectionTrees = append(c.SectionTrees, sectionIdx[n])
	}
	c.sectionDirty = make([]bool, len(c.SectionTrees))

	return c, nil
}

// MarkHeaderDirty flags the header part as edited, so Serialize
// re-serializes it from HeaderTree instead of reusing raw bytes.
func (c *Container) MarkHeaderDirty() {
	c.headerDirty = true
}

// MarkSectionDirty flags a section part as edited.
func (c *Container) MarkSectionDirty(idx int) {
	c.sectionDirty[idx] = true
}

func sectionPartName(idx int) string {
	return fmt.Sprintf("%s%d%s", sectionPrefix, idx, sectionSuffix)
}

// Serialize re-encodes the container back into ZIP bytes. Every part the
// mutator did not touch is copied byte-identical; the header (when marked
// dirty) and dirty section parts are re-serialized from their XML trees. ZIP entry order is
// preserved.
func (c *Container) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, name := range c.order {
		data := c.Parts[name]

		switch {
		case name == partHeader && c.headerDirty:
			data = xmltree.Serialize(c.HeaderTree)
		default:
			if idx, ok := sectionIndexForName(name); ok && idx < len(c.sectionDirty) && c.sectionDirty[idx] {
				data = xmltree.Serialize(c.SectionTrees[idx])
			}
		}

		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("%w: creating %s: %v", errs.ErrIO, name, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("%w: writing %s: %v", errs.ErrIO, name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIO, err)
	}

	return buf.Bytes(), nil
}

func sectionIndexForName(name string) (int, bool) {
	if !strings.HasPrefix(name, sectionPrefix) || !strings.HasSuffix(name, sectionSuffix) {
		return 0, false
	}
	numStr := strings.TrimSuffix(strings.TrimPrefix(name, sectionPrefix), sectionSuffix)
	n, err := strconv.Atoi(numStr)
	if err != nil {
		return 0, false
	}

	return n, true
}
