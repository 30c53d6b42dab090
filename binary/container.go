// Package binary implements the binary-format ("HWP Document File")
// codec: the compound-file container, DocInfo/section record parsing, the
// in-place record mutator, and the eight-layer structural validator.
package binary

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gohwp/hwp/errs"
	"github.com/gohwp/hwp/internal/cfb"
	"github.com/gohwp/hwp/internal/rawdeflate"
)

const (
	signature       = "HWP Document File"
	fileHeaderSize  = 256
	flagsOffset     = 36
	flagCompressed  = 1 << 0
	flagEncrypted   = 1 << 1
)

// Container is the parsed form of a binary-format file: the raw
// FileHeader, decompressed DocInfo and section streams, and any BinData
// streams, kept available for byte-identical re-serialization of whatever
// the mutator does not touch.
type Container struct {
	FileHeader []byte
	Compressed bool

	DocInfo  []byte
	Sections [][]byte

	// BinData holds binary attachment streams (images, OLE objects) keyed
	// by their stream name under "BinData/", kept exactly as read.
	BinData map[string][]byte

	// Extra holds every other named stream the container doesn't otherwise
	// model (PrvText, PrvImage, DocOptions, Scripts/*, the OLE
	// SummaryInformation stream, ...), kept byte-for-byte so round-tripping
	// a real document through Parse/Mutator/Serialize never silently drops
	// a stream this codec doesn't interpret.
	Extra map[string][]byte
}

// ParseContainer reads a compound-file buffer into a Container. It does not
// interpret DocInfo/section record contents — that's the job of Parse in
// reader.go.
func ParseContainer(raw []byte) (*Container, error) {
	streams, err := cfb.Read(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidFormat, err)
	}

	fh, ok := streams["FileHeader"]
	if !ok || len(fh) < fileHeaderSize {
		return nil, fmt.Errorf("%w: missing or short FileHeader", errs.ErrInvalidFormat)
	}
	if !strings.HasPrefix(string(fh[0:len(signature)]), signature) {
		return nil, fmt.Errorf("%w: bad signature", errs.ErrInvalidFormat)
	}
	if len(fh) < flagsOffset+4 {
		return nil, fmt.Errorf("%w: FileHeader too short for flags", errs.ErrInvalidHeaderSize)
	}

	flags := fh[flagsOffset]
	if flags&flagEncrypted != 0 {
		return nil, errs.ErrPasswordProtected
	}
	compressed := flags&flagCompressed != 0

	docInfoRaw, ok := streams["DocInfo"]
	if !ok {
		return nil, fmt.Errorf("%w: DocInfo", errs.ErrMissingStream)
	}

	docInfo, err := maybeDecompress(docInfoRaw, compressed)
	if err != nil {
		return nil, err
	}

	sectionIdx := map[int][]byte{}
	for name, data := range streams {
		if !strings.HasPrefix(name, "BodyText/Section") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(name, "BodyText/Section"))
		if err != nil {
			continue
		}
		dec, err := maybeDecompress(data, compressed)
		if err != nil {
			return nil, err
		}
		sectionIdx[n] = dec
	}

	if _, ok := sectionIdx[0]; !ok {
		return nil, fmt.Errorf("%w: BodyText/Section0", errs.ErrMissingStream)
	}

	nums := make([]int, 0, len(sectionIdx))
	for n := range sectionIdx {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	sections := make([][]byte, len(nums))
	for i, n := range nums {
		sections[i] = sectionIdx[n]
	}

	binData := map[string][]byte{}
	extra := map[string][]byte{}
	for name, data := range streams {
		switch {
		case strings.HasPrefix(name, "BinData/"):
			binData[name] = data
		case name == "FileHeader" || name == "DocInfo" || strings.HasPrefix(name, "BodyText/Section"):
			// already captured above.
		default:
			extra[name] = data
		}
	}

	return &Container{
		FileHeader: fh,
		Compressed: compressed,
		DocInfo:    docInfo,
		Sections:   sections,
		BinData:    binData,
		Extra:      extra,
	}, nil
}

func maybeDecompress(data []byte, compressed bool) ([]byte, error) {
	if !compressed {
		return data, nil
	}
	out, err := rawdeflate.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStreamTruncated, err)
	}

	return out, nil
}

func maybeCompress(data []byte, compressed bool) ([]byte, error) {
	if !compressed {
		return data, nil
	}

	return rawdeflate.Compress(data)
}

// Serialize re-encodes the container back into compound-file bytes,
// recompressing DocInfo/section streams if the compression flag is set.
func (c *Container) Serialize() ([]byte, error) {
	var entries []cfb.Entry
	entries = append(entries, cfb.Entry{Name: "FileHeader", Data: c.FileHeader})

	docInfoOut, err := maybeCompress(c.DocInfo, c.Compressed)
	if err != nil {
		return nil, err
	}
	entries = append(entries, cfb.Entry{Name: "DocInfo", Data: docInfoOut})

	for i, sec := range c.Sections {
		out, err := maybeCompress(sec, c.Compressed)
		if err != nil {
			return nil, err
		}
		entries = append(entries, cfb.Entry{Name: fmt.Sprintf("BodyText/Section%d", i), Data: out})
	}

	names := make([]string, 0, len(c.BinData))
	for name := range c.BinData {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		entries = append(entries, cfb.Entry{Name: name, Data: c.BinData[name]})
	}

	extraNames := make([]string, 0, len(c.Extra))
	for name := range c.Extra {
		extraNames = append(extraNames, name)
	}
	sort.Strings(extraNames)
	for _, name := range extraNames {
		entries = append(entries, cfb.Entry{Name: name, Data: c.Extra[name]})
	}

	return cfb.Write(entries), nil
}
