package binary

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"github.com/gohwp/hwp/doc"
	"github.com/gohwp/hwp/errs"
	"github.com/gohwp/hwp/internal/recstream"
	"github.com/gohwp/hwp/internal/textcodec"
)

// binDataEntry is one resolved BinData table entry: the stream path under
// BinData/ and the lowercase format extension.
type binDataEntry struct {
	path   string
	format string
}

// docInfo is the parsed DocInfo stream: header tables plus the bin-data
// id map the section parser needs to resolve SHAPE_COMPONENT_PICTURE
// references.
type docInfo struct {
	header        doc.Header
	binDataByID   map[int]binDataEntry
	charShapeCount int // declared in ID_MAPPINGS
}

// parseDocInfo walks the DocInfo record stream, producing header tables in
// declaration order and the bin-data id map.
func parseDocInfo(stream []byte) (*docInfo, error) {
	records, truncated := recstream.Iterate(stream)
	if truncated {
		return nil, errs.ErrStreamTruncated
	}

	info := &docInfo{binDataByID: map[int]binDataEntry{}}
	nextBinDataID := 0

	for _, rec := range records {
		switch rec.Header.TagID {
		case tagFaceName:
			name, _, err := textcodec.DecodeName(rec.Payload)
			if err != nil {
				continue
			}
			info.header.Fonts = append(info.header.Fonts, doc.Font{Name: name})

		case tagCharShape:
			cs, ok := parseCharShape(rec.Payload)
			if ok {
				info.header.CharShapes = append(info.header.CharShapes, cs)
			}

		case tagParaShape:
			if len(rec.Payload) < paraShapeMinSize {
				continue
			}
			ps := doc.ParaShape{
				Alignment:    doc.Alignment(rec.Payload[paraShapeAlignmentOffset]),
				HeadingLevel: int(rec.Payload[paraShapeHeadingOffset]),
			}
			info.header.ParaShapes = append(info.header.ParaShapes, ps)

		case tagStyle:
			name, n, err := textcodec.DecodeName(rec.Payload)
			if err != nil {
				continue
			}
			rest := rec.Payload[n:]
			if len(rest) < styleMinTrailerSize {
				continue
			}
			st := doc.Style{
				Name:      name,
				CharShape: int(binary.LittleEndian.Uint16(rest[0:2])),
				ParaShape: int(binary.LittleEndian.Uint16(rest[2:4])),
			}
			info.header.Styles = append(info.header.Styles, st)

		case tagBinData:
			if len(rec.Payload) < binDataNameOffset+2 {
				continue
			}
			id := int(binary.LittleEndian.Uint16(rec.Payload[binDataIDOffset:]))
			name, _, err := textcodec.DecodeName(rec.Payload[binDataNameOffset:])
			if err != nil {
				continue
			}
			ext := extensionOf(name)
			info.binDataByID[id] = binDataEntry{
				path:   fmt.Sprintf("BinData/BIN%04d.%s", id, ext),
				format: strings.ToLower(ext),
			}
			if id >= nextBinDataID {
				nextBinDataID = id + 1
			}

		case tagIDMappings:
			if len(rec.Payload) >= idMappingsCharShapeCountOffset+4 {
				info.charShapeCount = int(binary.LittleEndian.Uint32(rec.Payload[idMappingsCharShapeCountOffset:]))
			}
		}
	}

	info.header.BinData = make([]doc.BinDataEntry, 0, len(info.binDataByID))
	for id, entry := range info.binDataByID {
		info.header.BinData = append(info.header.BinData, doc.BinDataEntry{
			ID:     id,
			Path:   entry.path,
			Format: entry.format,
		})
	}
	sort.Slice(info.header.BinData, func(i, j int) bool {
		return info.header.BinData[i].ID < info.header.BinData[j].ID
	})

	return info, nil
}

func extensionOf(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
	}

	return name
}

// parseCharShape decodes a CHAR_SHAPE record payload using the 56-byte
// canonical layout.
func parseCharShape(payload []byte) (doc.CharShape, bool) {
	if len(payload) < charShapeMinSize {
		return doc.CharShape{}, false
	}

	fontRef := int(binary.LittleEndian.Uint16(payload[charShapeFontRefOffset:]))
	heightHundredths := binary.LittleEndian.Uint32(payload[charShapeHeightOffset:])
	attrs := binary.LittleEndian.Uint32(payload[charShapeAttrOffset:])
	colorRaw := binary.LittleEndian.Uint32(payload[charShapeColorOffset:])

	return doc.CharShape{
		FontRef:        fontRef,
		FontSizePoints: float64(heightHundredths) / 100.0,
		Bold:           attrs&(1<<charShapeAttrBoldBit) != 0,
		Italic:         attrs&(1<<charShapeAttrItalicBit) != 0,
		Underline:      (attrs>>charShapeAttrUnderlineLo)&0x3 != 0,
		Color:          colorFromBBGGRR(colorRaw),
	}, true
}

// colorFromBBGGRR decodes the on-disk 0xBBGGRR little-endian color word.
func colorFromBBGGRR(v uint32) doc.Color {
	return doc.Color{
		R: uint8(v),
		G: uint8(v >> 8),
		B: uint8(v >> 16),
	}
}

// colorToBBGGRR encodes a color back to the on-disk word.
func colorToBBGGRR(c doc.Color) uint32 {
	return uint32(c.B)<<16 | uint32(c.G)<<8 | uint32(c.R)
}
