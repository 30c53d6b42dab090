package binary

import (
	"encoding/binary"

	"github.com/gohwp/hwp/internal/cfb"
	"github.com/gohwp/hwp/internal/recstream"
	"github.com/gohwp/hwp/internal/textcodec"
)

// buildDocInfo assembles a minimal but structurally complete DocInfo
// stream: one font, one char shape, one para shape, one style, and an
// ID_MAPPINGS record whose declared char-shape count matches.
func buildDocInfo() []byte {
	var out []byte

	out = append(out, recstream.Build(tagFaceName, 0, textcodec.EncodeName("Batang"))...)

	cs := make([]byte, charShapeMinSize)
	binary.LittleEndian.PutUint16(cs[charShapeFontRefOffset:], 0)
	binary.LittleEndian.PutUint32(cs[charShapeHeightOffset:], 1000) // 10pt
	out = append(out, recstream.Build(tagCharShape, 0, cs)...)

	ps := []byte{0, 0}
	out = append(out, recstream.Build(tagParaShape, 0, ps)...)

	style := append([]byte(nil), textcodec.EncodeName("Normal")...)
	style = append(style, 0, 0, 0, 0) // charShapeRef=0, paraShapeRef=0
	out = append(out, recstream.Build(tagStyle, 0, style)...)

	idm := make([]byte, idMappingsCharShapeCountOffset+4)
	binary.LittleEndian.PutUint32(idm[idMappingsCharShapeCountOffset:], 1)
	out = append(out, recstream.Build(tagIDMappings, 0, idm)...)

	return out
}

// buildParagraph encodes one complete top-level paragraph record group for
// text, always marked as the section's last paragraph.
func buildParagraph(text string) []byte {
	payload := textcodec.Encode(text, false)

	header := make([]byte, paraHeaderSize)
	binary.LittleEndian.PutUint32(header[paraHeaderNCharsOffset:], uint32(len(payload)/2)|(1<<paraHeaderLastParaBit))

	var out []byte
	out = append(out, recstream.Build(tagParaHeader, 0, header)...)
	out = append(out, recstream.Build(tagParaText, 1, payload)...)

	cs := make([]byte, 8)
	out = append(out, recstream.Build(tagParaCharShape, 1, cs)...)
	out = append(out, recstream.Build(tagParaLineSeg, 1, make([]byte, 36))...)

	return out
}

// buildSection wraps buildParagraph's output as a complete section stream.
func buildSection(text string) []byte {
	return buildParagraph(text)
}

// buildContainerBytes assembles FileHeader/DocInfo/BodyText-Section0 via
// internal/cfb, with an uncompressed, unencrypted FileHeader.
func buildContainerBytes(docInfo, section0 []byte) []byte {
	fh := make([]byte, fileHeaderSize)
	copy(fh, []byte(signature))

	return buildContainerBytesWithHeader(fh, docInfo, section0)
}

// buildUndersizedTable encodes a CTRL_HEADER 'tbl ' record whose payload is
// smaller than minCtrlHeaderTableSize, exercising the validator's table
// structure layer.
func buildUndersizedTable() []byte {
	ctrlPayload := make([]byte, minCtrlHeaderTableSize-4)
	idBytes := textcodec.EncodeControlID(ctrlIDTable)
	copy(ctrlPayload, idBytes[:])

	return recstream.Build(tagCtrlHeader, 0, ctrlPayload)
}

// buildContainerBytesWithHeader is buildContainerBytes with a caller-
// supplied FileHeader, and omits the BodyText/Section0 entry entirely when
// section0 is nil (to exercise the missing-stream path).
func buildContainerBytesWithHeader(fh, docInfo, section0 []byte) []byte {
	entries := []cfb.Entry{
		{Name: "FileHeader", Data: fh},
		{Name: "DocInfo", Data: docInfo},
	}
	if section0 != nil {
		entries = append(entries, cfb.Entry{Name: "BodyText/Section0", Data: section0})
	}

	return cfb.Write(entries)
}
