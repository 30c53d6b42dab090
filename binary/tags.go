package binary

// Record tag ids, one per stream-level record type the reader/mutator/
// validator need to recognize. Values follow the tagged-record numbering
// convention: DocInfo records occupy the low range, section-stream records
// occupy a higher range, mirroring how the format groups per-stream record
// vocabularies.
const (
	tagIDMappings  uint16 = 0x10
	tagBinData     uint16 = 0x12
	tagFaceName    uint16 = 0x13
	tagCharShape   uint16 = 0x15
	tagParaShape   uint16 = 0x19
	tagStyle       uint16 = 0x1A

	tagParaHeader    uint16 = 0x42
	tagParaText      uint16 = 0x43
	tagParaCharShape uint16 = 0x44
	tagParaLineSeg   uint16 = 0x45
	tagCtrlHeader    uint16 = 0x47
	tagListHeader    uint16 = 0x48
	tagTable         uint16 = 0x50
	tagShapeComponent        uint16 = 0x51
	tagShapeComponentPicture uint16 = 0x52
)

// Control identifiers: 4 ASCII bytes stored reversed in the first 4 bytes
// of a CTRL_HEADER/SHAPE_COMPONENT payload.
const (
	ctrlIDTable      = "tbl "
	ctrlIDGSO        = "gso "
	ctrlIDShapeRect  = "$rec"
	ctrlIDShapePic   = "$pic"
	ctrlIDSectionDef = "secd"
	ctrlIDFootnote   = "fn  "
	ctrlIDEndnote    = "en  "
	ctrlIDField      = "%fld"
)

// idMappingsCharShapeCountOffset is the byte offset of the char-shape
// count field within an ID_MAPPINGS payload (field index 9, per spec §3).
const idMappingsCharShapeCountOffset = 36

// Minimum record sizes enforced by the mutator when building new table
// subtrees (§4.4) and checked by the validator's table-structure layer
// (§4.5 layer 8).
const (
	minCtrlHeaderTableSize = 44
	minTableSize           = 34
	minListHeaderSize      = 46
)

// CharShape payload layout (56-byte canonical form, per the Open Question
// resolution recorded in SPEC_FULL.md §10).
const (
	charShapeMinSize       = 56
	charShapeFontRefOffset = 0
	charShapeHeightOffset  = 42
	charShapeAttrOffset    = 46
	charShapeColorOffset   = 52

	charShapeAttrBoldBit      = 0
	charShapeAttrItalicBit    = 1
	charShapeAttrUnderlineLo  = 2 // bits 2..3
)

// ParaHeader payload layout (§3).
const (
	paraHeaderMinSize        = 12
	paraHeaderSize           = 24
	paraHeaderNCharsOffset   = 0
	paraHeaderLastParaBit    = 31
	paraHeaderControlMaskOff = 4
	paraHeaderParaShapeOff   = 8
	paraHeaderStyleOff       = 10
	paraHeaderNLineSegsOff   = 16
)

// Table payload layout.
const (
	tableRowsOffset = 4
	tableColsOffset = 6
)

// BinData record payload layout: a 2-byte id followed by a length-prefixed
// UTF-16LE extension name (see internal/textcodec.DecodeName).
const (
	binDataIDOffset   = 0
	binDataNameOffset = 2
)

// ParaShape payload layout: 1 byte alignment code, 1 byte heading level
// (0 = not a heading).
const (
	paraShapeAlignmentOffset = 0
	paraShapeHeadingOffset   = 1
	paraShapeMinSize         = 2
)

// Style payload layout: length-prefixed UTF-16LE name, then char-shape ref
// (u16) and para-shape ref (u16).
const styleMinTrailerSize = 4

// ShapeComponent (picture) payload layout.
const (
	shapeComponentWidthOffset  = 20
	shapeComponentHeightOffset = 24
	shapeComponentBinDataIDAt  = 4*17 + 3
)
