package archive

import "encoding/xml"

// Namespace prefixes used throughout header.xml and section<n>.xml, fixed
// by the format (§3 archive-format on-disk model).
const (
	nsHP = "hp" // paragraphs
	nsHS = "hs" // sections
	nsHH = "hh" // head/references
)

func qn(space, local string) xml.Name { return xml.Name{Space: space, Local: local} }

// Header element/attribute names.
const (
	elFontfaces   = "fontfaces"
	elFontface    = "fontface"
	elCharProps   = "charProperties"
	elCharPr      = "charPr"
	elParaProps   = "paraProperties"
	elParaPr      = "paraPr"
	elHeading     = "heading"
	elStyles      = "styles"
	elStyle       = "style"

	attrID           = "id"
	attrName         = "name"
	attrFontRef      = "fontRef"
	attrHeight       = "height"
	attrFontBold     = "fontBold"
	attrFontItalic   = "fontItalic"
	attrUnderline    = "underline"
	attrColor        = "color"
	attrLevel        = "level"
	attrAlignment    = "alignment"
	attrCharPrIDRef  = "charPrIDRef"
	attrParaPrIDRef  = "paraPrIDRef"
)

// Section element/attribute names.
const (
	elP           = "p"
	elRun         = "run"
	elT           = "t"
	elTbl         = "tbl"
	elTr          = "tr"
	elTc          = "tc"
	elCellAddr    = "cellAddr"
	elCellSpan    = "cellSpan"
	elRect        = "rect"
	elDrawText    = "drawText"
	elSubList     = "subList"
	elPic         = "pic"

	attrStyleIDRef  = "styleIDRef"
	attrColAddr     = "colAddr"
	attrRowAddr     = "rowAddr"
	attrColSpan     = "colSpan"
	attrRowSpan     = "rowSpan"
	attrBinDataRef  = "binDataIDRef"
	attrWidth       = "width"
)
