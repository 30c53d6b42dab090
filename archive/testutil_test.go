package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// buildHeaderXML assembles a minimal header.xml: one font, one char shape,
// one para shape, one style.
func buildHeaderXML() []byte {
	return []byte(`<hh:head xmlns:hh="hh"><hh:refList>` +
		`<hh:fontfaces><hh:fontface id="0" name="Batang"/></hh:fontfaces>` +
		`<hh:charProperties><hh:charPr id="0" fontRef="0" height="1000" fontBold="0" fontItalic="0" underline="0" color="0"/></hh:charProperties>` +
		`<hh:paraProperties><hh:paraPr id="0" alignment="left"/></hh:paraProperties>` +
		`<hh:styles><hh:style id="0" name="Normal" charPrIDRef="0" paraPrIDRef="0"/></hh:styles>` +
		`</hh:refList></hh:head>`)
}

// buildSectionXML assembles a single-paragraph hs:sec section part.
func buildSectionXML(text string) []byte {
	return []byte(fmt.Sprintf(
		`<hs:sec xmlns:hs="hs" xmlns:hp="hp"><hp:p paraPrIDRef="0" styleIDRef="0">`+
			`<hp:run charPrIDRef="0"><hp:t>%s</hp:t></hp:run></hp:p></hs:sec>`, text))
}

// buildArchiveBytes assembles a minimal valid archive ZIP from header and
// section0 XML bytes, plus the other required-but-unused-by-the-reader
// parts so Container.Serialize round-trips them byte-identical.
func buildArchiveBytes(headerXML, section0XML []byte) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	write := func(name string, data []byte) {
		w, _ := zw.Create(name)
		w.Write(data) //nolint:errcheck
	}

	write(partVersion, []byte(`<hv:version xmlns:hv="hv"/>`))
	write(partManifest, []byte(`<manifest/>`))
	write(partContentHPF, []byte(`<opf:package xmlns:opf="opf"/>`))
	write(partHeader, headerXML)
	write(sectionPartName(0), section0XML)

	zw.Close() //nolint:errcheck

	return buf.Bytes()
}

// buildArchiveBytesNoHeader omits Contents/header.xml entirely, to exercise
// the missing-required-part path.
func buildArchiveBytesNoHeader(section0XML []byte) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, _ := zw.Create(sectionPartName(0))
	w.Write(section0XML) //nolint:errcheck

	zw.Close() //nolint:errcheck

	return buf.Bytes()
}

// buildArchiveBytesNoSection0 omits Contents/section0.xml entirely.
func buildArchiveBytesNoSection0(headerXML []byte) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, _ := zw.Create(partHeader)
	w.Write(headerXML) //nolint:errcheck

	zw.Close() //nolint:errcheck

	return buf.Bytes()
}
