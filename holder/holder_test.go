package holder

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gohwp/hwp/internal/cfb"
	"github.com/gohwp/hwp/internal/recstream"
	"github.com/gohwp/hwp/internal/textcodec"
	"github.com/gohwp/hwp/ops"
)

func writeBinaryFixture(t *testing.T, path, text string) {
	t.Helper()

	var docInfo []byte
	docInfo = append(docInfo, recstream.Build(0x13, 0, textcodec.EncodeName("Batang"))...)

	cs := make([]byte, 56)
	binary.LittleEndian.PutUint32(cs[42:], 1000)
	docInfo = append(docInfo, recstream.Build(0x15, 0, cs)...)
	docInfo = append(docInfo, recstream.Build(0x19, 0, []byte{0, 0})...)

	style := append([]byte(nil), textcodec.EncodeName("Normal")...)
	style = append(style, 0, 0, 0, 0)
	docInfo = append(docInfo, recstream.Build(0x1A, 0, style)...)

	idm := make([]byte, 40)
	binary.LittleEndian.PutUint32(idm[36:], 1)
	docInfo = append(docInfo, recstream.Build(0x10, 0, idm)...)

	payload := textcodec.Encode(text, false)
	header := make([]byte, 24)
	binary.LittleEndian.PutUint32(header[0:], uint32(len(payload)/2)|(1<<31))

	var section0 []byte
	section0 = append(section0, recstream.Build(0x42, 0, header)...)
	section0 = append(section0, recstream.Build(0x43, 1, payload)...)
	section0 = append(section0, recstream.Build(0x44, 1, make([]byte, 8))...)
	section0 = append(section0, recstream.Build(0x45, 1, make([]byte, 36))...)

	fh := make([]byte, 256)
	copy(fh, []byte("HWP Document File"))

	raw := cfb.Write([]cfb.Entry{
		{Name: "FileHeader", Data: fh},
		{Name: "DocInfo", Data: docInfo},
		{Name: "BodyText/Section0", Data: section0},
	})

	require.NoError(t, os.WriteFile(path, raw, 0o644))
}

func writeArchiveFixture(t *testing.T, path, text string) {
	t.Helper()

	headerXML := []byte(`<hh:head xmlns:hh="hh"><hh:refList>` +
		`<hh:fontfaces><hh:fontface id="0" name="Batang"/></hh:fontfaces>` +
		`<hh:charProperties><hh:charPr id="0" fontRef="0" height="1000" fontBold="0" fontItalic="0" underline="0" color="0"/></hh:charProperties>` +
		`<hh:paraProperties><hh:paraPr id="0" alignment="left"/></hh:paraProperties>` +
		`<hh:styles><hh:style id="0" name="Normal" charPrIDRef="0" paraPrIDRef="0"/></hh:styles>` +
		`</hh:refList></hh:head>`)
	sectionXML := []byte(`<hs:sec xmlns:hs="hs" xmlns:hp="hp"><hp:p paraPrIDRef="0" styleIDRef="0">` +
		`<hp:run charPrIDRef="0"><hp:t>` + text + `</hp:t></hp:run></hp:p></hs:sec>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("Contents/header.xml")
	w.Write(headerXML) //nolint:errcheck
	w, _ = zw.Create("Contents/section0.xml")
	w.Write(sectionXML) //nolint:errcheck
	zw.Close() //nolint:errcheck

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestLoad_BinaryDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.hwp")
	writeBinaryFixture(t, path, "Hello")

	h, err := Load(path)
	require.NoError(t, err)

	secs, err := h.GetSections()
	require.NoError(t, err)
	require.Equal(t, "Hello", secs[0].Paragraphs[0].Text())
	require.False(t, h.IsDirty())
}

func TestLoad_ArchiveDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.hwpx")
	writeArchiveFixture(t, path, "Hello")

	h, err := Load(path)
	require.NoError(t, err)

	secs, err := h.GetSections()
	require.NoError(t, err)
	require.Equal(t, "Hello", secs[0].Paragraphs[0].Text())
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.hwp"))
	require.Error(t, err)
}

func TestApplyOperations_MarksDirtyAndInvalidatesCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.hwp")
	writeBinaryFixture(t, path, "Hello")

	h, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, h.ApplyOperations([]ops.Operation{
		{Kind: ops.SetText, Ref: "s0.p0", Text: "Goodbye"},
	}))
	require.True(t, h.IsDirty())

	secs, err := h.GetSections()
	require.NoError(t, err)
	require.Equal(t, "Goodbye", secs[0].Paragraphs[0].Text())
}

func TestFlush_BinaryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.hwp")
	writeBinaryFixture(t, path, "Hello")

	h, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, h.ApplyOperations([]ops.Operation{
		{Kind: ops.SetText, Ref: "s0.p0", Text: "Goodbye"},
	}))
	require.NoError(t, h.Flush())
	require.False(t, h.IsDirty())

	h2, err := Load(path)
	require.NoError(t, err)
	secs, err := h2.GetSections()
	require.NoError(t, err)
	require.Equal(t, "Goodbye", secs[0].Paragraphs[0].Text())
}

func TestFlush_NotDirtyIsNoOp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.hwp")
	writeBinaryFixture(t, path, "Hello")

	h, err := Load(path)
	require.NoError(t, err)
	before, err := os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, h.Flush())

	after, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, before.ModTime(), after.ModTime())
}

func TestCheckFileChanged_ExternalReplaceReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.hwp")
	writeBinaryFixture(t, path, "Hello")

	h, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, h.ApplyOperations([]ops.Operation{
		{Kind: ops.SetText, Ref: "s0.p0", Text: "Unsaved"},
	}))

	writeBinaryFixture(t, path, "ReplacedExternally")

	secs, err := h.GetSections()
	require.NoError(t, err)
	require.Equal(t, "ReplacedExternally", secs[0].Paragraphs[0].Text())
	require.False(t, h.IsDirty())
}

func TestValidate_BinaryRunsPipeline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.hwp")
	writeBinaryFixture(t, path, "Hello")

	h, err := Load(path)
	require.NoError(t, err)

	report, err := h.Validate()
	require.NoError(t, err)
	require.True(t, report.Valid)
}

func TestValidate_ArchiveShortCircuitsToPass(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.hwpx")
	writeArchiveFixture(t, path, "Hello")

	h, err := Load(path)
	require.NoError(t, err)

	report, err := h.Validate()
	require.NoError(t, err)
	require.True(t, report.Valid)
	require.Empty(t, report.Checks)
}

func TestCheckFileChanged_MissingFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.hwp")
	writeBinaryFixture(t, path, "Hello")

	h, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	_, err = h.GetSections()
	require.Error(t, err)
}
