package binary

import (
	"testing"

	"github.com/gohwp/hwp/doc"
	"github.com/stretchr/testify/require"
)

func newTestContainer(t *testing.T) *Container {
	t.Helper()
	raw := buildContainerBytes(buildDocInfo(), buildSection("Hello"))
	c, err := ParseContainer(raw)
	require.NoError(t, err)

	return c
}

func TestMutator_SetParagraphText(t *testing.T) {
	c := newTestContainer(t)
	m := NewMutator(c)

	require.NoError(t, m.SetParagraphText(0, 0, "Goodbye"))

	d, err := Parse(mustSerialize(t, c))
	require.NoError(t, err)
	require.Equal(t, "Goodbye", d.Sections[0].Paragraphs[0].Text())
}

func TestMutator_SetParagraphText_NotFound(t *testing.T) {
	c := newTestContainer(t)
	m := NewMutator(c)

	err := m.SetParagraphText(0, 5, "x")
	require.Error(t, err)
}

func TestMutator_AddParagraph_End(t *testing.T) {
	c := newTestContainer(t)
	m := NewMutator(c)

	require.NoError(t, m.AddParagraph(0, nil, "Second paragraph", PositionEnd, nil))

	d, err := Parse(mustSerialize(t, c))
	require.NoError(t, err)
	require.Len(t, d.Sections[0].Paragraphs, 2)
	require.Equal(t, "Hello", d.Sections[0].Paragraphs[0].Text())
	require.Equal(t, "Second paragraph", d.Sections[0].Paragraphs[1].Text())
}

func TestMutator_AddParagraph_Before(t *testing.T) {
	c := newTestContainer(t)
	m := NewMutator(c)
	anchor := 0

	require.NoError(t, m.AddParagraph(0, &anchor, "Leading paragraph", PositionBefore, nil))

	d, err := Parse(mustSerialize(t, c))
	require.NoError(t, err)
	require.Len(t, d.Sections[0].Paragraphs, 2)
	require.Equal(t, "Leading paragraph", d.Sections[0].Paragraphs[0].Text())
	require.Equal(t, "Hello", d.Sections[0].Paragraphs[1].Text())
}

func TestMutator_AddTable(t *testing.T) {
	c := newTestContainer(t)
	m := NewMutator(c)

	require.NoError(t, m.AddTable(0, 1, 2, [][]string{{"x", "y"}}))

	d, err := Parse(mustSerialize(t, c))
	require.NoError(t, err)
	require.Len(t, d.Sections[0].Tables, 1)
	require.Equal(t, "x", d.Sections[0].Tables[0].Cells[0].Paragraphs[0].Text())
}

func TestMutator_SetFormat_WholeParagraph(t *testing.T) {
	c := newTestContainer(t)
	m := NewMutator(c)

	bold := true
	require.NoError(t, m.SetFormat(0, 0, CharFormat{Bold: &bold}, nil))

	d, err := Parse(mustSerialize(t, c))
	require.NoError(t, err)
	require.Len(t, d.Header.CharShapes, 2)

	run := d.Sections[0].Paragraphs[0].Runs[0]
	require.True(t, d.Header.CharShapes[run.CharShapeRef].Bold)
}

func TestMutator_SetFormat_Range(t *testing.T) {
	c := newTestContainer(t)
	m := NewMutator(c)

	color := doc.Color{R: 255}
	require.NoError(t, m.SetFormat(0, 0, CharFormat{Color: &color}, &Range{Start: 1, End: 3}))

	d, err := Parse(mustSerialize(t, c))
	require.NoError(t, err)

	runs := d.Sections[0].Paragraphs[0].Runs
	require.Len(t, runs, 3)
	require.Equal(t, "H", runs[0].Text)
	require.Equal(t, "el", runs[1].Text)
	require.Equal(t, "lo", runs[2].Text)
}

func TestMutator_SetFormat_FontName_AddsFace(t *testing.T) {
	c := newTestContainer(t)
	m := NewMutator(c)

	name := "Dotum"
	require.NoError(t, m.SetFormat(0, 0, CharFormat{FontName: &name}, nil))

	d, err := Parse(mustSerialize(t, c))
	require.NoError(t, err)
	require.Len(t, d.Header.Fonts, 2)
	require.Equal(t, "Batang", d.Header.Fonts[0].Name)
	require.Equal(t, "Dotum", d.Header.Fonts[1].Name)

	run := d.Sections[0].Paragraphs[0].Runs[0]
	require.Equal(t, 1, d.Header.CharShapes[run.CharShapeRef].FontRef)
}

func TestMutator_SetFormat_FontName_DedupsExistingFace(t *testing.T) {
	c := newTestContainer(t)
	m := NewMutator(c)

	existing := "Batang"
	require.NoError(t, m.SetFormat(0, 0, CharFormat{FontName: &existing}, nil))

	d, err := Parse(mustSerialize(t, c))
	require.NoError(t, err)
	require.Len(t, d.Header.Fonts, 1)

	run := d.Sections[0].Paragraphs[0].Runs[0]
	require.Equal(t, 0, d.Header.CharShapes[run.CharShapeRef].FontRef)
}

func TestMutator_ResolveOrAddFont_DedupsByName(t *testing.T) {
	docInfo := buildDocInfo()

	out1, ref1, err := resolveOrAddFont(docInfo, "Dotum")
	require.NoError(t, err)

	out2, ref2, err := resolveOrAddFont(out1, "Dotum")
	require.NoError(t, err)
	require.Equal(t, ref1, ref2)
	require.Equal(t, out1, out2)

	_, ref3, err := resolveOrAddFont(out2, "Gulim")
	require.NoError(t, err)
	require.NotEqual(t, ref1, ref3)

	_, refAgain, err := resolveOrAddFont(out2, "Batang")
	require.NoError(t, err)
	require.Equal(t, 0, refAgain)
}

func mustSerialize(t *testing.T, c *Container) []byte {
	t.Helper()
	out, err := c.Serialize()
	require.NoError(t, err)

	return out
}
