package archive

import (
	"testing"

	"github.com/gohwp/hwp/doc"
	"github.com/stretchr/testify/require"
)

func newTestContainer(t *testing.T) *Container {
	t.Helper()
	raw := buildArchiveBytes(buildHeaderXML(), buildSectionXML("Hello"))
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

	require.Error(t, m.SetParagraphText(0, 5, "x"))
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

func TestMutator_ResolveOrAddFont_DedupsByName(t *testing.T) {
	c := newTestContainer(t)
	m := NewMutator(c)

	name := "Dotum"
	first := m.resolveOrAddFont(name)
	second := m.resolveOrAddFont(name)
	require.Equal(t, first, second)

	third := m.resolveOrAddFont("Gulim")
	require.NotEqual(t, first, third)

	// Re-requesting the first name again still resolves to its original id,
	// even after a different name was inserted in between.
	require.Equal(t, first, m.resolveOrAddFont(name))
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

func TestMutator_UntouchedPartsByteIdentical(t *testing.T) {
	raw := buildArchiveBytes(buildHeaderXML(), buildSectionXML("Hello"))
	c, err := ParseContainer(raw)
	require.NoError(t, err)

	original := append([]byte(nil), c.Parts[partVersion]...)

	m := NewMutator(c)
	require.NoError(t, m.SetParagraphText(0, 0, "Changed"))

	out, err := c.Serialize()
	require.NoError(t, err)

	c2, err := ParseContainer(out)
	require.NoError(t, err)
	require.Equal(t, original, c2.Parts[partVersion])
}

func mustSerialize(t *testing.T, c *Container) []byte {
	t.Helper()
	out, err := c.Serialize()
	require.NoError(t, err)

	return out
}
