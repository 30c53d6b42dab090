package ref

import (
	"testing"

	"github.com/gohwp/hwp/errs"
	"github.com/stretchr/testify/require"
)

func TestParse_Section(t *testing.T) {
	r, err := Parse("s0")
	require.NoError(t, err)
	require.Equal(t, 0, r.Section)
}

func TestParse_Paragraph(t *testing.T) {
	r, err := Parse("s2.p3")
	require.NoError(t, err)
	require.Equal(t, 2, r.Section)
	require.True(t, r.HasParagraph)
	require.Equal(t, 3, r.Paragraph)
}

func TestParse_TableCellParagraph(t *testing.T) {
	r, err := Parse("s0.t0.r1.c1.p0")
	require.NoError(t, err)
	require.True(t, r.HasTable)
	require.True(t, r.HasCell)
	require.Equal(t, 1, r.Row)
	require.Equal(t, 1, r.Col)
	require.True(t, r.HasCellParagraph)
	require.Equal(t, 0, r.CellParagraph)
}

func TestParse_TextBoxParagraph(t *testing.T) {
	r, err := Parse("s1.tb2.p4")
	require.NoError(t, err)
	require.True(t, r.HasTextBox)
	require.Equal(t, 2, r.TextBox)
	require.True(t, r.HasTextBoxParagraph)
	require.Equal(t, 4, r.TextBoxParagraph)
}

func TestParse_Image(t *testing.T) {
	r, err := Parse("s0.img5")
	require.NoError(t, err)
	require.True(t, r.HasImage)
	require.Equal(t, 5, r.Image)
}

func TestParse_RunSuffix(t *testing.T) {
	r, err := Parse("s0.p1.run2")
	require.NoError(t, err)
	require.True(t, r.HasParagraph)
	require.True(t, r.HasRun)
	require.Equal(t, 2, r.Run)
}

func TestParse_InvalidCompositions(t *testing.T) {
	cases := []string{
		"",
		"p0",
		"s0.p0.t0",
		"s0.x1",
		"s0.t0.r1",
		"s.p0",
		"s0.p",
	}

	for _, c := range cases {
		_, err := Parse(c)
		require.ErrorIs(t, err, errs.ErrInvalidReference, "input %q", c)
	}
}

func TestBuild_RoundTrip(t *testing.T) {
	inputs := []string{
		"s0",
		"s2.p3",
		"s0.t0.r1.c1.p0",
		"s0.t0.r1.c1",
		"s1.tb2.p4",
		"s1.tb2",
		"s0.img5",
		"s0.p1.run2",
		"s0.run0",
	}

	for _, in := range inputs {
		parsed, err := Parse(in)
		require.NoError(t, err, in)
		require.Equal(t, in, Build(parsed), "round trip for %q", in)
	}
}
