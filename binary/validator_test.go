package binary

import (
	"testing"

	"github.com/gohwp/hwp/format"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	raw := buildContainerBytes(buildDocInfo(), buildSection("Hello"))

	r := Validate(raw)
	require.True(t, r.Valid)
	require.Equal(t, format.Binary, r.FormatTag)

	for _, chk := range r.Checks {
		require.NotEqual(t, StatusFail, chk.Status, chk.Name)
	}
}

func TestValidate_BadSignature(t *testing.T) {
	fh := make([]byte, fileHeaderSize)
	copy(fh, []byte("BAD Signature File"))
	raw := buildContainerBytesWithHeader(fh, buildDocInfo(), buildSection("Hello"))

	r := Validate(raw)
	require.False(t, r.Valid)
	require.Len(t, r.Checks, 1)
	require.Equal(t, StatusFail, r.Checks[0].Status)
}

func TestValidate_ContentCompletenessBelowGuard(t *testing.T) {
	raw := buildContainerBytes(buildDocInfo(), buildSection("Hello"))

	r := Validate(raw)
	require.True(t, r.Valid)

	found := false
	for _, chk := range r.Checks {
		if chk.Name == "content_completeness" {
			found = true
			require.Equal(t, StatusPass, chk.Status)
		}
	}
	require.True(t, found)
}

func TestValidate_TableStructure_TooSmall(t *testing.T) {
	section := append(buildSection("Intro"), buildUndersizedTable()...)
	raw := buildContainerBytes(buildDocInfo(), section)

	r := Validate(raw)
	require.False(t, r.Valid)

	var failed bool
	for _, chk := range r.Checks {
		if chk.Status == StatusFail {
			failed = true
		}
	}
	require.True(t, failed)
}
