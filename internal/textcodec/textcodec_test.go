package textcodec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecode_PlainText(t *testing.T) {
	payload := Encode("Hello World", false)

	parsed, err := Decode(payload)
	require.NoError(t, err)
	require.Equal(t, "Hello World", parsed.Text)
	require.Equal(t, 11, parsed.VisibleLen())
	require.Equal(t, 11, parsed.CodeUnitLen)
}

func TestDecode_PreservesTrailingCR(t *testing.T) {
	payload := Encode("Hello", true)

	require.True(t, HasTrailingCR(payload))

	parsed, err := Decode(payload)
	require.NoError(t, err)
	require.Equal(t, "Hello\r", parsed.Text)
}

func TestDecode_SkipsInlineControlPayload(t *testing.T) {
	// A control marker (code unit 0x01, not tab/LF/CR) is followed by 7
	// code units of inline control payload that must not appear as text.
	var raw []uint16
	raw = append(raw, []uint16("AB")[0], []uint16("AB")[1])
	raw = append(raw, 0x01) // control marker
	raw = append(raw, 0, 0, 0, 0, 0, 0, 0) // 7 skipped code units
	raw = append(raw, []uint16("CD")[0], []uint16("CD")[1])

	payload := make([]byte, len(raw)*2)
	for i, u := range raw {
		payload[2*i] = byte(u)
		payload[2*i+1] = byte(u >> 8)
	}

	parsed, err := Decode(payload)
	require.NoError(t, err)
	require.Equal(t, "ABCD", parsed.Text)
	require.Equal(t, len(raw), parsed.CodeUnitLen)
}

func TestCodeUnitOffset(t *testing.T) {
	payload := Encode("Hello World", false)
	parsed, err := Decode(payload)
	require.NoError(t, err)

	off, err := parsed.CodeUnitOffset(0)
	require.NoError(t, err)
	require.Equal(t, 0, off)

	off, err = parsed.CodeUnitOffset(6) // "W" of World
	require.NoError(t, err)
	require.Equal(t, 6, off)

	off, err = parsed.CodeUnitOffset(parsed.VisibleLen())
	require.NoError(t, err)
	require.Equal(t, 11, off)

	_, err = parsed.CodeUnitOffset(-1)
	require.Error(t, err)

	_, err = parsed.CodeUnitOffset(100)
	require.Error(t, err)
}

func TestControlID_RoundTrip(t *testing.T) {
	for _, id := range []string{"tbl ", "gso ", "$rec", "secd"} {
		wire := EncodeControlID(id)
		decoded, err := DecodeControlID(wire[:])
		require.NoError(t, err)
		require.Equal(t, id, decoded)
	}
}

func TestName_RoundTrip(t *testing.T) {
	wire := EncodeName("함초롬바탕")
	decoded, n, err := DecodeName(wire)
	require.NoError(t, err)
	require.Equal(t, len(wire), n)
	require.Equal(t, "함초롬바탕", decoded)
}

func TestDecodeName_Truncated(t *testing.T) {
	_, _, err := DecodeName([]byte{0x05, 0x00, 0x41})
	require.Error(t, err)
}
