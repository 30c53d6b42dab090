package daemon

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrame_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte(`{"hello":"world"}`)))

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	require.Equal(t, `{"hello":"world"}`, string(got))
}

func TestReadFrame_OversizeIsProtocolError(t *testing.T) {
	var buf bytes.Buffer
	var lenBuf [4]byte
	oversize := uint32(MaxFrameSize + 1)
	lenBuf[0] = byte(oversize >> 24)
	lenBuf[1] = byte(oversize >> 16)
	lenBuf[2] = byte(oversize >> 8)
	lenBuf[3] = byte(oversize)
	buf.Write(lenBuf[:]) //nolint:errcheck

	_, err := ReadFrame(&buf)
	require.Error(t, err)
}

func TestRequestResponse_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	req := Request{Token: "tok", Command: "ping", Args: []byte(`{}`)}
	body, err := json.Marshal(req)
	require.NoError(t, err)
	require.NoError(t, WriteFrame(&buf, body))

	got, err := ReadRequest(&buf)
	require.NoError(t, err)
	require.Equal(t, "tok", got.Token)
	require.Equal(t, "ping", got.Command)

	var respBuf bytes.Buffer
	require.NoError(t, WriteResponse(&respBuf, Response{Success: true, Data: "ok"}))

	resp, err := ReadResponse(&respBuf)
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, "ok", resp.Data)
}
