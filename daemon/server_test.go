package daemon

import (
	"encoding/binary"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gohwp/hwp/holder"
	"github.com/gohwp/hwp/internal/cfb"
	"github.com/gohwp/hwp/internal/recstream"
	"github.com/gohwp/hwp/internal/textcodec"
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

func startTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	docPath := filepath.Join(t.TempDir(), "doc.hwp")
	writeBinaryFixture(t, docPath, "Hello")

	h, err := holder.Load(docPath)
	require.NoError(t, err)

	statePath := filepath.Join(t.TempDir(), "state.json")
	srv, err := NewServer(h, docPath, statePath)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go srv.executorLoop()
	srv.armIdle()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go srv.handleConn(conn)
		}
	}()
	t.Cleanup(func() { ln.Close() }) //nolint:errcheck

	return srv, ln.Addr().String()
}

func sendTestRequest(t *testing.T, addr, token, command string, args any) Response {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close() //nolint:errcheck

	argBytes, err := json.Marshal(args)
	require.NoError(t, err)

	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	body, err := json.Marshal(Request{Token: token, Command: command, Args: argBytes})
	require.NoError(t, err)
	require.NoError(t, WriteFrame(conn, body))

	resp, err := ReadResponse(conn)
	require.NoError(t, err)

	return resp
}

func TestServer_Ping(t *testing.T) {
	srv, addr := startTestServer(t)

	resp := sendTestRequest(t, addr, srv.Token(), "ping", map[string]any{})
	require.True(t, resp.Success)
}

func TestServer_WrongTokenUnauthorized(t *testing.T) {
	_, addr := startTestServer(t)

	resp := sendTestRequest(t, addr, "wrong-token", "ping", map[string]any{})
	require.False(t, resp.Success)
	require.Equal(t, "Unauthorized: invalid token", resp.Error)
}

func TestServer_EditTextThenRead(t *testing.T) {
	srv, addr := startTestServer(t)

	edit := sendTestRequest(t, addr, srv.Token(), "edit-text", map[string]any{"ref": "s0.p0", "text": "Goodbye"})
	require.True(t, edit.Success)

	txt := sendTestRequest(t, addr, srv.Token(), "text", map[string]any{})
	require.True(t, txt.Success)
	arr, ok := txt.Data.([]any)
	require.True(t, ok)
	require.Equal(t, "Goodbye", arr[0])
}

func TestServer_Validate(t *testing.T) {
	srv, addr := startTestServer(t)

	resp := sendTestRequest(t, addr, srv.Token(), "validate", map[string]any{})
	require.True(t, resp.Success)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	require.Equal(t, true, data["valid"])
}

func TestServer_UnknownCommand(t *testing.T) {
	srv, addr := startTestServer(t)

	resp := sendTestRequest(t, addr, srv.Token(), "bogus", map[string]any{})
	require.False(t, resp.Success)
}
