// Package daemon implements the one-daemon-per-document transport (§4.9,
// §6): length-prefixed JSON framing over loopback TCP, the discovery state
// file, the client launch/retry logic, and the single-threaded cooperative
// command executor wrapping a holder.Holder.
package daemon

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gohwp/hwp/errs"
)

// MaxFrameSize is the largest frame body the wire protocol accepts (§6.2).
const MaxFrameSize = 64 * 1024 * 1024

// Request is the envelope a client sends: token, command name, and
// command-specific arguments.
type Request struct {
	Token   string          `json:"token"`
	Command string          `json:"command"`
	Args    json.RawMessage `json:"args"`
}

// Response is the envelope a daemon sends back.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Context any    `json:"context,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

// ReadFrame reads one big-endian-length-prefixed JSON body from r. A
// declared length exceeding MaxFrameSize is a protocol error; the caller
// is expected to close the connection on it (§6.2: "oversize is a
// protocol error, close connection").
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}

	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > MaxFrameSize {
		return nil, fmt.Errorf("%w: %w: frame of %d bytes exceeds %d byte maximum", errs.ErrProtocol, errs.ErrFrameTooLarge, n, MaxFrameSize)
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}

	return body, nil
}

// WriteFrame writes body as one big-endian-length-prefixed frame.
func WriteFrame(w io.Writer, body []byte) error {
	if len(body) > MaxFrameSize {
		return fmt.Errorf("%w: %w: frame of %d bytes exceeds %d byte maximum", errs.ErrProtocol, errs.ErrFrameTooLarge, len(body), MaxFrameSize)
	}

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(body)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(body)

	return err
}

// ReadRequest reads and decodes one Request frame.
func ReadRequest(r io.Reader) (Request, error) {
	body, err := ReadFrame(r)
	if err != nil {
		return Request{}, err
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return Request{}, fmt.Errorf("%w: malformed request body: %v", errs.ErrProtocol, err)
	}

	return req, nil
}

// WriteResponse encodes and writes one Response frame.
func WriteResponse(w io.Writer, resp Response) error {
	body, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("%w: encoding response: %v", errs.ErrProtocol, err)
	}

	return WriteFrame(w, body)
}

// ReadResponse reads and decodes one Response frame.
func ReadResponse(r io.Reader) (Response, error) {
	body, err := ReadFrame(r)
	if err != nil {
		return Response{}, err
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return Response{}, fmt.Errorf("%w: malformed response body: %v", errs.ErrProtocol, err)
	}

	return resp, nil
}
