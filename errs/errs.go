// Package errs defines the sentinel errors returned across the hwp module.
//
// Callers should compare with errors.Is against these values; call sites
// typically wrap them with fmt.Errorf("...: %w", err) to attach context
// before returning.
package errs

import "errors"

// Format / container errors.
var (
	// ErrInvalidFormat is returned when a buffer fails a structural or
	// signature check for either the binary container or the archive ZIP.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrPasswordProtected is returned when the binary container's flags
	// byte has the encryption bit set.
	ErrPasswordProtected = errors.New("document is password protected")

	// ErrStreamTruncated is returned when a record-stream's declared size
	// runs past the bytes actually available.
	ErrStreamTruncated = errors.New("stream truncated")

	// ErrInvalidHeaderSize is returned when a fixed-size header section is
	// not exactly its declared size.
	ErrInvalidHeaderSize = errors.New("invalid header size")

	// ErrMissingStream is returned when a required named stream (DocInfo,
	// BodyText/Section0, ...) is absent from the container.
	ErrMissingStream = errors.New("missing required stream")
)

// Reference errors.
var (
	// ErrInvalidReference is returned when a reference string violates the
	// dotted-path grammar.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrRefNotFound is returned when a well-formed reference addresses an
	// entity that does not exist in the document.
	ErrRefNotFound = errors.New("reference not found")
)

// Mutation errors.
var (
	// ErrRangeOutOfBounds is returned when a (start, end) inline-format
	// range falls outside the paragraph's visible text length.
	ErrRangeOutOfBounds = errors.New("range out of bounds")

	// ErrInvalidColor is returned when a color value cannot be parsed or is
	// out of the 24-bit RGB range.
	ErrInvalidColor = errors.New("invalid color")

	// ErrMalformedTable is returned when a TABLE or LIST_HEADER record is
	// too short to satisfy the minimum sizes required by the format.
	ErrMalformedTable = errors.New("malformed table record")
)

// Validation errors.
var (
	// ErrValidationFailed is returned by the holder's flush path when one
	// or more validator checks fail.
	ErrValidationFailed = errors.New("validation failed")
)

// Holder / filesystem errors.
var (
	// ErrFileMissing is returned when the holder's change-detection stat
	// call finds the target file gone.
	ErrFileMissing = errors.New("file missing")

	// ErrIO wraps read/write/rename failures that are not more specifically
	// typed above.
	ErrIO = errors.New("i/o error")
)

// Daemon / transport errors.
var (
	// ErrUnauthorized describes a request whose token does not match the
	// daemon's token. The daemon server does not return it; it answers such
	// a request with a failed Response whose error is "Unauthorized: invalid
	// token".
	ErrUnauthorized = errors.New("unauthorized: invalid token")

	// ErrTimeout is returned when a client's response wait exceeds the
	// response timeout.
	ErrTimeout = errors.New("timeout")

	// ErrProtocol is returned on framing violations: oversize frame or
	// malformed JSON body.
	ErrProtocol = errors.New("protocol error")

	// ErrFrameTooLarge is returned when a frame's declared length exceeds
	// the maximum frame size.
	ErrFrameTooLarge = errors.New("frame exceeds maximum size")

	// ErrDaemonUnreachable is returned when the client cannot reach a
	// daemon after its single retry.
	ErrDaemonUnreachable = errors.New("daemon unreachable")
)
