// Package cfb reads and writes the compound-file binary container that
// wraps the binary-format document's named streams (FileHeader, DocInfo,
// BodyText/Section<n>, BinData/*).
//
// Reading wraps richardlehane/mscfb, the same OLE2 reader the document
// parsers in the retrieved corpus use for .doc/.ppt legacy formats. mscfb
// has no writer, so Write (writer.go) is a from-scratch encoder of the same
// container shape, grounded on the teacher's own hand-rolled binary
// serialization idiom (fixed-size header struct + Bytes()).
package cfb

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/richardlehane/mscfb"
)

// Stream is one named stream read out of a container, with its storage
// path components joined by "/" (e.g. "BodyText/Section0").
type Stream struct {
	Name string
	Data []byte
}

// Read parses a compound-file container and returns every stream it
// contains, keyed by full path.
func Read(data []byte) (map[string][]byte, error) {
	r, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("cfb: %w", err)
	}

	streams := make(map[string][]byte)

	for {
		entry, err := r.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			break
		}
		if entry == nil {
			break
		}

		full := entry.Name
		if len(entry.Path) > 0 {
			full = strings.Join(entry.Path, "/") + "/" + entry.Name
		}

		buf, err := io.ReadAll(entry)
		if err != nil {
			return nil, fmt.Errorf("cfb: reading stream %q: %w", full, err)
		}

		streams[full] = buf
	}

	return streams, nil
}
