package daemon

import (
	"encoding/json"
	"os"

	"github.com/gohwp/hwp/holder"
)

// NoDaemonRequested reports whether HWPCLI_NO_DAEMON forces direct
// in-process execution, bypassing the daemon entirely (§6.5).
func NoDaemonRequested() bool {
	return os.Getenv("HWPCLI_NO_DAEMON") == "1"
}

// SendInProcess runs one command directly against docPath with no daemon
// involved at all: load, dispatch, flush if dirty, done. Each call pays the
// full parse cost since no process survives between calls to amortize it
// over (§6.5's whole point is skipping the daemon, not replicating its
// caching).
func SendInProcess(docPath, command string, args []byte) (Response, error) {
	h, err := holder.Load(docPath)
	if err != nil {
		return Response{}, err
	}

	data, err := dispatch(h, command, json.RawMessage(args))
	if err != nil {
		return errorResponse(err), nil
	}

	if h.IsDirty() {
		if err := h.Flush(); err != nil {
			return Response{}, err
		}
	}

	return Response{Success: true, Data: data}, nil
}
