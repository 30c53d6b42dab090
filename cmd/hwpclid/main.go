// Command hwpclid is the per-document daemon process (§4.9): it loads one
// document into a holder.Holder, serves the loopback wire protocol until
// idle or SIGTERM, and owns the document file exclusively while alive.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gohwp/hwp/daemon"
	"github.com/gohwp/hwp/holder"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: hwpclid <document-path>")
		os.Exit(2)
	}
	docPath := os.Args[1]

	if err := run(docPath); err != nil {
		log.Printf("hwpclid: %v", err)
		os.Exit(1)
	}
}

func run(docPath string) error {
	canon, err := filepath.EvalSymlinks(docPath)
	if err != nil {
		canon, err = filepath.Abs(docPath)
		if err != nil {
			return err
		}
	}

	h, err := holder.Load(canon)
	if err != nil {
		return err
	}

	statePath := daemon.StatePath(canon)
	srv, err := daemon.NewServer(h, canon, statePath)
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve() }()

	select {
	case <-srv.IdleTimeout():
		return shutdown(h, statePath)
	case <-sigCh:
		return shutdown(h, statePath)
	case err := <-serveErr:
		return err
	}
}

func shutdown(h *holder.Holder, statePath string) error {
	if h.IsDirty() {
		if err := h.Flush(); err != nil {
			log.Printf("hwpclid: flush on shutdown failed: %v", err)
		}
	}

	return daemon.RemoveState(statePath)
}
