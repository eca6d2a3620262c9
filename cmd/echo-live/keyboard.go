package main

import (
	"io"
	"os"

	"golang.org/x/term"

	"github.com/justyntemme/goecho/pkg/framework/debug"
)

// rawTerminal puts stdin into raw mode when it is a terminal. The returned
// function restores the previous mode.
func rawTerminal(log *debug.Logger) func() {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return func() {}
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		log.Warn("raw terminal: %v", err)
		return func() {}
	}
	return func() { term.Restore(fd, old) }
}

// readKeys forwards every byte read from r as a key input. It returns when
// r fails; a blocked read on stdin cannot be interrupted, so callers do not
// wait for it.
func readKeys(r io.Reader, inputs chan<- input) {
	buf := make([]byte, 16)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			inputs <- input{kind: inputKey, key: b}
		}
		if err != nil {
			return
		}
	}
}
