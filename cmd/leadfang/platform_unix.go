//go:build !windows

package main

import (
	"os"
	"os/signal"
	"syscall"
)

// enableANSI reports whether the terminal understands ANSI colors. Unix
// terminals do.
func enableANSI() bool {
	return true
}

func registerSignals(ch chan<- os.Signal) {
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
}
