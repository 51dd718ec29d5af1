package main

import (
	"fmt"
	"io"
	"runtime"
)

// Version is set at build time via ldflags.
var Version = "v0.1.0"

// printVersion writes version information to w.
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "pool-watcher %s\n", Version)
	fmt.Fprintf(w, "Runtime: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
