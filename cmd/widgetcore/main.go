// widgetcore plays Lua widget scenes against the widget state machine.
// Usage: widgetcore [--plain] [--script <file>] [--trace] <scene_directory>
package main

import (
	"context"
	"fmt"
	"os"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := NewRootCmd(version, commit, date).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
