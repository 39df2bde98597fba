// Package exitcode provides the CLI's single process-exit path.
package exitcode

import (
	"fmt"
	"os"
)

// Exit prints err to stderr and exits the process with code 1.
func Exit(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
