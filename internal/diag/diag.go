// Package diag is the kernel's character-device diagnostics channel.
//
// It deliberately does not wrap a structured-logging library: the kernel
// below it cannot assume one is safe to call from every context, so every
// diagnostic is a short line of text written to whatever device is wired in.
package diag

import (
	"fmt"
	"io"
	"os"
)

var device io.Writer = os.Stderr

// SetDevice points diagnostics at a different character device. Tests use
// this to capture output instead of polluting stderr.
func SetDevice(w io.Writer) {
	device = w
}

// Report emits a non-fatal diagnostic. The kernel continues running; the
// call that triggered it returns its documented failure value (0, false, …).
func Report(msg string) {
	fmt.Fprintln(device, "spos: "+msg)
}

// Fatal emits a diagnostic and halts. There is no hardware to actually power
// down in a hosted Go process, so halting is expressed as a panic: the one
// Go primitive that unconditionally stops normal execution from continuing.
func Fatal(msg string) {
	fmt.Fprintln(device, "spos: FATAL: "+msg)
	panic("spos: fatal: " + msg)
}
