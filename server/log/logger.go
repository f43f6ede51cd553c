// Package log declares the logger the server components share.
package log

// Logger is the interface the server logs through, so one log.Logger is
// injected everywhere rather than the package-level default.
type Logger interface {
	// Printf writes the formatted string with values to the logger.
	// Arguments are handled in the manner of fmt.Printf.
	Printf(format string, v ...interface{})
}
