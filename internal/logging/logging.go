// Package logging provides debug logging for the pytesthl tools.
package logging

import "log"

// DebugEnabled controls whether Debug() produces output.
// Set via --debug or PYTESTHL_DEBUG=1.
var DebugEnabled bool

// Debug logs a message only when DebugEnabled is true.
func Debug(format string, args ...any) {
	if DebugEnabled {
		log.Printf("DEBUG: "+format, args...)
	}
}

// Warn always logs.
func Warn(format string, args ...any) {
	log.Printf("WARN: "+format, args...)
}
