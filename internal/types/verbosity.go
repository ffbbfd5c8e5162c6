package types

import (
	"fmt"
	"strings"
)

// Verbosity of a pytest run. Line shapes in the body differ between
// levels; Auto accepts all of them.
type Verbosity int

const (
	VerbosityAuto Verbosity = iota
	VerbosityQuiet
	VerbosityNormal
	VerbosityVerbose
)

var verbosityNames = map[Verbosity]string{
	VerbosityAuto:    "auto",
	VerbosityQuiet:   "quiet",
	VerbosityNormal:  "normal",
	VerbosityVerbose: "verbose",
}

func (v Verbosity) String() string {
	if name, ok := verbosityNames[v]; ok {
		return name
	}
	return fmt.Sprintf("Verbosity(%d)", v)
}

// Level returns pytest's numeric verbosity (-1, 0, 1). Auto maps to 0.
func (v Verbosity) Level() int {
	switch v {
	case VerbosityQuiet:
		return -1
	case VerbosityVerbose:
		return 1
	default:
		return 0
	}
}

// Flag returns the pytest command line flag selecting this level.
func (v Verbosity) Flag() string {
	switch v {
	case VerbosityQuiet:
		return "-q"
	case VerbosityVerbose:
		return "-v"
	default:
		return ""
	}
}

// ParseVerbosity accepts a level name or a pytest flag ("-q", "-v", "").
func ParseVerbosity(s string) (Verbosity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto":
		return VerbosityAuto, nil
	case "quiet", "-q":
		return VerbosityQuiet, nil
	case "normal", "default", "":
		return VerbosityNormal, nil
	case "verbose", "-v":
		return VerbosityVerbose, nil
	}
	return VerbosityAuto, fmt.Errorf("unknown verbosity %q", s)
}
