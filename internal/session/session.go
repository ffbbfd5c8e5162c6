// Package session writes the console transcript pytest prints for a
// described test session, with or without color. It models the terminal
// reporter closely enough that the colored transcript can stand in for a
// real capture.
package session

import (
	"fmt"
	"path"
	"strings"

	"github.com/badele/pytesthl/internal/types"
)

/////////////////////////////////////////////////////////////////////////////
// OUTCOME
/////////////////////////////////////////////////////////////////////////////

type Outcome int

const (
	Passed Outcome = iota
	Failed
	Errored // fixture or setup failure
	Skipped
	XFailed
	XPassed
)

type status struct {
	category string
	letter   string
	word     string
	color    string
}

var statuses = map[Outcome]status{
	Passed:  {"passed", ".", "PASSED", "green"},
	Failed:  {"failed", "F", "FAILED", "red"},
	Errored: {"error", "E", "ERROR", "red"},
	Skipped: {"skipped", "s", "SKIPPED", "yellow"},
	XFailed: {"xfailed", "x", "XFAIL", "yellow"},
	XPassed: {"xpassed", "X", "XPASS", "yellow"},
}

func (o Outcome) String() string {
	if s, ok := statuses[o]; ok {
		return s.category
	}
	return fmt.Sprintf("Outcome(%d)", o)
}

/////////////////////////////////////////////////////////////////////////////
// SESSION MODEL
/////////////////////////////////////////////////////////////////////////////

// Entry is one frame of a long traceback. Lines are the source lines as
// printed (4 column marker prefix) followed by the "E   " exception lines.
type Entry struct {
	Args    []string
	Lines   []string
	Path    string
	Lineno  int
	Message string
}

// Traceback is one exception of a chain. Description is printed after the
// traceback when another exception follows.
type Traceback struct {
	Entries     []Entry
	Description string
}

const (
	DirectCause    = "The above exception was the direct cause of the following exception:"
	DuringHandling = "During handling of the above exception, another exception occurred:"
)

// FixtureLookup is the report of a test requesting an unknown fixture.
// Path is relative to rootdir.
type FixtureLookup struct {
	Path      string
	Line      int
	Source    []string
	Argname   string
	Available []string
}

type Failure struct {
	Chain         []Traceback
	FixtureLookup *FixtureLookup
}

type Warning struct {
	Path     string
	Line     int
	Category string
	Message  string
	Source   string
}

// formatted mirrors warnings.formatwarning. Path is relative to rootdir.
func (w Warning) formatted(rootdir string) string {
	return fmt.Sprintf("%s:%d: %s: %s\n  %s\n",
		path.Join(rootdir, w.Path), w.Line, w.Category, w.Message, strings.TrimSpace(w.Source))
}

type Capture struct {
	Title   string
	Content string
}

type Test struct {
	Name     string // node id relative to the file, e.g. "TestThing::test_fail"
	Line     int
	Outcome  Outcome
	Reason   string // skip or xfail reason
	Message  string // crash message shown in the short summary
	Failure  *Failure
	Warning  *Warning
	Captured []Capture
}

type CollectionError struct {
	Path string
	Body string
}

// Session describes one pytest invocation on a single test file.
type Session struct {
	Name            string
	File            string
	RootDir         string
	Header          []string // lines after the banner; nil uses a default header
	Tests           []Test
	Deselected      int
	CollectionError *CollectionError
	Duration        float64
	MaxFail         int
	ReportChars     string
	ExtraArgs       []string
	Width           int
}

func (s *Session) nodeid(t *Test) string {
	return s.File + "::" + t.Name
}

func (s *Session) rootDir() string {
	if s.RootDir != "" {
		return s.RootDir
	}
	return "/tmp/pytest-of-user/pytest-0/test_" + s.Name + "0"
}

func (s *Session) reportChars() string {
	if s.ReportChars != "" {
		return s.ReportChars
	}
	return "fE"
}

// Render returns the transcript pytest prints at the given verbosity.
// Auto renders like the default verbosity.
func (s *Session) Render(verbosity types.Verbosity, color bool) string {
	r := newReporter(s, verbosity.Level(), color)
	r.run()
	return r.tw.String()
}

// Args returns the pytest command line that produces the transcript.
func (s *Session) Args(verbosity types.Verbosity) []string {
	args := []string{"pytest"}
	if flag := verbosity.Flag(); flag != "" {
		args = append(args, flag)
	}
	args = append(args, s.ExtraArgs...)
	if s.MaxFail > 0 {
		args = append(args, fmt.Sprintf("--maxfail=%d", s.MaxFail))
	}
	if s.ReportChars != "" {
		args = append(args, "-r"+s.ReportChars)
	}
	return append(args, "--color=yes", "--code-highlight=no", s.File)
}
