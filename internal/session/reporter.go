package session

import (
	"fmt"
	"path"
	"strings"
	"time"
	"unicode/utf8"
)

// Categories in the order the stats line lists them.
var knownTypes = []string{"failed", "passed", "skipped", "deselected", "xfailed", "xpassed", "warnings", "error"}

var colorForType = map[string]string{
	"failed":   "red",
	"error":    "red",
	"warnings": "yellow",
	"passed":   "green",
}

const (
	defaultTypeColor = "yellow"
	docsLine         = "-- Docs: https://docs.pytest.org/en/stable/how-to/capture-warnings.html"
	// marks the line as ending with an outcome word (verbose mode)
	afterWord = "\x00"
)

type report struct {
	nodeid  string
	when    string
	test    *Test
	collect *CollectionError
}

type reporter struct {
	s             *Session
	tw            *TerminalWriter
	verbosity     int
	currentfspath string

	stats        map[string][]report
	warnings     []warningReport
	reported     map[string]bool
	collected    int
	numcollected int
	testsfailed  int
	shouldfail   string
}

type warningReport struct {
	nodeid  string
	message string
}

func newReporter(s *Session, verbosity int, color bool) *reporter {
	return &reporter{
		s:         s,
		tw:        NewTerminalWriter(color, s.Width),
		verbosity: verbosity,
		stats:     make(map[string][]report),
		reported:  make(map[string]bool),
	}
}

func (r *reporter) run() {
	r.sessionStart()
	r.collection()

	interrupted := r.s.CollectionError != nil
	if !interrupted {
		for i := range r.s.Tests {
			if r.runTest(&r.s.Tests[i]) {
				break
			}
		}
	}

	r.sessionFinish(interrupted)
}

/////////////////////////////////////////////////////////////////////////////
// STATS
/////////////////////////////////////////////////////////////////////////////

func (r *reporter) addStats(category string, rep report) {
	r.stats[category] = append(r.stats[category], rep)
}

func (r *reporter) has(category string) bool {
	return len(r.stats[category]) > 0
}

func (r *reporter) isLastItem() bool {
	return len(r.reported) == r.collected
}

func (r *reporter) mainColor() string {
	switch {
	case r.has("failed") || r.has("error"):
		return "red"
	case r.has("warnings") || r.has("xpassed"):
		return "yellow"
	case r.has("passed") || !r.isLastItem():
		return "green"
	default:
		return "yellow"
	}
}

func (r *reporter) count(category string) int {
	if category == "warnings" {
		return len(r.warnings)
	}
	return len(r.stats[category])
}

/////////////////////////////////////////////////////////////////////////////
// LINE HELPERS
/////////////////////////////////////////////////////////////////////////////

func (r *reporter) ensureNewline() {
	if r.currentfspath != "" {
		r.tw.Line("")
		r.currentfspath = ""
	}
}

func (r *reporter) writeLine(line string, marks ...string) {
	r.ensureNewline()
	r.tw.Line(line, marks...)
}

func (r *reporter) writeSep(sep, title string, marks ...string) {
	r.ensureNewline()
	r.tw.Sep(sep, title, 0, marks...)
}

func (r *reporter) writeFspathResult(nodeid, res string, marks ...string) {
	fspath := strings.SplitN(nodeid, "::", 2)[0]
	if r.currentfspath == "" || fspath != r.currentfspath {
		if r.currentfspath != "" {
			r.writeProgressFillingSpace()
		}
		r.currentfspath = fspath
		r.tw.Line("")
		r.tw.Write(fspath + " ")
	}
	r.tw.Write(res, marks...)
}

func (r *reporter) writeEnsurePrefix(prefix, extra string, marks ...string) {
	if r.currentfspath != prefix {
		r.tw.Line("")
		r.currentfspath = prefix
		r.tw.Write(prefix)
	}
	if extra != "" {
		r.tw.Write(extra, marks...)
		r.currentfspath = afterWord
	}
}

func (r *reporter) progressMessage() string {
	if r.collected > 0 {
		return fmt.Sprintf(" [%3d%%]", len(r.reported)*100/r.collected)
	}
	return " [100%]"
}

func (r *reporter) writeProgressFillingSpace() {
	color := r.mainColor()
	msg := r.progressMessage()
	fill := r.tw.Fullwidth() - r.tw.WidthOfCurrentLine() - 1
	r.tw.Write(rjust(msg, fill), color)
}

/////////////////////////////////////////////////////////////////////////////
// HEADER AND COLLECTION
/////////////////////////////////////////////////////////////////////////////

func (r *reporter) sessionStart() {
	if r.verbosity < 0 {
		return
	}

	r.writeSep("=", "test session starts", "bold")

	header := r.s.Header
	if header == nil {
		platform := "platform linux -- Python 3.12.3, pytest-8.3.3, pluggy-1.5.0"
		if r.verbosity > 0 {
			header = []string{platform + " -- /usr/bin/python3", "cachedir: .pytest_cache"}
		} else {
			header = []string{platform}
		}
		header = append(header, "rootdir: "+r.s.rootDir())
	}
	for _, line := range header {
		r.writeLine(line)
	}
}

func (r *reporter) collection() {
	if r.verbosity >= 1 {
		r.tw.Write("collecting ... ", "bold")
	}

	if ce := r.s.CollectionError; ce != nil {
		r.addStats("error", report{nodeid: ce.Path, when: "collect", collect: ce})
	}
	for i := 0; i < r.s.Deselected; i++ {
		r.addStats("deselected", report{})
	}

	r.collected = len(r.s.Tests)
	r.numcollected = len(r.s.Tests) + r.s.Deselected

	if r.verbosity < 0 {
		return
	}

	line := fmt.Sprintf("collected %d item%s", r.numcollected, plural(r.numcollected, "s"))
	if errors := r.count("error"); errors > 0 {
		line += fmt.Sprintf(" / %d error%s", errors, plural(errors, "s"))
	}
	if r.s.Deselected > 0 {
		line += fmt.Sprintf(" / %d deselected", r.s.Deselected)
	}
	if r.numcollected > r.collected {
		line += fmt.Sprintf(" / %d selected", r.collected)
	}
	r.writeLine(line)
}

func plural(n int, suffix string) string {
	if n == 1 {
		return ""
	}
	return suffix
}

/////////////////////////////////////////////////////////////////////////////
// RUNNING
/////////////////////////////////////////////////////////////////////////////

// runTest reports one test and tells whether the session must stop.
func (r *reporter) runTest(t *Test) bool {
	nodeid := r.s.nodeid(t)
	st := statuses[t.Outcome]

	// logstart
	if r.verbosity > 0 {
		r.writeEnsurePrefix(nodeid+" ", "")
	} else if r.verbosity >= 0 {
		r.writeFspathResult(nodeid, "")
	}

	// logreport
	when := "call"
	if t.Outcome == Errored {
		when = "setup"
	}
	r.addStats(st.category, report{nodeid: nodeid, when: when, test: t})
	r.reported[nodeid] = true

	if r.verbosity <= 0 {
		r.tw.Write(st.letter, st.color)
	} else {
		r.writeEnsurePrefix(nodeid+" ", st.word, st.color)
		if t.Outcome == Skipped || t.Outcome == XFailed || t.Outcome == XPassed {
			available := r.tw.Fullwidth() - r.tw.WidthOfCurrentLine() - len(" [100%]") - 1
			if reason, ok := formatTrimmed(" ({})", t.Reason, available); ok && t.Reason != "" {
				r.tw.Write(reason)
			}
		}
		r.writeProgressFillingSpace()
	}

	// logfinish
	if r.verbosity <= 0 {
		if r.isLastItem() {
			r.writeProgressFillingSpace()
		} else if r.tw.WidthOfCurrentLine()+len(" [100%]")+1 >= r.tw.Fullwidth() {
			r.tw.Write(r.progressMessage()+"\n", r.mainColor())
		}
	}

	// warnings are recorded once the whole test protocol is over
	if t.Warning != nil {
		r.warnings = append(r.warnings, warningReport{nodeid: nodeid, message: t.Warning.formatted(r.s.rootDir())})
		r.addStats("warnings", report{nodeid: nodeid})
	}

	if t.Outcome == Failed || t.Outcome == Errored {
		r.testsfailed++
		if r.s.MaxFail > 0 && r.testsfailed >= r.s.MaxFail {
			r.shouldfail = fmt.Sprintf("stopping after %d failures", r.testsfailed)
			return true
		}
	}
	return false
}

/////////////////////////////////////////////////////////////////////////////
// SUMMARY
/////////////////////////////////////////////////////////////////////////////

func (r *reporter) sessionFinish(interrupted bool) {
	r.tw.Line("")

	r.summaryErrors()
	r.summaryFailures()
	r.summaryWarnings()
	r.shortTestSummary()

	if r.shouldfail != "" {
		r.writeSep("!", r.shouldfail, "red")
	}
	if interrupted {
		errors := r.count("error")
		r.writeSep("!", fmt.Sprintf("Interrupted: %d error%s during collection", errors, plural(errors, "s")))
	}

	r.summaryStats()
}

func headline(t *Test) string {
	return strings.ReplaceAll(t.Name, "::", ".")
}

func (r *reporter) summaryErrors() {
	reports := r.stats["error"]
	if len(reports) == 0 {
		return
	}

	r.writeSep("=", "ERRORS")
	for _, rep := range reports {
		var msg string
		if rep.collect != nil {
			msg = "ERROR collecting " + rep.collect.Path
		} else {
			msg = fmt.Sprintf("ERROR at %s of %s", rep.when, headline(rep.test))
		}
		r.writeSep("_", msg, "red", "bold")
		r.outrepSummary(rep)
	}
}

func (r *reporter) summaryFailures() {
	reports := r.stats["failed"]
	if len(reports) == 0 {
		return
	}

	r.writeSep("=", "FAILURES")
	for _, rep := range reports {
		r.writeSep("_", headline(rep.test), "red", "bold")
		r.outrepSummary(rep)
	}
}

func (r *reporter) outrepSummary(rep report) {
	if rep.collect != nil {
		r.tw.Line(rep.collect.Body, "red")
		return
	}

	t := rep.test
	if t.Failure != nil {
		if fl := t.Failure.FixtureLookup; fl != nil {
			r.fixtureLookup(fl)
		} else {
			r.exceptionChain(t.Failure.Chain)
		}
	}

	for _, capture := range t.Captured {
		r.tw.Sep("-", capture.Title, 0)
		r.tw.Line(strings.TrimSuffix(capture.Content, "\n"))
	}
}

func (r *reporter) exceptionChain(chain []Traceback) {
	for _, tb := range chain {
		for i, entry := range tb.Entries {
			r.tw.Line("")
			r.entry(entry)
			if i < len(tb.Entries)-1 {
				r.tw.Rule("_ ")
			}
		}
		if tb.Description != "" {
			r.tw.Line("")
			r.tw.Line(tb.Description, "yellow")
		}
	}
}

func (r *reporter) entry(e Entry) {
	if len(e.Args) > 0 {
		for _, arg := range e.Args {
			r.tw.Line(arg)
		}
		r.tw.Line("")
	}

	failing := false
	for _, line := range e.Lines {
		if !failing && strings.HasPrefix(line, "E   ") {
			failing = true
		}
		if failing {
			r.tw.Line(line, "bold", "red")
		} else {
			r.tw.Line(line)
		}
	}

	if e.Path != "" {
		if len(e.Lines) > 0 {
			r.tw.Line("")
		}
		r.tw.Write(e.Path, "bold", "red")
		r.tw.Line(fmt.Sprintf(":%d: %s", e.Lineno, e.Message))
	}
}

func (r *reporter) fixtureLookup(fl *FixtureLookup) {
	file := path.Join(r.s.rootDir(), fl.Path)
	r.tw.Line(fmt.Sprintf("file %s, line %d", file, fl.Line))
	for _, line := range fl.Source {
		r.tw.Line("  " + line)
	}

	r.tw.Line(fmt.Sprintf("E       fixture '%s' not found", fl.Argname), "red")
	r.tw.Line(">       available fixtures: "+strings.Join(fl.Available, ", "), "red")
	r.tw.Line(">       use 'pytest --fixtures [testpath]' for help on them.", "red")
	r.tw.Line("")
	r.tw.Line(fmt.Sprintf("%s:%d", file, fl.Line))
}

func (r *reporter) summaryWarnings() {
	if len(r.warnings) == 0 {
		return
	}

	var order []string
	grouped := make(map[string][]string)
	for _, w := range r.warnings {
		if _, ok := grouped[w.message]; !ok {
			order = append(order, w.message)
		}
		grouped[w.message] = append(grouped[w.message], w.nodeid)
	}

	r.writeSep("=", "warnings summary", "yellow")
	for _, message := range order {
		r.tw.Line(collapsedLocations(grouped[message]))
		lines := strings.Split(strings.TrimSuffix(message, "\n"), "\n")
		for i, line := range lines {
			lines[i] = "  " + line
		}
		r.tw.Line(strings.TrimRight(strings.Join(lines, "\n"), " \n"))
		r.tw.Line("")
	}
	r.tw.Line(docsLine)
}

func collapsedLocations(locations []string) string {
	if len(locations) < 10 {
		return strings.Join(locations, "\n")
	}

	var files []string
	counts := make(map[string]int)
	for _, loc := range locations {
		file := strings.SplitN(loc, "::", 2)[0]
		if counts[file] == 0 {
			files = append(files, file)
		}
		counts[file]++
	}

	lines := make([]string, 0, len(files))
	for _, file := range files {
		lines = append(lines, fmt.Sprintf("%s: %d warning%s", file, counts[file], plural(counts[file], "s")))
	}
	return strings.Join(lines, "\n")
}

func (r *reporter) shortTestSummary() {
	var lines []string

	simple := func(category, word string) {
		color := typeColor(category)
		for _, rep := range r.stats[category] {
			node := rep.nodeid
			line := r.tw.Markup(word, color) + " " + node
			if rep.test != nil && rep.test.Message != "" {
				available := r.tw.Fullwidth() - wcswidth(line)
				if msg, ok := formatTrimmed(" - {}", rep.test.Message, available); ok {
					line += msg
				}
			}
			lines = append(lines, line)
		}
	}

	withReason := func(category, word string) {
		for _, rep := range r.stats[category] {
			line := r.tw.Markup(word, "yellow") + " " + rep.nodeid
			if rep.test.Reason != "" {
				line += " - " + rep.test.Reason
			}
			lines = append(lines, line)
		}
	}

	for _, char := range r.s.reportChars() {
		switch char {
		case 'f':
			simple("failed", "FAILED")
		case 'E':
			simple("error", "ERROR")
		case 'p':
			simple("passed", "PASSED")
		case 'x':
			withReason("xfailed", "XFAIL")
		case 'X':
			withReason("xpassed", "XPASS")
		case 's':
			for _, skip := range r.foldedSkips() {
				lines = append(lines, fmt.Sprintf("%s [%d] %s:%d: %s",
					r.tw.Markup("SKIPPED", "yellow"), skip.count, r.s.File, skip.line, skip.reason))
			}
		}
	}

	if len(lines) == 0 {
		return
	}

	r.writeSep("=", "short test summary info", "cyan", "bold")
	for _, line := range lines {
		r.writeLine(line)
	}
}

type foldedSkip struct {
	line   int
	reason string
	count  int
}

// foldedSkips groups skips raised from the same line with the same reason.
func (r *reporter) foldedSkips() []*foldedSkip {
	var folded []*foldedSkip
	index := make(map[string]*foldedSkip)
	for _, rep := range r.stats["skipped"] {
		reason := rep.test.Reason
		if reason == "" {
			reason = "Skipped"
		}
		key := fmt.Sprintf("%d:%s", rep.test.Line, reason)
		if skip, ok := index[key]; ok {
			skip.count++
			continue
		}
		skip := &foldedSkip{line: rep.test.Line, reason: reason, count: 1}
		index[key] = skip
		folded = append(folded, skip)
	}
	return folded
}

func typeColor(category string) string {
	if color, ok := colorForType[category]; ok {
		return color
	}
	return defaultTypeColor
}

type statsPart struct {
	text  string
	marks []string
}

func (r *reporter) summaryParts(main string) []statsPart {
	var parts []statsPart
	for _, key := range knownTypes {
		count := r.count(key)
		if count == 0 {
			continue
		}
		color := typeColor(key)
		marks := []string{color}
		if color == main {
			marks = append(marks, "bold")
		}
		parts = append(parts, statsPart{text: fmt.Sprintf("%d %s", count, pluralize(count, key)), marks: marks})
	}

	if len(parts) == 0 {
		parts = []statsPart{{text: "no tests ran", marks: []string{defaultTypeColor}}}
	}
	return parts
}

func pluralize(count int, noun string) string {
	if noun != "error" && noun != "warnings" {
		return noun
	}
	noun = strings.Replace(noun, "warnings", "warning", 1)
	if count != 1 {
		return noun + "s"
	}
	return noun
}

func (r *reporter) summaryStats() {
	main := r.mainColor()
	parts := r.summaryParts(main)
	displaySep := r.verbosity >= 0
	fullwidth := r.tw.Fullwidth()

	lineParts := make([]string, 0, len(parts))
	for _, part := range parts {
		withMarkup := r.tw.Markup(part.text, part.marks...)
		fullwidth += utf8.RuneCountInString(withMarkup) - utf8.RuneCountInString(part.text)
		lineParts = append(lineParts, withMarkup)
	}
	msg := strings.Join(lineParts, ", ")

	duration := " in " + formatDuration(r.s.Duration)
	withMarkup := r.tw.Markup(duration, main)
	fullwidth += utf8.RuneCountInString(withMarkup) - utf8.RuneCountInString(duration)
	msg += withMarkup

	if !displaySep {
		r.writeLine(msg, main)
		return
	}

	// reopen the main color for the closing fill
	endSep := strings.TrimSuffix(r.tw.Markup("", main), "\x1b[0m")
	fullwidth += utf8.RuneCountInString(endSep)
	msg += endSep

	r.ensureNewline()
	r.tw.Sep("=", msg, fullwidth, main)
}

func formatDuration(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.2fs", seconds)
	}
	dt := time.Duration(int(seconds)) * time.Second
	h := int(dt.Hours())
	m := int(dt.Minutes()) % 60
	s := int(dt.Seconds()) % 60
	return fmt.Sprintf("%.2fs (%d:%02d:%02d)", seconds, h, m, s)
}
