package pytest

import (
	"strings"

	"github.com/badele/pytesthl/internal/types"
)

// step classifies one line (without its newline) in mode and returns the
// mode for the next line.
func (l *Lexer) step(mode Mode, line string) (Mode, []types.Token) {
	l.Summary.visit(mode)

	switch mode {
	case ModeHeader:
		return l.stepHeader(line)
	case ModeBody:
		return l.stepBody(line)
	case ModeFailureBlock, ModeTracebackFrame:
		return l.stepTraceback(mode, line)
	case ModeCollectionError:
		return l.stepCollectionError(line)
	case ModeNoTests:
		return l.stepNoTests(line)
	}

	if line == "" {
		return mode, l.plainLine(line)
	}
	if next, tokens, ok := l.rule(mode, line, false); ok {
		return next, tokens
	}

	switch mode {
	case ModeWarningsSection:
		lt := l.newLine()
		lt.add(l.markup(), types.RoleWarningEntry, line)
		return mode, lt.tokens
	case ModeShortSummary:
		if tokens, ok := l.summaryEntry(line); ok {
			return mode, tokens
		}
		return mode, l.fallback(mode, line)
	case ModeFinalLine:
		return mode, l.fallback(mode, line)
	}
	return mode, l.plainLine(line)
}

func (l *Lexer) plainLine(line string) []types.Token {
	lt := l.newLine()
	lt.add(l.markup(), types.RoleNone, line)
	return lt.tokens
}

/////////////////////////////////////////////////////////////////////////////
// HEADER
/////////////////////////////////////////////////////////////////////////////

func (l *Lexer) stepHeader(line string) (Mode, []types.Token) {
	if line == "" {
		return ModeHeader, l.plainLine(line)
	}

	if c, _, title, _, ok := parseSep(line); ok && c == '=' && title == "test session starts" {
		l.bannerSeen = true
		lt := l.newLine()
		lt.add(l.markup("bold"), types.RoleSessionBanner, line)
		return ModeHeader, lt.tokens
	}

	// quiet transcripts have no header at all
	if !l.bannerSeen {
		if c, _, title, _, ok := parseSep(line); ok && c == '=' && title == "ERRORS" {
			return l.step(ModeCollectionError, line)
		}
		if strings.HasPrefix(line, "no tests ran in ") {
			return l.step(ModeNoTests, line)
		}
		return l.step(ModeBody, line)
	}

	m := collectedRe.FindStringSubmatch(line)
	if m == nil {
		if strings.HasPrefix(line, "collecting ... ") {
			lt := l.newLine()
			lt.add(l.markup("bold"), types.RoleCollecting, "collecting ... ")
			lt.add(l.markup(), types.RoleNone, line[len("collecting ... "):])
			return ModeHeader, lt.tokens
		}
		if next, tokens, ok := l.rule(ModeHeader, line, true); ok {
			return next, tokens
		}
		return ModeHeader, l.plainLine(line)
	}

	lt := l.newLine()
	lt.add(l.markup("bold"), types.RoleCollecting, m[1])
	lt.add(l.markup(), types.RoleCollecting, m[2])

	collected := atoi(m[3])
	errs := 0
	if e := collectErrorRe.FindStringSubmatch(m[4]); e != nil {
		errs = atoi(e[1])
	}
	l.Summary.Collected = collected

	switch {
	case errs > 0 && collected == 0:
		l.seen["error"] += errs
		return ModeCollectionError, lt.tokens
	case collected == 0 && m[4] == "":
		return ModeNoTests, lt.tokens
	}
	if errs > 0 {
		l.seen["error"] += errs
	}
	return ModeBody, lt.tokens
}

/////////////////////////////////////////////////////////////////////////////
// BODY
/////////////////////////////////////////////////////////////////////////////

func (l *Lexer) stepBody(line string) (Mode, []types.Token) {
	if line == "" {
		return ModeBody, l.plainLine(line)
	}

	if m := letterRe.FindStringSubmatchIndex(line); m != nil {
		return ModeBody, l.letterLine(line, m)
	}
	if m := verboseRe.FindStringSubmatch(line); m != nil {
		return ModeBody, l.verboseLine(m)
	}
	if next, tokens, ok := l.rule(ModeBody, line, false); ok {
		return next, tokens
	}
	return ModeBody, l.fallback(ModeBody, line)
}

// letterLine handles "[path ]LETTERS[ progress]" lines of quiet and
// normal runs. m holds submatch indexes of letterRe.
func (l *Lexer) letterLine(line string, m []int) []types.Token {
	lt := l.newLine()

	if m[2] >= 0 {
		l.currentFile = line[m[2]:m[3]]
		lt.add(l.markup(), types.RoleTestPath, line[:m[4]])
	}

	for _, c := range []byte(line[m[4]:m[5]]) {
		category := letterCategory[c]
		l.count(category)
		lt.add(l.markup(categoryColor(category)), types.RoleStatusLetter, string(c))
	}

	if m[6] >= 0 {
		percent := atoi(line[m[8]:m[9]])
		last := percent == 100
		if !last {
			l.activateWarnings(func(file string, _ int) bool { return l.currentFile == "" || file == l.currentFile })
		} else {
			// two warned tests cannot both be the last one
			l.activateWarnings(func(string, int) bool { return len(l.warnedNodes) >= 2 })
		}
		lt.add(l.progressStyle(last), types.RoleProgress, line[m[6]:m[7]])
		if last {
			l.activateWarnings(func(string, int) bool { return true })
		}
	}

	return lt.tokens
}

// verboseLine handles "nodeid WORD[ (reason)][ progress]" lines.
func (l *Lexer) verboseLine(m []string) []types.Token {
	lt := l.newLine()
	nodeid, word, reason, progress := m[1], m[2], m[3], m[4]

	category := wordCategory[word]
	l.count(category)
	l.currentFile = strings.SplitN(nodeid, "::", 2)[0]

	lt.add(l.markup(), types.RoleTestPath, nodeid+" ")
	lt.add(l.markup(categoryColor(category)), types.RoleOutcomeWord, word)
	lt.add(l.markup(), types.RoleNone, reason)
	if progress != "" {
		lt.add(l.progressStyle(atoi(m[5]) == 100), types.RoleProgress, progress)
	}

	l.activateNode(nodeid)
	return lt.tokens
}

func (l *Lexer) count(category string) {
	l.resultsSeen = true
	l.seen[category]++
	l.Summary.Outcomes[category]++
}

func (l *Lexer) progressStyle(last bool) types.Style {
	return l.markup(mainColor(l.seen, last))
}

/////////////////////////////////////////////////////////////////////////////
// RULES
/////////////////////////////////////////////////////////////////////////////

// rule classifies separator lines and the quiet final line. With knownOnly
// set, only lines that can close a free-form block are accepted: rules with
// a known section title, failure banners, capture rules and "!" rules.
func (l *Lexer) rule(mode Mode, line string, knownOnly bool) (Mode, []types.Token, bool) {
	c, fill, title, rightFill, ok := parseSep(line)
	if !ok {
		if !knownOnly && isFinalTitle(line) {
			next := ModeFinalLine
			if mode == ModeNoTests {
				next = ModeNoTests
			}
			return l.finalLine(next, "", line, "")
		}
		return mode, nil, false
	}

	lt := l.newLine()

	switch c {
	case '=':
		if isFinalTitle(title) {
			next := ModeFinalLine
			if mode == ModeNoTests {
				next = ModeNoTests
			}
			return l.finalLine(next, fill, title, rightFill)
		}

		next := ModeOtherSection
		style := l.markup()
		switch title {
		case "test session starts":
			next, style = ModeHeader, l.markup("bold")
		case "FAILURES", "XFAILURES":
			next, l.bannerColor = ModeFailureBlock, "red"
		case "PASSES", "XPASSES":
			next, l.bannerColor = ModeFailureBlock, "green"
		case "ERRORS":
			next, l.bannerColor = ModeFailureBlock, "red"
			if !l.resultsSeen {
				next = ModeCollectionError
			}
		case "warnings summary", "warnings summary (final)":
			next, style = ModeWarningsSection, l.markup("yellow")
		case "short test summary info":
			next, style = ModeShortSummary, l.markup("cyan", "bold")
		case "...", "…":
			// a stats line pytest could not fit
			next, style = ModeFinalLine, l.markup(mainColor(l.seen, true))
		default:
			if knownOnly {
				return mode, nil, false
			}
		}
		l.resetBlock()
		lt.add(style, types.RoleSectionRule, line)
		return next, lt.tokens, true

	case '_':
		l.resetBlock()
		l.bannerLine = l.line
		if strings.HasPrefix(title, "ERROR collecting ") {
			l.collectReport = true
			l.Summary.CollectionErrors = append(l.Summary.CollectionErrors, strings.TrimPrefix(title, "ERROR collecting "))
			lt.add(l.markup("red", "bold"), types.RoleFailureBanner, line)
			return ModeCollectionError, lt.tokens, true
		}
		if l.bannerColor == "red" {
			l.Summary.Failures = append(l.Summary.Failures, title)
		}
		lt.add(l.markup(l.bannerColor, "bold"), types.RoleFailureBanner, line)
		return ModeTracebackFrame, lt.tokens, true

	case '-':
		if strings.HasPrefix(title, "Captured ") {
			l.resetBlock()
			l.captured = true
			lt.add(l.markup(), types.RoleSectionRule, line)
			return ModeTracebackFrame, lt.tokens, true
		}
		if knownOnly {
			return mode, nil, false
		}
		lt.add(l.markup(), types.RoleSectionRule, line)
		return mode, lt.tokens, true

	case '!':
		l.resetBlock()
		style := l.markup()
		if strings.HasPrefix(title, "stopping after ") {
			style = l.markup("red")
		}
		lt.add(style, types.RoleSectionRule, line)
		if mode == ModeTracebackFrame || mode == ModeCollectionError {
			mode = ModeOtherSection
		}
		return mode, lt.tokens, true
	}

	return mode, nil, false
}

func (l *Lexer) resetBlock() {
	l.failing = false
	l.captured = false
	l.fixtureError = false
	l.collectReport = false
}

// finalLine classifies the stats line. Parts are colored by their type and
// bold when that color is the session color; commas stay plain.
func (l *Lexer) finalLine(next Mode, fill, title, rightFill string) (Mode, []types.Token, bool) {
	m := finalTitleRe.FindStringSubmatch(title)
	if m == nil {
		return next, nil, false
	}

	parts := []string{}
	counts := make(map[string]int)
	if m[1] != "no tests ran" {
		parts = strings.Split(m[1], ", ")
		for _, part := range parts {
			n, noun, _ := strings.Cut(part, " ")
			counts[countCategory(noun)] += atoi(n)
		}
	}
	l.Summary.Counts = counts

	main := mainColor(counts, true)
	mainStyle := l.markup(main)

	lt := l.newLine()
	if fill != "" {
		lt.add(mainStyle, types.RoleFinalRule, fill+" ")
	}
	if len(parts) == 0 {
		lt.add(l.markup("yellow"), types.RoleNoTests, m[1])
	}
	for i, part := range parts {
		if i > 0 {
			lt.add(l.markup(), types.RoleNone, ", ")
		}
		_, noun, _ := strings.Cut(part, " ")
		color := categoryColor(countCategory(noun))
		marks := []string{color}
		if color == main {
			marks = append(marks, "bold")
		}
		lt.add(l.markup(marks...), types.RoleCount, part)
	}
	lt.add(mainStyle, types.RoleDuration, m[2])
	if rightFill != "" {
		lt.add(mainStyle, types.RoleFinalRule, " "+rightFill)
	}

	return next, lt.tokens, true
}

/////////////////////////////////////////////////////////////////////////////
// FAILURES
/////////////////////////////////////////////////////////////////////////////

func (l *Lexer) stepTraceback(mode Mode, line string) (Mode, []types.Token) {
	if l.captured {
		if next, tokens, ok := l.rule(mode, line, true); ok {
			return next, tokens
		}
		lt := l.newLine()
		lt.add(l.markup(), types.RoleCapturedOutput, line)
		return mode, lt.tokens
	}

	if line == "" {
		l.failing = false
		return mode, l.plainLine(line)
	}
	if isEntrySeparator(line) {
		return ModeTracebackFrame, l.plainLine(line)
	}
	if next, tokens, ok := l.rule(mode, line, false); ok {
		return next, tokens
	}

	lt := l.newLine()

	if mode == ModeFailureBlock {
		// text between a section rule and its first banner
		lt.add(l.markup(), types.RoleNone, line)
		return mode, lt.tokens
	}

	if l.fixtureError {
		return mode, l.fixtureLine(line)
	}
	if fixtureFileRe.MatchString(line) && l.line == l.bannerLine+1 {
		l.fixtureError = true
		return mode, l.fixtureLine(line)
	}

	switch {
	case l.failing || strings.HasPrefix(line, failMarker):
		l.failing = true
		lt.add(l.markup("bold", "red"), types.RoleTracebackExceptionLine, line)
	case l.prevBlank && (line == directCause || line == duringHandling):
		lt.add(l.markup("yellow"), types.RoleChainMessage, line)
	case l.prevBlank && fileLocationRe.MatchString(line):
		m := fileLocationRe.FindStringSubmatch(line)
		lt.add(l.markup("bold", "red"), types.RoleTracebackFileLine, m[1])
		lt.add(l.markup(), types.RoleTracebackFileLine, line[len(m[1]):])
	default:
		lt.add(l.markup(), types.RoleTracebackSource, line)
	}
	return mode, lt.tokens
}

// fixtureLine classifies a fixture lookup report: the "E" line and the
// ">" lines after it are red, everything else plain.
func (l *Lexer) fixtureLine(line string) []types.Token {
	lt := l.newLine()
	if strings.HasPrefix(line, "E   ") || (l.failing && strings.HasPrefix(line, ">")) {
		l.failing = true
		lt.add(l.markup("red"), types.RoleTracebackExceptionLine, line)
		return lt.tokens
	}
	lt.add(l.markup(), types.RoleTracebackSource, line)
	return lt.tokens
}

/////////////////////////////////////////////////////////////////////////////
// SHORT SUMMARY
/////////////////////////////////////////////////////////////////////////////

func (l *Lexer) summaryEntry(line string) ([]types.Token, bool) {
	m := summaryEntryRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}

	word := m[1]
	l.Summary.SummaryEntries[word]++

	lt := l.newLine()
	lt.add(l.markup(categoryColor(wordCategory[word])), types.RoleOutcomeWord, word)
	lt.add(l.markup(), types.RoleSummaryEntry, m[2])
	return lt.tokens, true
}

/////////////////////////////////////////////////////////////////////////////
// TERMINAL MODES
/////////////////////////////////////////////////////////////////////////////

// stepCollectionError reads a collection failure: the banner is bold red
// and the collect report below it red, up to the next known rule.
func (l *Lexer) stepCollectionError(line string) (Mode, []types.Token) {
	if next, tokens, ok := l.rule(ModeCollectionError, line, true); ok {
		return next, tokens
	}
	if !l.collectReport {
		return ModeCollectionError, l.plainLine(line)
	}

	lt := l.newLine()
	lt.add(l.markup("red"), types.RoleCollectionError, line)
	return ModeCollectionError, lt.tokens
}

func (l *Lexer) stepNoTests(line string) (Mode, []types.Token) {
	if line == "" {
		return ModeNoTests, l.plainLine(line)
	}
	if next, tokens, ok := l.rule(ModeNoTests, line, false); ok {
		return next, tokens
	}
	return ModeNoTests, l.fallback(ModeNoTests, line)
}
