// Package pytest classifies the plain-text console transcript of a pytest
// session into the styles pytest would have painted it with, without
// seeing any escape codes.
package pytest

import (
	"fmt"
	"strings"

	"github.com/badele/pytesthl/internal/errors"
	"github.com/badele/pytesthl/internal/logging"
	"github.com/badele/pytesthl/internal/types"
)

/////////////////////////////////////////////////////////////////////////////
// MODE
/////////////////////////////////////////////////////////////////////////////

type Mode int

const (
	ModeHeader Mode = iota
	ModeBody
	ModeFailureBlock
	ModeTracebackFrame
	ModeWarningsSection
	ModeShortSummary
	ModeFinalLine
	ModeCollectionError
	ModeNoTests
	ModeOtherSection
)

var modeNames = map[Mode]string{
	ModeHeader:          "header",
	ModeBody:            "body",
	ModeFailureBlock:    "failure-block",
	ModeTracebackFrame:  "traceback-frame",
	ModeWarningsSection: "warnings-section",
	ModeShortSummary:    "short-summary",
	ModeFinalLine:       "final-line",
	ModeCollectionError: "collection-error",
	ModeNoTests:         "no-tests",
	ModeOtherSection:    "other-section",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", m)
}

/////////////////////////////////////////////////////////////////////////////
// LEXER
/////////////////////////////////////////////////////////////////////////////

type Option func(*Lexer)

// WithStrict makes outcome-shaped lines that fall back to plain an error
// reported by Err instead of a debug message.
func WithStrict(strict bool) Option {
	return func(l *Lexer) {
		l.strict = strict
	}
}

// WithVerbosity records the verbosity the transcript was produced with.
// Every verbosity's line shapes are accepted regardless.
func WithVerbosity(v types.Verbosity) Option {
	return func(l *Lexer) {
		l.verbosity = v
	}
}

type Lexer struct {
	input     []byte
	table     *types.StyleTable
	strict    bool
	verbosity types.Verbosity

	mode    Mode
	line    int // 1-based number of the line being classified
	linePos int

	// session state
	bannerSeen    bool
	resultsSeen   bool
	seen          map[string]int // categories reported so far
	currentFile   string
	bannerColor   string
	failing       bool // inside the exception lines of an entry
	captured      bool // inside a captured output section
	fixtureError  bool // inside a fixture lookup report
	collectReport bool // below an "ERROR collecting" banner
	bannerLine    int
	prevBlank     bool

	// warnings attribution, pre-scanned from the warnings summary
	warnedNodes map[string]bool
	warnedFiles map[string]int
	globalWarn  bool

	Tokens  []types.Token    `json:"tokens"`
	Stats   types.TokenStats `json:"stats"`
	Summary Summary          `json:"summary"`

	errs []error
	done bool
}

func NewLexer(input []byte, table *types.StyleTable, opts ...Option) *Lexer {
	if table == nil {
		table = types.DefaultStyleTable()
	}

	l := &Lexer{
		input:       input,
		table:       table,
		verbosity:   types.VerbosityAuto,
		mode:        ModeHeader,
		seen:        make(map[string]int),
		bannerColor: "red",
		warnedNodes: make(map[string]bool),
		warnedFiles: make(map[string]int),
		Tokens:      make([]types.Token, 0),
		Stats:       types.NewTokenStats(len(input)),
		Summary:     newSummary(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tokenize classifies the input once; later calls return the same tokens.
func (l *Lexer) Tokenize() []types.Token {
	text := string(l.input)
	if text == "" || l.done {
		return l.Tokens
	}
	l.done = true

	l.scanWarnings(text)

	var tokens []types.Token
	pos := 0
	for pos < len(text) {
		end := strings.IndexByte(text[pos:], '\n')
		newline := end >= 0
		if !newline {
			end = len(text) - pos
		}
		line := text[pos : pos+end]

		l.line++
		l.linePos = pos
		var lineTokens []types.Token
		l.mode, lineTokens = l.step(l.mode, line)
		l.Summary.visit(l.mode)
		l.prevBlank = line == ""
		tokens = append(tokens, lineTokens...)

		pos += end
		if newline {
			tokens = append(tokens, types.Token{Style: l.markup(), Pos: pos, Text: "\n"})
			pos++
		}
	}

	l.Tokens = merge(tokens)
	l.Stats.Count(l.Tokens)

	return l.Tokens
}

// GetStats returns lexing statistics
func (l *Lexer) GetStats() types.TokenStats {
	return l.Stats
}

// Err returns the first unrecognized line in strict mode.
func (l *Lexer) Err() error {
	if len(l.errs) == 0 {
		return nil
	}
	return l.errs[0]
}

// Unrecognized returns every line reported in strict mode.
func (l *Lexer) Unrecognized() []error {
	return l.errs
}

// merge joins adjacent tokens sharing both style and role.
func merge(tokens []types.Token) []types.Token {
	out := make([]types.Token, 0, len(tokens))
	for _, token := range tokens {
		if token.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Style == token.Style && out[n-1].Role == token.Role {
			out[n-1].Text += token.Text
			continue
		}
		out = append(out, token)
	}
	return out
}

// markup resolves pytest markup names ("bold", "red", ...) through the
// style table.
func (l *Lexer) markup(marks ...string) types.Style {
	var attrs types.Attrs
	for _, mark := range marks {
		switch mark {
		case "bold":
			attrs.Bold = true
		case "red":
			attrs.Fg = types.StandardColor(types.Red)
		case "green":
			attrs.Fg = types.StandardColor(types.Green)
		case "yellow":
			attrs.Fg = types.StandardColor(types.Yellow)
		case "cyan":
			attrs.Fg = types.StandardColor(types.Cyan)
		}
	}
	return l.table.Lookup(attrs)
}

// fallback classifies a line no pattern of the mode accepted.
func (l *Lexer) fallback(mode Mode, line string) []types.Token {
	if outcomeShapedRe.MatchString(line) {
		if l.strict {
			l.errs = append(l.errs, errors.Unrecognized(l.line, "%s: unrecognized line %q", mode, line))
		}
		logging.Debug("pytest lexer: line %d in %s falls back to plain: %q", l.line, mode, line)
	}

	lt := l.newLine()
	lt.add(l.markup(), types.RoleNone, line)
	return lt.tokens
}

/////////////////////////////////////////////////////////////////////////////
// LINE TOKENS
/////////////////////////////////////////////////////////////////////////////

type lineTokens struct {
	pos    int
	tokens []types.Token
}

func (l *Lexer) newLine() *lineTokens {
	return &lineTokens{pos: l.linePos}
}

func (lt *lineTokens) add(style types.Style, role types.Role, text string) {
	if text == "" {
		return
	}
	lt.tokens = append(lt.tokens, types.Token{Style: style, Role: role, Pos: lt.pos, Text: text})
	lt.pos += len(text)
}

/////////////////////////////////////////////////////////////////////////////
// WARNINGS
/////////////////////////////////////////////////////////////////////////////

// scanWarnings reads the warnings summary ahead of time: pytest counts a
// test's warnings once the test has finished, so the progress color of the
// body depends on which tests warned.
func (l *Lexer) scanWarnings(text string) {
	inSection := false
	for _, line := range strings.Split(text, "\n") {
		if c, _, title, _, ok := parseSep(line); ok && c == '=' {
			inSection = strings.HasPrefix(title, "warnings summary")
			continue
		}
		// quiet runs write the stats line without a rule
		if isFinalTitle(line) {
			inSection = false
			continue
		}
		if !inSection || line == "" || strings.HasPrefix(line, " ") || strings.HasPrefix(line, "-- Docs") {
			continue
		}

		switch m := collapsedRe.FindStringSubmatch(line); {
		case m != nil:
			l.warnedFiles[m[1]] += atoi(m[2])
		case unlocatedRe.MatchString(line):
			// recorded outside any test, before the first result
			l.globalWarn = true
		case !strings.Contains(line, "::"):
			// recorded while collecting the module
			l.globalWarn = true
		default:
			l.warnedNodes[line] = true
			l.warnedFiles[strings.SplitN(line, "::", 2)[0]]++
		}
	}

	if l.globalWarn {
		l.seen["warnings"]++
	}
}

func (l *Lexer) activateWarnings(pred func(file string, count int) bool) {
	for file, count := range l.warnedFiles {
		if count > 0 && pred(file, count) {
			l.seen["warnings"] += count
			l.warnedFiles[file] = 0
		}
	}
}

func (l *Lexer) activateNode(nodeid string) {
	if !l.warnedNodes[nodeid] {
		return
	}
	delete(l.warnedNodes, nodeid)
	file := strings.SplitN(nodeid, "::", 2)[0]
	if l.warnedFiles[file] > 0 {
		l.warnedFiles[file]--
	}
	l.seen["warnings"]++
}
