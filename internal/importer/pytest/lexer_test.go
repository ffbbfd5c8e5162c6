package pytest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badele/pytesthl/internal/errors"
	"github.com/badele/pytesthl/internal/types"
)

const (
	plain     = types.StylePlain
	bold      = types.Style("section-rule")
	green     = types.Style("status-letter-pass")
	boldGreen = types.Style("pass-count")
	red       = types.Style("status-letter-fail")
	boldRed   = types.Style("fail-count")
	yellow    = types.Style("status-letter-skip")
	boldYel   = types.Style("skip-count")
	cyan      = types.Style("summary-rule")
)

func sep(c, title string) string {
	return strings.Repeat(c, 5) + " " + title + " " + strings.Repeat(c, 5)
}

func progress(prefix, p string) string {
	return prefix + strings.Repeat(" ", 79-len(prefix)-len(p)) + p
}

func transcript(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func lex(t *testing.T, input string, opts ...Option) (*Lexer, []types.Token) {
	t.Helper()
	l := NewLexer([]byte(input), nil, opts...)
	tokens := l.Tokenize()
	require.Equal(t, input, types.Text(tokens), "tokens must reproduce the input")
	return l, tokens
}

// styleOf returns the style of the first token holding text.
func styleOf(t *testing.T, tokens []types.Token, text string) types.Style {
	t.Helper()
	for _, token := range tokens {
		if strings.Contains(token.Text, text) {
			return token.Style
		}
	}
	t.Fatalf("Expected a token containing %q, got %v", text, tokens)
	return ""
}

// exact returns the token whose text is text.
func exact(t *testing.T, tokens []types.Token, text string) types.Token {
	t.Helper()
	for _, token := range tokens {
		if token.Text == text {
			return token
		}
	}
	t.Fatalf("Expected a token %q, got %v", text, tokens)
	return types.Token{}
}

func roleOf(t *testing.T, tokens []types.Token, text string) types.Role {
	t.Helper()
	for _, token := range tokens {
		if strings.Contains(token.Text, text) {
			return token.Role
		}
	}
	t.Fatalf("Expected a token containing %q, got %v", text, tokens)
	return types.RoleNone
}

func TestParseSep(t *testing.T) {
	tests := []struct {
		line      string
		ok        bool
		sepchar   byte
		title     string
		rightFill string
	}{
		{line: "===== FAILURES =====", ok: true, sepchar: '=', title: "FAILURES", rightFill: "====="},
		{line: "==== odd =====", ok: true, sepchar: '=', title: "odd", rightFill: "====="},
		{line: "= 1 passed in 0.01s =", ok: true, sepchar: '=', title: "1 passed in 0.01s", rightFill: "="},
		{line: "!!!!! Interrupted: 1 error during collection !!!!!", ok: true, sepchar: '!', title: "Interrupted: 1 error during collection", rightFill: "!!!!!"},
		{line: "_____ TestThing.test_fail _____", ok: true, sepchar: '_', title: "TestThing.test_fail", rightFill: "_____"},
		{line: "===== short right ===", ok: false},
		{line: "=====", ok: false},
		{line: "===== =====", ok: false},
		{line: "plain text", ok: false},
		{line: "=====no space=====", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			c, _, title, rightFill, ok := parseSep(tt.line)
			if ok != tt.ok {
				t.Fatalf("Expected ok=%v, got %v", tt.ok, ok)
			}
			if !ok {
				return
			}
			if c != tt.sepchar || title != tt.title || rightFill != tt.rightFill {
				t.Fatalf("Expected (%c, %q, %q), got (%c, %q, %q)", tt.sepchar, tt.title, tt.rightFill, c, title, rightFill)
			}
		})
	}
}

func TestIsEntrySeparator(t *testing.T) {
	assert.True(t, isEntrySeparator("_ _ _ _ _"))
	assert.True(t, isEntrySeparator("_ _ _ _ _ "))
	assert.False(t, isEntrySeparator("_____"))
	assert.False(t, isEntrySeparator("_ x _"))
	assert.False(t, isEntrySeparator("_"))
}

func TestMainColor(t *testing.T) {
	tests := []struct {
		name     string
		seen     map[string]int
		last     bool
		expected string
	}{
		{"Nothing yet", map[string]int{}, false, "green"},
		{"Nothing at the end", map[string]int{}, true, "yellow"},
		{"Passed", map[string]int{"passed": 2}, true, "green"},
		{"Skipped only before the end", map[string]int{"skipped": 1}, false, "green"},
		{"Skipped only at the end", map[string]int{"skipped": 1}, true, "yellow"},
		{"Warnings win over passed", map[string]int{"passed": 1, "warnings": 1}, true, "yellow"},
		{"Xpassed", map[string]int{"passed": 1, "xpassed": 1}, true, "yellow"},
		{"Failed wins", map[string]int{"failed": 1, "warnings": 3}, true, "red"},
		{"Error", map[string]int{"error": 1}, false, "red"},
		{"Unknown category", map[string]int{"passed": 1, "rerun": 1}, true, "yellow"},
		{"Zero counts ignored", map[string]int{"passed": 1, "rerun": 0, "failed": 0}, true, "green"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mainColor(tt.seen, tt.last); got != tt.expected {
				t.Fatalf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestEmptyInput(t *testing.T) {
	l := NewLexer(nil, nil)
	assert.Empty(t, l.Tokenize())
	assert.NoError(t, l.Err())
}

func TestNoTrailingNewline(t *testing.T) {
	_, tokens := lex(t, "1 passed in 0.01s")
	assert.Equal(t, boldGreen, styleOf(t, tokens, "1 passed"))
	assert.Equal(t, green, styleOf(t, tokens, " in 0.01s"))
}

func TestHeader(t *testing.T) {
	input := transcript(
		sep("=", "test session starts"),
		"platform linux -- Python 3.12.3, pytest-8.3.3, pluggy-1.5.0 -- /usr/bin/python3",
		"cachedir: .pytest_cache",
		"rootdir: /tmp/x",
		"collecting ... collected 1 item",
		"",
		progress("f.py::test PASSED", "[100%]"),
	)
	l, tokens := lex(t, input)

	assert.Equal(t, bold, styleOf(t, tokens, "test session starts"))
	assert.Equal(t, plain, styleOf(t, tokens, "platform linux"))
	assert.Equal(t, bold, styleOf(t, tokens, "collecting ... "))
	assert.Equal(t, plain, styleOf(t, tokens, "collected 1 item"))
	assert.Equal(t, types.RoleCollecting, roleOf(t, tokens, "collected 1 item"))
	assert.Equal(t, 1, l.Summary.Collected)
	assert.Equal(t, []Mode{ModeHeader, ModeBody}, l.Summary.Modes())
}

func TestNoTests(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name: "Normal",
			input: transcript(
				sep("=", "test session starts"),
				"platform linux -- Python 3.12.3, pytest-8.3.3, pluggy-1.5.0",
				"rootdir: /tmp/x",
				"collected 0 items",
				"",
				sep("=", "no tests ran in 0.00s"),
			),
		},
		{
			name:  "Quiet",
			input: transcript("", "no tests ran in 0.00s"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, tokens := lex(t, tt.input)

			assert.Equal(t, yellow, styleOf(t, tokens, "no tests ran"))
			assert.Equal(t, types.RoleNoTests, roleOf(t, tokens, "no tests ran"))
			assert.Equal(t, yellow, styleOf(t, tokens, " in 0.00s"))
			assert.True(t, l.Summary.Visited(ModeNoTests))
			assert.False(t, l.Summary.Visited(ModeFinalLine))
			assert.False(t, l.Summary.Visited(ModeBody))
		})
	}
}

func TestLetterLines(t *testing.T) {
	input := transcript(
		progress("f.py ..", "[ 50%]"),
		progress("g.py sF", "[100%]"),
	)
	l, tokens := lex(t, input)

	assert.Equal(t, plain, styleOf(t, tokens, "f.py "))
	assert.Equal(t, types.RoleTestPath, roleOf(t, tokens, "f.py "))
	assert.Equal(t, green, styleOf(t, tokens, ".."))
	assert.Equal(t, green, styleOf(t, tokens, "[ 50%]"))
	assert.Equal(t, yellow, styleOf(t, tokens, "s"))
	assert.Equal(t, red, styleOf(t, tokens, "F"))
	assert.Equal(t, red, styleOf(t, tokens, "[100%]"))
	assert.Equal(t, map[string]int{"passed": 2, "skipped": 1, "failed": 1}, l.Summary.Outcomes)
}

func TestQuietLettersWithoutPath(t *testing.T) {
	_, tokens := lex(t, transcript(progress("xX", "[100%]")))

	assert.Equal(t, yellow, styleOf(t, tokens, "xX"))
	assert.Equal(t, yellow, styleOf(t, tokens, "[100%]"))
}

func TestVerboseLines(t *testing.T) {
	input := transcript(
		progress("f.py::test_skip SKIPPED (no database)", "[ 50%]"),
		progress("f.py::test PASSED", "[100%]"),
	)
	l, tokens := lex(t, input, WithVerbosity(types.VerbosityVerbose))

	assert.Equal(t, plain, styleOf(t, tokens, "f.py::test_skip "))
	assert.Equal(t, yellow, styleOf(t, tokens, "SKIPPED"))
	assert.Equal(t, types.RoleOutcomeWord, roleOf(t, tokens, "SKIPPED"))
	assert.Equal(t, plain, styleOf(t, tokens, " (no database)"))
	assert.Equal(t, green, styleOf(t, tokens, "[ 50%]"))
	assert.Equal(t, green, styleOf(t, tokens, "PASSED"))
	assert.Equal(t, green, styleOf(t, tokens, "[100%]"))
	assert.Equal(t, 2, l.Summary.Outcomes["passed"]+l.Summary.Outcomes["skipped"])
}

func TestWarningsAttribution(t *testing.T) {
	summary := []string{
		"",
		sep("=", "warnings summary"),
		"f.py::test",
		"  /tmp/x/f.py:3: UserWarning: WARNING!",
		`    warnings.warn(UserWarning("WARNING!"))`,
		"",
		"-- Docs: https://docs.pytest.org/en/stable/how-to/capture-warnings.html",
		sep("=", "1 passed, 1 warning in 0.01s"),
	}

	tests := []struct {
		name     string
		body     string
		progress types.Style
	}{
		{"Letters", progress("f.py .", "[100%]"), green},
		{"Verbose", progress("f.py::test PASSED", "[100%]"), green},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, tokens := lex(t, transcript(append([]string{tt.body}, summary...)...))

			assert.Equal(t, tt.progress, styleOf(t, tokens, "[100%]"))
			assert.Equal(t, yellow, styleOf(t, tokens, "warnings summary"))
			assert.Equal(t, plain, exact(t, tokens, "f.py::test").Style)
			assert.Equal(t, types.RoleWarningEntry, roleOf(t, tokens, "UserWarning: WARNING!"))
			assert.Equal(t, green, styleOf(t, tokens, "1 passed"))
			assert.Equal(t, boldYel, styleOf(t, tokens, "1 warning"))
			assert.Equal(t, yellow, styleOf(t, tokens, " in 0.01s"))
			assert.True(t, l.Summary.Visited(ModeWarningsSection))
		})
	}
}

func TestQuietWarningsBeforeStatsLine(t *testing.T) {
	input := transcript(
		progress(".", "[100%]"),
		sep("=", "warnings summary"),
		"f.py::test",
		"  /tmp/x/f.py:3: UserWarning: WARNING!",
		`    warnings.warn(UserWarning("WARNING!"))`,
		"",
		"-- Docs: https://docs.pytest.org/en/stable/how-to/capture-warnings.html",
		"1 passed, 1 warning in 0.01s",
	)
	l, tokens := lex(t, input, WithVerbosity(types.VerbosityQuiet))

	assert.Equal(t, green, styleOf(t, tokens, "."))
	assert.Equal(t, green, styleOf(t, tokens, "[100%]"))
	assert.Equal(t, boldYel, styleOf(t, tokens, "1 warning"))
	assert.Equal(t, map[string]int{"passed": 1, "warnings": 1}, l.Summary.Counts)
}

func TestWarningsOutsideTests(t *testing.T) {
	input := transcript(
		progress("f.py .", "[ 50%]"),
		progress("g.py .", "[100%]"),
		"",
		sep("=", "warnings summary"),
		"f.py:1",
		"  /tmp/x/f.py:1: DeprecationWarning: old",
		"",
		sep("=", "2 passed, 1 warning in 0.01s"),
	)
	_, tokens := lex(t, input)

	assert.Equal(t, yellow, styleOf(t, tokens, "[ 50%]"))
	assert.Equal(t, yellow, styleOf(t, tokens, "[100%]"))
}

func TestWarnedFileBeforeProgress(t *testing.T) {
	input := transcript(
		progress("f.py .", "[ 50%]"),
		progress("g.py .", "[100%]"),
		"",
		sep("=", "warnings summary"),
		"g.py::test",
		"  /tmp/x/g.py:3: UserWarning: WARNING!",
		"",
		sep("=", "2 passed, 1 warning in 0.01s"),
	)
	_, tokens := lex(t, input)

	assert.Equal(t, green, styleOf(t, tokens, "[ 50%]"))
	assert.Equal(t, green, styleOf(t, tokens, "[100%]"))
	assert.Equal(t, yellow, styleOf(t, tokens, " in 0.01s"))
}

func TestFailures(t *testing.T) {
	input := transcript(
		progress("f.py F", "[100%]"),
		"",
		sep("=", "FAILURES"),
		sep("_", "test_parse"),
		"",
		"    def test_parse():",
		"        try:",
		">           parse(\"x\")",
		"",
		"f.py:9: ",
		"_ _ _ _ _ _ _ _ _ _",
		"",
		"s = 'x'",
		"",
		"    def parse(s):",
		">       return int(s)",
		"E       ValueError: invalid literal for int() with base 10: 'x'",
		"",
		"f.py:2: ValueError",
		"",
		"The above exception was the direct cause of the following exception:",
		"",
		"    def test_parse():",
		">           raise RuntimeError(\"bad input\") from exc",
		"E           RuntimeError: bad input",
		"",
		"f.py:11: RuntimeError",
		sep("-", "Captured stdout call"),
		"parsing",
		"E   not an exception line",
		"=== not a rule ===",
		sep("=", "short test summary info"),
		"FAILED f.py::test_parse - RuntimeError: bad input",
		sep("=", "1 failed in 0.03s"),
	)
	l, tokens := lex(t, input)

	assert.Equal(t, plain, styleOf(t, tokens, "FAILURES"))
	assert.Equal(t, boldRed, styleOf(t, tokens, "test_parse ____"))
	assert.Equal(t, types.RoleFailureBanner, roleOf(t, tokens, "test_parse ____"))
	assert.Equal(t, plain, styleOf(t, tokens, "    def parse(s):"))
	assert.Equal(t, plain, styleOf(t, tokens, "_ _ _ _"))
	assert.Equal(t, boldRed, styleOf(t, tokens, "E       ValueError"))
	assert.Equal(t, types.RoleTracebackExceptionLine, roleOf(t, tokens, "E       ValueError"))
	assert.Equal(t, plain, styleOf(t, tokens, ":2: ValueError"))
	assert.Equal(t, plain, styleOf(t, tokens, ":9: "))
	assert.Equal(t, yellow, styleOf(t, tokens, "direct cause"))
	assert.Equal(t, types.RoleChainMessage, roleOf(t, tokens, "direct cause"))
	assert.Equal(t, boldRed, styleOf(t, tokens, "E           RuntimeError"))
	assert.Equal(t, plain, styleOf(t, tokens, "Captured stdout call"))
	assert.Equal(t, plain, styleOf(t, tokens, "E   not an exception line"))
	assert.Equal(t, types.RoleCapturedOutput, roleOf(t, tokens, "E   not an exception line"))
	assert.Equal(t, plain, styleOf(t, tokens, "=== not a rule ==="))
	assert.Equal(t, cyan, styleOf(t, tokens, "short test summary info"))
	assert.Equal(t, red, styleOf(t, tokens, "FAILED"))
	assert.Equal(t, plain, styleOf(t, tokens, " f.py::test_parse - RuntimeError"))
	assert.Equal(t, boldRed, styleOf(t, tokens, "1 failed"))
	assert.Equal(t, red, styleOf(t, tokens, " in 0.03s"))

	for _, token := range tokens {
		if strings.HasPrefix(token.Text, "f.py") && token.Role == types.RoleTracebackFileLine {
			assert.Equal(t, boldRed, token.Style)
		}
	}

	assert.Equal(t, []string{"test_parse"}, l.Summary.Failures)
	assert.Equal(t, map[string]int{"FAILED": 1}, l.Summary.SummaryEntries)
	assert.Equal(t, map[string]int{"failed": 1}, l.Summary.Counts)
	assert.True(t, l.Summary.Visited(ModeTracebackFrame))
	assert.True(t, l.Summary.Visited(ModeShortSummary))
	assert.NoError(t, l.Err())
}

func TestMultilineExceptionEndsAtBlank(t *testing.T) {
	input := transcript(
		progress("f.py F", "[100%]"),
		"",
		sep("=", "FAILURES"),
		sep("_", "test_answer"),
		"",
		"    def test_answer():",
		">       assert inc(3) == 5",
		"E       assert 4 == 5",
		" +  where 4 = inc(3)",
		"",
		"f.py:8: AssertionError",
	)
	_, tokens := lex(t, input)

	assert.Equal(t, boldRed, styleOf(t, tokens, " +  where 4 = inc(3)"))
	assert.Equal(t, plain, styleOf(t, tokens, ">       assert inc(3) == 5"))
}

func TestPassesBannerIsGreen(t *testing.T) {
	input := transcript(
		progress("f.py .", "[100%]"),
		"",
		sep("=", "PASSES"),
		sep("_", "test_ok"),
	)
	l, tokens := lex(t, input)

	assert.Equal(t, boldGreen, styleOf(t, tokens, "test_ok"))
	assert.Empty(t, l.Summary.Failures)
}

func TestFixtureLookup(t *testing.T) {
	input := transcript(
		progress("f.py E", "[100%]"),
		"",
		sep("=", "ERRORS"),
		sep("_", "ERROR at setup of test"),
		"file /tmp/x/f.py, line 1",
		"  def test(x): pass",
		"E       fixture 'x' not found",
		">       available fixtures: cache, capfd",
		">       use 'pytest --fixtures [testpath]' for help on them.",
		"",
		"/tmp/x/f.py:1",
		sep("=", "1 error in 0.01s"),
	)
	_, tokens := lex(t, input)

	assert.Equal(t, boldRed, styleOf(t, tokens, "ERROR at setup of test"))
	assert.Equal(t, plain, styleOf(t, tokens, "file /tmp/x/f.py, line 1"))
	assert.Equal(t, plain, styleOf(t, tokens, "  def test(x): pass"))
	assert.Equal(t, red, styleOf(t, tokens, "fixture 'x' not found"))
	assert.Equal(t, red, styleOf(t, tokens, "available fixtures"))
	assert.Equal(t, red, styleOf(t, tokens, "--fixtures [testpath]"))
	assert.Equal(t, plain, styleOf(t, tokens, "/tmp/x/f.py:1"))
	assert.Equal(t, boldRed, styleOf(t, tokens, "1 error"))
}

func TestCollectionError(t *testing.T) {
	input := transcript(
		"",
		sep("=", "ERRORS"),
		sep("_", "ERROR collecting f.py"),
		"<frozen importlib._bootstrap>:1387: in _gcd_import",
		"    ???",
		"E   SyntaxError: '(' was never closed",
		sep("=", "short test summary info"),
		"ERROR f.py",
		sep("!", "Interrupted: 1 error during collection"),
		sep("=", "1 error in 0.08s"),
	)
	l, tokens := lex(t, input)

	assert.Equal(t, plain, styleOf(t, tokens, "ERRORS"))
	assert.Equal(t, boldRed, styleOf(t, tokens, "ERROR collecting f.py"))
	assert.Equal(t, red, styleOf(t, tokens, "in _gcd_import"))
	assert.Equal(t, red, styleOf(t, tokens, "    ???"))
	assert.Equal(t, types.RoleCollectionError, roleOf(t, tokens, "SyntaxError"))
	assert.Equal(t, cyan, styleOf(t, tokens, "short test summary info"))
	assert.Equal(t, red, exact(t, tokens, "ERROR").Style)
	assert.Equal(t, plain, styleOf(t, tokens, "Interrupted"))
	assert.Equal(t, red, styleOf(t, tokens, " in 0.08s"))
	assert.Equal(t, boldRed, exact(t, tokens, "1 error").Style)

	assert.Equal(t, []string{"f.py"}, l.Summary.CollectionErrors)
	assert.True(t, l.Summary.Visited(ModeCollectionError))
	assert.False(t, l.Summary.Visited(ModeBody))
}

func TestCollectedWithErrors(t *testing.T) {
	input := transcript(
		sep("=", "test session starts"),
		"collected 0 items / 1 error",
		"",
		sep("=", "ERRORS"),
		sep("_", "ERROR collecting f.py"),
		"E   ImportError: no module",
	)
	l, tokens := lex(t, input)

	assert.Equal(t, red, styleOf(t, tokens, "ImportError"))
	assert.False(t, l.Summary.Visited(ModeBody))
	assert.True(t, l.Summary.Visited(ModeCollectionError))
}

func TestFinalLineParts(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected map[string]types.Style
	}{
		{
			name: "Red session",
			line: "= 1 failed, 1 passed, 1 skipped in 0.01s =",
			expected: map[string]types.Style{
				"1 failed":  boldRed,
				"1 passed":  green,
				"1 skipped": yellow,
				" in 0.01s": red,
			},
		},
		{
			name: "Yellow session",
			line: sep("=", "1 passed, 1 xpassed in 0.01s"),
			expected: map[string]types.Style{
				"1 passed":  green,
				"1 xpassed": boldYel,
				" in 0.01s": yellow,
			},
		},
		{
			name: "Quiet form",
			line: "2 passed, 3 deselected in 0.01s",
			expected: map[string]types.Style{
				"2 passed":     boldGreen,
				"3 deselected": yellow,
			},
		},
		{
			name: "Long duration",
			line: sep("=", "1 passed in 75.00s (0:01:15)"),
			expected: map[string]types.Style{
				" in 75.00s (0:01:15)": green,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, tokens := lex(t, transcript(tt.line))
			for text, style := range tt.expected {
				if got := styleOf(t, tokens, text); got != style {
					t.Fatalf("Expected %q to be %s, got %s", text, style, got)
				}
			}
		})
	}
}

func TestCommasArePlain(t *testing.T) {
	_, tokens := lex(t, transcript("= 1 failed, 1 passed in 0.01s ="))

	comma := exact(t, tokens, ", ")
	assert.Equal(t, plain, comma.Style)
	assert.Equal(t, types.RoleNone, comma.Role)
}

func TestSpecialRules(t *testing.T) {
	input := transcript(
		progress("f.py .F", "[ 66%]"),
		"",
		sep("!", "stopping after 1 failures"),
		sep("=", "..."),
	)
	_, tokens := lex(t, input)

	assert.Equal(t, red, styleOf(t, tokens, "stopping after"))
	assert.Equal(t, red, styleOf(t, tokens, " ... "))
}

func TestStrict(t *testing.T) {
	input := transcript("weird FAILED line here", "1 failed in 0.01s")

	l, tokens := lex(t, input)
	assert.NoError(t, l.Err())
	assert.Equal(t, plain, styleOf(t, tokens, "weird FAILED"))

	strict, _ := lex(t, input, WithStrict(true))
	err := strict.Err()
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindUnrecognized))
	assert.Len(t, strict.Unrecognized(), 1)
	assert.Contains(t, err.Error(), "weird FAILED line here")
}

func TestStrictIgnoresFreeText(t *testing.T) {
	input := transcript(
		progress("f.py F", "[100%]"),
		"",
		sep("=", "FAILURES"),
		sep("_", "test"),
		"    print('1 passed in 0.01s')",
		"E   AssertionError: ERROR here",
	)
	l, _ := lex(t, input, WithStrict(true))
	assert.NoError(t, l.Err())
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "traceback-frame", ModeTracebackFrame.String())
	assert.Equal(t, "Mode(42)", Mode(42).String())
}

func TestStats(t *testing.T) {
	l, tokens := lex(t, transcript(progress("f.py .", "[100%]")))

	stats := l.GetStats()
	assert.Equal(t, len(tokens), stats.TotalTokens)
	assert.Equal(t, 1, stats.TokensByRole["status-letter"])
	assert.Equal(t, 1, stats.TokensByRole["progress"])
}

func TestTokenizeTwice(t *testing.T) {
	l, first := lex(t, transcript(progress("f.py .F", "[100%]"), sep("=", "1 failed, 1 passed in 0.01s")))
	outcomes := map[string]int{"passed": 1, "failed": 1}
	require.Equal(t, outcomes, l.Summary.Outcomes)

	assert.Equal(t, first, l.Tokenize())
	assert.Equal(t, outcomes, l.Summary.Outcomes)
}
