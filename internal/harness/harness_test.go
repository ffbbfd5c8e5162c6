package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badele/pytesthl/internal/errors"
	"github.com/badele/pytesthl/internal/exporter"
	"github.com/badele/pytesthl/internal/importer/ansi"
	"github.com/badele/pytesthl/internal/importer/pytest"
	"github.com/badele/pytesthl/internal/session"
	"github.com/badele/pytesthl/internal/types"
)

var verbosities = []types.Verbosity{
	types.VerbosityQuiet,
	types.VerbosityNormal,
	types.VerbosityVerbose,
}

func colored(t *testing.T, name string, v types.Verbosity) []byte {
	t.Helper()
	s, ok := session.Scenario(name)
	require.True(t, ok, "unknown scenario %q", name)
	return []byte(s.Render(v, true))
}

func lexScenario(t *testing.T, name string, v types.Verbosity) *pytest.Lexer {
	t.Helper()
	l := pytest.NewLexer([]byte(ansi.Strip(colored(t, name, v))), nil, pytest.WithVerbosity(v))
	l.Tokenize()
	return l
}

func withRole(tokens []types.Token, role types.Role) []types.Token {
	var out []types.Token
	for _, token := range tokens {
		if token.Role == role {
			out = append(out, token)
		}
	}
	return out
}

func TestScenariosAreEquivalent(t *testing.T) {
	for _, name := range session.ScenarioNames() {
		for _, v := range verbosities {
			t.Run(fmt.Sprintf("%s/%s", name, v), func(t *testing.T) {
				capture := colored(t, name, v)

				res, err := Compare(capture, WithVerbosity(v), WithStrict(true))
				require.NoError(t, err)
				if !res.Equal {
					t.Fatalf("Expected equal renderings, got diff (-ansi +plain):\n%s", res.Diff)
				}
				assert.NoError(t, res.Err())
				assert.NotEmpty(t, res.ANSI)
			})
		}
	}
}

func TestScenariosAreLossless(t *testing.T) {
	for _, name := range session.ScenarioNames() {
		for _, v := range verbosities {
			t.Run(fmt.Sprintf("%s/%s", name, v), func(t *testing.T) {
				assert.NoError(t, CheckLossless(colored(t, name, v)))
			})
		}
	}
}

func TestNormalizedRenderingsAreIdempotent(t *testing.T) {
	for _, name := range session.ScenarioNames() {
		t.Run(name, func(t *testing.T) {
			res, err := Compare(colored(t, name, types.VerbosityNormal))
			require.NoError(t, err)
			assert.Equal(t, res.ANSI, exporter.Normalize(res.ANSI))
			assert.Equal(t, res.Plain, exporter.Normalize(res.Plain))
		})
	}
}

// Colored and uncolored runs only differ where pytest measures widths on
// text holding escape codes, as in the short summary of report_chars.
func TestCompareTranscriptsOfTwoRuns(t *testing.T) {
	for _, name := range []string{"simple_test_passing", "different_test_types", "collection_failure_syntax_error"} {
		t.Run(name, func(t *testing.T) {
			s, _ := session.Scenario(name)
			res, err := CompareTranscripts(
				[]byte(s.Render(types.VerbosityNormal, true)),
				[]byte(s.Render(types.VerbosityNormal, false)),
			)
			require.NoError(t, err)
			if !res.Equal {
				t.Fatalf("Expected equal renderings, got diff:\n%s", res.Diff)
			}
		})
	}
}

func TestMismatch(t *testing.T) {
	// the summary rule is cyan in pytest, not green
	capture := []byte("\x1b[32m\x1b[1m= short test summary info =\x1b[0m\n")
	res, err := Compare(capture)
	require.NoError(t, err)

	assert.False(t, res.Equal)
	assert.Contains(t, res.Diff, "pass-count")
	assert.Contains(t, res.Diff, "summary-rule")

	err = res.Err()
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindMismatch))
	assert.Equal(t, 3, errors.GetExitCode(err))
}

func TestStrictComparison(t *testing.T) {
	capture := []byte("weird FAILED line here\n")

	_, err := Compare(capture)
	assert.NoError(t, err)

	_, err = Compare(capture, WithStrict(true))
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindUnrecognized))
}

func TestCheckLossless(t *testing.T) {
	assert.NoError(t, CheckLossless([]byte("\x1b[1m== x ==\x1b[0m\nplain\n")))
	// erase line, as written after "collecting ... " on a terminal
	assert.NoError(t, CheckLossless([]byte("collecting ... \x1b[2Kcollected 1 item\n\x1b[32m.\x1b[0m\n")))
	assert.NoError(t, CheckLossless([]byte("\x1b[?25lmode\x1b[1Ahome\n")))
	assert.NoError(t, Check([]byte("\x1b[32m\x1b[32m\x1b[1m1 passed\x1b[0m\x1b[32m in 0.01s\x1b[0m\x1b[0m\n")))
}

func TestSinglePassingTest(t *testing.T) {
	l := lexScenario(t, "simple_test_passing", types.VerbosityQuiet)

	counts := withRole(l.Tokens, types.RoleCount)
	require.Len(t, counts, 1)
	assert.Equal(t, "1 passed", counts[0].Text)
	assert.Equal(t, types.Style("pass-count"), counts[0].Style)
	assert.False(t, l.Summary.Visited(pytest.ModeFailureBlock))
}

func TestWarningDoesNotFail(t *testing.T) {
	l := lexScenario(t, "warnings", types.VerbosityQuiet)

	letters := withRole(l.Tokens, types.RoleStatusLetter)
	require.Len(t, letters, 1)
	assert.Equal(t, ".", letters[0].Text)
	assert.Equal(t, types.Style("status-letter-pass"), letters[0].Style)

	assert.True(t, l.Summary.Visited(pytest.ModeWarningsSection))
	entries := types.Text(withRole(l.Tokens, types.RoleWarningEntry))
	assert.Contains(t, entries, "UserWarning: WARNING!")

	for _, count := range withRole(l.Tokens, types.RoleCount) {
		switch count.Text {
		case "1 passed":
			assert.Equal(t, types.Style("status-letter-pass"), count.Style)
		case "1 warning":
			assert.Equal(t, types.Style("skip-count"), count.Style)
		default:
			t.Fatalf("Expected a pass or warning count, got %q", count.Text)
		}
	}
	assert.Equal(t, map[string]int{"passed": 1, "warnings": 1}, l.Summary.Counts)
}

func TestMixedOutcomes(t *testing.T) {
	l := lexScenario(t, "different_test_types", types.VerbosityQuiet)

	assert.Equal(t, []string{"ERROR at setup of test_error", "test_answer", "test_fail_stack"}, l.Summary.Failures)

	failing := l.Summary.Outcomes["failed"] + l.Summary.Outcomes["error"]
	entries := 0
	for _, n := range l.Summary.SummaryEntries {
		entries += n
	}
	assert.Equal(t, 3, failing)
	assert.Equal(t, failing, entries)

	assert.Equal(t, map[string]int{
		"passed": 2, "failed": 2, "error": 1, "skipped": 1, "xfailed": 1, "xpassed": 1,
	}, l.Summary.Outcomes)
	// in quiet runs outcome words only start short summary entries
	assert.Len(t, withRole(l.Tokens, types.RoleOutcomeWord), entries)
}

func TestMixedOutcomesVerbose(t *testing.T) {
	quiet := lexScenario(t, "different_test_types", types.VerbosityQuiet)
	verbose := lexScenario(t, "different_test_types", types.VerbosityVerbose)

	assert.Empty(t, withRole(verbose.Tokens, types.RoleStatusLetter))
	// one word per test, then the short summary entries
	words := withRole(verbose.Tokens, types.RoleOutcomeWord)
	require.Len(t, words, 8+3)
	assert.Equal(t, "FAILED", words[0].Text)
	assert.Equal(t, types.Style("status-letter-fail"), words[0].Style)

	assert.Equal(t, quiet.Summary.Outcomes, verbose.Summary.Outcomes)
	assert.Equal(t, quiet.Summary.Failures, verbose.Summary.Failures)
	assert.Equal(t, quiet.Summary.Counts, verbose.Summary.Counts)
}

func TestNoTestsCollected(t *testing.T) {
	for _, v := range verbosities {
		t.Run(v.String(), func(t *testing.T) {
			l := lexScenario(t, "no_tests", v)

			assert.Equal(t, []pytest.Mode{pytest.ModeHeader, pytest.ModeNoTests}, l.Summary.Modes())
			assert.NotEmpty(t, types.Text(l.Tokens))
			assert.Empty(t, withRole(l.Tokens, types.RoleCount))
			assert.True(t, strings.Contains(types.Text(l.Tokens), "no tests ran"))
		})
	}
}

func TestCollectionFailure(t *testing.T) {
	for _, v := range verbosities {
		t.Run(v.String(), func(t *testing.T) {
			l := lexScenario(t, "collection_failure_syntax_error", v)

			assert.True(t, l.Summary.Visited(pytest.ModeCollectionError))
			assert.False(t, l.Summary.Visited(pytest.ModeFailureBlock))
			assert.False(t, l.Summary.Visited(pytest.ModeTracebackFrame))
			assert.False(t, l.Summary.Visited(pytest.ModeBody))
			assert.Equal(t, []string{"f.py"}, l.Summary.CollectionErrors)
			assert.Empty(t, l.Summary.Failures)
		})
	}
}
