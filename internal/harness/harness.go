// Package harness checks that the two renderings of a pytest session agree:
// the escape codes of the colored capture decoded into styles, and the
// plain text of the same capture classified by the grammar lexer.
package harness

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/badele/pytesthl/internal/errors"
	"github.com/badele/pytesthl/internal/exporter"
	"github.com/badele/pytesthl/internal/importer/ansi"
	"github.com/badele/pytesthl/internal/importer/pytest"
	"github.com/badele/pytesthl/internal/types"
)

// csiRe matches complete CSI sequences, independently of the decoder.
var csiRe = regexp.MustCompile(`\x1b\[[0-?]*[ -/]*[@-~]`)

type config struct {
	table     *types.StyleTable
	verbosity types.Verbosity
	strict    bool
}

type Option func(*config)

func WithTable(table *types.StyleTable) Option {
	return func(c *config) {
		c.table = table
	}
}

func WithVerbosity(v types.Verbosity) Option {
	return func(c *config) {
		c.verbosity = v
	}
}

// WithStrict fails the comparison on the first outcome-shaped line the
// lexer could not classify.
func WithStrict(strict bool) Option {
	return func(c *config) {
		c.strict = strict
	}
}

func newConfig(opts []Option) config {
	c := config{table: types.DefaultStyleTable(), verbosity: types.VerbosityAuto}
	for _, opt := range opts {
		opt(&c)
	}
	if c.table == nil {
		c.table = types.DefaultStyleTable()
	}
	return c
}

// Result holds both normalized renderings and their line diff.
type Result struct {
	Equal bool
	ANSI  string
	Plain string
	Diff  string

	Summary pytest.Summary
}

// Err returns a mismatch error carrying the diff, or nil when both
// renderings agree.
func (r Result) Err() error {
	if r.Equal {
		return nil
	}
	return errors.Mismatch(r.Diff)
}

// Compare renders a colored capture through the decoder and its stripped
// text through the lexer, then compares the normalized markups.
func Compare(colored []byte, opts ...Option) (Result, error) {
	return CompareTranscripts(colored, []byte(ansi.Strip(colored)), opts...)
}

// CompareTranscripts compares a colored capture with a plain transcript of
// the same session, such as a second run without color.
func CompareTranscripts(colored, plain []byte, opts ...Option) (Result, error) {
	c := newConfig(opts)

	decoded := ansi.NewDecoder(colored, c.table).Tokenize()

	lexer := pytest.NewLexer(plain, c.table,
		pytest.WithVerbosity(c.verbosity),
		pytest.WithStrict(c.strict),
	)
	lexed := lexer.Tokenize()
	if err := lexer.Err(); err != nil {
		return Result{Summary: lexer.Summary}, err
	}

	res := Result{
		ANSI:    exporter.Normalize(exporter.RenderMarkup(decoded)),
		Plain:   exporter.Normalize(exporter.RenderMarkup(lexed)),
		Summary: lexer.Summary,
	}
	res.Diff = cmp.Diff(
		strings.SplitAfter(res.ANSI, "\n"),
		strings.SplitAfter(res.Plain, "\n"),
	)
	res.Equal = res.Diff == ""
	return res, nil
}

// CheckLossless verifies that the decoder keeps every visible character of
// the capture and that the lexer keeps every character of its text.
func CheckLossless(colored []byte, opts ...Option) error {
	c := newConfig(opts)

	decoded := types.Text(ansi.NewDecoder(colored, c.table).Tokenize())
	if want := csiRe.ReplaceAllString(string(colored), ""); decoded != want {
		return errors.Newf("decoder text differs from the stripped capture:\n%s", cmp.Diff(want, decoded))
	}

	lexed := types.Text(pytest.NewLexer([]byte(decoded), c.table).Tokenize())
	if lexed != decoded {
		return errors.Newf("lexer text differs from its input:\n%s", cmp.Diff(decoded, lexed))
	}
	return nil
}

// Check runs CheckLossless then Compare and returns the first failure.
func Check(colored []byte, opts ...Option) error {
	if err := CheckLossless(colored, opts...); err != nil {
		return err
	}

	res, err := Compare(colored, opts...)
	if err != nil {
		return fmt.Errorf("lexing plain transcript: %w", err)
	}
	return res.Err()
}
