package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/badele/pytesthl/internal/errors"
	"github.com/badele/pytesthl/internal/exporter"
	"github.com/badele/pytesthl/internal/harness"
	"github.com/badele/pytesthl/internal/importer/ansi"
	"github.com/badele/pytesthl/internal/importer/pytest"
	"github.com/badele/pytesthl/internal/logging"
	"github.com/badele/pytesthl/internal/session"
	"github.com/badele/pytesthl/internal/types"
	"github.com/badele/pytesthl/pkg/pytesthl"
)

type Globals struct {
	Styles    string `help:"YAML style table replacing the pytest one." env:"PYTESTHL_STYLES" type:"existingfile" placeholder:"FILE"`
	Encoding  string `help:"Encoding of the input (${enum})." enum:"utf8,cp437,cp850,iso-8859-1" default:"utf8"`
	Debug     bool   `help:"Log the lines the grammar falls back on." env:"PYTESTHL_DEBUG"`
	Strict    bool   `help:"Fail on outcome-shaped lines the grammar does not recognize."`
	Verbosity string `help:"Verbosity the transcript was produced with (${enum})." enum:"auto,quiet,normal,verbose" default:"auto"`

	out io.Writer `kong:"-"`
}

type CLI struct {
	Globals

	Render     RenderCmd     `cmd:"" help:"Highlight a transcript."`
	Compare    CompareCmd    `cmd:"" help:"Check that escape codes and grammar agree on a colored capture."`
	Tokens     TokensCmd     `cmd:"" help:"Display the tokens of a transcript."`
	Document   DocumentCmd   `cmd:"" help:"Write a transcript as a standalone HTML page."`
	Stylesheet StylesheetCmd `cmd:"" help:"Write the CSS of the style table."`
	Demo       DemoCmd       `cmd:"" help:"Print an emulated pytest session."`
}

func (g *Globals) table() (*types.StyleTable, error) {
	if g.Styles == "" {
		return types.DefaultStyleTable(), nil
	}
	return types.LoadStyleTable(g.Styles)
}

func (g *Globals) verbosity() types.Verbosity {
	v, err := types.ParseVerbosity(g.Verbosity)
	if err != nil {
		return types.VerbosityAuto
	}
	return v
}

// read loads a file, or stdin when path is empty, as UTF-8 with LF line
// endings.
func (g *Globals) read(path string) ([]byte, error) {
	var data []byte
	var err error

	if path == "" {
		stat, err := os.Stdin.Stat()
		if err != nil {
			return nil, errors.Input(err, "checking stdin")
		}
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			return nil, errors.New("no input: pass a file or pipe a transcript")
		}
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, errors.Input(err, "reading from stdin")
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, errors.Input(err, "reading file")
		}
	}

	data, err = pytesthl.ConvertToUTF8(data, g.Encoding)
	if err != nil {
		return nil, errors.Input(err, "converting input")
	}
	return pytesthl.NormalizeInput(data), nil
}

// tokenize runs the decoder or the lexer over data. The lexer is returned
// too so that callers can reach its summary.
func (g *Globals) tokenize(from string, data []byte, table *types.StyleTable) (types.TokenizerWithStats, *pytest.Lexer, error) {
	if from == "ansi" {
		d := ansi.NewDecoder(data, table)
		d.Tokenize()
		if n := d.GetStats().MalformedSequences; n > 0 {
			logging.Warn("%d malformed escape sequences kept as text", n)
		}
		return d, nil, nil
	}

	l := pytest.NewLexer(data, table, pytest.WithStrict(g.Strict), pytest.WithVerbosity(g.verbosity()))
	l.Tokenize()
	if err := l.Err(); err != nil {
		return nil, nil, err
	}
	return l, l, nil
}

/////////////////////////////////////////////////////////////////////////////
// COMMANDS
/////////////////////////////////////////////////////////////////////////////

type RenderCmd struct {
	From      string `help:"Read escape codes or plain text (${enum})." enum:"ansi,plain" default:"ansi"`
	To        string `help:"Output format (${enum})." enum:"markup,ansi,document" default:"markup"`
	Normalize bool   `help:"Normalize whitespace around markup tags."`
	File      string `arg:"" optional:"" help:"Transcript to read, stdin when omitted." type:"path"`
}

func (c *RenderCmd) Run(g *Globals) error {
	table, err := g.table()
	if err != nil {
		return err
	}
	data, err := g.read(c.File)
	if err != nil {
		return err
	}
	tok, _, err := g.tokenize(c.From, data, table)
	if err != nil {
		return err
	}
	tokens := tok.Tokenize()

	switch c.To {
	case "ansi":
		_, err = io.WriteString(g.out, exporter.ExportANSI(tokens, table))
	case "document":
		err = exporter.ExportDocument(g.out, tokens, table)
	default:
		markup := exporter.RenderMarkup(tokens)
		if c.Normalize {
			markup = exporter.Normalize(markup)
		}
		_, err = io.WriteString(g.out, markup)
	}
	return err
}

type CompareCmd struct {
	Plain    string `help:"Plain transcript of a second, uncolored run. Defaults to the stripped capture." type:"existingfile" placeholder:"FILE"`
	Lossless bool   `help:"Also check that decoder and lexer keep every character of the capture."`
	File     string `arg:"" optional:"" help:"Colored capture to read, stdin when omitted." type:"path"`
}

func (c *CompareCmd) Run(g *Globals) error {
	table, err := g.table()
	if err != nil {
		return err
	}
	colored, err := g.read(c.File)
	if err != nil {
		return err
	}

	opts := []harness.Option{
		harness.WithTable(table),
		harness.WithVerbosity(g.verbosity()),
		harness.WithStrict(g.Strict),
	}

	if c.Lossless && c.Plain == "" {
		if err := harness.Check(colored, opts...); err != nil {
			return err
		}
		fmt.Fprintln(g.out, "renderings match")
		return nil
	}
	if c.Lossless {
		if err := harness.CheckLossless(colored, opts...); err != nil {
			return err
		}
	}

	var res harness.Result
	if c.Plain != "" {
		plain, err := g.read(c.Plain)
		if err != nil {
			return err
		}
		res, err = harness.CompareTranscripts(colored, plain, opts...)
		if err != nil {
			return err
		}
	} else {
		res, err = harness.Compare(colored, opts...)
		if err != nil {
			return err
		}
	}

	if res.Equal {
		fmt.Fprintln(g.out, "renderings match")
		return nil
	}
	return res.Err()
}

type TokensCmd struct {
	From  string `help:"Read escape codes or plain text (${enum})." enum:"ansi,plain" default:"plain"`
	JSON  bool   `short:"j" help:"Display tokens in JSON format."`
	Stats bool   `short:"s" help:"Display token statistics."`
	File  string `arg:"" optional:"" help:"Transcript to read, stdin when omitted." type:"path"`
}

func (c *TokensCmd) Run(g *Globals) error {
	table, err := g.table()
	if err != nil {
		return err
	}
	data, err := g.read(c.File)
	if err != nil {
		return err
	}
	tok, lexer, err := g.tokenize(c.From, data, table)
	if err != nil {
		return err
	}

	switch {
	case c.Stats:
		exporter.DisplayStats(g.out, tok.GetStats())
		return nil
	case c.JSON:
		var summary any
		if lexer != nil {
			summary = lexer.Summary
		}
		return exporter.TokensJSON(g.out, tok, summary)
	}

	name := c.File
	if name == "" {
		name = "stdin"
	}
	fmt.Fprintf(g.out, "=== %s: %d bytes ===\n", name, len(data))
	if lexer != nil {
		modes := make([]string, 0)
		for _, mode := range lexer.Summary.Modes() {
			modes = append(modes, mode.String())
		}
		fmt.Fprintf(g.out, "=== modes: %s ===\n", strings.Join(modes, ", "))
	}
	return exporter.ExportTokensToTable(tok.Tokenize(), g.out)
}

type DocumentCmd struct {
	From string `help:"Read escape codes or plain text (${enum})." enum:"ansi,plain" default:"ansi"`
	File string `arg:"" optional:"" help:"Transcript to read, stdin when omitted." type:"path"`
}

func (c *DocumentCmd) Run(g *Globals) error {
	render := RenderCmd{From: c.From, To: "document", File: c.File}
	return render.Run(g)
}

type StylesheetCmd struct {
	Classes bool `help:"Write the class stylesheet of the HTML document instead of tag rules."`
}

func (c *StylesheetCmd) Run(g *Globals) error {
	table, err := g.table()
	if err != nil {
		return err
	}
	if c.Classes {
		return exporter.ExportDocumentCSS(g.out, table)
	}
	_, err = io.WriteString(g.out, exporter.Stylesheet(table))
	return err
}

type DemoCmd struct {
	Color    bool   `help:"Write escape codes." default:"true" negatable:""`
	Check    bool   `help:"Compare both renderings of the session instead of printing it."`
	Args     bool   `help:"Print the pytest command line of the session."`
	Scenario string `arg:"" optional:"" help:"Session to emulate, lists them when omitted."`
}

func (c *DemoCmd) Run(g *Globals) error {
	if c.Scenario == "" {
		for _, name := range session.ScenarioNames() {
			fmt.Fprintln(g.out, name)
		}
		return nil
	}

	s, ok := session.Scenario(c.Scenario)
	if !ok {
		return errors.Configf("unknown scenario %q", c.Scenario)
	}

	v := g.verbosity()
	if v == types.VerbosityAuto {
		v = types.VerbosityNormal
	}

	if c.Args {
		fmt.Fprintln(g.out, "pytest "+strings.Join(s.Args(v), " "))
		return nil
	}

	if !c.Check {
		_, err := io.WriteString(g.out, s.Render(v, c.Color))
		return err
	}

	table, err := g.table()
	if err != nil {
		return err
	}
	err = harness.Check([]byte(s.Render(v, true)),
		harness.WithTable(table),
		harness.WithVerbosity(v),
		harness.WithStrict(g.Strict),
	)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.out, "%s (%s): renderings match\n", c.Scenario, v)
	return nil
}

/////////////////////////////////////////////////////////////////////////////
// MAIN
/////////////////////////////////////////////////////////////////////////////

func run(args []string, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("pytesthl"),
		kong.Description("Highlight pytest console transcripts from escape codes or from plain text."),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
	)
	if err != nil {
		return errors.Wrap(err, "building command line")
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return errors.Configf("%v", err)
	}

	logging.DebugEnabled = cli.Debug
	cli.out = stdout
	return ctx.Run(&cli.Globals)
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(errors.GetExitCode(err))
	}
}
