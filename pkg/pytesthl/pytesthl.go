// Package pytesthl provides a public API for highlighting pytest console
// transcripts.
//
// This package provides functions to:
//   - Convert captures from legacy encodings (CP437, CP850, ISO-8859-1) to UTF-8
//   - Decode the escape codes of a colored capture into styled tokens
//   - Classify a plain transcript with the pytest console grammar
//   - Render tokens as markup, HTML documents or escape codes
//   - Check that both renderings of a session agree
//
// Example usage:
//
//	import "github.com/badele/pytesthl/pkg/pytesthl"
//
//	data, _ := os.ReadFile("session.txt")
//	utf8Data, _ := pytesthl.ConvertToUTF8(data, "utf8")
//	markup, _ := pytesthl.HighlightPlain(pytesthl.NormalizeInput(utf8Data), nil)
//	fmt.Println(markup)
package pytesthl

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/badele/pytesthl/internal/exporter"
	"github.com/badele/pytesthl/internal/harness"
	"github.com/badele/pytesthl/internal/importer/ansi"
	"github.com/badele/pytesthl/internal/importer/pytest"
	"github.com/badele/pytesthl/internal/types"
)

// Type aliases for public API
type (
	// Token is a classified run of transcript text
	Token = types.Token

	// Style names a highlighting category of the style table
	Style = types.Style

	// Role tells which part of the pytest grammar produced a token
	Role = types.Role

	// StyleTable maps attribute combinations to styles
	StyleTable = types.StyleTable

	// StyleEntry is one row of a style table
	StyleEntry = types.StyleEntry

	// TokenStats contains statistics about produced tokens
	TokenStats = types.TokenStats

	// Verbosity of the pytest run that produced a transcript
	Verbosity = types.Verbosity

	// Tokenizer is the interface for the decoder and the lexer
	Tokenizer = types.Tokenizer

	// TokenizerWithStats is a tokenizer that also provides statistics
	TokenizerWithStats = types.TokenizerWithStats

	// Decoder turns escape codes into styles
	Decoder = ansi.Decoder

	// Lexer classifies plain transcripts
	Lexer = pytest.Lexer

	// LexerOption configures a Lexer
	LexerOption = pytest.Option

	// Summary is what a Lexer learned about the session
	Summary = pytest.Summary

	// Mode is a state of the lexer
	Mode = pytest.Mode

	// CompareOption configures Compare
	CompareOption = harness.Option

	// Result holds both normalized renderings of a comparison
	Result = harness.Result
)

// Verbosity constants
const (
	VerbosityAuto    = types.VerbosityAuto
	VerbosityQuiet   = types.VerbosityQuiet
	VerbosityNormal  = types.VerbosityNormal
	VerbosityVerbose = types.VerbosityVerbose
)

// StylePlain is the style of unhighlighted text
const StylePlain = types.StylePlain

// Lexer and comparison options
var (
	WithStrict    = pytest.WithStrict
	WithVerbosity = pytest.WithVerbosity

	CompareWithTable     = harness.WithTable
	CompareWithVerbosity = harness.WithVerbosity
	CompareWithStrict    = harness.WithStrict
)

// UTF-8 BOM (Byte Order Mark) sequence
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// stripUTF8BOM removes the UTF-8 BOM if present at the beginning of the data
func stripUTF8BOM(data []byte) []byte {
	if len(data) >= 3 && bytes.Equal(data[:3], utf8BOM) {
		return data[3:]
	}
	return data
}

// ConvertToUTF8 converts byte data from a source encoding to UTF-8.
// Supported encodings: "utf8", "cp437", "cp850", "iso-8859-1"
// The UTF-8 BOM (Byte Order Mark) is automatically stripped if present.
func ConvertToUTF8(data []byte, sourceEncoding string) ([]byte, error) {
	if sourceEncoding == "utf8" || sourceEncoding == "" {
		return stripUTF8BOM(data), nil
	}

	var decoder *encoding.Decoder

	switch sourceEncoding {
	case "cp437":
		decoder = charmap.CodePage437.NewDecoder()
	case "cp850":
		decoder = charmap.CodePage850.NewDecoder()
	case "iso-8859-1":
		decoder = charmap.ISO8859_1.NewDecoder()
	default:
		return nil, fmt.Errorf("unsupported encoding: %s", sourceEncoding)
	}

	reader := transform.NewReader(bytes.NewReader(data), decoder)
	utf8Data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("encoding conversion error: %w", err)
	}

	// Strip BOM if present after conversion
	return stripUTF8BOM(utf8Data), nil
}

// NormalizeInput turns CRLF line endings, as written by pytest on Windows,
// into LF. Lone carriage returns are kept.
func NormalizeInput(data []byte) []byte {
	if !bytes.Contains(data, []byte("\r\n")) {
		return data
	}
	return bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
}

// DefaultStyleTable returns the pytest style table.
func DefaultStyleTable() *StyleTable {
	return types.DefaultStyleTable()
}

// LoadStyleTable reads a YAML style table from path.
func LoadStyleTable(path string) (*StyleTable, error) {
	return types.LoadStyleTable(path)
}

// ParseVerbosity parses "auto", "quiet", "normal" or "verbose".
func ParseVerbosity(s string) (Verbosity, error) {
	return types.ParseVerbosity(s)
}

// NewDecoder creates a decoder for a colored capture. A nil table uses
// the default one.
func NewDecoder(input []byte, table *StyleTable) *Decoder {
	return ansi.NewDecoder(input, table)
}

// NewLexer creates a lexer for a plain transcript. A nil table uses the
// default one.
func NewLexer(input []byte, table *StyleTable, opts ...LexerOption) *Lexer {
	return pytest.NewLexer(input, table, opts...)
}

// Strip returns the visible text of a colored capture.
func Strip(colored []byte) string {
	return ansi.Strip(colored)
}

// RenderMarkup renders tokens as <style>text</style> markup.
func RenderMarkup(tokens []Token) string {
	return exporter.RenderMarkup(tokens)
}

// Normalize rewrites markup so that renderings differing only in where
// whitespace sits relative to tags compare equal.
func Normalize(markup string) string {
	return exporter.Normalize(markup)
}

// HighlightANSI renders the escape codes of a colored capture as markup.
func HighlightANSI(colored []byte, table *StyleTable) string {
	return exporter.RenderMarkup(ansi.NewDecoder(colored, table).Tokenize())
}

// HighlightPlain renders a plain transcript as markup. The error is only
// set in strict mode, for the first line the lexer could not classify.
func HighlightPlain(plain []byte, table *StyleTable, opts ...LexerOption) (string, error) {
	l := pytest.NewLexer(plain, table, opts...)
	tokens := l.Tokenize()
	return exporter.RenderMarkup(tokens), l.Err()
}

// ExportANSI renders tokens back into escape codes.
func ExportANSI(tokens []Token, table *StyleTable) string {
	if table == nil {
		table = types.DefaultStyleTable()
	}
	return exporter.ExportANSI(tokens, table)
}

// ExportDocument writes tokens as a standalone HTML page.
func ExportDocument(w io.Writer, tokens []Token, table *StyleTable) error {
	if table == nil {
		table = types.DefaultStyleTable()
	}
	return exporter.ExportDocument(w, tokens, table)
}

// Stylesheet returns the CSS rules for the tags of RenderMarkup.
func Stylesheet(table *StyleTable) string {
	if table == nil {
		table = types.DefaultStyleTable()
	}
	return exporter.Stylesheet(table)
}

// Compare checks that the escape codes of a colored capture and the
// grammar classification of its text give the same normalized markup.
func Compare(colored []byte, opts ...CompareOption) (Result, error) {
	return harness.Compare(colored, opts...)
}
