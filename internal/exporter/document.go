package exporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/gdamore/tcell/v2"

	"github.com/badele/pytesthl/internal/types"
)

const (
	documentBackground = "#2d0922"
	documentForeground = "#ffffff"
)

// Token types the HTML formatter knows a class for, handed out to the
// non-plain styles in table order.
var documentTypes = []chroma.TokenType{
	chroma.GenericStrong,
	chroma.GenericInserted,
	chroma.GenericHeading,
	chroma.GenericDeleted,
	chroma.GenericError,
	chroma.GenericEmph,
	chroma.GenericSubheading,
	chroma.GenericPrompt,
	chroma.GenericOutput,
	chroma.GenericTraceback,
	chroma.GenericUnderline,
}

// tokenTypes binds every style of the table to a chroma token type. Styles
// beyond the available types render as text.
func tokenTypes(table *types.StyleTable) map[types.Style]chroma.TokenType {
	bound := map[types.Style]chroma.TokenType{types.StylePlain: chroma.Text}

	next := 0
	for _, entry := range table.Entries() {
		if entry.Name.IsPlain() {
			continue
		}
		if next >= len(documentTypes) {
			bound[entry.Name] = chroma.Text
			continue
		}
		bound[entry.Name] = documentTypes[next]
		next++
	}
	return bound
}

// PaletteColor returns the CSS color of a table color. Bold standard colors
// use their bright variant, as terminals commonly show them.
func PaletteColor(color types.ColorValue, bold bool) string {
	if color.IsDefault() {
		return ""
	}

	index := int(color.Index)
	if bold && index < 8 {
		index += 8
	}

	hex := tcell.PaletteColor(index).Hex()
	if hex < 0 {
		return ""
	}
	return fmt.Sprintf("#%06x", hex)
}

// entryCSS returns the foreground and background CSS colors of an entry.
func entryCSS(entry types.StyleEntry) (string, string) {
	attrs := entry.Attrs()
	fg := entry.CSS
	if fg == "" {
		fg = PaletteColor(attrs.Fg, attrs.Bold)
	}
	return fg, PaletteColor(attrs.Bg, false)
}

// ChromaStyle builds the chroma style of a style table.
func ChromaStyle(table *types.StyleTable) (*chroma.Style, error) {
	builder := chroma.NewStyleBuilder("pytesthl-" + table.Version)
	builder.Add(chroma.Background, fmt.Sprintf("bg:%s %s", documentBackground, documentForeground))

	bound := tokenTypes(table)
	for _, entry := range table.Entries() {
		tokenType := bound[entry.Name]
		if tokenType == chroma.Text {
			continue
		}

		var parts []string
		if entry.Attrs().Bold {
			parts = append(parts, "bold")
		}
		fg, bg := entryCSS(entry)
		if fg != "" {
			parts = append(parts, fg)
		}
		if bg != "" {
			parts = append(parts, "bg:"+bg)
		}
		builder.Add(tokenType, strings.Join(parts, " "))
	}

	style, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("building chroma style: %w", err)
	}
	return style, nil
}

func chromaTokens(tokens []types.Token, table *types.StyleTable) []chroma.Token {
	bound := tokenTypes(table)

	out := make([]chroma.Token, 0, len(tokens))
	for _, token := range types.Coalesce(tokens) {
		tokenType, ok := bound[token.Style]
		if !ok {
			tokenType = chroma.Text
		}
		out = append(out, chroma.Token{Type: tokenType, Value: token.Text})
	}
	return out
}

// ExportDocument writes tokens as a standalone HTML page.
func ExportDocument(w io.Writer, tokens []types.Token, table *types.StyleTable) error {
	style, err := ChromaStyle(table)
	if err != nil {
		return err
	}

	formatter := html.New(html.Standalone(true), html.WithClasses(true))
	if err := formatter.Format(w, style, chroma.Literator(chromaTokens(tokens, table)...)); err != nil {
		return fmt.Errorf("formatting document: %w", err)
	}
	return nil
}

// ExportDocumentCSS writes the class stylesheet used by ExportDocument.
func ExportDocumentCSS(w io.Writer, table *types.StyleTable) error {
	style, err := ChromaStyle(table)
	if err != nil {
		return err
	}

	formatter := html.New(html.WithClasses(true))
	if err := formatter.WriteCSS(w, style); err != nil {
		return fmt.Errorf("writing stylesheet: %w", err)
	}
	return nil
}

// Stylesheet returns CSS rules for the tags written by RenderMarkup, one
// rule per non-plain style.
func Stylesheet(table *types.StyleTable) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "body { background-color: %s; color: %s; }\n", documentBackground, documentForeground)

	for _, entry := range table.Entries() {
		if entry.Name.IsPlain() {
			continue
		}

		var rules []string
		fg, bg := entryCSS(entry)
		if fg != "" {
			rules = append(rules, "color: "+fg+";")
		}
		if bg != "" {
			rules = append(rules, "background-color: "+bg+";")
		}
		if entry.Attrs().Bold {
			rules = append(rules, "font-weight: bold;")
		}
		if entry.Attrs().Faint {
			rules = append(rules, "opacity: 0.7;")
		}
		fmt.Fprintf(&sb, "%s { %s }\n", entry.Name, strings.Join(rules, " "))
	}
	return sb.String()
}
