package session

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

const defaultWidth = 80

// SGR codes the reporter marks text with.
var escTable = map[string]int{
	"bold":   1,
	"red":    31,
	"green":  32,
	"yellow": 33,
	"cyan":   36,
}

// TerminalWriter writes lines the way pytest's terminal writer does: each
// markup call wraps its text in the requested codes followed by a reset,
// codes in the order given.
type TerminalWriter struct {
	out         strings.Builder
	hasMarkup   bool
	fullwidth   int
	currentLine string
}

func NewTerminalWriter(hasMarkup bool, fullwidth int) *TerminalWriter {
	if fullwidth <= 0 {
		fullwidth = defaultWidth
	}
	return &TerminalWriter{hasMarkup: hasMarkup, fullwidth: fullwidth}
}

func (tw *TerminalWriter) String() string {
	return tw.out.String()
}

func (tw *TerminalWriter) Fullwidth() int {
	return tw.fullwidth
}

// Markup wraps text in escape codes. An empty text still gets the codes.
func (tw *TerminalWriter) Markup(text string, marks ...string) string {
	if !tw.hasMarkup || len(marks) == 0 {
		return text
	}

	var sb strings.Builder
	for _, mark := range marks {
		code, ok := escTable[mark]
		if !ok {
			panic(fmt.Sprintf("unknown markup %q", mark))
		}
		fmt.Fprintf(&sb, "\x1b[%dm", code)
	}
	sb.WriteString(text)
	sb.WriteString("\x1b[0m")
	return sb.String()
}

func (tw *TerminalWriter) Write(msg string, marks ...string) {
	if msg == "" {
		return
	}

	if i := strings.LastIndex(msg, "\n"); i >= 0 {
		tw.currentLine = msg[i+1:]
	} else {
		tw.currentLine += msg
	}
	tw.out.WriteString(tw.Markup(msg, marks...))
}

func (tw *TerminalWriter) Line(s string, marks ...string) {
	tw.Write(s, marks...)
	tw.Write("\n")
}

// Sep writes title centered between runs of sepchar. fullwidth <= 0 uses
// the writer width; callers embedding escape codes in title widen it by
// the length of those codes.
func (tw *TerminalWriter) Sep(sepchar, title string, fullwidth int, marks ...string) {
	if fullwidth <= 0 {
		fullwidth = tw.fullwidth
	}

	n := (fullwidth - utf8.RuneCountInString(title) - 2) / (2 * utf8.RuneCountInString(sepchar))
	if n < 1 {
		n = 1
	}
	fill := strings.Repeat(sepchar, n)
	line := fill + " " + title + " " + fill
	tw.Line(tw.finishSep(line, sepchar, fullwidth), marks...)
}

// Rule writes a separator line without a title.
func (tw *TerminalWriter) Rule(sepchar string, marks ...string) {
	line := strings.Repeat(sepchar, tw.fullwidth/utf8.RuneCountInString(sepchar))
	tw.Line(tw.finishSep(line, sepchar, tw.fullwidth), marks...)
}

func (tw *TerminalWriter) finishSep(line, sepchar string, fullwidth int) string {
	tail := strings.TrimRight(sepchar, " ")
	if utf8.RuneCountInString(line)+utf8.RuneCountInString(tail) <= fullwidth {
		line += tail
	}
	return line
}

// WidthOfCurrentLine is the display width of the text written since the
// last newline, or -1 when it holds a control character.
func (tw *TerminalWriter) WidthOfCurrentLine() int {
	return wcswidth(tw.currentLine)
}

func wcswidth(s string) int {
	width := 0
	for _, r := range s {
		if r < 0x20 || (r >= 0x7f && r < 0xa0) {
			return -1
		}
		width += runewidth.RuneWidth(r)
	}
	return width
}

func rjust(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}

// formatTrimmed formats msg into format ("{}" placeholder), cutting it with
// an ellipsis to fit availableWidth. It returns false when nothing fits.
func formatTrimmed(format, msg string, availableWidth int) (string, bool) {
	if i := strings.Index(msg, "\n"); i >= 0 {
		msg = msg[:i]
	}

	const ellipsis = "..."
	formatWidth := wcswidth(strings.Replace(format, "{}", "", 1))
	if formatWidth+len(ellipsis) > availableWidth {
		return "", false
	}

	if formatWidth+wcswidth(msg) > availableWidth {
		availableWidth -= len(ellipsis)
		runes := []rune(msg)
		if len(runes) > availableWidth {
			runes = runes[:availableWidth]
		}
		for formatWidth+wcswidth(string(runes)) > availableWidth && len(runes) > 0 {
			runes = runes[:len(runes)-1]
		}
		msg = string(runes) + ellipsis
	}

	return strings.Replace(format, "{}", msg, 1), true
}
