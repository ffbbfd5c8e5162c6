package ansi

// Sources :
// - https://vt100.net/docs/vt510-rm/chapter4.html
// - https://invisible-island.net/xterm/ctlseqs/ctlseqs.html
// - https://ecma-international.org/wp-content/uploads/ECMA-48_5th_edition_june_1991.pdf

import (
	"strconv"
	"strings"

	"github.com/badele/pytesthl/internal/logging"
	"github.com/badele/pytesthl/internal/types"
)

// Decoder turns a capture containing SGR escape sequences into styled text
// runs. Only CSI ... m changes the style; every other complete CSI
// sequence is dropped and anything malformed is kept as literal text.
type Decoder struct {
	input  []byte
	pos    int
	table  *types.StyleTable
	sgr    *types.SGR
	done   bool
	Tokens []types.Token    `json:"tokens"`
	Stats  types.TokenStats `json:"stats"`
}

func NewDecoder(input []byte, table *types.StyleTable) *Decoder {
	if table == nil {
		table = types.DefaultStyleTable()
	}

	return &Decoder{
		input:  input,
		pos:    0,
		table:  table,
		sgr:    types.NewSGR(),
		Tokens: make([]types.Token, 0),
		Stats:  types.NewTokenStats(len(input)),
	}
}

// Tokenize decodes the input once; later calls return the same tokens.
func (d *Decoder) Tokenize() []types.Token {
	if d.done {
		return d.Tokens
	}
	d.done = true

	for d.pos < len(d.input) {
		if d.input[d.pos] == esc {
			d.parseEscape(d.pos)
			continue
		}
		d.parseText(d.pos)
	}

	// end of stream resets the run state
	d.sgr.Reset()

	d.Stats.Count(d.Tokens)

	return d.Tokens
}

// GetStats returns decoding statistics
func (d *Decoder) GetStats() types.TokenStats {
	return d.Stats
}

func (d *Decoder) parseText(start int) {
	for d.pos < len(d.input) && d.input[d.pos] != esc {
		d.pos++
	}
	d.emit(start, string(d.input[start:d.pos]))
}

// emit appends text with the active style, extending the previous token
// when the style did not change.
func (d *Decoder) emit(start int, text string) {
	if text == "" {
		return
	}

	style := d.table.Lookup(d.sgr.Attrs())
	if n := len(d.Tokens); n > 0 && d.Tokens[n-1].Style == style {
		d.Tokens[n-1].Text += text
		return
	}

	d.Tokens = append(d.Tokens, types.Token{
		Style: style,
		Pos:   start,
		Text:  text,
	})
}

func (d *Decoder) parseEscape(start int) {
	d.pos++

	// lone ESC, or an escape other than CSI: the ESC byte is text
	if d.pos >= len(d.input) || d.input[d.pos] != csi {
		d.emit(start, string(d.input[start:d.pos]))
		return
	}
	d.pos++

	params, intermediates, ok := d.collectParams()
	if !ok || d.pos >= len(d.input) {
		d.malformed(start)
		return
	}

	final := d.input[d.pos]
	d.pos++

	if final != 'm' || intermediates != "" || strings.HasPrefix(params, "?") ||
		strings.HasPrefix(params, ">") || strings.HasPrefix(params, "<") || strings.HasPrefix(params, "=") {
		d.Stats.DroppedSequences++
		logging.Debug("dropped CSI %q at %d", d.input[start:d.pos], start)
		return
	}

	codes := ParseSGRParams(params)
	for _, code := range codes {
		d.Stats.SGRCodes[strconv.Itoa(code)]++
	}
	d.sgr.ApplyParams(codes)
}

// collectParams consumes parameter bytes (0x30-0x3F) then intermediate
// bytes (0x20-0x2F). It stops on the first other byte and reports false
// when that byte cannot end a sequence.
func (d *Decoder) collectParams() (string, string, bool) {
	start := d.pos
	for d.pos < len(d.input) && d.input[d.pos] >= 0x30 && d.input[d.pos] <= 0x3F {
		d.pos++
	}
	params := string(d.input[start:d.pos])

	start = d.pos
	for d.pos < len(d.input) && d.input[d.pos] >= 0x20 && d.input[d.pos] <= 0x2F {
		d.pos++
	}
	intermediates := string(d.input[start:d.pos])

	if d.pos < len(d.input) && (d.input[d.pos] < 0x40 || d.input[d.pos] > 0x7E) {
		return params, intermediates, false
	}
	return params, intermediates, true
}

// malformed keeps an unterminated or interrupted sequence as literal text.
// Decoding resumes on the byte that interrupted it.
func (d *Decoder) malformed(start int) {
	if d.Stats.MalformedSequences == 0 {
		d.Stats.PosFirstBadSequence = int64(start)
	}
	d.Stats.MalformedSequences++
	logging.Debug("malformed CSI at %d kept as text", start)

	d.emit(start, string(d.input[start:d.pos]))
}

// ParseSGRParams splits an SGR parameter string on ';' and ':'. An empty
// or unparseable parameter is 0; an empty string is an empty list.
func ParseSGRParams(params string) []int {
	if params == "" {
		return []int{}
	}

	parts := strings.Split(strings.ReplaceAll(params, ":", ";"), ";")
	codes := make([]int, 0, len(parts))
	for _, part := range parts {
		codes = append(codes, ParseNumberParam(part, 0))
	}
	return codes
}

func ParseNumberParam(param string, defaultValue int) int {
	if param == "" {
		return defaultValue
	}

	num, err := strconv.Atoi(param)
	if err != nil {
		return defaultValue
	}
	return num
}

// Strip returns the visible text of a capture.
func Strip(input []byte) string {
	return types.Text(NewDecoder(input, nil).Tokenize())
}
