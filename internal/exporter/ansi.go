package exporter

import (
	"strconv"
	"strings"

	"github.com/badele/pytesthl/internal/types"
)

func fgParam(color types.ColorValue) string {
	if color.IsDefault() {
		return "39"
	}
	if color.Index >= 8 {
		return strconv.Itoa(90 + int(color.Index) - 8)
	}
	return strconv.Itoa(30 + int(color.Index))
}

func bgParam(color types.ColorValue) string {
	if color.IsDefault() {
		return "49"
	}
	if color.Index >= 8 {
		return strconv.Itoa(100 + int(color.Index) - 8)
	}
	return strconv.Itoa(40 + int(color.Index))
}

// SGRParams returns the parameters setting attrs from a reset state.
func SGRParams(attrs types.Attrs) []string {
	var params []string
	if attrs.Bold {
		params = append(params, "1")
	}
	if attrs.Faint {
		params = append(params, "2")
	}
	if !attrs.Fg.IsDefault() {
		params = append(params, fgParam(attrs.Fg))
	}
	if !attrs.Bg.IsDefault() {
		params = append(params, bgParam(attrs.Bg))
	}
	return params
}

// DiffSGR returns the minimal parameters to go from previous to current.
func DiffSGR(current, previous types.Attrs) []string {
	if current == previous {
		return nil
	}
	if current == (types.Attrs{}) {
		return []string{"0"}
	}

	var params []string

	// 22 clears both intensities
	if (previous.Bold && !current.Bold) || (previous.Faint && !current.Faint) {
		params = append(params, "22")
		if current.Bold {
			params = append(params, "1")
		}
		if current.Faint {
			params = append(params, "2")
		}
	} else {
		if current.Bold && !previous.Bold {
			params = append(params, "1")
		}
		if current.Faint && !previous.Faint {
			params = append(params, "2")
		}
	}

	if current.Fg != previous.Fg {
		params = append(params, fgParam(current.Fg))
	}
	if current.Bg != previous.Bg {
		params = append(params, bgParam(current.Bg))
	}

	return params
}

// ExportANSI paints tokens with SGR sequences, the way a terminal capture of
// the same session would read once decoded. Styles unknown to table are
// written plain.
func ExportANSI(tokens []types.Token, table *types.StyleTable) string {
	var sb strings.Builder
	var current types.Attrs

	for _, token := range types.Coalesce(tokens) {
		var attrs types.Attrs
		if entry, ok := table.Entry(token.Style); ok {
			attrs = entry.Attrs()
		}

		if params := DiffSGR(attrs, current); params != nil {
			sb.WriteString("\x1b[" + strings.Join(params, ";") + "m")
			current = attrs
		}
		sb.WriteString(token.Text)
	}

	if current != (types.Attrs{}) {
		sb.WriteString("\x1b[0m")
	}
	return sb.String()
}
