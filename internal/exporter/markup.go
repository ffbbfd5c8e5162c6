package exporter

import (
	"fmt"
	"html"
	"strings"

	"github.com/badele/pytesthl/internal/types"
)

// RenderMarkup renders tokens as flat "<style>text</style>" markup. Plain
// text is written untagged and adjacent tokens of one style share a single
// tag pair. Text is HTML escaped.
func RenderMarkup(tokens []types.Token) string {
	var sb strings.Builder
	for _, token := range types.Coalesce(tokens) {
		text := html.EscapeString(token.Text)
		if token.Style.IsPlain() {
			sb.WriteString(text)
			continue
		}
		fmt.Fprintf(&sb, "<%s>%s</%s>", token.Style, text, token.Style)
	}
	return sb.String()
}
