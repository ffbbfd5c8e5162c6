package exporter

import (
	"fmt"
	"io"

	"github.com/badele/pytesthl/internal/types"
)

func ExportTokensToTable(tokens []types.Token, writer io.Writer) error {
	fmt.Fprintln(writer, "\n┌─────────┬────────┬────────────────────┬──────────────────────────┬──────────────────────────────────────┐")
	fmt.Fprintf(writer, "│ %-7s │ %-6s │ %-18s │ %-24s │ %-36s │\n", "Token", "Pos", "Style", "Role", "Text")
	fmt.Fprintln(writer, "├─────────┼────────┼────────────────────┼──────────────────────────┼──────────────────────────────────────┤")

	for i, token := range tokens {
		role := "-"
		if token.Role != types.RoleNone {
			role = token.Role.String()
		}

		style := token.Style
		if style == "" {
			style = types.StylePlain
		}

		fmt.Fprintf(writer, "│ %-7d │ %-6d │ %-18s │ %-24s │ %-36s │\n",
			i+1, token.Pos, truncate(string(style), 18), truncate(role, 24), truncate(quote(token.Text), 36))
	}

	fmt.Fprintln(writer, "└─────────┴────────┴────────────────────┴──────────────────────────┴──────────────────────────────────────┘")

	return nil
}

func quote(s string) string {
	s = fmt.Sprintf("%q", s)

	// Remove quote added by %q
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return s
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen-3] + "..."
	}
	return s
}
