package exporter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/badele/pytesthl/internal/types"
)

type TokenizerJSONOutput struct {
	Tokens  []types.Token    `json:"tokens"`
	Stats   types.TokenStats `json:"stats"`
	Summary any              `json:"summary,omitempty"`
}

// TokensJSON writes the tokens and statistics of tok as indented JSON.
// summary, when not nil, is included as is.
func TokensJSON(w io.Writer, tok types.TokenizerWithStats, summary any) error {
	output := TokenizerJSONOutput{
		Tokens:  tok.Tokenize(),
		Stats:   tok.GetStats(),
		Summary: summary,
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("JSON serialization error: %w", err)
	}

	_, err = fmt.Fprintln(w, string(data))
	return err
}
