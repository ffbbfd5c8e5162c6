package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

/////////////////////////////////////////////////////////////////////////////
// ROLE
/////////////////////////////////////////////////////////////////////////////

// Role is the semantic category the plain-text lexer recognized a span as.
// The decoder only knows colors, so its tokens carry RoleNone.
type Role int

const (
	RoleNone Role = iota
	RoleSessionBanner
	RoleCollecting
	RoleTestPath
	RoleStatusLetter
	RoleOutcomeWord
	RoleProgress
	RoleSectionRule
	RoleFailureBanner
	RoleTracebackSource
	RoleTracebackFileLine
	RoleTracebackExceptionLine
	RoleChainMessage
	RoleCapturedOutput
	RoleCollectionError
	RoleWarningEntry
	RoleSummaryEntry
	RoleFinalRule
	RoleCount
	RoleDuration
	RoleNoTests
)

var roleNames = map[Role]string{
	RoleNone:                   "none",
	RoleSessionBanner:          "session-banner",
	RoleCollecting:             "collecting",
	RoleTestPath:               "test-path",
	RoleStatusLetter:           "status-letter",
	RoleOutcomeWord:            "outcome-word",
	RoleProgress:               "progress",
	RoleSectionRule:            "section-rule",
	RoleFailureBanner:          "failure-banner",
	RoleTracebackSource:        "traceback-source",
	RoleTracebackFileLine:      "traceback-file-line",
	RoleTracebackExceptionLine: "traceback-exception-line",
	RoleChainMessage:           "chain-message",
	RoleCapturedOutput:         "captured-output",
	RoleCollectionError:        "collection-error",
	RoleWarningEntry:           "warning-entry",
	RoleSummaryEntry:           "summary-entry",
	RoleFinalRule:              "final-rule",
	RoleCount:                  "count",
	RoleDuration:               "duration",
	RoleNoTests:                "no-tests",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Role(%d)", r)
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	for role, name := range roleNames {
		if name == s {
			*r = role
			return nil
		}
	}

	return fmt.Errorf("unknown Role: %s", s)
}

/////////////////////////////////////////////////////////////////////////////
// TOKEN
/////////////////////////////////////////////////////////////////////////////

type Token struct {
	Style Style  `json:"style"`
	Role  Role   `json:"role,omitempty"`
	Pos   int    `json:"pos"`
	Text  string `json:"text"`
}

func (t Token) String() string {
	if t.Role == RoleNone {
		return fmt.Sprintf("%s: %q", t.Style, t.Text)
	}
	return fmt.Sprintf("%s/%s: %q", t.Style, t.Role, t.Text)
}

// Text concatenates the text of every token.
func Text(tokens []Token) string {
	var sb strings.Builder
	for _, token := range tokens {
		sb.WriteString(token.Text)
	}
	return sb.String()
}

// Coalesce merges consecutive tokens sharing the same style. The role of a
// merged token is the role of its first part.
func Coalesce(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for _, token := range tokens {
		if token.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Style == token.Style {
			out[n-1].Text += token.Text
			continue
		}
		out = append(out, token)
	}
	return out
}

/////////////////////////////////////////////////////////////////////////////
// TOKEN STATS
/////////////////////////////////////////////////////////////////////////////

type TokenStats struct {
	TotalTokens         int            `json:"total_tokens"`
	TokensByStyle       map[Style]int  `json:"tokens_by_style"`
	TokensByRole        map[string]int `json:"tokens_by_role,omitempty"`
	SGRCodes            map[string]int `json:"sgr_codes,omitempty"`
	DroppedSequences    int            `json:"dropped_sequences,omitempty"`
	MalformedSequences  int            `json:"malformed_sequences,omitempty"`
	TotalTextLength     int            `json:"total_text_length"`
	FileSize            int64          `json:"file_size"`
	PosFirstBadSequence int64          `json:"pos_first_bad_sequence"`
}

// NewTokenStats returns stats with every map allocated.
func NewTokenStats(fileSize int) TokenStats {
	return TokenStats{
		TokensByStyle: make(map[Style]int),
		TokensByRole:  make(map[string]int),
		SGRCodes:      make(map[string]int),
		FileSize:      int64(fileSize),
	}
}

// Count fills the per-token counters from a finished token stream.
func (s *TokenStats) Count(tokens []Token) {
	s.TotalTokens = len(tokens)
	for _, token := range tokens {
		s.TokensByStyle[token.Style]++
		if token.Role != RoleNone {
			s.TokensByRole[token.Role.String()]++
		}
		s.TotalTextLength += len(token.Text)
	}
}
