package pytest

import "sort"

// Summary is what the lexer learned about the session while classifying it.
type Summary struct {
	Collected        int            `json:"collected"`
	Outcomes         map[string]int `json:"outcomes"`
	Failures         []string       `json:"failures,omitempty"`
	CollectionErrors []string       `json:"collection_errors,omitempty"`
	SummaryEntries   map[string]int `json:"summary_entries,omitempty"`
	Counts           map[string]int `json:"counts,omitempty"`

	visited map[Mode]bool
}

func newSummary() Summary {
	return Summary{
		Outcomes:       make(map[string]int),
		SummaryEntries: make(map[string]int),
		Counts:         make(map[string]int),
		visited:        make(map[Mode]bool),
	}
}

func (s *Summary) visit(mode Mode) {
	s.visited[mode] = true
}

// Visited reports whether the lexer entered mode, either to classify a
// line or after one.
func (s Summary) Visited(mode Mode) bool {
	return s.visited[mode]
}

// Modes lists the visited modes in declaration order.
func (s Summary) Modes() []Mode {
	modes := make([]Mode, 0, len(s.visited))
	for mode := range s.visited {
		modes = append(modes, mode)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
	return modes
}
