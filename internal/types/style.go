package types

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/badele/pytesthl/internal/errors"
)

/////////////////////////////////////////////////////////////////////////////
// STYLE
/////////////////////////////////////////////////////////////////////////////

// Style names one entry of a StyleTable.
type Style string

const StylePlain Style = "plain"

func (s Style) String() string {
	return string(s)
}

func (s Style) IsPlain() bool {
	return s == "" || s == StylePlain
}

/////////////////////////////////////////////////////////////////////////////
// STYLE TABLE
/////////////////////////////////////////////////////////////////////////////

//go:embed styles.yaml
var defaultStylesYAML []byte

// StyleEntry is one row of the table as written in YAML.
type StyleEntry struct {
	Name  Style  `yaml:"name"`
	Fg    string `yaml:"fg,omitempty"`
	Bg    string `yaml:"bg,omitempty"`
	Bold  bool   `yaml:"bold,omitempty"`
	Faint bool   `yaml:"faint,omitempty"`
	CSS   string `yaml:"css,omitempty"` // overrides the palette color in stylesheets

	attrs Attrs
}

// Attrs returns the parsed attribute combination of the entry.
func (e StyleEntry) Attrs() Attrs {
	return e.attrs
}

type styleFile struct {
	Version string       `yaml:"version"`
	Styles  []StyleEntry `yaml:"styles"`
}

// StyleTable maps attribute combinations to style names. Both the decoder
// and the lexer resolve styles through it, so they share one vocabulary.
type StyleTable struct {
	Version string

	entries []StyleEntry
	byAttrs map[Attrs]Style
	byName  map[Style]int
}

// DefaultStyleTable returns the embedded pytest table.
func DefaultStyleTable() *StyleTable {
	table, err := ParseStyleTable(defaultStylesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded style table: %v", err))
	}
	return table
}

// LoadStyleTable reads a YAML style table from path.
func LoadStyleTable(path string) (*StyleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Input(err, fmt.Sprintf("reading style table %s", path))
	}
	return ParseStyleTable(data)
}

// ParseStyleTable decodes and validates a YAML style table.
func ParseStyleTable(data []byte) (*StyleTable, error) {
	var file styleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Configf("invalid style table: %v", err)
	}
	return NewStyleTable(file.Version, file.Styles)
}

// NewStyleTable validates entries and builds the lookup indexes.
func NewStyleTable(version string, entries []StyleEntry) (*StyleTable, error) {
	if version == "" {
		version = "unversioned"
	}

	table := &StyleTable{
		Version: version,
		entries: make([]StyleEntry, 0, len(entries)),
		byAttrs: make(map[Attrs]Style),
		byName:  make(map[Style]int),
	}

	for i, entry := range entries {
		if entry.Name == "" {
			return nil, errors.Configf("style #%d has no name", i+1)
		}
		if _, ok := table.byName[entry.Name]; ok {
			return nil, errors.Configf("duplicate style %q", entry.Name)
		}

		fg, err := ParseColor(entry.Fg)
		if err != nil {
			return nil, errors.Configf("style %q: %v", entry.Name, err)
		}
		bg, err := ParseColor(entry.Bg)
		if err != nil {
			return nil, errors.Configf("style %q: %v", entry.Name, err)
		}

		entry.attrs = Attrs{Bold: entry.Bold, Faint: entry.Faint, Fg: fg, Bg: bg}
		if other, ok := table.byAttrs[entry.attrs]; ok {
			return nil, errors.Configf("styles %q and %q share attributes %s", other, entry.Name, entry.attrs)
		}

		table.byAttrs[entry.attrs] = entry.Name
		table.byName[entry.Name] = len(table.entries)
		table.entries = append(table.entries, entry)
	}

	plain, ok := table.byName[StylePlain]
	if !ok {
		return nil, errors.Configf("style table %s has no %q entry", version, StylePlain)
	}
	if table.entries[plain].attrs != (Attrs{}) {
		return nil, errors.Configf("style %q must not carry attributes", StylePlain)
	}

	return table, nil
}

// Lookup resolves an attribute combination; unknown combinations are plain.
func (t *StyleTable) Lookup(attrs Attrs) Style {
	if style, ok := t.byAttrs[attrs]; ok {
		return style
	}
	return StylePlain
}

// Entry returns the table row for name.
func (t *StyleTable) Entry(name Style) (StyleEntry, bool) {
	i, ok := t.byName[name]
	if !ok {
		return StyleEntry{}, false
	}
	return t.entries[i], true
}

// Has reports whether name is part of the table.
func (t *StyleTable) Has(name Style) bool {
	_, ok := t.byName[name]
	return ok
}

// Entries returns the rows in table order.
func (t *StyleTable) Entries() []StyleEntry {
	out := make([]StyleEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Names returns the style names sorted alphabetically.
func (t *StyleTable) Names() []Style {
	names := make([]Style, 0, len(t.entries))
	for _, entry := range t.entries {
		names = append(names, entry.Name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
