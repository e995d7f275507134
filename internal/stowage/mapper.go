package stowage

import (
	"regexp"
	"strings"
)

// CodeUnspecified is the permissive fallback packaging code assigned
// when a description is empty or has no entry in the synonym table.
// Every container type accepts it.
const CodeUnspecified = "ZZ"

// CodeStatus describes how a packaging description was resolved.
type CodeStatus string

const (
	StatusMapped   CodeStatus = "MAPPED"
	StatusUnmapped CodeStatus = "UNMAPPED"
	StatusEmpty    CodeStatus = "EMPTY"
)

// Resolution is the outcome of resolving one packaging description.
type Resolution struct {
	Code   string
	Status CodeStatus
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Mapper resolves free-text packaging descriptions to canonical
// packaging codes against an immutable synonym table injected at
// construction time.
type Mapper struct {
	table map[string]string
}

// NewMapper builds a Mapper from a synonym table. Keys are normalized
// the same way lookups are, so callers may supply them in any casing.
func NewMapper(table map[string]string) *Mapper {
	normalized := make(map[string]string, len(table))
	for alias, code := range table {
		alias = normalizePackaging(alias)
		if alias == "" {
			continue
		}
		normalized[alias] = strings.TrimSpace(code)
	}
	return &Mapper{table: normalized}
}

// Resolve maps a raw packaging description to a canonical code. Unknown
// and empty descriptions fall back to CodeUnspecified rather than
// failing; the Status field distinguishes the cases.
func (m *Mapper) Resolve(raw string) Resolution {
	if strings.TrimSpace(raw) == "" {
		return Resolution{Code: CodeUnspecified, Status: StatusEmpty}
	}
	if code, ok := m.table[normalizePackaging(raw)]; ok && code != "" {
		return Resolution{Code: code, Status: StatusMapped}
	}
	return Resolution{Code: CodeUnspecified, Status: StatusUnmapped}
}

// normalizePackaging trims, folds ideographic spaces into ASCII ones,
// collapses whitespace runs and uppercases.
func normalizePackaging(text string) string {
	text = strings.ReplaceAll(text, "　", " ")
	text = whitespaceRun.ReplaceAllString(strings.TrimSpace(text), " ")
	return strings.ToUpper(text)
}
