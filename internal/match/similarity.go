package match

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// Similarity returns a Levenshtein ratio in [0,1] between two descriptions
// after normalization. Identical normalized strings score 1.
func Similarity(a, b string) float64 {
	na, nb := normalizeText(a), normalizeText(b)
	if na == "" && nb == "" {
		return 1
	}
	longest := max(len([]rune(na)), len([]rune(nb)))
	dist := levenshtein.ComputeDistance(na, nb)
	return 1 - float64(dist)/float64(longest)
}

// normalizeText upper-cases, maps punctuation to spaces and collapses runs of
// whitespace, so "SQ *JOE'S  DINER" and "sq joe s diner" compare equal.
func normalizeText(s string) string {
	var b strings.Builder
	space := true
	for _, r := range strings.ToUpper(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

// containsName reports whether a vendor name occurs in a description.
// Names shorter than three characters never match.
func containsName(description, name string) bool {
	n := normalizeText(name)
	if len(n) < 3 {
		return false
	}
	return strings.Contains(normalizeText(description), n)
}
