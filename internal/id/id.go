package id

import (
	"fmt"
	"strings"
	"time"

	"github.com/teris-io/shortid"
)

// FormatReference returns a transaction reference like "2025-06-01-Kq3xZ9pa".
func FormatReference(date time.Time, suffix string) string {
	return date.Format(time.DateOnly) + "-" + suffix
}

// ParseReference splits "2025-06-01-Kq3xZ9pa" into its date and suffix.
func ParseReference(ref string) (time.Time, string, error) {
	if len(ref) < len(time.DateOnly)+2 || ref[len(time.DateOnly)] != '-' {
		return time.Time{}, "", fmt.Errorf("invalid reference format: %q", ref)
	}
	date, err := time.Parse(time.DateOnly, ref[:len(time.DateOnly)])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid date in reference %q: %w", ref, err)
	}
	return date, ref[len(time.DateOnly)+1:], nil
}

// IsReference reports whether s looks like a generated reference rather than
// a bank-supplied one.
func IsReference(s string) bool {
	_, suffix, err := ParseReference(s)
	return err == nil && !strings.ContainsAny(suffix, " \t")
}

// Generator issues unique transaction references. Safe for concurrent use.
type Generator struct {
	sid *shortid.Shortid
}

// NewGenerator creates a Generator; a zero seed uses the current time.
func NewGenerator(seed uint64) *Generator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Generator{sid: shortid.MustNew(16, shortid.DefaultABC, seed)}
}

// Reference returns a new reference for a transaction dated date.
func (g *Generator) Reference(date time.Time) (string, error) {
	s, err := g.sid.Generate()
	if err != nil {
		return "", fmt.Errorf("generating reference: %w", err)
	}
	return FormatReference(date, s), nil
}
