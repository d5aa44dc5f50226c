// Package importer turns statement exports into candidate transactions.
package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/flipledger/flipledger/internal/model"
)

// Parser converts a statement export into candidate transactions.
type Parser interface {
	Parse(r io.Reader) ([]model.CandidateTransaction, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a statement file in the import inbox.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats returns the registered format names.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.parsers))
	for k := range r.parsers {
		out = append(out, k)
	}
	return out
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	r.Register(&CSVParser{})
	r.Register(&OFXParser{})
	return r
}

// ParseFile parses path with the parser registered for format. Any failure is
// a run-level classification error and no partial results are returned.
func (r *Registry) ParseFile(format, path string) ([]model.CandidateTransaction, error) {
	p := r.Get(format)
	if p == nil {
		return nil, fmt.Errorf("%w: unknown statement format %q", model.ErrClassification, format)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening statement: %w", model.ErrClassification, err)
	}
	defer f.Close()

	txns, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s statement %s: %w", model.ErrClassification, p.Format(), filepath.Base(path), err)
	}
	return txns, nil
}

// importDir is the inbox subdirectory for statement files.
const importDir = "import"

// processedDir holds statements whose review was committed.
const processedDir = "import/processed"

var statementExts = map[string]bool{".csv": true, ".ofx": true, ".qfx": true}

// Scan returns statement files in <root>/import/.
func Scan(root string) ([]FileInfo, error) {
	dir := filepath.Join(root, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !statementExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// InInbox reports whether path is a file directly inside <root>/import/.
func InInbox(root, path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	inbox, err := filepath.Abs(filepath.Join(root, importDir))
	if err != nil {
		return false
	}
	return filepath.Dir(abs) == inbox
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(root, fileName string) error {
	src := filepath.Join(root, importDir, fileName)
	dstDir := filepath.Join(root, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
