// Package scan discovers grammar and asset documents on disk. Grammar files
// are the ones whose basename starts with "grammar"; everything else in a
// target folder is an asset candidate.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hyomoto/vsgen/internal/log"
)

// GrammarPrefix marks a file as a grammar document.
const GrammarPrefix = "grammar"

// Extensions are the document suffixes the engine processes.
var Extensions = []string{".json", ".json5"}

// IsDocument reports whether a filename carries a processable extension.
func IsDocument(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// IsGrammar reports whether a filename names a grammar document.
func IsGrammar(name string) bool {
	return IsDocument(name) && strings.HasPrefix(strings.ToLower(filepath.Base(name)), GrammarPrefix)
}

// Directories returns the sorted subdirectory names of root.
func Directories(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// Files returns the sorted regular-file names of root.
func Files(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// Split partitions a folder's files into grammar documents and the rest.
// Processing order is deterministic because both lists come back sorted.
func Split(root string) (grammars, others []string, err error) {
	files, err := Files(root)
	if err != nil {
		return nil, nil, err
	}
	for _, f := range files {
		if IsGrammar(f) {
			grammars = append(grammars, f)
		} else {
			others = append(others, f)
		}
	}
	log.Debug(log.CatScan, "scanned folder", "path", root, "grammars", len(grammars), "others", len(others))
	return grammars, others, nil
}
