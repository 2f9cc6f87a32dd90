package symbol

import (
	"fmt"
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

/*
Package symbol extracts top-level symbol definitions from source text and
whole directory trees.

The index maps a symbol name to the dot-separated module path of the file
that defines it ("game_logic/player.py" -> "game_logic.player"). Extraction
is line-based and intentionally shallow: only column-zero definitions count.
*/

// Indexer is the symbol extraction contract used by the context builder
// and updater.
type Indexer interface {
	// ExtractSymbols parses source text and maps each top-level symbol
	// name to modulePath.
	ExtractSymbols(source, modulePath string) (map[string]string, error)
	// IndexTree walks a directory tree and merges the per-file mappings.
	IndexTree(root string) (map[string]string, error)
}

// sourceExts are the extensions treated as indexable source code.
var sourceExts = map[string]struct{}{
	".py": {},
	".gd": {},
}

var skipDirs = map[string]struct{}{
	".git":         {},
	".venv":        {},
	"venv":         {},
	"node_modules": {},
	"vendor":       {},
}

// IsSourceFile reports whether filename has an indexable source extension.
func IsSourceFile(filename string) bool {
	_, ok := sourceExts[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// ModulePath derives the dot-separated module path for a repo-relative
// filename ("a/b/c.py" -> "a.b.c").
func ModulePath(filename string) string {
	name := filepath.ToSlash(filename)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.ReplaceAll(name, "/", ".")
}

// ScanIndexer is a line-scanning Indexer with an LRU cache keyed by
// content hash, so repeated extraction of identical content is free.
type ScanIndexer struct {
	cache *lru.Cache[uint64, map[string]string]
}

// NewScanIndexer creates a ScanIndexer. cacheSize <= 0 picks a default.
func NewScanIndexer(cacheSize int) *ScanIndexer {
	if cacheSize <= 0 {
		cacheSize = 512
	}
	cache, _ := lru.New[uint64, map[string]string](cacheSize)
	return &ScanIndexer{cache: cache}
}

// ExtractSymbols collects column-zero definitions: Python "class X" /
// "def x" / "async def x", GDScript "class_name X" / "func x" / "class X".
func (s *ScanIndexer) ExtractSymbols(source, modulePath string) (map[string]string, error) {
	if s == nil {
		return nil, fmt.Errorf("symbol: indexer is nil")
	}
	key := contentKey(source, modulePath)
	if s.cache != nil {
		if hit, ok := s.cache.Get(key); ok {
			return copyIndex(hit), nil
		}
	}
	out := make(map[string]string)
	for _, line := range strings.Split(source, "\n") {
		name, ok := definitionName(line)
		if !ok {
			continue
		}
		out[name] = modulePath
	}
	if s.cache != nil {
		s.cache.Add(key, copyIndex(out))
	}
	return out, nil
}

// IndexTree walks root, extracting symbols from every source file. Files
// later in walk order overwrite earlier same-named symbols.
func (s *ScanIndexer) IndexTree(root string) (map[string]string, error) {
	if s == nil {
		return nil, fmt.Errorf("symbol: indexer is nil")
	}
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("symbol: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("symbol: root %s is not a directory", root)
	}
	index := make(map[string]string)
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if _, skip := skipDirs[d.Name()]; skip && p != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsSourceFile(p) {
			return nil
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		data, readErr := os.ReadFile(p)
		if readErr != nil {
			// Unreadable files degrade the index instead of failing the walk.
			return nil
		}
		symbols, exErr := s.ExtractSymbols(string(data), ModulePath(rel))
		if exErr != nil {
			return nil
		}
		for name, mod := range symbols {
			index[name] = mod
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("symbol: walk %s: %w", root, err)
	}
	return index, nil
}

// definitionName returns the symbol introduced by a column-zero
// definition line, if any.
func definitionName(line string) (string, bool) {
	if line == "" || line[0] == ' ' || line[0] == '\t' {
		return "", false
	}
	for _, prefix := range []string{"class_name ", "class ", "async def ", "def ", "func ", "static func "} {
		rest, ok := strings.CutPrefix(line, prefix)
		if !ok {
			continue
		}
		name := identHead(rest)
		if name != "" {
			return name, true
		}
	}
	return "", false
}

// identHead returns the leading identifier of s.
func identHead(s string) string {
	end := 0
	for end < len(s) {
		c := s[end]
		isIdent := c == '_' ||
			(c >= 'a' && c <= 'z') ||
			(c >= 'A' && c <= 'Z') ||
			(end > 0 && c >= '0' && c <= '9')
		if !isIdent {
			break
		}
		end++
	}
	return s[:end]
}

func contentKey(source, modulePath string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(modulePath))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(source))
	return h.Sum64()
}

func copyIndex(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
