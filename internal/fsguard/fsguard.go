package fsguard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Dir confines file reads and writes to one directory tree. Generated
// filenames originate in model output, so nothing above the root may be
// touched regardless of what the plan contains.
type Dir struct {
	absRoot string
}

// New binds a Dir to root, creating the directory if needed. The root is
// resolved to an absolute, symlink-free path once; every later operation
// is checked against it.
func New(root string) (*Dir, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("fsguard: empty root")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("fsguard: create root: %w", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, err
	}
	return &Dir{absRoot: abs}, nil
}

// Root returns the absolute root directory.
func (d *Dir) Root() string {
	if d == nil {
		return ""
	}
	return d.absRoot
}

// Resolve maps a slash-separated relative name onto an absolute path
// under the root, rejecting absolute paths and traversal.
func (d *Dir) Resolve(name string) (string, error) {
	if d == nil {
		return "", errors.New("fsguard: dir not configured")
	}
	if strings.TrimSpace(name) == "" {
		return "", errors.New("fsguard: empty path")
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || (runtime.GOOS == "windows" && filepath.VolumeName(clean) != "") {
		return "", fmt.Errorf("fsguard: absolute path %q not allowed", name)
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("fsguard: path %q escapes the root", name)
	}
	joined := filepath.Join(d.absRoot, clean)
	if !hasPathPrefix(joined, d.absRoot) {
		return "", fmt.Errorf("fsguard: path %q escapes the root", name)
	}
	return joined, nil
}

// ReadFile reads a file under the root.
func (d *Dir) ReadFile(name string) ([]byte, error) {
	p, err := d.Resolve(name)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("fsguard: %q is a directory", name)
	}
	return os.ReadFile(p)
}

// WriteFile writes a file under the root, creating parent directories.
func (d *Dir) WriteFile(name string, content []byte) error {
	p, err := d.Resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("fsguard: create parent of %q: %w", name, err)
	}
	return os.WriteFile(p, content, 0o644)
}

func hasPathPrefix(path, root string) bool {
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	if runtime.GOOS == "windows" {
		path = strings.ToLower(path)
		root = strings.ToLower(root)
	}
	if path == root {
		return true
	}
	sep := string(os.PathSeparator)
	if !strings.HasSuffix(root, sep) {
		root += sep
	}
	return strings.HasPrefix(path, root)
}
