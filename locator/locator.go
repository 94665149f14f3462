// Package locator resolves the module paths of import statements to files.
package locator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/module"

	"github.com/podhmo/swiftflow/cache"
	"github.com/podhmo/swiftflow/fs"
)

// Ext is the file extension of SwiftFlow sources. It may be omitted in
// import paths.
const Ext = ".swf"

// Locator finds the file an import path refers to. The search order is the
// path itself (relative to the importing file's directory, or absolute),
// then each import directory joined with the path; each candidate is tried
// as written and then with Ext appended.
type Locator struct {
	fs          fs.FS
	importPaths []string
	workDir     string
	cache       *cache.ImportCache
	logger      *slog.Logger
}

// Option configures a Locator.
type Option func(*Locator)

// WithFS sets the file system. The default is the OS file system.
func WithFS(fsys fs.FS) Option {
	return func(l *Locator) { l.fs = fsys }
}

// WithImportPaths appends directories searched after the importing file's own directory.
func WithImportPaths(dirs ...string) Option {
	return func(l *Locator) { l.importPaths = append(l.importPaths, dirs...) }
}

// WithCache memoises resolutions in c.
func WithCache(c *cache.ImportCache) Option {
	return func(l *Locator) { l.cache = c }
}

// WithWorkDir sets the directory used for imports from source that did not
// come from a file. The default is the process working directory.
func WithWorkDir(dir string) Option {
	return func(l *Locator) { l.workDir = dir }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Locator) { l.logger = logger }
}

// New creates a new Locator.
func New(options ...Option) *Locator {
	l := &Locator{}
	for _, opt := range options {
		opt(l)
	}
	if l.fs == nil {
		l.fs = fs.NewOSFS()
	}
	if l.cache == nil {
		l.cache = cache.NewImportCache("", "")
	}
	if l.logger == nil {
		l.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	}
	if l.workDir == "" {
		if wd, err := os.Getwd(); err == nil {
			l.workDir = wd
		}
	}
	return l
}

// Resolve returns the file that path names when imported from the file
// from. from may be empty.
func (l *Locator) Resolve(from, path string) (string, error) {
	if err := CheckImportPath(path); err != nil {
		return "", err
	}

	dir := l.workDir
	if from != "" {
		dir = filepath.Dir(from)
	}
	key := cache.Key(dir, path)
	if cached, ok := l.cache.Get(key); ok {
		if l.isFile(cached) {
			return cached, nil
		}
		l.cache.Delete(key)
	}

	candidates := l.candidates(dir, path)
	for _, candidate := range candidates {
		if l.isFile(candidate) {
			l.cache.Set(key, candidate)
			l.logger.Debug("resolved import", "path", path, "file", candidate)
			return candidate, nil
		}
	}
	return "", fmt.Errorf("module not found (searched %s)", strings.Join(candidates, ", "))
}

// Import resolves path and reads the file. It is the importer used by the
// evaluator.
func (l *Locator) Import(ctx context.Context, from, path string) (string, []byte, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	filename, err := l.Resolve(from, path)
	if err != nil {
		return "", nil, err
	}
	src, err := l.fs.ReadFile(filename)
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return filename, src, nil
}

func (l *Locator) candidates(dir, path string) []string {
	native := filepath.FromSlash(path)

	var bases []string
	if filepath.IsAbs(native) {
		bases = append(bases, filepath.Clean(native))
	} else {
		bases = append(bases, filepath.Join(dir, native))
		for _, p := range l.importPaths {
			bases = append(bases, filepath.Join(p, native))
		}
	}

	candidates := make([]string, 0, len(bases)*2)
	for _, b := range bases {
		candidates = append(candidates, b)
		if filepath.Ext(b) != Ext {
			candidates = append(candidates, b+Ext)
		}
	}
	return candidates
}

func (l *Locator) isFile(name string) bool {
	info, err := l.fs.Stat(name)
	return err == nil && !info.IsDir()
}

// CheckImportPath reports whether path is a well-formed import path: a
// slash-separated file path, optionally absolute or starting with ./ or
// ../ segments, whose remaining elements are valid file names.
func CheckImportPath(path string) error {
	if path == "" {
		return fmt.Errorf("empty import path")
	}
	rest := strings.TrimPrefix(filepath.ToSlash(path), "/")
	for {
		switch {
		case strings.HasPrefix(rest, "./"):
			rest = rest[2:]
			continue
		case strings.HasPrefix(rest, "../"):
			rest = rest[3:]
			continue
		}
		break
	}
	rest = strings.TrimSuffix(rest, Ext)
	if err := module.CheckFilePath(rest); err != nil {
		return fmt.Errorf("invalid import path %q: %w", path, err)
	}
	return nil
}
