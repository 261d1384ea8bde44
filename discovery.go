package paradigm

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/jward/paradigm/internal/runtime"
)

const gitListTimeout = 10 * time.Second

var skipDirs = map[string]struct{}{
	"node_modules": {},
	"vendor":       {},
	"__pycache__":  {},
	"target":       {},
	"build":        {},
	"dist":         {},
	"_build":       {},
	"venv":         {},
}

// IndexDirectory discovers sources under root and indexes them. If root is
// inside a git repository, uses git ls-files to respect .gitignore. Falls
// back to a filesystem walk that honours the root .gitignore and skips
// hidden and vendored directories.
func (e *Engine) IndexDirectory(ctx context.Context, root string) error {
	paths, err := e.Discover(ctx, root)
	if err != nil {
		return err
	}
	return e.IndexFiles(ctx, paths)
}

// Discover returns the sorted paths under root that IndexDirectory would
// hand to IndexFiles: files with a recognised extension that pass the
// include and exclude globs.
func (e *Engine) Discover(ctx context.Context, root string) ([]string, error) {
	paths, err := e.gitListFiles(ctx, root)
	if err != nil {
		e.logger.Debug("git ls-files unavailable, walking", slog.String("root", root), slog.String("error", err.Error()))
		paths, err = e.walkListFiles(root)
		if err != nil {
			return nil, err
		}
	}

	out := paths[:0]
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			continue
		}
		if e.selected(filepath.ToSlash(rel)) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

// selected applies the include and exclude globs to a root-relative,
// slash-separated path.
func (e *Engine) selected(rel string) bool {
	if len(e.include) > 0 {
		matched := false
		for _, g := range e.include {
			if ok, _ := doublestar.Match(g, rel); ok {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, g := range e.exclude {
		if ok, _ := doublestar.Match(g, rel); ok {
			return false
		}
	}
	return true
}

// gitListFiles uses git ls-files to discover tracked and untracked (but not
// ignored) files under root, filtered to supported languages.
func (e *Engine) gitListFiles(ctx context.Context, root string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, gitListTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		absPath := filepath.Join(root, line)
		if _, ok := runtime.LanguageForFile(absPath); ok {
			paths = append(paths, absPath)
		}
	}
	return paths, nil
}

// walkListFiles discovers files by walking the filesystem, used as a fallback
// when git is not available. Symlinks are not followed.
func (e *Engine) walkListFiles(root string) ([]string, error) {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		gi = nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if gi != nil {
			if rel, err := filepath.Rel(root, path); err == nil && gi.MatchesPath(rel) {
				return nil
			}
		}
		if _, ok := runtime.LanguageForFile(path); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("paradigm: walk %s: %w", root, err)
	}
	return paths, nil
}
