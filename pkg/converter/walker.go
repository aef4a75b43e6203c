package converter

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/spf13/afero"
)

// FileTask identifies one candidate file found during traversal.
type FileTask struct {
	Path      string // Path as walked, rooted at Options.RootPath
	RelPath   string // Slash-separated path relative to the root, or the base name for a single file
	Size      int64
	Extension string // Lower-cased, without the dot
}

// Walker traverses the root sequentially and hands every candidate file to a callback.
type Walker struct {
	fs       afero.Fs
	root     string
	include  map[string]struct{}
	exclude  map[string]struct{}
	matcher  gitignore.Matcher
	patterns int
	hooks    Hooks
	logger   *slog.Logger
}

// NewWalker creates a Walker from prepared options. Ignore patterns come from
// opts.IgnorePatterns and from a .cvt2utfignore file at the root, if present.
func NewWalker(opts *Options, loggerHandler slog.Handler) (*Walker, error) {
	logger := slog.New(loggerHandler).With(slog.String("component", "walker"))

	w := &Walker{
		fs:      opts.Fs,
		root:    opts.RootPath,
		include: extensionSet(opts.Include),
		exclude: extensionSet(opts.Exclude),
		hooks:   opts.EventHooks,
		logger:  logger,
	}
	w.exclude[BackupExtension] = struct{}{}

	patterns, err := w.loadIgnorePatterns(opts.IgnorePatterns)
	if err != nil {
		logger.Error("Failed to load ignore patterns", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to initialize ignore patterns: %w", err)
	}
	w.matcher = gitignore.NewMatcher(patterns)
	w.patterns = len(patterns)
	logger.Debug("Ignore patterns loaded", slog.Int("count", w.patterns))
	return w, nil
}

func (w *Walker) loadIgnorePatterns(configPatterns []string) ([]gitignore.Pattern, error) {
	var patterns []gitignore.Pattern
	for _, p := range configPatterns {
		if p = strings.TrimSpace(p); p != "" && !strings.HasPrefix(p, "#") {
			patterns = append(patterns, gitignore.ParsePattern(p, nil))
		}
	}

	if info, err := w.fs.Stat(w.root); err != nil || !info.IsDir() {
		return patterns, nil
	}
	ignoreFile := filepath.Join(w.root, IgnoreFileName)
	data, err := afero.ReadFile(w.fs, ignoreFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return patterns, nil
		}
		return nil, fmt.Errorf("reading %s: %w", ignoreFile, err)
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ignoreFile, err)
	}
	w.logger.Debug("Loaded ignore file", slog.String("path", ignoreFile))
	return patterns, nil
}

// Walk calls fn for each candidate in traversal order. A root that is a regular file is
// handed to fn alone, without the extension filter. Errors returned by fn stop the walk
// and are returned as is; unreadable entries below the root are logged and skipped.
func (w *Walker) Walk(ctx context.Context, fn func(FileTask) error) error {
	info, err := w.fs.Stat(w.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrRootNotFound, w.root)
		}
		return fmt.Errorf("%w: %s: %w", ErrStatFailed, w.root, err)
	}

	if !info.IsDir() {
		if err := ctx.Err(); err != nil {
			return err
		}
		task := FileTask{Path: w.root, RelPath: filepath.Base(w.root), Size: info.Size(), Extension: Extension(w.root)}
		w.discovered(task.RelPath)
		return fn(task)
	}

	w.logger.Info("Starting directory walk", slog.String("path", w.root))
	err = afero.Walk(w.fs, w.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == w.root {
				return fmt.Errorf("%w: %s: %w", ErrReadFailed, path, err)
			}
			w.logger.Warn("Error accessing path during walk", slog.String("path", path), slog.String("error", err.Error()))
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			w.logger.Debug("Skipping symbolic link", slog.String("path", path))
			return nil
		}

		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			w.logger.Warn("Could not calculate relative path", slog.String("path", path), slog.String("error", err.Error()))
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if info.IsDir() {
			if info.Name() == ".git" || w.ignored(rel, true) {
				w.logger.Debug("Directory ignored", slog.String("path", rel))
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if w.ignored(rel, false) {
			w.logger.Debug("File ignored", slog.String("path", rel))
			return nil
		}

		ext := Extension(info.Name())
		if !w.accepts(ext) {
			return nil
		}
		w.discovered(rel)
		return fn(FileTask{Path: path, RelPath: rel, Size: info.Size(), Extension: ext})
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			w.logger.Info("Directory walk cancelled", slog.String("reason", err.Error()))
		}
		return err
	}
	w.logger.Debug("Directory walk completed")
	return nil
}

func (w *Walker) ignored(rel string, isDir bool) bool {
	if w.patterns == 0 {
		return false
	}
	return w.matcher.Match(strings.Split(rel, "/"), isDir)
}

func (w *Walker) accepts(ext string) bool {
	if _, ok := w.exclude[ext]; ok {
		return false
	}
	_, ok := w.include[ext]
	return ok
}

func (w *Walker) discovered(rel string) {
	if hookErr := w.hooks.OnFileDiscovered(rel); hookErr != nil {
		w.logger.Warn("Event hook OnFileDiscovered failed", slog.String("path", rel), slog.String("error", hookErr.Error()))
	}
}

// Extension returns the part of name after its last '.', lower-cased and trimmed of
// surrounding whitespace. Names without a dot have no extension.
func Extension(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(name[i+1:]))
}

func extensionSet(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(e), ".")))
		if e != "" {
			set[e] = struct{}{}
		}
	}
	return set
}
