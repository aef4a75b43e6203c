package converter

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
	"github.com/stackvity/utf-converter/pkg/converter/codec"
)

// RewriteResult describes a completed rewrite.
type RewriteResult struct {
	BackupPath   string // Empty when backups are off
	BytesWritten int
}

// Rewriter replaces a file's content with text encoded in the target codec.
//
// With backups on, the original is renamed to <path>.<unix-seconds>.bak before anything
// is written, so a failed or interrupted write always leaves the original bytes under
// the backup name. With backups off the file is truncated and written in place.
// Nothing is retried.
type Rewriter struct {
	fs          afero.Fs
	clock       Clock
	backup      bool
	verify      bool
	keepModTime bool
	logger      *slog.Logger
}

// NewRewriter creates a Rewriter from prepared options.
func NewRewriter(opts *Options, loggerHandler slog.Handler) *Rewriter {
	return &Rewriter{
		fs:          opts.Fs,
		clock:       opts.Clock,
		backup:      opts.Backup,
		verify:      opts.VerifyWrites,
		keepModTime: opts.KeepModTime,
		logger:      slog.New(loggerHandler).With(slog.String("component", "rewriter")),
	}
}

// Rewrite encodes text in target and stores it at path.
func (r *Rewriter) Rewrite(path string, text string, target codec.Codec) (RewriteResult, error) {
	data, err := codec.Encode(target, text)
	if err != nil {
		return RewriteResult{}, fmt.Errorf("%w: %s: %w", ErrWriteFailed, path, err)
	}

	info, err := r.fs.Stat(path)
	if err != nil {
		return RewriteResult{}, fmt.Errorf("%w: %s: %w", ErrStatFailed, path, err)
	}
	// Some filesystems return a live FileInfo, so copy what is needed before writing.
	perm := info.Mode().Perm()
	mtime := info.ModTime()

	var res RewriteResult
	if r.backup {
		backupPath, err := r.backupName(path)
		if err != nil {
			return RewriteResult{}, err
		}
		if err := r.fs.Rename(path, backupPath); err != nil {
			return RewriteResult{}, fmt.Errorf("%w: %s: %w", ErrBackupFailed, path, err)
		}
		res.BackupPath = backupPath
		r.logger.Debug("Original moved to backup", slog.String("path", path), slog.String("backup", backupPath))
	}

	if err := afero.WriteFile(r.fs, path, data, perm); err != nil {
		if res.BackupPath != "" {
			return res, fmt.Errorf("%w: %s (original kept at %s): %w", ErrWriteFailed, path, res.BackupPath, err)
		}
		return res, fmt.Errorf("%w: %s: %w", ErrWriteFailed, path, err)
	}
	res.BytesWritten = len(data)

	if r.verify {
		if err := r.verifyContent(path, data); err != nil {
			return res, err
		}
	}

	if r.keepModTime {
		if err := r.fs.Chtimes(path, mtime, mtime); err != nil {
			r.logger.Warn("Could not restore modification time", slog.String("path", path), slog.String("error", err.Error()))
		}
	}
	return res, nil
}

func (r *Rewriter) verifyContent(path string, want []byte) error {
	got, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return fmt.Errorf("%w: %s: read back: %w", ErrWriteFailed, path, err)
	}
	if xxhash.Sum64(got) != xxhash.Sum64(want) {
		return fmt.Errorf("%w: %s: content on disk differs from what was written", ErrWriteFailed, path)
	}
	return nil
}

// backupName returns <path>.<unix-seconds>.bak, moving the timestamp forward while the
// name is taken.
func (r *Rewriter) backupName(path string) (string, error) {
	ts := r.clock().Unix()
	for {
		name := fmt.Sprintf("%s.%d.%s", path, ts, BackupExtension)
		_, err := r.fs.Stat(name)
		if errors.Is(err, fs.ErrNotExist) {
			return name, nil
		}
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrBackupFailed, name, err)
		}
		ts++
	}
}
