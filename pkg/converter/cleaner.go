package converter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// BackupCleaner deletes recent backup files left behind by conversion runs. It is
// independent of conversion and only ever removes files whose last extension is "bak".
type BackupCleaner struct {
	fs        afero.Fs
	clock     Clock
	retention time.Duration
	dryRun    bool
	hooks     Hooks
	logger    *slog.Logger
}

// NewBackupCleaner creates a cleaner from prepared options.
func NewBackupCleaner(opts *Options, loggerHandler slog.Handler) *BackupCleaner {
	return &BackupCleaner{
		fs:        opts.Fs,
		clock:     opts.Clock,
		retention: opts.BackupRetention,
		dryRun:    opts.DryRun,
		hooks:     opts.EventHooks,
		logger:    slog.New(loggerHandler).With(slog.String("component", "cleaner")),
	}
}

// CleanResult lists what a cleanup pass removed and what it failed to remove.
type CleanResult struct {
	Removed []RemovedInfo
	Kept    int // Backups older than the window
	Errors  []ErrorInfo
}

// Clean walks root and removes every backup whose creation time lies after
// now - retention. Backups outside the window and all other files are left alone.
func (c *BackupCleaner) Clean(ctx context.Context, root string) (CleanResult, error) {
	var res CleanResult

	info, err := c.fs.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return res, fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return res, fmt.Errorf("%w: %s: %w", ErrStatFailed, root, err)
	}
	if !info.IsDir() {
		return res, fmt.Errorf("%w: cleanup root %s is not a directory", ErrConfigValidation, root)
	}

	cutoff := c.clock().Add(-c.retention)
	c.logger.Info("Scanning for backup files", slog.String("path", root), slog.Time("cutoff", cutoff), slog.Bool("dryRun", c.dryRun))

	err = afero.Walk(c.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			c.logger.Warn("Error accessing path during cleanup", slog.String("path", path), slog.String("error", err.Error()))
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !info.Mode().IsRegular() || filepath.Ext(info.Name()) != "."+BackupExtension {
			return nil
		}

		created := creationTime(info)
		if !created.After(cutoff) {
			res.Kept++
			c.logger.Debug("Backup outside retention window", slog.String("path", path), slog.Time("created", created))
			return nil
		}

		entry := RemovedInfo{Path: path, CreatedAt: created, SizeBytes: info.Size()}
		if c.dryRun {
			c.logger.Info("Would remove backup", slog.String("path", path))
			res.Removed = append(res.Removed, entry)
			c.notify(path, "dry run")
			return nil
		}
		if err := c.fs.Remove(path); err != nil {
			wrapped := fmt.Errorf("%w: %s: %w", ErrRemoveFailed, path, err)
			c.logger.Error("Failed to remove backup", slog.String("path", path), slog.String("error", err.Error()))
			res.Errors = append(res.Errors, ErrorInfo{Path: path, Error: wrapped.Error()})
			return nil
		}
		c.logger.Info("Removed backup", slog.String("path", path))
		res.Removed = append(res.Removed, entry)
		c.notify(path, "")
		return nil
	})
	return res, err
}

func (c *BackupCleaner) notify(path, msg string) {
	if hookErr := c.hooks.OnFileStatusUpdate(path, StatusRemoved, msg, 0); hookErr != nil {
		c.logger.Warn("Event hook OnFileStatusUpdate failed", slog.String("path", path), slog.String("error", hookErr.Error()))
	}
}
