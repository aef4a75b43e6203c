// Package converter detects the character encoding of text files and rewrites them as
// UTF-8, keeping timestamped backups, and prunes those backups on request.
package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Convert is the main entry point for the conversion library. It walks opts.RootPath
// and converts every candidate file. See Engine.Convert.
func Convert(ctx context.Context, opts Options) (Report, error) {
	engine, err := NewEngine(opts)
	if err != nil {
		return Report{}, err
	}
	return engine.Convert(ctx)
}

// Detect walks opts.RootPath and reports each candidate's codec without modifying anything.
func Detect(ctx context.Context, opts Options) (Report, error) {
	engine, err := NewEngine(opts)
	if err != nil {
		return Report{}, err
	}
	return engine.Detect(ctx)
}

// CleanBackups removes backup files under opts.RootPath created within
// opts.BackupRetention. With opts.DryRun set it only reports what it would remove.
func CleanBackups(ctx context.Context, opts Options) (Report, error) {
	if err := opts.prepare(); err != nil {
		return Report{}, err
	}
	logger := slog.New(opts.Logger).With(slog.String("component", "cleanbak"))

	begin := time.Now()
	report := newReport(CommandCleanBak, &opts, opts.Clock())
	report.Removed = []RemovedInfo{}

	res, err := NewBackupCleaner(&opts, opts.Logger).Clean(ctx, opts.RootPath)
	report.Removed = append(report.Removed, res.Removed...)
	report.Errors = append(report.Errors, res.Errors...)
	report.Summary.TotalFilesScanned = len(res.Removed) + res.Kept + len(res.Errors)
	report.finish(time.Since(begin))

	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			logger.Error("Backup cleanup failed", slog.String("error", err.Error()))
			return report, err
		}
		report.Summary.Interrupted = true
		logger.Warn("Backup cleanup interrupted", slog.Int("removed", len(res.Removed)))
		err = fmt.Errorf("%w: %w", ErrInterrupted, err)
	}

	if hookErr := opts.EventHooks.OnRunComplete(report); hookErr != nil {
		logger.Warn("Error reported by OnRunComplete hook", slog.String("hookError", hookErr.Error()))
	}
	logger.Info("Backup cleanup finished", slog.Int("removed", len(res.Removed)), slog.Int("kept", res.Kept), slog.Bool("dryRun", opts.DryRun))
	return report, err
}
