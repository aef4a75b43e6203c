package hooks

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/stackvity/utf-converter/pkg/converter"
)

// CLIHooks implements the converter.Hooks interface, bridging library events to the
// CLI's output: a live progress line on a terminal, or log records otherwise.
type CLIHooks struct {
	logger         *slog.Logger
	verboseEnabled bool
	progressBar    ProgressBar // nil when stderr is not a terminal or verbose logging is on
	mu             sync.Mutex  // Protects concurrent access to progressBar
}

// ProgressBar defines the interface needed to interact with the progress bar.
// *progressbar.ProgressBar satisfies it.
type ProgressBar interface {
	Add(num int) error
	Describe(description string)
	Close() error
}

// NewCLIHooks creates a new CLIHooks instance. Pass nil for progBar to log instead.
// A progress bar is ignored in verbose mode, where every status is logged.
func NewCLIHooks(logger *slog.Logger, verboseEnabled bool, progBar ProgressBar) converter.Hooks {
	if verboseEnabled {
		progBar = nil
	}
	return &CLIHooks{
		logger:         logger,
		verboseEnabled: verboseEnabled,
		progressBar:    progBar,
	}
}

// OnFileDiscovered handles the event when a candidate file is found by the walker.
func (h *CLIHooks) OnFileDiscovered(path string) error {
	if h.verboseEnabled {
		h.logger.Debug("File discovered", slog.String("path", path))
	}
	return nil // Library ignores hook errors
}

// OnFileStatusUpdate handles events when a file's processing status changes.
func (h *CLIHooks) OnFileStatusUpdate(path string, status converter.Status, message string, duration time.Duration) error {
	if h.verboseEnabled {
		logLevel := slog.LevelDebug
		logMsg := "File status updated"
		attrs := []slog.Attr{
			slog.String("path", path),
			slog.String("status", string(status)),
		}
		if duration > 0 {
			attrs = append(attrs, slog.Duration("duration", duration))
		}
		if message != "" {
			logKey := "message"
			if status == converter.StatusFailed {
				logKey = "error"
			}
			attrs = append(attrs, slog.String(logKey, message))
		}

		switch status {
		case converter.StatusConverted, converter.StatusRemoved:
			logLevel = slog.LevelInfo
		case converter.StatusFailed:
			logLevel = slog.LevelError
			logMsg = "File processing failed"
		}
		h.logger.LogAttrs(context.Background(), logLevel, logMsg, attrs...)
		return nil
	}

	if h.progressBar != nil {
		h.mu.Lock()
		defer h.mu.Unlock()

		h.progressBar.Describe(shortName(path))
		// Only count final states
		switch status {
		case converter.StatusConverted, converter.StatusDetected, converter.StatusRemoved,
			converter.StatusSkipped, converter.StatusFailed:
			_ = h.progressBar.Add(1)
		}
	}
	return nil
}

// OnRunComplete finalizes the progress line. The report itself is rendered by the
// command once the library call returns.
func (h *CLIHooks) OnRunComplete(report converter.Report) error {
	if h.progressBar != nil {
		h.mu.Lock()
		_ = h.progressBar.Close()
		h.mu.Unlock()
	}
	h.logger.Debug("Run complete",
		slog.String("runId", report.RunID),
		slog.String("command", string(report.Command)),
		slog.Int("errors", report.Summary.ErrorCount),
	)
	return nil
}
