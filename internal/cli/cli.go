package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/stackvity/utf-converter/internal/cli/hooks"
	"github.com/stackvity/utf-converter/internal/cli/ui"
	"github.com/stackvity/utf-converter/pkg/converter"
)

// Output carries where a run writes its report and progress. Zero fields fall back to
// os.Stdout and os.Stderr.
type Output struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes one command after configuration loading: it attaches the terminal hooks,
// calls the library, and renders the report. Per-file failures are part of the report
// and do not produce an error; a missing root, invalid options or an interrupt do.
// The partial report of an interrupted run is still rendered.
func Run(ctx context.Context, cmd converter.Command, opts converter.Options, logger *slog.Logger, out Output) error {
	if out.Stdout == nil {
		out.Stdout = os.Stdout
	}
	if out.Stderr == nil {
		out.Stderr = os.Stderr
	}

	var progBar hooks.ProgressBar
	if f, ok := out.Stderr.(*os.File); ok && hooks.IsTerminal(f) && !opts.Verbose {
		progBar = hooks.NewProgressBar(f)
	}
	opts.EventHooks = hooks.NewCLIHooks(logger, opts.Verbose, progBar)

	var (
		report converter.Report
		err    error
	)
	switch cmd {
	case converter.CommandConvert:
		report, err = converter.Convert(ctx, opts)
	case converter.CommandDetect:
		report, err = converter.Detect(ctx, opts)
	case converter.CommandCleanBak:
		report, err = converter.CleanBackups(ctx, opts)
	default:
		return fmt.Errorf("unknown command '%s'", cmd)
	}

	if err != nil && !errors.Is(err, converter.ErrInterrupted) {
		logger.Error("Run failed", slog.String("command", string(cmd)), slog.Any("error", err))
		return err
	}

	styles := ui.PlainStyles()
	if f, ok := out.Stdout.(*os.File); ok && hooks.IsTerminal(f) {
		styles = ui.ColorStyles()
	}
	renderErr := ui.Render(out.Stdout, report, opts.OutputFormat, styles)
	if renderErr != nil {
		logger.Error("Failed to write report", slog.Any("error", renderErr))
	}

	if err != nil {
		logger.Debug("Partial report written after interrupt", slog.String("command", string(cmd)))
		return err
	}
	if renderErr != nil {
		return renderErr
	}
	logger.Debug("Run finished",
		slog.String("command", string(cmd)),
		slog.Int("scanned", report.Summary.TotalFilesScanned),
		slog.Int("errors", report.Summary.ErrorCount),
	)
	return nil
}
