package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/afero"
	"github.com/stackvity/utf-converter/pkg/converter/encoding"
)

// Engine runs conversion and detection over a tree, one file at a time: each file is
// read, decided and (if needed) rewritten before the next one is looked at.
type Engine struct {
	opts     *Options
	logger   *slog.Logger
	walker   *Walker
	detector *encoding.Detector
	policy   Policy
	rewriter *Rewriter
	hooks    Hooks
}

// NewEngine validates opts and wires the walker, detector, policy and rewriter.
func NewEngine(opts Options) (*Engine, error) {
	if err := opts.prepare(); err != nil {
		return nil, err
	}
	logger := slog.New(opts.Logger).With(slog.String("component", "engine"))

	detector, err := encoding.NewDetector(opts.Guesser, opts.ConfidenceThreshold, opts.DetectChain, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}
	walker, err := NewWalker(&opts, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}

	e := &Engine{
		opts:     &opts,
		logger:   logger,
		walker:   walker,
		detector: detector,
		policy:   opts.Policy(),
		rewriter: NewRewriter(&opts, opts.Logger),
		hooks:    opts.EventHooks,
	}
	logger.Debug("Engine initialized",
		slog.String("root", opts.RootPath),
		slog.String("target", opts.TargetCodec.String()),
		slog.Float64("threshold", detector.Threshold()),
		slog.Int64("sizeLimit", opts.SizeLimit),
		slog.Bool("backup", opts.Backup),
		slog.Bool("skipUTF", opts.SkipUTF))
	return e, nil
}

// Convert converts every candidate file under the root. Per-file problems are recorded
// in the report and never stop the run. Only a missing root and an interrupt are
// returned as errors; after an interrupt the partial report is still returned.
func (e *Engine) Convert(ctx context.Context) (Report, error) {
	return e.run(ctx, CommandConvert, e.convertFile)
}

// Detect reports the detected codec of every candidate file without writing anything.
func (e *Engine) Detect(ctx context.Context) (Report, error) {
	return e.run(ctx, CommandDetect, e.detectFile)
}

func (e *Engine) run(ctx context.Context, cmd Command, handle func(FileTask, *Report)) (Report, error) {
	begin := time.Now()
	report := newReport(cmd, e.opts, e.opts.Clock())
	if cmd == CommandDetect {
		report.Detections = []DetectionInfo{}
	}

	e.logger.Info("Run starting", slog.String("command", string(cmd)), slog.String("runId", report.RunID))
	walkErr := e.walker.Walk(ctx, func(task FileTask) error {
		report.Summary.TotalFilesScanned++
		handle(task, &report)
		return nil
	})
	report.finish(time.Since(begin))

	if walkErr != nil {
		switch {
		case errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded):
			report.Summary.Interrupted = true
			e.logger.Warn("Run interrupted", slog.Int("filesVisited", report.Summary.TotalFilesScanned))
			walkErr = fmt.Errorf("%w: %w", ErrInterrupted, walkErr)
		case errors.Is(walkErr, ErrRootNotFound):
			e.logger.Error("Root path does not exist", slog.String("path", e.opts.RootPath))
			return report, walkErr
		default:
			e.logger.Error("Run aborted", slog.String("error", walkErr.Error()))
			return report, walkErr
		}
	}

	if hookErr := e.hooks.OnRunComplete(report); hookErr != nil {
		e.logger.Warn("Error reported by OnRunComplete hook", slog.String("hookError", hookErr.Error()))
	}
	e.logger.Info("Run finished",
		slog.String("command", string(cmd)),
		slog.Int("scanned", report.Summary.TotalFilesScanned),
		slog.Int("converted", report.Summary.ConvertedCount),
		slog.Int("skipped", report.Summary.SkippedCount),
		slog.Int("errors", report.Summary.ErrorCount),
		slog.Duration("duration", time.Since(begin)))
	return report, walkErr
}

func (e *Engine) convertFile(task FileTask, report *Report) {
	start := time.Now()
	e.status(task.RelPath, StatusProcessing, "", 0)

	if d, ok := e.policy.Bounds(task.Size); !ok {
		e.skip(report, task, d.Reason, fmt.Sprintf("size %d bytes, limit %d", task.Size, e.policy.SizeLimit), start)
		return
	}

	data, err := afero.ReadFile(e.opts.Fs, task.Path)
	if err != nil {
		e.fail(report, task, "", fmt.Errorf("%w: %s: %w", ErrReadFailed, task.RelPath, err), start)
		return
	}
	if e.opts.SkipBinary && encoding.IsBinary(data) {
		e.skip(report, task, ReasonBinary, "", start)
		return
	}

	result := e.detector.Detect(data)
	decision, text := e.policy.Resolve(e.policy.Decide(result, int64(len(data))), data)

	switch decision.Action {
	case ActionSkip:
		e.skip(report, task, decision.Reason, detectionDetails(result, e.detector.Threshold()), start)
	case ActionFail:
		e.fail(report, task, decision.Reason, decision.Err, start)
	case ActionConvert:
		res, err := e.rewriter.Rewrite(task.Path, text, decision.To)
		if err != nil {
			e.fail(report, task, "", err, start)
			return
		}
		dur := time.Since(start)
		report.Converted = append(report.Converted, ConvertedInfo{
			Path:       task.RelPath,
			From:       decision.From.String(),
			To:         decision.To.String(),
			Confidence: result.Confidence,
			BackupPath: res.BackupPath,
			SizeBytes:  int64(len(data)),
			DurationMs: dur.Milliseconds(),
		})
		e.logger.Info("Converted file",
			slog.String("path", task.RelPath),
			slog.String("from", decision.From.String()),
			slog.String("to", decision.To.String()),
			slog.Float64("confidence", result.Confidence),
			slog.String("backup", res.BackupPath))
		e.status(task.RelPath, StatusConverted, fmt.Sprintf("%s -> %s", decision.From, decision.To), dur)
	}
}

func (e *Engine) detectFile(task FileTask, report *Report) {
	start := time.Now()
	e.status(task.RelPath, StatusProcessing, "", 0)

	if d, ok := e.policy.Bounds(task.Size); !ok {
		e.skip(report, task, d.Reason, fmt.Sprintf("size %d bytes, limit %d", task.Size, e.policy.SizeLimit), start)
		return
	}
	data, err := afero.ReadFile(e.opts.Fs, task.Path)
	if err != nil {
		e.fail(report, task, "", fmt.Errorf("%w: %s: %w", ErrReadFailed, task.RelPath, err), start)
		return
	}

	info := DetectionInfo{Path: task.RelPath, SizeBytes: int64(len(data))}
	if encoding.IsBinary(data) {
		info.Binary = true
	} else {
		result := e.detector.Detect(data)
		info.Codec = result.Codec.String()
		info.Raw = result.Raw
		info.Confidence = result.Confidence
		info.ASCII = result.ASCII
		if result.IsUnknown() {
			e.logger.Warn("Encoding undetectable", slog.String("path", task.RelPath), slog.String("details", detectionDetails(result, e.detector.Threshold())))
		}
	}
	report.Detections = append(report.Detections, info)

	msg := info.Codec
	switch {
	case info.Binary:
		msg = string(ReasonBinary)
	case msg == "":
		msg = string(ReasonUndetectable)
	}
	e.logger.Debug("Detected encoding", slog.String("path", task.RelPath), slog.String("codec", msg), slog.Float64("confidence", info.Confidence))
	e.status(task.RelPath, StatusDetected, msg, time.Since(start))
}

func (e *Engine) skip(report *Report, task FileTask, reason Reason, details string, start time.Time) {
	report.Skipped = append(report.Skipped, SkippedInfo{Path: task.RelPath, Reason: reason, Details: details})
	if reason == ReasonUndetectable {
		e.logger.Warn("Encoding undetectable, file left untouched", slog.String("path", task.RelPath), slog.String("details", details))
	} else {
		e.logger.Debug("Skipping file", slog.String("path", task.RelPath), slog.String("reason", string(reason)))
	}
	e.status(task.RelPath, StatusSkipped, string(reason), time.Since(start))
}

func (e *Engine) fail(report *Report, task FileTask, reason Reason, err error, start time.Time) {
	report.Errors = append(report.Errors, ErrorInfo{Path: task.RelPath, Error: err.Error(), Reason: reason})
	if reason == ReasonDecodeError {
		e.logger.Error("Content does not decode as the detected codec", slog.String("path", task.RelPath), slog.String("error", err.Error()))
	} else {
		e.logger.Error("Failed to process file", slog.String("path", task.RelPath), slog.String("error", err.Error()))
	}
	e.status(task.RelPath, StatusFailed, err.Error(), time.Since(start))
}

func (e *Engine) status(path string, status Status, msg string, d time.Duration) {
	if hookErr := e.hooks.OnFileStatusUpdate(path, status, msg, d); hookErr != nil {
		e.logger.Warn("Event hook OnFileStatusUpdate failed", slog.String("path", path), slog.String("status", string(status)), slog.String("error", hookErr.Error()))
	}
}

func detectionDetails(r encoding.DetectionResult, threshold float64) string {
	switch {
	case !r.IsUnknown():
		return fmt.Sprintf("detected %s (confidence %.2f)", r.Codec, r.Confidence)
	case r.Raw != "":
		return fmt.Sprintf("guessed %s with confidence %.2f, below threshold %.2f", r.Raw, r.Confidence, threshold)
	}
	return "no codec detected"
}
