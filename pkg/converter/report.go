package converter

import (
	"time"

	"github.com/google/uuid"
)

// Report summarizes the result of a single run.
type Report struct {
	SchemaVersion string          `json:"schemaVersion" toml:"schemaVersion"`
	RunID         string          `json:"runId" toml:"runId"`
	Command       Command         `json:"command" toml:"command"`
	Summary       ReportSummary   `json:"summary" toml:"summary"`
	Converted     []ConvertedInfo `json:"converted" toml:"converted,omitempty"`
	Skipped       []SkippedInfo   `json:"skipped" toml:"skipped,omitempty"`
	Detections    []DetectionInfo `json:"detections,omitempty" toml:"detections,omitempty"`
	Removed       []RemovedInfo   `json:"removed,omitempty" toml:"removed,omitempty"`
	Errors        []ErrorInfo     `json:"errors" toml:"errors,omitempty"`
}

// ReportSummary contains aggregated statistics for a run.
type ReportSummary struct {
	RootPath          string    `json:"rootPath" toml:"rootPath"`
	ProfileUsed       string    `json:"profileUsed,omitempty" toml:"profileUsed,omitempty"`
	ConfigFilePath    string    `json:"configFilePath,omitempty" toml:"configFilePath,omitempty"`
	Target            string    `json:"target,omitempty" toml:"target,omitempty"`
	TotalFilesScanned int       `json:"totalFilesScanned" toml:"totalFilesScanned"`
	ConvertedCount    int       `json:"convertedCount" toml:"convertedCount"`
	SkippedCount      int       `json:"skippedCount" toml:"skippedCount"`
	DetectedCount     int       `json:"detectedCount" toml:"detectedCount"`
	RemovedCount      int       `json:"removedCount" toml:"removedCount"`
	ErrorCount        int       `json:"errorCount" toml:"errorCount"`
	DryRun            bool      `json:"dryRun,omitempty" toml:"dryRun,omitempty"`
	Interrupted       bool      `json:"interrupted" toml:"interrupted"`
	DurationSeconds   float64   `json:"durationSeconds" toml:"durationSeconds"`
	Timestamp         time.Time `json:"timestamp" toml:"timestamp"`
}

// ConvertedInfo details a file that was rewritten.
type ConvertedInfo struct {
	Path       string  `json:"path" toml:"path"`
	From       string  `json:"from" toml:"from"`
	To         string  `json:"to" toml:"to"`
	Confidence float64 `json:"confidence" toml:"confidence"`
	BackupPath string  `json:"backupPath,omitempty" toml:"backupPath,omitempty"`
	SizeBytes  int64   `json:"sizeBytes" toml:"sizeBytes"`
	DurationMs int64   `json:"durationMs" toml:"durationMs"`
}

// SkippedInfo details a file that was intentionally left untouched.
type SkippedInfo struct {
	Path    string `json:"path" toml:"path"`
	Reason  Reason `json:"reason" toml:"reason"`
	Details string `json:"details,omitempty" toml:"details,omitempty"`
}

// DetectionInfo is one row of a detect run.
type DetectionInfo struct {
	Path       string  `json:"path" toml:"path"`
	Codec      string  `json:"codec" toml:"codec"` // Empty when undetectable
	Raw        string  `json:"raw,omitempty" toml:"raw,omitempty"`
	Confidence float64 `json:"confidence" toml:"confidence"`
	ASCII      bool    `json:"ascii" toml:"ascii"`
	Binary     bool    `json:"binary,omitempty" toml:"binary,omitempty"`
	SizeBytes  int64   `json:"sizeBytes" toml:"sizeBytes"`
}

// RemovedInfo details a backup file deleted (or, in a dry run, selected) by cleanbak.
type RemovedInfo struct {
	Path      string    `json:"path" toml:"path"`
	CreatedAt time.Time `json:"createdAt" toml:"createdAt"`
	SizeBytes int64     `json:"sizeBytes" toml:"sizeBytes"`
}

// ErrorInfo details a per-file error. It never stopped the run.
type ErrorInfo struct {
	Path   string `json:"path" toml:"path"`
	Error  string `json:"error" toml:"error"`
	Reason Reason `json:"reason,omitempty" toml:"reason,omitempty"`
}

// newReport starts a report for a command. Summary counters are filled by finish.
func newReport(cmd Command, opts *Options, start time.Time) Report {
	r := Report{
		SchemaVersion: ReportSchemaVersion,
		RunID:         uuid.NewString(),
		Command:       cmd,
		Summary: ReportSummary{
			RootPath:       opts.RootPath,
			ProfileUsed:    opts.ProfileName,
			ConfigFilePath: opts.ConfigFilePath,
			DryRun:         opts.DryRun,
			Timestamp:      start,
		},
		Converted: []ConvertedInfo{},
		Skipped:   []SkippedInfo{},
		Errors:    []ErrorInfo{},
	}
	if cmd == CommandConvert {
		r.Summary.Target = opts.TargetCodec.String()
	}
	return r
}

// finish derives the summary counters from the collected rows.
func (r *Report) finish(duration time.Duration) {
	r.Summary.ConvertedCount = len(r.Converted)
	r.Summary.SkippedCount = len(r.Skipped)
	r.Summary.DetectedCount = len(r.Detections)
	r.Summary.RemovedCount = len(r.Removed)
	r.Summary.ErrorCount = len(r.Errors)
	r.Summary.DurationSeconds = duration.Seconds()
}
