package converter

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/stackvity/utf-converter/pkg/converter/codec"
	"github.com/stackvity/utf-converter/pkg/converter/encoding"
)

// Hooks defines callbacks for status updates during a run. Files are processed one
// at a time, so implementations are never called concurrently by the library.
type Hooks interface {
	OnFileDiscovered(path string) error
	OnFileStatusUpdate(path string, status Status, message string, duration time.Duration) error
	OnRunComplete(report Report) error
}

// NoOpHooks provides a default, do-nothing implementation of the Hooks interface.
type NoOpHooks struct{}

// OnFileDiscovered implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnFileDiscovered(path string) error { return nil }

// OnFileStatusUpdate implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnFileStatusUpdate(path string, status Status, message string, duration time.Duration) error {
	return nil
}

// OnRunComplete implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnRunComplete(report Report) error { return nil }

// Clock returns the current time. Tests inject a fixed clock.
type Clock func() time.Time

// Options holds all configuration for a run.
type Options struct {
	// --- Core Paths ---
	RootPath string `mapstructure:"-"` // Required: directory to scan, or a single file

	// --- Application Info ---
	AppVersion     string `mapstructure:"-"`
	ConfigFilePath string `mapstructure:"-"` // Path to the loaded config file (for reporting)
	ProfileName    string `mapstructure:"-"` // Name of the profile used (for reporting)

	// --- File Selection ---
	Include        []string `mapstructure:"include"` // Extensions without the dot
	Exclude        []string `mapstructure:"exclude"` // "bak" is always added
	IgnorePatterns []string `mapstructure:"ignore"`  // gitignore syntax, merged with .cvt2utfignore
	SizeLimitMB    int64    `mapstructure:"sizeLimitMB"`
	SizeLimit      int64    `mapstructure:"-"` // Derived limit in bytes
	SkipBinary     bool     `mapstructure:"skipBinary"`

	// --- Detection ---
	ConfidenceThreshold float64  `mapstructure:"confidenceThreshold"`
	DetectChain         []string `mapstructure:"detectChain"`

	// --- Conversion ---
	Target       string      `mapstructure:"target"`
	TargetCodec  codec.Codec `mapstructure:"-"` // Derived from Target
	SkipUTF      bool        `mapstructure:"skipUTF"`
	SkipASCII    bool        `mapstructure:"skipASCII"`
	Backup       bool        `mapstructure:"backup"`
	KeepModTime  bool        `mapstructure:"keepModTime"`
	VerifyWrites bool        `mapstructure:"verifyWrites"`

	// --- Backup Cleanup ---
	BackupRetentionString string        `mapstructure:"backupRetention"`
	BackupRetention       time.Duration `mapstructure:"-"` // Derived from BackupRetentionString when that is set
	DryRun                bool          `mapstructure:"-"` // Set by cleanbak --dry-run

	// --- Output ---
	OutputFormat OutputFormat `mapstructure:"outputFormat"`
	Verbose      bool         `mapstructure:"verbose"`

	// --- Injected Dependencies ---
	EventHooks Hooks            `mapstructure:"-"` // Optional: defaults to NoOpHooks
	Logger     slog.Handler     `mapstructure:"-"` // Required: logging backend
	Fs         afero.Fs         `mapstructure:"-"` // Optional: defaults to the OS filesystem
	Guesser    encoding.Guesser `mapstructure:"-"` // Optional: defaults to chardet
	Clock      Clock            `mapstructure:"-"` // Optional: defaults to time.Now
}

// DefaultOptions returns Options populated with library defaults. Logger still has to
// be set by the caller.
func DefaultOptions() Options {
	return Options{
		Include:               append([]string(nil), DefaultInclude...),
		SizeLimitMB:           DefaultSizeLimitMB,
		SkipBinary:            DefaultSkipBinary,
		ConfidenceThreshold:   DefaultConfidenceThreshold,
		DetectChain:           append([]string(nil), encoding.DefaultChain...),
		Target:                DefaultTarget,
		SkipUTF:               DefaultSkipUTF,
		SkipASCII:             DefaultSkipASCII,
		Backup:                DefaultBackup,
		KeepModTime:           DefaultKeepModTime,
		VerifyWrites:          DefaultVerifyWrites,
		BackupRetentionString: DefaultBackupRetentionString,
		BackupRetention:       DefaultBackupRetention,
		OutputFormat:          DefaultOutputFormat,
	}
}

// prepare validates opts and fills derived fields and default dependencies.
func (o *Options) prepare() error {
	if o.Logger == nil {
		return fmt.Errorf("%w: Logger implementation (slog.Handler) cannot be nil", ErrConfigValidation)
	}
	if strings.TrimSpace(o.RootPath) == "" {
		return fmt.Errorf("%w: root path cannot be empty", ErrConfigValidation)
	}
	if o.EventHooks == nil {
		o.EventHooks = &NoOpHooks{}
	}
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}

	if o.SizeLimit == 0 {
		if o.SizeLimitMB <= 0 {
			return fmt.Errorf("%w: sizeLimitMB must be positive, got %d", ErrConfigValidation, o.SizeLimitMB)
		}
		o.SizeLimit = o.SizeLimitMB * 1024 * 1024
	}
	if o.ConfidenceThreshold < 0 || o.ConfidenceThreshold > 1 {
		return fmt.Errorf("%w: confidenceThreshold must be within [0,1], got %v", ErrConfigValidation, o.ConfidenceThreshold)
	}

	if o.TargetCodec.IsUnknown() {
		target := o.Target
		if target == "" {
			target = DefaultTarget
		}
		c, ok := codec.ParseTarget(target)
		if !ok {
			return fmt.Errorf("%w: unsupported target %q (must be %s or %s)", ErrConfigValidation, o.Target, codec.NameUTF8, codec.NameUTF8BOM)
		}
		o.TargetCodec = c
	}

	if o.BackupRetentionString != "" {
		d, err := time.ParseDuration(o.BackupRetentionString)
		if err != nil {
			return fmt.Errorf("%w: invalid backupRetention %q: %w", ErrConfigValidation, o.BackupRetentionString, err)
		}
		o.BackupRetention = d
	}
	if o.BackupRetention < 0 {
		return fmt.Errorf("%w: backupRetention cannot be negative", ErrConfigValidation)
	}
	if o.BackupRetention == 0 {
		o.BackupRetention = DefaultBackupRetention
	}
	return nil
}

// Policy returns the conversion policy described by the options.
func (o *Options) Policy() Policy {
	return Policy{
		Target:    o.TargetCodec,
		SkipUTF:   o.SkipUTF,
		SkipASCII: o.SkipASCII,
		SizeLimit: o.SizeLimit,
	}
}
