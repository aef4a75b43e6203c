package converter

import (
	"time"

	"github.com/stackvity/utf-converter/pkg/converter/codec"
	"github.com/stackvity/utf-converter/pkg/converter/encoding"
)

// Constants defining default values for configuration options.
// These are used when setting up Viper defaults in the configuration loading process.
const (
	// DefaultSizeLimitMB is the largest file, in MB, that is inspected at all.
	DefaultSizeLimitMB = 10
	// DefaultConfidenceThreshold is the minimum detector confidence trusted.
	DefaultConfidenceThreshold = encoding.DefaultThreshold
	// DefaultTarget is the codec files are converted to.
	DefaultTarget    = codec.NameUTF8
	DefaultSkipUTF   = false
	DefaultSkipASCII = false
	// DefaultBackup keeps a timestamped copy of every converted file.
	DefaultBackup = true
	// DefaultBackupRetentionString is the cleanbak window as configured.
	DefaultBackupRetentionString = "40m"
	// DefaultBackupRetention is the parsed default window.
	DefaultBackupRetention = 40 * time.Minute
	DefaultSkipBinary      = true
	DefaultKeepModTime     = false
	DefaultVerifyWrites    = true
	DefaultOutputFormat    = OutputFormatText
	DefaultVerbose         = false
)

// DefaultInclude is the default set of scanned extensions.
var DefaultInclude = []string{"txt", "md"}

// BackupExtension is always excluded from scanning and is the only extension cleanbak removes.
const BackupExtension = "bak"

// IgnoreFileName is read from the root of a scanned tree, gitignore syntax.
const IgnoreFileName = ".cvt2utfignore"

// ReportSchemaVersion indicates the version of the JSON/TOML report structure.
const ReportSchemaVersion = "1.0"
